package activity

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"
)

// ExportFormat selects the serialization for an export download.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

func (f ExportFormat) Valid() bool {
	return f == FormatCSV || f == FormatPDF
}

func (f ExportFormat) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv"
	}
}

// Export serializes every entry matching the filter, unpaginated.
func (s *Service) Export(ctx context.Context, dto QueryDTO, format ExportFormat) ([]byte, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}

	dto.Pagination.Page = 0
	dto.Pagination.Limit = 0
	entries, _, err := s.Query(ctx, dto)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatPDF:
		return exportPDF(entries), nil
	default:
		return exportCSV(entries)
	}
}

func exportCSV(entries []*Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"id", "timestamp", "user_id", "user_name", "action", "resource", "resource_id", "details", "ip_address", "user_agent"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, e := range entries {
		record := []string{
			e.ID,
			e.Timestamp.Format(time.RFC3339),
			e.UserID,
			e.UserName,
			e.Action,
			e.Resource,
			e.ResourceID,
			e.Details,
			e.IPAddress,
			e.UserAgent,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// exportPDF writes a plain-text rendition behind a PDF content type. A real
// layout engine is out of scope for the admin panel.
func exportPDF(entries []*Entry) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Activity Log Export - %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&buf, "%d entries\n\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(&buf, "[%s] %s %s %s", e.Timestamp.Format(time.RFC3339), e.UserName, e.Action, e.Resource)
		if e.Details != "" {
			fmt.Fprintf(&buf, " - %s", e.Details)
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
