package middleware_test

import (
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/commercemobile/storefront-admin/internal/transport/middleware"
)

var _ = Describe("CORS", func() {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	request := func(origins []string, origin string, method string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/api/v1/health", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		rec := httptest.NewRecorder()
		middleware.CORS(origins)(okHandler).ServeHTTP(rec, req)
		return rec
	}

	It("echoes a configured origin", func() {
		rec := request([]string{"https://admin.example.com"}, "https://admin.example.com", http.MethodGet)
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://admin.example.com"))
		Expect(rec.Header().Values("Vary")).To(ContainElement("Origin"))
	})

	It("omits the allow header for an unconfigured origin", func() {
		rec := request([]string{"https://admin.example.com"}, "https://evil.example.com", http.MethodGet)
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})

	It("allows any origin for a wildcard entry", func() {
		rec := request([]string{"*"}, "https://anywhere.example.com", http.MethodGet)
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
	})

	It("short-circuits preflight requests", func() {
		rec := request([]string{"*"}, "https://admin.example.com", http.MethodOptions)
		Expect(rec.Code).To(Equal(http.StatusNoContent))
		Expect(rec.Header().Get("Access-Control-Allow-Methods")).To(ContainSubstring("PUT"))
	})
})
