package adminuser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/commercemobile/storefront-admin/internal"
	"github.com/commercemobile/storefront-admin/internal/core/events"
	"github.com/commercemobile/storefront-admin/internal/passwordpolicy"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type ServiceAPI interface {
	VerifyCredentials(email, password string) (*AdminUser, error)
	GetByID(id string) (*AdminUser, error)
	List(filter ListFilter, pagination internal.Pagination) ([]*AdminUser, int64, error)
	Create(ctx context.Context, dto CreateUserDTO, actor *internal.Actor) (*AdminUser, error)
	Update(ctx context.Context, id string, dto UpdateUserDTO, actor *internal.Actor) (*AdminUser, error)
	Delete(ctx context.Context, id string, actor *internal.Actor) error
	ChangePassword(ctx context.Context, id, newPassword string, actor *internal.Actor) error
	SetTwoFactor(ctx context.Context, id string, enabled bool, actor *internal.Actor) (*AdminUser, error)
	UpdateLastLogin(id string) error
}

type Service struct {
	repo       Repository
	policy     *passwordpolicy.Service
	bus        *events.EventBus
	logger     *slog.Logger
	bcryptCost int
}

func NewService(repo Repository, policy *passwordpolicy.Service, bus *events.EventBus, logger *slog.Logger, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		policy:     policy,
		bus:        bus,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

// VerifyCredentials returns the user only when the bcrypt hash matches the
// supplied password. Unknown emails and wrong passwords are indistinguishable
// to the caller.
func (s *Service) VerifyCredentials(email, password string) (*AdminUser, error) {
	u, err := s.repo.GetByEmail(email)
	if err != nil {
		return nil, internal.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, internal.ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) GetByID(id string) (*AdminUser, error) {
	return s.repo.GetByID(id)
}

func (s *Service) List(filter ListFilter, pagination internal.Pagination) ([]*AdminUser, int64, error) {
	return s.repo.List(filter, pagination)
}

// Create fails with ErrDuplicateEmail before any state is touched, so a
// rejected create leaves the user store exactly as it was.
func (s *Service) Create(ctx context.Context, dto CreateUserDTO, actor *internal.Actor) (*AdminUser, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if result := s.policy.Validate(dto.Password); !result.Valid {
		return nil, policyViolation(result)
	}

	if _, err := s.repo.GetByEmail(dto.Email); err == nil {
		return nil, internal.ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	expiry := passwordpolicy.ExpiryDate(now, s.policy.Get().ExpiryDays)
	u := &AdminUser{
		ID:                 uuid.NewString(),
		Name:               dto.Name,
		Email:              dto.Email,
		Role:               Role(dto.Role),
		PasswordHash:       string(hash),
		TwoFactorEnabled:   dto.TwoFactorEnabled,
		LastPasswordChange: now,
		PasswordExpires:    &expiry,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(u); err != nil {
		return nil, fmt.Errorf("create admin user: %w", err)
	}

	if err := s.policy.AddToHistory(u.ID, u.PasswordHash); err != nil {
		s.logger.Error("failed to record password history", "user_id", u.ID, "error", err)
	}

	s.publishActivity(ctx, actor, "create", "admin_user", u.ID,
		fmt.Sprintf("Created new admin user: %s (%s) with role: %s", u.Name, u.Email, u.Role))
	return u, nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateUserDTO, actor *internal.Actor) (*AdminUser, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Email != nil && *dto.Email != u.Email {
		if _, err := s.repo.GetByEmail(*dto.Email); err == nil {
			return nil, internal.ErrDuplicateEmail
		}
		u.Email = *dto.Email
	}
	if dto.Name != nil {
		u.Name = *dto.Name
	}
	if dto.Role != nil {
		u.Role = Role(*dto.Role)
	}
	if dto.TwoFactorEnabled != nil {
		u.TwoFactorEnabled = *dto.TwoFactorEnabled
	}
	u.UpdatedAt = time.Now()

	if err := s.repo.Update(u); err != nil {
		return nil, fmt.Errorf("update admin user: %w", err)
	}

	s.publishActivity(ctx, actor, "update", "admin_user", u.ID,
		fmt.Sprintf("Updated admin user: %s (%s)", u.Name, u.Email))
	return u, nil
}

// Delete removes the account. The activity log keeps its own record, so a
// deleted user stays attributable in the audit trail.
func (s *Service) Delete(ctx context.Context, id string, actor *internal.Actor) error {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("delete admin user: %w", err)
	}

	s.publishActivity(ctx, actor, "delete", "admin_user", id,
		fmt.Sprintf("Deleted admin user: %s (%s)", u.Name, u.Email))
	return nil
}

// ChangePassword enforces the policy and the reuse window, then rolls the
// expiry forward from now.
func (s *Service) ChangePassword(ctx context.Context, id, newPassword string, actor *internal.Actor) error {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	if result := s.policy.Validate(newPassword); !result.Valid {
		return policyViolation(result)
	}

	reused, err := s.policy.IsInHistory(id, newPassword)
	if err != nil {
		return fmt.Errorf("check password history: %w", err)
	}
	if reused {
		return internal.ErrPasswordReused
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	expiry := passwordpolicy.ExpiryDate(now, s.policy.Get().ExpiryDays)
	u.PasswordHash = string(hash)
	u.LastPasswordChange = now
	u.PasswordExpires = &expiry
	u.UpdatedAt = now

	if err := s.repo.Update(u); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.policy.AddToHistory(id, u.PasswordHash); err != nil {
		s.logger.Error("failed to record password history", "user_id", id, "error", err)
	}

	s.publishActivity(ctx, actor, "update", "admin_user_password", id,
		fmt.Sprintf("Updated password for admin user: %s (%s)", u.Name, u.Email))
	return nil
}

func (s *Service) SetTwoFactor(ctx context.Context, id string, enabled bool, actor *internal.Actor) (*AdminUser, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	u.TwoFactorEnabled = enabled
	u.UpdatedAt = time.Now()
	if err := s.repo.Update(u); err != nil {
		return nil, fmt.Errorf("toggle two-factor: %w", err)
	}

	verb := "Disabled"
	if enabled {
		verb = "Enabled"
	}
	s.publishActivity(ctx, actor, "update", "admin_user_2fa", id,
		fmt.Sprintf("%s two-factor authentication for admin user: %s (%s)", verb, u.Name, u.Email))
	return u, nil
}

// UpdateLastLogin stamps the login time without touching anything else.
// Not audited: the login itself is what gets logged.
func (s *Service) UpdateLastLogin(id string) error {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	now := time.Now()
	u.LastLogin = &now
	return s.repo.Update(u)
}

func policyViolation(result passwordpolicy.ValidationResult) *internal.AppError {
	fieldErrs := make([]internal.ValidationError, 0, len(result.Errors))
	for _, msg := range result.Errors {
		fieldErrs = append(fieldErrs, internal.ValidationError{
			Field:   "password",
			Message: msg,
			Code:    string(internal.ErrCodePolicyViolation),
		})
	}
	return internal.NewValidationError("Password does not meet the policy", internal.ErrCodePolicyViolation).
		WithDetails(internal.ValidationErrors{Errors: fieldErrs})
}

func (s *Service) publishActivity(ctx context.Context, actor *internal.Actor, action, resource, resourceID, details string) {
	if s.bus == nil {
		return
	}
	payload := events.ActivityPayload{
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    details,
	}
	if actor != nil {
		payload.UserID = actor.ID
		payload.UserName = actor.Name
	}
	if err := s.bus.PublishSync(ctx, events.NewActivityEvent(payload)); err != nil {
		s.logger.Error("failed to publish admin user activity", "error", err)
	}
}
