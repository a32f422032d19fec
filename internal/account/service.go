// AngelaMos | 2026
// service.go

package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/ristan-marine/catalog-api/internal/core"
	"github.com/ristan-marine/catalog-api/internal/identity"
	"github.com/ristan-marine/catalog-api/internal/metrics"
)

// IdentityAdmin is the slice of the auth service that account provisioning
// needs.
type IdentityAdmin interface {
	CreateUser(
		ctx context.Context,
		email, password string,
		meta identity.Metadata,
	) (*identity.Identity, error)
	DeleteUser(ctx context.Context, id string) error
}

type Service struct {
	repo Repository
	idp  IdentityAdmin
	now  func() time.Time
}

func NewService(repo Repository, idp IdentityAdmin) *Service {
	return &Service{
		repo: repo,
		idp:  idp,
		now:  time.Now,
	}
}

func requireAdmin(actor *identity.Identity) error {
	if actor == nil {
		return core.UnauthorizedError("")
	}
	if !actor.IsAdmin() {
		return core.ForbiddenError("")
	}
	return nil
}

func (s *Service) List(
	ctx context.Context,
	actor *identity.Identity,
) ([]Profile, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Profile, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Counts(ctx context.Context) (Counts, error) {
	return s.repo.Count(ctx, s.now())
}

// Create provisions an auth identity with the email pre-confirmed, then its
// profile. A failed profile insert deletes the identity before returning.
func (s *Service) Create(
	ctx context.Context,
	actor *identity.Identity,
	req CreateAccountRequest,
) (string, error) {
	if err := requireAdmin(actor); err != nil {
		return "", err
	}

	ctx, span := core.StartSpan(ctx, "account.create",
		attribute.Int("account.trial_days", req.ExpiresDays),
	)
	var err error
	defer func() { core.EndSpan(span, err) }()

	ident, err := s.idp.CreateUser(ctx,
		strings.TrimSpace(req.Email),
		req.Password,
		identity.Metadata{FullName: req.FullName, Company: req.Company},
	)
	if err != nil {
		return "", fmt.Errorf("create account: %w", err)
	}

	createdBy := actor.ID
	profile := &Profile{
		ID:        ident.ID,
		FullName:  strings.TrimSpace(req.FullName),
		Company:   strings.TrimSpace(req.Company),
		ExpiresAt: TrialExpiry(s.now(), req.ExpiresDays),
		IsActive:  true,
		CreatedBy: &createdBy,
	}

	if err = s.attachProfile(ctx, "admin", profile); err != nil {
		return "", fmt.Errorf("create account: %w", err)
	}

	slog.InfoContext(ctx, "account created",
		"user_id", ident.ID,
		"created_by", actor.ID,
		"expires_at", profile.ExpiresAt,
	)

	return ident.ID, nil
}

// SignUp is the self-service path: the identity already exists, so only the
// profile is written, with the same compensation on failure.
func (s *Service) SignUp(
	ctx context.Context,
	ident *identity.Identity,
	fullName, company string,
) (*Profile, error) {
	profile := &Profile{
		ID:        ident.ID,
		FullName:  strings.TrimSpace(fullName),
		Company:   strings.TrimSpace(company),
		ExpiresAt: TrialExpiry(s.now(), SelfServiceTrialDays),
		IsActive:  true,
	}

	if err := s.attachProfile(ctx, "signup", profile); err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	return profile, nil
}

// ProvisionOAuth returns the caller's profile, creating it with the OAuth
// trial on first login. created reports whether a profile was written.
func (s *Service) ProvisionOAuth(
	ctx context.Context,
	ident *identity.Identity,
) (*Profile, bool, error) {
	existing, err := s.repo.GetByID(ctx, ident.ID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, false, fmt.Errorf("provision oauth: %w", err)
	}

	fullName, company := DeriveOAuthProfile(ident)
	profile := &Profile{
		ID:        ident.ID,
		FullName:  fullName,
		Company:   company,
		ExpiresAt: OAuthTrialExpiry(s.now()),
		IsActive:  true,
	}

	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, false, fmt.Errorf("provision oauth: %w", err)
	}

	slog.InfoContext(ctx, "oauth profile provisioned",
		"user_id", ident.ID,
		"expires_at", profile.ExpiresAt,
	)

	return profile, true, nil
}

func (s *Service) attachProfile(ctx context.Context, flow string, p *Profile) error {
	insertErr := s.repo.Create(ctx, p)
	if insertErr == nil {
		return nil
	}

	cause := fmt.Errorf("insert profile: %v: %w", insertErr, core.ErrUpstream)

	if err := s.idp.DeleteUser(ctx, p.ID); err != nil && !errors.Is(err, core.ErrNotFound) {
		metrics.SagaRollbacks.WithLabelValues(flow, "failed").Inc()
		slog.ErrorContext(ctx, "identity rollback failed, orphaned auth user",
			"user_id", p.ID,
			"error", err,
		)
		return errors.Join(cause, fmt.Errorf("rollback identity %s: %v", p.ID, err))
	}

	metrics.SagaRollbacks.WithLabelValues(flow, "ok").Inc()
	slog.WarnContext(ctx, "profile insert failed, identity rolled back",
		"user_id", p.ID,
		"error", insertErr,
	)

	return cause
}

func (s *Service) Update(
	ctx context.Context,
	actor *identity.Identity,
	id string,
	patch Patch,
) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	if patch.IsEmpty() {
		return core.ValidationError("no fields to update")
	}
	if patch.ExtendDays != nil && patch.ExpiresAt != nil {
		return core.ValidationError("extends_days and expires_at cannot be combined")
	}
	if patch.ExtendDays != nil && (*patch.ExtendDays < 1 || *patch.ExtendDays > MaxTrialDays) {
		return core.ValidationError(
			fmt.Sprintf("extends_days must be between 1 and %d", MaxTrialDays),
		)
	}

	if err := s.repo.Update(ctx, id, patch, s.now()); err != nil {
		return fmt.Errorf("update account: %w", err)
	}

	return nil
}

// Delete removes the profile, then the identity. Either one already being
// gone is not an error, so a failed delete can simply be retried.
func (s *Service) Delete(
	ctx context.Context,
	actor *identity.Identity,
	id string,
) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("delete account: %w", err)
	}

	if err := s.idp.DeleteUser(ctx, id); err != nil && !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("delete account: %w", err)
	}

	slog.InfoContext(ctx, "account deleted", "user_id", id, "deleted_by", actor.ID)

	return nil
}
