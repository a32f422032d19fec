// AngelaMos | 2026
// service.go

package inquiry

import (
	"context"
	"fmt"
	"log/slog"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Submit stores one contact-form entry. The request must already be
// normalised and validated.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Inquiry, error) {
	inq := req.ToInquiry()

	if err := s.repo.Create(ctx, inq); err != nil {
		return nil, fmt.Errorf("submit inquiry: %w", err)
	}

	slog.InfoContext(ctx, "inquiry received",
		"inquiry_id", inq.ID,
		"company", inq.Company,
	)
	return inq, nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
