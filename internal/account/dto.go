// AngelaMos | 2026
// dto.go

package account

import (
	"time"
)

type CreateAccountRequest struct {
	Email       string `json:"email"        validate:"required,email,max=255"`
	Password    string `json:"password"     validate:"required,min=6,max=128"`
	FullName    string `json:"full_name"    validate:"required,max=100"`
	Company     string `json:"company"      validate:"required,max=200"`
	ExpiresDays int    `json:"expires_days" validate:"required,min=1,max=3650"`
}

type UpdateAccountRequest struct {
	ID          string     `json:"id"           validate:"required,uuid"`
	IsActive    *bool      `json:"is_active"`
	ExpiresAt   *time.Time `json:"expires_at"`
	ExtendsDays *int       `json:"extends_days" validate:"omitempty,min=1,max=3650"`
}

func (r UpdateAccountRequest) Patch() Patch {
	return Patch{
		IsActive:   r.IsActive,
		ExpiresAt:  r.ExpiresAt,
		ExtendDays: r.ExtendsDays,
	}
}

type ProfileResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Company   string    `json:"company"`
	ExpiresAt time.Time `json:"expires_at"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy *string   `json:"created_by,omitempty"`
}

type ProfileListResponse struct {
	Users []ProfileResponse `json:"users"`
}

type MeResponse struct {
	ProfileResponse
	Email    string `json:"email"`
	Role     string `json:"role"`
	DaysLeft int    `json:"days_left"`
	Usable   bool   `json:"usable"`
}

func ToProfileResponse(p *Profile) ProfileResponse {
	return ProfileResponse{
		ID:        p.ID,
		FullName:  p.FullName,
		Company:   p.Company,
		ExpiresAt: p.ExpiresAt,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
		CreatedBy: p.CreatedBy,
	}
}

func ToProfileResponseList(profiles []Profile) []ProfileResponse {
	responses := make([]ProfileResponse, 0, len(profiles))
	for i := range profiles {
		responses = append(responses, ToProfileResponse(&profiles[i]))
	}
	return responses
}
