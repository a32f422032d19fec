// AngelaMos | 2026
// dto.go

package inquiry

import (
	"strings"
)

type SubmitRequest struct {
	Company string `json:"company" validate:"required,max=200"`
	Name    string `json:"name"    validate:"required,max=100"`
	Phone   string `json:"phone"   validate:"omitempty,max=50"`
	Email   string `json:"email"   validate:"required,email,max=255"`
	Message string `json:"message" validate:"required,max=5000"`
}

// Normalize trims every field so whitespace-only input counts as missing.
func (r *SubmitRequest) Normalize() {
	r.Company = strings.TrimSpace(r.Company)
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Email = strings.TrimSpace(r.Email)
	r.Message = strings.TrimSpace(r.Message)
}

func (r SubmitRequest) ToInquiry() *Inquiry {
	inq := &Inquiry{
		Company: r.Company,
		Name:    r.Name,
		Email:   r.Email,
		Message: r.Message,
	}
	if r.Phone != "" {
		phone := r.Phone
		inq.Phone = &phone
	}
	return inq
}
