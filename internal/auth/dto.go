// AngelaMos | 2026
// dto.go

package auth

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type SignupRequest struct {
	Email    string `json:"email"     validate:"required,email,max=255"`
	Password string `json:"password"  validate:"required,min=6,max=128"`
	FullName string `json:"full_name" validate:"required,max=100"`
	Company  string `json:"company"   validate:"required,max=200"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type LoginResponse struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
}

type SignupResponse struct {
	Success              bool   `json:"success"`
	UserID               string `json:"userId"`
	ConfirmationRequired bool   `json:"confirmationRequired"`
}
