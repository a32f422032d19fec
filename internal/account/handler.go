// AngelaMos | 2026
// handler.go

package account

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ristan-marine/catalog-api/internal/core"
	"github.com/ristan-marine/catalog-api/internal/middleware"
)

const missingFieldsMessage = "모든 필드를 입력해주세요."

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterAdminRoutes mounts account management under /admin/users.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(adminOnly)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Patch("/", h.Update)
		r.Delete("/", h.Delete)
	})
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	userOnly func(http.Handler) http.Handler,
) {
	r.With(userOnly).Get("/me", h.GetMe)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.List(r.Context(), middleware.GetIdentity(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ProfileListResponse{Users: ToProfileResponseList(profiles)})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, createValidationMessage(err))
		return
	}

	userID, err := h.service.Create(r.Context(), middleware.GetIdentity(r.Context()), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, core.SuccessResponse{Success: true, UserID: userID})
}

// createValidationMessage keeps the admin console's message for absent
// fields and reports format problems individually.
func createValidationMessage(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			if fe.Tag() == "required" {
				return missingFieldsMessage
			}
		}
	}
	return core.FormatValidationError(err)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	err := h.service.Update(
		r.Context(),
		middleware.GetIdentity(r.Context()),
		req.ID,
		req.Patch(),
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "account")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.Success(w)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		core.BadRequest(w, "ID required")
		return
	}
	if err := h.validator.Var(id, "uuid"); err != nil {
		core.BadRequest(w, "invalid id")
		return
	}

	if err := h.service.Delete(r.Context(), middleware.GetIdentity(r.Context()), id); err != nil {
		core.JSONError(w, err)
		return
	}

	core.Success(w)
}

// GetMe returns the caller's subscription with the whole days remaining.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetIdentity(r.Context())

	profile, err := h.service.Get(r.Context(), caller.ID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "profile")
			return
		}
		core.JSONError(w, err)
		return
	}

	now := time.Now()
	core.OK(w, MeResponse{
		ProfileResponse: ToProfileResponse(profile),
		Email:           caller.Email,
		Role:            string(caller.Role),
		DaysLeft:        DaysLeft(profile.ExpiresAt, now),
		Usable:          IsUsable(profile, now),
	})
}
