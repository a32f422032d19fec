// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ristan-marine/catalog-api/internal/core"
	"github.com/ristan-marine/catalog-api/internal/identity"
)

type Handler struct {
	service   *Service
	cookies   *Cookies
	siteURL   string
	validator *validator.Validate
}

func NewHandler(service *Service, cookies *Cookies, siteURL string) *Handler {
	return &Handler{
		service:   service,
		cookies:   cookies,
		siteURL:   siteURL,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterPageRoutes mounts the browser-facing OAuth redirects.
func (h *Handler) RegisterPageRoutes(r chi.Router) {
	r.Get("/auth/oauth/{provider}", h.StartOAuth)
	r.Get("/auth/callback", h.Callback)
}

// RegisterRoutes mounts the JSON endpoints. limit throttles the unauthenticated
// credential endpoints.
func (h *Handler) RegisterRoutes(r chi.Router, limit func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.With(limit).Post("/login", h.Login)
		r.With(limit).Post("/signup", h.Signup)
		r.Post("/logout", h.Logout)
	})
}

func (h *Handler) StartOAuth(w http.ResponseWriter, r *http.Request) {
	origin := core.RequestOrigin(r, h.siteURL)

	callback := origin + "/auth/callback"
	if r.URL.Query().Get("signup") == "1" {
		callback += "?signup=1"
	}

	target, verifier, err := h.service.StartOAuth(chi.URLParam(r, "provider"), callback)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	h.cookies.SetVerifier(w, verifier)
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	origin := core.RequestOrigin(r, h.siteURL)
	loginError := func(code string) {
		http.Redirect(w, r,
			origin+PathLogin+"?"+url.Values{"error": {code}}.Encode(),
			http.StatusTemporaryRedirect)
	}

	verifier := h.cookies.TakeVerifier(w, r)

	code := r.URL.Query().Get("code")
	if code == "" {
		loginError("no_code")
		return
	}

	sess, next, err := h.service.CompleteOAuth(r.Context(), code, verifier)
	if err != nil {
		slog.WarnContext(r.Context(), "oauth callback failed", "error", err)
		loginError("auth_failed")
		return
	}

	h.cookies.SetSession(w, sess)
	http.Redirect(w, r, origin+next, http.StatusTemporaryRedirect)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	sess, err := h.service.Login(r.Context(), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	h.cookies.SetSession(w, sess)
	core.OK(w, LoginResponse{Success: true, User: toUserResponse(sess.User)})
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	ident, sess, err := h.service.SignUp(r.Context(), req)
	if err != nil {
		if errors.Is(err, core.ErrConflict) || errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, signupMessage(err))
			return
		}
		core.JSONError(w, err)
		return
	}

	if sess != nil {
		h.cookies.SetSession(w, sess)
	}

	core.Created(w, SignupResponse{
		Success:              true,
		UserID:               ident.ID,
		ConfirmationRequired: sess == nil,
	})
}

// signupMessage surfaces the auth service's own wording, such as an already
// registered address.
func signupMessage(err error) string {
	var apiErr *identity.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "signup failed"
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	access, _ := h.cookies.Tokens(r)
	h.service.Logout(r.Context(), access)
	h.cookies.ClearSession(w)
	core.Success(w)
}

func toUserResponse(id *identity.Identity) UserResponse {
	if id == nil {
		return UserResponse{}
	}
	return UserResponse{ID: id.ID, Email: id.Email, Role: string(id.Role)}
}
