// AngelaMos | 2026
// handler.go

package product

import (
	"errors"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ristan-marine/catalog-api/internal/core"
	"github.com/ristan-marine/catalog-api/internal/middleware"
)

const maxJSONBody = 1 << 20

type Handler struct {
	service        *Service
	validator      *validator.Validate
	maxUploadBytes int64
}

func NewHandler(service *Service, maxUploadBytes int64) *Handler {
	v := validator.New(validator.WithRequiredStructEnabled())
	//nolint:errcheck // tag name is static
	_ = v.RegisterValidation("imagekey", validImageKey)

	return &Handler{
		service:        service,
		validator:      v,
		maxUploadBytes: maxUploadBytes,
	}
}

var imageKeyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/-]*$`)

// validImageKey accepts an absolute http(s) URL or a bare storage key.
func validImageKey(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	if v == "" {
		return true
	}
	if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
		return true
	}
	return imageKeyPattern.MatchString(v) && !strings.Contains(v, "..")
}

// RegisterRoutes mounts the catalog read API for signed-in callers.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	userOnly func(http.Handler) http.Handler,
) {
	r.With(userOnly).Get("/products", h.List)
	r.With(userOnly).Get("/products/categories", h.Categories)
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	adminOnly func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(adminOnly)

		r.Post("/products", h.Create)
		r.Put("/products", h.Update)
		r.Delete("/products", h.Delete)
		r.Post("/admin/upload", h.Upload)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := NormalizeListQuery(r.URL.Query())

	resp, err := h.service.List(r.Context(), middleware.GetIdentity(r.Context()), q)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Categories(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, CategoriesResponse{Categories: h.service.Categories()})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	m, ok := h.decode(w, r, false)
	if !ok {
		return
	}

	p, err := h.service.Create(r.Context(), middleware.GetIdentity(r.Context()), m)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, core.DataResponse{Data: p})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	m, ok := h.decode(w, r, true)
	if !ok {
		return
	}

	p, err := h.service.Update(r.Context(), middleware.GetIdentity(r.Context()), m)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "product")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, core.DataResponse{Data: p})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))

	if err := h.service.Delete(r.Context(), middleware.GetIdentity(r.Context()), id); err != nil {
		core.JSONError(w, err)
		return
	}

	core.Success(w)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, withID bool) (*Mutation, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		core.BadRequest(w, "invalid request body")
		return nil, false
	}

	m, err := DecodeMutation(body, withID)
	if err != nil {
		core.JSONError(w, err)
		return nil, false
	}

	if err := h.validator.Struct(m.Fields); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return nil, false
	}

	return m, true
}

// Upload takes multipart "file" and "productId" and answers with the
// filename to attach through PUT /products.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			core.JSONError(w, core.NewAppError(core.ErrInvalidInput,
				"file too large", http.StatusRequestEntityTooLarge, "TOO_LARGE"))
			return
		}
		core.BadRequest(w, "No file provided")
		return
	}
	defer func() {
		//nolint:errcheck // temp files
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		core.BadRequest(w, "No file provided")
		return
	}
	defer file.Close() //nolint:errcheck

	productID, err := ParseID(r.FormValue("productId"))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	name, err := h.service.UploadImage(
		r.Context(),
		middleware.GetIdentity(r.Context()),
		productID,
		header.Filename,
		file,
		header.Size,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, UploadResponse{Filename: name})
}
