package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lumapos/lumapos/internal/platform/httpx"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/login", h.Login)
	r.Post("/users", h.Create)
}

type loginForm struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "username and password are required")
		return
	}

	user, err := h.service.Authenticate(r.Context(), form.Username, form.Password)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

type createForm struct {
	Username string `json:"username" validate:"required,min=2,max=64"`
	FullName string `json:"full_name"`
	Role     string `json:"role" validate:"omitempty,oneof=cashier manager"`
	Password string `json:"password" validate:"required,min=4"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var form createForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	user, err := h.service.Create(r.Context(), form.Username, form.FullName, form.Role, form.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken):
			httpx.Problem(w, http.StatusConflict, "Duplicate", "username already taken")
		case errors.Is(err, ErrInvalidCredentials):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		default:
			h.logger.Error("create user", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Storage Failure", "")
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}
