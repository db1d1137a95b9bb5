// Package handler exposes the user service HTTP API: registration, login,
// profile access, and password change.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"freshbonds/backend/internal/api"
	"freshbonds/backend/internal/ratelimit"
	"freshbonds/backend/internal/security"
	"freshbonds/backend/internal/server/middleware"
	"freshbonds/backend/internal/user/domain"
	"freshbonds/backend/internal/user/service"
)

type Handler struct {
	svc      *service.AuthService
	tokens   *security.TokenProvider
	validate *api.Validator
	log      *zap.Logger

	registerLimiter ratelimit.Limiter
	loginLimiter    ratelimit.Limiter
	passwordLimiter ratelimit.Limiter
}

func New(
	svc *service.AuthService,
	tokens *security.TokenProvider,
	validate *api.Validator,
	log *zap.Logger,
	registerLimiter, loginLimiter, passwordLimiter ratelimit.Limiter,
) *Handler {
	return &Handler{
		svc:             svc,
		tokens:          tokens,
		validate:        validate,
		log:             log,
		registerLimiter: registerLimiter,
		loginLimiter:    loginLimiter,
		passwordLimiter: passwordLimiter,
	}
}

// Routes mounts the user API under /api/users.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api/users", func(r chi.Router) {
		r.With(middleware.RateLimit(h.registerLimiter, h.log)).Post("/register", h.register)
		r.With(middleware.RateLimit(h.loginLimiter, h.log)).Post("/login", h.login)
		r.Post("/logout", h.logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(h.tokens))
			r.Get("/profile", h.profile)
			r.Put("/profile", h.updateProfile)
			r.With(middleware.RateLimit(h.passwordLimiter, h.log)).Put("/password", h.changePassword)
		})
	})
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128,password_chars"`
	Role     string `json:"role" validate:"required,oneof=farmer admin"`
	Location string `json:"location" validate:"omitempty,max=255"`
	FarmName string `json:"farmName" validate:"omitempty,min=2,max=100"`
	Mobile   string `json:"mobile" validate:"omitempty,sl_phone"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=128,password_chars"`
}

type userResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Location string `json:"location,omitempty"`
	FarmName string `json:"farmName,omitempty"`
	Mobile   string `json:"mobile,omitempty"`
}

type authResponse struct {
	User      userResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     string(u.Role),
		Location: u.Location,
		FarmName: u.FarmName,
		Mobile:   u.Mobile,
	}
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.BadRequest(w, "invalid JSON payload")
		return
	}
	if details := h.validate.Struct(req); details != nil {
		api.ValidationError(w, details)
		return
	}
	if req.Role == string(domain.RoleFarmer) {
		var details []string
		if req.FarmName == "" {
			details = append(details, "Farm name is required for farmers")
		}
		if req.Mobile == "" {
			details = append(details, "Mobile number is required for farmers")
		}
		if details != nil {
			api.ValidationError(w, details)
			return
		}
	}

	res, err := h.svc.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Location: req.Location,
		FarmName: req.FarmName,
		Mobile:   req.Mobile,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	api.JSON(w, http.StatusCreated, authResponse{
		User:      toUserResponse(res.User),
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.BadRequest(w, "invalid JSON payload")
		return
	}
	if details := h.validate.Struct(req); details != nil {
		api.ValidationError(w, details)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, authResponse{
		User:      toUserResponse(res.User),
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
	})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Unauthorized(w, "authentication required")
		return
	}
	u, err := h.svc.Profile(r.Context(), p.UserID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, toUserResponse(u))
}

type updateProfileRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Location string `json:"location" validate:"omitempty,max=255"`
	FarmName string `json:"farmName" validate:"omitempty,min=2,max=100"`
	Mobile   string `json:"mobile" validate:"omitempty,sl_phone"`
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Unauthorized(w, "authentication required")
		return
	}
	var req updateProfileRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.BadRequest(w, "invalid JSON payload")
		return
	}
	if details := h.validate.Struct(req); details != nil {
		api.ValidationError(w, details)
		return
	}

	u, err := h.svc.UpdateProfile(r.Context(), p.UserID, service.ProfileUpdate{
		Name:     req.Name,
		Location: req.Location,
		FarmName: req.FarmName,
		Mobile:   req.Mobile,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Unauthorized(w, "authentication required")
		return
	}
	var req changePasswordRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.BadRequest(w, "invalid JSON payload")
		return
	}
	if details := h.validate.Struct(req); details != nil {
		api.ValidationError(w, details)
		return
	}

	if err := h.svc.ChangePassword(r.Context(), p.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		h.writeServiceError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

// logout is stateless: tokens are not persisted server-side, so there is
// nothing to revoke. The endpoint exists so clients have a uniform flow.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmailAlreadyRegistered):
		api.Conflict(w, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		api.Unauthorized(w, err.Error())
	case errors.Is(err, service.ErrWrongPassword):
		api.Unauthorized(w, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		api.NotFound(w, err.Error())
	case errors.Is(err, domain.ErrValidation):
		api.BadRequest(w, err.Error())
	default:
		h.log.Error("user service error", zap.Error(err))
		api.InternalError(w)
	}
}
