package handlers

import (
	goerrors "errors"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"helpdesk/internal/pkg/errors"
	"helpdesk/internal/pkg/validator"
	"helpdesk/internal/platform/auth"
	"helpdesk/internal/platform/models"
	"helpdesk/internal/platform/repositories"
)

type AuthHandler struct {
	userRepo *repositories.UserRepository
	tokenSvc *auth.TokenService
}

func NewAuthHandler(userRepo *repositories.UserRepository, tokenSvc *auth.TokenService) *AuthHandler {
	return &AuthHandler{
		userRepo: userRepo,
		tokenSvc: tokenSvc,
	}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func (req RegisterRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Email, validator.Email...),
		validation.Field(&req.Password, validation.Required, validation.Length(8, 72)),
		validation.Field(&req.FullName, validation.Length(0, 200)),
	)
}

// Register creates a pending account. An admin has to approve it before login works.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}
	req.Email = validator.NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		errors.WriteValidationError(w, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeInternal(w, err, "Failed to hash password")
		return
	}

	now := time.Now().Unix()
	user := &models.User{
		ID:           "usr_" + uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		FullName:     req.FullName,
		Role:         models.RoleUser,
		Status:       models.UserStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.userRepo.Create(r.Context(), user); err != nil {
		if goerrors.Is(err, repositories.ErrDuplicate) {
			errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "User already exists", nil)
			return
		}
		writeInternal(w, err, "Failed to create user")
		return
	}

	errors.WriteJSON(w, http.StatusCreated, user)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int64        `json:"expires_in"`
	User        *models.User `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}

	user, err := h.userRepo.GetByEmail(r.Context(), validator.NormalizeEmail(req.Email))
	if err != nil {
		writeInternal(w, err, "Database error")
		return
	}
	if user == nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid credentials", nil)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid credentials", nil)
		return
	}

	if user.Status != models.UserStatusApproved {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Account is "+user.Status, nil)
		return
	}

	accessToken, err := h.tokenSvc.GenerateAccessToken(user.ID, user.Role, user.Email)
	if err != nil {
		writeInternal(w, err, "Failed to generate token")
		return
	}

	now := time.Now().Unix()
	if err := h.userRepo.UpdateLastLogin(r.Context(), user.ID, now); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	} else {
		user.LastLoginAt = &now
	}

	errors.WriteJSON(w, http.StatusOK, LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(h.tokenSvc.TTL().Seconds()),
		User:        user,
	})
}
