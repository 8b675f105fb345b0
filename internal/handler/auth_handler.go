package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"matchwell/backend/internal/interest"
	"matchwell/backend/internal/logging"
	"matchwell/backend/internal/models"
	"matchwell/backend/internal/repository"
	"matchwell/backend/pkg/jwt"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	FullName     string `json:"full_name" binding:"required" example:"Ann Lee"`
	Email        string `json:"email" binding:"required,email" example:"test@example.com"`
	Password     string `json:"password" binding:"required,min=8" example:"password123"`
	ReferralCode string `json:"referral_code" example:"7F3A9C21"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email" example:"test@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// TokenResponse carries an issued token.
type TokenResponse struct {
	Token string `json:"token"`
}

// endregion

// Accounts stores login identities.
type Accounts interface {
	Register(ctx context.Context, account *models.Account, profile *models.Profile) error
	ByEmail(ctx context.Context, email string) (*models.Account, error)
}

type AuthHandler struct {
	accounts Accounts
	secret   string
	ttl      time.Duration
}

func NewAuthHandler(accounts Accounts, secret string, ttl time.Duration) *AuthHandler {
	return &AuthHandler{accounts: accounts, secret: secret, ttl: ttl}
}

func newReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Register godoc
// @Summary      Register a new user
// @Description  Creates an account with a pending profile and returns an authentication token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  TokenResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to hash password"})
		return
	}

	account := models.Account{
		Email:        strings.ToLower(input.Email),
		PasswordHash: string(hashedPassword),
		Role:         "user",
	}
	code := newReferralCode()
	profile := models.Profile{
		FullName:       input.FullName,
		Email:          account.Email,
		ApprovalStatus: models.ApprovalPending,
		IsActive:       true,
		ReferralCode:   &code,
	}
	if ref := strings.TrimSpace(input.ReferralCode); ref != "" {
		ref = strings.ToUpper(ref)
		profile.ReferredBy = &ref
	}

	err = h.accounts.Register(c.Request.Context(), &account, &profile)
	if errors.Is(err, repository.ErrEmailTaken) {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Email already exists"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := jwt.GenerateToken(account.ID, h.secret, h.ttl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate token"})
		return
	}

	logging.Info(c.Request.Context()).Uint("user_id", account.ID).Msg("account registered")
	c.JSON(http.StatusCreated, TokenResponse{Token: token})
}

// Login godoc
// @Summary      Log in a user
// @Description  Authenticates a user with email and password, and returns a new token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  TokenResponse
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      500  {object}  ErrorResponse "Internal server error"
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	account, err := h.accounts.ByEmail(c.Request.Context(), strings.ToLower(input.Email))
	if errors.Is(err, interest.ErrNoRecord) {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials"})
		return
	}

	token, err := jwt.GenerateToken(account.ID, h.secret, h.ttl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, TokenResponse{Token: token})
}
