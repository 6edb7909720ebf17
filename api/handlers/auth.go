package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alxdev/echocheck-backend/api/middleware"
	"github.com/alxdev/echocheck-backend/internal/auth"
	"github.com/alxdev/echocheck-backend/internal/models"
	"github.com/alxdev/echocheck-backend/internal/store"
	"github.com/alxdev/echocheck-backend/pkg/logger"
	"github.com/alxdev/echocheck-backend/pkg/queue"
)

// AuthHandler implements the two-step register and login flows. Step one
// validates the request and emails a verification code, step two trades the
// code for a token pair.
type AuthHandler struct {
	users      store.Users
	codes      store.Codes
	tokens     *auth.TokenManager
	queue      queue.Queue
	logger     logger.Logger
	codeTTL    time.Duration
	codeLength int
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type VerifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ResendCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Type  string `json:"type" binding:"required,oneof=registration login"`
}

// VerificationSentResponse acknowledges step one of either flow.
type VerificationSentResponse struct {
	Message          string `json:"message"`
	Email            string `json:"email"`
	ExpiresInMinutes int    `json:"expires_in_minutes"`
}

// AuthResponse is the step-two success body: the user plus a token pair.
type AuthResponse struct {
	User   models.PublicUser `json:"user"`
	Tokens auth.TokenPair    `json:"tokens"`
}

func NewAuthHandler(users store.Users, codes store.Codes, tokens *auth.TokenManager, q queue.Queue, log logger.Logger, codeTTL time.Duration, codeLength int) *AuthHandler {
	if codeTTL <= 0 {
		codeTTL = store.DefaultCodeTTL
	}
	if codeLength <= 0 {
		codeLength = auth.CodeLength
	}
	return &AuthHandler{
		users:      users,
		codes:      codes,
		tokens:     tokens,
		queue:      q,
		logger:     log,
		codeTTL:    codeTTL,
		codeLength: codeLength,
	}
}

// issueCode generates a fresh code, stores it and queues the email.
func (h *AuthHandler) issueCode(ctx context.Context, email string, purpose models.VerificationPurpose) error {
	code, err := auth.NewCode(h.codeLength)
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	if _, err := h.codes.Create(ctx, email, code, purpose); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}

	task, err := queue.NewVerificationEmailTask(email, code, purpose, h.codeTTL)
	if err != nil {
		return err
	}
	if err := h.queue.Enqueue(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue verification email: %w", err)
	}
	return nil
}

func (h *AuthHandler) codeSent(c *gin.Context, email string) {
	c.JSON(http.StatusOK, VerificationSentResponse{
		Message:          "Verification code sent to your email",
		Email:            email,
		ExpiresInMinutes: int(h.codeTTL.Minutes()),
	})
}

// Register starts a registration: creates an unverified account and emails a
// registration code. A stale unverified account for the same email is
// replaced.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, h.logger, http.StatusBadRequest, "invalid_request", "A valid email and a password of 8-128 characters are required", err)
		return
	}

	ctx := c.Request.Context()
	email := strings.ToLower(req.Email)

	existing, err := h.users.FindByEmail(ctx, email)
	switch {
	case err == nil && existing.IsVerified:
		handleError(c, h.logger, http.StatusConflict, "email_registered", "Email already registered", nil)
		return
	case err == nil:
		if err := h.users.DeleteUnverified(ctx, email); err != nil {
			handleError(c, h.logger, http.StatusInternalServerError, "database_error", "Failed to process registration", err)
			return
		}
	case !errors.Is(err, store.ErrNotFound):
		handleError(c, h.logger, http.StatusInternalServerError, "database_error", "Failed to process registration", err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		handleError(c, h.logger, http.StatusInternalServerError, "internal_error", "Failed to process registration", err)
		return
	}

	if _, err := h.users.Create(ctx, email, hash); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			handleError(c, h.logger, http.StatusConflict, "email_registered", "Email already registered", nil)
			return
		}
		handleError(c, h.logger, http.StatusInternalServerError, "database_error", "Failed to process registration", err)
		return
	}

	if err := h.issueCode(ctx, email, models.PurposeRegistration); err != nil {
		// Roll the pending account back so the email can be retried cleanly.
		if delErr := h.users.DeleteUnverified(ctx, email); delErr != nil {
			h.logger.Error("failed to roll back pending registration",
				logger.String("email", email),
				logger.Error(delErr),
			)
		}
		handleError(c, h.logger, http.StatusInternalServerError, "email_send_failed", "Failed to send verification email. Please try again.", err)
		return
	}

	h.codeSent(c, email)
}

// RegisterVerify completes a registration with the emailed code and returns
// the first token pair.
func (h *AuthHandler) RegisterVerify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, h.logger, http.StatusBadRequest, "invalid_request", "A valid email and the 6-digit code are required", err)
		return
	}

	ctx := c.Request.Context()
	email := strings.ToLower(req.Email)

	user, err := h.users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		handleError(c, h.logger, http.StatusNotFound, "registration_not_found", "No pending registration found for this email", nil)
		return
	}
	if err != nil {
		handleError(c, h.logger, http.StatusInternalServerError, "database_error", "Failed to verify registration", err)
		return
	}
	if user.IsVerified {
		handleError(c, h.logger, http.StatusBadRequest, "already_verified", "Email already verified. Please login instead.", nil)
		return
	}

	if err := h.codes.Consume(ctx, email, req.Code, models.PurposeRegistration); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			handleError(c, h.logger, http.StatusBadRequest, "invalid_code", "Invalid or expired verification code", nil)
			return
		}
		handleError(c, h.logger, http.StatusInternalServerError, "database_error", "Failed to verify registration", err)
		return
	}

	if err := h.users.MarkVerified(ctx, email); err != nil {
		handleError(c, h.logger, http.StatusInternalServerError, "database_error", "Failed to verify registration", err)
		return
	}
	user.IsVerified = true

	// Welcome email is best effort.
	if task, err := queue.NewWelcomeEmailTask(email); err == nil {
		if err := h.queue.Enqueue(ctx, task); err != nil {
			h.logger.Warn("failed to enqueue welcome email",
				logger.String("email", email),
				logger.Error(err),
			)
		}
	}

	tokens, err := h.tokens.Pair(user.ID.Hex())
	if err != nil {
		handleError(c, h.logger, http.StatusInternalServerError, "internal_error", "Failed to issue tokens", err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{User: user.Public(), Tokens: *tokens})
}

// Login starts a login: checks the credentials and emails a login code.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, h.logger, http.StatusBadRequest, "invalid_request", "Email and password are required", err)
		return
	}

	ctx := c.Request.Context()
	email := strings.ToLower(req.Email)

	user, err := h.users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !auth.VerifyPassword(req.Password, user.PasswordHash)) {
		c.Header("WWW-Authenticate", "Bearer")
		handleError(c, h.logger, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password", nil)
		return
	}
	if err != nil {
		handleError(c, h.logger, http.StatusInternalServerError, "database_error", "Failed to process login", err)
		return
	}
	if !user.IsVerified {
		handleError(c, h.logger, http.StatusForbidden, "not_verified", "Please complete registration verification first", nil)
		return
	}

	if err := h.issueCode(ctx, email, models.PurposeLogin); err != nil {
		handleError(c, h.logger, http.StatusInternalServerError, "email_send_failed", "Failed to send verification email. Please try again.", err)
		return
	}

	h.codeSent(c, email)
}

// LoginVerify completes a login with the emailed code.
func (h *AuthHandler) LoginVerify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, h.logger, http.StatusBadRequest, "invalid_request", "A valid email and the 6-digit code are required", err)
		return
	}

	ctx := c.Request.Context()
	email := strings.ToLower(req.Email)

	user, err := h.users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		c.Header("WWW-Authenticate", "Bearer")
		handleError(c, h.logger, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials", nil)
		return
	}
	if err != nil {
		handleError(c, h.logger, http.StatusInternalServerError, "database_error", "Failed to process login", err)
		return
	}

	if err := h.codes.Consume(ctx, email, req.Code, models.PurposeLogin); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			handleError(c, h.logger, http.StatusBadRequest, "invalid_code", "Invalid or expired verification code", nil)
			return
		}
		handleError(c, h.logger, http.StatusInternalServerError, "database_error", "Failed to process login", err)
		return
	}

	tokens, err := h.tokens.Pair(user.ID.Hex())
	if err != nil {
		handleError(c, h.logger, http.StatusInternalServerError, "internal_error", "Failed to issue tokens", err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{User: user.Public(), Tokens: *tokens})
}

// Refresh trades a valid refresh token for a new pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, h.logger, http.StatusBadRequest, "invalid_request", "Field 'refresh_token' is required", err)
		return
	}

	ctx := c.Request.Context()

	userID, err := h.tokens.UserID(req.RefreshToken, auth.TokenTypeRefresh)
	if err != nil {
		c.Header("WWW-Authenticate", "Bearer")
		handleError(c, h.logger, http.StatusUnauthorized, "invalid_token", "Invalid or expired refresh token", nil)
		return
	}

	user, err := h.users.FindByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		c.Header("WWW-Authenticate", "Bearer")
		handleError(c, h.logger, http.StatusUnauthorized, "user_not_found", "User not found", nil)
		return
	}
	if err != nil {
		handleError(c, h.logger, http.StatusInternalServerError, "database_error", "Failed to refresh tokens", err)
		return
	}

	tokens, err := h.tokens.Pair(user.ID.Hex())
	if err != nil {
		handleError(c, h.logger, http.StatusInternalServerError, "internal_error", "Failed to issue tokens", err)
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// ResendCode issues a fresh code for a flow whose previous code expired or
// never arrived.
func (h *AuthHandler) ResendCode(c *gin.Context) {
	var req ResendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, h.logger, http.StatusBadRequest, "invalid_request", "A valid email and type (registration or login) are required", err)
		return
	}

	ctx := c.Request.Context()
	email := strings.ToLower(req.Email)
	purpose := models.VerificationPurpose(req.Type)

	user, err := h.users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		handleError(c, h.logger, http.StatusNotFound, "user_not_found", "User not found", nil)
		return
	}
	if err != nil {
		handleError(c, h.logger, http.StatusInternalServerError, "database_error", "Failed to resend code", err)
		return
	}

	if purpose == models.PurposeRegistration && user.IsVerified {
		handleError(c, h.logger, http.StatusBadRequest, "already_verified", "User already verified", nil)
		return
	}
	if purpose == models.PurposeLogin && !user.IsVerified {
		handleError(c, h.logger, http.StatusBadRequest, "not_verified", "Please complete registration first", nil)
		return
	}

	if err := h.issueCode(ctx, email, purpose); err != nil {
		handleError(c, h.logger, http.StatusInternalServerError, "email_send_failed", "Failed to send verification email. Please try again.", err)
		return
	}

	h.codeSent(c, email)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.Header("WWW-Authenticate", "Bearer")
		handleError(c, h.logger, http.StatusUnauthorized, "unauthorized", "Not authenticated", nil)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

// Logout acknowledges a logout. Tokens are stateless, the client discards
// them.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}
