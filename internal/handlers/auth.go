package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"POOLSHARE_BACK-END/internal/config"
	"POOLSHARE_BACK-END/internal/dto"
	"POOLSHARE_BACK-END/internal/middleware"
	"POOLSHARE_BACK-END/internal/models"
	"POOLSHARE_BACK-END/internal/store"
	"POOLSHARE_BACK-END/internal/utils"
)

// dummyPasswordHash is compared against when a login names an unknown
// email, so that path costs a bcrypt verification too
var dummyPasswordHash, _ = utils.HashPassword("login-timing-pad")

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	users  store.UserStore
	email  *utils.EmailService
	config *config.Config
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(users store.UserStore, email *utils.EmailService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{users: users, email: email, config: cfg}
}

func userToResponse(u *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID.String(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Mobile:    u.Mobile,
		AvatarURL: u.AvatarURL,
		CreatedAt: utils.FormatTimestamp(u.CreatedAt),
		UpdatedAt: utils.FormatTimestamp(u.UpdatedAt),
	}
}

// validateRegistration checks the registration payload and returns a
// human-readable reason when it is rejected
func validateRegistration(req *dto.RegisterRequest) string {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.Mobile = strings.TrimSpace(req.Mobile)
	switch {
	case req.FirstName == "" || req.LastName == "":
		return "first_name and last_name are required"
	case !utils.IsValidEmail(req.Email):
		return "email must be a valid email address"
	case !utils.IsValidMobile(req.Mobile):
		return "mobile must be a digit string of 9-15 digits"
	case len(req.Password) < 6:
		return "password must be at least 6 characters"
	}
	return ""
}

// Register handles user registration
// @Summary Register a new user
// @Description Create a new user account
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User registration data"
// @Success 201 {object} dto.UserResponse "User created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Email already in use"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dto.RegisterRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	if msg := validateRegistration(&req); msg != "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", msg)
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to hash password", "")
		return
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Mobile:       req.Mobile,
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The unique index on lower(email) is the source of truth; a race
	// between two registrations still surfaces as a conflict here.
	if err := h.users.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			utils.WriteErrorResponse(w, http.StatusConflict, "Conflict", "Email already registered")
			return
		}
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to create user", "")
		return
	}

	utils.WriteJSONResponse(w, http.StatusCreated, userToResponse(user))
}

// Login handles user login
// @Summary Login user
// @Description Authenticate user with email and password
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dto.LoginRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	if req.Email == "" || req.Password == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing required fields", "Email and password are required")
		return
	}

	// Unknown email and wrong password produce the same answer so callers
	// cannot tell which one failed. The miss path still pays for a bcrypt
	// comparison to keep the response times alike as well.
	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		utils.CheckPassword(req.Password, dummyPasswordHash)
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid credentials", "Email or password is incorrect")
		return
	}
	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid credentials", "Email or password is incorrect")
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Email, &h.config.JWT)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to generate token", "")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.AuthResponse{
		User:  userToResponse(user),
		Token: token,
	})
}

// generateResetToken returns a random URL-safe token for password resets
func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// ForgotPassword starts a password reset
// @Summary Request password reset
// @Description Send a password reset link to the user's email. Always answers 200 so the endpoint cannot be used to probe which emails have accounts.
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "Email address"
// @Success 200 {object} dto.ForgotPasswordResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid email format"
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dto.ForgotPasswordRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if !utils.IsValidEmail(req.Email) {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "email must be a valid email address")
		return
	}

	// A miss falls through to the same 200 as a hit.
	if user, err := h.users.GetUserByEmail(r.Context(), req.Email); err == nil {
		token, err := generateResetToken()
		if err == nil {
			expires := time.Now().Add(h.config.JWT.ResetTokenTTL)
			if err := h.users.SetResetToken(r.Context(), user.ID, token, expires); err == nil {
				link := fmt.Sprintf("%s?token=%s", h.config.Email.ResetURLBase, url.QueryEscape(token))
				h.email.SendPasswordResetAsync(user.Email, link)
			}
		}
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.ForgotPasswordResponse{
		Message: "If an account exists for that email, a reset link has been sent",
	})
}

// ResetPassword completes a password reset using the emailed token
// @Summary Reset password
// @Description Set a new password using the reset token from the email link
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} dto.ResetPasswordResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid or expired token"
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dto.ResetPasswordRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	if req.Token == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "token is required")
		return
	}
	if len(req.NewPassword) < 6 {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "new_password must be at least 6 characters")
		return
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to hash password", "")
		return
	}

	if err := h.users.ResetPassword(r.Context(), req.Token, hashed, time.Now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid token", "Reset token is invalid or has expired")
			return
		}
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to reset password", "")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.ResetPasswordResponse{Message: "Password has been reset"})
}
