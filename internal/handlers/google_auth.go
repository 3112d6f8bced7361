package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleOAuth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"POOLSHARE_BACK-END/internal/config"
	"POOLSHARE_BACK-END/internal/dto"
	"POOLSHARE_BACK-END/internal/middleware"
	"POOLSHARE_BACK-END/internal/models"
	"POOLSHARE_BACK-END/internal/store"
	"POOLSHARE_BACK-END/internal/utils"
)

// GoogleAuthHandler handles Google OAuth authentication
type GoogleAuthHandler struct {
	users        store.UserStore
	oauth2Config *oauth2.Config
	config       *config.Config
}

// NewGoogleAuthHandler creates a new GoogleAuthHandler instance
func NewGoogleAuthHandler(users store.UserStore, cfg *config.Config) *GoogleAuthHandler {
	oauth2Config := &oauth2.Config{
		ClientID:     cfg.GoogleOAuth.ClientID,
		ClientSecret: cfg.GoogleOAuth.ClientSecret,
		RedirectURL:  cfg.GoogleOAuth.RedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	return &GoogleAuthHandler{
		users:        users,
		oauth2Config: oauth2Config,
		config:       cfg,
	}
}

// GoogleLogin initiates Google OAuth login
// @Summary Google OAuth login
// @Description Initiate Google OAuth login flow
// @Tags authentication
// @Produce json
// @Success 200 {object} map[string]string "Google OAuth URL"
// @Router /auth/google/login [get]
func (h *GoogleAuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// State parameter for CSRF protection
	state := uuid.New().String()
	authURL := h.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOffline)

	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{
		"auth_url": authURL,
		"state":    state,
	})
}

// GoogleCallback handles the Google OAuth callback
// @Summary Google OAuth callback
// @Description Exchange the authorization code, create the account on first login, and issue a bearer token
// @Tags authentication
// @Produce json
// @Param code query string true "Authorization code from Google"
// @Param state query string false "State parameter for CSRF protection"
// @Success 200 {object} dto.AuthResponse "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Missing authorization code"
// @Failure 401 {object} dto.ErrorResponse "Invalid authorization code"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/google/callback [get]
func (h *GoogleAuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing authorization code", "Authorization code is required")
		return
	}

	token, err := h.oauth2Config.Exchange(r.Context(), code)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid authorization code", "")
		return
	}

	userInfo, err := h.getGoogleUserInfo(r.Context(), token.AccessToken)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to get user info", "")
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), userInfo.Email)
	if err != nil {
		// First Google login for this email, create the account.
		user, err = h.createGoogleUser(r.Context(), userInfo)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to create user", "")
			return
		}
	}

	jwtToken, err := middleware.GenerateToken(user.ID, user.Email, &h.config.JWT)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to generate token", "")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.AuthResponse{
		User:  userToResponse(user),
		Token: jwtToken,
	})
}

// googleUserInfo is the subset of the Google profile the handler needs
type googleUserInfo struct {
	Email     string
	GivenName string
	Family    string
	Picture   string
}

// getGoogleUserInfo fetches user information from Google
func (h *GoogleAuthHandler) getGoogleUserInfo(ctx context.Context, accessToken string) (*googleUserInfo, error) {
	service, err := googleOAuth2.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
	})))
	if err != nil {
		return nil, err
	}

	userInfo, err := service.Userinfo.Get().Do()
	if err != nil {
		return nil, err
	}
	if userInfo.Email == "" {
		return nil, fmt.Errorf("google profile has no email")
	}

	return &googleUserInfo{
		Email:     userInfo.Email,
		GivenName: userInfo.GivenName,
		Family:    userInfo.FamilyName,
		Picture:   userInfo.Picture,
	}, nil
}

// createGoogleUser creates a new user from Google OAuth data. The account
// gets a random password hash; password login works only after a reset.
func (h *GoogleAuthHandler) createGoogleUser(ctx context.Context, info *googleUserInfo) (*models.User, error) {
	randomSecret, err := generateResetToken()
	if err != nil {
		return nil, err
	}
	hashed, err := utils.HashPassword(randomSecret)
	if err != nil {
		return nil, err
	}

	firstName := info.GivenName
	if firstName == "" {
		firstName = "Google"
	}
	lastName := info.Family
	if lastName == "" {
		lastName = "User"
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        info.Email,
		Mobile:       "",
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if info.Picture != "" {
		user.AvatarURL = &info.Picture
	}

	if err := h.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
