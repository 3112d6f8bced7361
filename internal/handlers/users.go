package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"POOLSHARE_BACK-END/internal/config"
	"POOLSHARE_BACK-END/internal/dto"
	"POOLSHARE_BACK-END/internal/storage"
	"POOLSHARE_BACK-END/internal/store"
	"POOLSHARE_BACK-END/internal/utils"
)

// maxUploadBytes bounds multipart image uploads
const maxUploadBytes = 10 << 20 // 10 MiB

// UsersHandler manages user profile endpoints
type UsersHandler struct {
	users    store.UserStore
	uploader storage.Uploader
	config   *config.Config
}

// NewUsersHandler creates a new UsersHandler
func NewUsersHandler(users store.UserStore, uploader storage.Uploader, cfg *config.Config) *UsersHandler {
	return &UsersHandler{users: users, uploader: uploader, config: cfg}
}

// UpdateSelf handles PUT /user
// @Summary Update own profile
// @Description Replace the caller's profile fields. Changing the password requires the current one.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateUserRequest true "Profile fields"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /user [put]
func (h *UsersHandler) UpdateSelf(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	var req dto.UpdateUserRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.Mobile = strings.TrimSpace(req.Mobile)
	switch {
	case req.FirstName == "" || req.LastName == "":
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "first_name and last_name are required")
		return
	case !utils.IsValidEmail(req.Email):
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "email must be a valid email address")
		return
	case !utils.IsValidMobile(req.Mobile):
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "mobile must be a digit string of 9-15 digits")
		return
	}

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", "User not found")
		return
	}

	if req.NewPassword != nil {
		if len(*req.NewPassword) < 6 {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "new_password must be at least 6 characters")
			return
		}
		if req.CurrentPassword == nil || !utils.CheckPassword(*req.CurrentPassword, user.PasswordHash) {
			utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Current password is incorrect")
			return
		}
		hashed, err := utils.HashPassword(*req.NewPassword)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to hash password", "")
			return
		}
		user.PasswordHash = hashed
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Email = req.Email
	user.Mobile = req.Mobile
	user.UpdatedAt = time.Now()

	if err := h.users.UpdateUser(r.Context(), user); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateEmail):
			utils.WriteErrorResponse(w, http.StatusConflict, "Conflict", "Email already registered")
		case errors.Is(err, store.ErrNotFound):
			utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", "User not found")
		default:
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to update user", "")
		}
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, userToResponse(user))
}

// ListUsers handles GET /admin/users
// @Summary List all users
// @Tags admin
// @Produce json
// @Param X-Admin-Secret header string true "Admin shared secret"
// @Success 200 {object} dto.UserListResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /admin/users [get]
func (h *UsersHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to list users", "")
		return
	}

	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userToResponse(&users[i]))
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.UserListResponse{Users: items, Total: len(items)})
}

// readImageUpload pulls the "image" part out of a multipart form and
// returns a 400/500 response on failure (reported via the bool)
func readImageUpload(w http.ResponseWriter, r *http.Request) (multipartImage, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid upload", "multipart form with an image part is required")
		return multipartImage{}, false
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid upload", "image part is required")
		return multipartImage{}, false
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		file.Close()
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid upload", "only image uploads are accepted")
		return multipartImage{}, false
	}
	return multipartImage{file: file, contentType: contentType}, true
}

type multipartImage struct {
	file        multipart.File
	contentType string
}

// UploadAvatar handles POST /user/avatar
// @Summary Upload avatar image
// @Tags users
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Avatar image"
// @Success 200 {object} dto.AvatarUploadResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /user/avatar [post]
func (h *UsersHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	if h.uploader == nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Server misconfigured", "Object storage is not configured")
		return
	}

	img, ok := readImageUpload(w, r)
	if !ok {
		return
	}
	defer img.file.Close()

	url, err := h.uploader.Upload(r.Context(), storage.ImageKey("avatars"), img.contentType, img.file)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Upload failed", "")
		return
	}

	if err := h.users.SetAvatarURL(r.Context(), userID, url); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to store avatar", "")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.AvatarUploadResponse{AvatarURL: url})
}
