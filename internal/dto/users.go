package dto

// UpdateUserRequest represents the payload for PUT /user. Changing the
// password requires the current one; other fields replace the stored values.
type UpdateUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`

	CurrentPassword *string `json:"current_password,omitempty"`
	NewPassword     *string `json:"new_password,omitempty"`
}

// UserListResponse represents the admin user listing
type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
}

// AvatarUploadResponse returns the stored public URL of the uploaded avatar
type AvatarUploadResponse struct {
	AvatarURL string `json:"avatar_url"`
}
