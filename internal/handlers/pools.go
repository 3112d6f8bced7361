package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"POOLSHARE_BACK-END/internal/config"
	"POOLSHARE_BACK-END/internal/dto"
	"POOLSHARE_BACK-END/internal/models"
	"POOLSHARE_BACK-END/internal/storage"
	"POOLSHARE_BACK-END/internal/store"
	"POOLSHARE_BACK-END/internal/utils"
	"POOLSHARE_BACK-END/internal/visibility"
)

// PoolsHandler manages pool listing endpoints
type PoolsHandler struct {
	pools    store.PoolStore
	uploader storage.Uploader
	config   *config.Config
}

// NewPoolsHandler creates a new PoolsHandler
func NewPoolsHandler(pools store.PoolStore, uploader storage.Uploader, cfg *config.Config) *PoolsHandler {
	return &PoolsHandler{pools: pools, uploader: uploader, config: cfg}
}

func poolToResponse(p *models.Pool) dto.PoolResponse {
	filters := p.Filters
	if filters == nil {
		filters = map[string]bool{}
	}
	images := p.Images
	if images == nil {
		images = []string{}
	}
	busyDays := p.BusyDays
	if busyDays == nil {
		busyDays = []string{}
	}
	return dto.PoolResponse{
		ID:           p.ID.String(),
		OwnerID:      p.OwnerID.String(),
		Title:        p.Title,
		City:         p.City,
		Capacity:     p.Capacity,
		Images:       images,
		PricePerDay:  p.PricePerDay,
		Description:  p.Description,
		Filters:      filters,
		BusyDays:     busyDays,
		IsVisible:    p.IsVisible,
		VisibleUntil: utils.FormatTimestampPtr(p.VisibleUntil),
		CreatedAt:    utils.FormatTimestamp(p.CreatedAt),
		UpdatedAt:    utils.FormatTimestamp(p.UpdatedAt),
	}
}

// validatePoolRequest checks a create/update payload and returns a
// human-readable reason when it is rejected
func validatePoolRequest(req *dto.PoolRequest) string {
	req.Title = strings.TrimSpace(req.Title)
	req.City = strings.TrimSpace(req.City)
	titleLen := utf8.RuneCountInString(req.Title)
	switch {
	case titleLen < 3 || titleLen > 40:
		return "title must be 3-40 characters"
	case req.City == "":
		return "city is required"
	case req.Capacity < 1 || req.Capacity > 100:
		return "capacity must be between 1 and 100"
	case len(req.Images) < 1 || len(req.Images) > store.MaxPoolImages:
		return fmt.Sprintf("images must contain 1-%d URLs", store.MaxPoolImages)
	}
	for _, img := range req.Images {
		if strings.TrimSpace(img) == "" {
			return "images must not contain empty URLs"
		}
	}
	if req.PricePerDay != nil && (*req.PricePerDay < 1 || *req.PricePerDay > 10000) {
		return "price_per_day must be between 1 and 10000"
	}
	if req.Description != nil && utf8.RuneCountInString(*req.Description) > 2000 {
		return "description must be at most 2000 characters"
	}
	for _, day := range req.BusyDays {
		if !utils.IsValidDay(day) {
			return "busy_days must be YYYY-MM-DD date strings"
		}
	}
	return ""
}

// poolIDFromPath extracts the listing id from /pools/{pool_id}[/suffix]
func poolIDFromPath(path, suffix string) (uuid.UUID, error) {
	idStr := strings.TrimPrefix(path, "/pools/")
	idStr = strings.TrimSuffix(idStr, suffix)
	idStr = strings.Trim(idStr, "/")
	return uuid.Parse(idStr)
}

// CreatePool handles POST /pools
// @Summary Create a pool listing
// @Description Create a listing owned by the caller. Listings start hidden until an admin grants visibility.
// @Tags pools
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.PoolRequest true "Listing payload"
// @Success 201 {object} dto.PoolResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /pools [post]
func (h *PoolsHandler) CreatePool(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	var req dto.PoolRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}
	if msg := validatePoolRequest(&req); msg != "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", msg)
		return
	}

	now := time.Now()
	pool := &models.Pool{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       req.Title,
		City:        req.City,
		Capacity:    req.Capacity,
		Images:      req.Images,
		PricePerDay: req.PricePerDay,
		Description: req.Description,
		Filters:     req.Filters,
		BusyDays:    req.BusyDays,
		IsVisible:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.pools.CreatePool(r.Context(), pool); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to create listing", "")
		return
	}

	utils.WriteJSONResponse(w, http.StatusCreated, poolToResponse(pool))
}

// ListPools handles GET /pools
// @Summary List pool listings
// @Description Without userId: publicly visible listings only. With a valid userId: every listing of that owner, hidden and expired included (dashboard view). A malformed userId falls back to the public view.
// @Tags pools
// @Produce json
// @Param userId query string false "Owner id for the dashboard view"
// @Success 200 {object} dto.PoolListResponse
// @Router /pools [get]
func (h *PoolsHandler) ListPools(w http.ResponseWriter, r *http.Request) {
	filter := visibility.FilterFor(r.URL.Query().Get("userId"))

	pools, err := h.pools.ListPools(r.Context(), filter, time.Now())
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to list listings", "")
		return
	}

	items := make([]dto.PoolResponse, 0, len(pools))
	for i := range pools {
		items = append(items, poolToResponse(&pools[i]))
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.PoolListResponse{Pools: items, Total: len(items)})
}

// GetPool handles GET /pool?id=
// @Summary Get a single listing
// @Description Public listings are readable by anyone. Owners with a bearer token may preview their own hidden or expired listings.
// @Tags pools
// @Produce json
// @Param id query string true "Listing id"
// @Success 200 {object} dto.PoolResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /pool [get]
func (h *PoolsHandler) GetPool(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid listing id", "id must be a UUID")
		return
	}

	pool, err := h.pools.GetPoolByID(r.Context(), id)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", "Listing not found")
		return
	}

	var callerID *uuid.UUID
	if uid, ok := utils.GetUserIDFromContext(r.Context()); ok {
		callerID = &uid
	}
	// A hidden listing is indistinguishable from a missing one for
	// everybody but its owner.
	if !visibility.CanView(pool, callerID, time.Now()) {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", "Listing not found")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, poolToResponse(pool))
}

// UpdatePool handles PUT /pools/{pool_id}
// @Summary Update an owned listing
// @Description Full field replacement. The store matches on listing id and owner in one statement, so another user's listing reads as not found.
// @Tags pools
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param pool_id path string true "Listing id"
// @Param payload body dto.PoolRequest true "Listing payload"
// @Success 200 {object} dto.PoolResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /pools/{pool_id} [put]
func (h *PoolsHandler) UpdatePool(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	poolID, err := poolIDFromPath(r.URL.Path, "")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid listing id", "pool_id must be a UUID")
		return
	}

	var req dto.PoolRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}
	if msg := validatePoolRequest(&req); msg != "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", msg)
		return
	}

	pool := &models.Pool{
		ID:          poolID,
		OwnerID:     ownerID,
		Title:       req.Title,
		City:        req.City,
		Capacity:    req.Capacity,
		Images:      req.Images,
		PricePerDay: req.PricePerDay,
		Description: req.Description,
		Filters:     req.Filters,
		BusyDays:    req.BusyDays,
		UpdatedAt:   time.Now(),
	}

	if err := h.pools.UpdatePool(r.Context(), pool, ownerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", "Listing not found")
			return
		}
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to update listing", "")
		return
	}

	// Re-read for the fields the replacement does not touch (visibility,
	// created_at).
	updated, err := h.pools.GetPoolByID(r.Context(), poolID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to load listing", "")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, poolToResponse(updated))
}

// DeletePool handles DELETE /pools/{pool_id}
// @Summary Delete an owned listing
// @Tags pools
// @Produce json
// @Security BearerAuth
// @Param pool_id path string true "Listing id"
// @Success 204 "Deleted"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /pools/{pool_id} [delete]
func (h *PoolsHandler) DeletePool(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	poolID, err := poolIDFromPath(r.URL.Path, "")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid listing id", "pool_id must be a UUID")
		return
	}

	if err := h.pools.DeletePool(r.Context(), poolID, ownerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", "Listing not found")
			return
		}
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to delete listing", "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PoolMutation dispatches PUT/DELETE on /pools/{pool_id}
func (h *PoolsHandler) PoolMutation(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut:
		h.UpdatePool(w, r)
	case http.MethodDelete:
		h.DeletePool(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// SetVisibility handles PUT /pools/{pool_id}/visibility
// @Summary Toggle listing visibility
// @Description Admin operation. The listing is stored with the given flag and expiry even when the expiry already lies in the past; such a listing simply never matches the public query.
// @Tags admin
// @Accept json
// @Produce json
// @Param X-Admin-Secret header string true "Admin shared secret"
// @Param pool_id path string true "Listing id"
// @Param payload body dto.SetVisibilityRequest true "Visibility flag and optional expiry"
// @Success 200 {object} dto.PoolResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /pools/{pool_id}/visibility [put]
func (h *PoolsHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	poolID, err := poolIDFromPath(r.URL.Path, "/visibility")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid listing id", "pool_id must be a UUID")
		return
	}

	var req dto.SetVisibilityRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	var until *time.Time
	if req.VisibleUntil != nil && *req.VisibleUntil != "" {
		t, err := time.Parse(time.RFC3339, *req.VisibleUntil)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "visible_until must be an RFC3339 timestamp")
			return
		}
		until = &t
	}

	pool, err := h.pools.SetVisibility(r.Context(), poolID, req.IsVisible, until)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", "Listing not found")
			return
		}
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to update visibility", "")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, poolToResponse(pool))
}

// UploadImage handles POST /pools/{pool_id}/images
// @Summary Add an image to an owned listing
// @Tags pools
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param pool_id path string true "Listing id"
// @Param image formData file true "Pool image"
// @Success 200 {object} dto.PoolImageUploadResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /pools/{pool_id}/images [post]
func (h *PoolsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ownerID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	poolID, err := poolIDFromPath(r.URL.Path, "/images")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid listing id", "pool_id must be a UUID")
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

	url, err := h.uploader.Upload(r.Context(), storage.ImageKey("pools"), img.contentType, img.file)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Upload failed", "")
		return
	}

	pool, err := h.pools.AppendImage(r.Context(), poolID, ownerID, url)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrImageLimit):
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error",
				fmt.Sprintf("listing already has %d images", store.MaxPoolImages))
		case errors.Is(err, store.ErrNotFound):
			utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", "Listing not found")
		default:
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to store image", "")
		}
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.PoolImageUploadResponse{Pool: poolToResponse(pool)})
}
