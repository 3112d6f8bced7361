package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"POOLSHARE_BACK-END/internal/dto"
	"POOLSHARE_BACK-END/internal/models"
	"POOLSHARE_BACK-END/internal/utils"
)

func validPoolRequest() dto.PoolRequest {
	return dto.PoolRequest{
		Title:    "Garden pool",
		City:     "Hamburg",
		Capacity: 6,
		Images:   []string{"https://img.example.com/pool.jpg"},
	}
}

func TestCreatePool(t *testing.T) {
	t.Parallel()

	t.Run("new listings start hidden", func(t *testing.T) {
		pools := newFakePoolStore()
		users := newFakeUserStore()
		owner := seedUser(t, users, "owner@example.com", "secret123")
		h := NewPoolsHandler(pools, nil, testConfig())

		rec := httptest.NewRecorder()
		h.CreatePool(rec, jsonRequest(t, http.MethodPost, "/pools", validPoolRequest(), owner))

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp dto.PoolResponse
		decodeBody(t, rec, &resp)
		require.Equal(t, owner.ID.String(), resp.OwnerID)
		require.False(t, resp.IsVisible)
		require.Nil(t, resp.VisibleUntil)
	})

	t.Run("minimal listing is accepted", func(t *testing.T) {
		users := newFakeUserStore()
		owner := seedUser(t, users, "owner@example.com", "secret123")
		h := NewPoolsHandler(newFakePoolStore(), nil, testConfig())

		req := dto.PoolRequest{
			Title:    "Tub",
			City:     "Kiel",
			Capacity: 1,
			Images:   []string{"https://img.example.com/tub.jpg"},
		}
		rec := httptest.NewRecorder()
		h.CreatePool(rec, jsonRequest(t, http.MethodPost, "/pools", req, owner))
		require.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("anonymous request rejected", func(t *testing.T) {
		h := NewPoolsHandler(newFakePoolStore(), nil, testConfig())
		rec := httptest.NewRecorder()
		h.CreatePool(rec, jsonRequest(t, http.MethodPost, "/pools", validPoolRequest(), nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("title length counts runes, not bytes", func(t *testing.T) {
		users := newFakeUserStore()
		owner := seedUser(t, users, "owner@example.com", "secret123")
		h := NewPoolsHandler(newFakePoolStore(), nil, testConfig())

		// 25 runes but 50 bytes; must pass the 40-character cap.
		req := validPoolRequest()
		req.Title = strings.Repeat("ü", 25)
		rec := httptest.NewRecorder()
		h.CreatePool(rec, jsonRequest(t, http.MethodPost, "/pools", req, owner))
		require.Equal(t, http.StatusCreated, rec.Code)

		req = validPoolRequest()
		req.Title = strings.Repeat("ü", 41)
		rec = httptest.NewRecorder()
		h.CreatePool(rec, jsonRequest(t, http.MethodPost, "/pools", req, owner))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects bad payloads", func(t *testing.T) {
		users := newFakeUserStore()
		owner := seedUser(t, users, "owner@example.com", "secret123")
		h := NewPoolsHandler(newFakePoolStore(), nil, testConfig())

		price := 0.5
		longDesc := strings.Repeat("x", 2001)
		cases := []func(r *dto.PoolRequest){
			func(r *dto.PoolRequest) { r.Title = "ab" },
			func(r *dto.PoolRequest) { r.Title = strings.Repeat("t", 41) },
			func(r *dto.PoolRequest) { r.City = "   " },
			func(r *dto.PoolRequest) { r.Capacity = 0 },
			func(r *dto.PoolRequest) { r.Capacity = 101 },
			func(r *dto.PoolRequest) { r.Images = nil },
			func(r *dto.PoolRequest) { r.Images = make([]string, 8) },
			func(r *dto.PoolRequest) { r.Images = []string{"  "} },
			func(r *dto.PoolRequest) { r.PricePerDay = &price },
			func(r *dto.PoolRequest) { r.Description = &longDesc },
			func(r *dto.PoolRequest) { r.BusyDays = []string{"15.07.2026"} },
		}
		for i, mutate := range cases {
			req := validPoolRequest()
			mutate(&req)
			rec := httptest.NewRecorder()
			h.CreatePool(rec, jsonRequest(t, http.MethodPost, "/pools", req, owner))
			require.Equal(t, http.StatusBadRequest, rec.Code, "case %d", i)
		}
	})
}

func TestListPools(t *testing.T) {
	t.Parallel()

	pools := newFakePoolStore()
	users := newFakeUserStore()
	owner := seedUser(t, users, "owner@example.com", "secret123")
	other := seedUser(t, users, "other@example.com", "secret123")

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	visible := seedPool(t, pools, owner.ID, true, nil)
	limited := seedPool(t, pools, owner.ID, true, &future)
	expired := seedPool(t, pools, owner.ID, true, &past)
	hidden := seedPool(t, pools, owner.ID, false, nil)
	otherPublic := seedPool(t, pools, other.ID, true, nil)

	h := NewPoolsHandler(pools, nil, testConfig())

	listIDs := func(t *testing.T, target string) map[string]bool {
		t.Helper()
		rec := httptest.NewRecorder()
		h.ListPools(rec, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var resp dto.PoolListResponse
		decodeBody(t, rec, &resp)
		ids := make(map[string]bool, len(resp.Pools))
		for _, p := range resp.Pools {
			ids[p.ID] = true
		}
		require.Equal(t, len(ids), resp.Total)
		return ids
	}

	t.Run("public view", func(t *testing.T) {
		ids := listIDs(t, "/pools")
		require.True(t, ids[visible.ID.String()])
		require.True(t, ids[limited.ID.String()])
		require.True(t, ids[otherPublic.ID.String()])
		require.False(t, ids[expired.ID.String()])
		require.False(t, ids[hidden.ID.String()])
	})

	t.Run("owner dashboard includes hidden and expired", func(t *testing.T) {
		ids := listIDs(t, "/pools?userId="+owner.ID.String())
		require.Len(t, ids, 4)
		require.True(t, ids[expired.ID.String()])
		require.True(t, ids[hidden.ID.String()])
		require.False(t, ids[otherPublic.ID.String()])
	})

	t.Run("malformed userId falls back to public view", func(t *testing.T) {
		ids := listIDs(t, "/pools?userId=not-a-uuid")
		require.False(t, ids[hidden.ID.String()])
		require.True(t, ids[visible.ID.String()])
		require.True(t, ids[otherPublic.ID.String()])
	})
}

func TestGetPool(t *testing.T) {
	t.Parallel()

	pools := newFakePoolStore()
	users := newFakeUserStore()
	owner := seedUser(t, users, "owner@example.com", "secret123")
	stranger := seedUser(t, users, "stranger@example.com", "secret123")

	public := seedPool(t, pools, owner.ID, true, nil)
	hidden := seedPool(t, pools, owner.ID, false, nil)

	h := NewPoolsHandler(pools, nil, testConfig())

	get := func(t *testing.T, id string, as *models.User) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/pool?id="+id, nil)
		if as != nil {
			req = req.WithContext(utils.ContextWithUser(req.Context(), as.ID, as.Email))
		}
		rec := httptest.NewRecorder()
		h.GetPool(rec, req)
		return rec
	}

	t.Run("public listing readable by anyone", func(t *testing.T) {
		require.Equal(t, http.StatusOK, get(t, public.ID.String(), nil).Code)
		require.Equal(t, http.StatusOK, get(t, public.ID.String(), stranger).Code)
	})

	t.Run("hidden listing looks missing to non-owners", func(t *testing.T) {
		anon := get(t, hidden.ID.String(), nil)
		other := get(t, hidden.ID.String(), stranger)
		missing := get(t, uuid.New().String(), nil)

		require.Equal(t, http.StatusNotFound, anon.Code)
		require.Equal(t, http.StatusNotFound, other.Code)
		require.Equal(t, missing.Body.String(), anon.Body.String())
	})

	t.Run("owner previews a hidden listing", func(t *testing.T) {
		rec := get(t, hidden.ID.String(), owner)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp dto.PoolResponse
		decodeBody(t, rec, &resp)
		require.False(t, resp.IsVisible)
	})

	t.Run("malformed id", func(t *testing.T) {
		require.Equal(t, http.StatusBadRequest, get(t, "not-a-uuid", nil).Code)
	})
}

func TestUpdatePool(t *testing.T) {
	t.Parallel()

	t.Run("owner replaces fields, visibility survives", func(t *testing.T) {
		pools := newFakePoolStore()
		users := newFakeUserStore()
		owner := seedUser(t, users, "owner@example.com", "secret123")
		until := time.Now().Add(time.Hour)
		pool := seedPool(t, pools, owner.ID, true, &until)
		h := NewPoolsHandler(pools, nil, testConfig())

		req := validPoolRequest()
		req.Title = "Renovated pool"
		req.Capacity = 10

		rec := httptest.NewRecorder()
		h.UpdatePool(rec, jsonRequest(t, http.MethodPut, "/pools/"+pool.ID.String(), req, owner))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp dto.PoolResponse
		decodeBody(t, rec, &resp)
		require.Equal(t, "Renovated pool", resp.Title)
		require.Equal(t, 10, resp.Capacity)
		require.True(t, resp.IsVisible)
		require.NotNil(t, resp.VisibleUntil)
	})

	t.Run("someone else's listing reads as not found", func(t *testing.T) {
		pools := newFakePoolStore()
		users := newFakeUserStore()
		owner := seedUser(t, users, "owner@example.com", "secret123")
		attacker := seedUser(t, users, "attacker@example.com", "secret123")
		pool := seedPool(t, pools, owner.ID, true, nil)
		h := NewPoolsHandler(pools, nil, testConfig())

		req := validPoolRequest()
		req.Title = "Hijacked"

		rec := httptest.NewRecorder()
		h.UpdatePool(rec, jsonRequest(t, http.MethodPut, "/pools/"+pool.ID.String(), req, attacker))
		require.Equal(t, http.StatusNotFound, rec.Code)

		stored, err := pools.GetPoolByID(context.Background(), pool.ID)
		require.NoError(t, err)
		require.Equal(t, "Garden pool", stored.Title)
	})

	t.Run("malformed id", func(t *testing.T) {
		users := newFakeUserStore()
		owner := seedUser(t, users, "owner@example.com", "secret123")
		h := NewPoolsHandler(newFakePoolStore(), nil, testConfig())

		rec := httptest.NewRecorder()
		h.UpdatePool(rec, jsonRequest(t, http.MethodPut, "/pools/not-a-uuid", validPoolRequest(), owner))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeletePool(t *testing.T) {
	t.Parallel()

	pools := newFakePoolStore()
	users := newFakeUserStore()
	owner := seedUser(t, users, "owner@example.com", "secret123")
	attacker := seedUser(t, users, "attacker@example.com", "secret123")
	pool := seedPool(t, pools, owner.ID, true, nil)
	h := NewPoolsHandler(pools, nil, testConfig())

	t.Run("someone else's listing reads as not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.DeletePool(rec, jsonRequest(t, http.MethodDelete, "/pools/"+pool.ID.String(), nil, attacker))
		require.Equal(t, http.StatusNotFound, rec.Code)

		_, err := pools.GetPoolByID(context.Background(), pool.ID)
		require.NoError(t, err)
	})

	t.Run("owner deletes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.DeletePool(rec, jsonRequest(t, http.MethodDelete, "/pools/"+pool.ID.String(), nil, owner))
		require.Equal(t, http.StatusNoContent, rec.Code)

		_, err := pools.GetPoolByID(context.Background(), pool.ID)
		require.Error(t, err)
	})
}

func TestSetVisibility(t *testing.T) {
	t.Parallel()

	t.Run("grant and revoke", func(t *testing.T) {
		pools := newFakePoolStore()
		users := newFakeUserStore()
		owner := seedUser(t, users, "owner@example.com", "secret123")
		pool := seedPool(t, pools, owner.ID, false, nil)
		h := NewPoolsHandler(pools, nil, testConfig())

		until := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
		rec := httptest.NewRecorder()
		h.SetVisibility(rec, jsonRequest(t, http.MethodPut, "/pools/"+pool.ID.String()+"/visibility", dto.SetVisibilityRequest{
			IsVisible:    true,
			VisibleUntil: &until,
		}, nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp dto.PoolResponse
		decodeBody(t, rec, &resp)
		require.True(t, resp.IsVisible)
		require.NotNil(t, resp.VisibleUntil)
		require.Equal(t, until, *resp.VisibleUntil)

		rec = httptest.NewRecorder()
		h.SetVisibility(rec, jsonRequest(t, http.MethodPut, "/pools/"+pool.ID.String()+"/visibility", dto.SetVisibilityRequest{
			IsVisible: false,
		}, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		decodeBody(t, rec, &resp)
		require.False(t, resp.IsVisible)
		require.Nil(t, resp.VisibleUntil)
	})

	t.Run("past expiry is stored but never listed publicly", func(t *testing.T) {
		pools := newFakePoolStore()
		users := newFakeUserStore()
		owner := seedUser(t, users, "owner@example.com", "secret123")
		pool := seedPool(t, pools, owner.ID, false, nil)
		h := NewPoolsHandler(pools, nil, testConfig())

		past := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
		rec := httptest.NewRecorder()
		h.SetVisibility(rec, jsonRequest(t, http.MethodPut, "/pools/"+pool.ID.String()+"/visibility", dto.SetVisibilityRequest{
			IsVisible:    true,
			VisibleUntil: &past,
		}, nil))
		require.Equal(t, http.StatusOK, rec.Code)

		stored, err := pools.GetPoolByID(context.Background(), pool.ID)
		require.NoError(t, err)
		require.True(t, stored.IsVisible)
		require.NotNil(t, stored.VisibleUntil)

		list := httptest.NewRecorder()
		h.ListPools(list, httptest.NewRequest(http.MethodGet, "/pools", nil))
		var resp dto.PoolListResponse
		decodeBody(t, list, &resp)
		require.Equal(t, 0, resp.Total)
	})

	t.Run("bad timestamp rejected", func(t *testing.T) {
		pools := newFakePoolStore()
		users := newFakeUserStore()
		owner := seedUser(t, users, "owner@example.com", "secret123")
		pool := seedPool(t, pools, owner.ID, false, nil)
		h := NewPoolsHandler(pools, nil, testConfig())

		bad := "2026-07-15"
		rec := httptest.NewRecorder()
		h.SetVisibility(rec, jsonRequest(t, http.MethodPut, "/pools/"+pool.ID.String()+"/visibility", dto.SetVisibilityRequest{
			IsVisible:    true,
			VisibleUntil: &bad,
		}, nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown listing", func(t *testing.T) {
		h := NewPoolsHandler(newFakePoolStore(), nil, testConfig())
		rec := httptest.NewRecorder()
		h.SetVisibility(rec, jsonRequest(t, http.MethodPut, "/pools/"+uuid.New().String()+"/visibility", dto.SetVisibilityRequest{
			IsVisible: true,
		}, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

// fakeUploader records uploads and returns deterministic URLs
type fakeUploader struct {
	uploads int
}

func (u *fakeUploader) Upload(_ context.Context, key, _ string, body io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	u.uploads++
	return fmt.Sprintf("https://cdn.example.com/%s", key), nil
}

// multipartImageRequest builds a multipart request carrying a small PNG part
func multipartImageRequest(t *testing.T, target string, as *models.User) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="pool.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte{0x89, 'P', 'N', 'G'})
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if as != nil {
		req = req.WithContext(utils.ContextWithUser(req.Context(), as.ID, as.Email))
	}
	return req
}

func TestUploadImage(t *testing.T) {
	t.Parallel()

	t.Run("appends to the listing", func(t *testing.T) {
		pools := newFakePoolStore()
		users := newFakeUserStore()
		owner := seedUser(t, users, "owner@example.com", "secret123")
		pool := seedPool(t, pools, owner.ID, true, nil)
		uploader := &fakeUploader{}
		h := NewPoolsHandler(pools, uploader, testConfig())

		rec := httptest.NewRecorder()
		h.UploadImage(rec, multipartImageRequest(t, "/pools/"+pool.ID.String()+"/images", owner))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, 1, uploader.uploads)
		var resp dto.PoolImageUploadResponse
		decodeBody(t, rec, &resp)
		require.Len(t, resp.Pool.Images, 2)
	})

	t.Run("image limit enforced", func(t *testing.T) {
		pools := newFakePoolStore()
		users := newFakeUserStore()
		owner := seedUser(t, users, "owner@example.com", "secret123")
		pool := seedPool(t, pools, owner.ID, true, nil)
		for len(pools.pools[pool.ID].Images) < 7 {
			pools.pools[pool.ID].Images = append(pools.pools[pool.ID].Images, "https://img.example.com/more.jpg")
		}
		h := NewPoolsHandler(pools, &fakeUploader{}, testConfig())

		rec := httptest.NewRecorder()
		h.UploadImage(rec, multipartImageRequest(t, "/pools/"+pool.ID.String()+"/images", owner))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("someone else's listing reads as not found", func(t *testing.T) {
		pools := newFakePoolStore()
		users := newFakeUserStore()
		owner := seedUser(t, users, "owner@example.com", "secret123")
		attacker := seedUser(t, users, "attacker@example.com", "secret123")
		pool := seedPool(t, pools, owner.ID, true, nil)
		h := NewPoolsHandler(pools, &fakeUploader{}, testConfig())

		rec := httptest.NewRecorder()
		h.UploadImage(rec, multipartImageRequest(t, "/pools/"+pool.ID.String()+"/images", attacker))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("no storage configured", func(t *testing.T) {
		pools := newFakePoolStore()
		users := newFakeUserStore()
		owner := seedUser(t, users, "owner@example.com", "secret123")
		pool := seedPool(t, pools, owner.ID, true, nil)
		h := NewPoolsHandler(pools, nil, testConfig())

		rec := httptest.NewRecorder()
		h.UploadImage(rec, multipartImageRequest(t, "/pools/"+pool.ID.String()+"/images", owner))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
