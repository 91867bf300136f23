package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mathsoc-club/backend/internal/database/testutil"
	"github.com/mathsoc-club/backend/internal/models"
	"github.com/mathsoc-club/backend/internal/services"
	"gorm.io/gorm"
)

func newContentFixture(t *testing.T) (*gin.Engine, *services.PostService, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	posts, err := services.NewPostService(db, nil)
	require.NoError(t, err)

	h := NewContentHandler(context.Background(), posts, nil, time.Hour)

	r := gin.New()
	r.GET("/api/events", h.ListEvents)
	r.GET("/api/events/:slug", h.GetEvent)
	r.GET("/api/community-posts", h.ListCommunityPosts)
	r.GET("/api/community-posts/:slug", h.GetCommunityPost)
	return r, posts, db
}

func get(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDetailNotFound(t *testing.T) {
	r, _, _ := newContentFixture(t)

	w := get(t, r, "/api/events/no-such-event")
	require.Equal(t, http.StatusNotFound, w.Code)

	var payload struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.False(t, payload.Success)
	require.Equal(t, "POST_NOT_FOUND", payload.Error.Code)
}

func TestListFailureMapsToLoadFailed(t *testing.T) {
	r, _, db := newContentFixture(t)

	// Losing the content store mid-flight surfaces as a load failure, never a
	// stale or empty success.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := get(t, r, "/api/events")
	require.Equal(t, http.StatusBadGateway, w.Code)
}

func TestListCachedAcrossBackendLoss(t *testing.T) {
	r, posts, db := newContentFixture(t)

	date := time.Date(2024, 3, 14, 15, 0, 0, 0, time.UTC)
	_, err := posts.Publish(context.Background(), services.PublishInput{
		Kind: models.PostKindEvent, Title: "Pi Day",
		Summary: "Pie", Content: "<p>3.14</p>",
		Author: "Committee", Category: "Social",
		MainImageURL: "/uploads/main.jpg",
		AdditionalImageURLs: []string{
			"/uploads/a.jpg", "/uploads/b.jpg", "/uploads/c.jpg",
			"/uploads/d.jpg", "/uploads/e.jpg",
		},
		EventDate: &date, Location: "MC 4020",
	})
	require.NoError(t, err)

	w := get(t, r, "/api/events")
	require.Equal(t, http.StatusOK, w.Code)

	// With the list cached, the backend can vanish and reads keep working
	// until the entry expires.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w = get(t, r, "/api/events")
	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Data []struct {
			Slug string `json:"slug"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Len(t, payload.Data, 1)
	require.Equal(t, "pi-day", payload.Data[0].Slug)

	// Detail caches are independent: the detail was never fetched, so it
	// cannot be served once the backend is gone.
	w = get(t, r, "/api/events/pi-day")
	require.Equal(t, http.StatusBadGateway, w.Code)
}

func TestGalleryFeedCountParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	imagesDir := filepath.Join(root, "images")
	svc, err := services.NewGalleryService(imagesDir, filepath.Join(root, "videos"))
	require.NoError(t, err)
	for _, name := range []string{"a.jpg", "b.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(imagesDir, name), []byte("img"), 0o644))
	}

	h := NewGalleryHandler(svc, 8)
	r := gin.New()
	r.GET("/api/gallery", h.Feed)

	var payload struct {
		Data []services.MediaItem `json:"data"`
	}

	w := get(t, r, "/api/gallery")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Len(t, payload.Data, 8)

	w = get(t, r, "/api/gallery?count=3")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Len(t, payload.Data, 3)

	w = get(t, r, "/api/gallery?count=3&offset=2")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Len(t, payload.Data, 3)

	w = get(t, r, "/api/gallery?count=-1")
	require.Equal(t, http.StatusBadRequest, w.Code)
}
