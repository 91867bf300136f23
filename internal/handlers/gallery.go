package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mathsoc-club/backend/internal/services"
	appErrors "github.com/mathsoc-club/backend/pkg/errors"
	"github.com/mathsoc-club/backend/pkg/metrics"
	"github.com/mathsoc-club/backend/pkg/response"
)

// DefaultGalleryPageSize matches the batch the gallery page appends per scroll.
const DefaultGalleryPageSize = 8

// maxGalleryPageSize caps a single response; clients page for more.
const maxGalleryPageSize = 500

// GalleryHandler serves the endless media feed.
type GalleryHandler struct {
	gallery  *services.GalleryService
	pageSize int
}

func NewGalleryHandler(gallery *services.GalleryService, pageSize int) *GalleryHandler {
	if pageSize <= 0 {
		pageSize = DefaultGalleryPageSize
	}
	return &GalleryHandler{gallery: gallery, pageSize: pageSize}
}

// GET /api/gallery?count=N&offset=M
//
// Every response draws from a freshly shuffled virtual feed, so offset paging
// extends the scroll rather than replaying earlier pages.
func (h *GalleryHandler) Feed(c *gin.Context) {
	count := parseIntQuery(c, "count", h.pageSize)
	offset := parseIntQuery(c, "offset", 0)
	if count < 0 || offset < 0 {
		response.Error(c, appErrors.NewBadRequest("count and offset must not be negative"))
		return
	}
	if count > maxGalleryPageSize {
		count = maxGalleryPageSize
	}

	feed := h.gallery.Feed(offset + count)
	if offset < len(feed) {
		feed = feed[offset:]
	} else {
		feed = nil
	}
	metrics.GalleryFeedItems.Observe(float64(len(feed)))

	if feed == nil {
		feed = []services.MediaItem{}
	}
	response.SuccessWithMeta(c, http.StatusOK, feed, &response.Meta{Count: len(feed), Offset: offset})
}
