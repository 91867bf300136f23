package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mathsoc-club/backend/internal/cache"
	"github.com/mathsoc-club/backend/internal/models"
	"github.com/mathsoc-club/backend/internal/services"
	apperrors "github.com/mathsoc-club/backend/pkg/errors"
	"github.com/mathsoc-club/backend/pkg/response"
)

// ContentHandler serves the events and community-service pages through four
// independent read-through caches: one list cache and one detail cache per
// collection. Caches never invalidate one another; a list refresh does not
// warm details and vice versa.
type ContentHandler struct {
	posts   *services.PostService
	lists   map[models.PostKind]*cache.ContentCache
	details map[models.PostKind]*cache.ContentCache
}

// NewContentHandler builds the caches and restores their persisted snapshots
// so a restarted instance starts warm.
func NewContentHandler(ctx context.Context, posts *services.PostService, store cache.Store, ttl time.Duration) *ContentHandler {
	h := &ContentHandler{
		posts: posts,
		lists: map[models.PostKind]*cache.ContentCache{
			models.PostKindEvent:     cache.NewContentCache("event-list", ttl, store),
			models.PostKindCommunity: cache.NewContentCache("community-list", ttl, store),
		},
		details: map[models.PostKind]*cache.ContentCache{
			models.PostKindEvent:     cache.NewContentCache("event-detail", ttl, store),
			models.PostKindCommunity: cache.NewContentCache("community-detail", ttl, store),
		},
	}
	for _, c := range h.lists {
		c.Restore(ctx)
	}
	for _, c := range h.details {
		c.Restore(ctx)
	}
	return h
}

// GET /api/events
func (h *ContentHandler) ListEvents(c *gin.Context) {
	h.list(c, models.PostKindEvent)
}

// GET /api/community-posts
func (h *ContentHandler) ListCommunityPosts(c *gin.Context) {
	h.list(c, models.PostKindCommunity)
}

// GET /api/events/:slug
func (h *ContentHandler) GetEvent(c *gin.Context) {
	h.detail(c, models.PostKindEvent)
}

// GET /api/community-posts/:slug
func (h *ContentHandler) GetCommunityPost(c *gin.Context) {
	h.detail(c, models.PostKindCommunity)
}

func (h *ContentHandler) list(c *gin.Context, kind models.PostKind) {
	payload, err := h.lists[kind].FetchOrServe(requestContext(c), cache.ListKey, func(ctx context.Context) (interface{}, error) {
		return h.posts.List(ctx, kind)
	})
	if err != nil {
		response.Error(c, apperrors.ErrLoadFailed)
		return
	}
	response.Success(c, http.StatusOK, payload)
}

func (h *ContentHandler) detail(c *gin.Context, kind models.PostKind) {
	slug := c.Param("slug")

	payload, err := h.details[kind].FetchOrServe(requestContext(c), slug, func(ctx context.Context) (interface{}, error) {
		return h.posts.GetBySlug(ctx, kind, slug)
	})
	if errors.Is(err, services.ErrPostNotFound) {
		response.Error(c, apperrors.ErrPostNotFound)
		return
	}
	if err != nil {
		response.Error(c, apperrors.ErrLoadFailed)
		return
	}
	response.Success(c, http.StatusOK, payload)
}
