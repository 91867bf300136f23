package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	iauth "github.com/mathsoc-club/backend/internal/auth"
	"github.com/mathsoc-club/backend/internal/middleware"
	"github.com/mathsoc-club/backend/internal/models"
	"github.com/mathsoc-club/backend/internal/services"
	"github.com/mathsoc-club/backend/internal/storage"
	apperrors "github.com/mathsoc-club/backend/pkg/errors"
	"github.com/mathsoc-club/backend/pkg/response"
)

// AdminHandler backs the publish dashboard: creating and deleting posts and
// managing upcoming-activity alerts. All routes require an admin token.
type AdminHandler struct {
	posts  *services.PostService
	alerts *services.AlertService
	blobs  storage.BlobStore
}

func NewAdminHandler(posts *services.PostService, alerts *services.AlertService, blobs storage.BlobStore) *AdminHandler {
	return &AdminHandler{posts: posts, alerts: alerts, blobs: blobs}
}

// GET /api/admin/posts
func (h *AdminHandler) ListPosts(c *gin.Context) {
	posts, err := h.posts.AdminList(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, posts, &response.Meta{Count: len(posts)})
}

// POST /api/admin/posts
//
// Multipart form: text fields plus one "mainImage" file and exactly five
// "additionalImages" files. Images are stored first; a validation failure
// after upload leaves orphaned blobs behind, which is accepted (they are
// harmless and the dashboard retries with fresh uploads).
func (h *AdminHandler) CreatePost(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid multipart form"))
		return
	}

	input := services.PublishInput{
		Kind:     models.PostKind(strings.TrimSpace(c.PostForm("kind"))),
		Title:    c.PostForm("title"),
		Summary:  c.PostForm("summary"),
		Content:  c.PostForm("content"),
		Author:   c.PostForm("author"),
		Category: c.PostForm("category"),
		Location: c.PostForm("location"),
	}
	if !input.Kind.Valid() {
		response.Error(c, apperrors.NewBadRequest("kind must be event or community"))
		return
	}
	if raw := strings.TrimSpace(c.PostForm("date")); raw != "" {
		date, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, apperrors.NewBadRequest("date must be RFC 3339"))
			return
		}
		input.EventDate = &date
	}
	if claims, ok := c.Get(middleware.CtxClaimsKey); ok {
		if parsed, ok := claims.(*iauth.Claims); ok {
			input.CreatedBy = parsed.UserID
		}
	}

	mains := form.File["mainImage"]
	if len(mains) != 1 {
		response.Error(c, apperrors.NewBadRequest("exactly one main image is required"))
		return
	}
	additional := form.File["additionalImages"]
	if len(additional) != models.AdditionalImageCount {
		response.Error(c, apperrors.NewBadRequest("exactly five additional images are required"))
		return
	}

	input.MainImageURL, err = h.saveUpload(c, mains[0])
	if err != nil {
		response.Error(c, err)
		return
	}
	for _, file := range additional {
		url, err := h.saveUpload(c, file)
		if err != nil {
			response.Error(c, err)
			return
		}
		input.AdditionalImageURLs = append(input.AdditionalImageURLs, url)
	}

	post, err := h.posts.Publish(requestContext(c), input)
	if errors.Is(err, services.ErrInvalidPostKind) {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}
	if err != nil {
		response.Error(c, apperrors.NewBadRequest(strings.TrimPrefix(err.Error(), "post service: ")))
		return
	}
	response.Success(c, http.StatusCreated, post)
}

// DELETE /api/admin/posts/:kind/:id
func (h *AdminHandler) DeletePost(c *gin.Context) {
	kind := models.PostKind(c.Param("kind"))
	err := h.posts.Delete(requestContext(c), kind, c.Param("id"))
	switch {
	case errors.Is(err, services.ErrInvalidPostKind):
		response.Error(c, apperrors.NewBadRequest("kind must be event or community"))
	case errors.Is(err, services.ErrPostNotFound):
		response.Error(c, apperrors.ErrPostNotFound)
	case err != nil:
		response.Error(c, err)
	default:
		response.Success(c, http.StatusOK, gin.H{"deleted": true})
	}
}

// GET /api/admin/alerts
func (h *AdminHandler) ListAlerts(c *gin.Context) {
	alerts, err := h.alerts.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, alerts, &response.Meta{Count: len(alerts)})
}

type createAlertRequest struct {
	Title     string `json:"title" validate:"required"`
	Date      string `json:"date"`
	Location  string `json:"location"`
	Link      string `json:"link"`
	Prizepool string `json:"prizepool"`
}

// POST /api/admin/alerts
func (h *AdminHandler) CreateAlert(c *gin.Context) {
	var req createAlertRequest
	if !bindAndValidate(c, &req) {
		return
	}

	input := services.AlertInput{
		Title:     req.Title,
		Location:  req.Location,
		Link:      req.Link,
		Prizepool: req.Prizepool,
	}
	if raw := strings.TrimSpace(req.Date); raw != "" {
		date, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, apperrors.NewBadRequest("date must be RFC 3339"))
			return
		}
		input.Date = &date
	}

	alert, err := h.alerts.Create(requestContext(c), input)
	if err != nil {
		response.Error(c, apperrors.NewBadRequest(strings.TrimPrefix(err.Error(), "alert service: ")))
		return
	}
	response.Success(c, http.StatusCreated, alert)
}

// DELETE /api/admin/alerts/:id
func (h *AdminHandler) DeleteAlert(c *gin.Context) {
	err := h.alerts.Delete(requestContext(c), c.Param("id"))
	switch {
	case errors.Is(err, services.ErrAlertNotFound):
		response.Error(c, apperrors.ErrNotFound)
	case err != nil:
		response.Error(c, err)
	default:
		response.Success(c, http.StatusOK, gin.H{"deleted": true})
	}
}

func (h *AdminHandler) saveUpload(c *gin.Context, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", apperrors.NewBadRequest("unreadable upload " + file.Filename)
	}
	defer src.Close()

	url, err := h.blobs.Save(requestContext(c), file.Filename, src)
	if err != nil {
		return "", apperrors.Wrap(err, "Failed to store uploaded image")
	}
	return url, nil
}
