package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mathsoc-club/backend/internal/models"
	"github.com/mathsoc-club/backend/internal/storage"
	"github.com/mathsoc-club/backend/pkg/logger"
)

var (
	// ErrPostNotFound indicates that no document matched the requested slug.
	ErrPostNotFound = errors.New("post service: post not found")
	// ErrInvalidPostKind indicates an unknown content collection was requested.
	ErrInvalidPostKind = errors.New("post service: unknown post kind")
)

var (
	slugStripPattern    = regexp.MustCompile(`[^\w\s-]`)
	slugWhitespace      = regexp.MustCompile(`\s+`)
	slugHyphenCollapser = regexp.MustCompile(`-+`)
)

// Slugify derives a URL slug from a post title: lowercased, punctuation
// stripped, whitespace runs collapsed to single hyphens.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugStripPattern.ReplaceAllString(slug, "")
	slug = slugWhitespace.ReplaceAllString(slug, "-")
	slug = slugHyphenCollapser.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// PostView is the normalized payload shape served to content pages and stored
// in the content caches. Dates travel as Timestamp values so that both the
// native and the serialized shape re-normalize identically.
type PostView struct {
	ID                  string           `json:"id"`
	Kind                models.PostKind  `json:"kind"`
	Title               string           `json:"title"`
	Slug                string           `json:"slug"`
	Summary             string           `json:"summary"`
	Content             string           `json:"content"`
	Author              string           `json:"author"`
	Category            string           `json:"category"`
	MainImageURL        string           `json:"mainImageUrl"`
	AdditionalImageURLs []string         `json:"additionalImageUrls"`
	CreatedAt           models.Timestamp `json:"createdAt"`
	Date                models.Timestamp `json:"date"`
	Location            string           `json:"location,omitempty"`
}

// NewPostView projects a stored post into its public payload.
func NewPostView(post *models.Post) PostView {
	view := PostView{
		ID:                  post.ID,
		Kind:                post.Kind,
		Title:               post.Title,
		Slug:                post.EffectiveSlug(),
		Summary:             post.Summary,
		Content:             post.Content,
		Author:              post.Author,
		Category:            post.Category,
		MainImageURL:        post.MainImageURL,
		AdditionalImageURLs: append([]string(nil), post.AdditionalImageURLs...),
		CreatedAt:           models.NewTimestamp(post.CreatedAt),
		Location:            post.Location,
	}
	if post.EventDate != nil {
		view.Date = models.NewTimestamp(*post.EventDate)
	}
	return view
}

// PublishInput carries everything required to create a post. Image URLs are
// expected to already point at stored blobs.
type PublishInput struct {
	Kind                models.PostKind
	Title               string
	Summary             string
	Content             string
	Author              string
	Category            string
	MainImageURL        string
	AdditionalImageURLs []string
	EventDate           *time.Time
	Location            string
	CreatedBy           string
}

// PostService manages the content collections behind the events and
// community-service pages.
type PostService struct {
	db        *gorm.DB
	blobs     storage.BlobStore
	sanitizer *bluemonday.Policy
	log       *zap.Logger
}

// NewPostService wires the service. The blob store may be nil when media
// cleanup on delete is not wanted.
func NewPostService(db *gorm.DB, blobs storage.BlobStore) (*PostService, error) {
	if db == nil {
		return nil, errors.New("post service: database handle is required")
	}
	return &PostService{
		db:        db,
		blobs:     blobs,
		sanitizer: bluemonday.UGCPolicy(),
		log:       logger.WithModule("services.posts"),
	}, nil
}

// List returns the public payloads for one collection. Events are ordered by
// their event date, newest first; community posts by publish time.
func (s *PostService) List(ctx context.Context, kind models.PostKind) ([]PostView, error) {
	if !kind.Valid() {
		return nil, ErrInvalidPostKind
	}

	order := "created_at DESC"
	if kind == models.PostKindEvent {
		order = "event_date DESC"
	}

	var posts []models.Post
	if err := s.db.WithContext(ensuredContext(ctx)).
		Where("kind = ?", kind).
		Order(order).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("post service: list %s posts: %w", kind, err)
	}

	views := make([]PostView, 0, len(posts))
	for i := range posts {
		views = append(views, NewPostView(&posts[i]))
	}
	return views, nil
}

// GetBySlug returns a single document from a collection. The lookup matches
// the derived slug first and falls back to the raw document id, mirroring the
// slug-or-id links the site renders.
func (s *PostService) GetBySlug(ctx context.Context, kind models.PostKind, slug string) (*PostView, error) {
	if !kind.Valid() {
		return nil, ErrInvalidPostKind
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrPostNotFound
	}

	var post models.Post
	err := s.db.WithContext(ensuredContext(ctx)).
		Where("kind = ? AND (slug = ? OR id = ?)", kind, slug, slug).
		Limit(1).
		Take(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("post service: get %s %q: %w", kind, slug, err)
	}

	view := NewPostView(&post)
	return &view, nil
}

// AdminList returns every stored document across both collections, newest
// first, for the admin dashboard.
func (s *PostService) AdminList(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := s.db.WithContext(ensuredContext(ctx)).
		Order("created_at DESC").
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("post service: admin list: %w", err)
	}
	return posts, nil
}

// Publish validates and stores a new document. The slug is derived from the
// title and the content body is sanitized before it is persisted.
func (s *PostService) Publish(ctx context.Context, input PublishInput) (*models.Post, error) {
	if !input.Kind.Valid() {
		return nil, ErrInvalidPostKind
	}

	title := strings.TrimSpace(input.Title)
	switch {
	case title == "":
		return nil, errors.New("post service: title is required")
	case strings.TrimSpace(input.Summary) == "":
		return nil, errors.New("post service: summary is required")
	case strings.TrimSpace(input.Content) == "":
		return nil, errors.New("post service: content is required")
	case strings.TrimSpace(input.Author) == "":
		return nil, errors.New("post service: author is required")
	case strings.TrimSpace(input.Category) == "":
		return nil, errors.New("post service: category is required")
	case input.MainImageURL == "":
		return nil, errors.New("post service: main image is required")
	}
	if len(input.AdditionalImageURLs) != models.AdditionalImageCount {
		return nil, fmt.Errorf("post service: exactly %d additional images are required, got %d",
			models.AdditionalImageCount, len(input.AdditionalImageURLs))
	}
	if input.Kind == models.PostKindEvent {
		if input.EventDate == nil {
			return nil, errors.New("post service: event date is required")
		}
		if strings.TrimSpace(input.Location) == "" {
			return nil, errors.New("post service: event location is required")
		}
	}

	post := models.Post{
		Kind:                input.Kind,
		Title:               title,
		Slug:                Slugify(title),
		Summary:             strings.TrimSpace(input.Summary),
		Content:             s.sanitizer.Sanitize(input.Content),
		Author:              strings.TrimSpace(input.Author),
		Category:            strings.TrimSpace(input.Category),
		MainImageURL:        input.MainImageURL,
		AdditionalImageURLs: models.ImageURLList(input.AdditionalImageURLs),
		CreatedBy:           input.CreatedBy,
		EventDate:           input.EventDate,
		Location:            strings.TrimSpace(input.Location),
	}

	if err := s.db.WithContext(ensuredContext(ctx)).Create(&post).Error; err != nil {
		return nil, fmt.Errorf("post service: create post: %w", err)
	}

	s.log.Info("post published",
		zap.String("kind", string(post.Kind)),
		zap.String("slug", post.Slug),
		zap.String("id", post.ID))
	return &post, nil
}

// Delete removes a document and then tries to clean up its stored media.
// Blob deletion failures are logged and swallowed: the document removal is
// what matters, orphaned files are harmless.
func (s *PostService) Delete(ctx context.Context, kind models.PostKind, id string) error {
	if !kind.Valid() {
		return ErrInvalidPostKind
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrPostNotFound
	}

	ctx = ensuredContext(ctx)

	var post models.Post
	err := s.db.WithContext(ctx).
		Where("kind = ? AND id = ?", kind, id).
		Take(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPostNotFound
	}
	if err != nil {
		return fmt.Errorf("post service: load post %q: %w", id, err)
	}

	if err := s.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", post.ID).Error; err != nil {
		return fmt.Errorf("post service: delete post %q: %w", id, err)
	}

	if s.blobs != nil {
		urls := append([]string{post.MainImageURL}, post.AdditionalImageURLs...)
		for _, url := range urls {
			if url == "" {
				continue
			}
			if err := s.blobs.Delete(ctx, url); err != nil {
				s.log.Warn("failed to delete post media",
					zap.String("id", post.ID),
					zap.String("url", url),
					zap.Error(err))
			}
		}
	}

	s.log.Info("post deleted", zap.String("kind", string(kind)), zap.String("id", post.ID))
	return nil
}

func ensuredContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
