package services

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mathsoc-club/backend/pkg/logger"
)

// DefaultRepeatFactor sets how many shuffled passes over the media set make up
// one virtual feed when the caller does not override it.
const DefaultRepeatFactor = 10

// MediaItem is one entry of the gallery feed.
type MediaItem struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Src     string `json:"src"`
	Poster  string `json:"poster,omitempty"`
	Caption string `json:"caption"`
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mov":  true,
}

// GalleryService builds the endless gallery feed from the media dropped into
// the images and videos directories. There is no database behind it: the
// filesystem is the source of truth.
type GalleryService struct {
	imagesDir string
	videosDir string
	imagesURL string
	videosURL string
	log       *zap.Logger
	repeat    int
	shuffle   func(n int, swap func(i, j int))
	nowMillis func() int64
}

// NewGalleryService creates both media directories when absent so that a fresh
// deployment starts with an empty gallery rather than an error.
func NewGalleryService(imagesDir, videosDir string) (*GalleryService, error) {
	imagesDir = strings.TrimSpace(imagesDir)
	videosDir = strings.TrimSpace(videosDir)
	if imagesDir == "" || videosDir == "" {
		return nil, errors.New("gallery service: both media directories are required")
	}
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		return nil, fmt.Errorf("gallery service: create images dir: %w", err)
	}
	if err := os.MkdirAll(videosDir, 0o755); err != nil {
		return nil, fmt.Errorf("gallery service: create videos dir: %w", err)
	}

	return &GalleryService{
		imagesDir: imagesDir,
		videosDir: videosDir,
		imagesURL: "/images/gallery",
		videosURL: "/videos/gallery",
		log:       logger.WithModule("services.gallery"),
		repeat:    DefaultRepeatFactor,
		shuffle:   rand.Shuffle,
		nowMillis: func() int64 { return time.Now().UnixMilli() },
	}, nil
}

// SetRepeatFactor overrides how many shuffled passes make up one virtual feed.
// Non-positive values are ignored.
func (s *GalleryService) SetRepeatFactor(n int) {
	if n > 0 {
		s.repeat = n
	}
}

// ListMediaFiles scans both directories and returns the base media set,
// images first. An unreadable directory degrades to an empty listing.
func (s *GalleryService) ListMediaFiles() []MediaItem {
	imageNames := s.readDir(s.imagesDir)
	videoNames := s.readDir(s.videosDir)

	imageSet := make(map[string]bool, len(imageNames))
	for _, name := range imageNames {
		imageSet[name] = true
	}

	items := make([]MediaItem, 0, len(imageNames)+len(videoNames))
	for i, name := range imageNames {
		if !imageExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		items = append(items, MediaItem{
			ID:      fmt.Sprintf("image-%d", i),
			Type:    "image",
			Src:     path.Join(s.imagesURL, name),
			Caption: Caption(name),
		})
	}
	for i, name := range videoNames {
		if !videoExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		item := MediaItem{
			ID:      fmt.Sprintf("video-%d", i),
			Type:    "video",
			Src:     path.Join(s.videosURL, name),
			Caption: Caption(name),
		}
		// A sibling "<base>-thumbnail.jpg" in the images directory, when
		// present, becomes the video poster frame.
		thumb := strings.TrimSuffix(name, filepath.Ext(name)) + "-thumbnail.jpg"
		if imageSet[thumb] {
			item.Poster = path.Join(s.imagesURL, thumb)
		}
		items = append(items, item)
	}
	return items
}

// BuildVirtualFeed concatenates repeat independently shuffled copies of the
// base set. Every entry gets a fresh unique id so list renderers never see a
// duplicate key, no matter how often the same file reappears.
func (s *GalleryService) BuildVirtualFeed(items []MediaItem, repeat int) []MediaItem {
	if len(items) == 0 || repeat <= 0 {
		return nil
	}

	nonce := s.nowMillis()
	feed := make([]MediaItem, 0, len(items)*repeat)
	for round := 0; round < repeat; round++ {
		shuffled := append([]MediaItem(nil), items...)
		s.shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		for idx := range shuffled {
			shuffled[idx].ID = fmt.Sprintf("%s-%d-%d-%d", shuffled[idx].ID, nonce, round, idx)
		}
		feed = append(feed, shuffled...)
	}
	return feed
}

// Feed returns up to count entries of a fresh virtual feed.
func (s *GalleryService) Feed(count int) []MediaItem {
	if count <= 0 {
		return nil
	}

	items := s.ListMediaFiles()
	if len(items) == 0 {
		return nil
	}

	repeat := s.repeat
	if need := (count + len(items) - 1) / len(items); need > repeat {
		repeat = need
	}

	feed := s.BuildVirtualFeed(items, repeat)
	if count < len(feed) {
		feed = feed[:count]
	}
	return feed
}

func (s *GalleryService) readDir(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.log.Warn("failed to read media directory", zap.String("dir", dir), zap.Error(err))
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names
}

// Caption derives a human caption from a media filename: the extension is
// stripped, separators become spaces, and each word is title-cased.
func Caption(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)

	words := strings.Fields(base)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
