package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestGalleryService(t *testing.T, imageNames, videoNames []string) *GalleryService {
	t.Helper()

	root := t.TempDir()
	imagesDir := filepath.Join(root, "images")
	videosDir := filepath.Join(root, "videos")

	svc, err := NewGalleryService(imagesDir, videosDir)
	require.NoError(t, err)

	for _, name := range imageNames {
		require.NoError(t, os.WriteFile(filepath.Join(imagesDir, name), []byte("img"), 0o644))
	}
	for _, name := range videoNames {
		require.NoError(t, os.WriteFile(filepath.Join(videosDir, name), []byte("vid"), 0o644))
	}
	return svc
}

func TestCaption(t *testing.T) {
	require.Equal(t, "Pi Day Celebration", Caption("pi-day-celebration.jpg"))
	require.Equal(t, "Integration Bee 2024", Caption("integration_bee_2024.png"))
	require.Equal(t, "Banquet", Caption("BANQUET.webp"))
	require.Equal(t, "", Caption(".gitignore"))
}

func TestNewGalleryServiceCreatesDirectories(t *testing.T) {
	root := t.TempDir()
	imagesDir := filepath.Join(root, "images")
	videosDir := filepath.Join(root, "videos")

	_, err := NewGalleryService(imagesDir, videosDir)
	require.NoError(t, err)

	for _, dir := range []string{imagesDir, videosDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		require.True(t, info.IsDir())
	}
}

func TestListMediaFiles(t *testing.T) {
	svc := newTestGalleryService(t,
		[]string{"pi-day.jpg", "banquet.png", "talk-thumbnail.jpg", "notes.txt"},
		[]string{"talk.mp4", "README.md"},
	)

	items := svc.ListMediaFiles()
	require.Len(t, items, 4) // three images plus one video; non-media skipped

	byType := map[string]int{}
	var video MediaItem
	for _, item := range items {
		byType[item.Type]++
		if item.Type == "video" {
			video = item
		}
	}
	require.Equal(t, 3, byType["image"])
	require.Equal(t, 1, byType["video"])

	require.Equal(t, "/videos/gallery/talk.mp4", video.Src)
	require.Equal(t, "/images/gallery/talk-thumbnail.jpg", video.Poster)
	require.Equal(t, "Talk", video.Caption)
}

func TestListMediaFilesDegradesToEmpty(t *testing.T) {
	svc := newTestGalleryService(t, nil, nil)
	require.NoError(t, os.RemoveAll(svc.imagesDir))
	require.NoError(t, os.RemoveAll(svc.videosDir))

	require.Empty(t, svc.ListMediaFiles())
	require.Empty(t, svc.Feed(8))
}

func TestBuildVirtualFeedSizeAndUniqueIDs(t *testing.T) {
	svc := newTestGalleryService(t,
		[]string{"a.jpg", "b.jpg", "c.jpg"},
		[]string{"d.mp4"},
	)

	items := svc.ListMediaFiles()
	feed := svc.BuildVirtualFeed(items, 10)
	require.Len(t, feed, len(items)*10)

	seen := make(map[string]bool, len(feed))
	perRound := make(map[string]int)
	for _, item := range feed {
		require.False(t, seen[item.ID], "duplicate feed id %s", item.ID)
		seen[item.ID] = true
		perRound[item.Src]++
	}
	// Every source file appears exactly once per shuffled round.
	for src, count := range perRound {
		require.Equal(t, 10, count, "source %s", src)
	}
}

func TestBuildVirtualFeedEmptyInput(t *testing.T) {
	svc := newTestGalleryService(t, nil, nil)
	require.Nil(t, svc.BuildVirtualFeed(nil, 10))
	require.Nil(t, svc.BuildVirtualFeed([]MediaItem{{ID: "image-0"}}, 0))
}

func TestFeedHonoursCount(t *testing.T) {
	svc := newTestGalleryService(t, []string{"a.jpg", "b.jpg"}, nil)

	require.Len(t, svc.Feed(8), 8)
	require.Len(t, svc.Feed(3), 3)

	// Asking for more than one default batch still yields a full page.
	require.Len(t, svc.Feed(50), 50)
	require.Nil(t, svc.Feed(0))
}
