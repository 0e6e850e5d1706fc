package services

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestThumbnailService(t *testing.T) (ThumbnailService, string, string) {
	t.Helper()

	photosDir := t.TempDir()
	thumbnailsDir := t.TempDir()

	service := NewThumbnailService(ThumbnailServiceConfig{
		PhotosDir:     photosDir,
		ThumbnailsDir: thumbnailsDir,
		MaxWidth:      200,
		MaxHeight:     200,
	})

	return service, photosDir, thumbnailsDir
}

func TestThumbnailService_ThumbnailPath(t *testing.T) {
	service, _, thumbnailsDir := newTestThumbnailService(t)

	t.Run("mirrors the photo tree", func(t *testing.T) {
		tests := []struct {
			input string
			want  string
		}{
			{"Vacation/a.jpg", filepath.Join(thumbnailsDir, "Vacation", "a.jpg")},
			{"a.jpg", filepath.Join(thumbnailsDir, "a.jpg")},
			{"Vacation/Beach/b.png", filepath.Join(thumbnailsDir, "Vacation", "Beach", "b.png")},
			{"/Vacation/a.jpg", filepath.Join(thumbnailsDir, "Vacation", "a.jpg")},
		}

		for _, tt := range tests {
			got, err := service.ThumbnailPath(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		}
	})

	t.Run("rejects paths escaping the root", func(t *testing.T) {
		for _, input := range []string{"../a.jpg", "..", "Vacation/../../a.jpg", "", "."} {
			_, err := service.ThumbnailPath(input)
			assert.ErrorIs(t, err, ErrPathViolation, "input: %q", input)
		}
	})
}

func TestThumbnailService_GetOrCreateThumbnail(t *testing.T) {
	service, photosDir, _ := newTestThumbnailService(t)

	writeTestImage(t, filepath.Join(photosDir, "Vacation", "big.jpg"), 800, 600)

	thumbnailPath, err := service.GetOrCreateThumbnail("Vacation/big.jpg")
	require.NoError(t, err)
	require.FileExists(t, thumbnailPath)

	// 800x600 into a 200x200 box keeps the aspect ratio.
	width, height := decodeImageSize(t, thumbnailPath)
	assert.Equal(t, 200, width)
	assert.Equal(t, 150, height)
}

func TestThumbnailService_GetOrCreateThumbnail_ReusesFresh(t *testing.T) {
	service, photosDir, _ := newTestThumbnailService(t)

	originalPath := filepath.Join(photosDir, "a.jpg")
	writeTestImage(t, originalPath, 400, 400)

	thumbnailPath, err := service.GetOrCreateThumbnail("a.jpg")
	require.NoError(t, err)

	/*
	 * Pin the timestamps so freshness does not depend on clock
	 * resolution: thumbnail strictly newer than its source.
	 */
	base := time.Now().Add(-1 * time.Hour)
	require.NoError(t, os.Chtimes(originalPath, base, base))
	require.NoError(t, os.Chtimes(thumbnailPath, base.Add(time.Minute), base.Add(time.Minute)))

	before, err := os.Stat(thumbnailPath)
	require.NoError(t, err)

	_, err = service.GetOrCreateThumbnail("a.jpg")
	require.NoError(t, err)

	after, err := os.Stat(thumbnailPath)
	require.NoError(t, err)

	assert.True(t, after.ModTime().Equal(before.ModTime()), "fresh thumbnail should not be rewritten")
}

func TestThumbnailService_GetOrCreateThumbnail_RegeneratesStale(t *testing.T) {
	service, photosDir, _ := newTestThumbnailService(t)

	originalPath := filepath.Join(photosDir, "a.jpg")
	writeTestImage(t, originalPath, 400, 400)

	thumbnailPath, err := service.GetOrCreateThumbnail("a.jpg")
	require.NoError(t, err)

	// Age the thumbnail behind its source.
	base := time.Now().Add(-1 * time.Hour)
	require.NoError(t, os.Chtimes(thumbnailPath, base, base))
	require.NoError(t, os.Chtimes(originalPath, base.Add(time.Minute), base.Add(time.Minute)))

	_, err = service.GetOrCreateThumbnail("a.jpg")
	require.NoError(t, err)

	after, err := os.Stat(thumbnailPath)
	require.NoError(t, err)

	assert.True(t, after.ModTime().After(base), "stale thumbnail should be regenerated")
}

func TestThumbnailService_GetOrCreateThumbnail_NoUpscale(t *testing.T) {
	service, photosDir, _ := newTestThumbnailService(t)

	writeTestImage(t, filepath.Join(photosDir, "small.jpg"), 100, 50)

	thumbnailPath, err := service.GetOrCreateThumbnail("small.jpg")
	require.NoError(t, err)

	width, height := decodeImageSize(t, thumbnailPath)
	assert.Equal(t, 100, width)
	assert.Equal(t, 50, height)
}

func TestThumbnailService_GetOrCreateThumbnail_Errors(t *testing.T) {
	service, photosDir, _ := newTestThumbnailService(t)

	t.Run("missing source", func(t *testing.T) {
		_, err := service.GetOrCreateThumbnail("nope.jpg")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("traversal", func(t *testing.T) {
		_, err := service.GetOrCreateThumbnail("../escape.jpg")
		assert.ErrorIs(t, err, ErrPathViolation)
	})

	t.Run("corrupt source", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(photosDir, "bad.jpg"), []byte("not an image"), 0644))

		_, err := service.GetOrCreateThumbnail("bad.jpg")
		require.Error(t, err)

		var genErr *ThumbnailGenerationError
		require.True(t, errors.As(err, &genErr))
		assert.Equal(t, "bad.jpg", genErr.Path)
	})
}

func TestIsFresh(t *testing.T) {
	now := time.Now()

	assert.True(t, isFresh(now, now))
	assert.True(t, isFresh(now.Add(time.Second), now))
	assert.False(t, isFresh(now.Add(-time.Second), now))
}
