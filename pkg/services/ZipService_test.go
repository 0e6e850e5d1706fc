package services

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adampresley/photogallery/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlbumZipName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{".", "gallery.zip"},
		{"", "gallery.zip"},
		{"Vacation", "Vacation.zip"},
		{"Vacation/Beach", "Vacation-Beach.zip"},
		{"Summer 2024", "Summer-2024.zip"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, AlbumZipName(tt.input))
		})
	}
}

func TestZipService_CreateZipAsync(t *testing.T) {
	photosDir := t.TempDir()
	downloadsDir := t.TempDir()

	writeTestImage(t, filepath.Join(photosDir, "Vacation", "a.jpg"), 10, 10)
	writeTestImage(t, filepath.Join(photosDir, "Vacation", "b.jpg"), 10, 10)

	service := NewZipService(ZipServiceConfig{
		DownloadsDir:   downloadsDir,
		PhotosDir:      photosDir,
		ExpirationDays: 7,
	})

	photos := []models.Photo{
		{AlbumName: "Vacation", Filename: "a.jpg", RelativePath: "Vacation/a.jpg"},
		{AlbumName: "Vacation", Filename: "b.jpg", RelativePath: "Vacation/b.jpg"},
	}

	filename, err := service.CreateZipAsync("Vacation", photos)
	require.NoError(t, err)
	assert.Equal(t, "Vacation.zip", filename)

	zipPath := filepath.Join(downloadsDir, filename)

	// The archive is built in the background and renamed into place.
	require.Eventually(t, func() bool {
		_, err := os.Stat(zipPath)
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)

	reader, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer reader.Close()

	names := []string{}

	for _, f := range reader.File {
		names = append(names, f.Name)
	}

	assert.ElementsMatch(t, []string{"a.jpg", "b.jpg"}, names)
}

func TestZipService_CreateZipAsync_ReusesExisting(t *testing.T) {
	downloadsDir := t.TempDir()

	service := NewZipService(ZipServiceConfig{
		DownloadsDir:   downloadsDir,
		PhotosDir:      t.TempDir(),
		ExpirationDays: 7,
	})

	zipPath := filepath.Join(downloadsDir, "Vacation.zip")
	require.NoError(t, os.WriteFile(zipPath, []byte("existing"), 0644))

	filename, err := service.CreateZipAsync("Vacation", nil)
	require.NoError(t, err)
	assert.Equal(t, "Vacation.zip", filename)

	// Reuse leaves the existing archive untouched.
	b, err := os.ReadFile(zipPath)
	require.NoError(t, err)
	assert.Equal(t, "existing", string(b))
}

func TestZipService_CleanupExpiredZips(t *testing.T) {
	downloadsDir := t.TempDir()

	service := NewZipService(ZipServiceConfig{
		DownloadsDir:   downloadsDir,
		PhotosDir:      t.TempDir(),
		ExpirationDays: 7,
	})

	expiredZip := filepath.Join(downloadsDir, "old.zip")
	expiredPart := filepath.Join(downloadsDir, "abandoned.part")
	freshZip := filepath.Join(downloadsDir, "fresh.zip")
	unrelated := filepath.Join(downloadsDir, "notes.txt")

	for _, path := range []string{expiredZip, expiredPart, freshZip, unrelated} {
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	}

	old := time.Now().AddDate(0, 0, -8)
	require.NoError(t, os.Chtimes(expiredZip, old, old))
	require.NoError(t, os.Chtimes(expiredPart, old, old))
	require.NoError(t, os.Chtimes(unrelated, old, old))

	service.CleanupExpiredZips()

	assert.NoFileExists(t, expiredZip)
	assert.NoFileExists(t, expiredPart)
	assert.FileExists(t, freshZip)
	assert.FileExists(t, unrelated)
}
