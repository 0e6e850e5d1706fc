package services

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adampresley/photogallery/pkg/models"
	"github.com/google/uuid"
)

type ZipServiceConfig struct {
	DownloadsDir   string
	PhotosDir      string
	ExpirationDays int
}

type ZipServicer interface {
	CreateZipAsync(albumName string, photos []models.Photo) (string, error)
	StartCleanupRoutine(interval time.Duration)
	StopCleanupRoutine()
}

/*
ZipService builds album download archives in the background and
expires them after a configured number of days. Archives are built
under a temporary name and renamed into place, so a download URL
either serves a complete zip or a 404.
*/
type ZipService struct {
	config        ZipServiceConfig
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	wg            *sync.WaitGroup
}

func NewZipService(config ZipServiceConfig) ZipService {
	// Default expiration to 7 days if not specified
	if config.ExpirationDays <= 0 {
		config.ExpirationDays = 7
	}

	return ZipService{
		config:      config,
		stopCleanup: make(chan struct{}),
		wg:          &sync.WaitGroup{},
	}
}

/*
CreateZipAsync starts building a zip of an album's originals and
returns the download filename. If a current archive already exists it
is reused.
*/
func (s ZipService) CreateZipAsync(albumName string, photos []models.Photo) (string, error) {
	zipFilename := AlbumZipName(albumName)
	zipPath := filepath.Join(s.config.DownloadsDir, zipFilename)

	if _, err := os.Stat(zipPath); err == nil {
		slog.Info("zip file already exists, reusing", "zipPath", zipPath, "album", albumName)
		return zipFilename, nil
	}

	if err := os.MkdirAll(s.config.DownloadsDir, 0755); err != nil {
		return "", fmt.Errorf("error creating downloads directory: %w", err)
	}

	go s.processZip(zipPath, albumName, photos)

	return zipFilename, nil
}

// AlbumZipName returns the download filename for an album's archive.
func AlbumZipName(albumName string) string {
	cleaned := CleanAlbumName(albumName)

	if cleaned == RootAlbumName {
		return "gallery.zip"
	}

	slug := strings.ReplaceAll(strings.ReplaceAll(cleaned, "/", "-"), " ", "-")
	return fmt.Sprintf("%s.zip", slug)
}

func (s ZipService) processZip(zipPath, albumName string, photos []models.Photo) {
	l := slog.With("album", albumName, "zipPath", zipPath)
	l.Info("starting zip creation process")

	addFile := func(zipWriter *zip.Writer, photo models.Photo) error {
		src, err := os.Open(filepath.Join(s.config.PhotosDir, filepath.FromSlash(photo.RelativePath)))

		if err != nil {
			return fmt.Errorf("failed to open source file '%s': %w", photo.RelativePath, err)
		}

		defer src.Close()

		dest, err := zipWriter.Create(photo.Filename)

		if err != nil {
			return fmt.Errorf("failed to create file '%s' in zip: %w", photo.Filename, err)
		}

		if _, err := io.Copy(dest, src); err != nil {
			return fmt.Errorf("failed to copy file '%s' to zip: %w", photo.Filename, err)
		}

		return nil
	}

	/*
	 * Build under a unique temporary name so a concurrent download request
	 * never sees a partial archive.
	 */
	partPath := filepath.Join(s.config.DownloadsDir, uuid.NewString()+".part")
	partFile, err := os.Create(partPath)

	if err != nil {
		l.Error("failed to create zip work file", "error", err)
		return
	}

	zipWriter := zip.NewWriter(partFile)

	for _, photo := range photos {
		if err = addFile(zipWriter, photo); err != nil {
			l.Error("failed to add image to zip", "error", err, "image", photo.RelativePath)
			continue
		}
	}

	if err = zipWriter.Close(); err != nil {
		l.Error("failed to close zip writer", "error", err)
		_ = partFile.Close()
		_ = os.Remove(partPath)
		return
	}

	if err = partFile.Close(); err != nil {
		l.Error("failed to close zip work file", "error", err)
		_ = os.Remove(partPath)
		return
	}

	if err = os.Rename(partPath, zipPath); err != nil {
		l.Error("failed to move zip into place", "error", err)
		_ = os.Remove(partPath)
		return
	}

	l.Info("zip creation completed successfully", "numPhotos", len(photos))
}

// StartCleanupRoutine starts a periodic routine to clean up expired zip files
func (s ZipService) StartCleanupRoutine(interval time.Duration) {
	s.cleanupTicker = time.NewTicker(interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		for {
			select {
			case <-s.cleanupTicker.C:
				s.CleanupExpiredZips()
			case <-s.stopCleanup:
				s.cleanupTicker.Stop()
				return
			}
		}
	}()

	slog.Info("zip cleanup routine started", "interval", interval)
}

// StopCleanupRoutine stops the cleanup routine
func (s ZipService) StopCleanupRoutine() {
	if s.cleanupTicker != nil {
		close(s.stopCleanup)
		s.wg.Wait()
		slog.Info("zip cleanup routine stopped")
	}
}

/*
CleanupExpiredZips removes archives (and abandoned work files) older
than the expiration period.
*/
func (s ZipService) CleanupExpiredZips() {
	l := slog.With("function", "CleanupExpiredZips")
	l.Info("starting cleanup of expired zip files")

	cutoffTime := time.Now().AddDate(0, 0, -s.config.ExpirationDays)
	var removedCount int

	entries, err := os.ReadDir(s.config.DownloadsDir)

	if err != nil {
		if !os.IsNotExist(err) {
			l.Error("failed to list downloads directory", "error", err, "path", s.config.DownloadsDir)
		}

		return
	}

	for _, entry := range entries {
		name := strings.ToLower(entry.Name())

		if !strings.HasSuffix(name, ".zip") && !strings.HasSuffix(name, ".part") {
			continue
		}

		info, err := entry.Info()

		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoffTime) {
			path := filepath.Join(s.config.DownloadsDir, entry.Name())
			l.Info("removing expired zip file", "path", path, "modTime", info.ModTime())

			if err := os.Remove(path); err != nil {
				l.Error("failed to remove expired zip file", "error", err, "path", path)
			} else {
				removedCount++
			}
		}
	}

	l.Info("completed cleanup of expired zip files", "removed", removedCount)
}
