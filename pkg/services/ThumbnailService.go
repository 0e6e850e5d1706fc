package services

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nfnt/resize"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/sync/singleflight"

	_ "golang.org/x/image/webp"
)

type ThumbnailServicer interface {
	GetOrCreateThumbnail(relativePath string) (string, error)
	ThumbnailPath(relativePath string) (string, error)
}

type ThumbnailServiceConfig struct {
	PhotosDir     string
	ThumbnailsDir string
	MaxWidth      int
	MaxHeight     int
}

/*
ThumbnailService maintains an on-disk thumbnail cache that mirrors the
photo directory tree. The filesystem is the cache's only state: a
thumbnail is valid when it exists and is at least as new as its
source.
*/
type ThumbnailService struct {
	photosDir     string
	thumbnailsDir string
	maxWidth      int
	maxHeight     int
	group         *singleflight.Group
}

func NewThumbnailService(config ThumbnailServiceConfig) ThumbnailService {
	photosDir, err := filepath.Abs(config.PhotosDir)

	if err != nil {
		photosDir = config.PhotosDir
	}

	thumbnailsDir, err := filepath.Abs(config.ThumbnailsDir)

	if err != nil {
		thumbnailsDir = config.ThumbnailsDir
	}

	return ThumbnailService{
		photosDir:     photosDir,
		thumbnailsDir: thumbnailsDir,
		maxWidth:      config.MaxWidth,
		maxHeight:     config.MaxHeight,
		group:         &singleflight.Group{},
	}
}

/*
ThumbnailPath maps a photo's root-relative path onto its mirrored
location under the thumbnails root. This is a pure path computation;
it does not touch the filesystem. Identifiers escaping the root fail
with ErrPathViolation.
*/
func (s ThumbnailService) ThumbnailPath(relativePath string) (string, error) {
	cleaned, err := cleanRelativePath(relativePath)

	if err != nil {
		return "", err
	}

	return filepath.Join(s.thumbnailsDir, filepath.FromSlash(cleaned)), nil
}

/*
GetOrCreateThumbnail returns the absolute path of the thumbnail for a
photo, generating it first when it is absent or older than its
source. A fresh thumbnail costs two stat calls and a timestamp
compare. Concurrent requests for the same missing thumbnail are
collapsed into a single generation.
*/
func (s ThumbnailService) GetOrCreateThumbnail(relativePath string) (string, error) {
	var (
		err           error
		cleaned       string
		originalInfo  os.FileInfo
		thumbnailInfo os.FileInfo
	)

	if cleaned, err = cleanRelativePath(relativePath); err != nil {
		return "", err
	}

	originalPath := filepath.Join(s.photosDir, filepath.FromSlash(cleaned))
	thumbnailPath := filepath.Join(s.thumbnailsDir, filepath.FromSlash(cleaned))

	if originalInfo, err = os.Stat(originalPath); err != nil || !originalInfo.Mode().IsRegular() {
		return "", fmt.Errorf("photo '%s': %w", cleaned, ErrNotFound)
	}

	if thumbnailInfo, err = os.Stat(thumbnailPath); err == nil {
		if isFresh(thumbnailInfo.ModTime(), originalInfo.ModTime()) {
			return thumbnailPath, nil
		}
	}

	_, err, _ = s.group.Do(cleaned, func() (any, error) {
		/*
		 * Another caller may have finished the same generation while this
		 * one waited on the flight group.
		 */
		if info, err := os.Stat(thumbnailPath); err == nil && isFresh(info.ModTime(), originalInfo.ModTime()) {
			return nil, nil
		}

		return nil, s.generate(cleaned, originalPath, thumbnailPath)
	})

	if err != nil {
		return "", err
	}

	return thumbnailPath, nil
}

func (s ThumbnailService) generate(relativePath, originalPath, thumbnailPath string) error {
	var (
		err error
		f   *os.File
		img image.Image
		buf bytes.Buffer
	)

	if err = os.MkdirAll(filepath.Dir(thumbnailPath), 0755); err != nil {
		return fmt.Errorf("error creating thumbnail directory for '%s': %w", relativePath, err)
	}

	if f, err = os.Open(originalPath); err != nil {
		return fmt.Errorf("error opening original '%s': %w", relativePath, err)
	}

	defer f.Close()

	if img, _, err = image.Decode(f); err != nil {
		return &ThumbnailGenerationError{Path: relativePath, Err: err}
	}

	/*
	 * resize.Thumbnail fits the image within the bounding box while
	 * preserving aspect ratio, and never scales up past the original
	 * dimensions.
	 */
	img = resize.Thumbnail(uint(s.maxWidth), uint(s.maxHeight), img, resize.Lanczos3)

	if err = encodeImage(&buf, filepath.Ext(relativePath), img); err != nil {
		return &ThumbnailGenerationError{Path: relativePath, Err: err}
	}

	/*
	 * Plain overwrite. Two processes racing on the same path write the
	 * same bytes, so last-writer-wins is safe here.
	 */
	if err = os.WriteFile(thumbnailPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("error writing thumbnail '%s': %w", relativePath, err)
	}

	return nil
}

// isFresh reports whether a thumbnail modified at thumbTime is still
// valid for a source modified at sourceTime.
func isFresh(thumbTime, sourceTime time.Time) bool {
	return !thumbTime.Before(sourceTime)
}

/*
encodeImage writes img in the format matching the original's
extension. WebP has no pure Go encoder, so those thumbnails are
written as JPEG bytes at the mirrored location; browsers sniff the
content type.
*/
func encodeImage(buf *bytes.Buffer, ext string, img image.Image) error {
	switch strings.ToLower(ext) {
	case ".png":
		return png.Encode(buf, img)
	case ".gif":
		return gif.Encode(buf, img, nil)
	case ".bmp":
		return bmp.Encode(buf, img)
	case ".tiff", ".tif":
		return tiff.Encode(buf, img, nil)
	default:
		return jpeg.Encode(buf, img, &jpeg.Options{Quality: 85})
	}
}

func cleanRelativePath(relativePath string) (string, error) {
	cleaned := CleanAlbumName(relativePath)

	if cleaned == RootAlbumName || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("thumbnail path '%s': %w", relativePath, ErrPathViolation)
	}

	return cleaned, nil
}
