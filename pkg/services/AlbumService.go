package services

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adampresley/adamgokit/slices"
	"github.com/adampresley/photogallery/pkg/models"
	"github.com/rwcarlsen/goexif/exif"
)

/*
imageExtensions is the allow-list of recognized image formats. The
same check decides which files count as photos, which directories
count as albums, and which file becomes an album's cover.
*/
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".tiff", ".tif"}

// IsImageFile reports whether a filename has an allow-listed image
// extension. Matching is case-insensitive.
func IsImageFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return slices.IsInSlice(ext, imageExtensions)
}

type AlbumServicer interface {
	GetAlbumList() ([]models.Album, error)
	GetPhotoList(albumName string) ([]models.Photo, error)
}

type AlbumServiceConfig struct {
	FlatRoot     bool
	IncludeTaken bool
	PathResolver PathResolver
}

type AlbumService struct {
	flatRoot     bool
	includeTaken bool
	pathResolver PathResolver
}

func NewAlbumService(config AlbumServiceConfig) AlbumService {
	return AlbumService{
		flatRoot:     config.FlatRoot,
		includeTaken: config.IncludeTaken,
		pathResolver: config.PathResolver,
	}
}

/*
GetAlbumList walks the immediate subdirectories of the photo root and
returns one album per directory that contains at least one image.
Each call re-walks the filesystem; there is no persisted catalog. In
flat mode a root directory with no subdirectories is itself served as
a single album.
*/
func (s AlbumService) GetAlbumList() ([]models.Album, error) {
	var (
		err     error
		rootDir string
		entries []os.DirEntry
	)

	if rootDir, err = s.pathResolver.ResolveAlbumDir(RootAlbumName); err != nil {
		return nil, fmt.Errorf("error resolving photo root: %w", err)
	}

	if entries, err = os.ReadDir(rootDir); err != nil {
		return nil, fmt.Errorf("error reading photo root: %w", err)
	}

	result := []models.Album{}
	numSubdirs := 0

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		numSubdirs++
		cover, count := scanAlbumDir(filepath.Join(rootDir, entry.Name()))

		if count == 0 {
			continue
		}

		result = append(result, models.Album{
			Name:        entry.Name(),
			DisplayName: entry.Name(),
			CoverPath:   path.Join(entry.Name(), cover),
			PhotoCount:  count,
		})
	}

	if s.flatRoot && numSubdirs == 0 {
		if cover, count := scanAlbumDir(rootDir); count > 0 {
			result = append(result, models.Album{
				Name:        RootAlbumName,
				DisplayName: RootAlbumDisplayName,
				CoverPath:   cover,
				PhotoCount:  count,
			})
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return strings.ToLower(result[i].DisplayName) < strings.ToLower(result[j].DisplayName)
	})

	return result, nil
}

/*
GetPhotoList lists the image files directly inside an album, ordered
alphabetically by filename. Errors from the path resolver
(ErrNotFound, ErrPathViolation) pass through unchanged.
*/
func (s AlbumService) GetPhotoList(albumName string) ([]models.Photo, error) {
	var (
		err      error
		albumDir string
		entries  []os.DirEntry
	)

	cleaned := CleanAlbumName(albumName)

	if albumDir, err = s.pathResolver.ResolveAlbumDir(cleaned); err != nil {
		return nil, err
	}

	if entries, err = os.ReadDir(albumDir); err != nil {
		return nil, fmt.Errorf("error reading album '%s': %w", cleaned, err)
	}

	result := []models.Photo{}

	for _, entry := range entries {
		if !entry.Type().IsRegular() || !IsImageFile(entry.Name()) {
			continue
		}

		photo := models.Photo{
			AlbumName:    cleaned,
			Filename:     entry.Name(),
			RelativePath: photoRelativePath(cleaned, entry.Name()),
		}

		if s.includeTaken {
			photo.Taken = photoTakenTime(filepath.Join(albumDir, entry.Name()))
		}

		result = append(result, photo)
	}

	sort.Slice(result, func(i, j int) bool {
		return strings.ToLower(result[i].Filename) < strings.ToLower(result[j].Filename)
	})

	return result, nil
}

func photoRelativePath(albumName, filename string) string {
	if albumName == RootAlbumName {
		return filename
	}

	return path.Join(albumName, filename)
}

/*
scanAlbumDir counts allow-listed images in a directory and picks the
lexicographically first one as the cover. A directory with zero
qualifying images reports an empty cover, and callers omit it.
*/
func scanAlbumDir(dir string) (cover string, count int) {
	entries, err := os.ReadDir(dir)

	if err != nil {
		return "", 0
	}

	names := []string{}

	for _, entry := range entries {
		if entry.Type().IsRegular() && IsImageFile(entry.Name()) {
			names = append(names, entry.Name())
		}
	}

	if len(names) == 0 {
		return "", 0
	}

	sort.Strings(names)
	return names[0], len(names)
}

/*
photoTakenTime returns the EXIF DateTime for an image, falling back to
DateTimeDigitized and finally to the file's mtime.
*/
func photoTakenTime(name string) time.Time {
	f, err := os.Open(name)

	if err != nil {
		return time.Time{}
	}

	defer f.Close()

	if meta, err := exif.Decode(f); err == nil {
		if t, err := meta.DateTime(); err == nil && !t.IsZero() {
			return t.UTC()
		}
	}

	info, err := f.Stat()

	if err != nil {
		return time.Time{}
	}

	return info.ModTime().UTC()
}
