package services

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

/*
RootAlbumName identifies the photo root itself when it is browsed as
an album.
*/
const RootAlbumName = "."

// RootAlbumDisplayName is the label shown for the root album.
const RootAlbumDisplayName = "Root Gallery"

type PathResolver interface {
	ResolveAlbumDir(albumName string) (string, error)
	ResolvePhotoFile(relativePath string) (string, error)
}

type PathResolverConfig struct {
	PhotosDir string
}

type PathResolverService struct {
	photosDir string
}

func NewPathResolverService(config PathResolverConfig) PathResolverService {
	abs, err := filepath.Abs(config.PhotosDir)

	if err != nil {
		// filepath.Abs only fails when the working directory is gone.
		abs = config.PhotosDir
	}

	return PathResolverService{
		photosDir: abs,
	}
}

/*
CleanAlbumName normalizes an untrusted, URL-decoded album identifier:
slashes are trimmed, and "." and ".." segments are collapsed. The
empty string maps to the root album.
*/
func CleanAlbumName(albumName string) string {
	cleaned := strings.Trim(strings.ReplaceAll(albumName, "\\", "/"), "/")

	if cleaned == "" {
		return RootAlbumName
	}

	return path.Clean(cleaned)
}

// AlbumDisplayName returns the last path segment of an album name, or
// the fixed root label.
func AlbumDisplayName(albumName string) string {
	cleaned := CleanAlbumName(albumName)

	if cleaned == RootAlbumName {
		return RootAlbumDisplayName
	}

	return path.Base(cleaned)
}

/*
ResolveAlbumDir maps an album identifier onto an absolute directory
under the photo root. It fails with ErrPathViolation when the
identifier escapes the root, and with ErrNotFound when the directory
does not exist or is not a directory.
*/
func (s PathResolverService) ResolveAlbumDir(albumName string) (string, error) {
	resolved, err := s.resolve(albumName)

	if err != nil {
		return "", err
	}

	info, err := os.Stat(resolved)

	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("album '%s': %w", albumName, ErrNotFound)
	}

	return resolved, nil
}

/*
ResolvePhotoFile maps a photo's root-relative path onto an absolute
file path, with the same guarantees as ResolveAlbumDir but requiring a
regular file.
*/
func (s PathResolverService) ResolvePhotoFile(relativePath string) (string, error) {
	resolved, err := s.resolve(relativePath)

	if err != nil {
		return "", err
	}

	info, err := os.Stat(resolved)

	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("photo '%s': %w", relativePath, ErrNotFound)
	}

	return resolved, nil
}

func (s PathResolverService) resolve(name string) (string, error) {
	cleaned := CleanAlbumName(name)

	/*
	 * A cleaned identifier still starting with ".." can never land inside
	 * the root. Reject before touching the filesystem.
	 */
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("resolving '%s': %w", name, ErrPathViolation)
	}

	candidate := filepath.Join(s.photosDir, filepath.FromSlash(cleaned))

	/*
	 * Canonicalize both sides and compare with filepath.Rel. A plain
	 * prefix check is not enough: a symlink inside the root can point
	 * anywhere.
	 */
	realRoot, err := filepath.EvalSymlinks(s.photosDir)

	if err != nil {
		return "", fmt.Errorf("resolving photo root '%s': %w", s.photosDir, ErrNotFound)
	}

	realCandidate, err := filepath.EvalSymlinks(candidate)

	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("resolving '%s': %w", name, ErrNotFound)
		}

		return "", fmt.Errorf("error canonicalizing '%s': %w", name, err)
	}

	rel, err := filepath.Rel(realRoot, realCandidate)

	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("resolving '%s': %w", name, ErrPathViolation)
	}

	return realCandidate, nil
}
