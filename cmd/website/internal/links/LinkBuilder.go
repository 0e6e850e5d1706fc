package links

import (
	"net/url"
	"strings"

	"github.com/adampresley/photogallery/pkg/services"
)

/*
LinkBuilder turns relative photo paths into externally-visible URLs.
Prefix is the normalized base URL prefix, or empty for root
deployments.
*/
type LinkBuilder struct {
	Prefix string
}

func (b LinkBuilder) AlbumURL(albumName string) string {
	return b.Prefix + "/album/" + escapePath(services.CleanAlbumName(albumName))
}

func (b LinkBuilder) PhotoURL(relativePath string) string {
	return b.Prefix + "/photos/" + escapePath(relativePath)
}

func (b LinkBuilder) ThumbnailURL(relativePath string) string {
	return b.Prefix + "/thumbnails/" + escapePath(relativePath)
}

func (b LinkBuilder) DownloadURL(filename string) string {
	return b.Prefix + "/downloads/" + url.PathEscape(filename)
}

func (b LinkBuilder) PlaceholderURL() string {
	return b.Prefix + "/static/images/placeholder.svg"
}

// escapePath percent-encodes each path segment while keeping the
// separators.
func escapePath(p string) string {
	segments := strings.Split(p, "/")

	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}

	return strings.Join(segments, "/")
}
