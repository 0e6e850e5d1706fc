package links

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinkBuilder_URLs(t *testing.T) {
	builder := LinkBuilder{}

	assert.Equal(t, "/album/Vacation", builder.AlbumURL("Vacation"))
	assert.Equal(t, "/album/.", builder.AlbumURL("."))
	assert.Equal(t, "/photos/Vacation/a.jpg", builder.PhotoURL("Vacation/a.jpg"))
	assert.Equal(t, "/thumbnails/Vacation/a.jpg", builder.ThumbnailURL("Vacation/a.jpg"))
	assert.Equal(t, "/downloads/Vacation.zip", builder.DownloadURL("Vacation.zip"))
	assert.Equal(t, "/static/images/placeholder.svg", builder.PlaceholderURL())
}

func TestLinkBuilder_Prefix(t *testing.T) {
	builder := LinkBuilder{Prefix: "/gallery"}

	assert.Equal(t, "/gallery/album/Vacation", builder.AlbumURL("Vacation"))
	assert.Equal(t, "/gallery/photos/Vacation/a.jpg", builder.PhotoURL("Vacation/a.jpg"))
	assert.Equal(t, "/gallery/static/images/placeholder.svg", builder.PlaceholderURL())
}

func TestLinkBuilder_EscapesSegments(t *testing.T) {
	builder := LinkBuilder{}

	// Spaces and reserved characters are escaped per segment, keeping
	// the path separators intact.
	assert.Equal(t, "/photos/Summer%202024/beach%20day.jpg", builder.PhotoURL("Summer 2024/beach day.jpg"))
	assert.Equal(t, "/album/Q%26A", builder.AlbumURL("Q&A"))
	assert.Equal(t, "/downloads/Summer-2024.zip", builder.DownloadURL("Summer-2024.zip"))
}
