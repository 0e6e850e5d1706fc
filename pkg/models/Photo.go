package models

import "time"

/*
Photo is a single image file in an album. RelativePath is the path
under the photo root (album name + filename) and is enough to build
both the original and thumbnail URLs without touching the filesystem
again.
*/
type Photo struct {
	AlbumName    string
	Filename     string
	RelativePath string
	Taken        time.Time
	IsFavorite   bool
}
