package models

type Album struct {
	Name              string
	DisplayName       string
	URL               string
	CoverThumbnailURL string
	PhotoCount        int
}

type Photo struct {
	Filename     string
	OriginalURL  string
	ThumbnailURL string
	Taken        string
	IsFavorite   bool
}
