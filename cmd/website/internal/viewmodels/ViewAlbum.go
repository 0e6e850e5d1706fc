package viewmodels

import (
	internalmodels "github.com/adampresley/photogallery/cmd/website/internal/models"
)

type ViewAlbum struct {
	BaseViewModel

	AlbumName   string
	DisplayName string
	DownloadURL string
	Photos      []internalmodels.Photo
}
