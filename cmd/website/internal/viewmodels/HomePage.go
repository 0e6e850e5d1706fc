package viewmodels

import (
	internalmodels "github.com/adampresley/photogallery/cmd/website/internal/models"
)

type HomePage struct {
	BaseViewModel

	Albums []internalmodels.Album
}
