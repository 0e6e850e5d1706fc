package warmer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/adampresley/photogallery/pkg/models"
	"github.com/adampresley/photogallery/pkg/services"
	"github.com/alitto/pond/v2"
)

type ThumbnailWarmer interface {
	WarmThumbnails()
}

type ThumbnailWarmerConfig struct {
	AlbumService     services.AlbumServicer
	MaxWarmWorkers   int
	ShutdownCtx      context.Context
	ThumbnailService services.ThumbnailServicer
}

/*
ThumbnailWarmerService walks every album and pre-generates missing or
stale thumbnails so the first visitor doesn't pay for them. The
thumbnail service's freshness check makes re-runs cheap.
*/
type ThumbnailWarmerService struct {
	albumService     services.AlbumServicer
	maxWarmWorkers   int
	shutdownCtx      context.Context
	thumbnailService services.ThumbnailServicer
}

func NewThumbnailWarmerService(config ThumbnailWarmerConfig) ThumbnailWarmerService {
	return ThumbnailWarmerService{
		albumService:     config.AlbumService,
		maxWarmWorkers:   config.MaxWarmWorkers,
		shutdownCtx:      config.ShutdownCtx,
		thumbnailService: config.ThumbnailService,
	}
}

func (s ThumbnailWarmerService) WarmThumbnails() {
	var (
		err    error
		albums []models.Album
		photos []models.Photo
	)

	slog.Info("starting thumbnail pre-warm...")

	if albums, err = s.albumService.GetAlbumList(); err != nil {
		slog.Error("error retrieving album list", "error", err)
		return
	}

	pool := pond.NewPool(s.maxWarmWorkers, pond.WithContext(s.shutdownCtx))

	for _, album := range albums {
		if photos, err = s.albumService.GetPhotoList(album.Name); err != nil {
			slog.Error("error retrieving photo listing for album", "album", album.Name, "error", err)
			continue
		}

		for _, photo := range photos {
			pool.Submit(func() {
				if _, err := s.thumbnailService.GetOrCreateThumbnail(photo.RelativePath); err != nil {
					/*
					 * A single undecodable photo must not stop the warm pass.
					 */
					var tge *services.ThumbnailGenerationError

					if errors.As(err, &tge) {
						slog.Warn("skipping undecodable photo", "photo", photo.RelativePath, "error", err)
						return
					}

					slog.Error("error creating thumbnail", "photo", photo.RelativePath, "error", err)
				}
			})
		}
	}

	_ = pool.Stop().Wait()
}
