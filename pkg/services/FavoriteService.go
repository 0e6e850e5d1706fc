package services

import (
	"context"
	"fmt"
	"time"

	"github.com/adampresley/photogallery/pkg/models"
	"github.com/rfberaldo/sqlz"
)

type FavoriteServicer interface {
	GetFavorites(albumName string) ([]models.Favorite, error)
	ToggleFavorite(albumName, imagePath string) (bool, error)
}

type FavoriteServiceConfig struct {
	DB *sqlz.DB
}

type FavoriteService struct {
	db *sqlz.DB
}

func NewFavoriteService(config FavoriteServiceConfig) FavoriteService {
	return FavoriteService{
		db: config.DB,
	}
}

// GetFavorites returns the favorite markers for a single album.
func (s FavoriteService) GetFavorites(albumName string) ([]models.Favorite, error) {
	var (
		err error
	)

	result := []models.Favorite{}

	sql := `
SELECT
   album_path
   , image_path
FROM favorites
WHERE 1=1
   AND album_path=?
   `

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.Query(ctx, &result, sql, CleanAlbumName(albumName)); err != nil {
		return result, fmt.Errorf("error querying for favorites in album '%s': %w", albumName, err)
	}

	return result, nil
}

/*
ToggleFavorite flips the favorite marker for a photo. It returns the
previous state: true when the photo was already a favorite (and has
now been removed), false when it was not (and has now been added).
*/
func (s FavoriteService) ToggleFavorite(albumName, imagePath string) (bool, error) {
	var (
		err      error
		exists   bool
		favorite models.Favorite
	)

	albumPath := CleanAlbumName(albumName)

	// First, check if the favorite already exists
	sql := `
SELECT
    album_path,
    image_path
FROM favorites
WHERE 1=1
    AND album_path = ?
    AND image_path = ?
`

	params := []any{
		albumPath,
		imagePath,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	err = s.db.QueryRow(ctx, &favorite, sql, params...)
	if err != nil {
		if sqlz.IsNotFound(err) {
			exists = false
		} else {
			return false, fmt.Errorf("error checking if favorite exists for album '%s', image '%s': %w",
				albumPath, imagePath, err)
		}
	} else {
		exists = true
	}

	if exists {
		sql = `
DELETE FROM favorites
WHERE 1=1
    AND album_path = ?
    AND image_path = ?
`
		ctx, cancel = context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()

		if _, err = s.db.Exec(ctx, sql, params...); err != nil {
			return false, fmt.Errorf("error removing favorite for album '%s', image '%s': %w",
				albumPath, imagePath, err)
		}
	} else {
		sql = `
INSERT INTO favorites (
    album_path,
    image_path
) VALUES (?, ?)
`
		ctx, cancel = context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()

		if _, err = s.db.Exec(ctx, sql, params...); err != nil {
			return false, fmt.Errorf("error adding favorite for album '%s', image '%s': %w",
				albumPath, imagePath, err)
		}
	}

	return exists, nil
}
