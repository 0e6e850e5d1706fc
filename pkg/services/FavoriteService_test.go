package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/glebarez/sqlite"
	"github.com/rfberaldo/sqlz"
	"github.com/rfberaldo/sqlz/binds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	binds.Register("sqlite", binds.BindByDriver("sqlite3"))
	os.Exit(m.Run())
}

func newTestFavoriteService(t *testing.T) FavoriteService {
	t.Helper()

	db, err := sqlz.Connect("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Pool().Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err = db.Exec(ctx, `
CREATE TABLE IF NOT EXISTS favorites (
   album_path TEXT NOT NULL,
   image_path TEXT NOT NULL,
   PRIMARY KEY (album_path, image_path)
)
`)
	require.NoError(t, err)

	return NewFavoriteService(FavoriteServiceConfig{DB: db})
}

func TestFavoriteService_ToggleFavorite(t *testing.T) {
	service := newTestFavoriteService(t)

	// First toggle adds the favorite and reports it was not set.
	wasFavorite, err := service.ToggleFavorite("Vacation", "Vacation/a.jpg")
	require.NoError(t, err)
	assert.False(t, wasFavorite)

	favorites, err := service.GetFavorites("Vacation")
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, "Vacation", favorites[0].AlbumPath)
	assert.Equal(t, "Vacation/a.jpg", favorites[0].ImagePath)

	// Second toggle removes it and reports it was set.
	wasFavorite, err = service.ToggleFavorite("Vacation", "Vacation/a.jpg")
	require.NoError(t, err)
	assert.True(t, wasFavorite)

	favorites, err = service.GetFavorites("Vacation")
	require.NoError(t, err)
	assert.Empty(t, favorites)
}

func TestFavoriteService_GetFavorites_ScopedToAlbum(t *testing.T) {
	service := newTestFavoriteService(t)

	_, err := service.ToggleFavorite("Vacation", "Vacation/a.jpg")
	require.NoError(t, err)

	_, err = service.ToggleFavorite("Pets", "Pets/dog.jpg")
	require.NoError(t, err)

	favorites, err := service.GetFavorites("Vacation")
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, "Vacation/a.jpg", favorites[0].ImagePath)
}

func TestFavoriteService_AlbumNameIsNormalized(t *testing.T) {
	service := newTestFavoriteService(t)

	// Markers set under a messy album identifier are visible under the
	// clean one, root sentinel included.
	_, err := service.ToggleFavorite("/Vacation/", "Vacation/a.jpg")
	require.NoError(t, err)

	favorites, err := service.GetFavorites("Vacation")
	require.NoError(t, err)
	require.Len(t, favorites, 1)

	_, err = service.ToggleFavorite("", "a.jpg")
	require.NoError(t, err)

	favorites, err = service.GetFavorites(RootAlbumName)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, RootAlbumName, favorites[0].AlbumPath)
}
