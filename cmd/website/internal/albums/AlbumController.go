package albums

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/adamgokit/slices"
	internalmodels "github.com/adampresley/photogallery/cmd/website/internal/models"
	"github.com/adampresley/photogallery/cmd/website/internal/links"
	"github.com/adampresley/photogallery/cmd/website/internal/viewmodels"
	"github.com/adampresley/photogallery/pkg/models"
	"github.com/adampresley/photogallery/pkg/services"
)

type AlbumHandlers interface {
	AlbumPage(w http.ResponseWriter, r *http.Request)
	ApiAlbums(w http.ResponseWriter, r *http.Request)
	ApiAlbumPhotos(w http.ResponseWriter, r *http.Request)
	ServePhoto(w http.ResponseWriter, r *http.Request)
	ServeThumbnail(w http.ResponseWriter, r *http.Request)
	DownloadAlbum(w http.ResponseWriter, r *http.Request)
	DownloadZip(w http.ResponseWriter, r *http.Request)
	ToggleFavorite(w http.ResponseWriter, r *http.Request)
}

type AlbumControllerConfig struct {
	AlbumService     services.AlbumServicer
	DownloadsDir     string
	FavoriteService  services.FavoriteServicer
	Links            links.LinkBuilder
	PathResolver     services.PathResolver
	Renderer         rendering.TemplateRenderer
	ThumbnailService services.ThumbnailServicer
	ZipService       services.ZipServicer
}

type AlbumController struct {
	albumService     services.AlbumServicer
	downloadsDir     string
	favoriteService  services.FavoriteServicer
	links            links.LinkBuilder
	pathResolver     services.PathResolver
	renderer         rendering.TemplateRenderer
	thumbnailService services.ThumbnailServicer
	zipService       services.ZipServicer
}

func NewAlbumController(config AlbumControllerConfig) AlbumController {
	return AlbumController{
		albumService:     config.AlbumService,
		downloadsDir:     config.DownloadsDir,
		favoriteService:  config.FavoriteService,
		links:            config.Links,
		pathResolver:     config.PathResolver,
		renderer:         config.Renderer,
		thumbnailService: config.ThumbnailService,
		zipService:       config.ZipService,
	}
}

/*
apiAlbum and apiPhoto match the JSON shapes of the gallery front end.
*/
type apiAlbum struct {
	Name              string `json:"name"`
	DisplayName       string `json:"display_name"`
	CoverThumbnailURL string `json:"cover_thumbnail_url"`
	PhotoCount        int    `json:"photo_count"`
}

type apiPhoto struct {
	OriginalFilename string `json:"original_filename"`
	OriginalURL      string `json:"original_url"`
	ThumbnailURL     string `json:"thumbnail_url"`
	Taken            string `json:"taken,omitempty"`
	IsFavorite       bool   `json:"is_favorite"`
}

type apiError struct {
	Error string `json:"error"`
}

/*
GET /album/{album...}
*/
func (c AlbumController) AlbumPage(w http.ResponseWriter, r *http.Request) {
	var (
		err    error
		photos []models.Photo
	)

	albumName := services.CleanAlbumName(httphelpers.GetFromRequest[string](r, "album"))

	viewData := viewmodels.ViewAlbum{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
			JavascriptIncludes: []rendering.JavascriptInclude{
				{Type: "module", Src: "/static/js/pages/view-album.js"},
			},
		},
		AlbumName:   albumName,
		DisplayName: services.AlbumDisplayName(albumName),
		DownloadURL: c.links.DownloadURL(services.AlbumZipName(albumName)),
		Photos:      []internalmodels.Photo{},
	}

	if photos, err = c.albumService.GetPhotoList(albumName); err != nil {
		if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrPathViolation) {
			httphelpers.WriteText(w, http.StatusNotFound, "Album not found")
			return
		}

		slog.Error("error getting photo list", "error", err, "album", albumName)
		viewData.IsError = true
		viewData.Message = "An unexpected error occurred. Please try again."

		c.renderer.Render("pages/view-album", viewData, w)
		return
	}

	for _, photo := range c.markFavorites(albumName, photos) {
		viewData.Photos = append(viewData.Photos, c.convertPhotoToViewModel(photo))
	}

	c.renderer.Render("pages/view-album", viewData, w)
}

/*
GET /api/albums
*/
func (c AlbumController) ApiAlbums(w http.ResponseWriter, r *http.Request) {
	var (
		err    error
		albums []models.Album
	)

	if albums, err = c.albumService.GetAlbumList(); err != nil {
		slog.Error("error getting album list", "error", err)
		writeJson(w, http.StatusInternalServerError, apiError{Error: "Error listing albums"})
		return
	}

	result := []apiAlbum{}

	for _, album := range albums {
		entry := apiAlbum{
			Name:              album.Name,
			DisplayName:       album.DisplayName,
			CoverThumbnailURL: c.links.PlaceholderURL(),
			PhotoCount:        album.PhotoCount,
		}

		if album.CoverPath != "" {
			entry.CoverThumbnailURL = c.links.ThumbnailURL(album.CoverPath)
		}

		result = append(result, entry)
	}

	writeJson(w, http.StatusOK, result)
}

/*
GET /api/album/{album...}
*/
func (c AlbumController) ApiAlbumPhotos(w http.ResponseWriter, r *http.Request) {
	var (
		err    error
		photos []models.Photo
	)

	albumName := services.CleanAlbumName(httphelpers.GetFromRequest[string](r, "album"))

	if photos, err = c.albumService.GetPhotoList(albumName); err != nil {
		/*
		 * A traversal attempt is answered exactly like a missing album so
		 * the response can't be used to probe the filesystem layout.
		 */
		if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrPathViolation) {
			writeJson(w, http.StatusNotFound, apiError{Error: "Album not found"})
			return
		}

		slog.Error("error getting photo list", "error", err, "album", albumName)
		writeJson(w, http.StatusInternalServerError, apiError{Error: "Error listing photos"})
		return
	}

	result := []apiPhoto{}

	for _, photo := range c.markFavorites(albumName, photos) {
		entry := apiPhoto{
			OriginalFilename: photo.Filename,
			OriginalURL:      c.links.PhotoURL(photo.RelativePath),
			ThumbnailURL:     c.links.ThumbnailURL(photo.RelativePath),
			IsFavorite:       photo.IsFavorite,
		}

		if !photo.Taken.IsZero() {
			entry.Taken = photo.Taken.Format(time.RFC3339)
		}

		result = append(result, entry)
	}

	writeJson(w, http.StatusOK, result)
}

/*
GET /photos/{file...}
*/
func (c AlbumController) ServePhoto(w http.ResponseWriter, r *http.Request) {
	file := httphelpers.GetFromRequest[string](r, "file")

	if !services.IsImageFile(file) {
		httphelpers.WriteText(w, http.StatusNotFound, "Photo not found")
		return
	}

	resolved, err := c.pathResolver.ResolvePhotoFile(file)

	if err != nil {
		slog.Warn("photo request failed to resolve", "file", file, "error", err)
		httphelpers.WriteText(w, http.StatusNotFound, "Photo not found")
		return
	}

	http.ServeFile(w, r, resolved)
}

/*
GET /thumbnails/{file...}

Thumbnails are generated lazily on first request. When generation
fails because the source is not a decodable image, the original is
served instead so the page keeps working.
*/
func (c AlbumController) ServeThumbnail(w http.ResponseWriter, r *http.Request) {
	var (
		err           error
		tge           *services.ThumbnailGenerationError
		thumbnailPath string
	)

	file := httphelpers.GetFromRequest[string](r, "file")

	if !services.IsImageFile(file) {
		httphelpers.WriteText(w, http.StatusNotFound, "Thumbnail not found")
		return
	}

	if thumbnailPath, err = c.thumbnailService.GetOrCreateThumbnail(file); err != nil {
		if errors.As(err, &tge) {
			slog.Error("thumbnail generation failed, serving original", "file", file, "error", err)
			c.ServePhoto(w, r)
			return
		}

		slog.Warn("thumbnail request failed to resolve", "file", file, "error", err)
		httphelpers.WriteText(w, http.StatusNotFound, "Thumbnail not found")
		return
	}

	http.ServeFile(w, r, thumbnailPath)
}

/*
GET /download/{album...}
*/
func (c AlbumController) DownloadAlbum(w http.ResponseWriter, r *http.Request) {
	var (
		err         error
		photos      []models.Photo
		zipFilename string
	)

	albumName := services.CleanAlbumName(httphelpers.GetFromRequest[string](r, "album"))

	if photos, err = c.albumService.GetPhotoList(albumName); err != nil {
		httphelpers.WriteText(w, http.StatusNotFound, "Album not found")
		return
	}

	if zipFilename, err = c.zipService.CreateZipAsync(albumName, photos); err != nil {
		slog.Error("failed to start zip creation", "error", err, "album", albumName)
		httphelpers.TextInternalServerError(w, "Failed to start download preparation")
		return
	}

	viewData := viewmodels.DownloadStarted{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
		},
		AlbumDisplayName: services.AlbumDisplayName(albumName),
		DownloadURL:      c.links.DownloadURL(zipFilename),
	}

	c.renderer.Render("pages/download-started", viewData, w)
}

/*
GET /downloads/{filename}
*/
func (c AlbumController) DownloadZip(w http.ResponseWriter, r *http.Request) {
	filename := httphelpers.GetFromRequest[string](r, "filename")

	// Sanitize the filename to prevent directory traversal
	filename = filepath.Base(filename)

	zipPath := filepath.Join(c.downloadsDir, filename)

	if _, err := os.Stat(zipPath); err != nil {
		httphelpers.WriteText(w, http.StatusNotFound, "Download file not found")
		return
	}

	slog.Info("serving zip download", "filename", filename)

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)

	http.ServeFile(w, r, zipPath)
}

/*
PUT /api/album/{album...}?photo={filename}
*/
func (c AlbumController) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var (
		err    error
		exists bool
	)

	albumName := services.CleanAlbumName(httphelpers.GetFromRequest[string](r, "album"))
	photo := filepath.Base(httphelpers.GetFromRequest[string](r, "photo"))

	if _, err = c.albumService.GetPhotoList(albumName); err != nil {
		writeJson(w, http.StatusNotFound, apiError{Error: "Album not found"})
		return
	}

	if exists, err = c.favoriteService.ToggleFavorite(albumName, photo); err != nil {
		slog.Error("error toggling favorite", "error", err, "album", albumName, "photo", photo)
		writeJson(w, http.StatusInternalServerError, apiError{Error: "Error toggling favorite"})
		return
	}

	writeJson(w, http.StatusOK, map[string]bool{"is_favorite": !exists})
}

func (c AlbumController) markFavorites(albumName string, photos []models.Photo) []models.Photo {
	favorites, err := c.favoriteService.GetFavorites(albumName)

	if err != nil {
		slog.Error("error getting favorites", "error", err, "album", albumName)
		return photos
	}

	favoritePaths := slices.Map(favorites, func(input models.Favorite, index int) string {
		return input.ImagePath
	})

	for i := range photos {
		photos[i].IsFavorite = slices.IsInSlice(photos[i].Filename, favoritePaths)
	}

	return photos
}

func (c AlbumController) convertPhotoToViewModel(photo models.Photo) internalmodels.Photo {
	result := internalmodels.Photo{
		Filename:     photo.Filename,
		OriginalURL:  c.links.PhotoURL(photo.RelativePath),
		ThumbnailURL: c.links.ThumbnailURL(photo.RelativePath),
		IsFavorite:   photo.IsFavorite,
	}

	if !photo.Taken.IsZero() {
		result.Taken = photo.Taken.Format("Jan _2, 2006")
	}

	return result
}

func writeJson(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
