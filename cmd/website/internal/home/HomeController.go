package home

import (
	"log/slog"
	"net/http"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/rendering"
	internalmodels "github.com/adampresley/photogallery/cmd/website/internal/models"
	"github.com/adampresley/photogallery/cmd/website/internal/links"
	"github.com/adampresley/photogallery/cmd/website/internal/viewmodels"
	"github.com/adampresley/photogallery/pkg/models"
	"github.com/adampresley/photogallery/pkg/services"
)

type HomeHandlers interface {
	HomePage(w http.ResponseWriter, r *http.Request)
}

type HomeControllerConfig struct {
	AlbumService services.AlbumServicer
	Links        links.LinkBuilder
	Renderer     rendering.TemplateRenderer
}

type HomeController struct {
	albumService services.AlbumServicer
	links        links.LinkBuilder
	renderer     rendering.TemplateRenderer
}

func NewHomeController(config HomeControllerConfig) HomeController {
	return HomeController{
		albumService: config.AlbumService,
		links:        config.Links,
		renderer:     config.Renderer,
	}
}

/*
GET /
*/
func (c HomeController) HomePage(w http.ResponseWriter, r *http.Request) {
	var (
		err    error
		albums []models.Album
	)

	pageName := "pages/home"

	viewData := viewmodels.HomePage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx:             httphelpers.IsHtmx(r),
			JavascriptIncludes: []rendering.JavascriptInclude{},
		},
		Albums: []internalmodels.Album{},
	}

	if albums, err = c.albumService.GetAlbumList(); err != nil {
		slog.Error("error getting album list", "error", err)
		viewData.IsError = true
		viewData.Message = "There was a problem listing albums."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	for _, album := range albums {
		viewData.Albums = append(viewData.Albums, c.convertAlbumToViewModel(album))
	}

	c.renderer.Render(pageName, viewData, w)
}

func (c HomeController) convertAlbumToViewModel(album models.Album) internalmodels.Album {
	result := internalmodels.Album{
		Name:              album.Name,
		DisplayName:       album.DisplayName,
		URL:               c.links.AlbumURL(album.Name),
		CoverThumbnailURL: c.links.PlaceholderURL(),
		PhotoCount:        album.PhotoCount,
	}

	if album.CoverPath != "" {
		result.CoverThumbnailURL = c.links.ThumbnailURL(album.CoverPath)
	}

	return result
}
