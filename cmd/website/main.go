package main

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/mux"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/adamgokit/retrier"
	"github.com/adampresley/photogallery/cmd/website/internal/albums"
	"github.com/adampresley/photogallery/cmd/website/internal/configuration"
	"github.com/adampresley/photogallery/cmd/website/internal/home"
	"github.com/adampresley/photogallery/cmd/website/internal/links"
	"github.com/adampresley/photogallery/cmd/website/internal/warmer"
	"github.com/adampresley/photogallery/pkg/services"
	_ "github.com/glebarez/sqlite"
	"github.com/rfberaldo/sqlz"
	"github.com/rfberaldo/sqlz/binds"
)

var (
	Version string = "development"
	appName string = "photogallery"

	//go:embed app
	appFS embed.FS

	//go:embed sql-migrations
	sqlMigrationsFs embed.FS

	config configuration.Config

	/* Services */
	albumService     services.AlbumServicer
	db               *sqlz.DB
	favoriteService  services.FavoriteServicer
	pathResolver     services.PathResolver
	renderer         rendering.TemplateRenderer
	thumbnailService services.ThumbnailServicer
	thumbnailWarmer  warmer.ThumbnailWarmer
	zipService       services.ZipServicer

	/* Controllers */
	albumController albums.AlbumController
	homeController  home.HomeController
)

func main() {
	var (
		err error
	)

	config = configuration.LoadConfig()
	setupLogger(&config, Version)

	slog.Info("configuration loaded",
		slog.String("app", appName),
		slog.String("version", Version),
		slog.String("loglevel", config.LogLevel),
		slog.String("host", config.Host),
		slog.String("photosDir", config.PhotosDir),
		slog.String("thumbnailsDir", config.ThumbnailsDir),
		slog.String("prefix", config.BaseURLPrefix),
	)

	slog.Debug("setting up...")

	shutdownCtx, cancel := context.WithCancel(context.Background())

	/*
	 * Make sure the working directories exist before anything walks them.
	 */
	for _, dir := range []string{config.PhotosDir, config.ThumbnailsDir, config.DownloadsDir} {
		if err = os.MkdirAll(dir, 0755); err != nil {
			panic(err)
		}
	}

	/*
	 * Setup services
	 */
	binds.Register("sqlite", binds.BindByDriver("sqlite3"))

	retrier.Retry(func() error {
		if db, err = sqlz.Connect("sqlite", config.DSN); err != nil {
			slog.Error("failed to open database. trying again", "error", err)
			return err
		}

		return nil
	})

	if err != nil {
		panic(err)
	}

	migrateDatabase()

	renderer, err = rendering.NewGoTemplateRenderer(rendering.GoTemplateRendererConfig{
		TemplateDir:       "app",
		TemplateExtension: ".html",
		TemplateFS:        appFS,
		PagesDir:          "pages",
	})

	if err != nil {
		panic(err)
	}

	linkBuilder := links.LinkBuilder{
		Prefix: config.BaseURLPrefix,
	}

	pathResolver = services.NewPathResolverService(services.PathResolverConfig{
		PhotosDir: config.PhotosDir,
	})

	albumService = services.NewAlbumService(services.AlbumServiceConfig{
		FlatRoot:     config.FlatRoot,
		IncludeTaken: config.EnableExifDates,
		PathResolver: pathResolver,
	})

	thumbnailService = services.NewThumbnailService(services.ThumbnailServiceConfig{
		PhotosDir:     config.PhotosDir,
		ThumbnailsDir: config.ThumbnailsDir,
		MaxWidth:      config.ThumbnailWidth,
		MaxHeight:     config.ThumbnailHeight,
	})

	favoriteService = services.NewFavoriteService(services.FavoriteServiceConfig{
		DB: db,
	})

	zipService = services.NewZipService(services.ZipServiceConfig{
		DownloadsDir:   config.DownloadsDir,
		PhotosDir:      config.PhotosDir,
		ExpirationDays: config.DownloadExpirationDays,
	})

	thumbnailWarmer = warmer.NewThumbnailWarmerService(warmer.ThumbnailWarmerConfig{
		AlbumService:     albumService,
		MaxWarmWorkers:   config.MaxWarmWorkers,
		ShutdownCtx:      shutdownCtx,
		ThumbnailService: thumbnailService,
	})

	/*
	 * Setup controllers
	 */
	homeController = home.NewHomeController(home.HomeControllerConfig{
		AlbumService: albumService,
		Links:        linkBuilder,
		Renderer:     renderer,
	})

	albumController = albums.NewAlbumController(albums.AlbumControllerConfig{
		AlbumService:     albumService,
		DownloadsDir:     config.DownloadsDir,
		FavoriteService:  favoriteService,
		Links:            linkBuilder,
		PathResolver:     pathResolver,
		Renderer:         renderer,
		ThumbnailService: thumbnailService,
		ZipService:       zipService,
	})

	/*
	 * Setup router and http server
	 */
	slog.Debug("setting up routes...")

	mediaCacheMiddleware := newMediaCacheMiddleware(24 * time.Hour)

	routes := []mux.Route{
		{Path: "GET /heartbeat", HandlerFunc: heartbeat},
		{Path: "GET /", HandlerFunc: homeController.HomePage},
		{Path: "GET /album", HandlerFunc: albumController.AlbumPage},
		{Path: "GET /album/{album...}", HandlerFunc: albumController.AlbumPage},
		{Path: "GET /api/albums", HandlerFunc: albumController.ApiAlbums},
		{Path: "GET /api/album", HandlerFunc: albumController.ApiAlbumPhotos},
		{Path: "GET /api/album/{album...}", HandlerFunc: albumController.ApiAlbumPhotos},
		{Path: "PUT /api/album", HandlerFunc: albumController.ToggleFavorite},
		{Path: "PUT /api/album/{album...}", HandlerFunc: albumController.ToggleFavorite},
		{Path: "GET /photos/{file...}", HandlerFunc: albumController.ServePhoto, Middlewares: []mux.MiddlewareFunc{mediaCacheMiddleware}},
		{Path: "GET /thumbnails/{file...}", HandlerFunc: albumController.ServeThumbnail, Middlewares: []mux.MiddlewareFunc{mediaCacheMiddleware}},
		{Path: "GET /download/{album...}", HandlerFunc: albumController.DownloadAlbum},
		{Path: "GET /downloads/{filename}", HandlerFunc: albumController.DownloadZip},
	}

	routerConfig := mux.RouterConfig{
		Address:              config.Host,
		Debug:                Version == "development",
		ServeStaticContent:   true,
		StaticContentRootDir: "app",
		StaticContentPrefix:  "/static/",
		StaticFS:             appFS,
		HttpWriteTimeout:     60,
	}

	m := mux.SetupRouter(routerConfig, routes)
	httpServer, quit := mux.SetupServer(routerConfig, m)

	/*
	 * Start the zip cleanup job
	 */
	zipService.StartCleanupRoutine(24 * time.Hour)
	defer zipService.StopCleanupRoutine()

	/*
	 * Start the thumbnail pre-warm job
	 */
	setupThumbnailWarmer(quit)

	/*
	 * Wait for graceful shutdown
	 */
	slog.Info("server started")

	<-quit

	cancel()
	mux.Shutdown(httpServer)
	slog.Info("server stopped")
}

func heartbeat(w http.ResponseWriter, r *http.Request) {
	httphelpers.TextOK(w, "OK")
}

func setupLogger(config *configuration.Config, version string) {
	level := slog.LevelInfo

	switch strings.ToLower(config.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))
}

func migrateDatabase() {
	var (
		err  error
		dirs []fs.DirEntry
		b    []byte
	)

	if dirs, err = sqlMigrationsFs.ReadDir("sql-migrations"); err != nil {
		panic(err)
	}

	for _, d := range dirs {
		if d.IsDir() {
			continue
		}

		if strings.HasPrefix(d.Name(), "commit") {
			if b, err = fs.ReadFile(sqlMigrationsFs, filepath.Join("sql-migrations", d.Name())); err != nil {
				panic(err)
			}

			if err = runSqlScript(b); err != nil {
				if !isIgnorableError(err) {
					panic(err)
				}
			}
		}
	}
}

func runSqlScript(script []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	_, err := db.Exec(ctx, string(script))
	return err
}

func isIgnorableError(err error) bool {
	if strings.Contains(err.Error(), "duplicate column") {
		return true
	}

	return false
}

func setupThumbnailWarmer(quit chan os.Signal) {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		running := true

		runner := func() {
			defer func() {
				running = false
			}()

			thumbnailWarmer.WarmThumbnails()
			slog.Info("thumbnail pre-warm finished.")
		}

		runner()

		for {
			select {
			case <-quit:
				return

			case <-ticker.C:
				if running {
					slog.Info("thumbnail pre-warm already running. skipping...")
					continue
				}

				runner()
			}
		}
	}()
}
