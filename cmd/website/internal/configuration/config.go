package configuration

import (
	"strings"

	"github.com/adampresley/configinator"
)

type Config struct {
	BaseURLPrefix          string `flag:"prefix" env:"BASE_URL_PREFIX" default:"" description:"Optional externally-visible path prefix for generated links"`
	DownloadExpirationDays int    `flag:"dle" env:"DOWNLOAD_EXPIRATION_DAYS" default:"7" description:"Number of days before album zip files expire in the downloads directory"`
	DownloadsDir           string `flag:"downloads" env:"DOWNLOADS_DIR" default:"./data/downloads" description:"Directory for generated album zip files"`
	DSN                    string `flag:"dsn" env:"DSN" default:"file:./data/photogallery.db" description:"Data source name"`
	EnableExifDates        bool   `flag:"exif" env:"ENABLE_EXIF_DATES" default:"false" description:"Include EXIF taken dates in photo listings"`
	FlatRoot               bool   `flag:"flat" env:"FLAT_ROOT" default:"false" description:"Serve a photo root without subdirectories as a single album"`
	Host                   string `flag:"host" env:"HOST" default:"localhost:8080" description:"The address and port to bind the HTTP server to"`
	LogLevel               string `flag:"loglevel" env:"LOG_LEVEL" default:"info" description:"The log level to use. Valid values are 'debug', 'info', 'warn', and 'error'"`
	MaxWarmWorkers         int    `flag:"mww" env:"MAX_WARM_WORKERS" default:"10" description:"Maximum number of concurrent thumbnail pre-warm workers"`
	PhotosDir              string `flag:"photos" env:"PHOTOS_DIR" default:"./photos" description:"Root directory of photo albums"`
	ThumbnailsDir          string `flag:"thumbnails" env:"THUMBNAILS_DIR" default:"./thumbnails" description:"Root directory of the thumbnail cache"`
	ThumbnailWidth         int    `flag:"tw" env:"THUMBNAIL_WIDTH" default:"200" description:"Maximum thumbnail width"`
	ThumbnailHeight        int    `flag:"th" env:"THUMBNAIL_HEIGHT" default:"200" description:"Maximum thumbnail height"`
}

func LoadConfig() Config {
	config := Config{}
	configinator.Behold(&config)

	config.BaseURLPrefix = NormalizePrefix(config.BaseURLPrefix)
	return config
}

/*
NormalizePrefix strips leading and trailing slashes from a URL prefix
and re-adds a single leading slash. An empty prefix stays empty for
root deployments.
*/
func NormalizePrefix(prefix string) string {
	trimmed := strings.Trim(prefix, "/")

	if trimmed == "" {
		return ""
	}

	return "/" + trimmed
}
