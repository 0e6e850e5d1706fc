package viewmodels

type DownloadStarted struct {
	BaseViewModel

	AlbumDisplayName string
	DownloadURL      string
}
