package models

type Favorite struct {
	AlbumPath string `db:"album_path"`
	ImagePath string `db:"image_path"`
}
