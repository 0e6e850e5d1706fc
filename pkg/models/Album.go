package models

/*
Album is a directory of images under the photo root. Name is the
album's path relative to the root with forward slashes, or "." for
the root itself.
*/
type Album struct {
	Name        string
	DisplayName string
	CoverPath   string
	PhotoCount  int
}
