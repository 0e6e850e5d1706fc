package main

import (
	"fmt"
	"net/http"
	"time"
)

/*
newMediaCacheMiddleware sets long-lived cache headers on photo and
thumbnail responses. Originals and thumbnails only change when the
operator replaces files on disk, so browsers can hold them for a day.
*/
func newMediaCacheMiddleware(maxAge time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds())))
			next.ServeHTTP(w, r)
		})
	}
}
