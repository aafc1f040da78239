package utilities

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

// PathParam returns the decoded value of a chi route parameter. chi matches on
// the escaped path when the request has one, so "a%2Fb" comes back as "a/b".
// A malformed escape is returned as sent.
func PathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	v, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return v
}
