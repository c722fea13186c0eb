package middleware

import (
	"mime"
	"net/http"

	"github.com/trekatlas/trekatlas/internal/api/models"
)

// ContentTypeJSON sets the Content-Type header to application/json unless a
// handler has already set one.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

// RequireJSON rejects POST, PUT, and PATCH requests whose body is not
// application/json. Requests without a body pass through, so bodyless admin
// actions like cache invalidation need no Content-Type header.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			next.ServeHTTP(w, r)
			return
		}

		if r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}

		contentType := r.Header.Get("Content-Type")
		mediaType, _, err := mime.ParseMediaType(contentType)
		if contentType != "" && (err != nil || mediaType != "application/json") {
			problem := models.NewProblem(
				"https://api.trekatlas.io/problems/unsupported-media-type",
				"Unsupported Media Type",
				http.StatusUnsupportedMediaType,
				GetRequestID(r.Context()),
			)
			problem.Detail = "request bodies must be application/json"
			problem.Instance = r.URL.Path
			problem.Write(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}
