package main

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func parseIDParam(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, key), 10, 64)
}

func parseLimitParam(r *http.Request, fallback int) int {
	limitParam := r.URL.Query().Get("limit")
	if limitParam == "" {
		return fallback
	}

	limit, err := strconv.Atoi(limitParam)
	if err != nil || limit < 1 {
		return fallback
	}
	return limit
}
