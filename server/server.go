package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/stashlabs/stash/ingestion"
	"github.com/stashlabs/stash/search"
	"github.com/stashlabs/stash/storage"
)

// New builds the HTTP server for the capture and search API.
func New(addr string, searcher *search.Searcher, pipeline *ingestion.Pipeline, items storage.ItemRepository, logger *slog.Logger) *http.Server {
	if logger == nil {
		logger = slog.Default()
	}

	handlers := NewHandlers(searcher, pipeline, items, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/search", handlers.HandleSearch)
	mux.HandleFunc("POST /api/items", handlers.HandleCapture)
	mux.HandleFunc("GET /api/items", handlers.HandleListItems)
	mux.HandleFunc("DELETE /api/items/{id}", handlers.HandleDeleteItem)
	mux.HandleFunc("GET /api/status", handlers.HandleStatus)

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
