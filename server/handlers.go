package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/stashlabs/stash/core"
	"github.com/stashlabs/stash/ingestion"
	"github.com/stashlabs/stash/search"
	"github.com/stashlabs/stash/storage"
)

// ownerHeader carries the account scope for every request.
const ownerHeader = "X-Owner-ID"

// Handlers holds the HTTP handlers for the capture and search API.
type Handlers struct {
	searcher *search.Searcher
	pipeline *ingestion.Pipeline
	items    storage.ItemRepository
	logger   *slog.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(searcher *search.Searcher, pipeline *ingestion.Pipeline, items storage.ItemRepository, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		searcher: searcher,
		pipeline: pipeline,
		items:    items,
		logger:   logger,
	}
}

// itemPayload is the wire form of a core.Item. IDs are strings because
// uint64 values exceed what JSON consumers can represent as numbers.
type itemPayload struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body,omitempty"`
	SourceURL   string    `json:"sourceUrl,omitempty"`
	ContentType string    `json:"contentType"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toItemPayload(item *core.Item) itemPayload {
	return itemPayload{
		ID:          strconv.FormatUint(uint64(item.Id), 10),
		Title:       item.Title,
		Body:        item.Body,
		SourceURL:   item.SourceURL,
		ContentType: item.ContentType.String(),
		Tags:        item.Tags,
		CreatedAt:   item.CreatedAt,
	}
}

type scoredItemPayload struct {
	Item   itemPayload `json:"item"`
	Score  float64     `json:"score"`
	Reason string      `json:"reason"`
}

type searchRequest struct {
	Query string `json:"query"`
	Mode  string `json:"mode,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

type searchResponse struct {
	Query    string              `json:"query"`
	Mode     string              `json:"mode"`
	Degraded bool                `json:"degraded"`
	Results  []scoredItemPayload `json:"results"`
	Total    int                 `json:"total"`
}

// HandleSearch runs a search for the requesting owner.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ownerID := r.Header.Get(ownerHeader)
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "missing "+ownerHeader+" header")
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mode := search.Mode(req.Mode)
	if mode == "" {
		mode = search.ModeHybrid
	}

	result, err := h.searcher.Search(r.Context(), ownerID, req.Query, mode, req.Limit)
	if err != nil {
		h.writeSearchError(w, err)
		return
	}

	results := make([]scoredItemPayload, 0, len(result.Items))
	for _, scored := range result.Items {
		results = append(results, scoredItemPayload{
			Item:   toItemPayload(scored.Item),
			Score:  scored.Score,
			Reason: scored.Reason,
		})
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:    req.Query,
		Mode:     string(mode),
		Degraded: result.Degraded,
		Results:  results,
		Total:    len(results),
	})
}

// writeSearchError maps search failures to HTTP statuses. Caller mistakes
// are 4xx; a vector index or provider outage surfaces as 503 so clients can
// retry or fall back to lexical mode.
func (h *Handlers) writeSearchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, search.ErrEmptyQuery),
		errors.Is(err, search.ErrOwnerRequired),
		errors.Is(err, search.ErrInvalidMode):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrIndexUnavailable),
		errors.Is(err, search.ErrEmbeddingFailed),
		errors.Is(err, search.ErrNoSearchSignal):
		h.logger.Error("search unavailable", "err", err)
		writeError(w, http.StatusServiceUnavailable, "search temporarily unavailable")
	default:
		h.logger.Error("search failed", "err", err)
		writeError(w, http.StatusInternalServerError, "search failed")
	}
}

type captureRequest struct {
	Title       string    `json:"title"`
	Body        string    `json:"body,omitempty"`
	SourceURL   string    `json:"sourceUrl,omitempty"`
	ContentType string    `json:"contentType"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// HandleCapture stores new items for the requesting owner. Embedding
// generation happens asynchronously after the response.
func (h *Handlers) HandleCapture(w http.ResponseWriter, r *http.Request) {
	ownerID := r.Header.Get(ownerHeader)
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "missing "+ownerHeader+" header")
		return
	}

	var reqs []captureRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(reqs) == 0 {
		writeError(w, http.StatusBadRequest, "no items to capture")
		return
	}

	captures := make([]*ingestion.CaptureRequest, len(reqs))
	for i, req := range reqs {
		contentType, ok := core.ContentTypeFromString(req.ContentType)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown content type: "+req.ContentType)
			return
		}
		captures[i] = &ingestion.CaptureRequest{
			Title:       req.Title,
			Body:        req.Body,
			SourceURL:   req.SourceURL,
			ContentType: contentType,
			Tags:        req.Tags,
			CreatedAt:   req.CreatedAt,
		}
	}

	added, err := h.pipeline.Capture(r.Context(), ownerID, captures...)
	if err != nil {
		if errors.Is(err, core.ErrInvalidItem) || errors.Is(err, ingestion.ErrOwnerRequired) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("capture failed", "err", err)
		writeError(w, http.StatusInternalServerError, "capture failed")
		return
	}

	items := make([]itemPayload, len(added))
	for i, item := range added {
		items[i] = toItemPayload(item)
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"items": items,
		"total": len(items),
	})
}

// HandleListItems returns the owner's items, newest first.
func (h *Handlers) HandleListItems(w http.ResponseWriter, r *http.Request) {
	ownerID := r.Header.Get(ownerHeader)
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "missing "+ownerHeader+" header")
		return
	}

	var filter storage.ItemFilter
	if typeStr := r.URL.Query().Get("type"); typeStr != "" {
		contentType, ok := core.ContentTypeFromString(typeStr)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown content type: "+typeStr)
			return
		}
		filter.ContentType = contentType
	}
	if tag := r.URL.Query().Get("tag"); tag != "" {
		filter.Tags = []string{tag}
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}

	listed, err := h.items.ListByOwner(r.Context(), ownerID, filter, limit)
	if err != nil {
		h.logger.Error("list failed", "err", err)
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}

	items := make([]itemPayload, len(listed))
	for i, item := range listed {
		items[i] = toItemPayload(item)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": len(items),
	})
}

// HandleDeleteItem removes one item and its embedding record.
func (h *Handlers) HandleDeleteItem(w http.ResponseWriter, r *http.Request) {
	ownerID := r.Header.Get(ownerHeader)
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "missing "+ownerHeader+" header")
		return
	}

	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	// Items are owner-scoped; deleting someone else's item must look the
	// same as deleting a missing one
	item, err := h.items.GetItem(r.Context(), core.ID(id))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		h.logger.Error("delete lookup failed", "err", err)
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	if item == nil || item.OwnerId != ownerID {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	if err := h.pipeline.Delete(r.Context(), core.ID(id)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		h.logger.Error("delete failed", "err", err)
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleStatus reports service health. With an owner header it also
// reports that owner's item count.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}

	if ownerID := r.Header.Get(ownerHeader); ownerID != "" {
		items, err := h.items.ListByOwner(r.Context(), ownerID, storage.ItemFilter{}, 0)
		if err != nil {
			h.logger.Error("status count failed", "err", err)
			writeError(w, http.StatusInternalServerError, "status failed")
			return
		}
		resp["itemCount"] = len(items)
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
