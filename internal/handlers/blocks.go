package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gfranca/atelieagenda/internal/model"
	"github.com/gfranca/atelieagenda/internal/schedule"
	"github.com/gfranca/atelieagenda/internal/storage"
)

type BlockStore interface {
	Overlapping(ctx context.Context, from, to time.Time) ([]model.Block, error)
	Create(ctx context.Context, block *model.Block) (string, error)
	Delete(ctx context.Context, id string) error
}

// BlockHandler manages manual busy blocks: vacations, equipment downtime,
// whole-business closures (no professional_id).
type BlockHandler struct {
	repo BlockStore
}

func NewBlockHandler(repo BlockStore) *BlockHandler {
	return &BlockHandler{repo: repo}
}

type createBlockRequest struct {
	ProfessionalID string `json:"professional_id"`
	StartsAt       string `json:"starts_at"`
	EndsAt         string `json:"ends_at"`
	Reason         string `json:"reason"`
}

type blockItem struct {
	ID             string `json:"id"`
	ProfessionalID string `json:"professional_id,omitempty"`
	StartsAt       string `json:"starts_at"`
	EndsAt         string `json:"ends_at"`
	Reason         string `json:"reason,omitempty"`
}

// Handle dispatches on method: POST creates, GET lists a day, DELETE removes.
func (h *BlockHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	case http.MethodDelete:
		h.remove(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *BlockHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	startsAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartsAt))
	if err != nil {
		http.Error(w, "invalid starts_at", http.StatusBadRequest)
		return
	}
	endsAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.EndsAt))
	if err != nil {
		http.Error(w, "invalid ends_at", http.StatusBadRequest)
		return
	}
	if !endsAt.After(startsAt) {
		http.Error(w, "ends_at must be after starts_at", http.StatusBadRequest)
		return
	}

	block := &model.Block{
		ProfessionalID: strings.TrimSpace(req.ProfessionalID),
		StartsAt:       startsAt,
		EndsAt:         endsAt,
		Reason:         strings.TrimSpace(req.Reason),
	}
	id, err := h.repo.Create(r.Context(), block)
	if err != nil {
		http.Error(w, "failed to create block", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *BlockHandler) list(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		http.Error(w, "date required", http.StatusBadRequest)
		return
	}
	from, to, err := schedule.DayBounds(date)
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	blocks, err := h.repo.Overlapping(r.Context(), from, to)
	if err != nil {
		http.Error(w, "failed to list blocks", http.StatusInternalServerError)
		return
	}
	items := make([]blockItem, 0, len(blocks))
	for _, b := range blocks {
		items = append(items, blockItem{
			ID:             b.ID,
			ProfessionalID: b.ProfessionalID,
			StartsAt:       b.StartsAt.UTC().Format(time.RFC3339),
			EndsAt:         b.EndsAt.UTC().Format(time.RFC3339),
			Reason:         b.Reason,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *BlockHandler) remove(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "block not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to delete block", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
