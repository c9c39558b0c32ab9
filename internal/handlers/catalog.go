package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gfranca/atelieagenda/internal/model"
)

type CatalogReader interface {
	ListServices(ctx context.Context) ([]model.Service, error)
	ListProfessionals(ctx context.Context, serviceID string) ([]model.Professional, error)
}

type CatalogHandler struct {
	repo CatalogReader
}

func NewCatalogHandler(repo CatalogReader) *CatalogHandler {
	return &CatalogHandler{repo: repo}
}

type serviceItem struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	Price           string `json:"price,omitempty"`
	Description     string `json:"description,omitempty"`
}

type professionalItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h *CatalogHandler) Services(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	services, err := h.repo.ListServices(r.Context())
	if err != nil {
		http.Error(w, "failed to list services", http.StatusInternalServerError)
		return
	}
	items := make([]serviceItem, 0, len(services))
	for _, s := range services {
		items = append(items, serviceItem{
			ID:              s.ID,
			Name:            s.Name,
			DurationMinutes: s.DurationMinutes,
			Price:           s.Price,
			Description:     s.Description,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

// Professionals lists active professionals; with ?service_id= only those who
// offer that service.
func (h *CatalogHandler) Professionals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	serviceID := strings.TrimSpace(r.URL.Query().Get("service_id"))
	professionals, err := h.repo.ListProfessionals(r.Context(), serviceID)
	if err != nil {
		http.Error(w, "failed to list professionals", http.StatusInternalServerError)
		return
	}
	items := make([]professionalItem, 0, len(professionals))
	for _, p := range professionals {
		items = append(items, professionalItem{ID: p.ID, Name: p.Name})
	}
	writeJSON(w, http.StatusOK, items)
}
