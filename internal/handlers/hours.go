package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gfranca/atelieagenda/internal/model"
)

type HoursStore interface {
	ListRules(ctx context.Context) ([]model.BusinessHoursRule, error)
	UpsertRule(ctx context.Context, rule model.BusinessHoursRule) error
}

type HoursHandler struct {
	repo HoursStore
}

func NewHoursHandler(repo HoursStore) *HoursHandler {
	return &HoursHandler{repo: repo}
}

type hoursRuleItem struct {
	DayOfWeek int    `json:"day_of_week"`
	OpensAt   string `json:"opens_at,omitempty"`
	ClosesAt  string `json:"closes_at,omitempty"`
	IsClosed  bool   `json:"is_closed"`
}

// Handle dispatches on method: GET returns the normalized weekly rules, PUT
// upserts the rules in the request body.
func (h *HoursHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.put(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *HoursHandler) get(w http.ResponseWriter, r *http.Request) {
	rules, err := h.repo.ListRules(r.Context())
	if err != nil {
		http.Error(w, "failed to list business hours", http.StatusInternalServerError)
		return
	}
	items := make([]hoursRuleItem, 0, len(rules))
	for _, rule := range rules {
		items = append(items, hoursRuleItem{
			DayOfWeek: rule.Weekday,
			OpensAt:   rule.Open,
			ClosesAt:  rule.Close,
			IsClosed:  rule.Closed,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *HoursHandler) put(w http.ResponseWriter, r *http.Request) {
	var items []hoursRuleItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	for _, item := range items {
		if item.DayOfWeek < 0 || item.DayOfWeek > 6 {
			http.Error(w, "day_of_week must be 0-6 (Sunday=0)", http.StatusBadRequest)
			return
		}
		if !item.IsClosed && (!validClock(item.OpensAt) || !validClock(item.ClosesAt)) {
			http.Error(w, "opens_at and closes_at must be HH:MM", http.StatusBadRequest)
			return
		}
	}
	for _, item := range items {
		rule := model.BusinessHoursRule{
			Weekday: item.DayOfWeek,
			Open:    strings.TrimSpace(item.OpensAt),
			Close:   strings.TrimSpace(item.ClosesAt),
			Closed:  item.IsClosed,
		}
		if err := h.repo.UpsertRule(r.Context(), rule); err != nil {
			http.Error(w, "failed to save business hours", http.StatusInternalServerError)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func validClock(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	hh := s[:2]
	mm := s[3:]
	for _, c := range hh + mm {
		if c < '0' || c > '9' {
			return false
		}
	}
	return hh <= "23" && mm <= "59"
}
