package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gfranca/atelieagenda/internal/booking"
	"github.com/gfranca/atelieagenda/internal/model"
)

type BookingHandler struct {
	svc    *booking.Service
	logger *slog.Logger
}

func NewBookingHandler(svc *booking.Service, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, logger: logger}
}

type slotsResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

type bookRequest struct {
	ServiceIDs      []string `json:"service_ids"`
	ProfessionalIDs []string `json:"professional_ids"`
	ClientName      string   `json:"client_name"`
	ClientPhone     string   `json:"client_phone"`
	ClientEmail     string   `json:"client_email"`
	Date            string   `json:"date"`
	Time            string   `json:"time"`
}

type bookResponse struct {
	AppointmentID string     `json:"appointment_id"`
	StartsAt      string     `json:"starts_at"`
	EndsAt        string     `json:"ends_at"`
	Steps         []stepItem `json:"steps"`
}

type stepItem struct {
	ServiceID      string `json:"service_id"`
	ProfessionalID string `json:"professional_id"`
	StartsAt       string `json:"starts_at"`
	EndsAt         string `json:"ends_at"`
	OrderIndex     int    `json:"order_index"`
}

type cancelRequest struct {
	AppointmentID string `json:"appointment_id"`
}

type cancelResponse struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
}

type agendaItem struct {
	AppointmentID  string     `json:"appointment_id"`
	ServiceID      string     `json:"service_id"`
	ProfessionalID string     `json:"professional_id"`
	ClientName     string     `json:"client_name"`
	ClientPhone    string     `json:"client_phone"`
	StartsAt       string     `json:"starts_at"`
	EndsAt         string     `json:"ends_at"`
	Status         string     `json:"status"`
	Steps          []stepItem `json:"steps"`
}

// Slots serves single-service availability for the public booking page.
func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	professionalID := strings.TrimSpace(q.Get("professional_id"))
	serviceID := strings.TrimSpace(q.Get("service_id"))
	date := strings.TrimSpace(q.Get("date"))
	if professionalID == "" || serviceID == "" || date == "" {
		http.Error(w, "professional_id, service_id and date are required", http.StatusBadRequest)
		return
	}

	slots, err := h.svc.AvailableSlots(r.Context(), professionalID, serviceID, date)
	if err != nil {
		writeBookingError(w, err)
		return
	}
	if slots == nil {
		slots = []string{}
	}
	writeJSON(w, http.StatusOK, slotsResponse{Date: date, Slots: slots})
}

// PackageSlots serves availability for a multi-service selection. The
// selections arrive as parallel comma-separated lists.
func (h *BookingHandler) PackageSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	date := strings.TrimSpace(q.Get("date"))
	serviceIDs := splitList(q.Get("service_ids"))
	professionalIDs := splitList(q.Get("professional_ids"))
	if date == "" || len(serviceIDs) == 0 {
		http.Error(w, "date and service_ids are required", http.StatusBadRequest)
		return
	}

	slots, err := h.svc.PackageSlots(r.Context(), date, serviceIDs, professionalIDs)
	if err != nil {
		writeBookingError(w, err)
		return
	}
	if slots == nil {
		slots = []string{}
	}
	writeJSON(w, http.StatusOK, slotsResponse{Date: date, Slots: slots})
}

func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	res, err := h.svc.Book(r.Context(), booking.BookingRequest{
		ServiceIDs:      req.ServiceIDs,
		ProfessionalIDs: req.ProfessionalIDs,
		ClientName:      req.ClientName,
		ClientPhone:     req.ClientPhone,
		ClientEmail:     req.ClientEmail,
		DateKey:         req.Date,
		StartTime:       req.Time,
	})
	if err != nil {
		writeBookingError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, bookResponse{
		AppointmentID: res.ID,
		StartsAt:      res.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:        res.EndsAt.UTC().Format(time.RFC3339),
		Steps:         stepItems(res.Steps),
	})
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}

	appt, err := h.svc.Cancel(r.Context(), req.AppointmentID)
	if err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cancelResponse{AppointmentID: appt.ID, Status: appt.Status})
}

// List serves the admin day agenda: every appointment touching the date,
// cancelled included, with its steps.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		http.Error(w, "date required", http.StatusBadRequest)
		return
	}

	entries, err := h.svc.DayAgenda(r.Context(), date)
	if err != nil {
		writeBookingError(w, err)
		return
	}

	items := make([]agendaItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, agendaItem{
			AppointmentID:  e.Appointment.ID,
			ServiceID:      e.Appointment.ServiceID,
			ProfessionalID: e.Appointment.ProfessionalID,
			ClientName:     e.Appointment.ClientName,
			ClientPhone:    e.Appointment.ClientPhone,
			StartsAt:       e.Appointment.StartsAt.UTC().Format(time.RFC3339),
			EndsAt:         e.Appointment.EndsAt.UTC().Format(time.RFC3339),
			Status:         e.Appointment.Status,
			Steps:          stepItems(e.Steps),
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func stepItems(steps []model.PackageStep) []stepItem {
	out := make([]stepItem, 0, len(steps))
	for _, s := range steps {
		out = append(out, stepItem{
			ServiceID:      s.ServiceID,
			ProfessionalID: s.ProfessionalID,
			StartsAt:       s.StartsAt.UTC().Format(time.RFC3339),
			EndsAt:         s.EndsAt.UTC().Format(time.RFC3339),
			OrderIndex:     s.OrderIndex,
		})
	}
	return out
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
