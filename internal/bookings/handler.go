package bookings

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/salon-concierge/internal/extract"
	"github.com/wolfman30/salon-concierge/pkg/logging"
)

// Handler serves the booking form endpoint and read-only staff endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new bookings handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// ListBookingsResponse is the response for listing bookings.
type ListBookingsResponse struct {
	Bookings []*Booking `json:"bookings"`
	Count    int        `json:"count"`
	Limit    int        `json:"limit"`
}

// GetBooking handles GET /api/bookings/{id}.
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid booking id", http.StatusBadRequest)
		return
	}

	b, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			http.Error(w, "booking not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load booking", "error", err, "booking_id", id)
		http.Error(w, "failed to load booking", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(b)
}

// ListBookings handles GET /api/bookings.
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	list, err := h.service.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list bookings", "error", err)
		http.Error(w, "failed to list bookings", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*Booking{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListBookingsResponse{
		Bookings: list,
		Count:    len(list),
		Limit:    limit,
	})
}

// FormRequest is the body of POST /api/book, sent by the website booking form.
type FormRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Gender  string `json:"gender"`
	Age     *int   `json:"age"`
	Service string `json:"service"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

// FormResponse mirrors the chat reply shape so the widget can render either.
type FormResponse struct {
	OK        bool   `json:"ok"`
	BookingID int64  `json:"booking_id,omitempty"`
	Msg       string `json:"msg"`
}

// CreateBooking handles POST /api/book. Date and time accept the same formats
// as the chat assistant and are stored normalized.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var body FormRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&body); err != nil {
		writeForm(w, http.StatusBadRequest, FormResponse{Msg: "invalid request body"})
		return
	}

	req := CreateRequest{
		Name:    strings.TrimSpace(body.Name),
		Phone:   strings.TrimSpace(body.Phone),
		Gender:  strings.ToLower(strings.TrimSpace(body.Gender)),
		Age:     body.Age,
		Service: strings.ToLower(strings.TrimSpace(body.Service)),
	}
	if d, ok := extract.NormalizeDate(strings.TrimSpace(body.Date)); ok {
		req.Date = d
	}
	if t, ok := extract.NormalizeTime(strings.TrimSpace(body.Time)); ok {
		req.Time = t
	}
	if req.Age != nil && (*req.Age <= 0 || *req.Age > 120) {
		req.Age = nil
	}
	if missing := req.Missing(); len(missing) > 0 {
		writeForm(w, http.StatusUnprocessableEntity, FormResponse{
			Msg: "Missing or invalid: " + strings.Join(missing, ", "),
		})
		return
	}

	b, err := h.service.CreateTentative(r.Context(), req)
	if err != nil {
		h.logger.Error("failed to create booking from form", "error", err)
		writeForm(w, http.StatusInternalServerError, FormResponse{Msg: "Could not create booking, please try again."})
		return
	}
	writeForm(w, http.StatusCreated, FormResponse{
		OK:        true,
		BookingID: b.ID,
		Msg:       fmt.Sprintf("Tentative booking created (ID %d). We'll confirm once you verify.", b.ID),
	})
}

func writeForm(w http.ResponseWriter, status int, resp FormResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
