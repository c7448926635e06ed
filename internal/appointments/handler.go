package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vivasaude/portal-api/pkg/logging"
)

// Handler exposes the gateway-facing HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates the appointments HTTP handler.
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger.Component("appointments")}
}

// ListDoctors handles GET /appointments/doctors?specialtyId=&city=
func (h *Handler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	specialtyID := r.URL.Query().Get("specialtyId")
	city := r.URL.Query().Get("city")
	if specialtyID == "" || city == "" {
		http.Error(w, "specialtyId e city são obrigatórios", http.StatusBadRequest)
		return
	}

	doctors, err := h.repo.ListDoctorsBySpecialtyCity(r.Context(), specialtyID, city)
	if err != nil {
		h.logger.Error("list doctors failed", "error", err, "specialty_id", specialtyID)
		http.Error(w, "failed to list doctors", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, doctors)
}

// ListAvailability handles GET /appointments/availability/doctor/{doctorID}
func (h *Handler) ListAvailability(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "doctorID")
	start := parseTimeParam(r.URL.Query().Get("startDate"))
	end := parseTimeParam(r.URL.Query().Get("endDate"))

	slots, err := h.repo.ListAvailabilityByDoctor(r.Context(), doctorID, start, end)
	if err != nil {
		if errors.Is(err, ErrMissingRequiredParams) {
			http.Error(w, "doctorId é obrigatório", http.StatusBadRequest)
			return
		}
		h.logger.Error("list availability failed", "error", err, "doctor_id", doctorID)
		http.Error(w, "failed to list availability", http.StatusInternalServerError)
		return
	}
	if slots == nil {
		slots = []Slot{}
	}
	writeJSON(w, http.StatusOK, slots)
}

// BookFromAvailability handles POST /appointments/from-availability
func (h *Handler) BookFromAvailability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AvailabilityID string `json:"availabilityId"`
		DoctorID       string `json:"doctorId"`
		PatientName    string `json:"patientName"`
		PatientBirth   string `json:"patientBirth"` // YYYY-MM-DD
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	birth, err := time.ParseInLocation("2006-01-02", req.PatientBirth, time.UTC)
	if err != nil {
		http.Error(w, "patientBirth deve estar no formato YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	appt, err := h.repo.BookFromAvailability(r.Context(), BookingParams{
		AvailabilityID: req.AvailabilityID,
		DoctorID:       req.DoctorID,
		PatientName:    req.PatientName,
		PatientBirth:   birth,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, appt)
	case errors.Is(err, ErrAvailabilityNotFound), errors.Is(err, ErrDoctorMismatch):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrMissingRequiredParams):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("booking failed", "error", err, "availability_id", req.AvailabilityID)
		http.Error(w, "booking failed", http.StatusInternalServerError)
	}
}

// ListByPatient handles GET /admin/appointments?name=&birth=
func (h *Handler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	birth := parseTimeParam(r.URL.Query().Get("birth"))
	if name == "" || birth == nil {
		http.Error(w, "name e birth são obrigatórios (YYYY-MM-DD ou DD/MM/YYYY)", http.StatusBadRequest)
		return
	}

	appts, err := h.repo.ListByPatient(r.Context(), name, *birth)
	if err != nil {
		if errors.Is(err, ErrAppointmentsNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": ErrAppointmentsNotFound.Error()})
			return
		}
		h.logger.Error("list by patient failed", "error", err)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, appts)
}

// parseTimeParam accepts YYYY-MM-DD or DD/MM/YYYY, returning nil when the
// value is absent or malformed.
func parseTimeParam(v string) *time.Time {
	if v == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", "02/01/2006", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return &t
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
