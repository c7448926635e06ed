package appointments

import (
	"errors"
	"time"
)

// StatusConfirmed is the status every appointment is created with.
const StatusConfirmed = "CONFIRMED"

// Sentinel errors surfaced by the booking transaction and lookups.
var (
	ErrAvailabilityNotFound  = errors.New("AVAILABILITY_NOT_FOUND")
	ErrDoctorMismatch        = errors.New("DOCTOR_MISMATCH")
	ErrAppointmentsNotFound  = errors.New("APPOINTMENTS_NOT_FOUND")
	ErrMissingRequiredParams = errors.New("missing required parameters")
)

// Doctor is a read-only record; the assistant only ever lists doctors.
type Doctor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CRM         string `json:"crm"`
	City        string `json:"city"`
	SpecialtyID string `json:"specialtyId"`
}

// Slot is a single bookable availability. Booking consumes (deletes) it.
type Slot struct {
	ID   string    `json:"id"`
	Date time.Time `json:"date"`
}

// Appointment is the booked record returned by the booking transaction.
type Appointment struct {
	ID       string    `json:"id"`
	Protocol string    `json:"protocol"`
	Status   string    `json:"status"`
	Date     time.Time `json:"date"`
}

// PatientAppointment is the admin lookup projection, including the doctor.
type PatientAppointment struct {
	Protocol          string    `json:"protocol"`
	Status            string    `json:"status"`
	Date              time.Time `json:"date"`
	DoctorName        string    `json:"doctorName"`
	DoctorCRM         string    `json:"doctorCrm"`
	DoctorCity        string    `json:"doctorCity"`
	DoctorSpecialtyID string    `json:"doctorSpecialtyId"`
}

// BookingParams carries everything the booking transaction needs.
type BookingParams struct {
	AvailabilityID string
	DoctorID       string
	PatientName    string
	PatientBirth   time.Time // date-only, midnight UTC
}

func (p BookingParams) validate() error {
	if p.AvailabilityID == "" || p.DoctorID == "" || p.PatientName == "" || p.PatientBirth.IsZero() {
		return ErrMissingRequiredParams
	}
	return nil
}
