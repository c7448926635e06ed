package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is the subset of pgxpool.Pool the repository needs. pgxmock satisfies
// it in tests.
type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository is the persistence gateway over doctors, availabilities and
// appointments.
type Repository struct {
	db          db
	newProtocol func() string
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool db) *Repository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &Repository{db: pool, newProtocol: GenerateProtocol}
}

// ListDoctorsBySpecialtyCity returns all doctors of a specialty in a city,
// ordered by name. An exact specialty match is tried first; when it comes
// back empty a case-insensitive contains match is retried.
func (r *Repository) ListDoctorsBySpecialtyCity(ctx context.Context, specialtyID, city string) ([]Doctor, error) {
	if specialtyID == "" || city == "" {
		return nil, ErrMissingRequiredParams
	}

	doctors, err := r.queryDoctors(ctx, `
		SELECT id, name, crm, city, specialty_id
		FROM doctors
		WHERE specialty_id = $1 AND LOWER(city) = LOWER($2)
		ORDER BY name ASC
	`, specialtyID, city)
	if err != nil {
		return nil, err
	}
	if len(doctors) > 0 {
		return doctors, nil
	}

	return r.queryDoctors(ctx, `
		SELECT id, name, crm, city, specialty_id
		FROM doctors
		WHERE specialty_id ILIKE '%' || $1 || '%' AND LOWER(city) = LOWER($2)
		ORDER BY name ASC
	`, specialtyID, city)
}

func (r *Repository) queryDoctors(ctx context.Context, sql string, args ...any) ([]Doctor, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: list doctors: %w", err)
	}
	defer rows.Close()

	var doctors []Doctor
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.CRM, &d.City, &d.SpecialtyID); err != nil {
			return nil, fmt.Errorf("appointments: scan doctor: %w", err)
		}
		doctors = append(doctors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: list doctors: %w", err)
	}
	return doctors, nil
}

// ListAvailabilityByDoctor returns active slots for a doctor ordered by
// date. The default window is [now, now+30d).
func (r *Repository) ListAvailabilityByDoctor(ctx context.Context, doctorID string, start, end *time.Time) ([]Slot, error) {
	if doctorID == "" {
		return nil, ErrMissingRequiredParams
	}
	s := time.Now().UTC()
	if start != nil {
		s = start.UTC()
	}
	e := s.AddDate(0, 0, 30)
	if end != nil {
		e = end.UTC()
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, date
		FROM availabilities
		WHERE doctor_id = $1 AND is_active AND date >= $2 AND date < $3
		ORDER BY date ASC
	`, doctorID, s, e)
	if err != nil {
		return nil, fmt.Errorf("appointments: list availability: %w", err)
	}
	defer rows.Close()

	var slots []Slot
	for rows.Next() {
		var slot Slot
		if err := rows.Scan(&slot.ID, &slot.Date); err != nil {
			return nil, fmt.Errorf("appointments: scan availability: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: list availability: %w", err)
	}
	return slots, nil
}

// BookFromAvailability atomically converts one availability into one
// appointment. Within a single transaction it locks the availability row,
// verifies the doctor, inserts an appointment with a unique protocol
// (regenerating up to 3 times on a protocol collision) and deletes the
// availability. Creation and deletion commit together or not at all.
func (r *Repository) BookFromAvailability(ctx context.Context, p BookingParams) (*Appointment, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("appointments: begin booking: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		availID  string
		doctorID string
		date     time.Time
		isActive bool
	)
	err = tx.QueryRow(ctx, `
		SELECT id, doctor_id, date, is_active
		FROM availabilities
		WHERE id = $1
		FOR UPDATE
	`, p.AvailabilityID).Scan(&availID, &doctorID, &date, &isActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAvailabilityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: load availability: %w", err)
	}
	if !isActive {
		return nil, ErrAvailabilityNotFound
	}
	if doctorID != p.DoctorID {
		return nil, ErrDoctorMismatch
	}

	appt := &Appointment{
		ID:     uuid.NewString(),
		Status: StatusConfirmed,
		Date:   date,
	}
	for attempt := 0; ; attempt++ {
		appt.Protocol = r.newProtocol()
		_, err = tx.Exec(ctx, `
			INSERT INTO appointments (id, doctor_id, patient_name, patient_birth, date, status, protocol)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, appt.ID, doctorID, p.PatientName, p.PatientBirth, date, appt.Status, appt.Protocol)
		if err == nil {
			break
		}
		if isProtocolConflict(err) && attempt < 2 {
			continue
		}
		return nil, fmt.Errorf("appointments: insert appointment: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM availabilities WHERE id = $1`, availID)
	if err != nil {
		return nil, fmt.Errorf("appointments: consume availability: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return nil, ErrAvailabilityNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("appointments: commit booking: %w", err)
	}
	return appt, nil
}

// ListByPatient returns appointments matching a partial case-insensitive
// name and an exact birth date, within [-7d, +30d] of now, newest first.
func (r *Repository) ListByPatient(ctx context.Context, name string, birth time.Time) ([]PatientAppointment, error) {
	if name == "" || birth.IsZero() {
		return nil, ErrMissingRequiredParams
	}
	now := time.Now().UTC()

	rows, err := r.db.Query(ctx, `
		SELECT a.protocol, a.status, a.date, d.name, d.crm, d.city, d.specialty_id
		FROM appointments a
		JOIN doctors d ON d.id = a.doctor_id
		WHERE a.patient_name ILIKE '%' || $1 || '%'
		  AND a.patient_birth = $2
		  AND a.date >= $3 AND a.date <= $4
		ORDER BY a.date DESC
	`, name, birth, now.AddDate(0, 0, -7), now.AddDate(0, 0, 30))
	if err != nil {
		return nil, fmt.Errorf("appointments: list by patient: %w", err)
	}
	defer rows.Close()

	var appts []PatientAppointment
	for rows.Next() {
		var a PatientAppointment
		if err := rows.Scan(&a.Protocol, &a.Status, &a.Date, &a.DoctorName, &a.DoctorCRM, &a.DoctorCity, &a.DoctorSpecialtyID); err != nil {
			return nil, fmt.Errorf("appointments: scan appointment: %w", err)
		}
		appts = append(appts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: list by patient: %w", err)
	}
	if len(appts) == 0 {
		return nil, ErrAppointmentsNotFound
	}
	return appts, nil
}

// isProtocolConflict reports whether err is a unique violation on the
// appointment protocol constraint.
func isProtocolConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "protocol")
}
