package exams

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
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
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository persists the coverage catalog and issued authorizations.
type Repository struct {
	db        db
	randomSix func() int
	now       func() time.Time
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool db) *Repository {
	if pool == nil {
		panic("exams: pgx pool required")
	}
	return &Repository{
		db:        pool,
		randomSix: func() int { return 100000 + rand.Intn(900000) },
		now:       time.Now,
	}
}

// FindExamByName returns the catalog row whose name equals input,
// case-insensitively.
func (r *Repository) FindExamByName(ctx context.Context, name string) (*Exam, error) {
	var e Exam
	err := r.db.QueryRow(ctx, `
		SELECT id, name, audit, opme
		FROM exams
		WHERE LOWER(name) = LOWER($1)
		LIMIT 1
	`, name).Scan(&e.ID, &e.Name, &e.Audit, &e.OPME)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("exams: find exam: %w", err)
	}
	return &e, nil
}

// GenerateUniqueProtocol draws year+6 random digits and checks the table,
// up to five times. When every draw collides the trailing digits of the
// current unix milliseconds stand in; they move every call, so the
// fallback cannot loop on the same collision.
func (r *Repository) GenerateUniqueProtocol(ctx context.Context) (string, error) {
	year := r.now().Year()
	for i := 0; i < 5; i++ {
		protocol := fmt.Sprintf("%d%06d", year, r.randomSix())
		var exists bool
		err := r.db.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM exam_authorizations WHERE protocol = $1)
		`, protocol).Scan(&exists)
		if err != nil {
			return "", fmt.Errorf("exams: check protocol: %w", err)
		}
		if !exists {
			return protocol, nil
		}
	}

	millis := strconv.FormatInt(r.now().UnixMilli(), 10)
	return fmt.Sprintf("%d%s", year, millis[len(millis)-6:]), nil
}

// InsertAuthorization records one issued authorization. birth is stored as
// a date; status is one of the persisted status constants.
func (r *Repository) InsertAuthorization(ctx context.Context, protocol, patientName string, birth time.Time, status string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO exam_authorizations (id, protocol, patient_name, patient_birth, status, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, uuid.NewString(), protocol, patientName, birth, status)
	if err != nil {
		return fmt.Errorf("exams: insert authorization: %w", err)
	}
	return nil
}

// ListAuthorizationsByPatient returns protocol and status for a patient,
// matched by case-insensitive name and birth date, newest first, capped
// at 50 rows.
func (r *Repository) ListAuthorizationsByPatient(ctx context.Context, name string, birth time.Time) ([]AuthorizationStatus, error) {
	rows, err := r.db.Query(ctx, `
		SELECT protocol, status
		FROM exam_authorizations
		WHERE LOWER(patient_name) = LOWER($1) AND patient_birth = $2
		ORDER BY created_at DESC
		LIMIT 50
	`, name, birth)
	if err != nil {
		return nil, fmt.Errorf("exams: list authorizations: %w", err)
	}
	defer rows.Close()

	var out []AuthorizationStatus
	for rows.Next() {
		var a AuthorizationStatus
		if err := rows.Scan(&a.Protocol, &a.Status); err != nil {
			return nil, fmt.Errorf("exams: scan authorization: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("exams: list authorizations: %w", err)
	}
	return out, nil
}
