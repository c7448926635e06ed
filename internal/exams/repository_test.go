package exams

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	repo := NewRepository(mock)
	repo.now = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) }
	return repo, mock
}

func TestFindExamByName(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, name, audit, opme").
		WithArgs("hemograma completo").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "audit", "opme"}).
			AddRow("e1", "Hemograma Completo", false, false))

	exam, err := repo.FindExamByName(context.Background(), "hemograma completo")
	require.NoError(t, err)
	require.NotNil(t, exam)
	assert.Equal(t, "Hemograma Completo", exam.Name)
	assert.False(t, exam.Audit)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindExamByNameMissingIsNilNotError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, name, audit, opme").
		WithArgs("procedimento inexistente").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "audit", "opme"}))

	exam, err := repo.FindExamByName(context.Background(), "procedimento inexistente")
	require.NoError(t, err)
	assert.Nil(t, exam)
}

func TestGenerateUniqueProtocolFirstTry(t *testing.T) {
	repo, mock := newMockRepo(t)
	repo.randomSix = func() int { return 123456 }

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("2026123456").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	protocol, err := repo.GenerateUniqueProtocol(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026123456", protocol)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateUniqueProtocolTimestampFallback(t *testing.T) {
	repo, mock := newMockRepo(t)
	repo.randomSix = func() int { return 123456 }

	for i := 0; i < 5; i++ {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("2026123456").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	}

	protocol, err := repo.GenerateUniqueProtocol(context.Background())
	require.NoError(t, err)
	assert.Len(t, protocol, 10)
	assert.Equal(t, "2026", protocol[:4])
	assert.NotEqual(t, "2026123456", protocol)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertAuthorization(t *testing.T) {
	repo, mock := newMockRepo(t)
	birth := time.Date(1990, 5, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO exam_authorizations").
		WithArgs(pgxmock.AnyArg(), "2026000001", "Maria Silva", birth, StatusApproved).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.InsertAuthorization(context.Background(), "2026000001", "Maria Silva", birth, StatusApproved)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListAuthorizationsByPatient(t *testing.T) {
	repo, mock := newMockRepo(t)
	birth := time.Date(1990, 5, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT protocol, status").
		WithArgs("Maria Silva", birth).
		WillReturnRows(pgxmock.NewRows([]string{"protocol", "status"}).
			AddRow("2026000002", StatusPending).
			AddRow("2026000001", StatusApproved))

	out, err := repo.ListAuthorizationsByPatient(context.Background(), "Maria Silva", birth)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "2026000002", out[0].Protocol)
	require.NoError(t, mock.ExpectationsWereMet())
}
