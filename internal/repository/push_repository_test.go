package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/pushmasterhq/pushmaster-api/internal/models"
)

var pushRows = []string{
	"id", "owner", "state", "name", "stage", "ltime",
	"created_at", "modified_at", "created_by", "modified_by", "version",
}

func newPushRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func pushRow(id string, state models.PushState) []driver.Value {
	now := time.Now()
	return []driver.Value{
		id, "pm@example.com", string(state), "", "stagea", nil,
		now, now, "pm@example.com", "pm@example.com", 1,
	}
}

func TestPushRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newPushRepoMock(t)
	defer cleanup()

	repo := NewPushRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO pushes")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	push := &models.Push{Owner: "pm@example.com", Stage: "stagea"}
	require.NoError(t, repo.Create(context.Background(), push))
	require.NotEmpty(t, push.ID)
	require.Equal(t, models.PushStateAccepting, push.State)
	require.Equal(t, 1, push.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPushRepositoryCurrent(t *testing.T) {
	db, mock, cleanup := newPushRepoMock(t)
	defer cleanup()

	repo := NewPushRepository(db)
	rows := sqlmock.NewRows(pushRows).AddRow(pushRow("push-1", models.PushStateAccepting)...)
	mock.ExpectQuery("ORDER BY created_at ASC LIMIT 1").
		WithArgs(string(models.PushStateAccepting), string(models.PushStateOnStage)).
		WillReturnRows(rows)

	push, err := repo.Current(context.Background())
	require.NoError(t, err)
	require.Equal(t, "push-1", push.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPushRepositoryCurrentNone(t *testing.T) {
	db, mock, cleanup := newPushRepoMock(t)
	defer cleanup()

	repo := NewPushRepository(db)
	mock.ExpectQuery("ORDER BY created_at ASC LIMIT 1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Current(context.Background())
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPushRepositoryUpdateWithRequests(t *testing.T) {
	db, mock, cleanup := newPushRepoMock(t)
	defer cleanup()

	repo := NewPushRepository(db)
	push := &models.Push{ID: "push-1", State: models.PushStateOnStage, Version: 2}
	member := &models.Request{ID: "req-1", State: models.RequestStateOnStage, Version: 5}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE requests SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE pushes SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateWithRequests(context.Background(), push, []*models.Request{member}))
	require.Equal(t, 3, push.Version)
	require.Equal(t, 6, member.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPushRepositoryUpdateWithRequestsConflict(t *testing.T) {
	db, mock, cleanup := newPushRepoMock(t)
	defer cleanup()

	repo := NewPushRepository(db)
	push := &models.Push{ID: "push-1", State: models.PushStateOnStage, Version: 2}
	member := &models.Request{ID: "req-1", State: models.RequestStateOnStage, Version: 5}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE requests SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.UpdateWithRequests(context.Background(), push, []*models.Request{member})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.Equal(t, 2, push.Version)
	require.Equal(t, 5, member.Version, "member version is restored after a conflict")
	require.NoError(t, mock.ExpectationsWereMet())
}
