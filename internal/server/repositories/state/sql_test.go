package state

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/equiptracker/internal/common"
)

func newPostgresWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db, "allocations"), mock, db
}

var (
	loadRe   = regexp.QuoteMeta(`SELECT payload FROM allocation_state WHERE id = $1`)
	lockedRe = regexp.QuoteMeta(`SELECT payload FROM allocation_state WHERE id = $1 FOR UPDATE`)
	upsertRe = `INSERT INTO allocation_state .* ON CONFLICT \(id\)\s+DO UPDATE SET payload = EXCLUDED\.payload`
)

func TestPostgresLoad_Success(t *testing.T) {
	repo, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectQuery(loadRe).WithArgs("allocations").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(`{"entries":[]}`))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `{"entries":[]}`, string(got))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLoad_NotFound(t *testing.T) {
	repo, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectQuery(loadRe).WithArgs("allocations").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	_, err := repo.Load(context.Background())
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPostgresLoad_QueryError(t *testing.T) {
	repo, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectQuery(loadRe).WithArgs("allocations").WillReturnError(errors.New("db is down"))

	_, err := repo.Load(context.Background())
	if err == nil || !regexp.MustCompile(`failed to select state: .*db is down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped select error, got %v", err)
	}
}

func TestPostgresUpdate_InsertsWhenMissing(t *testing.T) {
	repo, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(lockedRe).WithArgs("allocations").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))
	mock.ExpectExec(upsertRe).WithArgs("allocations", `{"v":1}`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), func(current []byte) ([]byte, error) {
		assert.Nil(t, current)
		return []byte(`{"v":1}`), nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdate_NilResultCommitsWithoutWrite(t *testing.T) {
	repo, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(lockedRe).WithArgs("allocations").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(`{"v":1}`))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), func(current []byte) ([]byte, error) {
		assert.Equal(t, `{"v":1}`, string(current))
		return nil, nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdate_FnErrorRollsBack(t *testing.T) {
	repo, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(lockedRe).WithArgs("allocations").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(`{}`))
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := repo.Update(context.Background(), func(current []byte) ([]byte, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdate_ExecError(t *testing.T) {
	repo, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(lockedRe).WithArgs("allocations").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))
	mock.ExpectExec(upsertRe).WithArgs("allocations", `{}`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), func(current []byte) ([]byte, error) {
		return []byte(`{}`), nil
	})
	if err == nil || !regexp.MustCompile(`db error: .*disk full`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdate_UnexpectedRowsAffected(t *testing.T) {
	repo, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(lockedRe).WithArgs("allocations").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))
	mock.ExpectExec(upsertRe).WithArgs("allocations", `{}`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), func(current []byte) ([]byte, error) {
		return []byte(`{}`), nil
	})
	if err == nil || !regexp.MustCompile(`unexpected rows affected: 0`).MatchString(err.Error()) {
		t.Fatalf("expected unexpected rows affected error, got %v", err)
	}
}
