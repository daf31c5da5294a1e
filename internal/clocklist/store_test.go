package clocklist

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return AttachDB(db), mock
}

var cols = []string{"id", "name", "label", "position", "created_at"}

func TestList(t *testing.T) {
	s, mock := newMock(t)
	at := time.Unix(1_700_000_000, 0).UTC()
	mock.ExpectQuery(regexp.QuoteMeta(selectEntries)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, "Tokyo", "Tokyo", 0, at).
			AddRow(2, "Ravenna", "Home", 1, at))

	got, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Entry{ID: 2, Name: "Ravenna", Label: "Home", Position: 1, CreatedAt: at}, got[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEmptyIsNotNil(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery("FROM _clock_entries").WillReturnRows(sqlmock.NewRows(cols))
	got, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNames(t *testing.T) {
	s, mock := newMock(t)
	at := time.Now()
	mock.ExpectQuery("FROM _clock_entries").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, "Paris", "Paris", 0, at).AddRow(3, "London", "London", 1, at))
	got, err := s.Names(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Paris", "London"}, got)
}

func TestAdd(t *testing.T) {
	s, mock := newMock(t)
	at := time.Now()
	mock.ExpectQuery("INSERT INTO _clock_entries").
		WithArgs("Rio de Janeiro", "Rio de Janeiro").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(7, "Rio de Janeiro", "Rio de Janeiro", 6, at))

	e, err := s.Add(context.Background(), "Rio de Janeiro", "")
	require.NoError(t, err)
	assert.Equal(t, int64(7), e.ID)
	assert.Equal(t, 6, e.Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddRejectsBlankName(t *testing.T) {
	s, mock := newMock(t)
	for _, name := range []string{"", "   ", "\t"} {
		_, err := s.Add(context.Background(), name, "x")
		assert.ErrorIs(t, err, ErrEmptyName)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddKeepsNameVerbatim(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery("INSERT INTO _clock_entries").
		WithArgs(" tokyo", "label").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, " tokyo", "label", 0, time.Now()))
	e, err := s.Add(context.Background(), " tokyo", "label")
	require.NoError(t, err)
	assert.Equal(t, " tokyo", e.Name)
}

func TestRemove(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM _clock_entries WHERE name=$1")).
		WithArgs("Moscow").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM _clock_entries WHERE name=$1")).
		WithArgs("Atlantis").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Remove(context.Background(), "Moscow"))
	assert.ErrorIs(t, s.Remove(context.Background(), "Atlantis"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedDefaults(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM _clock_entries")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	for i, name := range DefaultCities {
		mock.ExpectExec("INSERT INTO _clock_entries").WithArgs(name, name, i).WillReturnResult(sqlmock.NewResult(int64(i+1), 1))
	}
	mock.ExpectCommit()

	n, err := s.SeedDefaults(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(DefaultCities), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedDefaultsSkipsNonEmptyTable(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	n, err := s.SeedDefaults(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedDefaultsRollsBack(t *testing.T) {
	s, mock := newMock(t)
	boom := errors.New("disk full")
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO _clock_entries").WillReturnError(boom)
	mock.ExpectRollback()

	_, err := s.SeedDefaults(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
