package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"clock-map/internal/clocklist"
	"clock-map/internal/geodata"
	"clock-map/internal/pins"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCLI(t *testing.T) (*cli, sqlmock.Sqlmock, *bytes.Buffer) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	ds, err := geodata.LoadBundled()
	require.NoError(t, err)
	var out bytes.Buffer
	return &cli{st: clocklist.AttachDB(db), res: pins.NewResolverFromDataset(ds), out: &out}, mock, &out
}

var cols = []string{"id", "name", "label", "position", "created_at"}

func TestAddWithLabelAndSpaces(t *testing.T) {
	c, mock, out := newCLI(t)
	mock.ExpectQuery("INSERT INTO _clock_entries").WithArgs("Rio de Janeiro", "Rio").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, "Rio de Janeiro", "Rio", 0, time.Now()))
	assert.True(t, c.exec(context.Background(), "add Rio de Janeiro | Rio"))
	assert.Equal(t, "ok\n", out.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddWarnsOnUnresolvable(t *testing.T) {
	c, mock, out := newCLI(t)
	mock.ExpectQuery("INSERT INTO _clock_entries").WithArgs("Gotham", "Gotham").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, "Gotham", "Gotham", 0, time.Now()))
	c.exec(context.Background(), "add Gotham")
	assert.Contains(t, out.String(), `"Gotham" has no map pin`)
}

func TestAddWithoutName(t *testing.T) {
	c, _, out := newCLI(t)
	c.exec(context.Background(), "add")
	assert.Contains(t, out.String(), "usage: add")
}

func TestDelAndList(t *testing.T) {
	c, mock, out := newCLI(t)
	mock.ExpectExec("DELETE FROM _clock_entries").WithArgs("Los Angeles").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM _clock_entries").WillReturnRows(sqlmock.NewRows(cols).AddRow(1, "Tokyo", "Tokyo", 0, time.Now()))

	c.exec(context.Background(), "del Los Angeles")
	c.exec(context.Background(), "list")
	assert.Equal(t, "not found\n0. Tokyo (Tokyo) -> city Japan (36.2048, 138.2529)\n", out.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveExitAndUnknown(t *testing.T) {
	c, _, out := newCLI(t)
	c.exec(context.Background(), "resolve Atlantis")
	c.exec(context.Background(), "frobnicate")
	assert.Equal(t, "-> unresolved\nunknown command\n", out.String())
	assert.False(t, c.exec(context.Background(), "exit"))
	assert.True(t, c.exec(context.Background(), "   "))
}
