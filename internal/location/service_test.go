package location

import (
	"context"
	"errors"
	"testing"
	"time"

	"backend-travelapp/internal/shared/apperr"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

var locationColumns = []string{"id", "country", "region", "city", "description", "created_at"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestResolveOrCreateReturnsExisting(t *testing.T) {
	mock := newMock(t)
	created := time.Now()
	mock.ExpectQuery(`SELECT id, country, region, city, description, created_at\s+FROM locations\s+WHERE country=\$1`).
		WithArgs("Brasil", "Norte", "Manaus", "X").
		WillReturnRows(pgxmock.NewRows(locationColumns).AddRow("loc-1", "Brasil", "Norte", "Manaus", "X", created))

	loc, err := ResolveOrCreate(context.Background(), mock, Input{Country: "Brasil", Region: "Norte", City: "Manaus", Description: "X"})
	require.NoError(t, err)
	require.Equal(t, "loc-1", loc.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveOrCreateInsertsOnMiss(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`FROM locations\s+WHERE country=\$1`).
		WithArgs("Brasil", "Norte", "Manaus", "X").
		WillReturnRows(pgxmock.NewRows(locationColumns))
	mock.ExpectQuery(`INSERT INTO locations .* ON CONFLICT \(country, region, city, description\)`).
		WithArgs(pgxmock.AnyArg(), "Brasil", "Norte", "Manaus", "X").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("loc-9", time.Now()))

	loc, err := ResolveOrCreate(context.Background(), mock, Input{Country: "Brasil", Region: "Norte", City: "Manaus", Description: "X"})
	require.NoError(t, err)
	require.Equal(t, "loc-9", loc.ID, "id must come from the row that won the insert")
	require.Equal(t, "Manaus", loc.City)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveOrCreateRequiresFields(t *testing.T) {
	mock := newMock(t)
	_, err := ResolveOrCreate(context.Background(), mock, Input{Country: "Brasil"})
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, apperr.KindValidation, ae.Kind)
}

func TestResolveOrCreateDoesNotFoldCase(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`FROM locations\s+WHERE country=\$1`).
		WithArgs("brasil", "norte", "manaus", "").
		WillReturnRows(pgxmock.NewRows(locationColumns))
	mock.ExpectQuery(`INSERT INTO locations`).
		WithArgs(pgxmock.AnyArg(), "brasil", "norte", "manaus", "").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("loc-2", time.Now()))

	_, err := ResolveOrCreate(context.Background(), mock, Input{Country: "brasil", Region: "norte", City: "manaus"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNotFound(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`FROM locations WHERE id=\$1`).WithArgs("missing").WillReturnRows(pgxmock.NewRows(locationColumns))

	_, err := NewService(mock).Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSearches(t *testing.T) {
	mock := newMock(t)
	now := time.Now()
	svc := NewService(mock)

	mock.ExpectQuery(`WHERE city=\$1`).WithArgs("Manaus").
		WillReturnRows(pgxmock.NewRows(locationColumns).AddRow("l1", "Brasil", "Norte", "Manaus", "Teatro", now))
	mock.ExpectQuery(`WHERE region=\$1`).WithArgs("Norte").
		WillReturnRows(pgxmock.NewRows(locationColumns))
	mock.ExpectQuery(`WHERE country=\$1 ORDER BY`).WithArgs("Brasil").
		WillReturnRows(pgxmock.NewRows(locationColumns).AddRow("l1", "Brasil", "Norte", "Manaus", "Teatro", now))
	mock.ExpectQuery(`strpos\(description, \$1\)`).WithArgs("Tea").
		WillReturnRows(pgxmock.NewRows(locationColumns).AddRow("l1", "Brasil", "Norte", "Manaus", "Teatro", now))

	byCity, err := svc.ByCity(context.Background(), "Manaus")
	require.NoError(t, err)
	require.Len(t, byCity, 1)

	byRegion, err := svc.ByRegion(context.Background(), "Norte")
	require.NoError(t, err)
	require.NotNil(t, byRegion)
	require.Empty(t, byRegion)

	byCountry, err := svc.ByCountry(context.Background(), "Brasil")
	require.NoError(t, err)
	require.Len(t, byCountry, 1)

	byDesc, err := svc.ByDescription(context.Background(), "Tea")
	require.NoError(t, err)
	require.Equal(t, "Teatro", byDesc[0].Description)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePartial(t *testing.T) {
	mock := newMock(t)
	city := "Belém"
	mock.ExpectQuery(`UPDATE locations`).
		WithArgs("l1", (*string)(nil), (*string)(nil), &city, (*string)(nil)).
		WillReturnRows(pgxmock.NewRows(locationColumns).AddRow("l1", "Brasil", "Norte", "Belém", "", time.Now()))

	loc, err := NewService(mock).Update(context.Background(), "l1", Patch{City: &city})
	require.NoError(t, err)
	require.Equal(t, "Belém", loc.City)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateConflictAndMissing(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock)
	mock.ExpectQuery(`UPDATE locations`).WillReturnError(&pgconn.PgError{Code: "23505"})
	_, err := svc.Update(context.Background(), "l1", Patch{})
	require.ErrorIs(t, err, ErrExists)

	mock.ExpectQuery(`UPDATE locations`).WillReturnRows(pgxmock.NewRows(locationColumns))
	_, err = svc.Update(context.Background(), "l2", Patch{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock)

	mock.ExpectExec(`DELETE FROM locations`).WithArgs("l1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, svc.Delete(context.Background(), "l1"))

	mock.ExpectExec(`DELETE FROM locations`).WithArgs("l2").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, svc.Delete(context.Background(), "l2"), ErrNotFound)

	mock.ExpectExec(`DELETE FROM locations`).WithArgs("l3").WillReturnError(&pgconn.PgError{Code: "23503"})
	require.ErrorIs(t, svc.Delete(context.Background(), "l3"), ErrInUse)

	mock.ExpectExec(`DELETE FROM locations`).WithArgs("l4").WillReturnError(errors.New("conn reset"))
	err := svc.Delete(context.Background(), "l4")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestMalformedIDIsNotFound(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock)
	badUUID := &pgconn.PgError{Code: "22P02"}

	mock.ExpectQuery(`FROM locations WHERE id=\$1`).WithArgs("nope").WillReturnError(badUUID)
	_, err := svc.Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)

	mock.ExpectExec(`DELETE FROM locations WHERE id=\$1`).WithArgs("nope").WillReturnError(badUUID)
	require.ErrorIs(t, svc.Delete(context.Background(), "nope"), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
