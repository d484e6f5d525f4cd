package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestMigrateAppliesPendingInOrder(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(pgxmock.NewRows([]string{"version"}).AddRow(0))

	for _, m := range migrations {
		mock.ExpectBegin()
		mock.ExpectExec("CREATE").
			WillReturnResult(pgxmock.NewResult("CREATE", 0))
		mock.ExpectExec("INSERT INTO schema_migrations").
			WithArgs(m.Version, m.Name).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()
	}

	require.NoError(t, Migrate(context.Background(), mock, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateSkipsAppliedVersions(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(pgxmock.NewRows([]string{"version"}).AddRow(len(migrations)))

	require.NoError(t, Migrate(context.Background(), mock, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateRollsBackOnFailure(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(pgxmock.NewRows([]string{"version"}).AddRow(0))

	mock.ExpectBegin()
	mock.ExpectExec("CREATE").
		WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	err = Migrate(context.Background(), mock, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "apply migration 1")
	require.NoError(t, mock.ExpectationsWereMet())
}
