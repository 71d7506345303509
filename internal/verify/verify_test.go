package verify

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/imgdrop/internal/repositories/repomanager"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeManager struct {
	*repomanager.PostgresRepositoryManager
	migrateErr error
	migrated   bool
}

func (f *fakeManager) RunMigrations(context.Context, *sql.DB) error {
	f.migrated = true
	return f.migrateErr
}

type fakeBucket struct {
	exists bool
	err    error
}

func (f fakeBucket) BucketExists(context.Context) (bool, error) { return f.exists, f.err }

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func names(results []Result) []string {
	var out []string
	for _, r := range results {
		out = append(out, r.Name)
	}
	return out
}

func TestRun_AllGood(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectPing()
	mock.ExpectQuery(`SELECT count\(\*\) FROM projects`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))

	c := &Checker{
		DB:      db,
		Manager: &fakeManager{PostgresRepositoryManager: repomanager.NewPostgresRepositoryManager()},
		Bucket:  fakeBucket{exists: true},
	}
	results := c.Run(context.Background())

	assert.Equal(t, []string{"database", "projects table", "bucket"}, names(results))
	var buf bytes.Buffer
	assert.True(t, Report(&buf, results))
	assert.Equal(t, "[ok]   database\n[ok]   projects table\n[ok]   bucket\n", buf.String())
}

func TestRun_PingFailureStops(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	c := &Checker{DB: db, Manager: &fakeManager{PostgresRepositoryManager: repomanager.NewPostgresRepositoryManager()}}
	results := c.Run(context.Background())

	require.Len(t, results, 1)
	assert.ErrorContains(t, results[0].Err, "connection refused")
}

func TestRun_MissingTables(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectPing()
	mock.ExpectQuery(`SELECT count\(\*\) FROM projects`).
		WillReturnError(&pgconn.PgError{Code: "42P01", Message: `relation "projects" does not exist`})

	c := &Checker{DB: db, Manager: &fakeManager{PostgresRepositoryManager: repomanager.NewPostgresRepositoryManager()}}
	results := c.Run(context.Background())

	require.Len(t, results, 2)
	assert.ErrorIs(t, results[1].Err, ErrTablesMissing)

	var buf bytes.Buffer
	assert.False(t, Report(&buf, results))
	assert.Contains(t, buf.String(), `[fail] projects table: tables not found, run with -migrate: relation "projects" does not exist`)
}

func TestRun_MigrateFirst(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectPing()
	mock.ExpectQuery(`SELECT count\(\*\) FROM projects`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))

	m := &fakeManager{PostgresRepositoryManager: repomanager.NewPostgresRepositoryManager()}
	c := &Checker{DB: db, Manager: m, Migrate: true}
	results := c.Run(context.Background())

	assert.True(t, m.migrated)
	assert.Equal(t, []string{"database", "migrations", "projects table"}, names(results))
}

func TestRun_MigrationFailureStops(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectPing()

	m := &fakeManager{PostgresRepositoryManager: repomanager.NewPostgresRepositoryManager(), migrateErr: errors.New("dirty")}
	c := &Checker{DB: db, Manager: m, Migrate: true}
	results := c.Run(context.Background())

	require.Len(t, results, 2)
	assert.EqualError(t, results[1].Err, "dirty")
}

func TestRun_BucketProblems(t *testing.T) {
	for _, tc := range []struct {
		name   string
		bucket fakeBucket
		want   string
	}{
		{"missing", fakeBucket{exists: false}, "bucket not found"},
		{"error", fakeBucket{err: errors.New("timeout")}, "head bucket: timeout"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMock(t)
			mock.ExpectPing()
			mock.ExpectQuery(`SELECT count\(\*\) FROM projects`).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))

			c := &Checker{
				DB:      db,
				Manager: &fakeManager{PostgresRepositoryManager: repomanager.NewPostgresRepositoryManager()},
				Bucket:  tc.bucket,
			}
			results := c.Run(context.Background())

			require.Len(t, results, 3)
			assert.EqualError(t, results[2].Err, tc.want)
		})
	}
}
