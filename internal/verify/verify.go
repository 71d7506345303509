// Package verify checks that the managed backend is reachable and set up:
// the database answers, the catalog tables exist and the bucket is there.
package verify

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/imgdrop/internal/repositories/repomanager"
	"github.com/dmitrijs2005/imgdrop/internal/storage"
	"github.com/jackc/pgx/v5/pgconn"
)

// undefinedTable is the PostgreSQL code for a missing relation.
const undefinedTable = "42P01"

var (
	ErrTablesMissing = errors.New("tables not found, run with -migrate")
	ErrBucketMissing = errors.New("bucket not found")
)

type Result struct {
	Name string
	Err  error
}

func (r Result) OK() bool { return r.Err == nil }

// Checker runs the checks. Bucket may be nil when storage is not
// configured; the bucket check is then skipped.
type Checker struct {
	DB      *sql.DB
	Manager repomanager.RepositoryManager
	Bucket  storage.BucketChecker
	Migrate bool
}

func (c *Checker) Run(ctx context.Context) []Result {
	var results []Result

	if err := c.DB.PingContext(ctx); err != nil {
		return append(results, Result{Name: "database", Err: fmt.Errorf("ping: %w", err)})
	}
	results = append(results, Result{Name: "database"})

	if c.Migrate {
		err := c.Manager.RunMigrations(ctx, c.DB)
		results = append(results, Result{Name: "migrations", Err: err})
		if err != nil {
			return results
		}
	}

	_, err := c.Manager.Projects(c.DB).Count(ctx)
	results = append(results, Result{Name: "projects table", Err: tableError(err)})

	if c.Bucket != nil {
		results = append(results, Result{Name: "bucket", Err: c.checkBucket(ctx)})
	}
	return results
}

func (c *Checker) checkBucket(ctx context.Context) error {
	ok, err := c.Bucket.BucketExists(ctx)
	if err != nil {
		return fmt.Errorf("head bucket: %s", storage.Message(err))
	}
	if !ok {
		return ErrBucketMissing
	}
	return nil
}

func tableError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
		return fmt.Errorf("%w: %s", ErrTablesMissing, pgErr.Message)
	}
	return err
}

// Report prints one line per result and tells whether all passed.
func Report(w io.Writer, results []Result) bool {
	ok := true
	for _, r := range results {
		if r.OK() {
			fmt.Fprintf(w, "[ok]   %s\n", r.Name)
			continue
		}
		ok = false
		fmt.Fprintf(w, "[fail] %s: %v\n", r.Name, r.Err)
	}
	return ok
}
