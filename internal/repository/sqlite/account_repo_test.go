package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/and161185/securepass/internal/errs"
	"github.com/and161185/securepass/internal/migrate"
	"github.com/and161185/securepass/internal/model"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, DSN(filepath.Join(t.TempDir(), "securepass.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrate.UpDB(ctx, db, migrate.DriverSQLite))
	return db
}

func TestDSN_IncludesPragmas(t *testing.T) {
	dsn := DSN("/tmp/x.db")
	require.Contains(t, dsn, "file:/tmp/x.db?")
	require.Contains(t, dsn, "busy_timeout%285000%29")
	require.Contains(t, dsn, "journal_mode%28WAL%29")
	require.Contains(t, dsn, "synchronous%28FULL%29")
}

func TestAccountRepo_InsertFetch(t *testing.T) {
	r := NewAccountRepo(newTestDB(t))
	ctx := context.Background()

	a := &model.Account{Username: "alice", PasswordHash: "h1", Vault: "blobA"}
	require.NoError(t, r.Insert(ctx, a))

	got, err := r.FetchForAuth(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, *a, *got)

	_, err = r.FetchForAuth(ctx, "bob")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestAccountRepo_InsertDuplicateLeavesOriginal(t *testing.T) {
	r := NewAccountRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, &model.Account{Username: "alice", PasswordHash: "h1", Vault: "blobA"}))
	err := r.Insert(ctx, &model.Account{Username: "alice", PasswordHash: "h2", Vault: "blobX"})
	require.ErrorIs(t, err, errs.ErrAlreadyExists)

	got, err := r.FetchForAuth(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "h1", got.PasswordHash)
	require.Equal(t, "blobA", got.Vault)
}

func TestAccountRepo_ReplaceVault(t *testing.T) {
	r := NewAccountRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, &model.Account{Username: "alice", PasswordHash: "h1", Vault: "blobA"}))

	n, err := r.ReplaceVault(ctx, "alice", "blobB")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	got, err := r.FetchForAuth(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "blobB", got.Vault)
	require.Equal(t, "h1", got.PasswordHash)

	n, err = r.ReplaceVault(ctx, "ghost", "blobB")
	require.NoError(t, err)
	require.EqualValues(t, 0, n)

	_, err = r.FetchForAuth(ctx, "ghost")
	require.ErrorIs(t, err, errs.ErrNotFound, "ReplaceVault must not create rows")
}

func TestAccountRepo_ConcurrentInsertSameUsername(t *testing.T) {
	r := NewAccountRepo(newTestDB(t))
	ctx := context.Background()

	const n = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		taken   int
		unknown []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := r.Insert(ctx, &model.Account{
				Username:     "race",
				PasswordHash: fmt.Sprintf("h%d", i),
				Vault:        fmt.Sprintf("v%d", i),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case err == errs.ErrAlreadyExists:
				taken++
			default:
				unknown = append(unknown, err)
			}
		}(i)
	}
	wg.Wait()

	require.Empty(t, unknown)
	require.Equal(t, 1, ok)
	require.Equal(t, n-1, taken)

	got, err := r.FetchForAuth(ctx, "race")
	require.NoError(t, err)
	// Hash and vault come from the same insert.
	require.Equal(t, got.PasswordHash[1:], got.Vault[1:])
}

func TestAccountRepo_ConcurrentDifferentUsernames(t *testing.T) {
	r := NewAccountRepo(newTestDB(t))
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	errCh := make(chan error, 2*n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("user%d", i)
			if err := r.Insert(ctx, &model.Account{Username: name, PasswordHash: "h", Vault: "v0"}); err != nil {
				errCh <- err
				return
			}
			if _, err := r.ReplaceVault(ctx, name, "v1"); err != nil {
				errCh <- err
			}
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	for i := 0; i < n; i++ {
		got, err := r.FetchForAuth(ctx, fmt.Sprintf("user%d", i))
		require.NoError(t, err)
		require.Equal(t, "v1", got.Vault)
	}
}

func TestWithPragmas(t *testing.T) {
	q := func(dsn string) url.Values {
		_, raw, ok := strings.Cut(dsn, "?")
		require.True(t, ok, dsn)
		v, err := url.ParseQuery(raw)
		require.NoError(t, err)
		return v
	}

	bare := WithPragmas("/var/lib/securepass.db")
	require.True(t, strings.HasPrefix(bare, "file:/var/lib/securepass.db?"), bare)
	require.ElementsMatch(t, []string{"busy_timeout(5000)", "journal_mode(WAL)", "synchronous(FULL)"}, q(bare)["_pragma"])

	// Caller pragmas win and are not duplicated; unrelated params survive.
	custom := WithPragmas("file:x.db?_pragma=busy_timeout(9000)&mode=rwc")
	require.ElementsMatch(t, []string{"busy_timeout(9000)", "journal_mode(WAL)", "synchronous(FULL)"}, q(custom)["_pragma"])
	require.Equal(t, "rwc", q(custom).Get("mode"))

	require.Equal(t, WithPragmas(DSN("x.db")), DSN("x.db"))
}

func TestOpen_BarePathGetsPragmas(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "securepass.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var timeout, syncMode int
	var mode string
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout))
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA synchronous").Scan(&syncMode))
	require.Equal(t, 5000, timeout)
	require.Equal(t, "wal", strings.ToLower(mode))
	require.Equal(t, 2, syncMode) // FULL
}

func TestOpen_BarePathConcurrentDistinctInserts(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "securepass.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrate.UpDB(ctx, db, migrate.DriverSQLite))
	r := NewAccountRepo(db)

	const n = 64
	var wg sync.WaitGroup
	errCh := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := r.Insert(ctx, &model.Account{Username: fmt.Sprintf("u%d", i), PasswordHash: "h", Vault: "v"}); err != nil {
				errCh <- err
			}
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}
}
