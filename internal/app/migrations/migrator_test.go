package migrations

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type boolRow bool

func (r boolRow) Scan(dest ...any) error {
	*dest[0].(*bool) = bool(r)
	return nil
}

type fakeTx struct {
	pgx.Tx
	db *fakeDB
}

func (t *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.db.txExecs = append(t.db.txExecs, sql)
	if t.db.failSQL != "" && sql == t.db.failSQL {
		return pgconn.CommandTag{}, errors.New("syntax error")
	}
	if len(args) == 1 {
		t.db.recorded = append(t.db.recorded, args[0].(string))
	}
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) Commit(context.Context) error   { t.db.commits++; return nil }
func (t *fakeTx) Rollback(context.Context) error { t.db.rollbacks++; return nil }

type fakeDB struct {
	applied   map[string]bool
	execs     []string
	txExecs   []string
	recorded  []string
	failSQL   string
	commits   int
	rollbacks int
}

func (d *fakeDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	d.execs = append(d.execs, sql)
	return pgconn.CommandTag{}, nil
}

func (d *fakeDB) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	return boolRow(d.applied[args[0].(string)])
}

func (d *fakeDB) Begin(context.Context) (pgx.Tx, error) { return &fakeTx{db: d}, nil }

func TestMigrate_AppliesPendingInOrder(t *testing.T) {
	fsys := fstest.MapFS{
		"002_seed.sql":  {Data: []byte("INSERT 2")},
		"001_init.sql":  {Data: []byte("CREATE 1")},
		"003_more.sql":  {Data: []byte("ALTER 3")},
		"README.md":     {Data: []byte("docs")},
		"old/x_old.sql": {Data: []byte("ignored")},
	}
	database := &fakeDB{applied: map[string]bool{"002": true}}

	err := NewMigrator(database, zerolog.Nop()).Migrate(context.Background(), fsys)
	require.NoError(t, err)

	assert.Equal(t, []string{createMigrationTableSQL}, database.execs)
	assert.Equal(t, []string{
		"CREATE 1", "INSERT INTO schema_migrations (version) VALUES ($1)",
		"ALTER 3", "INSERT INTO schema_migrations (version) VALUES ($1)",
	}, database.txExecs)
	assert.Equal(t, []string{"001", "003"}, database.recorded)
	assert.Equal(t, 2, database.commits)
}

func TestMigrate_FailureIsNotRecorded(t *testing.T) {
	fsys := fstest.MapFS{"001_init.sql": {Data: []byte("CREATE broken")}}
	database := &fakeDB{applied: map[string]bool{}, failSQL: "CREATE broken"}

	err := NewMigrator(database, zerolog.Nop()).Migrate(context.Background(), fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "001_init.sql")

	assert.Empty(t, database.recorded)
	assert.Equal(t, 0, database.commits)
	assert.Equal(t, 1, database.rollbacks)
}

func TestVersionOf(t *testing.T) {
	assert.Equal(t, "001", versionOf("001_init.sql"))
	assert.Equal(t, "002", versionOf("migrations/002_program_requirements.sql"))
}
