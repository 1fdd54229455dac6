package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTx records commit/rollback; the embedded interface panics on anything else
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error   { t.committed = true; return nil }
func (t *fakeTx) Rollback(context.Context) error { t.rolledBack = true; return nil }

type fakeBeginner struct {
	tx       *fakeTx
	beginErr error
	deadline bool
}

func (b *fakeBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	_, b.deadline = ctx.Deadline()
	if b.beginErr != nil {
		return nil, b.beginErr
	}
	return b.tx, nil
}

func TestRunInTx_Commits(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}

	err := RunInTx(context.Background(), b, func(ctx context.Context, tx pgx.Tx) error {
		return nil
	})

	require.NoError(t, err)
	assert.True(t, b.tx.committed)
	assert.False(t, b.tx.rolledBack)
	assert.True(t, b.deadline, "transactions without a deadline get a default timeout")
}

func TestRunInTx_RollsBackOnError(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	want := errors.New("insert failed")

	err := RunInTx(context.Background(), b, func(ctx context.Context, tx pgx.Tx) error {
		return want
	})

	assert.ErrorIs(t, err, want)
	assert.True(t, b.tx.rolledBack)
	assert.False(t, b.tx.committed)
}

func TestRunInTx_RollsBackOnPanic(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}

	assert.Panics(t, func() {
		_ = RunInTx(context.Background(), b, func(ctx context.Context, tx pgx.Tx) error {
			panic("boom")
		})
	})
	assert.True(t, b.tx.rolledBack)
	assert.False(t, b.tx.committed)
}

func TestRunInTx_BeginError(t *testing.T) {
	b := &fakeBeginner{beginErr: errors.New("pool closed")}
	called := false

	err := RunInTx(context.Background(), b, func(ctx context.Context, tx pgx.Tx) error {
		called = true
		return nil
	})

	assert.Error(t, err)
	assert.False(t, called)
}
