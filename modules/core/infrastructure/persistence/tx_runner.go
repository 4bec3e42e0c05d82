package persistence

import (
	"context"

	"github.com/taskdeck/taskdeck/pkg/composables"
)

// PgTxRunner is the pgx-backed storage transaction primitive. It reuses a
// transaction already present on the context, so nested service calls join
// the outer atomic unit instead of opening a second one.
type PgTxRunner struct{}

func NewTxRunner() *PgTxRunner {
	return &PgTxRunner{}
}

func (r *PgTxRunner) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return composables.EnsureTx(ctx, fn)
}
