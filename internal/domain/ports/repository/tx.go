package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager executes a function within a database transaction,
// passing the underlying transaction handle via `tx`.
//
// Repository methods accept a Tx argument and detect the concrete handle on
// the implementation side (pgx.Tx for Postgres); they MUST gracefully accept
// nil (non-transactional path). This keeps the use-case interfaces free of
// storage types while still allowing read-modify-write flows to run inside a
// single transaction.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
