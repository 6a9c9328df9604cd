package ports

import (
	"context"

	"gobandit/domain/core"
	"gobandit/domain/run"
)

// RunLedgerWriter provides append-only write access to run results
type RunLedgerWriter interface {
	SaveRun(ctx context.Context, result *run.Result) error
}

// RunLedgerReader provides read-only access to stored run results for the CLI and report UI
type RunLedgerReader interface {
	GetRun(ctx context.Context, id core.RunID) (*run.Result, error)
	ListRuns(ctx context.Context, filters RunFilters) ([]*run.Result, error)
}

// DefaultRunLimit caps ListRuns when RunFilters.Limit is not positive
const DefaultRunLimit = 50

// RunFilters for querying runs, newest first. A negative Offset is treated as 0.
type RunFilters struct {
	Sequence string
	Limit    int
	Offset   int
}

// Page returns the effective limit and offset every ledger applies
func (f RunFilters) Page() (limit, offset int) {
	limit, offset = f.Limit, f.Offset
	if limit <= 0 {
		limit = DefaultRunLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// RunLedger combines read and write access
type RunLedger interface {
	RunLedgerWriter
	RunLedgerReader
}
