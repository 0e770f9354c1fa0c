package reference

import "context"

// Provider supplies the reference table for a run. A Load error is fatal to
// the run: no rows can be produced without the table.
type Provider interface {
	Load(ctx context.Context) (*Table, error)
}
