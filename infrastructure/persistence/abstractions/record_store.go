package abstractions

import "context"

// Guard fields injected on every write. They isolate environments that
// share one underlying record store: every list call filters on the
// current source_env, and callers cannot forge either value.
const (
	FieldSourceEnv = "source_env"
	FieldPRRef     = "pr_ref"
)

// Record is a single row in a store table. Fields is an open map; the
// store decides which keys exist.
type Record struct {
	ID          string                 `json:"id,omitempty"`
	CreatedTime string                 `json:"createdTime,omitempty"`
	Fields      map[string]interface{} `json:"fields"`
}

// SortField names a field and direction for server-side ordering.
type SortField struct {
	Field     string
	Direction string // "asc" or "desc"
}

// ListOptions controls a List call. A zero value lists everything in
// service page order.
type ListOptions struct {
	// FilterFormula is a boolean expression in the store's formula
	// language. It is always combined with the environment guard.
	FilterFormula string
	// Fields projects the result to the named fields only.
	Fields []string
	// MaxRecords truncates the result after this many records.
	MaxRecords int
	// PageSize is the per-page fetch size (store default when zero).
	PageSize int
	// Sort is passed through to the service in order.
	Sort []SortField
	// View selects a named server-side view.
	View string
}

// DeleteResult reports the outcome of deleting one record.
type DeleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// RecordStore provides list/create/update/delete over named tables with
// environment isolation baked in. Implementations must inject the guard
// fields on every write and scope every list to the current environment.
type RecordStore interface {
	// List returns records matching opts, in service page order,
	// paginating transparently.
	List(ctx context.Context, table string, opts ListOptions) ([]Record, error)

	// Create inserts the given records and returns them with ids
	// assigned. Guard fields supplied by the caller are overwritten.
	Create(ctx context.Context, table string, records []Record) ([]Record, error)

	// Update modifies existing records by id. With replace false the
	// field maps are merged; with replace true they replace the stored
	// record wholesale. Guard fields are overwritten either way.
	Update(ctx context.Context, table string, records []Record, replace bool) ([]Record, error)

	// Delete removes records by id.
	Delete(ctx context.Context, table string, ids []string) ([]DeleteResult, error)
}
