// Package store persists vectorization results so they can be fetched again
// by ID.
//
// Two backends are provided: [FileStore] keeps one JSON file per record for
// the CLI and single-node servers, [MongoStore] keeps records in a MongoDB
// collection for shared deployments.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/moltda/pkg/errors"
	pkgio "github.com/matzehuels/moltda/pkg/io"
	"github.com/matzehuels/moltda/pkg/pipeline"
)

// Record is a stored vectorization.
type Record struct {
	ID        string           `json:"id"`
	Name      string           `json:"name,omitempty"` // Input file or client-supplied label
	CreatedAt time.Time        `json:"created_at"`
	Options   pipeline.Options `json:"options"`
	Result    pkgio.Result     `json:"result"`
}

// NewRecord wraps a pipeline result in a record with a fresh ID.
func NewRecord(name string, opts pipeline.Options, res *pipeline.Result) *Record {
	return &Record{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Options:   opts,
		Result:    res.Output(),
	}
}

// Summary is the listing form of a record.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Dims      []int     `json:"dims,omitempty"`
}

// Summary returns the listing form of rec.
func (rec *Record) Summary() Summary {
	return Summary{ID: rec.ID, Name: rec.Name, CreatedAt: rec.CreatedAt, Dims: rec.Result.Dims}
}

// Store persists records.
//
// Get returns a NOT_FOUND error for unknown IDs. List returns summaries newest
// first, at most limit of them (all when limit <= 0).
type Store interface {
	Get(ctx context.Context, id string) (*Record, error)
	Put(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit int) ([]Summary, error)
	Close() error
}

// ValidateID checks that id is a UUID, which also keeps it safe as a file name.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "invalid record id %q", id)
	}
	return nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "record %s not found", id)
}
