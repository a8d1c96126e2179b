package configstore

import (
	"context"

	"github.com/keshon/datastore"
)

// Options selects a backend: MongoDB when URI is set, the local datastore otherwise.
type Options struct {
	URI        string
	Database   string
	Collection string
	// Local is the shared datastore used when URI is empty.
	Local *datastore.DataStore
}

// Open returns the configured backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	if opts.URI != "" {
		return NewMongo(ctx, opts.URI, opts.Database, opts.Collection)
	}
	return NewDatastore(opts.Local), nil
}
