package configstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/keshon/datastore"
)

const keyPrefix = "config:"

// Datastore serves configuration documents from the local datastore file,
// for deployments without MongoDB. Documents live under "config:<id>".
type Datastore struct {
	ds *datastore.DataStore
	// cancel is set only when this Datastore opened the file itself.
	cancel context.CancelFunc
}

// OpenDatastore opens (or creates) the datastore file at path.
func OpenDatastore(path string) (*Datastore, error) {
	ctx, cancel := context.WithCancel(context.Background())
	ds, err := datastore.New(ctx, path)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open datastore: %w", err)
	}
	return &Datastore{ds: ds, cancel: cancel}, nil
}

// NewDatastore shares an already-open datastore; Close leaves it open.
func NewDatastore(ds *datastore.DataStore) *Datastore {
	return &Datastore{ds: ds}
}

func (d *Datastore) load(id string, out any) error {
	ok, err := d.ds.Get(keyPrefix+id, out)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", id, err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (d *Datastore) Channels(_ context.Context) (*Channels, error) {
	var doc Channels
	if err := d.load(DocChannels, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Datastore) Scopes(_ context.Context) (*Scopes, error) {
	var doc Scopes
	if err := d.load(DocScopes, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Datastore) Status(_ context.Context) (*Status, error) {
	var doc Status
	if err := d.load(DocStatus, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Datastore) Radios(_ context.Context) (Radios, error) {
	var raw map[string]json.RawMessage
	if err := d.load(DocRadios, &raw); err != nil {
		return nil, err
	}
	return decodeRadios(raw), nil
}

func (d *Datastore) Put(_ context.Context, id string, doc json.RawMessage) error {
	var v map[string]json.RawMessage
	if err := json.Unmarshal(doc, &v); err != nil {
		return fmt.Errorf("document %s is not a JSON object: %w", id, err)
	}
	if err := d.ds.Set(keyPrefix+id, v); err != nil {
		return fmt.Errorf("failed to store %s: %w", id, err)
	}
	return nil
}

func (d *Datastore) Close(_ context.Context) error {
	if d.cancel == nil {
		return nil
	}
	d.cancel()
	return d.ds.Close()
}
