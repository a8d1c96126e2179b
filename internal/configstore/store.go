package configstore

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned when a configuration document does not exist.
var ErrNotFound = errors.New("configuration document not found")

// Store is a read-mostly view over the configuration documents.
type Store interface {
	Channels(ctx context.Context) (*Channels, error)
	Scopes(ctx context.Context) (*Scopes, error)
	Status(ctx context.Context) (*Status, error)
	Radios(ctx context.Context) (Radios, error)

	// Put replaces (or creates) document id with the given JSON object.
	Put(ctx context.Context, id string, doc json.RawMessage) error
	Close(ctx context.Context) error
}

// KnownDocuments lists the document IDs the bot reads.
var KnownDocuments = []string{DocChannels, DocScopes, DocStatus, DocRadios}

// decodeRadios turns a flat {"<country>": [...], ...} object into Radios,
// skipping _id and any key whose value is not a station array.
func decodeRadios(raw map[string]json.RawMessage) Radios {
	radios := make(Radios, len(raw))
	for key, val := range raw {
		if key == "_id" {
			continue
		}
		var stations []Station
		if err := json.Unmarshal(val, &stations); err != nil || stations == nil {
			continue
		}
		radios[key] = stations
	}
	return radios
}
