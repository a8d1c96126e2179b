package configstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo serves configuration documents from a MongoDB collection, one
// document per _id.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongo connects once and keeps the client for the lifetime of the process.
func NewMongo(ctx context.Context, uri, database, collection string) (*Mongo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	log.Info().Str("database", database).Str("collection", collection).Msg("Connected to MongoDB")
	return &Mongo{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

func (m *Mongo) findOne(ctx context.Context, id string, out any) error {
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", id, err)
	}
	return nil
}

func (m *Mongo) Channels(ctx context.Context) (*Channels, error) {
	var doc Channels
	if err := m.findOne(ctx, DocChannels, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (m *Mongo) Scopes(ctx context.Context) (*Scopes, error) {
	var doc Scopes
	if err := m.findOne(ctx, DocScopes, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (m *Mongo) Status(ctx context.Context) (*Status, error) {
	var doc Status
	if err := m.findOne(ctx, DocStatus, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (m *Mongo) Radios(ctx context.Context) (Radios, error) {
	raw, err := m.coll.FindOne(ctx, bson.M{"_id": DocRadios}).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", DocRadios, err)
	}

	elems, err := raw.Elements()
	if err != nil {
		return nil, fmt.Errorf("malformed %s document: %w", DocRadios, err)
	}

	radios := make(Radios, len(elems))
	for _, el := range elems {
		key, val := el.Key(), el.Value()
		if key == "_id" || val.Type != bson.TypeArray {
			continue
		}
		var stations []Station
		if err := val.Unmarshal(&stations); err != nil {
			log.Warn().Err(err).Str("country", key).Msg("Skipping malformed station list")
			continue
		}
		radios[key] = stations
	}
	return radios, nil
}

func (m *Mongo) Put(ctx context.Context, id string, doc json.RawMessage) error {
	var fields bson.M
	if err := bson.UnmarshalExtJSON(doc, false, &fields); err != nil {
		return fmt.Errorf("document %s is not a JSON object: %w", id, err)
	}
	fields["_id"] = id

	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": id}, fields, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert %s: %w", id, err)
	}
	return nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
