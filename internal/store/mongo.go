package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/socialmock/apiserver/config"
	"github.com/socialmock/apiserver/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoPingTimeout = 5 * time.Second

// MongoBackend maps every collection onto a MongoDB collection of the same
// name. The document id doubles as _id.
type MongoBackend struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongoBackend connects to MongoDB and verifies the connection.
func OpenMongoBackend(ctx context.Context, cfg config.MongoConfig) (*MongoBackend, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongodb uri is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, mongoPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &MongoBackend{client: client, db: client.Database(cfg.Database)}, nil
}

func (m *MongoBackend) List(ctx context.Context, collection string) ([]Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "$natural", Value: 1}})
	cursor, err := m.db.Collection(collection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	var rows []bson.M
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		doc, err := fromBSON(row)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (m *MongoBackend) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	var row bson.M
	err := m.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&row)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	doc, err := fromBSON(row)
	if err != nil {
		return nil, err
	}
	return doc.Data, nil
}

func (m *MongoBackend) Insert(ctx context.Context, collection string, doc Document) error {
	row, err := toBSON(doc)
	if err != nil {
		return err
	}
	if _, err := m.db.Collection(collection).InsertOne(ctx, row); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (m *MongoBackend) Replace(ctx context.Context, collection string, doc Document) error {
	row, err := toBSON(doc)
	if err != nil {
		return err
	}
	result, err := m.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": doc.ID}, row)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoBackend) Delete(ctx context.Context, collection, id string) error {
	result, err := m.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Reset validates data, then drops and refills the dataset collections.
// Other collections in the database are left alone. It is not atomic
// across collections.
func (m *MongoBackend) Reset(ctx context.Context, data map[string][]Document) error {
	if _, err := buildCollections(data); err != nil {
		return err
	}
	rows := make(map[string][]any, len(data))
	for name, docs := range data {
		converted := make([]any, 0, len(docs))
		for _, doc := range docs {
			row, err := toBSON(doc)
			if err != nil {
				return err
			}
			converted = append(converted, row)
		}
		rows[name] = converted
	}

	for _, name := range resetCollections(data) {
		if err := m.db.Collection(name).Drop(ctx); err != nil {
			return err
		}
	}

	for _, name := range orderedCollections(data) {
		if len(rows[name]) == 0 {
			continue
		}
		if _, err := m.db.Collection(name).InsertMany(ctx, rows[name]); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrConflict
			}
			return err
		}
	}
	return nil
}

// resetCollections lists the collections a reset replaces: the dataset
// collections and any other collection named in data.
func resetCollections(data map[string][]Document) []string {
	names := slices.Clone(types.Collections)
	for _, name := range orderedCollections(data) {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}

func (m *MongoBackend) Close() error {
	return m.client.Disconnect(context.Background())
}

func toBSON(doc Document) (bson.M, error) {
	var row bson.M
	if err := bson.UnmarshalExtJSON(doc.Data, false, &row); err != nil {
		return nil, fmt.Errorf("encode document %s: %w", doc.ID, err)
	}
	row["_id"] = doc.ID
	return row, nil
}

func fromBSON(row bson.M) (Document, error) {
	id, _ := row["_id"].(string)
	delete(row, "_id")
	data, err := bson.MarshalExtJSON(row, false, false)
	if err != nil {
		return Document{}, fmt.Errorf("decode document %s: %w", id, err)
	}
	return Document{ID: id, Data: data}, nil
}
