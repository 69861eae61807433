package docstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore stores documents in a single MongoDB collection, one row per
// document with its hierarchical path alongside the field data.
type MongoStore struct {
	client  *mongo.Client
	coll    *mongo.Collection
	indexes *IndexRegistry
}

type mongoRow struct {
	Path       string         `bson:"path"`
	Parent     string         `bson:"parent"`
	Collection string         `bson:"collection"`
	ID         string         `bson:"id"`
	Data       map[string]any `bson:"data"`
}

// OpenMongo connects to MongoDB and prepares the documents collection.
func OpenMongo(ctx context.Context, uri, database string, indexes *IndexRegistry) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	if indexes == nil {
		indexes = NewIndexRegistry()
	}
	return &MongoStore{
		client:  client,
		coll:    client.Database(database).Collection("documents"),
		indexes: indexes,
	}, nil
}

func (s *MongoStore) Get(ctx context.Context, docPath string) (Document, error) {
	var row mongoRow
	err := s.coll.FindOne(ctx, bson.M{"path": strings.Trim(docPath, "/")}).Decode(&row)
	if err == mongo.ErrNoDocuments {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to get document %s: %w", docPath, err)
	}
	return rowToDocument(row), nil
}

func (s *MongoStore) List(ctx context.Context, q Query) ([]Document, error) {
	if !s.indexes.Covers(q) {
		return nil, ErrMissingIndex
	}

	filter := bson.M{"parent": strings.Trim(q.Path, "/")}
	if q.FilterField != "" {
		filter["data."+q.FilterField] = q.FilterValue
	}

	opts := options.Find()
	if q.OrderField != "" {
		dir := 1
		if q.Descending {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: "data." + q.OrderField, Value: dir}})
	} else {
		opts.SetSort(bson.D{{Key: "id", Value: 1}})
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	return s.findDocuments(ctx, filter, opts)
}

func (s *MongoStore) ListGroup(ctx context.Context, collection string) ([]Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "id", Value: 1}})
	return s.findDocuments(ctx, bson.M{"collection": collection}, opts)
}

func (s *MongoStore) Put(ctx context.Context, collectionPath string, doc Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	parent := strings.Trim(collectionPath, "/")
	row := mongoRow{
		Path:       parent + "/" + doc.ID,
		Parent:     parent,
		Collection: CollectionName(parent),
		ID:         doc.ID,
		Data:       doc.Fields,
	}

	_, err := s.coll.UpdateOne(ctx,
		bson.M{"path": row.Path},
		bson.M{"$set": row},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to put document %s: %w", row.Path, err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, docPath string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"path": strings.Trim(docPath, "/")})
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", docPath, err)
	}
	return nil
}

// Watch polls the query; change streams need a replica set, which small
// deployments of this dashboard do not have.
func (s *MongoStore) Watch(ctx context.Context, q Query) (*Subscription, error) {
	return pollWatch(ctx, s, q, pollInterval)
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

func (s *MongoStore) findDocuments(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]Document, error) {
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []Document
	for cursor.Next(ctx) {
		var row mongoRow
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		docs = append(docs, rowToDocument(row))
	}
	return docs, cursor.Err()
}

func rowToDocument(row mongoRow) Document {
	if row.Data == nil {
		row.Data = make(map[string]any)
	}
	return Document{ID: row.ID, Fields: row.Data}
}
