package items

import (
	"context"
	"errors"
	"fmt"

	"github.com/Aidin1998/crudgate/internal/infrastructure/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore keeps items in a single MongoDB collection.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Connect dials MongoDB, verifies the primary is reachable and returns a
// store bound to the configured database and collection.
func Connect(ctx context.Context, cfg config.StoreConfig) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return NewMongoStore(client, client.Database(cfg.Database).Collection(cfg.Collection)), nil
}

// NewMongoStore wraps an existing client and collection.
func NewMongoStore(client *mongo.Client, collection *mongo.Collection) *MongoStore {
	return &MongoStore{client: client, collection: collection}
}

func (s *MongoStore) List(ctx context.Context) ([]Item, error) {
	cursor, err := s.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to find items: %w", err)
	}

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}

	result := make([]Item, 0, len(docs))
	for _, doc := range docs {
		result = append(result, fromBSON(doc))
	}
	return result, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (Item, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	var doc bson.M
	err = s.collection.FindOne(ctx, bson.M{IDField: oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find item %s: %w", id, err)
	}
	return fromBSON(doc), nil
}

func (s *MongoStore) Create(ctx context.Context, fields Item) (string, error) {
	res, err := s.collection.InsertOne(ctx, withoutID(fields))
	if err != nil {
		return "", fmt.Errorf("failed to insert item: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (s *MongoStore) Update(ctx context.Context, id string, fields Item) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}

	res, err := s.collection.UpdateOne(ctx, bson.M{IDField: oid}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update item %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}

	res, err := s.collection.DeleteOne(ctx, bson.M{IDField: oid})
	if err != nil {
		return fmt.Errorf("failed to delete item %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// fromBSON turns a decoded document into an Item with a hex identifier and
// plain Go maps and slices for nested values.
func fromBSON(doc bson.M) Item {
	item := make(Item, len(doc))
	for k, v := range doc {
		item[k] = plain(v)
	}
	if oid, ok := item[IDField].(primitive.ObjectID); ok {
		item[IDField] = oid.Hex()
	}
	return item
}

func plain(v interface{}) interface{} {
	switch t := v.(type) {
	case primitive.M:
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			m[k] = plain(val)
		}
		return m
	case primitive.D:
		m := make(map[string]interface{}, len(t))
		for _, e := range t {
			m[e.Key] = plain(e.Value)
		}
		return m
	case primitive.A:
		s := make([]interface{}, len(t))
		for i, val := range t {
			s[i] = plain(val)
		}
		return s
	default:
		return v
	}
}
