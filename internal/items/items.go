// Package items holds the document model and the stores that persist it.
package items

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/Aidin1998/crudgate/internal/infrastructure/config"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// IDField is the document key holding the identifier.
const IDField = "_id"

var (
	// ErrNotFound is returned when no document matches an identifier.
	ErrNotFound = errors.New("item not found")
	// ErrInvalidID is returned when an identifier is not a 24 character hex ObjectID.
	ErrInvalidID = errors.New("invalid item id")
)

// Item is a schemaless document.
type Item map[string]interface{}

// Store is a single collection of items. Every method is one round trip to
// the underlying store.
type Store interface {
	List(ctx context.Context) ([]Item, error)
	Get(ctx context.Context, id string) (Item, error)
	Create(ctx context.Context, fields Item) (string, error)
	Update(ctx context.Context, id string, fields Item) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// ParseID converts the hex form of an identifier into an ObjectID.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w %q: %v", ErrInvalidID, id, err)
	}
	return oid, nil
}

// Open connects to the store named by cfg.URI. A memory:// URI selects the
// in-process store; anything else is handed to the MongoDB driver.
func Open(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (Store, error) {
	u, err := url.Parse(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("failed to parse store uri: %w", err)
	}

	var store Store
	if u.Scheme == "memory" {
		logger.Warn("Using in-process item store, data is not persisted")
		store = NewMemoryStore()
	} else {
		store, err = Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to MongoDB",
			zap.String("host", u.Host),
			zap.String("database", cfg.Database),
			zap.String("collection", cfg.Collection))
	}

	return Instrument(store), nil
}

// NormalizeNumbers replaces json.Number values produced by a decoder with
// UseNumber set: integral values become int64, everything else float64.
func NormalizeNumbers(v interface{}) interface{} {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]interface{}:
		for k, val := range t {
			t[k] = NormalizeNumbers(val)
		}
		return t
	case Item:
		for k, val := range t {
			t[k] = NormalizeNumbers(val)
		}
		return t
	case []interface{}:
		for i, val := range t {
			t[i] = NormalizeNumbers(val)
		}
		return t
	default:
		return v
	}
}

// withoutID returns a shallow copy of fields with any client supplied
// identifier removed.
func withoutID(fields Item) Item {
	doc := make(Item, len(fields))
	for k, v := range fields {
		if k == IDField {
			continue
		}
		doc[k] = v
	}
	return doc
}
