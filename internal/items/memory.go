package items

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/tidwall/btree"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	errImmutableID   = errors.New("performing an update on the path '_id' would modify the immutable field '_id'")
	errStoreIsClosed = errors.New("item store is closed")
)

// MemoryStore is an in-process Store ordered by identifier. Identifiers are
// ObjectIDs, so iteration order follows creation order.
type MemoryStore struct {
	mu     sync.RWMutex
	docs   *btree.Map[string, Item]
	closed bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: btree.NewMap[string, Item](32)}
}

func (s *MemoryStore) List(ctx context.Context) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errStoreIsClosed
	}

	result := make([]Item, 0, s.docs.Len())
	s.docs.Scan(func(_ string, doc Item) bool {
		result = append(result, deepCopy(doc).(Item))
		return true
	})
	return result, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Item, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errStoreIsClosed
	}

	doc, ok := s.docs.Get(oid.Hex())
	if !ok {
		return nil, ErrNotFound
	}
	return deepCopy(doc).(Item), nil
}

func (s *MemoryStore) Create(ctx context.Context, fields Item) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", errStoreIsClosed
	}

	id := primitive.NewObjectID().Hex()
	doc := deepCopy(withoutID(fields)).(Item)
	doc[IDField] = id
	s.docs.Set(id, doc)
	return id, nil
}

// Update applies fields the way MongoDB applies $set: dotted keys address
// nested documents, and an empty set matches without changing anything.
func (s *MemoryStore) Update(ctx context.Context, id string, fields Item) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errStoreIsClosed
	}

	doc, ok := s.docs.Get(oid.Hex())
	if !ok {
		return ErrNotFound
	}
	if len(fields) == 0 {
		return nil
	}

	updated := deepCopy(doc).(Item)
	if err := applySet(updated, fields); err != nil {
		return err
	}
	s.docs.Set(oid.Hex(), updated)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errStoreIsClosed
	}

	if _, ok := s.docs.Delete(oid.Hex()); !ok {
		return ErrNotFound
	}
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errStoreIsClosed
	}
	return nil
}

func (s *MemoryStore) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// applySet writes each field into doc, treating "a.b" as the path to key b
// of the embedded document a.
func applySet(doc Item, fields Item) error {
	paths := make([]string, 0, len(fields))
	for k := range fields {
		paths = append(paths, k)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if path == IDField || strings.HasPrefix(path, IDField+".") {
			return errImmutableID
		}
		for _, part := range strings.Split(path, ".") {
			if part == "" {
				return fmt.Errorf("the update path '%s' contains an empty field name", path)
			}
		}
		for _, other := range paths {
			if strings.HasPrefix(path, other+".") {
				return fmt.Errorf("updating the path '%s' would create a conflict at '%s'", path, other)
			}
		}
	}

	for _, path := range paths {
		parts := strings.Split(path, ".")
		target := map[string]interface{}(doc)
		for _, part := range parts[:len(parts)-1] {
			next, exists := target[part]
			if !exists {
				child := make(map[string]interface{})
				target[part] = child
				target = child
				continue
			}
			switch child := next.(type) {
			case map[string]interface{}:
				target = child
			case Item:
				target = child
			default:
				return fmt.Errorf("cannot create field '%s' in element {%s: %v}", parts[len(parts)-1], part, next)
			}
		}
		target[parts[len(parts)-1]] = deepCopy(fields[path])
	}
	return nil
}

// deepCopy copies maps and slices recursively so stored documents never
// share nested values with callers.
func deepCopy(v interface{}) interface{} {
	switch t := v.(type) {
	case Item:
		c := make(Item, len(t))
		for k, val := range t {
			c[k] = deepCopy(val)
		}
		return c
	case map[string]interface{}:
		c := make(map[string]interface{}, len(t))
		for k, val := range t {
			c[k] = deepCopy(val)
		}
		return c
	case []interface{}:
		c := make([]interface{}, len(t))
		for i, val := range t {
			c[i] = deepCopy(val)
		}
		return c
	default:
		return v
	}
}
