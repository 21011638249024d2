package items

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Aidin1998/crudgate/internal/infrastructure/config"
	"github.com/Aidin1998/crudgate/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseID(t *testing.T) {
	oid, err := ParseID("5f1e3c9a2b4d6e8f0a1b2c3d")
	require.NoError(t, err)
	assert.Equal(t, "5f1e3c9a2b4d6e8f0a1b2c3d", oid.Hex())

	for _, bad := range []string{"", "123", "zzzzzzzzzzzzzzzzzzzzzzzz", "5f1e3c9a2b4d6e8f0a1b2c3d00"} {
		_, err := ParseID(bad)
		assert.ErrorIs(t, err, ErrInvalidID, bad)
	}
}

func TestNormalizeNumbers(t *testing.T) {
	dec := json.NewDecoder(strings.NewReader(`{"qty": 3, "price": 9.5, "tags": [1, 2.5], "dims": {"w": 10}}`))
	dec.UseNumber()

	var doc map[string]interface{}
	require.NoError(t, dec.Decode(&doc))
	NormalizeNumbers(doc)

	assert.Equal(t, int64(3), doc["qty"])
	assert.Equal(t, 9.5, doc["price"])
	assert.Equal(t, []interface{}{int64(1), 2.5}, doc["tags"])
	assert.Equal(t, map[string]interface{}{"w": int64(10)}, doc["dims"])
}

func TestOpen_Memory(t *testing.T) {
	store, err := Open(context.Background(), config.StoreConfig{URI: "memory://"}, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestInstrument_CountsOutcomes(t *testing.T) {
	ctx := context.Background()
	store := Instrument(NewMemoryStore())

	okBefore := testutil.ToFloat64(metrics.StoreOperations.WithLabelValues("get", metrics.OutcomeOK))
	missBefore := testutil.ToFloat64(metrics.StoreOperations.WithLabelValues("get", metrics.OutcomeNotFound))
	errBefore := testutil.ToFloat64(metrics.StoreOperations.WithLabelValues("get", metrics.OutcomeError))

	id, err := store.Create(ctx, Item{"name": "widget"})
	require.NoError(t, err)
	_, err = store.Get(ctx, id)
	require.NoError(t, err)
	_, err = store.Get(ctx, "0123456789abcdef01234567")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, "bad")
	require.ErrorIs(t, err, ErrInvalidID)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(metrics.StoreOperations.WithLabelValues("get", metrics.OutcomeOK)))
	assert.Equal(t, missBefore+1, testutil.ToFloat64(metrics.StoreOperations.WithLabelValues("get", metrics.OutcomeNotFound)))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(metrics.StoreOperations.WithLabelValues("get", metrics.OutcomeError)))
}
