package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderPlaceholderFormats(t *testing.T) {
	query, _, err := builderFor("postgres").
		Select("customer_id").From("customers").Where(sq.Eq{"city": "Miami"}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "$1")

	query, _, err = builderFor("sqlite").
		Select("customer_id").From("customers").Where(sq.Eq{"city": "Miami"}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "?")
}

func TestOpenRejectsUnknownProvider(t *testing.T) {
	_, err := Open("mongodb", "mongodb://localhost")
	assert.Error(t, err)
}

func TestIDColumns(t *testing.T) {
	assert.Equal(t, "customer_id", idColumn("customers"))
	assert.Equal(t, "transaction_id", idColumn("transactions"))
	assert.Equal(t, "session_id", idColumn("service_sessions"))
	assert.Equal(t, "id", idColumn("unknown_table"))
}

func TestTableOrderIsACopy(t *testing.T) {
	order := TableOrder()
	require.NotEmpty(t, order)
	order[0] = "mutated"
	assert.NotEqual(t, "mutated", TableOrder()[0])
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open("sqlite", "sqlite://"+filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSchemaAndInsertRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	require.NoError(t, st.CreateSchema(ctx))

	founded := time.Date(1863, 6, 3, 0, 0, 0, 0, time.UTC)
	ids, err := st.InsertMany(ctx, "institutions",
		[]string{"name", "routing_code", "country", "city", "founded_date"},
		[][]interface{}{
			{"First National Bank", "FNBAUS33", "USA", "New York", founded},
			{"Global Trust Bank", "GTBKUS44", "USA", "San Francisco", founded},
		})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, ids[0]+1, ids[1])

	n, err := st.Count(ctx, "institutions")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestInsertManyRejectsRaggedRows(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	require.NoError(t, st.CreateSchema(ctx))

	_, err := st.InsertMany(ctx, "institutions",
		[]string{"name", "routing_code", "country", "city", "founded_date"},
		[][]interface{}{{"Only Two", "Fields"}})
	assert.Error(t, err)
}

func TestTransactionLifecycle(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	require.NoError(t, st.CreateSchema(ctx))

	require.NoError(t, st.Begin(ctx))
	assert.Error(t, st.Begin(ctx))

	_, err := st.InsertMany(ctx, "institutions",
		[]string{"name", "routing_code", "country", "city", "founded_date"},
		[][]interface{}{{"Rolled Back Bank", "RBBKUS11", "USA", "Boston", time.Now()}})
	require.NoError(t, err)
	require.NoError(t, st.Rollback())

	n, err := st.Count(ctx, "institutions")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	require.NoError(t, st.Begin(ctx))
	_, err = st.InsertMany(ctx, "institutions",
		[]string{"name", "routing_code", "country", "city", "founded_date"},
		[][]interface{}{{"Committed Bank", "CMBKUS22", "USA", "Denver", time.Now()}})
	require.NoError(t, err)
	require.NoError(t, st.Commit())

	n, err = st.Count(ctx, "institutions")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestClearAllResetsIDs(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	require.NoError(t, st.CreateSchema(ctx))

	cols := []string{"name", "routing_code", "country", "city", "founded_date"}
	_, err := st.InsertMany(ctx, "institutions", cols,
		[][]interface{}{{"A Bank", "ABNKUS11", "USA", "Austin", time.Now()}})
	require.NoError(t, err)

	require.NoError(t, st.ClearAll(ctx))

	ids, err := st.InsertMany(ctx, "institutions", cols,
		[][]interface{}{{"B Bank", "BBNKUS22", "USA", "Boston", time.Now()}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, ids[0])
}
