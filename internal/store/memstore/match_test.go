package memstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dbsmedya/mongolens/internal/store"
)

func TestMatchConditionOperators(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	doc := store.Document{
		"views":   int64(42),
		"title":   "hello",
		"active":  true,
		"when":    now,
		"tags":    []interface{}{"go", "db"},
		"deleted": nil,
	}

	tests := []struct {
		name string
		cond store.Condition
		want bool
	}{
		{"eq int", store.Condition{Field: "views", Op: store.OpEqual, Value: int64(42)}, true},
		{"eq int cross-type", store.Condition{Field: "views", Op: store.OpEqual, Value: 42}, true},
		{"eq miss", store.Condition{Field: "views", Op: store.OpEqual, Value: int64(7)}, false},
		{"eq string", store.Condition{Field: "title", Op: store.OpEqual, Value: "hello"}, true},
		{"eq array element", store.Condition{Field: "tags", Op: store.OpEqual, Value: "go"}, true},
		{"eq null", store.Condition{Field: "deleted", Op: store.OpEqual, Value: nil}, true},
		{"ne", store.Condition{Field: "views", Op: store.OpNotEqual, Value: int64(7)}, true},
		{"ne absent field matches", store.Condition{Field: "ghost", Op: store.OpNotEqual, Value: 1}, true},
		{"gt", store.Condition{Field: "views", Op: store.OpGreaterThan, Value: int64(40)}, true},
		{"gt float operand", store.Condition{Field: "views", Op: store.OpGreaterThan, Value: 41.5}, true},
		{"gte boundary", store.Condition{Field: "views", Op: store.OpGreaterThanOrEqual, Value: int64(42)}, true},
		{"lt", store.Condition{Field: "views", Op: store.OpLessThan, Value: int64(42)}, false},
		{"lte boundary", store.Condition{Field: "views", Op: store.OpLessThanOrEqual, Value: int64(42)}, true},
		{"gt absent field", store.Condition{Field: "ghost", Op: store.OpGreaterThan, Value: 1}, false},
		{"gt incomparable", store.Condition{Field: "title", Op: store.OpGreaterThan, Value: 5}, false},
		{"date gt", store.Condition{Field: "when", Op: store.OpGreaterThan, Value: now.Add(-time.Hour)}, true},
		{"in", store.Condition{Field: "views", Op: store.OpIn, Value: []interface{}{int64(1), int64(42)}}, true},
		{"in miss", store.Condition{Field: "views", Op: store.OpIn, Value: []interface{}{int64(1)}}, false},
		{"in array field", store.Condition{Field: "tags", Op: store.OpIn, Value: []interface{}{"db", "sql"}}, true},
		{"nin", store.Condition{Field: "views", Op: store.OpNotIn, Value: []interface{}{int64(1)}}, true},
		{"nin absent matches", store.Condition{Field: "ghost", Op: store.OpNotIn, Value: []interface{}{1}}, true},
		{"exists true", store.Condition{Field: "title", Op: store.OpExists, Value: true}, true},
		{"exists false", store.Condition{Field: "ghost", Op: store.OpExists, Value: false}, true},
		{"exists null field counts", store.Condition{Field: "deleted", Op: store.OpExists, Value: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchCondition(doc, tt.cond))
		})
	}
}

func TestCompareValues(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	c, ok := compareValues(int64(1), 2.5)
	assert.True(t, ok)
	assert.Equal(t, -1, c)

	c, ok = compareValues("a", "b")
	assert.True(t, ok)
	assert.Equal(t, -1, c)

	c, ok = compareValues(false, true)
	assert.True(t, ok)
	assert.Equal(t, -1, c)

	c, ok = compareValues(nil, "x")
	assert.True(t, ok)
	assert.Equal(t, -1, c, "nil orders first")

	c, ok = compareValues(a, a)
	assert.True(t, ok)
	assert.Equal(t, 0, c)

	_, ok = compareValues(a, b)
	assert.True(t, ok)

	_, ok = compareValues("a", 1)
	assert.False(t, ok, "strings and numbers do not compare")
}

func TestSortDocumentsMultiField(t *testing.T) {
	docs := []store.Document{
		{"group": "b", "rank": int64(1)},
		{"group": "a", "rank": int64(2)},
		{"group": "a", "rank": int64(1)},
		{"group": "a"},
	}

	sortDocuments(docs, []store.SortField{
		{Field: "group"},
		{Field: "rank", Descending: true},
	})

	assert.Equal(t, "a", docs[0]["group"])
	assert.Equal(t, int64(2), docs[0]["rank"])
	assert.Equal(t, int64(1), docs[1]["rank"])
	_, hasRank := docs[2]["rank"]
	assert.False(t, hasRank, "missing values order last on descending")
	assert.Equal(t, "b", docs[3]["group"])
}
