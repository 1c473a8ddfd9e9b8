package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dbsmedya/mongolens/internal/store"
)

func TestBuildFilterEmpty(t *testing.T) {
	filter, err := buildFilter(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, filter)
}

func TestBuildFilterOperators(t *testing.T) {
	cases := []struct {
		op   store.Op
		name string
	}{
		{store.OpEqual, "$eq"},
		{store.OpNotEqual, "$ne"},
		{store.OpGreaterThan, "$gt"},
		{store.OpGreaterThanOrEqual, "$gte"},
		{store.OpLessThan, "$lt"},
		{store.OpLessThanOrEqual, "$lte"},
		{store.OpIn, "$in"},
		{store.OpNotIn, "$nin"},
		{store.OpExists, "$exists"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			filter, err := buildFilter([]store.Condition{{Field: "f", Op: tc.op, Value: 1}}, nil)
			require.NoError(t, err)
			clause, ok := filter["f"].(bson.M)
			require.True(t, ok)
			assert.Equal(t, 1, clause[tc.name])
		})
	}
}

func TestBuildFilterMergesSameField(t *testing.T) {
	filter, err := buildFilter([]store.Condition{
		{Field: "views", Op: store.OpGreaterThanOrEqual, Value: int64(10)},
		{Field: "views", Op: store.OpLessThan, Value: int64(20)},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, bson.M{"views": bson.M{"$gte": int64(10), "$lt": int64(20)}}, filter)
}

func TestBuildFilterSearch(t *testing.T) {
	filter, err := buildFilter(
		[]store.Condition{{Field: "active", Op: store.OpEqual, Value: true}},
		&store.SearchSpec{Term: "c++ (beta)", Fields: []string{"title", "summary"}},
	)
	require.NoError(t, err)

	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 2)

	first, ok := or[0].(bson.M)
	require.True(t, ok)
	re, ok := first["title"].(primitive.Regex)
	require.True(t, ok)
	assert.Equal(t, `c\+\+ \(beta\)`, re.Pattern, "metacharacters stay literal")
	assert.Equal(t, "i", re.Options)

	clause, ok := filter["active"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, true, clause["$eq"], "search ANDs with conditions")
}

func TestBuildFilterBlankSearchIgnored(t *testing.T) {
	filter, err := buildFilter(nil, &store.SearchSpec{Term: "   ", Fields: []string{"title"}})
	require.NoError(t, err)
	assert.Empty(t, filter)
}

func TestBuildFilterRejectsOperatorFieldNames(t *testing.T) {
	_, err := buildFilter([]store.Condition{{Field: "$where", Op: store.OpEqual, Value: 1}}, nil)
	require.Error(t, err)

	_, err = buildFilter([]store.Condition{{Field: "a.b", Op: store.OpEqual, Value: 1}}, nil)
	require.Error(t, err)

	_, err = buildFilter(nil, &store.SearchSpec{Term: "x", Fields: []string{"$where"}})
	require.Error(t, err)
}

func TestBuildSort(t *testing.T) {
	sort := buildSort([]store.SortField{
		{Field: "created_at", Descending: true},
		{Field: "title"},
	})
	assert.Equal(t, bson.D{
		{Key: "created_at", Value: -1},
		{Key: "title", Value: 1},
	}, sort)
}
