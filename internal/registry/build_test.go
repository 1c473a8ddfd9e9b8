package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/mongolens/internal/config"
	"github.com/dbsmedya/mongolens/internal/relation"
	"github.com/dbsmedya/mongolens/internal/schema"
)

func boolPtr(b bool) *bool { return &b }

// articlesSchema builds a fixture with one field of every interesting
// shape, in a fixed discovery order.
func articlesSchema() *schema.CollectionSchema {
	cs := schema.NewCollectionSchema("blog_articles")
	add := func(f *schema.FieldSchema) { cs.Fields.Set(f.Name, f) }

	add(&schema.FieldSchema{Name: "_id", Type: schema.TypeObjectID, OccurrenceRate: 1, DistinctCount: 64})
	add(&schema.FieldSchema{Name: "title", Type: schema.TypeString, OccurrenceRate: 1, DistinctCount: 64})
	add(&schema.FieldSchema{Name: "status", Type: schema.TypeString, OccurrenceRate: 1, DistinctCount: 3,
		SampleValues: []interface{}{"draft", "published", "archived"}})
	add(&schema.FieldSchema{Name: "views", Type: schema.TypeInteger, OccurrenceRate: 1, DistinctCount: 50})
	add(&schema.FieldSchema{Name: "rating", Type: schema.TypeFloat, OccurrenceRate: 0.9, Nullable: true, DistinctCount: 20})
	add(&schema.FieldSchema{Name: "published", Type: schema.TypeBoolean, OccurrenceRate: 1, DistinctCount: 2,
		SampleValues: []interface{}{true, false}})
	add(&schema.FieldSchema{Name: "created_at", Type: schema.TypeDate, OccurrenceRate: 1, DistinctCount: 64})
	add(&schema.FieldSchema{Name: "author_id", Type: schema.TypeObjectID, OccurrenceRate: 1, DistinctCount: 30})
	add(&schema.FieldSchema{Name: "tag_ids", Type: schema.TypeArray, ElementType: schema.TypeObjectID, OccurrenceRate: 0.8, Nullable: true, DistinctCount: 40})
	add(&schema.FieldSchema{Name: "meta", Type: schema.TypeEmbeddedDocument, OccurrenceRate: 0.7, Nullable: true, DistinctCount: 35})
	add(&schema.FieldSchema{Name: "legacy", Type: schema.TypeMixed, OccurrenceRate: 0.5, Nullable: true, DistinctCount: 12})
	add(&schema.FieldSchema{Name: "rare", Type: schema.TypeString, OccurrenceRate: 0.02, Nullable: true, DistinctCount: 1,
		SampleValues: []interface{}{"legacy-flag"}})
	return cs
}

func TestBuildEntryDefaults(t *testing.T) {
	e, err := BuildEntry("blog_articles", articlesSchema(), config.CollectionConfig{}, 0.1)
	require.NoError(t, err)

	assert.Equal(t, "Blog Articles", e.DisplayName)
	assert.Equal(t, []string{"title", "status", "rare"}, e.SearchFields,
		"string fields in discovery order")
	assert.Equal(t, []string{"title", "status", "views", "rating", "created_at", "rare"}, e.SortableFields)
	assert.Equal(t, []string{"_id", "title", "status", "views", "rating", "published", "created_at", "author_id", "tag_ids", "meta"}, e.ListFields,
		"first ten fields above the occurrence floor")

	require.Len(t, e.FilterHints, 3)
	assert.Equal(t, "status", e.FilterHints[0].Field)
	assert.Equal(t, []interface{}{"draft", "published", "archived"}, e.FilterHints[0].Values)
	assert.Equal(t, "published", e.FilterHints[1].Field)
	assert.Equal(t, "rare", e.FilterHints[2].Field)
}

func TestBuildEntryDisplayNameOverride(t *testing.T) {
	e, err := BuildEntry("blog_articles", articlesSchema(), config.CollectionConfig{DisplayName: "Posts"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "Posts", e.DisplayName)
}

func TestBuildEntryUnknownFieldOverride(t *testing.T) {
	cfg := config.CollectionConfig{
		Fields: map[string]config.FieldConfig{"titel": {Label: "Title"}},
	}
	_, err := BuildEntry("blog_articles", articlesSchema(), cfg, 0)
	require.Error(t, err)
	require.True(t, IsConflict(err))
	assert.Contains(t, err.Error(), `unknown field "titel"`)
	assert.Contains(t, err.Error(), `did you mean "title"`)
}

func TestBuildEntryExplicitLists(t *testing.T) {
	cfg := config.CollectionConfig{
		ListFields:     []string{"title", "views"},
		SearchFields:   []string{"title"},
		SortableFields: []string{"views", "meta"},
	}
	e, err := BuildEntry("blog_articles", articlesSchema(), cfg, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"title", "views"}, e.ListFields)
	assert.Equal(t, []string{"title"}, e.SearchFields)
	assert.Equal(t, []string{"views", "meta"}, e.SortableFields,
		"explicit configuration may mark any existing field sortable")
}

func TestBuildEntryExplicitListValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.CollectionConfig
		want string
	}{
		{"unknown list field", config.CollectionConfig{ListFields: []string{"nope"}}, "list_fields"},
		{"unknown search field", config.CollectionConfig{SearchFields: []string{"nope"}}, "search_fields"},
		{"unknown sortable field", config.CollectionConfig{SortableFields: []string{"nope"}}, "sortable_fields"},
		{"non-string search field", config.CollectionConfig{SearchFields: []string{"views"}}, "only String fields"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildEntry("blog_articles", articlesSchema(), tt.cfg, 0)
			require.Error(t, err)
			assert.True(t, IsConflict(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBuildEntryFieldFlags(t *testing.T) {
	cfg := config.CollectionConfig{
		Fields: map[string]config.FieldConfig{
			"title":  {Searchable: boolPtr(false), Label: "Headline"},
			"legacy": {Hidden: boolPtr(true), Sortable: boolPtr(true)},
			"status": {Hidden: boolPtr(true)},
		},
	}
	e, err := BuildEntry("blog_articles", articlesSchema(), cfg, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"status", "rare"}, e.SearchFields,
		"searchable=false removes a default string field")
	assert.Contains(t, e.SortableFields, "legacy", "sortable=true adds a non-default field")
	assert.Equal(t, "Headline", e.Label("title"))
	assert.Equal(t, "views", e.Label("views"))

	assert.True(t, e.Hidden("legacy"))
	assert.NotContains(t, e.ListFields, "legacy")
	assert.NotContains(t, e.ListFields, "status")
	for _, h := range e.FilterHints {
		assert.NotEqual(t, "status", h.Field, "hidden fields carry no filter hints")
	}
}

func TestBuildEntrySearchableFlagOnNonString(t *testing.T) {
	cfg := config.CollectionConfig{
		Fields: map[string]config.FieldConfig{"views": {Searchable: boolPtr(true)}},
	}
	_, err := BuildEntry("blog_articles", articlesSchema(), cfg, 0)
	require.Error(t, err)
	assert.True(t, IsConflict(err))
	assert.Contains(t, err.Error(), "cannot be marked searchable")
}

func TestBuildEntrySearchDefaultLimit(t *testing.T) {
	cs := schema.NewCollectionSchema("wide")
	for _, n := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		cs.Fields.Set(n, &schema.FieldSchema{Name: n, Type: schema.TypeString, OccurrenceRate: 1, DistinctCount: 50})
	}
	e, err := BuildEntry("wide", cs, config.CollectionConfig{}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, e.SearchFields)
}

func TestMergeRelationshipsKeepDetected(t *testing.T) {
	cs := articlesSchema()
	detected := []relation.Edge{
		{Source: "blog_articles", SourceField: "author_id", Target: "authors", Kind: relation.ReferenceOne, Confidence: 1},
		{Source: "blog_articles", SourceField: "tag_ids", Target: "tags", Kind: relation.ReferenceMany, Confidence: 1},
	}

	out, err := MergeRelationships("blog_articles", cs, detected, nil, []string{"authors", "tags", "blog_articles"})
	require.NoError(t, err)
	assert.Equal(t, detected, out)
}

func TestMergeRelationshipsSuppress(t *testing.T) {
	cs := articlesSchema()
	detected := []relation.Edge{
		{Source: "blog_articles", SourceField: "author_id", Target: "authors", Kind: relation.ReferenceOne, Confidence: 1},
		{Source: "blog_articles", SourceField: "tag_ids", Target: "tags", Kind: relation.ReferenceMany, Confidence: 1},
	}
	overrides := []config.RelationshipConfig{{Field: "author_id", Suppress: true}}

	out, err := MergeRelationships("blog_articles", cs, detected, overrides, []string{"authors", "tags"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "tag_ids", out[0].SourceField)
}

func TestMergeRelationshipsForce(t *testing.T) {
	cs := articlesSchema()
	// The detector saw nothing for meta; configuration forces an edge and
	// the kind derives from the field type when unspecified.
	overrides := []config.RelationshipConfig{
		{Field: "meta", Target: "authors"},
		{Field: "tag_ids", Target: "topics"},
	}

	out, err := MergeRelationships("blog_articles", cs, nil, overrides, []string{"authors", "topics"})
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "meta", out[0].SourceField)
	assert.Equal(t, relation.ReferenceOne, out[0].Kind)
	assert.Equal(t, relation.ConfidenceConfirmed, out[0].Confidence)

	assert.Equal(t, "tag_ids", out[1].SourceField)
	assert.Equal(t, "topics", out[1].Target)
	assert.Equal(t, relation.ReferenceMany, out[1].Kind, "array field derives many")
}

func TestMergeRelationshipsRetarget(t *testing.T) {
	cs := articlesSchema()
	detected := []relation.Edge{
		{Source: "blog_articles", SourceField: "author_id", Target: "authors", Kind: relation.ReferenceOne, Confidence: 0.6},
	}
	overrides := []config.RelationshipConfig{{Field: "author_id", Target: "users", Kind: "one"}}

	out, err := MergeRelationships("blog_articles", cs, detected, overrides, []string{"authors", "users"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "users", out[0].Target)
	assert.Equal(t, relation.ConfidenceConfirmed, out[0].Confidence,
		"user-confirmed edges carry full confidence")
}

func TestMergeRelationshipsUnknownField(t *testing.T) {
	overrides := []config.RelationshipConfig{{Field: "autor_id", Target: "authors"}}
	_, err := MergeRelationships("blog_articles", articlesSchema(), nil, overrides, []string{"authors"})
	require.Error(t, err)
	assert.True(t, IsConflict(err))
	assert.Contains(t, err.Error(), `did you mean "author_id"`)
}

func TestMergeRelationshipsUnknownTarget(t *testing.T) {
	overrides := []config.RelationshipConfig{{Field: "author_id", Target: "userz"}}
	_, err := MergeRelationships("blog_articles", articlesSchema(), nil, overrides, []string{"users", "tags"})
	require.Error(t, err)
	assert.True(t, IsConflict(err))
	assert.Contains(t, err.Error(), `unknown collection "userz"`)
	assert.Contains(t, err.Error(), `did you mean "users"`)
}

func TestClosestName(t *testing.T) {
	assert.Equal(t, "title", closestName("titel", []string{"title", "views", "status"}))
	assert.Equal(t, "", closestName("completely_different", []string{"title", "views"}),
		"distant candidates are not suggested")
	assert.Equal(t, "", closestName("title", []string{"title"}),
		"an exact match is not a suggestion")
}
