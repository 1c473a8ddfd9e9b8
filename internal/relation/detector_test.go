package relation

import (
	"reflect"
	"testing"

	"github.com/dbsmedya/mongolens/internal/schema"
)

func testSchema(name string, fields ...*schema.FieldSchema) *schema.CollectionSchema {
	cs := schema.NewCollectionSchema(name)
	cs.Fields.Set("_id", &schema.FieldSchema{Name: "_id", Type: schema.TypeObjectID, OccurrenceRate: 1})
	for _, f := range fields {
		cs.Fields.Set(f.Name, f)
	}
	return cs
}

func idField(name string) *schema.FieldSchema {
	return &schema.FieldSchema{Name: name, Type: schema.TypeObjectID, OccurrenceRate: 1}
}

func idArrayField(name string) *schema.FieldSchema {
	return &schema.FieldSchema{Name: name, Type: schema.TypeArray, ElementType: schema.TypeObjectID, OccurrenceRate: 1}
}

func stringField(name string) *schema.FieldSchema {
	return &schema.FieldSchema{Name: name, Type: schema.TypeString, OccurrenceRate: 1}
}

func TestDetectConfirmedReference(t *testing.T) {
	schemas := map[string]*schema.CollectionSchema{
		"users":  testSchema("users"),
		"orders": testSchema("orders", idField("user_id")),
	}

	edges := Detect(schemas)
	if len(edges) != 1 {
		t.Fatalf("expected 1 edge, got %d: %v", len(edges), edges)
	}

	e := edges[0]
	if e.Source != "orders" || e.SourceField != "user_id" || e.Target != "users" {
		t.Errorf("unexpected edge %v", e)
	}
	if e.Kind != ReferenceOne {
		t.Errorf("expected ReferenceOne, got %v", e.Kind)
	}
	if e.Confidence != ConfidenceConfirmed {
		t.Errorf("expected confidence 1.0, got %v", e.Confidence)
	}
}

func TestDetectNamingVariants(t *testing.T) {
	variants := []string{"user_id", "userId", "userID", "USER_ID", "User_Id"}

	for _, field := range variants {
		schemas := map[string]*schema.CollectionSchema{
			"users":  testSchema("users"),
			"orders": testSchema("orders", idField(field)),
		}
		edges := Detect(schemas)
		if len(edges) != 1 {
			t.Errorf("field %q: expected 1 edge, got %d", field, len(edges))
			continue
		}
		if edges[0].Target != "users" || edges[0].Confidence != ConfidenceConfirmed {
			t.Errorf("field %q: unexpected edge %v", field, edges[0])
		}
	}
}

func TestDetectArrayReference(t *testing.T) {
	schemas := map[string]*schema.CollectionSchema{
		"tags":  testSchema("tags"),
		"posts": testSchema("posts", idArrayField("tag_ids")),
	}

	edges := Detect(schemas)
	if len(edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(edges))
	}
	if edges[0].Kind != ReferenceMany {
		t.Errorf("expected ReferenceMany for array field, got %v", edges[0].Kind)
	}
	if edges[0].Target != "tags" {
		t.Errorf("expected target tags, got %q", edges[0].Target)
	}
}

func TestDetectKindFollowsFieldType(t *testing.T) {
	// A singular name on an array field is still ReferenceMany: the kind
	// comes from the inferred type, not from the suffix.
	schemas := map[string]*schema.CollectionSchema{
		"users":  testSchema("users"),
		"groups": testSchema("groups", idArrayField("user_id")),
	}

	edges := Detect(schemas)
	if len(edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(edges))
	}
	if edges[0].Kind != ReferenceMany {
		t.Errorf("expected ReferenceMany, got %v", edges[0].Kind)
	}
}

func TestDetectNamingAloneNeverEmits(t *testing.T) {
	// user_id as a string field: suggestive name, wrong type, no edge.
	schemas := map[string]*schema.CollectionSchema{
		"users":  testSchema("users"),
		"orders": testSchema("orders", stringField("user_id")),
	}

	if edges := Detect(schemas); len(edges) != 0 {
		t.Errorf("expected no edges for non-identifier field, got %v", edges)
	}
}

func TestDetectSuggestionFromBareName(t *testing.T) {
	schemas := map[string]*schema.CollectionSchema{
		"authors":  testSchema("authors"),
		"articles": testSchema("articles", idField("author")),
	}

	edges := Detect(schemas)
	if len(edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(edges))
	}
	e := edges[0]
	if e.Target != "authors" {
		t.Errorf("expected target authors, got %q", e.Target)
	}
	if e.Confidence != ConfidenceSuggested {
		t.Errorf("expected suggestion confidence, got %v", e.Confidence)
	}
	if e.Confirmed() {
		t.Error("suggestion must not report as confirmed")
	}
}

func TestDetectSuggestionExactCollectionName(t *testing.T) {
	// The bare field name matches a collection name that is not a regular
	// plural of anything.
	schemas := map[string]*schema.CollectionSchema{
		"media":    testSchema("media"),
		"articles": testSchema("articles", idArrayField("media")),
	}

	edges := Detect(schemas)
	if len(edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(edges))
	}
	if edges[0].Target != "media" || edges[0].Kind != ReferenceMany {
		t.Errorf("unexpected edge %v", edges[0])
	}
	if edges[0].Confidence != ConfidenceSuggested {
		t.Errorf("expected suggestion confidence, got %v", edges[0].Confidence)
	}
}

func TestDetectNoTargetNoEdge(t *testing.T) {
	// Recognizable convention, but no collection matches the noun.
	schemas := map[string]*schema.CollectionSchema{
		"orders": testSchema("orders", idField("legacy_id"), idField("shard")),
	}

	if edges := Detect(schemas); len(edges) != 0 {
		t.Errorf("expected no edges without a resolvable target, got %v", edges)
	}
}

func TestDetectSelfReference(t *testing.T) {
	schemas := map[string]*schema.CollectionSchema{
		"categories": testSchema("categories", idField("category_id")),
	}

	edges := Detect(schemas)
	if len(edges) != 1 {
		t.Fatalf("expected 1 self edge, got %d", len(edges))
	}
	if !edges[0].SelfReference() {
		t.Errorf("expected self reference, got %v", edges[0])
	}
	if edges[0].Confidence != ConfidenceConfirmed {
		t.Errorf("expected confirmed self edge, got %v", edges[0].Confidence)
	}
}

func TestDetectPrimaryKeyNeverSource(t *testing.T) {
	// A collection literally named "ids" must not turn every _id into an
	// edge.
	schemas := map[string]*schema.CollectionSchema{
		"ids":   testSchema("ids"),
		"users": testSchema("users"),
	}

	if edges := Detect(schemas); len(edges) != 0 {
		t.Errorf("expected no edges from primary keys, got %v", edges)
	}
}

func TestDetectIrregularPlural(t *testing.T) {
	schemas := map[string]*schema.CollectionSchema{
		"people": testSchema("people"),
		"teams":  testSchema("teams", idField("person_id")),
	}

	edges := Detect(schemas)
	if len(edges) != 1 || edges[0].Target != "people" {
		t.Fatalf("expected edge to people, got %v", edges)
	}
}

func TestDetectMultiEdge(t *testing.T) {
	// Two fields from the same source to the same target are both kept.
	schemas := map[string]*schema.CollectionSchema{
		"users":   testSchema("users"),
		"reviews": testSchema("reviews", idField("user_id"), idArrayField("users")),
	}

	edges := Detect(schemas)
	if len(edges) != 2 {
		t.Fatalf("expected 2 edges, got %d: %v", len(edges), edges)
	}
	if edges[0].SourceField != "user_id" || edges[0].Confidence != ConfidenceConfirmed {
		t.Errorf("unexpected first edge %v", edges[0])
	}
	if edges[1].SourceField != "users" || edges[1].Confidence != ConfidenceSuggested {
		t.Errorf("unexpected second edge %v", edges[1])
	}
}

func TestDetectCaseInsensitiveCollectionMatch(t *testing.T) {
	schemas := map[string]*schema.CollectionSchema{
		"Users":  testSchema("Users"),
		"orders": testSchema("orders", idField("user_id")),
	}

	edges := Detect(schemas)
	if len(edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(edges))
	}
	if edges[0].Target != "Users" {
		t.Errorf("expected canonical target name Users, got %q", edges[0].Target)
	}
}

func TestDetectDeterministic(t *testing.T) {
	schemas := map[string]*schema.CollectionSchema{
		"users":    testSchema("users"),
		"tags":     testSchema("tags"),
		"posts":    testSchema("posts", idField("user_id"), idArrayField("tag_ids")),
		"comments": testSchema("comments", idField("user_id"), idField("post_id")),
	}

	first := Detect(schemas)
	for i := 0; i < 10; i++ {
		if got := Detect(schemas); !reflect.DeepEqual(first, got) {
			t.Fatalf("run %d differs: %v vs %v", i, first, got)
		}
	}

	// Sorted by source, then field.
	want := []string{"comments.post_id", "comments.user_id", "posts.tag_ids", "posts.user_id"}
	got := make([]string, 0, len(first))
	for _, e := range first {
		got = append(got, e.Source+"."+e.SourceField)
	}
	if !reflect.DeepEqual(want, got) {
		t.Errorf("expected order %v, got %v", want, got)
	}
}

func TestReferenceStem(t *testing.T) {
	tests := []struct {
		field string
		stem  string
		ok    bool
	}{
		{"user_id", "user", true},
		{"user_ids", "user", true},
		{"userId", "user", true},
		{"userIds", "user", true},
		{"userID", "user", true},
		{"userIDs", "user", true},
		{"USER_ID", "user", true},
		{"parent_id", "parent", true},
		{"user__id", "user", true},
		{"_id", "", false},
		{"id", "", false},
		{"Id", "", false},
		{"valid", "", false},
		{"grid", "", false},
		{"paid", "", false},
		{"author", "", false},
	}

	for _, tt := range tests {
		stem, ok := referenceStem(tt.field)
		if ok != tt.ok || stem != tt.stem {
			t.Errorf("referenceStem(%q) = (%q, %v), want (%q, %v)", tt.field, stem, ok, tt.stem, tt.ok)
		}
	}
}
