package schema

import (
	"fmt"
	"sort"

	"github.com/dbsmedya/mongolens/internal/store"
)

const (
	// dominanceThreshold is the fraction of non-null observations a single
	// type must reach for the field to carry that type instead of Mixed.
	dominanceThreshold = 0.95

	// maxSampleValues caps the example values kept per field.
	maxSampleValues = 5

	// maxDistinctTracked caps distinct-value tracking per field. Counting
	// stops at the cap; the sample-level count only feeds low-cardinality
	// hints, never exact statistics.
	maxDistinctTracked = 64
)

// fieldStats accumulates per-field observations across the sample.
type fieldStats struct {
	typeCounts map[FieldType]int
	elemCounts map[FieldType]int
	elemTotal  int
	presentIn  int
	nullCount  int
	samples    []interface{}
	distinct   map[string]struct{}
}

func newFieldStats() *fieldStats {
	return &fieldStats{
		typeCounts: make(map[FieldType]int),
		elemCounts: make(map[FieldType]int),
		distinct:   make(map[string]struct{}),
	}
}

func (fs *fieldStats) observe(v interface{}) {
	fs.presentIn++
	t := DetectType(v)
	if t == TypeNull {
		fs.nullCount++
		return
	}
	fs.typeCounts[t]++
	if len(fs.samples) < maxSampleValues {
		fs.samples = append(fs.samples, v)
	}
	if len(fs.distinct) < maxDistinctTracked {
		fs.distinct[fingerprint(v)] = struct{}{}
	}
	if t == TypeArray {
		for _, elem := range elements(v) {
			et := DetectType(elem)
			if et == TypeNull {
				continue
			}
			fs.elemCounts[et]++
			fs.elemTotal++
		}
	}
}

// fingerprint flattens a value into a comparable key for distinct tracking.
// Composite values hash by their printed form, which is good enough for
// sample-level cardinality hints.
func fingerprint(v interface{}) string {
	return fmt.Sprintf("%T\x00%v", v, v)
}

// Infer builds a CollectionSchema from sampled documents. Only top-level
// keys are walked; nested documents stay a single EmbeddedDocument field so
// field identity remains stable across discovery passes. Keys within each
// document are visited in sorted order, making the output deterministic for
// a given sample.
func Infer(name string, docs []store.Document) *CollectionSchema {
	cs := NewCollectionSchema(name)
	cs.SampleSize = len(docs)
	if len(docs) == 0 {
		return cs
	}

	order := make([]string, 0, 16)
	stats := make(map[string]*fieldStats, 16)
	keys := make([]string, 0, 16)
	for _, doc := range docs {
		keys = keys[:0]
		for key := range doc {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			st, ok := stats[key]
			if !ok {
				st = newFieldStats()
				stats[key] = st
				order = append(order, key)
			}
			st.observe(doc[key])
		}
	}

	total := len(docs)
	for _, fieldName := range order {
		st := stats[fieldName]
		fs := &FieldSchema{
			Name:           fieldName,
			Type:           dominantType(st.typeCounts, st.presentIn-st.nullCount),
			OccurrenceRate: float64(st.presentIn) / float64(total),
			Nullable:       st.nullCount > 0 || st.presentIn < total,
			SampleValues:   st.samples,
			DistinctCount:  len(st.distinct),
		}
		if fs.Type == TypeArray {
			fs.ElementType = dominantType(st.elemCounts, st.elemTotal)
		}
		cs.Fields.Set(fieldName, fs)
	}
	return cs
}

// dominantType resolves a type histogram: the single type holding at least
// the dominance share of non-null observations, Mixed otherwise, Null when
// nothing non-null was observed. Integer and Float are never unified; when
// both carry real weight neither dominates and the field is Mixed.
func dominantType(counts map[FieldType]int, total int) FieldType {
	if total <= 0 || len(counts) == 0 {
		return TypeNull
	}
	best, bestCount := TypeNull, -1
	for t := TypeNull; t <= TypeMixed; t++ {
		if c := counts[t]; c > bestCount {
			best, bestCount = t, c
		}
	}
	if float64(bestCount)/float64(total) >= dominanceThreshold {
		return best
	}
	return TypeMixed
}
