package memstore

import (
	"bytes"
	"reflect"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dbsmedya/mongolens/internal/store"
)

// matchCondition evaluates one predicate against one document, following
// document-store matching semantics: negative operators match absent
// fields, and predicates on array values match when any element matches.
func matchCondition(doc store.Document, cond store.Condition) bool {
	value, present := doc[cond.Field]
	switch cond.Op {
	case store.OpExists:
		want, _ := cond.Value.(bool)
		return present == want
	case store.OpEqual:
		return present && valueMatches(value, cond.Value)
	case store.OpNotEqual:
		if !present {
			return true
		}
		return !valueMatches(value, cond.Value)
	case store.OpIn:
		return present && inList(value, cond.Value)
	case store.OpNotIn:
		if !present {
			return true
		}
		return !inList(value, cond.Value)
	case store.OpGreaterThan, store.OpGreaterThanOrEqual, store.OpLessThan, store.OpLessThanOrEqual:
		if !present {
			return false
		}
		c, ok := compareValues(value, cond.Value)
		if !ok {
			return false
		}
		switch cond.Op {
		case store.OpGreaterThan:
			return c > 0
		case store.OpGreaterThanOrEqual:
			return c >= 0
		case store.OpLessThan:
			return c < 0
		default:
			return c <= 0
		}
	}
	return false
}

// valueMatches reports equality, treating array values as matching when any
// element matches the operand.
func valueMatches(value, operand interface{}) bool {
	if equalValues(value, operand) {
		return true
	}
	for _, elem := range elementsOf(value) {
		if equalValues(elem, operand) {
			return true
		}
	}
	return false
}

// inList reports whether the value (or any of its elements) matches any
// item of the operand list.
func inList(value, operand interface{}) bool {
	for _, item := range elementsOf(operand) {
		if valueMatches(value, item) {
			return true
		}
	}
	return false
}

func elementsOf(v interface{}) []interface{} {
	switch arr := v.(type) {
	case bson.A:
		return []interface{}(arr)
	case []interface{}:
		return arr
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return nil
	}
	out := make([]interface{}, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func equalValues(a, b interface{}) bool {
	if c, ok := compareValues(a, b); ok {
		return c == 0
	}
	return reflect.DeepEqual(a, b)
}

// compareValues orders two values when they share a comparable domain:
// numbers cross-type, times, strings, booleans, object ids, nils. Returns
// ok=false for everything else.
func compareValues(a, b interface{}) (int, bool) {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0, true
		case a == nil:
			return -1, true
		default:
			return 1, true
		}
	}

	if af, ok := numericValue(a); ok {
		if bf, bok := numericValue(b); bok {
			switch {
			case af < bf:
				return -1, true
			case af > bf:
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}

	if at, ok := timeValue(a); ok {
		if bt, bok := timeValue(b); bok {
			switch {
			case at.Before(bt):
				return -1, true
			case at.After(bt):
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}

	if as, ok := a.(string); ok {
		if bs, bok := b.(string); bok {
			return strings.Compare(as, bs), true
		}
		return 0, false
	}

	if ab, ok := a.(bool); ok {
		if bb, bok := b.(bool); bok {
			switch {
			case ab == bb:
				return 0, true
			case !ab:
				return -1, true
			default:
				return 1, true
			}
		}
		return 0, false
	}

	if ao, ok := a.(primitive.ObjectID); ok {
		if bo, bok := b.(primitive.ObjectID); bok {
			return bytes.Compare(ao[:], bo[:]), true
		}
		return 0, false
	}

	return 0, false
}

func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func timeValue(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case primitive.DateTime:
		return t.Time(), true
	case primitive.Timestamp:
		return time.Unix(int64(t.T), 0).UTC(), true
	}
	return time.Time{}, false
}

// sortDocuments stable-sorts in place by the ordered sort fields. Missing
// values order before present ones ascending, mirroring the store's
// behavior for absent keys.
func sortDocuments(docs []store.Document, fields []store.SortField) {
	sort.SliceStable(docs, func(i, j int) bool {
		for _, sf := range fields {
			av, aok := docs[i][sf.Field]
			bv, bok := docs[j][sf.Field]
			var c int
			switch {
			case !aok && !bok:
				c = 0
			case !aok:
				c = -1
			case !bok:
				c = 1
			default:
				if cc, ok := compareValues(av, bv); ok {
					c = cc
				}
			}
			if c == 0 {
				continue
			}
			if sf.Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}
