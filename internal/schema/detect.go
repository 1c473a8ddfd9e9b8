package schema

import (
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DetectType classifies a single decoded value. The store decodes documents
// into map form, so embedded documents arrive as bson.M and arrays as
// bson.A; plain Go values appear in fixtures and tests.
func DetectType(v interface{}) FieldType {
	switch val := v.(type) {
	case nil:
		return TypeNull
	case bool:
		return TypeBoolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeInteger
	case float32, float64:
		return TypeFloat
	case string:
		return TypeString
	case time.Time:
		return TypeDate
	case primitive.DateTime, primitive.Timestamp:
		return TypeDate
	case primitive.ObjectID:
		return TypeObjectID
	case primitive.Decimal128:
		return TypeFloat
	case primitive.Binary, primitive.Regex, primitive.Symbol:
		// Display-equivalent scalars, not documents; Binary and Regex are
		// structs and would otherwise fall through to the reflect path.
		return TypeString
	case bson.A:
		return TypeArray
	case []interface{}:
		return TypeArray
	case bson.M:
		return TypeEmbeddedDocument
	case map[string]interface{}:
		return TypeEmbeddedDocument
	case bson.D:
		return TypeEmbeddedDocument
	default:
		return detectReflect(reflect.ValueOf(val))
	}
}

// detectReflect handles typed slices, maps and numeric aliases that the
// concrete switch cannot enumerate.
func detectReflect(rv reflect.Value) FieldType {
	if !rv.IsValid() {
		return TypeNull
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return TypeArray
	case reflect.Map, reflect.Struct:
		return TypeEmbeddedDocument
	case reflect.Bool:
		return TypeBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeInteger
	case reflect.Float32, reflect.Float64:
		return TypeFloat
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return TypeNull
		}
		return detectReflect(rv.Elem())
	default:
		return TypeString
	}
}

// elements flattens one observed array value into its elements. Returns nil
// for non-array values.
func elements(v interface{}) []interface{} {
	switch arr := v.(type) {
	case bson.A:
		return []interface{}(arr)
	case []interface{}:
		return arr
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil
	}
	out := make([]interface{}, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
