package schema

import (
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ToInt64 converts an interface{} value to int64.
// Supports common integer types, strings containing integers, and floats
// with integral values.
func ToInt64(v interface{}) (int64, error) {
	switch val := v.(type) {
	case int64:
		return val, nil
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case uint64:
		if val > 1<<63-1 {
			return 0, fmt.Errorf("uint64 value %d overflows int64", val)
		}
		return int64(val), nil
	case uint:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case uint16:
		return int64(val), nil
	case uint8:
		return int64(val), nil
	case float64:
		if val != float64(int64(val)) {
			return 0, fmt.Errorf("float64 value %v is not an integer", val)
		}
		return int64(val), nil
	case float32:
		if float64(val) != float64(int64(val)) {
			return 0, fmt.Errorf("float32 value %v is not an integer", val)
		}
		return int64(val), nil
	case string:
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as int64: %w", val, err)
		}
		return n, nil
	case []byte:
		n, err := strconv.ParseInt(string(val), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as int64: %w", string(val), err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unsupported type %T for int64 conversion", v)
	}
}

// ToFloat64 converts an interface{} value to float64.
// Integer inputs widen losslessly for the common magnitudes seen in
// sampled documents.
func ToFloat64(v interface{}) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case primitive.Decimal128:
		f, err := strconv.ParseFloat(val.String(), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse decimal %q as float64: %w", val.String(), err)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as float64: %w", val, err)
		}
		return f, nil
	default:
		n, err := ToInt64(v)
		if err != nil {
			return 0, fmt.Errorf("unsupported type %T for float64 conversion", v)
		}
		return float64(n), nil
	}
}

// ToTime converts an interface{} value to time.Time.
// Accepts native time values, store date representations, and RFC 3339
// strings.
func ToTime(v interface{}) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val, nil
	case primitive.DateTime:
		return val.Time(), nil
	case primitive.Timestamp:
		return time.Unix(int64(val.T), 0).UTC(), nil
	case string:
		if t, err := time.Parse(time.RFC3339, val); err == nil {
			return t, nil
		}
		if t, err := time.Parse("2006-01-02", val); err == nil {
			return t, nil
		}
		return time.Time{}, fmt.Errorf("cannot parse %q as time", val)
	default:
		return time.Time{}, fmt.Errorf("unsupported type %T for time conversion", v)
	}
}

// ParseValue coerces a raw string operand to the given field type. Used by
// the CLI when building filter conditions from flag values.
func ParseValue(t FieldType, raw string) (interface{}, error) {
	switch t {
	case TypeInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q: %w", raw, err)
		}
		return n, nil
	case TypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q: %w", raw, err)
		}
		return f, nil
	case TypeBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean %q: %w", raw, err)
		}
		return b, nil
	case TypeDate:
		ts, err := ToTime(raw)
		if err != nil {
			return nil, err
		}
		return ts, nil
	case TypeObjectID:
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid object id %q: %w", raw, err)
		}
		return oid, nil
	case TypeString, TypeMixed:
		return raw, nil
	case TypeNull:
		if raw == "" || raw == "null" {
			return nil, nil
		}
		return nil, fmt.Errorf("null field cannot match %q", raw)
	default:
		return nil, fmt.Errorf("cannot build operand for %s field", t)
	}
}
