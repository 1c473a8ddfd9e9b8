package mongo

import (
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dbsmedya/mongolens/internal/store"
)

// buildFilter translates conditions and search into a filter document.
// Conditions on the same field merge into one operator document; search
// becomes a case-insensitive regex OR across its fields, with the term's
// regex metacharacters quoted so it stays a substring match.
func buildFilter(conditions []store.Condition, search *store.SearchSpec) (bson.M, error) {
	filter := bson.M{}
	for _, c := range conditions {
		if err := store.ValidateFieldName(c.Field); err != nil {
			return nil, err
		}
		op, err := operatorName(c.Op)
		if err != nil {
			return nil, err
		}
		clause, ok := filter[c.Field].(bson.M)
		if !ok {
			clause = bson.M{}
			filter[c.Field] = clause
		}
		clause[op] = c.Value
	}

	if search != nil && strings.TrimSpace(search.Term) != "" {
		pattern := regexp.QuoteMeta(search.Term)
		or := make(bson.A, 0, len(search.Fields))
		for _, field := range search.Fields {
			if err := store.ValidateFieldName(field); err != nil {
				return nil, err
			}
			or = append(or, bson.M{field: primitive.Regex{Pattern: pattern, Options: "i"}})
		}
		if len(or) > 0 {
			filter["$or"] = or
		}
	}
	return filter, nil
}

func operatorName(op store.Op) (string, error) {
	switch op {
	case store.OpEqual:
		return "$eq", nil
	case store.OpNotEqual:
		return "$ne", nil
	case store.OpGreaterThan:
		return "$gt", nil
	case store.OpGreaterThanOrEqual:
		return "$gte", nil
	case store.OpLessThan:
		return "$lt", nil
	case store.OpLessThanOrEqual:
		return "$lte", nil
	case store.OpIn:
		return "$in", nil
	case store.OpNotIn:
		return "$nin", nil
	case store.OpExists:
		return "$exists", nil
	default:
		return "", fmt.Errorf("unknown operator %d", op)
	}
}

func buildSort(sorts []store.SortField) bson.D {
	out := make(bson.D, 0, len(sorts))
	for _, s := range sorts {
		dir := 1
		if s.Descending {
			dir = -1
		}
		out = append(out, bson.E{Key: s.Field, Value: dir})
	}
	return out
}
