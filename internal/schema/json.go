package schema

import (
	"encoding/json"

	"github.com/elliotchance/orderedmap/v2"
)

type fieldSchemaJSON struct {
	Name           string        `json:"name"`
	Type           string        `json:"type"`
	ElementType    string        `json:"element_type,omitempty"`
	OccurrenceRate float64       `json:"occurrence_rate"`
	Nullable       bool          `json:"nullable"`
	SampleValues   []interface{} `json:"sample_values,omitempty"`
	DistinctCount  int           `json:"distinct_count,omitempty"`
}

type collectionSchemaJSON struct {
	Name          string            `json:"name"`
	PrimaryKey    string            `json:"primary_key"`
	DocumentCount int64             `json:"document_count"`
	SampleSize    int               `json:"sample_size"`
	Fields        []fieldSchemaJSON `json:"fields"`
}

// MarshalJSON serializes the field map as an array so discovery order
// survives the round trip.
func (s *CollectionSchema) MarshalJSON() ([]byte, error) {
	out := collectionSchemaJSON{
		Name:          s.Name,
		PrimaryKey:    s.PrimaryKey,
		DocumentCount: s.DocumentCount,
		SampleSize:    s.SampleSize,
		Fields:        make([]fieldSchemaJSON, 0, s.Fields.Len()),
	}
	for el := s.Fields.Front(); el != nil; el = el.Next() {
		f := el.Value
		fj := fieldSchemaJSON{
			Name:           f.Name,
			Type:           f.Type.String(),
			OccurrenceRate: f.OccurrenceRate,
			Nullable:       f.Nullable,
			SampleValues:   f.SampleValues,
			DistinctCount:  f.DistinctCount,
		}
		if f.Type == TypeArray {
			fj.ElementType = f.ElementType.String()
		}
		out.Fields = append(out.Fields, fj)
	}
	return json.Marshal(out)
}

// UnmarshalJSON rebuilds the ordered field map from the serialized array.
// Sample values come back as generic JSON values, which is acceptable for
// their display-hint role.
func (s *CollectionSchema) UnmarshalJSON(data []byte) error {
	var in collectionSchemaJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	s.Name = in.Name
	s.PrimaryKey = in.PrimaryKey
	if s.PrimaryKey == "" {
		s.PrimaryKey = DefaultPrimaryKey
	}
	s.DocumentCount = in.DocumentCount
	s.SampleSize = in.SampleSize
	s.Fields = orderedmap.NewOrderedMap[string, *FieldSchema]()
	for _, fj := range in.Fields {
		f := &FieldSchema{
			Name:           fj.Name,
			OccurrenceRate: fj.OccurrenceRate,
			Nullable:       fj.Nullable,
			SampleValues:   fj.SampleValues,
			DistinctCount:  fj.DistinctCount,
		}
		t, err := ParseFieldType(fj.Type)
		if err != nil {
			return err
		}
		f.Type = t
		if fj.ElementType != "" {
			et, err := ParseFieldType(fj.ElementType)
			if err != nil {
				return err
			}
			f.ElementType = et
		}
		s.Fields.Set(f.Name, f)
	}
	return nil
}
