package dataset

import (
	"github.com/geospatial-ml/spatcv/pkg/errors"
)

// FeatureSchema is the ordered, named covariate layout shared by training
// and prediction. Feature order is resolved by name against this schema,
// never by incidental column position.
type FeatureSchema struct {
	names []string
	index map[string]int
}

// NewFeatureSchema creates a schema from an ordered list of feature names.
// Names must be unique and non-empty.
func NewFeatureSchema(names []string) (*FeatureSchema, error) {
	if len(names) == 0 {
		return nil, errors.NewInvalidConfigurationError("features", "schema requires at least one feature", names)
	}

	index := make(map[string]int, len(names))
	for i, name := range names {
		if name == "" {
			return nil, errors.NewInvalidConfigurationError("features", "feature name must not be empty", i)
		}
		if _, dup := index[name]; dup {
			return nil, errors.NewInvalidConfigurationError("features", "duplicate feature name", name)
		}
		index[name] = i
	}

	return &FeatureSchema{
		names: append([]string(nil), names...),
		index: index,
	}, nil
}

// Len returns the number of features.
func (s *FeatureSchema) Len() int {
	return len(s.names)
}

// Names returns the feature names in schema order.
func (s *FeatureSchema) Names() []string {
	return append([]string(nil), s.names...)
}

// Name returns the feature name at position i.
func (s *FeatureSchema) Name(i int) string {
	return s.names[i]
}

// Index returns the position of a named feature.
func (s *FeatureSchema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Equal reports whether two schemas carry the same features in the same
// order.
func (s *FeatureSchema) Equal(other *FeatureSchema) bool {
	if other == nil || len(s.names) != len(other.names) {
		return false
	}
	for i, name := range s.names {
		if other.names[i] != name {
			return false
		}
	}
	return true
}
