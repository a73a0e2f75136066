// Package model defines location records, datasets and the declared schema
// variants that map them to tabular files.
package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// Role decides the sign a metric contributes to the combined score.
type Role string

// Metric roles.
const (
	RoleBenefit   Role = "benefit"   // more is better
	RoleCost      Role = "cost"      // more is worse
	RoleAttribute Role = "attribute" // carried but never scored
)

// Sign returns +1 for benefit metrics, -1 for cost metrics and 0 otherwise.
func (r Role) Sign() float64 {
	switch r {
	case RoleBenefit:
		return 1
	case RoleCost:
		return -1
	default:
		return 0
	}
}

// Kind controls how a metric value is synthesized and formatted.
type Kind string

// Metric kinds.
const (
	KindInteger Kind = "integer"
	KindReal    Kind = "real"
	KindFlag    Kind = "flag"
)

// MetricSpec declares one numeric metric of a schema.
type MetricSpec struct {
	Key  string `json:"key" yaml:"key"`
	Role Role   `json:"role" yaml:"role"`
	Kind Kind   `json:"kind" yaml:"kind"`
}

// Scorable reports whether the metric participates in scoring.
func (m MetricSpec) Scorable() bool {
	return m.Role == RoleBenefit || m.Role == RoleCost
}

// Field identifies which record field a file column carries.
type Field string

// Column fields.
const (
	FieldID        Field = "id"
	FieldCity      Field = "city"
	FieldRegion    Field = "region"
	FieldAddress   Field = "address"
	FieldLatitude  Field = "latitude"
	FieldLongitude Field = "longitude"
	FieldMetric    Field = "metric"
	FieldConst     Field = "const"
	FieldSeedScore Field = "seed_score"
	FieldScore     Field = "ai_score"
	FieldGrade     Field = "grade"
	FieldVerdict   Field = "verdict"
)

// Column maps a byte-exact file header to a record field.
type Column struct {
	Name   string `json:"name"`
	Field  Field  `json:"field"`
	Metric string `json:"metric,omitempty"` // metric key when Field == FieldMetric
	Value  string `json:"value,omitempty"`  // constant when Field == FieldConst
}

// Schema is a declared dataset variant: its metrics and its column layout.
type Schema struct {
	Name    string       `json:"name"`
	Metrics []MetricSpec `json:"metrics"`
	Columns []Column     `json:"columns"`

	// CoordDecimals rounds coordinates on write; negative keeps full precision.
	CoordDecimals int `json:"coord_decimals"`
}

// Header returns the column names in file order.
func (s *Schema) Header() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// MetricIndex returns the position of a metric key within record metric slices.
func (s *Schema) MetricIndex(key string) (int, bool) {
	for i, m := range s.Metrics {
		if m.Key == key {
			return i, true
		}
	}
	return -1, false
}

// Metric returns the spec for a metric key.
func (s *Schema) Metric(key string) (MetricSpec, bool) {
	if i, ok := s.MetricIndex(key); ok {
		return s.Metrics[i], true
	}
	return MetricSpec{}, false
}

// MetricKeys returns every declared metric key in declaration order.
func (s *Schema) MetricKeys() []string {
	out := make([]string, len(s.Metrics))
	for i, m := range s.Metrics {
		out[i] = m.Key
	}
	return out
}

// ScorableKeys returns the keys of benefit and cost metrics in declaration order.
func (s *Schema) ScorableKeys() []string {
	var out []string
	for _, m := range s.Metrics {
		if m.Scorable() {
			out = append(out, m.Key)
		}
	}
	return out
}

// HasField reports whether any column carries the given field.
func (s *Schema) HasField(f Field) bool {
	for _, c := range s.Columns {
		if c.Field == f {
			return true
		}
	}
	return false
}

// Validate checks that the schema is internally consistent.
func (s *Schema) Validate() error {
	var errs []string

	if s.Name == "" {
		errs = append(errs, "name is required")
	}
	if len(s.Metrics) == 0 {
		errs = append(errs, "at least one metric is required")
	}

	metricSeen := make(map[string]bool, len(s.Metrics))
	for _, m := range s.Metrics {
		if m.Key == "" {
			errs = append(errs, "metric key is required")
			continue
		}
		if m.Key != strings.ToLower(m.Key) {
			errs = append(errs, fmt.Sprintf("metric key %q must be lowercase", m.Key))
		}
		if metricSeen[m.Key] {
			errs = append(errs, fmt.Sprintf("duplicate metric %q", m.Key))
		}
		metricSeen[m.Key] = true
		switch m.Role {
		case RoleBenefit, RoleCost, RoleAttribute:
		default:
			errs = append(errs, fmt.Sprintf("metric %q has unknown role %q", m.Key, m.Role))
		}
	}

	nameSeen := make(map[string]bool, len(s.Columns))
	mapped := make(map[string]bool, len(s.Metrics))
	for _, c := range s.Columns {
		if c.Name == "" {
			errs = append(errs, "column name is required")
		}
		if nameSeen[c.Name] {
			errs = append(errs, fmt.Sprintf("duplicate column %q", c.Name))
		}
		nameSeen[c.Name] = true
		if c.Field == FieldMetric {
			if !metricSeen[c.Metric] {
				errs = append(errs, fmt.Sprintf("column %q references unknown metric %q", c.Name, c.Metric))
			}
			mapped[c.Metric] = true
		}
	}
	for _, field := range []Field{FieldID, FieldLatitude, FieldLongitude} {
		if !s.HasField(field) {
			errs = append(errs, fmt.Sprintf("missing %s column", field))
		}
	}

	var unmapped []string
	for key := range metricSeen {
		if !mapped[key] {
			unmapped = append(unmapped, key)
		}
	}
	sort.Strings(unmapped)
	for _, key := range unmapped {
		errs = append(errs, fmt.Sprintf("metric %q has no column", key))
	}

	if len(errs) > 0 {
		return eris.Wrapf(ErrSchemaMismatch, "model: schema %s: %s", s.Name, strings.Join(errs, "; "))
	}
	return nil
}

// Built-in schema names.
const (
	SchemaGeneric = "generic"
	SchemaDensity = "density"
)

// GenericSchema is the income/traffic/rent/competitor variant.
func GenericSchema() *Schema {
	return &Schema{
		Name: SchemaGeneric,
		Metrics: []MetricSpec{
			{Key: "income", Role: RoleBenefit, Kind: KindInteger},
			{Key: "traffic", Role: RoleBenefit, Kind: KindInteger},
			{Key: "competitor", Role: RoleCost, Kind: KindInteger},
			{Key: "rent", Role: RoleCost, Kind: KindInteger},
		},
		Columns: []Column{
			{Name: "Location_ID", Field: FieldID},
			{Name: "City", Field: FieldCity},
			{Name: "Province", Field: FieldRegion},
			{Name: "Address", Field: FieldAddress},
			{Name: "Latitude", Field: FieldLatitude},
			{Name: "Longitude", Field: FieldLongitude},
			{Name: "Avg_Income", Field: FieldMetric, Metric: "income"},
			{Name: "Traffic_Daily", Field: FieldMetric, Metric: "traffic"},
			{Name: "Competitors", Field: FieldMetric, Metric: "competitor"},
			{Name: "Rent_Per_Year", Field: FieldMetric, Metric: "rent"},
			{Name: "AI_Score", Field: FieldScore},
			{Name: "Grade", Field: FieldGrade},
			{Name: "Verdict", Field: FieldVerdict},
		},
		CoordDecimals: 6,
	}
}

// DensitySchema is the population/income/mall/office/tourism/halal variant.
func DensitySchema() *Schema {
	return &Schema{
		Name: SchemaDensity,
		Metrics: []MetricSpec{
			{Key: "population", Role: RoleBenefit, Kind: KindInteger},
			{Key: "income", Role: RoleBenefit, Kind: KindInteger},
			{Key: "competitor", Role: RoleCost, Kind: KindInteger},
			{Key: "mall", Role: RoleBenefit, Kind: KindReal},
			{Key: "office", Role: RoleBenefit, Kind: KindReal},
			{Key: "tourism", Role: RoleBenefit, Kind: KindReal},
			{Key: "halal", Role: RoleAttribute, Kind: KindFlag},
		},
		Columns: []Column{
			{Name: "branch_id", Field: FieldID},
			{Name: "country", Field: FieldConst, Value: "Malaysia"},
			{Name: "state", Field: FieldRegion},
			{Name: "city", Field: FieldCity},
			{Name: "latitude", Field: FieldLatitude},
			{Name: "longitude", Field: FieldLongitude},
			{Name: "population_density", Field: FieldMetric, Metric: "population"},
			{Name: "median_income_myr", Field: FieldMetric, Metric: "income"},
			{Name: "competitor_count", Field: FieldMetric, Metric: "competitor"},
			{Name: "mall_density_index", Field: FieldMetric, Metric: "mall"},
			{Name: "office_density_index", Field: FieldMetric, Metric: "office"},
			{Name: "tourism_score", Field: FieldMetric, Metric: "tourism"},
			{Name: "halal_certified_area", Field: FieldMetric, Metric: "halal"},
			{Name: "location_score", Field: FieldSeedScore},
			{Name: "AI_Score", Field: FieldScore},
			{Name: "Verdict", Field: FieldVerdict},
		},
		CoordDecimals: -1,
	}
}

// LookupSchema returns a fresh copy of a built-in schema by name.
func LookupSchema(name string) (*Schema, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case SchemaGeneric, "":
		return GenericSchema(), nil
	case SchemaDensity:
		return DensitySchema(), nil
	default:
		return nil, eris.Wrapf(ErrSchemaMismatch, "model: unknown schema variant %q", name)
	}
}

// SchemaNames lists the built-in variants.
func SchemaNames() []string {
	return []string{SchemaGeneric, SchemaDensity}
}
