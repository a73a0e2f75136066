package store

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/site-scout/internal/model"
)

// optional lists column fields a file may omit. Everything else the schema
// declares must be present on read.
var optional = map[model.Field]bool{
	model.FieldAddress:   true,
	model.FieldConst:     true,
	model.FieldSeedScore: true,
	model.FieldScore:     true,
	model.FieldGrade:     true,
	model.FieldVerdict:   true,
}

// Encode renders a dataset as a header plus string rows in schema column order.
func Encode(ds *model.Dataset) ([]string, [][]string) {
	s := ds.Schema
	rows := make([][]string, 0, ds.Len())
	for i := range ds.Records {
		r := &ds.Records[i]
		row := make([]string, len(s.Columns))
		for j, c := range s.Columns {
			row[j] = encodeCell(s, c, r)
		}
		rows = append(rows, row)
	}
	return s.Header(), rows
}

func encodeCell(s *model.Schema, c model.Column, r *model.LocationRecord) string {
	switch c.Field {
	case model.FieldID:
		return r.ID
	case model.FieldCity:
		return r.City
	case model.FieldRegion:
		return r.Region
	case model.FieldAddress:
		return r.Address
	case model.FieldLatitude:
		return formatCoord(r.Latitude, s.CoordDecimals)
	case model.FieldLongitude:
		return formatCoord(r.Longitude, s.CoordDecimals)
	case model.FieldMetric:
		spec, _ := s.Metric(c.Metric)
		idx, _ := s.MetricIndex(c.Metric)
		return formatMetric(r.Metrics[idx], spec.Kind)
	case model.FieldConst:
		return c.Value
	case model.FieldSeedScore:
		return strconv.FormatFloat(r.SeedScore, 'f', -1, 64)
	case model.FieldScore:
		return strconv.FormatFloat(r.Score, 'f', -1, 64)
	case model.FieldGrade:
		return string(r.Grade)
	case model.FieldVerdict:
		return string(r.Verdict)
	default:
		return ""
	}
}

func formatCoord(v float64, decimals int) string {
	if decimals < 0 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	p := math.Pow(10, float64(decimals))
	return strconv.FormatFloat(math.Round(v*p)/p, 'f', -1, 64)
}

func formatMetric(v float64, kind model.Kind) string {
	switch kind {
	case model.KindInteger:
		return strconv.FormatFloat(math.Trunc(v), 'f', 0, 64)
	case model.KindFlag:
		if v != 0 {
			return "1"
		}
		return "0"
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}

// Decode builds a dataset from a header and string rows. Headers match
// schema column names exactly; unknown columns are ignored. Missing required
// columns, unparsable numbers and short rows fail with ErrSchemaMismatch.
func Decode(schema *model.Schema, header []string, rows [][]string) (*model.Dataset, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	var missing []string
	for _, c := range schema.Columns {
		if _, ok := pos[c.Name]; !ok && !optional[c.Field] {
			missing = append(missing, c.Name)
		}
	}
	if len(missing) > 0 {
		return nil, eris.Wrapf(model.ErrSchemaMismatch, "store: %s file is missing columns: %s",
			schema.Name, strings.Join(missing, ", "))
	}

	ds := model.NewDataset(schema, len(rows))
	for n, row := range rows {
		if isBlank(row) {
			continue
		}
		rec := model.LocationRecord{Metrics: make([]float64, len(schema.Metrics))}
		for _, c := range schema.Columns {
			i, ok := pos[c.Name]
			if !ok {
				continue
			}
			if i >= len(row) {
				return nil, eris.Wrapf(model.ErrSchemaMismatch, "store: row %d has %d fields, column %s needs %d",
					n+2, len(row), c.Name, i+1)
			}
			if err := decodeCell(schema, c, strings.TrimSpace(row[i]), &rec); err != nil {
				return nil, eris.Wrapf(model.ErrSchemaMismatch, "store: row %d column %s: %v", n+2, c.Name, err)
			}
		}
		ds.Records = append(ds.Records, rec)
	}

	if err := ds.Validate(); err != nil {
		return nil, eris.Wrap(err, "store: decode")
	}
	return ds, nil
}

func decodeCell(s *model.Schema, c model.Column, v string, r *model.LocationRecord) error {
	var err error
	switch c.Field {
	case model.FieldID:
		r.ID = v
	case model.FieldCity:
		r.City = v
	case model.FieldRegion:
		r.Region = v
	case model.FieldAddress:
		r.Address = v
	case model.FieldLatitude:
		r.Latitude, err = parseRequired(v)
	case model.FieldLongitude:
		r.Longitude, err = parseRequired(v)
	case model.FieldMetric:
		idx, _ := s.MetricIndex(c.Metric)
		spec, _ := s.Metric(c.Metric)
		r.Metrics[idx], err = parseMetric(v, spec.Kind)
	case model.FieldSeedScore:
		r.SeedScore, err = parseOptional(v)
	case model.FieldScore:
		r.Score, err = parseOptional(v)
	case model.FieldGrade:
		r.Grade = model.ParseGrade(v)
		if v != "" && r.Grade == "" {
			err = fmt.Errorf("unknown grade %q", v)
		}
	case model.FieldVerdict:
		// Verdicts are recomputed on scoring, so an unknown label is dropped.
		r.Verdict = model.ParseVerdict(v)
		if v != "" && r.Verdict == "" {
			zap.L().Warn("store: unknown verdict cleared",
				zap.String("id", r.ID), zap.String("verdict", v))
		}
	}
	return err
}

func parseRequired(v string) (float64, error) {
	if v == "" {
		return 0, fmt.Errorf("value is empty")
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not finite: %q", v)
	}
	return f, nil
}

func parseOptional(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	return parseRequired(v)
}

func parseMetric(v string, kind model.Kind) (float64, error) {
	if kind == model.KindFlag {
		switch strings.ToLower(v) {
		case "1", "true", "yes":
			return 1, nil
		case "0", "false", "no":
			return 0, nil
		}
		return 0, fmt.Errorf("not a flag: %q", v)
	}
	return parseRequired(v)
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
