package store

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"

	"github.com/sells-group/site-scout/internal/model"
)

const (
	dbfNameLen   = 10
	dbfStringMax = 254
)

type shpColumn struct {
	col   model.Column
	field shp.Field
	kind  model.Kind // metric kind; empty for non-metric columns
	idx   int        // metric index
}

// WriteShapefile writes the dataset as a point shapefile (.shp, .shx, .dbf)
// at path. Coordinates become the point geometry; every other column becomes
// a DBF attribute with its name shortened to the 10-character DBF limit.
func WriteShapefile(path string, ds *model.Dataset) error {
	cols := shapefileColumns(ds)

	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		return eris.Wrapf(err, "shapefile: create %s", path)
	}
	defer w.Close()

	fields := make([]shp.Field, len(cols))
	for i, c := range cols {
		fields[i] = c.field
	}
	if err := w.SetFields(fields); err != nil {
		return eris.Wrap(err, "shapefile: set fields")
	}

	for i := range ds.Records {
		r := &ds.Records[i]
		row := int(w.Write(&shp.Point{X: r.Longitude, Y: r.Latitude}))
		for j, c := range cols {
			if err := w.WriteAttribute(row, j, attributeValue(c, r)); err != nil {
				return eris.Wrapf(err, "shapefile: record %s field %s", r.ID, c.col.Name)
			}
		}
	}
	return nil
}

// ShapefileFieldNames returns the DBF attribute names used for a schema.
func ShapefileFieldNames(schema *model.Schema) []string {
	var out []string
	for _, c := range shapefileColumns(model.NewDataset(schema, 0)) {
		out = append(out, strings.TrimRight(c.field.String(), "\x00"))
	}
	return out
}

func shapefileColumns(ds *model.Dataset) []shpColumn {
	s := ds.Schema
	used := make(map[string]bool, len(s.Columns))
	var out []shpColumn
	for _, c := range s.Columns {
		if c.Field == model.FieldLatitude || c.Field == model.FieldLongitude {
			continue
		}
		name := dbfName(c.Name, used)
		sc := shpColumn{col: c}
		switch c.Field {
		case model.FieldMetric:
			spec, _ := s.Metric(c.Metric)
			sc.idx, _ = s.MetricIndex(c.Metric)
			sc.kind = spec.Kind
			switch spec.Kind {
			case model.KindInteger:
				sc.field = shp.NumberField(name, 18)
			case model.KindFlag:
				sc.field = shp.NumberField(name, 1)
			default:
				sc.field = shp.FloatField(name, 19, 6)
			}
		case model.FieldSeedScore, model.FieldScore:
			sc.field = shp.FloatField(name, 8, 2)
		default:
			sc.field = shp.StringField(name, stringWidth(ds, c))
		}
		out = append(out, sc)
	}
	return out
}

func attributeValue(c shpColumn, r *model.LocationRecord) interface{} {
	switch c.col.Field {
	case model.FieldMetric:
		v := r.Metrics[c.idx]
		if c.kind == model.KindInteger || c.kind == model.KindFlag {
			return int(math.Trunc(v))
		}
		return v
	case model.FieldSeedScore:
		return r.SeedScore
	case model.FieldScore:
		return r.Score
	default:
		return clip(encodeCell(nil, c.col, r), dbfStringMax)
	}
}

// dbfName upper-cases and truncates a column name to 10 bytes, adding a
// numeric suffix when the short name is already taken.
func dbfName(name string, used map[string]bool) string {
	base := clip(strings.ToUpper(name), dbfNameLen)
	out := base
	for n := 1; used[out]; n++ {
		suffix := fmt.Sprintf("%d", n)
		out = clip(base, dbfNameLen-len(suffix)) + suffix
	}
	used[out] = true
	return out
}

func stringWidth(ds *model.Dataset, c model.Column) uint8 {
	width := 1
	for i := range ds.Records {
		if n := len(encodeCell(nil, c, &ds.Records[i])); n > width {
			width = n
		}
	}
	return uint8(min(width, dbfStringMax))
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
