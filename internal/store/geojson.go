package store

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/site-scout/internal/model"
)

// FeatureCollection converts a dataset to GeoJSON point features. Properties
// are keyed by the schema's column names.
func FeatureCollection(ds *model.Dataset) *geojson.FeatureCollection {
	header, rows := Encode(ds)
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(rows))}
	bounds := geom.NewBounds(geom.XY)
	for i, row := range rows {
		r := &ds.Records[i]
		props := make(map[string]interface{}, len(header))
		for j, h := range header {
			switch ds.Schema.Columns[j].Field {
			case model.FieldLatitude, model.FieldLongitude:
				continue
			case model.FieldMetric:
				idx, _ := ds.Schema.MetricIndex(ds.Schema.Columns[j].Metric)
				props[h] = r.Metrics[idx]
			case model.FieldSeedScore:
				props[h] = r.SeedScore
			case model.FieldScore:
				props[h] = r.Score
			default:
				props[h] = row[j]
			}
		}
		pt := geom.NewPointFlat(geom.XY, []float64{r.Longitude, r.Latitude})
		bounds.Extend(pt)
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         r.ID,
			Geometry:   pt,
			Properties: props,
		})
	}
	if len(fc.Features) > 0 {
		fc.BBox = bounds
	}
	return fc
}

// WriteGeoJSON writes the dataset as a GeoJSON FeatureCollection.
func WriteGeoJSON(w io.Writer, ds *model.Dataset) error {
	data, err := json.Marshal(FeatureCollection(ds))
	if err != nil {
		return eris.Wrap(err, "geojson: marshal")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "geojson: write")
	}
	return nil
}
