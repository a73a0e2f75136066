package generator

import (
	"math"
	"sort"

	"github.com/sells-group/site-scout/internal/anchor"
	"github.com/sells-group/site-scout/internal/geo"
	"github.com/sells-group/site-scout/internal/model"
)

// CityCount is the number of generated records for one city.
type CityCount struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

// Summary describes a generated dataset.
type Summary struct {
	Records      int            `json:"records"`
	Cities       []CityCount    `json:"cities"`
	MinLat       float64        `json:"min_lat"`
	MaxLat       float64        `json:"max_lat"`
	MinLng       float64        `json:"min_lng"`
	MaxLng       float64        `json:"max_lng"`
	MeanAnchorKM float64        `json:"mean_anchor_km"`
	MaxAnchorKM  float64        `json:"max_anchor_km"`
	Spread       map[string]int `json:"spread"`
	Grades       map[string]int `json:"grades"`
}

// Summarize computes per-city counts, the coordinate extent, and how far
// points landed from their anchors. Records whose city is not in anchors
// are counted but left out of the distance figures.
func Summarize(ds *model.Dataset, anchors anchor.Catalog) Summary {
	s := Summary{
		Records: ds.Len(),
		Spread:  make(map[string]int),
		Grades:  make(map[string]int),
		MinLat:  math.Inf(1),
		MaxLat:  math.Inf(-1),
		MinLng:  math.Inf(1),
		MaxLng:  math.Inf(-1),
	}
	if ds.Len() == 0 {
		s.MinLat, s.MaxLat, s.MinLng, s.MaxLng = 0, 0, 0, 0
		return s
	}

	byName := make(map[string]anchor.CityAnchor, len(anchors))
	for _, a := range anchors {
		byName[a.Name] = a
	}

	counts := make(map[string]int)
	var distSum float64
	var distN int
	for i := range ds.Records {
		r := &ds.Records[i]
		counts[r.City]++
		if r.Grade != "" {
			s.Grades[string(r.Grade)]++
		}
		s.MinLat = math.Min(s.MinLat, r.Latitude)
		s.MaxLat = math.Max(s.MaxLat, r.Latitude)
		s.MinLng = math.Min(s.MinLng, r.Longitude)
		s.MaxLng = math.Max(s.MaxLng, r.Longitude)

		a, ok := byName[r.City]
		if !ok {
			continue
		}
		d := geo.DistanceKM(a.Latitude, a.Longitude, r.Latitude, r.Longitude)
		distSum += d
		distN++
		s.MaxAnchorKM = math.Max(s.MaxAnchorKM, d)
		s.Spread[geo.Classify(d)]++
	}
	if distN > 0 {
		s.MeanAnchorKM = distSum / float64(distN)
	}

	for city, n := range counts {
		s.Cities = append(s.Cities, CityCount{City: city, Count: n})
	}
	sort.Slice(s.Cities, func(i, j int) bool {
		if s.Cities[i].Count != s.Cities[j].Count {
			return s.Cities[i].Count > s.Cities[j].Count
		}
		return s.Cities[i].City < s.Cities[j].City
	})
	return s
}
