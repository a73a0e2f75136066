// Package geo provides distance helpers and the spread classification of a
// location relative to the city anchor it was placed around.
package geo

// Spread classification constants.
const (
	ClassUrbanCore = "urban_core"
	ClassSuburban  = "suburban"
	ClassExurban   = "exurban"
	ClassRural     = "rural"
)

// Distance thresholds for classification (kilometers from the anchor center).
const (
	urbanCoreThreshold = 8.0
	suburbanThreshold  = 20.0
	exurbanThreshold   = 40.0
)

// Classify returns the spread class for a point at anchorKM from its anchor.
// Rules:
//   - urban_core: anchorKM <= 8
//   - suburban: 8 < anchorKM <= 20
//   - exurban: 20 < anchorKM <= 40
//   - rural: anchorKM > 40
func Classify(anchorKM float64) string {
	switch {
	case anchorKM <= urbanCoreThreshold:
		return ClassUrbanCore
	case anchorKM <= suburbanThreshold:
		return ClassSuburban
	case anchorKM <= exurbanThreshold:
		return ClassExurban
	default:
		return ClassRural
	}
}

// Classes lists the spread classes from nearest to farthest.
func Classes() []string {
	return []string{ClassUrbanCore, ClassSuburban, ClassExurban, ClassRural}
}
