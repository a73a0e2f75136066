package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		anchorKM float64
		expected string
	}{
		{"urban_core: at anchor", 0.0, ClassUrbanCore},
		{"urban_core: close to anchor", 5.0, ClassUrbanCore},
		{"urban_core: at threshold", 8.0, ClassUrbanCore},
		{"suburban: barely past threshold", 8.1, ClassSuburban},
		{"suburban: at threshold", 20.0, ClassSuburban},
		{"exurban: mid ring", 30.0, ClassExurban},
		{"exurban: at threshold", 40.0, ClassExurban},
		{"rural: barely past threshold", 40.1, ClassRural},
		{"rural: far away", 200.0, ClassRural},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.anchorKM))
		})
	}
}

func TestClassesOrder(t *testing.T) {
	assert.Equal(t, []string{ClassUrbanCore, ClassSuburban, ClassExurban, ClassRural}, Classes())
}
