package accident

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordPoint(t *testing.T) {
	r := Record{Latitude: Float64(19.07), Longitude: Float64(72.87)}
	assert.Equal(t, Point{Lat: 19.07, Lon: 72.87}, r.Point())

	// missing coordinates read as zero
	assert.Equal(t, Point{Lon: 1}, Record{Longitude: Float64(1)}.Point())
}

func TestRecordString(t *testing.T) {
	r := Record{
		Index:     7,
		Latitude:  Float64(19.07),
		Severity:  SeverityFatal,
		TimeOfDay: Night,
		Weather:   Rainy,
	}
	assert.Equal(t, "#7 (19.07000, -) severity=Fatal time=Night weather=Rainy", r.String())
}

func TestDatasetHasColumn(t *testing.T) {
	ds := Dataset{Columns: []string{ColumnLatitude, ColumnSeverity}}
	assert.True(t, ds.HasColumn(ColumnLatitude))
	assert.False(t, ds.HasColumn(ColumnLongitude))
	assert.False(t, Dataset{}.HasColumn(ColumnLatitude))
}

func TestCenterPoint(t *testing.T) {
	c := Center{ID: 2, Latitude: 1.5, Longitude: -3}
	assert.Equal(t, Point{Lat: 1.5, Lon: -3}, c.Point())
}
