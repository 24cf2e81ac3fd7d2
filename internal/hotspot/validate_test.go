package hotspot

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/accident"
	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/testutil"
)

func TestValidate_ExcludesNaNRows(t *testing.T) {
	ds := testutil.Dataset(
		testutil.Record(0, 19.07, 72.87, "Minor"),
		testutil.Record(1, math.NaN(), 72.90, "Fatal"),
		testutil.Record(2, 28.61, 77.20, "Major"),
		testutil.Record(3, math.NaN(), math.NaN(), "Minor"),
	)

	valid, rejected, err := Validate(ds)
	require.NoError(t, err)
	assert.Equal(t, 2, rejected)
	require.Len(t, valid, 2)
	assert.Equal(t, 0, valid[0].Index)
	assert.Equal(t, 2, valid[1].Index)
}

func TestValidate_RejectsWithoutClamping(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon *float64
		ok       bool
	}{
		{"in range", accident.Float64(45), accident.Float64(100), true},
		{"lat on bound", accident.Float64(90), accident.Float64(0), true},
		{"lon on bound", accident.Float64(0), accident.Float64(-180), true},
		{"lat too high", accident.Float64(90.0001), accident.Float64(0), false},
		{"lon too low", accident.Float64(0), accident.Float64(-180.5), false},
		{"missing lat", nil, accident.Float64(10), false},
		{"missing lon", accident.Float64(10), nil, false},
		{"inf lat", accident.Float64(math.Inf(1)), accident.Float64(10), false},
		{"neg inf lon", accident.Float64(10), accident.Float64(math.Inf(-1)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := accident.Dataset{
				Columns: []string{accident.ColumnLatitude, accident.ColumnLongitude},
				Records: []accident.Record{{Index: 0, Latitude: tt.lat, Longitude: tt.lon}},
			}
			valid, rejected, err := Validate(ds)
			require.NoError(t, err)
			if tt.ok {
				assert.Len(t, valid, 1)
				assert.Equal(t, 0, rejected)
				// values pass through unchanged
				assert.Equal(t, *tt.lat, *valid[0].Latitude)
			} else {
				assert.Empty(t, valid)
				assert.Equal(t, 1, rejected)
			}
		})
	}
}

func TestValidate_MissingField(t *testing.T) {
	ds := accident.Dataset{
		Columns: []string{accident.ColumnLatitude, accident.ColumnSeverity},
		Records: []accident.Record{{Latitude: accident.Float64(1)}},
	}
	_, _, err := Validate(ds)
	require.Error(t, err)

	var mf *MissingFieldError
	require.True(t, errors.As(err, &mf), "expected MissingFieldError, got %T", err)
	assert.Equal(t, accident.ColumnLongitude, mf.Field)
}

func TestValidate_EmptyDatasetWithSchema(t *testing.T) {
	valid, rejected, err := Validate(testutil.Dataset())
	require.NoError(t, err)
	assert.Empty(t, valid)
	assert.Zero(t, rejected)
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	ds := testutil.Dataset(
		testutil.Record(0, math.NaN(), 1, "Minor"),
		testutil.Record(1, 2, 2, "Major"),
	)
	before := len(ds.Records)
	_, _, err := Validate(ds)
	require.NoError(t, err)
	assert.Len(t, ds.Records, before)
	assert.True(t, math.IsNaN(*ds.Records[0].Latitude))
}
