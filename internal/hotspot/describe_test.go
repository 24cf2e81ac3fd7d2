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

func TestDescribe(t *testing.T) {
	ds := testutil.Dataset(
		testutil.Record(0, 18.5, 72.8, "Minor"),
		testutil.Record(1, 20.5, 74.8, "Fatal"),
		testutil.Record(2, math.NaN(), 70, "Fatal"),
		testutil.Record(3, 22.0, 76.0, ""),
	)
	ds.Records[0].TimeOfDay = accident.Morning
	ds.Records[2].Weather = accident.Foggy

	st, err := Describe(ds)
	require.NoError(t, err)

	assert.Equal(t, 4, st.Total)
	assert.Equal(t, 3, st.Valid)
	assert.Equal(t, 1, st.Rejected)

	// rejected rows still count toward category breakdowns
	assert.Equal(t, 2, st.Severity[accident.SeverityFatal])
	assert.Equal(t, 1, st.Severity[accident.SeverityUnknown])
	assert.Equal(t, 1, st.TimeOfDay[accident.Morning])
	assert.Equal(t, 1, st.Weather[accident.Foggy])

	require.NotNil(t, st.MeanLatitude)
	require.NotNil(t, st.MeanLongitude)
	assert.InDelta(t, (18.5+20.5+22.0)/3, *st.MeanLatitude, 1e-9)
	assert.InDelta(t, (72.8+74.8+76.0)/3, *st.MeanLongitude, 1e-9)
}

func TestDescribe_NoValidPoints(t *testing.T) {
	st, err := Describe(testutil.Dataset(testutil.Record(0, math.NaN(), math.NaN(), "Major")))
	require.NoError(t, err)
	assert.Nil(t, st.MeanLatitude)
	assert.Nil(t, st.MeanLongitude)
	assert.Equal(t, 1, st.Rejected)
}

func TestDescribe_MissingField(t *testing.T) {
	_, err := Describe(accident.Dataset{Columns: []string{accident.ColumnSeverity}})
	var mf *MissingFieldError
	assert.True(t, errors.As(err, &mf))
}
