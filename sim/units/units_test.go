package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitSystem_MetricPressureAndRate(t *testing.T) {
	us := NewMetric()
	assert.InDelta(t, 2.0e7, us.ToSI(Pressure, 200), 1e-6)
	assert.InDelta(t, 1000.0/86400.0, us.ToSI(LiquidSurfaceRate, 1000), 1e-12)
	assert.InDelta(t, 200, us.FromSI(Pressure, us.ToSI(Pressure, 200)), 1e-9)
}

func TestUnitSystem_FieldRates(t *testing.T) {
	us := NewField()
	// 1 stb/day in m3/s
	assert.InDelta(t, 0.158987294928/86400.0, us.ToSI(LiquidSurfaceRate, 1), 1e-15)
	// 1 Mscf/day in m3/s
	assert.InDelta(t, 28.316846592/86400.0, us.ToSI(GasSurfaceRate, 1), 1e-15)
	assert.InDelta(t, 0.3048, us.ToSI(Length, 1), 1e-15)
}

func TestParse(t *testing.T) {
	us, err := Parse("field")
	require.NoError(t, err)
	assert.Equal(t, Field, us.Kind())
	assert.Equal(t, int32(2), us.Kind().RestartCode())

	us, err = Parse("")
	require.NoError(t, err)
	assert.Equal(t, Metric, us.Kind())

	_, err = Parse("LAB")
	assert.Error(t, err)
}

func TestIdentityIsUnchanged(t *testing.T) {
	for _, us := range []UnitSystem{NewMetric(), NewField()} {
		assert.Equal(t, 3.25, us.ToSI(Identity, 3.25), us.String())
	}
}
