package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_RealizedVolatility(t *testing.T) {
	t.Run("no value until two samples", func(t *testing.T) {
		rv := NewRealizedVolatility(20, 5*time.Minute)

		_, ok := rv.Value()
		assert.False(t, ok)

		rv.AddSample(100)
		_, ok = rv.Value()
		assert.False(t, ok)

		rv.AddSample(101)
		_, ok = rv.Value()
		assert.True(t, ok)
	})

	t.Run("constant prices mean zero volatility", func(t *testing.T) {
		rv := NewRealizedVolatility(20, 5*time.Minute)

		for i := 0; i < 20; i++ {
			rv.AddSample(100)
		}

		v, ok := rv.Value()
		assert.True(t, ok)
		assert.Equal(t, 0.0, v)
	})

	t.Run("larger swings mean larger volatility", func(t *testing.T) {
		calm := NewRealizedVolatility(20, 5*time.Minute)
		wild := NewRealizedVolatility(20, 5*time.Minute)

		prices := []float64{100, 100.1, 100, 100.1, 100, 100.1}
		for _, p := range prices {
			calm.AddSample(p)
		}

		prices = []float64{100, 102, 99, 103, 98, 104}
		for _, p := range prices {
			wild.AddSample(p)
		}

		calmVol, ok := calm.Value()
		assert.True(t, ok)

		wildVol, ok := wild.Value()
		assert.True(t, ok)

		assert.Greater(t, wildVol, calmVol)
	})

	t.Run("window evicts the oldest sample", func(t *testing.T) {
		rv := NewRealizedVolatility(3, 5*time.Minute)

		for _, p := range []float64{100, 200, 100, 100} {
			rv.AddSample(p)
		}

		assert.Equal(t, 3, rv.Len())
	})

	t.Run("non positive prices are ignored", func(t *testing.T) {
		rv := NewRealizedVolatility(3, 5*time.Minute)

		rv.AddSample(0)
		rv.AddSample(-5)

		assert.Equal(t, 0, rv.Len())
	})
}
