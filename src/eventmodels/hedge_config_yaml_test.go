package eventmodels

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func Test_HedgeConfigsYAML_GetConfig(t *testing.T) {
	raw := `
hedges:
  - symbol: ES
    deltaThreshold: 1
    minAdjustment: 1
    initialImpliedVol: 0.25
    blackoutStart: "09:30"
    blackoutEnd: "09:45"
  - symbol: NQ
    deltaThreshold: 2
    minAdjustment: 1
    dryRun: true
`

	var configs HedgeConfigsYAML
	assert.NoError(t, yaml.Unmarshal([]byte(raw), &configs))

	t.Run("lookup is case insensitive", func(t *testing.T) {
		config, err := configs.GetConfig("es")
		assert.NoError(t, err)
		assert.Equal(t, "ES", config.Symbol)
	})

	t.Run("unknown symbol returns an error", func(t *testing.T) {
		_, err := configs.GetConfig("CL")
		assert.Error(t, err)
	})

	t.Run("parsed fields survive the yaml round trip", func(t *testing.T) {
		config, err := configs.GetConfig("NQ")
		assert.NoError(t, err)
		assert.Equal(t, 2.0, config.DeltaThreshold)
		assert.True(t, config.DryRun)
	})
}

func Test_HedgeConfigYAML_ToModel(t *testing.T) {
	t.Run("builds a validated model", func(t *testing.T) {
		yml := &HedgeConfigYAML{
			Symbol:         "ES",
			DeltaThreshold: 1,
			MinAdjustment:  1,
			BlackoutStart:  "09:30",
			BlackoutEnd:    "09:45",
		}

		config, err := yml.ToModel()

		assert.NoError(t, err)
		assert.Equal(t, StockSymbol("ES"), config.Symbol)
		assert.NotNil(t, config.BlackoutStart)
		assert.NotNil(t, config.BlackoutEnd)
	})

	t.Run("rejects a negative threshold", func(t *testing.T) {
		yml := &HedgeConfigYAML{Symbol: "ES", DeltaThreshold: -1}

		_, err := yml.ToModel()

		assert.Error(t, err)
	})

	t.Run("rejects a half open blackout window", func(t *testing.T) {
		yml := &HedgeConfigYAML{Symbol: "ES", BlackoutStart: "09:30"}

		_, err := yml.ToModel()

		assert.Error(t, err)
	})

	t.Run("rejects an unparsable blackout time", func(t *testing.T) {
		yml := &HedgeConfigYAML{Symbol: "ES", BlackoutStart: "9:30am", BlackoutEnd: "10:00"}

		_, err := yml.ToModel()

		assert.Error(t, err)
	})
}

func Test_HedgeConfig_InBlackout(t *testing.T) {
	newConfig := func(t *testing.T, start, end string) *HedgeConfig {
		yml := &HedgeConfigYAML{
			Symbol:        "ES",
			BlackoutStart: start,
			BlackoutEnd:   end,
		}

		config, err := yml.ToModel()
		assert.NoError(t, err)

		return config
	}

	at := func(hour, minute int) time.Time {
		return time.Date(2024, 6, 3, hour, minute, 0, 0, time.UTC)
	}

	t.Run("start is inclusive and end exclusive", func(t *testing.T) {
		config := newConfig(t, "09:30", "09:45")

		assert.False(t, config.InBlackout(at(9, 29)))
		assert.True(t, config.InBlackout(at(9, 30)))
		assert.True(t, config.InBlackout(at(9, 44)))
		assert.False(t, config.InBlackout(at(9, 45)))
	})

	t.Run("no window configured never blacks out", func(t *testing.T) {
		config := newConfig(t, "", "")

		assert.False(t, config.InBlackout(at(9, 30)))
	})

	t.Run("a window wrapping midnight never matches", func(t *testing.T) {
		config := newConfig(t, "23:30", "00:15")

		assert.False(t, config.InBlackout(at(23, 45)))
		assert.False(t, config.InBlackout(at(0, 5)))
	})
}
