package eventmodels

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_Position_UpdateGreeks(t *testing.T) {
	expiration := time.Date(2024, 7, 19, 0, 0, 0, 0, time.UTC)

	newOptionPosition := func(t *testing.T, optionType OptionType) *Position {
		contract, err := NewOptionContract(10, "ES", AssetClassFutureOption, optionType, 5400, expiration, 50, nil)
		assert.NoError(t, err)

		pos, err := NewPosition(contract, ExternalPosition{Qty: 1, MarkPrice: 40})
		assert.NoError(t, err)

		return pos
	}

	t.Run("accepts a call with positive delta", func(t *testing.T) {
		pos := newOptionPosition(t, Call)

		err := pos.UpdateGreeks(PositionGreeks{Delta: 0.35, Theta: -4})

		assert.NoError(t, err)
		g, ok := pos.Greeks()
		assert.True(t, ok)
		assert.Equal(t, 0.35, g.Delta)
	})

	t.Run("rejects a call with negative delta", func(t *testing.T) {
		pos := newOptionPosition(t, Call)

		err := pos.UpdateGreeks(PositionGreeks{Delta: -0.35})

		assert.Error(t, err)
		_, ok := pos.Greeks()
		assert.False(t, ok)
	})

	t.Run("rejects a put with positive delta", func(t *testing.T) {
		pos := newOptionPosition(t, Put)

		err := pos.UpdateGreeks(PositionGreeks{Delta: 0.35})

		assert.Error(t, err)
	})

	t.Run("a rejected update leaves prior greeks intact", func(t *testing.T) {
		pos := newOptionPosition(t, Call)

		assert.NoError(t, pos.UpdateGreeks(PositionGreeks{Delta: 0.4, Theta: -3}))
		assert.Error(t, pos.UpdateGreeks(PositionGreeks{Delta: -0.1}))

		g, ok := pos.Greeks()
		assert.True(t, ok)
		assert.Equal(t, 0.4, g.Delta)
		assert.Equal(t, -3.0, g.Theta)
	})
}

func Test_Position_UpdateFrom(t *testing.T) {
	expiration := time.Date(2024, 9, 20, 0, 0, 0, 0, time.UTC)

	t.Run("the size and mark triplet updates together", func(t *testing.T) {
		contract, err := NewFutureContract(1, "ES", expiration, 50)
		assert.NoError(t, err)

		pos, err := NewPosition(contract, ExternalPosition{Qty: -1, MarkPrice: 5400, MarkValue: -270000})
		assert.NoError(t, err)

		err = pos.UpdateFrom(ExternalPosition{Qty: -2, MarkPrice: 5410, MarkValue: -541000})

		assert.NoError(t, err)
		assert.Equal(t, -2.0, pos.Qty())
		assert.Equal(t, 5410.0, pos.MarkPrice())
		assert.Equal(t, -541000.0, pos.MarkValue())
		assert.Equal(t, 5410.0, pos.Contract.LastPrice())
	})

	t.Run("underlying positions carry a realized vol estimator", func(t *testing.T) {
		contract, err := NewFutureContract(1, "ES", expiration, 50)
		assert.NoError(t, err)

		pos, err := NewPosition(contract, ExternalPosition{Qty: 1, MarkPrice: 5400})
		assert.NoError(t, err)

		assert.NotNil(t, pos.RealizedVol)
	})

	t.Run("option positions carry no estimator", func(t *testing.T) {
		contract, err := NewOptionContract(2, "ES", AssetClassFutureOption, Put, 5350, expiration, 50, nil)
		assert.NoError(t, err)

		pos, err := NewPosition(contract, ExternalPosition{Qty: 1, MarkPrice: 40})
		assert.NoError(t, err)

		assert.Nil(t, pos.RealizedVol)
	})
}

func Test_Position_SetMarkPrice(t *testing.T) {
	expiration := time.Date(2024, 9, 20, 0, 0, 0, 0, time.UTC)

	t.Run("synthetic placeholder accepts a feed mark", func(t *testing.T) {
		pos, err := NewSyntheticUnderlying("ES", expiration, 50)
		assert.NoError(t, err)

		err = pos.SetMarkPrice(5400)

		assert.NoError(t, err)
		assert.Equal(t, 5400.0, pos.MarkPrice())
		assert.Equal(t, 0.0, pos.MarkValue())
	})

	t.Run("rejects a non positive mark for a future", func(t *testing.T) {
		pos, err := NewSyntheticUnderlying("ES", expiration, 50)
		assert.NoError(t, err)

		assert.Error(t, pos.SetMarkPrice(0))
		assert.Error(t, pos.SetMarkPrice(-1))
	})
}
