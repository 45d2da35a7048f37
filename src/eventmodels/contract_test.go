package eventmodels

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_Contract_Constructors(t *testing.T) {
	expiration := time.Date(2024, 9, 20, 0, 0, 0, 0, time.UTC)

	t.Run("rejects an empty symbol", func(t *testing.T) {
		_, err := NewContract(1, "", AssetClassStock, 1)
		assert.Error(t, err)
	})

	t.Run("rejects a non positive multiplier", func(t *testing.T) {
		_, err := NewContract(1, "AAPL", AssetClassStock, 0)
		assert.Error(t, err)
	})

	t.Run("rejects a non positive strike", func(t *testing.T) {
		_, err := NewOptionContract(1, "ES", AssetClassFutureOption, Call, 0, expiration, 50, nil)
		assert.Error(t, err)
	})

	t.Run("rejects an option built on an underlying asset class", func(t *testing.T) {
		_, err := NewOptionContract(1, "ES", AssetClassFuture, Call, 5400, expiration, 50, nil)
		assert.Error(t, err)
	})
}

func Test_Contract_SetLastPrice(t *testing.T) {
	expiration := time.Date(2024, 9, 20, 0, 0, 0, 0, time.UTC)

	t.Run("a future rejects a non positive price", func(t *testing.T) {
		c, err := NewFutureContract(1, "ES", expiration, 50)
		assert.NoError(t, err)

		assert.Error(t, c.SetLastPrice(0))
		assert.NoError(t, c.SetLastPrice(5400))
		assert.Equal(t, 5400.0, c.LastPrice())
	})

	t.Run("an option accepts a zero price before its first quote", func(t *testing.T) {
		c, err := NewOptionContract(2, "ES", AssetClassFutureOption, Put, 5350, expiration, 50, nil)
		assert.NoError(t, err)

		assert.NoError(t, c.SetLastPrice(0))
	})
}

func Test_Contract_Expiry(t *testing.T) {
	now := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	expiration := now.Add(36 * time.Hour)

	c, err := NewOptionContract(1, "ES", AssetClassFutureOption, Call, 5400, expiration, 50, nil)
	assert.NoError(t, err)

	t.Run("days left is fractional", func(t *testing.T) {
		assert.InDelta(t, 1.5, c.DaysLeft(now), 1e-9)
	})

	t.Run("expires by an inclusive horizon", func(t *testing.T) {
		assert.True(t, c.ExpiresBy(expiration))
		assert.True(t, c.ExpiresBy(expiration.Add(time.Hour)))
		assert.False(t, c.ExpiresBy(expiration.Add(-time.Hour)))
	})

	t.Run("a stock has no expiry", func(t *testing.T) {
		stock, err := NewContract(2, "AAPL", AssetClassStock, 1)
		assert.NoError(t, err)

		assert.Equal(t, 0.0, stock.DaysLeft(now))
		assert.False(t, stock.ExpiresBy(now.AddDate(10, 0, 0)))
	})
}

func Test_Contract_IntrinsicValue(t *testing.T) {
	expiration := time.Date(2024, 9, 20, 0, 0, 0, 0, time.UTC)

	call, err := NewOptionContract(1, "ES", AssetClassFutureOption, Call, 5400, expiration, 50, nil)
	assert.NoError(t, err)

	put, err := NewOptionContract(2, "ES", AssetClassFutureOption, Put, 5400, expiration, 50, nil)
	assert.NoError(t, err)

	t.Run("call pays above the strike", func(t *testing.T) {
		assert.Equal(t, 100.0, call.IntrinsicValue(5500))
		assert.Equal(t, 0.0, call.IntrinsicValue(5400))
		assert.Equal(t, 0.0, call.IntrinsicValue(5300))
	})

	t.Run("put pays below the strike", func(t *testing.T) {
		assert.Equal(t, 100.0, put.IntrinsicValue(5300))
		assert.Equal(t, 0.0, put.IntrinsicValue(5400))
		assert.Equal(t, 0.0, put.IntrinsicValue(5500))
	})

	t.Run("an underlying is worth the spot itself", func(t *testing.T) {
		future, err := NewFutureContract(3, "ES", expiration, 50)
		assert.NoError(t, err)

		assert.Equal(t, 5432.0, future.IntrinsicValue(5432))
	})
}
