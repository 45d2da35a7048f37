package eventservices

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_FuturesExpirationCalendar_GetFrontMonthExpiration(t *testing.T) {
	t.Run("nearest quarterly third friday", func(t *testing.T) {
		calendar := NewFuturesExpirationCalendar(nil)
		asOf := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

		expiration, err := calendar.GetFrontMonthExpiration("ES", asOf)

		assert.NoError(t, err)
		assert.Equal(t, time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC), expiration)
	})

	t.Run("expiration day itself rolls to the next quarter", func(t *testing.T) {
		calendar := NewFuturesExpirationCalendar(nil)
		asOf := time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)

		expiration, err := calendar.GetFrontMonthExpiration("ES", asOf)

		assert.NoError(t, err)
		assert.Equal(t, time.Date(2024, 9, 20, 0, 0, 0, 0, time.UTC), expiration)
	})

	t.Run("crosses the year boundary after december expiry", func(t *testing.T) {
		calendar := NewFuturesExpirationCalendar(nil)
		asOf := time.Date(2024, 12, 26, 0, 0, 0, 0, time.UTC)

		expiration, err := calendar.GetFrontMonthExpiration("ES", asOf)

		assert.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 21, 0, 0, 0, 0, time.UTC), expiration)
	})

	t.Run("holiday on the third friday rolls back a day", func(t *testing.T) {
		calendar := NewFuturesExpirationCalendar([]HolidayDTO{
			{Date: "2024-06-21", Name: "Exchange Holiday"},
		})
		asOf := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

		expiration, err := calendar.GetFrontMonthExpiration("ES", asOf)

		assert.NoError(t, err)
		assert.Equal(t, time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC), expiration)
	})

	t.Run("rejects an empty symbol", func(t *testing.T) {
		calendar := NewFuturesExpirationCalendar(nil)

		_, err := calendar.GetFrontMonthExpiration("", time.Now())

		assert.Error(t, err)
	})
}

func Test_BuildMarketCalendar(t *testing.T) {
	from := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC) // Monday
	to := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)   // Sunday

	holidays := []HolidayDTO{
		{Date: "2024-06-05", Name: "Midweek Holiday"},
	}

	calendar, err := BuildMarketCalendar(holidays, from, to, "09:30", "16:00", time.UTC)
	assert.NoError(t, err)

	t.Run("open during session hours", func(t *testing.T) {
		assert.True(t, calendar.IsMarketOpen(time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)))
		assert.True(t, calendar.IsMarketOpen(time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)))
	})

	t.Run("closed outside session hours", func(t *testing.T) {
		assert.False(t, calendar.IsMarketOpen(time.Date(2024, 6, 3, 9, 29, 0, 0, time.UTC)))
		assert.False(t, calendar.IsMarketOpen(time.Date(2024, 6, 3, 16, 0, 0, 0, time.UTC)))
	})

	t.Run("closed on weekends", func(t *testing.T) {
		assert.False(t, calendar.IsMarketOpen(time.Date(2024, 6, 8, 10, 0, 0, 0, time.UTC)))
	})

	t.Run("closed on holidays", func(t *testing.T) {
		assert.False(t, calendar.IsMarketOpen(time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC)))
	})

	t.Run("rejects an unparsable session time", func(t *testing.T) {
		_, err := BuildMarketCalendar(nil, from, to, "9am", "16:00", time.UTC)

		assert.Error(t, err)
	})
}
