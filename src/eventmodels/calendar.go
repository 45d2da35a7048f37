package eventmodels

import "time"

// Calendar is one trading day's session window in the exchange timezone.
type Calendar struct {
	Date        string
	MarketOpen  time.Time
	MarketClose time.Time
}

func (c *Calendar) IsBetweenMarketHours(t time.Time) bool {
	return (t.Equal(c.MarketOpen) || t.After(c.MarketOpen)) && t.Before(c.MarketClose)
}

// MarketCalendar maps "2006-01-02" dates to session windows. Dates absent
// from the map are closed (weekends, holidays).
type MarketCalendar map[string]*Calendar

func (m MarketCalendar) IsMarketOpen(t time.Time) bool {
	day, ok := m[t.Format("2006-01-02")]
	if !ok {
		return false
	}

	return day.IsBetweenMarketHours(t)
}
