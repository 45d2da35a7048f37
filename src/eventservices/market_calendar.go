package eventservices

import (
	"fmt"
	"time"

	"github.com/jiaming2012/delta-hedger/src/eventmodels"
)

// BuildMarketCalendar generates session windows for every trading day in
// [from, to]: weekdays minus holidays, with the configured open/close times
// in the clock's timezone.
func BuildMarketCalendar(holidays []HolidayDTO, from, to time.Time, openTime, closeTime string, loc *time.Location) (eventmodels.MarketCalendar, error) {
	open, err := time.Parse("15:04", openTime)
	if err != nil {
		return nil, fmt.Errorf("BuildMarketCalendar: failed to parse open time: %w", err)
	}

	closed, err := time.Parse("15:04", closeTime)
	if err != nil {
		return nil, fmt.Errorf("BuildMarketCalendar: failed to parse close time: %w", err)
	}

	holidaySet := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		holidaySet[h.Date] = struct{}{}
	}

	calendar := make(eventmodels.MarketCalendar)

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}

		date := day.Format("2006-01-02")
		if _, ok := holidaySet[date]; ok {
			continue
		}

		calendar[date] = &eventmodels.Calendar{
			Date:        date,
			MarketOpen:  time.Date(day.Year(), day.Month(), day.Day(), open.Hour(), open.Minute(), 0, 0, loc),
			MarketClose: time.Date(day.Year(), day.Month(), day.Day(), closed.Hour(), closed.Minute(), 0, 0, loc),
		}
	}

	return calendar, nil
}
