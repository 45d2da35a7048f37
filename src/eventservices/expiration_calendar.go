package eventservices

import (
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/delta-hedger/src/eventmodels"
)

type HolidayDTO struct {
	Date string `csv:"date"`
	Name string `csv:"name"`
}

// FuturesExpirationCalendar resolves front-month expirations on the
// quarterly cycle (Mar/Jun/Sep/Dec, third Friday), rolled back past holidays.
// Constructed explicitly and injected; no package-level tables.
type FuturesExpirationCalendar struct {
	holidays map[string]struct{}
}

func (c *FuturesExpirationCalendar) isHoliday(t time.Time) bool {
	_, ok := c.holidays[t.Format("2006-01-02")]

	return ok
}

func thirdFriday(year int, month time.Month, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)

	daysUntilFriday := (int(time.Friday) - int(first.Weekday()) + 7) % 7
	firstFriday := first.AddDate(0, 0, daysUntilFriday)

	return firstFriday.AddDate(0, 0, 14)
}

// GetFrontMonthExpiration returns the nearest quarterly expiration strictly
// after asOf.
func (c *FuturesExpirationCalendar) GetFrontMonthExpiration(symbol eventmodels.StockSymbol, asOf time.Time) (time.Time, error) {
	if err := symbol.Validate(); err != nil {
		return time.Time{}, fmt.Errorf("FuturesExpirationCalendar.GetFrontMonthExpiration: %w", err)
	}

	year := asOf.Year()

	for i := 0; i < 8; i++ {
		quarter := time.Month(3 * (i%4 + 1)) // March, June, September, December
		expYear := year + i/4

		expiration := thirdFriday(expYear, quarter, asOf.Location())

		for c.isHoliday(expiration) || expiration.Weekday() == time.Saturday || expiration.Weekday() == time.Sunday {
			expiration = expiration.AddDate(0, 0, -1)
		}

		if expiration.After(asOf) {
			return expiration, nil
		}
	}

	return time.Time{}, fmt.Errorf("FuturesExpirationCalendar.GetFrontMonthExpiration: no expiration found after %s", asOf.Format("2006-01-02"))
}

func NewFuturesExpirationCalendar(holidays []HolidayDTO) *FuturesExpirationCalendar {
	calendar := &FuturesExpirationCalendar{
		holidays: make(map[string]struct{}, len(holidays)),
	}

	for _, h := range holidays {
		calendar.holidays[h.Date] = struct{}{}
	}

	return calendar
}

// LoadHolidays reads an exchange holiday CSV with `date,name` columns.
func LoadHolidays(path string) ([]HolidayDTO, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadHolidays: failed to open %s: %w", path, err)
	}

	defer f.Close()

	var holidays []HolidayDTO
	if err := gocsv.UnmarshalFile(f, &holidays); err != nil {
		return nil, fmt.Errorf("LoadHolidays: failed to parse %s: %w", path, err)
	}

	log.Infof("loaded %d exchange holidays from %s", len(holidays), path)

	return holidays, nil
}
