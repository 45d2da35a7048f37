package eventservices

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/delta-hedger/src/eventmodels"
)

// PolygonPriceFeed serves spot quotes for underlying symbols. Synthetic
// placeholder positions never appear in broker snapshots, so their marks come
// from here.
type PolygonPriceFeed struct {
	Client *polygon.Client
}

func (f *PolygonPriceFeed) FetchSpot(ctx context.Context, symbol eventmodels.StockSymbol) (float64, error) {
	now := time.Now()

	params := models.ListAggsParams{
		Ticker:     symbol.String(),
		Multiplier: 1,
		Timespan:   models.Minute,
		From:       models.Millis(now.Add(-24 * time.Hour)),
		To:         models.Millis(now),
	}.WithOrder(models.Desc).WithAdjusted(true).WithLimit(1)

	iter := f.Client.ListAggs(ctx, params)

	for iter.Next() {
		bar := iter.Item()
		log.Debugf("PolygonPriceFeed.FetchSpot: %s last close %v", symbol, bar.Close)
		return bar.Close, nil
	}

	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("PolygonPriceFeed.FetchSpot: %s: %w", symbol, err)
	}

	return 0, fmt.Errorf("PolygonPriceFeed.FetchSpot: %s: no bars returned", symbol)
}

func NewPolygonPriceFeed(apiKey string) *PolygonPriceFeed {
	return &PolygonPriceFeed{
		Client: polygon.New(apiKey),
	}
}
