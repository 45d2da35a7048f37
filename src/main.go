package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/jiaming2012/delta-hedger/src/dbutils"
	"github.com/jiaming2012/delta-hedger/src/eventconsumers"
	"github.com/jiaming2012/delta-hedger/src/eventmodels"
	"github.com/jiaming2012/delta-hedger/src/eventpubsub"
	"github.com/jiaming2012/delta-hedger/src/eventservices"
	"github.com/jiaming2012/delta-hedger/src/handler"
	"github.com/jiaming2012/delta-hedger/src/utils"
)

const (
	reconcileInterval = 30 * time.Second
	hedgeInterval     = 20 * time.Second
	orderPollInterval = 5 * time.Second
)

func loadHedgeConfigs(path string) (*eventmodels.HedgeConfigsYAML, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loadHedgeConfigs: failed to read %s: %w", path, err)
	}

	var configs eventmodels.HedgeConfigsYAML
	if err := yaml.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("loadHedgeConfigs: failed to parse %s: %w", path, err)
	}

	return &configs, nil
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}

	if err := utils.InitEnvironmentVariables(); err != nil {
		log.Fatalf("failed to load environment variables: %v", err)
	}

	if level, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}

	accountID := os.Getenv("TRADIER_ACCOUNT_ID")
	if accountID == "" {
		log.Fatalf("missing TRADIER_ACCOUNT_ID environment variable")
	}

	tradesToken := os.Getenv("TRADIER_TRADES_BEARER_TOKEN")
	if tradesToken == "" {
		log.Fatalf("missing TRADIER_TRADES_BEARER_TOKEN environment variable")
	}

	quotesToken := os.Getenv("TRADIER_QUOTES_BEARER_TOKEN")
	if quotesToken == "" {
		log.Fatalf("missing TRADIER_QUOTES_BEARER_TOKEN environment variable")
	}

	brokerBaseURL := os.Getenv("TRADIER_BASE_URL")
	if brokerBaseURL == "" {
		log.Fatalf("missing TRADIER_BASE_URL environment variable")
	}

	configsPath := os.Getenv("HEDGE_CONFIGS_PATH")
	if configsPath == "" {
		configsPath = "hedge_configs.yaml"
	}

	configs, err := loadHedgeConfigs(configsPath)
	if err != nil {
		log.Fatalf("failed to load hedge configs: %v", err)
	}

	holidaysPath := os.Getenv("MARKET_HOLIDAYS_CSV")
	if holidaysPath == "" {
		holidaysPath = "market_holidays.csv"
	}

	holidays, err := eventservices.LoadHolidays(holidaysPath)
	if err != nil {
		log.Fatalf("failed to load market holidays: %v", err)
	}

	clock, err := eventservices.NewTradingClock("America/New_York")
	if err != nil {
		log.Fatalf("failed to create clock: %v", err)
	}

	now := clock.Now()
	marketCalendar, err := eventservices.BuildMarketCalendar(holidays, now, now.AddDate(1, 0, 0), "09:30", "16:00", now.Location())
	if err != nil {
		log.Fatalf("failed to build market calendar: %v", err)
	}

	// setup pubsub
	eventpubsub.Init()

	// setup database
	var db *gorm.DB
	if url := os.Getenv("POSTGRES_URL"); url != "" {
		db, err = dbutils.InitPostgresWithUrl(url)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}

		log.Info("hedge order audit trail enabled")
	} else {
		log.Warn("POSTGRES_URL not set, hedge orders will not be persisted")
	}

	// setup services
	expirationCalendar := eventservices.NewFuturesExpirationCalendar(holidays)
	pricer := eventservices.NewBlackScholesPricer()
	broker := eventservices.NewTradierBroker(
		fmt.Sprintf("%s/accounts/%s/orders", brokerBaseURL, accountID),
		fmt.Sprintf("%s/accounts/%s/positions", brokerBaseURL, accountID),
		quotesToken,
		tradesToken,
	)

	var priceFeed eventmodels.IPriceFeed
	if polygonKey := os.Getenv("POLYGON_API_KEY"); polygonKey != "" {
		priceFeed = eventservices.NewPolygonPriceFeed(polygonKey)
	} else {
		log.Warn("POLYGON_API_KEY not set, synthetic underlying marks will rely on option greeks feeds only")
	}

	// setup workers
	positions := eventmodels.NewPositionsCollection(expirationCalendar, pricer, clock)
	factory := eventconsumers.NewDeltaHedgerFactory(wg, accountID, positions, broker, clock, marketCalendar)
	account := eventconsumers.NewAccount(wg, accountID, positions, broker, factory, configs, priceFeed, hedgeInterval)
	orderMonitor := eventconsumers.NewOrderMonitoringWorker(wg, broker, clock, db)
	volSampler := eventconsumers.NewRealizedVolWorker(wg, positions)

	account.Start(ctx, reconcileInterval)
	orderMonitor.Start(ctx, orderPollInterval)
	volSampler.Start(ctx)

	// setup router
	router := mux.NewRouter()
	port := os.Getenv("PORT")
	if len(port) == 0 {
		port = "8080"
	}

	handler.SetupHandlers(router, positions)

	srv := &http.Server{
		Handler: router,
		Addr:    fmt.Sprintf(":%s", port),
	}

	go func() {
		log.Infof("listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil {
			if err.Error() != "http: Server closed" {
				log.Fatalf("http: failed to listen and serve: %v", err)
			}
		}
	}()

	// Create channel for shutdown signals.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	signal.Notify(stop, syscall.SIGTERM)

	<-stop
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("error shutting down server %s", err)
	} else {
		log.Println("Server gracefully stopped")
	}

	wg.Wait()
	log.Info("all workers stopped")
}
