package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jiaming2012/delta-hedger/src/eventmodels"
	"github.com/jiaming2012/delta-hedger/src/handler"
)

type RunArgs struct {
	Host           string
	Symbol         string
	LookaheadDays  float64
	MinPrice       float64
	MidPrice       float64
	MaxPrice       float64
	PriceIncrement float64
}

type RunResult struct {
	Positions []handler.PositionDTO
	Greeks    *eventmodels.Greeks
	Curve     *eventmodels.RiskCurve
}

var runCmd = &cobra.Command{
	Use:   "go run src/cmd/risk_report/main.go --symbol ES --min 5300 --mid 5400 --max 5500 --increment 10",
	Short: "Render the book, aggregate greeks and the projected risk curve for one underlying",
	Run: func(cmd *cobra.Command, args []string) {
		host, err := cmd.Flags().GetString("host")
		if err != nil {
			log.Fatalf("error getting host: %v", err)
		}

		symbol, err := cmd.Flags().GetString("symbol")
		if err != nil {
			log.Fatalf("error getting symbol: %v", err)
		}

		lookaheadDays, err := cmd.Flags().GetFloat64("lookahead-days")
		if err != nil {
			log.Fatalf("error getting lookahead-days: %v", err)
		}

		minPrice, err := cmd.Flags().GetFloat64("min")
		if err != nil {
			log.Fatalf("error getting min: %v", err)
		}

		midPrice, err := cmd.Flags().GetFloat64("mid")
		if err != nil {
			log.Fatalf("error getting mid: %v", err)
		}

		maxPrice, err := cmd.Flags().GetFloat64("max")
		if err != nil {
			log.Fatalf("error getting max: %v", err)
		}

		increment, err := cmd.Flags().GetFloat64("increment")
		if err != nil {
			log.Fatalf("error getting increment: %v", err)
		}

		result, err := Run(RunArgs{
			Host:           host,
			Symbol:         symbol,
			LookaheadDays:  lookaheadDays,
			MinPrice:       minPrice,
			MidPrice:       midPrice,
			MaxPrice:       maxPrice,
			PriceIncrement: increment,
		})
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		render(result)
	},
}

func fetchJSON(client *http.Client, url string, out interface{}) error {
	res, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("fetchJSON: failed to fetch %s: %w", url, err)
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("fetchJSON: %s returned %s", url, res.Status)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("fetchJSON: failed to decode %s: %w", url, err)
	}

	return nil
}

func Run(args RunArgs) (RunResult, error) {
	client := &http.Client{
		Timeout: 10 * time.Second,
	}

	var positionsResp handler.GetPositionsResponse
	if err := fetchJSON(client, fmt.Sprintf("%s/positions", args.Host), &positionsResp); err != nil {
		return RunResult{}, err
	}

	var greeks eventmodels.Greeks
	if err := fetchJSON(client, fmt.Sprintf("%s/greeks", args.Host), &greeks); err != nil {
		return RunResult{}, err
	}

	params := url.Values{}
	params.Add("symbol", args.Symbol)
	params.Add("lookahead_days", fmt.Sprintf("%f", args.LookaheadDays))
	params.Add("min_price", fmt.Sprintf("%f", args.MinPrice))
	params.Add("mid_price", fmt.Sprintf("%f", args.MidPrice))
	params.Add("max_price", fmt.Sprintf("%f", args.MaxPrice))
	params.Add("price_increment", fmt.Sprintf("%f", args.PriceIncrement))

	var curve eventmodels.RiskCurve
	if err := fetchJSON(client, fmt.Sprintf("%s/riskcurve?%s", args.Host, params.Encode()), &curve); err != nil {
		return RunResult{}, err
	}

	return RunResult{
		Positions: positionsResp.Positions,
		Greeks:    &greeks,
		Curve:     &curve,
	}, nil
}

func render(result RunResult) {
	fmt.Println("Positions:")

	positionsTable := tablewriter.NewWriter(os.Stdout)
	positionsTable.SetHeader([]string{"ID", "Symbol", "Class", "Strike", "Expiration", "Qty", "Mark", "Value"})
	positionsTable.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, p := range result.Positions {
		expiration := ""
		if p.Expiration != nil {
			expiration = *p.Expiration
		}

		positionsTable.Append([]string{
			fmt.Sprintf("%d", p.ContractID),
			p.Symbol,
			string(p.AssetClass),
			fmt.Sprintf("%.2f", p.Strike),
			expiration,
			fmt.Sprintf("%.2f", p.Qty),
			fmt.Sprintf("%.2f", p.MarkPrice),
			fmt.Sprintf("%.2f", p.MarkValue),
		})
	}

	positionsTable.Render()

	fmt.Printf("\nGreeks (%s):\n", result.Greeks.Symbol)

	greeksTable := tablewriter.NewWriter(os.Stdout)
	greeksTable.SetHeader([]string{"Delta", "Charm", "Gamma", "Theta", "Vega"})
	greeksTable.SetAlignment(tablewriter.ALIGN_RIGHT)
	greeksTable.Append([]string{
		fmt.Sprintf("%.4f", result.Greeks.Delta),
		fmt.Sprintf("%.4f", result.Greeks.Charm),
		fmt.Sprintf("%.4f", result.Greeks.Gamma),
		fmt.Sprintf("%.4f", result.Greeks.Theta),
		fmt.Sprintf("%.4f", result.Greeks.Vega),
	})
	greeksTable.Render()

	fmt.Printf("\nRisk curve (min P&L %.2f, max P&L %.2f):\n", result.Curve.MinPL, result.Curve.MaxPL)

	curveTable := tablewriter.NewWriter(os.Stdout)
	curveTable.SetHeader([]string{"Price", "P&L"})
	curveTable.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, point := range result.Curve.Points {
		curveTable.Append([]string{
			fmt.Sprintf("%.2f", point.Price),
			fmt.Sprintf("%.2f", point.PL),
		})
	}

	curveTable.Render()
}

func main() {
	runCmd.PersistentFlags().String("host", "http://localhost:8080", "Base URL of the running hedger service")
	runCmd.PersistentFlags().String("symbol", "", "Underlying symbol")
	runCmd.PersistentFlags().Float64("lookahead-days", 0, "Days ahead to project option decay")
	runCmd.PersistentFlags().Float64("min", 0, "Curve start price")
	runCmd.PersistentFlags().Float64("mid", 0, "Current underlying price")
	runCmd.PersistentFlags().Float64("max", 0, "Curve end price")
	runCmd.PersistentFlags().Float64("increment", 0, "Price step between samples")

	runCmd.MarkPersistentFlagRequired("symbol")
	runCmd.MarkPersistentFlagRequired("min")
	runCmd.MarkPersistentFlagRequired("mid")
	runCmd.MarkPersistentFlagRequired("max")
	runCmd.MarkPersistentFlagRequired("increment")

	runCmd.Execute()
}
