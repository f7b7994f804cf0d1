package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/storepulse/storepulse/internal/analytics"
	"github.com/storepulse/storepulse/internal/db"
	"github.com/storepulse/storepulse/internal/model"
	"github.com/storepulse/storepulse/internal/report"
	"github.com/storepulse/storepulse/internal/store"
)

var (
	reportGrouping string
	reportLimit    int
	reportFormat   string
)

var reportCmd = &cobra.Command{
	Use:   "report <kind>",
	Short: "Produce an analytical report",
	Long: `Produce one of the analytical reports from the loaded data:

  summary     - units, revenue, cost, profit and margin by grouping
  top-store   - best selling products within each store
  top-global  - best selling products across all stores
  abc         - ABC (Pareto) classification by cumulative unit share
  stock       - stock-to-sales ratio for every inventory pair
  risk        - lowest stock-to-sales ratios (stockout risk)
  yoy         - year-over-year summary per store
  sales       - the denormalized sales_enriched view, oldest first

Example:
  storepulse report summary --grouping category
  storepulse report risk --limit 10 --format csv`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"summary", "top-store", "top-global", "abc", "stock", "risk", "yoy", "sales"},
	RunE:      runReportCmd,
}

func init() {
	reportCmd.Flags().StringVar(&reportGrouping, "grouping", "",
		"summary grouping (see 'storepulse groupings')")
	reportCmd.Flags().IntVar(&reportLimit, "limit", 0,
		"row cutoff for top-store, top-global, risk and sales")
	reportCmd.Flags().StringVar(&reportFormat, "format", "",
		"output format: table, csv, json")
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	if reportGrouping != "" {
		cfg.Report.Grouping = reportGrouping
	}
	if reportFormat != "" {
		cfg.Report.Format = reportFormat
	}
	if err := cfg.ValidateReport(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	s := store.New(pool)

	r, err := buildReport(ctx, s, args[0])
	if err != nil {
		return err
	}
	return r.Write(os.Stdout, cfg.Report.Format)
}

func buildReport(ctx context.Context, s *store.Store, kind string) (*report.Report, error) {
	// The sales report reads the database view; everything else is an
	// in-memory pass over the dataset.
	if kind == "sales" {
		limit := reportLimit
		if limit <= 0 {
			limit = 100
		}
		rows, err := s.ReportingView(ctx, limit)
		if err != nil {
			return nil, err
		}
		return report.Enriched(rows), nil
	}

	ds, err := s.LoadDataset(ctx)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "summary":
		return summaryReport(ds)

	case "top-store":
		limit := reportLimit
		if limit <= 0 {
			limit = cfg.Report.StoreTopN
		}
		return report.TopPerStore(analytics.TopProductsPerStore(ds, limit)), nil

	case "top-global":
		limit := reportLimit
		if limit <= 0 {
			limit = cfg.Report.GlobalTopN
		}
		return report.TopGlobal(analytics.TopProducts(ds, limit)), nil

	case "abc":
		rows, err := analytics.ClassifyABC(ds)
		if err != nil {
			return nil, err
		}
		return report.ABC(rows), nil

	case "stock":
		return report.StockRatios(analytics.StockToSales(ds)), nil

	case "risk":
		limit := reportLimit
		if limit <= 0 {
			limit = cfg.Report.RiskTopN
		}
		return report.StockoutRisk(analytics.StockoutRisk(ds, limit)), nil

	case "yoy":
		return report.YearOverYear(analytics.YearOverYear(ds)), nil

	default:
		return nil, fmt.Errorf("unknown report kind %q", kind)
	}
}

func summaryReport(ds *model.Dataset) (*report.Report, error) {
	grouping, err := analytics.ParseGrouping(cfg.Report.Grouping)
	if err != nil {
		return nil, err
	}
	rows, err := analytics.RollupBy(ds, grouping)
	if err != nil {
		return nil, err
	}
	return report.Summary(grouping, rows), nil
}
