//-------------------------------------------------------------------------
//
// storepulse - retail analytics toolkit
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/storepulse/storepulse/internal/analytics"
	"github.com/storepulse/storepulse/internal/logging"
	"github.com/storepulse/storepulse/internal/quality"
	"github.com/storepulse/storepulse/pkg/version"
)

// Money travels as fixed two-decimal strings; undefined percentages as
// JSON null.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func nullPct(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.StringFixed(2)
	return &s
}

func (s *Server) internalError(c *fiber.Ctx, err error) error {
	logging.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal error",
	})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": version.Version,
	})
}

type summaryRow struct {
	Key       string  `json:"key"`
	Units     int64   `json:"units"`
	Revenue   string  `json:"revenue"`
	Cost      string  `json:"cost"`
	Profit    string  `json:"profit"`
	MarginPct *string `json:"margin_pct"`
}

func (s *Server) handleSummary(c *fiber.Ctx) error {
	grouping, err := analytics.ParseGrouping(c.Query("group", string(analytics.GroupProduct)))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	ds, err := s.data.LoadDataset(c.Context())
	if err != nil {
		return s.internalError(c, err)
	}

	rollup, err := analytics.RollupBy(ds, grouping)
	if err != nil {
		return s.internalError(c, err)
	}

	rows := make([]summaryRow, 0, len(rollup))
	for _, r := range rollup {
		rows = append(rows, summaryRow{
			Key:       r.Key,
			Units:     r.Units,
			Revenue:   money(r.Revenue),
			Cost:      money(r.Cost),
			Profit:    money(r.Profit),
			MarginPct: nullPct(r.MarginPct),
		})
	}
	return c.JSON(fiber.Map{"grouping": grouping, "rows": rows})
}

type storeRankRow struct {
	StoreID     int64  `json:"store_id"`
	StoreName   string `json:"store_name"`
	Rank        int    `json:"rank"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Units       int64  `json:"units"`
}

type globalRankRow struct {
	Rank        int    `json:"rank"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Units       int64  `json:"units"`
}

func (s *Server) handleTopProducts(c *fiber.Ctx) error {
	scope := c.Query("scope", "global")
	limit := c.QueryInt("limit", 0)

	ds, err := s.data.LoadDataset(c.Context())
	if err != nil {
		return s.internalError(c, err)
	}

	switch scope {
	case "global":
		ranked := analytics.TopProducts(ds, limit)
		rows := make([]globalRankRow, 0, len(ranked))
		for _, r := range ranked {
			rows = append(rows, globalRankRow{
				Rank:        r.Rank,
				ProductID:   r.ProductID,
				ProductName: r.ProductName,
				Units:       r.Units,
			})
		}
		return c.JSON(fiber.Map{"scope": scope, "rows": rows})

	case "store":
		ranked := analytics.TopProductsPerStore(ds, limit)
		rows := make([]storeRankRow, 0, len(ranked))
		for _, r := range ranked {
			rows = append(rows, storeRankRow{
				StoreID:     r.StoreID,
				StoreName:   r.StoreName,
				Rank:        r.Rank,
				ProductID:   r.ProductID,
				ProductName: r.ProductName,
				Units:       r.Units,
			})
		}
		return c.JSON(fiber.Map{"scope": scope, "rows": rows})

	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "scope must be global or store",
		})
	}
}

type abcRow struct {
	ProductID    int64  `json:"product_id"`
	ProductName  string `json:"product_name"`
	Units        int64  `json:"units"`
	RunningUnits int64  `json:"running_units"`
	RunningPct   string `json:"running_pct"`
	Band         string `json:"band"`
}

func (s *Server) handleABC(c *fiber.Ctx) error {
	ds, err := s.data.LoadDataset(c.Context())
	if err != nil {
		return s.internalError(c, err)
	}

	classified, err := analytics.ClassifyABC(ds)
	if errors.Is(err, analytics.ErrNoUnitsSold) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		return s.internalError(c, err)
	}

	rows := make([]abcRow, 0, len(classified))
	for _, r := range classified {
		rows = append(rows, abcRow{
			ProductID:    r.ProductID,
			ProductName:  r.ProductName,
			Units:        r.Units,
			RunningUnits: r.RunningUnits,
			RunningPct:   r.RunningPct.StringFixed(2),
			Band:         string(r.Band),
		})
	}
	return c.JSON(fiber.Map{"rows": rows})
}

type stockRow struct {
	StoreID     int64   `json:"store_id"`
	StoreName   string  `json:"store_name"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	StockOnHand int64   `json:"stock_on_hand"`
	UnitsSold   int64   `json:"units_sold"`
	Ratio       *string `json:"ratio"`
}

func stockRows(in []analytics.StockRatioRow) []stockRow {
	rows := make([]stockRow, 0, len(in))
	for _, r := range in {
		rows = append(rows, stockRow{
			StoreID:     r.StoreID,
			StoreName:   r.StoreName,
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			StockOnHand: r.StockOnHand,
			UnitsSold:   r.UnitsSold,
			Ratio:       nullPct(r.Ratio),
		})
	}
	return rows
}

func (s *Server) handleStockRatios(c *fiber.Ctx) error {
	ds, err := s.data.LoadDataset(c.Context())
	if err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(fiber.Map{"rows": stockRows(analytics.StockToSales(ds))})
}

func (s *Server) handleStockoutRisk(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)

	ds, err := s.data.LoadDataset(c.Context())
	if err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(fiber.Map{"rows": stockRows(analytics.StockoutRisk(ds, limit))})
}

type yoyRow struct {
	StoreID   int64    `json:"store_id"`
	StoreName string   `json:"store_name"`
	Year      int      `json:"year"`
	Units     int64    `json:"units"`
	Revenue   string   `json:"revenue"`
	Cost      string   `json:"cost"`
	Profit    string   `json:"profit"`
	MarginPct *string  `json:"margin_pct"`
	Products  []string `json:"products"`
}

func (s *Server) handleYearOverYear(c *fiber.Ctx) error {
	ds, err := s.data.LoadDataset(c.Context())
	if err != nil {
		return s.internalError(c, err)
	}

	buckets := analytics.YearOverYear(ds)
	rows := make([]yoyRow, 0, len(buckets))
	for _, r := range buckets {
		products := r.Products
		if products == nil {
			products = []string{}
		}
		rows = append(rows, yoyRow{
			StoreID:   r.StoreID,
			StoreName: r.StoreName,
			Year:      r.Year,
			Units:     r.Units,
			Revenue:   money(r.Revenue),
			Cost:      money(r.Cost),
			Profit:    money(r.Profit),
			MarginPct: nullPct(r.MarginPct),
			Products:  products,
		})
	}
	return c.JSON(fiber.Map{"rows": rows})
}

type violationRow struct {
	Rule   string `json:"rule"`
	Entity string `json:"entity"`
	Key    string `json:"key"`
	Detail string `json:"detail"`
}

func (s *Server) handleValidations(c *fiber.Ctx) error {
	ds, err := s.data.LoadDataset(c.Context())
	if err != nil {
		return s.internalError(c, err)
	}

	violations := quality.CheckAll(ds)
	rows := make([]violationRow, 0, len(violations))
	for _, v := range violations {
		rows = append(rows, violationRow{
			Rule:   string(v.Rule),
			Entity: v.Entity,
			Key:    v.Key,
			Detail: v.Detail,
		})
	}
	return c.JSON(fiber.Map{"count": len(rows), "rows": rows})
}

type saleRow struct {
	SaleID      int64   `json:"sale_id"`
	SaleDate    string  `json:"sale_date"`
	Weekday     *string `json:"weekday"`
	Month       *string `json:"month"`
	Year        *int    `json:"year"`
	IsWeekend   *bool   `json:"is_weekend"`
	StoreID     int64   `json:"store_id"`
	StoreName   string  `json:"store_name"`
	StoreCity   string  `json:"store_city"`
	StoreType   string  `json:"store_location"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Category    string  `json:"category"`
	Units       int64   `json:"units"`
	StockOnHand *int64  `json:"stock_on_hand"`
	Revenue     string  `json:"revenue"`
	Cost        string  `json:"cost"`
	Profit      string  `json:"profit"`
	MarginPct   *string `json:"margin_pct"`
}

// handleSales serves the denormalized reporting view in date order.
func (s *Server) handleSales(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	if limit < 0 {
		limit = 0
	}

	view, err := s.data.ReportingView(c.Context(), limit)
	if err != nil {
		return s.internalError(c, err)
	}

	rows := make([]saleRow, 0, len(view))
	for _, r := range view {
		rows = append(rows, saleRow{
			SaleID:      r.SaleID,
			SaleDate:    r.SaleDate.Format("2006-01-02"),
			Weekday:     r.WeekdayName,
			Month:       r.MonthName,
			Year:        r.Year,
			IsWeekend:   r.IsWeekend,
			StoreID:     r.StoreID,
			StoreName:   r.StoreName,
			StoreCity:   r.StoreCity,
			StoreType:   r.StoreType,
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			Category:    r.Category,
			Units:       r.Units,
			StockOnHand: r.StockOnHand,
			Revenue:     money(r.Revenue),
			Cost:        money(r.Cost),
			Profit:      money(r.Profit),
			MarginPct:   nullPct(r.MarginPct),
		})
	}
	return c.JSON(fiber.Map{"count": len(rows), "rows": rows})
}
