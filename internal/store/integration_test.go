//-------------------------------------------------------------------------
//
// storepulse - retail analytics toolkit
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storepulse/storepulse/internal/calendar"
	"github.com/storepulse/storepulse/internal/db"
	"github.com/storepulse/storepulse/internal/model"
	"github.com/storepulse/storepulse/internal/schema"
	"github.com/storepulse/storepulse/internal/testutil"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixtureDataset() *model.Dataset {
	ds := &model.Dataset{
		Products: []model.Product{
			{ID: 1, Name: "Wooden Blocks", Category: "Toys",
				Cost: decimal.RequireFromString("5.00"), Price: decimal.RequireFromString("10.00")},
			{ID: 2, Name: "Free Sticker", Category: "Promo",
				Cost: decimal.RequireFromString("0.50"), Price: decimal.RequireFromString("0.00")},
		},
		Stores: []model.Store{
			{ID: 1, Name: "StorePulse Springfield 1", City: "Springfield",
				LocationType: "Downtown", OpenDate: date(2019, time.January, 15)},
		},
		Sales: []model.Sale{
			{ID: 1, Date: date(2022, time.March, 5), StoreID: 1, ProductID: 1, Units: 3},
			{ID: 2, Date: date(2022, time.March, 6), StoreID: 1, ProductID: 2, Units: 1},
		},
		Inventory: []model.InventorySnapshot{
			{StoreID: 1, ProductID: 1, StockOnHand: 12},
			{StoreID: 1, ProductID: 2, StockOnHand: 0},
		},
	}
	ds.Index()
	return ds
}

// setupTestStore creates a fresh database with the schema and fixture
// data loaded.
func setupTestStore(t *testing.T) (*Store, context.Context) {
	t.Helper()

	baseConnStr := testutil.SkipIfNoPostgres(t)
	testConnStr := testutil.CreateTestDB(t, baseConnStr, "store")
	dbName := testutil.GetDBNameFromConnStr(testConnStr)

	cleanup := testutil.NewTestCleanup(t, baseConnStr, dbName)
	t.Cleanup(cleanup.Cleanup)

	ctx := context.Background()
	pool, err := db.Connect(ctx, testConnStr)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	cleanup.SetPool(pool)

	if err := schema.CreateSchema(ctx, pool); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	s := New(pool)
	ds := fixtureDataset()
	if err := s.InsertProducts(ctx, ds.Products); err != nil {
		t.Fatalf("Failed to insert products: %v", err)
	}
	if err := s.InsertStores(ctx, ds.Stores); err != nil {
		t.Fatalf("Failed to insert stores: %v", err)
	}
	if _, err := s.InsertSales(ctx, ds.Sales); err != nil {
		t.Fatalf("Failed to insert sales: %v", err)
	}
	if err := s.InsertInventory(ctx, ds.Inventory); err != nil {
		t.Fatalf("Failed to insert inventory: %v", err)
	}

	return s, ctx
}

func TestLoadDatasetRoundtrip(t *testing.T) {
	s, ctx := setupTestStore(t)

	ds, err := s.LoadDataset(ctx)
	if err != nil {
		t.Fatalf("LoadDataset failed: %v", err)
	}

	if len(ds.Products) != 2 || len(ds.Stores) != 1 || len(ds.Sales) != 2 || len(ds.Inventory) != 2 {
		t.Fatalf("counts = %d/%d/%d/%d, want 2/1/2/2",
			len(ds.Products), len(ds.Stores), len(ds.Sales), len(ds.Inventory))
	}

	p, ok := ds.ProductByID(1)
	if !ok {
		t.Fatal("product 1 not indexed")
	}
	if !p.Cost.Equal(decimal.RequireFromString("5.00")) {
		t.Errorf("cost = %s, want 5.00 (decimal must survive the roundtrip)", p.Cost)
	}
	if !p.Price.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("price = %s, want 10.00", p.Price)
	}

	// Sales come back ordered by (sale_date, sale_id).
	if ds.Sales[0].ID != 1 || ds.Sales[1].ID != 2 {
		t.Errorf("sales order = %d, %d, want 1, 2", ds.Sales[0].ID, ds.Sales[1].ID)
	}
}

func TestSaleDateRange(t *testing.T) {
	s, ctx := setupTestStore(t)

	min, max, ok, err := s.SaleDateRange(ctx)
	if err != nil {
		t.Fatalf("SaleDateRange failed: %v", err)
	}
	if !ok {
		t.Fatal("expected a non-empty range")
	}
	if !min.Equal(date(2022, time.March, 5)) || !max.Equal(date(2022, time.March, 6)) {
		t.Errorf("range = [%s, %s]", min, max)
	}
}

func TestUpsertCalendarIdempotent(t *testing.T) {
	s, ctx := setupTestStore(t)

	days := calendar.DeriveRange(date(2022, time.March, 1), date(2022, time.March, 31))
	if len(days) != 31 {
		t.Fatalf("derived %d days, want 31", len(days))
	}

	if err := s.UpsertCalendar(ctx, days); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	// Re-running must not duplicate rows or fail.
	if err := s.UpsertCalendar(ctx, days); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	count, err := s.CalendarCount(ctx)
	if err != nil {
		t.Fatalf("CalendarCount failed: %v", err)
	}
	if count != 31 {
		t.Errorf("calendar rows = %d, want 31", count)
	}
}

func TestReportingView(t *testing.T) {
	s, ctx := setupTestStore(t)

	days := calendar.DeriveRange(date(2022, time.March, 5), date(2022, time.March, 6))
	if err := s.UpsertCalendar(ctx, days); err != nil {
		t.Fatalf("calendar upsert failed: %v", err)
	}

	rows, err := s.ReportingView(ctx, 0)
	if err != nil {
		t.Fatalf("ReportingView failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	// Oldest first: sale 1 (March 5) leads.
	blocks := rows[0]
	if blocks.SaleID != 1 {
		t.Fatalf("first row sale_id = %d, want 1", blocks.SaleID)
	}
	if blocks.Revenue.StringFixed(2) != "30.00" {
		t.Errorf("blocks revenue = %s, want 30.00", blocks.Revenue)
	}
	if !blocks.MarginPct.Valid || blocks.MarginPct.Decimal.StringFixed(2) != "50.00" {
		t.Errorf("blocks margin = %v, want 50.00", blocks.MarginPct)
	}
	if blocks.IsWeekend == nil || !*blocks.IsWeekend {
		t.Errorf("March 5 2022 is a Saturday, is_weekend = %v", blocks.IsWeekend)
	}
	if blocks.StockOnHand == nil || *blocks.StockOnHand != 12 {
		t.Errorf("blocks stock_on_hand = %v, want 12", blocks.StockOnHand)
	}

	free := rows[1]
	if !free.Revenue.IsZero() {
		t.Errorf("free sticker revenue = %s, want 0", free.Revenue)
	}
	// Zero revenue: the view must report NULL margin, not divide.
	if free.MarginPct.Valid {
		t.Errorf("free sticker margin = %s, want NULL", free.MarginPct.Decimal)
	}
	if free.WeekdayName == nil || *free.WeekdayName != "Sunday" {
		t.Errorf("weekday = %v, want Sunday", free.WeekdayName)
	}
	if free.StockOnHand == nil || *free.StockOnHand != 0 {
		t.Errorf("free sticker stock_on_hand = %v, want 0", free.StockOnHand)
	}
}

func TestReportingViewWithoutCalendar(t *testing.T) {
	s, ctx := setupTestStore(t)

	// Calendar attributes are a LEFT JOIN: rows survive without them.
	rows, err := s.ReportingView(ctx, 1)
	if err != nil {
		t.Fatalf("ReportingView failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1 (limit)", len(rows))
	}
	if rows[0].WeekdayName != nil {
		t.Errorf("weekday = %v, want nil without calendar rows", rows[0].WeekdayName)
	}
}

func TestTruncateData(t *testing.T) {
	s, ctx := setupTestStore(t)

	if err := s.TruncateData(ctx); err != nil {
		t.Fatalf("TruncateData failed: %v", err)
	}

	counts, err := s.TableCounts(ctx)
	if err != nil {
		t.Fatalf("TableCounts failed: %v", err)
	}
	for _, table := range []string{"products", "stores", "sales", "inventory"} {
		if counts[table] != 0 {
			t.Errorf("%s has %d rows after truncate", table, counts[table])
		}
	}
}

func TestMetadataRoundtrip(t *testing.T) {
	s, ctx := setupTestStore(t)

	v, err := db.GetMetadataValue(ctx, s.Pool(), db.MetaSchemaVersion)
	if err != nil {
		t.Fatalf("GetMetadataValue failed: %v", err)
	}
	if v != db.SchemaVersion {
		t.Errorf("schema_version = %q, want %q", v, db.SchemaVersion)
	}

	if err := db.SaveMetadata(ctx, s.Pool(), "probe", "1"); err != nil {
		t.Fatalf("SaveMetadata failed: %v", err)
	}
	if err := db.SaveMetadata(ctx, s.Pool(), "probe", "2"); err != nil {
		t.Fatalf("SaveMetadata upsert failed: %v", err)
	}
	v, err = db.GetMetadataValue(ctx, s.Pool(), "probe")
	if err != nil {
		t.Fatalf("GetMetadataValue failed: %v", err)
	}
	if v != "2" {
		t.Errorf("probe = %q, want 2 (upsert must overwrite)", v)
	}

	// Absent keys are empty, not an error.
	v, err = db.GetMetadataValue(ctx, s.Pool(), "missing")
	if err != nil || v != "" {
		t.Errorf("missing key = (%q, %v), want empty and no error", v, err)
	}
}
