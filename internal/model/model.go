//-------------------------------------------------------------------------
//
// storepulse - retail analytics toolkit
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package model defines the retail entities and the in-memory dataset the
// analytical pipeline operates on. All entities are loaded once as a batch
// snapshot; nothing here is mutated incrementally.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a distinct sellable SKU. Price and cost are non-negative;
// the margin (price - cost) may be negative for loss leaders.
type Product struct {
	ID       int64
	Name     string
	Category string
	Cost     decimal.Decimal
	Price    decimal.Decimal
}

// Store is a retail location.
type Store struct {
	ID           int64
	Name         string
	City         string
	LocationType string
	OpenDate     time.Time
}

// InventorySnapshot is the stock on hand for one (store, product) pair.
// At most one snapshot exists per pair.
type InventorySnapshot struct {
	StoreID     int64
	ProductID   int64
	StockOnHand int64
}

// Sale is a single sale event. Store and product references may be
// unresolvable in defective extracts; such rows are detected by the
// quality checks, never silently dropped at load.
type Sale struct {
	ID        int64
	Date      time.Time
	StoreID   int64
	ProductID int64
	Units     int64
}

// CalendarDay is one derived row of the calendar dimension. All attributes
// are pure functions of Date.
type CalendarDay struct {
	Date        time.Time
	WeekdayName string
	MonthNumber int
	MonthName   string
	Year        int
	IsWeekend   bool
}

// Dataset is a full snapshot of the loaded entity sets, in load order.
type Dataset struct {
	Products  []Product
	Stores    []Store
	Sales     []Sale
	Inventory []InventorySnapshot

	productByID map[int64]*Product
	storeByID   map[int64]*Store
}

// Index builds the lookup maps. Call once after the slices are populated.
// On duplicate IDs the first occurrence wins; duplicates themselves are
// reported by the quality checks.
func (d *Dataset) Index() {
	d.productByID = make(map[int64]*Product, len(d.Products))
	for i := range d.Products {
		p := &d.Products[i]
		if _, ok := d.productByID[p.ID]; !ok {
			d.productByID[p.ID] = p
		}
	}
	d.storeByID = make(map[int64]*Store, len(d.Stores))
	for i := range d.Stores {
		s := &d.Stores[i]
		if _, ok := d.storeByID[s.ID]; !ok {
			d.storeByID[s.ID] = s
		}
	}
}

// ProductByID looks up a product by identity.
func (d *Dataset) ProductByID(id int64) (*Product, bool) {
	if d.productByID == nil {
		d.Index()
	}
	p, ok := d.productByID[id]
	return p, ok
}

// StoreByID looks up a store by identity.
func (d *Dataset) StoreByID(id int64) (*Store, bool) {
	if d.storeByID == nil {
		d.Index()
	}
	s, ok := d.storeByID[id]
	return s, ok
}

// SaleDateRange returns the earliest and latest sale dates.
// ok is false when there are no sales.
func (d *Dataset) SaleDateRange() (min, max time.Time, ok bool) {
	for _, s := range d.Sales {
		if !ok {
			min, max, ok = s.Date, s.Date, true
			continue
		}
		if s.Date.Before(min) {
			min = s.Date
		}
		if s.Date.After(max) {
			max = s.Date
		}
	}
	return min, max, ok
}
