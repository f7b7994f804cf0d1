//-------------------------------------------------------------------------
//
// storepulse - retail analytics toolkit
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package quality implements the read-only data consistency checks:
// missing mandatory fields, duplicate primary keys, and orphaned foreign
// keys. Checks are independent, side-effect-free passes over the loaded
// dataset. Offending rows are reported for a human to fix at the source;
// nothing is repaired or dropped.
package quality

import (
	"fmt"

	"github.com/storepulse/storepulse/internal/model"
)

// Rule identifies a violated consistency rule.
type Rule string

const (
	RuleMissingField   Rule = "missing_field"
	RuleDuplicateKey   Rule = "duplicate_key"
	RuleOrphanSale     Rule = "orphan_sale"
	RuleOrphanStock    Rule = "orphan_inventory"
	RuleNegativeAmount Rule = "negative_amount"
)

// Violation is one offending row with the rule it breaks.
type Violation struct {
	Rule   Rule
	Entity string
	Key    string
	Detail string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %s[%s]: %s", v.Rule, v.Entity, v.Key, v.Detail)
}

// CheckAll runs every check and concatenates the results in a fixed order.
func CheckAll(ds *model.Dataset) []Violation {
	var out []Violation
	out = append(out, CheckMissingFields(ds)...)
	out = append(out, CheckDuplicateKeys(ds)...)
	out = append(out, CheckOrphans(ds)...)
	out = append(out, CheckNegativeAmounts(ds)...)
	return out
}

// CheckMissingFields reports entities with empty mandatory attributes.
func CheckMissingFields(ds *model.Dataset) []Violation {
	var out []Violation

	for _, p := range ds.Products {
		if p.Name == "" {
			out = append(out, missing("product", p.ID, "product_name"))
		}
		if p.Category == "" {
			out = append(out, missing("product", p.ID, "category"))
		}
	}
	for _, s := range ds.Stores {
		if s.Name == "" {
			out = append(out, missing("store", s.ID, "store_name"))
		}
		if s.City == "" {
			out = append(out, missing("store", s.ID, "city"))
		}
		if s.LocationType == "" {
			out = append(out, missing("store", s.ID, "location_type"))
		}
		if s.OpenDate.IsZero() {
			out = append(out, missing("store", s.ID, "open_date"))
		}
	}
	for _, s := range ds.Sales {
		if s.Date.IsZero() {
			out = append(out, missing("sale", s.ID, "sale_date"))
		}
	}
	return out
}

func missing(entity string, id int64, field string) Violation {
	return Violation{
		Rule:   RuleMissingField,
		Entity: entity,
		Key:    fmt.Sprintf("%d", id),
		Detail: "mandatory field " + field + " is empty",
	}
}

// CheckDuplicateKeys reports repeated primary keys, including repeated
// (store, product) inventory pairs. The first occurrence of a key is
// considered canonical; every repeat is a violation.
func CheckDuplicateKeys(ds *model.Dataset) []Violation {
	var out []Violation

	seenProducts := make(map[int64]bool, len(ds.Products))
	for _, p := range ds.Products {
		if seenProducts[p.ID] {
			out = append(out, dup("product", fmt.Sprintf("%d", p.ID)))
		}
		seenProducts[p.ID] = true
	}

	seenStores := make(map[int64]bool, len(ds.Stores))
	for _, s := range ds.Stores {
		if seenStores[s.ID] {
			out = append(out, dup("store", fmt.Sprintf("%d", s.ID)))
		}
		seenStores[s.ID] = true
	}

	seenSales := make(map[int64]bool, len(ds.Sales))
	for _, s := range ds.Sales {
		if seenSales[s.ID] {
			out = append(out, dup("sale", fmt.Sprintf("%d", s.ID)))
		}
		seenSales[s.ID] = true
	}

	type pair struct{ store, product int64 }
	seenStock := make(map[pair]bool, len(ds.Inventory))
	for _, inv := range ds.Inventory {
		k := pair{inv.StoreID, inv.ProductID}
		if seenStock[k] {
			out = append(out, dup("inventory", fmt.Sprintf("%d/%d", inv.StoreID, inv.ProductID)))
		}
		seenStock[k] = true
	}
	return out
}

func dup(entity, key string) Violation {
	return Violation{
		Rule:   RuleDuplicateKey,
		Entity: entity,
		Key:    key,
		Detail: "primary key occurs more than once",
	}
}

// CheckOrphans reports sales and inventory rows whose store or product
// reference has no matching parent row.
func CheckOrphans(ds *model.Dataset) []Violation {
	var out []Violation

	for _, s := range ds.Sales {
		if _, ok := ds.StoreByID(s.StoreID); !ok {
			out = append(out, Violation{
				Rule:   RuleOrphanSale,
				Entity: "sale",
				Key:    fmt.Sprintf("%d", s.ID),
				Detail: fmt.Sprintf("store %d does not exist", s.StoreID),
			})
		}
		if _, ok := ds.ProductByID(s.ProductID); !ok {
			out = append(out, Violation{
				Rule:   RuleOrphanSale,
				Entity: "sale",
				Key:    fmt.Sprintf("%d", s.ID),
				Detail: fmt.Sprintf("product %d does not exist", s.ProductID),
			})
		}
	}
	for _, inv := range ds.Inventory {
		key := fmt.Sprintf("%d/%d", inv.StoreID, inv.ProductID)
		if _, ok := ds.StoreByID(inv.StoreID); !ok {
			out = append(out, Violation{
				Rule:   RuleOrphanStock,
				Entity: "inventory",
				Key:    key,
				Detail: fmt.Sprintf("store %d does not exist", inv.StoreID),
			})
		}
		if _, ok := ds.ProductByID(inv.ProductID); !ok {
			out = append(out, Violation{
				Rule:   RuleOrphanStock,
				Entity: "inventory",
				Key:    key,
				Detail: fmt.Sprintf("product %d does not exist", inv.ProductID),
			})
		}
	}
	return out
}

// CheckNegativeAmounts reports negative costs, prices, units and stock
// counts. The schema CHECKs stop these at insert; extracts loaded by other
// means still get flagged here.
func CheckNegativeAmounts(ds *model.Dataset) []Violation {
	var out []Violation

	for _, p := range ds.Products {
		if p.Cost.IsNegative() {
			out = append(out, negative("product", fmt.Sprintf("%d", p.ID), "cost"))
		}
		if p.Price.IsNegative() {
			out = append(out, negative("product", fmt.Sprintf("%d", p.ID), "price"))
		}
	}
	for _, s := range ds.Sales {
		if s.Units < 0 {
			out = append(out, negative("sale", fmt.Sprintf("%d", s.ID), "units"))
		}
	}
	for _, inv := range ds.Inventory {
		if inv.StockOnHand < 0 {
			out = append(out, negative("inventory",
				fmt.Sprintf("%d/%d", inv.StoreID, inv.ProductID), "stock_on_hand"))
		}
	}
	return out
}

func negative(entity, key, field string) Violation {
	return Violation{
		Rule:   RuleNegativeAmount,
		Entity: entity,
		Key:    key,
		Detail: field + " is negative",
	}
}
