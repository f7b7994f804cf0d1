//-------------------------------------------------------------------------
//
// storepulse - retail analytics toolkit
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package analytics

import (
	"sort"

	"github.com/storepulse/storepulse/internal/model"
)

// StoreProductRank is one ranked product within a store partition.
type StoreProductRank struct {
	StoreID     int64
	StoreName   string
	ProductID   int64
	ProductName string
	Units       int64
	Rank        int
}

// ProductRank is one ranked product in the global top list.
type ProductRank struct {
	ProductID   int64
	ProductName string
	Units       int64
	Rank        int
}

// DefaultStoreTopN and DefaultGlobalTopN are the report defaults.
const (
	DefaultStoreTopN  = 10
	DefaultGlobalTopN = 20
)

type productUnits struct {
	productID int64
	name      string
	units     int64
}

// TopProductsPerStore ranks products by total units sold within each store
// and keeps rank <= limit. Ranking is row-number style starting at 1;
// ties do not share a rank and are broken by first-seen sale order
// (stable sort). Store partitions appear in first-seen order.
func TopProductsPerStore(ds *model.Dataset, limit int) []StoreProductRank {
	if limit <= 0 {
		limit = DefaultStoreTopN
	}

	perStore := make(map[int64][]*productUnits)
	perStoreIdx := make(map[int64]map[int64]*productUnits)
	var storeOrder []int64

	for _, s := range ds.Sales {
		p, pok := ds.ProductByID(s.ProductID)
		st, sok := ds.StoreByID(s.StoreID)
		if !pok || !sok {
			continue
		}
		idx, ok := perStoreIdx[st.ID]
		if !ok {
			idx = make(map[int64]*productUnits)
			perStoreIdx[st.ID] = idx
			storeOrder = append(storeOrder, st.ID)
		}
		pu, ok := idx[p.ID]
		if !ok {
			pu = &productUnits{productID: p.ID, name: p.Name}
			idx[p.ID] = pu
			perStore[st.ID] = append(perStore[st.ID], pu)
		}
		pu.units += s.Units
	}

	var out []StoreProductRank
	for _, storeID := range storeOrder {
		st, _ := ds.StoreByID(storeID)
		products := perStore[storeID]
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].units > products[j].units
		})
		for i, pu := range products {
			if i >= limit {
				break
			}
			out = append(out, StoreProductRank{
				StoreID:     storeID,
				StoreName:   st.Name,
				ProductID:   pu.productID,
				ProductName: pu.name,
				Units:       pu.units,
				Rank:        i + 1,
			})
		}
	}
	return out
}

// TopProducts ranks products by total units sold across all stores, with
// the same row-number ranking and stable tie-breaking, truncated to limit.
func TopProducts(ds *model.Dataset, limit int) []ProductRank {
	if limit <= 0 {
		limit = DefaultGlobalTopN
	}

	idx := make(map[int64]*productUnits)
	var order []*productUnits

	for _, s := range ds.Sales {
		p, pok := ds.ProductByID(s.ProductID)
		if _, sok := ds.StoreByID(s.StoreID); !pok || !sok {
			continue
		}
		pu, ok := idx[p.ID]
		if !ok {
			pu = &productUnits{productID: p.ID, name: p.Name}
			idx[p.ID] = pu
			order = append(order, pu)
		}
		pu.units += s.Units
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].units > order[j].units
	})

	n := min(limit, len(order))
	out := make([]ProductRank, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, ProductRank{
			ProductID:   order[i].productID,
			ProductName: order[i].name,
			Units:       order[i].units,
			Rank:        i + 1,
		})
	}
	return out
}
