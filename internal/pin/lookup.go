package pin

import "github.com/pinshelf/pinshelf-server/internal/domain"

// ProductIndex resolves product ids against recipe items first and the global
// product list second.
type ProductIndex struct {
	items    map[string]domain.ProductSnapshot
	products map[string]domain.ProductSnapshot
}

// NewProductIndex builds the lookup tables. On duplicate ids within one
// collection the first entry wins.
func NewProductIndex(items, products []domain.ProductSnapshot) *ProductIndex {
	return &ProductIndex{
		items:    indexByID(items),
		products: indexByID(products),
	}
}

// Lookup returns the product for id, preferring the items collection.
func (x *ProductIndex) Lookup(id string) (domain.ProductSnapshot, bool) {
	if id == "" {
		return domain.ProductSnapshot{}, false
	}
	if p, ok := x.items[id]; ok {
		return p, true
	}
	p, ok := x.products[id]
	return p, ok
}

func indexByID(list []domain.ProductSnapshot) map[string]domain.ProductSnapshot {
	m := make(map[string]domain.ProductSnapshot, len(list))
	for _, p := range list {
		if p.ID == "" {
			continue
		}
		if _, seen := m[p.ID]; !seen {
			m[p.ID] = p
		}
	}
	return m
}

// indexKey identifies a pair of collections by backing array and length.
// Callers must not mutate a collection in place between render passes.
type indexKey struct {
	items, products       *domain.ProductSnapshot
	itemsLen, productsLen int
}

func keyFor(items, products []domain.ProductSnapshot) indexKey {
	k := indexKey{itemsLen: len(items), productsLen: len(products)}
	if len(items) > 0 {
		k.items = &items[0]
	}
	if len(products) > 0 {
		k.products = &products[0]
	}
	return k
}
