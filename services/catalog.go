package services

import (
	"time"

	"eduverse-payments/models"
)

// Crediting rules live outside the finalizer: the catalog is an injected
// lookup seeded from configuration.

type CoinBundle struct {
	ID    string
	Coins int64
	Price int64 // smallest currency unit
}

type SubscriptionPlan struct {
	ID       string
	Plan     string
	Duration time.Duration
	Price    int64
}

type Product struct {
	ID    string
	Price int64
}

type BenefitCatalog interface {
	CoinBundle(id string) (*CoinBundle, bool)
	SubscriptionPlan(id string) (*SubscriptionPlan, bool)
	Product(id string) (*Product, bool)
	HasItem(itemType, itemID string) bool
}

type staticCatalog struct {
	bundles  map[string]CoinBundle
	plans    map[string]SubscriptionPlan
	products map[string]Product
}

func NewStaticCatalog(bundles []CoinBundle, plans []SubscriptionPlan, products []Product) BenefitCatalog {
	c := &staticCatalog{
		bundles:  make(map[string]CoinBundle),
		plans:    make(map[string]SubscriptionPlan),
		products: make(map[string]Product),
	}
	for _, b := range bundles {
		c.bundles[b.ID] = b
	}
	for _, p := range plans {
		c.plans[p.ID] = p
	}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

// DefaultCatalog seeds the platform's standard coin bundles and plans.
func DefaultCatalog() BenefitCatalog {
	return NewStaticCatalog(
		[]CoinBundle{
			{ID: "coins_100", Coins: 100, Price: 4900},
			{ID: "coins_550", Coins: 550, Price: 19900},
			{ID: "coins_1200", Coins: 1200, Price: 39900},
		},
		[]SubscriptionPlan{
			{ID: "plus_monthly", Plan: "plus", Duration: 30 * 24 * time.Hour, Price: 29900},
			{ID: "plus_yearly", Plan: "plus", Duration: 365 * 24 * time.Hour, Price: 299900},
		},
		[]Product{
			{ID: "course_go_101", Price: 99900},
			{ID: "course_distsys", Price: 149900},
		},
	)
}

func (c *staticCatalog) CoinBundle(id string) (*CoinBundle, bool) {
	b, ok := c.bundles[id]
	if !ok {
		return nil, false
	}
	return &b, true
}

func (c *staticCatalog) SubscriptionPlan(id string) (*SubscriptionPlan, bool) {
	p, ok := c.plans[id]
	if !ok {
		return nil, false
	}
	return &p, true
}

func (c *staticCatalog) Product(id string) (*Product, bool) {
	p, ok := c.products[id]
	if !ok {
		return nil, false
	}
	return &p, true
}

func (c *staticCatalog) HasItem(itemType, itemID string) bool {
	switch itemType {
	case models.ItemTypeCoinBundle:
		_, ok := c.bundles[itemID]
		return ok
	case models.ItemTypeSubscription:
		_, ok := c.plans[itemID]
		return ok
	case models.ItemTypeProduct:
		_, ok := c.products[itemID]
		return ok
	default:
		return false
	}
}
