package reconcile

import (
	"time"

	"gopricetracker/internal/aliexpress/business/models"
)

// BuildPricePoint captures the incoming sale price with its capture instant.
func BuildPricePoint(v IncomingVariant, now time.Time) models.PricePoint {
	return models.PricePoint{
		Sale: v.SalePrice.InexactFloat64(),
		At:   now,
	}
}
