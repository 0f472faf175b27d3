package responses

import "encoding/json"

// ListingItem is one product row from the category feed.
type ListingItem struct {
	ID            string      `json:"_id"`
	Volume        json.Number `json:"volume"`
	PromotionLink string      `json:"promotion_link"`
	PL            string      `json:"pl"`
}

// ProductDetailResponse is the payload of the product detail fallback, used to
// backfill volume or a missing promotion link.
type ProductDetailResponse struct {
	Items []ProductDetailItem `json:"items"`
}

type ProductDetailItem struct {
	Volume json.Number      `json:"volume"`
	Raw    ProductDetailRaw `json:"_raw"`
}

type ProductDetailRaw struct {
	PromotionLink string `json:"promotion_link"`
}
