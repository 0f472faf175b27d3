package responses

import "encoding/json"

// SkuDetailResponse is the raw payload of the variant detail endpoint.
type SkuDetailResponse struct {
	ItemInfo ItemInfo    `json:"ae_item_info"`
	SkuInfo  SkuInfoBody `json:"ae_item_sku_info"`
}

type SkuInfoBody struct {
	TrafficSkuList []RawSku `json:"traffic_sku_info_list"`
}

type ItemInfo struct {
	Title            string   `json:"title"`
	ProductScore     string   `json:"product_score"`
	ReviewNumber     string   `json:"review_number"`
	ImageLink        string   `json:"image_link"`
	AdditionalImages ImageSet `json:"additional_image_links"`
	CategoryIDL1     string   `json:"display_category_id_l1"`
	CategoryIDL2     string   `json:"display_category_id_l2"`
	CategoryNameL1   string   `json:"display_category_name_l1"`
	CategoryNameL2   string   `json:"display_category_name_l2"`
	CategoryNameL3   string   `json:"display_category_name_l3"`
	CategoryNameL4   string   `json:"display_category_name_l4"`
}

type ImageSet struct {
	String []string `json:"string"`
}

// RawSku keeps sku_properties as raw JSON: the provider sends either a
// structured list or a string encoding of one, inconsistently.
type RawSku struct {
	Color            string          `json:"color"`
	SkuProperties    json.RawMessage `json:"sku_properties"`
	SalePriceWithTax string          `json:"sale_price_with_tax"`
	Currency         string          `json:"currency"`
	Link             string          `json:"link"`
}
