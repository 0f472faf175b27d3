package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PricePoint is one recorded price observation for a variant on a given day.
type PricePoint struct {
	Sale float64   `bson:"s"`
	At   time.Time `bson:"t,omitempty"`
}

// VariantRecord is one purchasable configuration embedded in a product document.
// Field names are abbreviated to keep the stored documents small.
type VariantRecord struct {
	Color    string                `bson:"c"`
	Props    string                `bson:"sp"`
	PropsKey string                `bson:"spKey"`
	Currency string                `bson:"cur"`
	Link     string                `bson:"link,omitempty"`
	Prices   map[string]PricePoint `bson:"pd"`
}

// SkuInfo wraps the embedded variant list under its stored path sku_info.sil.
type SkuInfo struct {
	Variants []VariantRecord `bson:"sil"`
}

// ProductDocument is the catalog document for one marketplace product.
// The _id is the externally supplied product identifier.
type ProductDocument struct {
	ID           string             `bson:"_id"`
	Volume       int64              `bson:"vol,omitempty"`
	PromoLink    string             `bson:"pl,omitempty"`
	ImageLink    string             `bson:"il,omitempty"`
	ExtraImages  []string           `bson:"ail,omitempty"`
	CategoryRef1 primitive.ObjectID `bson:"cId1,omitempty"`
	CategoryRef2 primitive.ObjectID `bson:"cId2,omitempty"`
	CategoryL1   string             `bson:"c1n,omitempty"`
	CategoryL2   string             `bson:"c2n,omitempty"`
	CategoryL3   string             `bson:"c3n,omitempty"`
	CategoryL4   string             `bson:"c4n,omitempty"`
	Title        string             `bson:"tt,omitempty"`
	Score        float64            `bson:"ps,omitempty"`
	Reviews      int64              `bson:"rn,omitempty"`
	SkuInfo      SkuInfo            `bson:"sku_info"`
}

// BaseFields holds the product-level attributes refreshed on every run.
// Zero values are treated as "source did not supply it" and are not written.
type BaseFields struct {
	Volume       int64
	PromoLink    string
	ImageLink    string
	ExtraImages  []string
	CategoryRef1 primitive.ObjectID
	CategoryRef2 primitive.ObjectID
	CategoryL1   string
	CategoryL2   string
	CategoryL3   string
	CategoryL4   string
	Title        string
	Score        float64
	Reviews      int64
}
