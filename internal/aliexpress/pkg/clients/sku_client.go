package clients

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/time/rate"

	"gopricetracker/internal/aliexpress/business/dto/responses"
	"gopricetracker/pkg/logger"
)

const skuDetailMethod = "aliexpress.affiliate.sku.detail.get"

// SkuDetailClient fetches raw item metadata and the variant list per product.
type SkuDetailClient struct {
	apiClient
	limiter *rate.Limiter
	log     logger.Logger
}

func NewSkuDetailClient(host string, signer *Signer, limiter *rate.Limiter, log logger.Logger) *SkuDetailClient {
	return &SkuDetailClient{
		apiClient: newAPIClient(host, signer),
		limiter:   limiter,
		log:       log,
	}
}

type skuDetailEnvelope struct {
	Error  *errorBody                  `json:"error_response"`
	Result responses.SkuDetailResponse `json:"result"`
}

func (c *SkuDetailClient) GetSkuDetail(ctx context.Context, productID string) (*responses.SkuDetailResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	body, err := c.get(ctx, skuDetailMethod, map[string]string{"product_id": productID})
	if err != nil {
		return nil, err
	}
	var payload skuDetailEnvelope
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode sku detail for %s: %w", productID, err)
	}
	if payload.Error != nil {
		return nil, payload.Error.toError()
	}
	return &payload.Result, nil
}
