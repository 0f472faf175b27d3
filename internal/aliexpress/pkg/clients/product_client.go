package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"gopricetracker/internal/aliexpress/business/dto/responses"
	"gopricetracker/pkg/logger"
)

const productDetailMethod = "aliexpress.affiliate.productdetail.get"

// ProductDetailClient is the fallback fetch used to backfill a missing volume
// or promotion link before reconciliation runs.
type ProductDetailClient struct {
	apiClient
	limiter *rate.Limiter
	log     logger.Logger
}

func NewProductDetailClient(host string, signer *Signer, limiter *rate.Limiter, log logger.Logger) *ProductDetailClient {
	return &ProductDetailClient{
		apiClient: newAPIClient(host, signer),
		limiter:   limiter,
		log:       log,
	}
}

type productDetailEnvelope struct {
	Error  *errorBody                      `json:"error_response"`
	Result responses.ProductDetailResponse `json:"result"`
}

func (c *ProductDetailClient) GetProductDetails(ctx context.Context, productIDs []string) (*responses.ProductDetailResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	body, err := c.get(ctx, productDetailMethod, map[string]string{
		"product_ids": strings.Join(productIDs, ","),
	})
	if err != nil {
		return nil, err
	}
	var payload productDetailEnvelope
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode product details: %w", err)
	}
	if payload.Error != nil {
		return nil, payload.Error.toError()
	}
	return &payload.Result, nil
}
