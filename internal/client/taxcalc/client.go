package taxcalc

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	httpclient "github.com/plateful/tax-reporter/internal/client/http"
	"github.com/plateful/tax-reporter/internal/logger"
)

const suppliesPath = "/v2/supplies"

// Client calls the external tax-computation service.
type Client struct {
	http  *httpclient.Client
	token string
}

// NewClient builds a tax-computation client against the given base URL.
// The service is slow on cold caches; the timeout is deliberately generous.
func NewClient(baseURL, token string) *Client {
	return &Client{
		http: httpclient.NewClient(
			httpclient.WithBaseURL(baseURL),
			httpclient.WithTimeout(20*time.Second),
		),
		token: token,
	}
}

// CalculateTax posts a supply document and returns the computed result.
func (c *Client) CalculateTax(ctx context.Context, req *Request) (*Result, error) {
	resp, err := c.http.Post(ctx, suppliesPath, req, httpclient.WithBearerToken(c.token))
	if err != nil {
		return nil, fmt.Errorf("tax computation request for document %s: %w", req.DocumentNumber, err)
	}

	var envelope resultEnvelope
	if err := c.http.ProcessJSONResponse(resp, &envelope); err != nil {
		return nil, fmt.Errorf("decoding tax computation response for document %s: %w", req.DocumentNumber, err)
	}

	logger.Debug("tax computation succeeded",
		zap.String("documentNumber", req.DocumentNumber),
		zap.Int("lineItems", len(envelope.Data.LineItems)),
		zap.String("totalTax", envelope.Data.TotalTax.String()))

	return &envelope.Data, nil
}
