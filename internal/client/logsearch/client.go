package logsearch

import (
	"context"
	"fmt"
	"time"

	httpclient "github.com/plateful/tax-reporter/internal/client/http"
)

// Client queries the operational log-search index over its HTTP search API.
type Client struct {
	http     *httpclient.Client
	apiKey   string
	username string
	password string
}

// NewClient builds a log-search client. Both an API key and basic auth are
// sent when configured; the cluster accepts either.
func NewClient(baseURL, apiKey, username, password string) *Client {
	return &Client{
		http: httpclient.NewClient(
			httpclient.WithBaseURL(baseURL),
			httpclient.WithTimeout(10*time.Second),
		),
		apiKey:   apiKey,
		username: username,
		password: password,
	}
}

func (c *Client) requestOptions() []httpclient.RequestOption {
	var opts []httpclient.RequestOption
	if c.apiKey != "" {
		opts = append(opts, httpclient.WithHeader("Authorization", "ApiKey "+c.apiKey))
	}
	if c.username != "" && c.password != "" {
		opts = append(opts, httpclient.WithBasicAuth(c.username, c.password))
	}
	return opts
}

func (c *Client) search(ctx context.Context, index string, query map[string]interface{}) ([]Hit, error) {
	resp, err := c.http.Post(ctx, "/"+index+"/_search", query, c.requestOptions()...)
	if err != nil {
		return nil, fmt.Errorf("searching index %s: %w", index, err)
	}

	var envelope hitsEnvelope
	if err := c.http.ProcessJSONResponse(resp, &envelope); err != nil {
		return nil, fmt.Errorf("decoding search response from index %s: %w", index, err)
	}
	return envelope.Hits.Hits, nil
}

// SearchActions pages through action documents matching the query, sorted by
// timestamp ascending.
func (c *Client) SearchActions(ctx context.Context, index string, q ActionQuery) ([]Hit, error) {
	must := []map[string]interface{}{}
	if q.App != "" {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"app": q.App}})
	}
	if q.Action != "" {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"action": q.Action}})
	}
	if q.OrderID != "" {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"context.order_id": q.OrderID}})
	}
	if q.ErrorCode != "" {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"error_code": q.ErrorCode}})
	}

	query := map[string]interface{}{
		"from": q.From,
		"size": q.Size,
		"sort": []map[string]interface{}{
			{"@timestamp": map[string]interface{}{"order": "asc"}},
		},
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"must": must},
		},
	}

	return c.search(ctx, index, query)
}

// GetByDocID fetches documents by their index ids.
func (c *Client) GetByDocID(ctx context.Context, index string, docID string) ([]Hit, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"ids": map[string]interface{}{"values": []string{docID}},
		},
	}
	return c.search(ctx, index, query)
}
