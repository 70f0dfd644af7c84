package orderbus

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	httpclient "github.com/plateful/tax-reporter/internal/client/http"
	"github.com/plateful/tax-reporter/internal/logger"
)

// Client publishes messages through the HTTP bridge of the message bus. The
// bridge accepts a raw message body and forwards it to the named topic under
// the given partition key.
type Client struct {
	http *httpclient.Client
}

// NewClient builds a publisher against the bridge base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		http: httpclient.NewClient(
			httpclient.WithBaseURL(baseURL),
			httpclient.WithTimeout(20*time.Second),
		),
	}
}

// Publish posts the payload to the topic keyed by key. Any non-200 response
// is a failure.
func (c *Client) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	path := fmt.Sprintf("/_sys/kafka/topic/%s/key/%s/handle", topic, key)

	resp, err := c.http.Post(ctx, path, payload)
	if err != nil {
		return fmt.Errorf("publishing to topic %s with key %s: %w", topic, key, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != 200 {
		return fmt.Errorf("publish to topic %s with key %s returned status %d", topic, key, resp.StatusCode)
	}

	logger.Debug("published message",
		zap.String("topic", topic),
		zap.String("key", key))
	return nil
}
