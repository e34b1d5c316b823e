// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pet-doctor/internal/common/config"
	"pet-doctor/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Client wraps the Zeebe gRPC client used by the consultation job workers.
type Client struct {
	zeebe   zbc.Client
	retry   RetryConfig
	timeout time.Duration
	logger  logger.Logger
}

// RetryConfig defines retry behavior for transient broker failures.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = RetryConfig{
	MaxRetries: 3,
	BaseDelay:  1 * time.Second,
	MaxDelay:   10 * time.Second,
}

// NewClient connects to the broker and verifies the topology before returning.
func NewClient(ctx context.Context, cfg config.CamundaConfig, log logger.Logger) (*Client, error) {
	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	c := &Client{
		zeebe:   zeebeClient,
		retry:   DefaultRetryConfig,
		timeout: config.GetDuration(cfg.RequestTimeout),
		logger:  log.WithFields(map[string]interface{}{"component": "zeebe", "gateway": cfg.BrokerAddress}),
	}

	if err := c.ExecuteWithRetry(ctx, "topology", c.HealthCheck); err != nil {
		_ = zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", cfg.BrokerAddress, err)
	}
	return c, nil
}

// Zeebe returns the raw client for opening job workers.
func (c *Client) Zeebe() zbc.Client {
	return c.zeebe
}

func (c *Client) Close() error {
	return c.zeebe.Close()
}

// ExecuteWithRetry runs op with exponential backoff. Only transient errors
// are retried.
func (c *Client) ExecuteWithRetry(ctx context.Context, name string, op func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryableZeebeError(err) || attempt == c.retry.MaxRetries {
			break
		}

		delay := backoffDelay(attempt, c.retry.BaseDelay, c.retry.MaxDelay)
		c.logger.Warn("zeebe operation failed, retrying", map[string]interface{}{
			"operation": name,
			"attempt":   attempt + 1,
			"delay":     delay.String(),
			"error":     err.Error(),
		})

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("operation %s cancelled after %d attempts: %w", name, attempt+1, ctx.Err())
		}
	}
	return fmt.Errorf("zeebe operation %s failed: %w", name, lastErr)
}

// HealthCheck asks the broker for its topology.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if _, err := c.zeebe.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

func backoffDelay(attempt int, base, max time.Duration) time.Duration {
	delay := base * time.Duration(1<<attempt)
	if delay > max {
		return max
	}
	return delay
}

// IsRetryableZeebeError reports whether err looks like a transient transport failure.
func IsRetryableZeebeError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
		"broken pipe",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
