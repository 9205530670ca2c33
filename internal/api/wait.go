package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

// WaitForHealthy polls baseURL/health once per interval until it answers
// 200 or timeout elapses.
func WaitForHealthy(ctx context.Context, baseURL string, timeout, interval time.Duration) error {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	attempts := uint(timeout / interval)
	if attempts == 0 {
		attempts = 1
	}

	httpClient := &http.Client{Timeout: 2 * time.Second}
	url := baseURL + "/health"

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := httpClient.Do(req)
			if err != nil {
				return err
			}
			_ = resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("unhealthy status: %d", resp.StatusCode)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(interval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("server at %s not healthy after %v: %w", baseURL, timeout, err)
	}
	return nil
}
