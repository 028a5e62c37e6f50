package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"wsync/internal/asset"
	"wsync/internal/checksum"
)

const (
	// DefaultMaxRetries is the number of retries for transient failures.
	DefaultMaxRetries = 3
	// DefaultRetryBaseDelay is the first backoff step.
	DefaultRetryBaseDelay = 100 * time.Millisecond
	// DefaultRequestTimeout bounds a single HTTP request.
	DefaultRequestTimeout = 30 * time.Second
)

// RemoteSource is an HTTP client AssetSource backed by a provider process.
// Transient transport failures are retried with exponential backoff; a 404
// is surfaced as a NotFoundError and never retried.
type RemoteSource struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
	retry   retryConfig
}

// retryConfig configures retry behavior.
type retryConfig struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

func defaultRetryConfig() retryConfig {
	return retryConfig{
		maxRetries: DefaultMaxRetries,
		baseDelay:  DefaultRetryBaseDelay,
		maxDelay:   5 * time.Second,
	}
}

// RemoteOption customizes a RemoteSource.
type RemoteOption func(*RemoteSource)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) RemoteOption {
	return func(r *RemoteSource) { r.client = client }
}

// WithMaxRetries overrides the retry count for transient failures.
func WithMaxRetries(n int) RemoteOption {
	return func(r *RemoteSource) { r.retry.maxRetries = n }
}

// WithRetryBaseDelay overrides the first backoff step.
func WithRetryBaseDelay(d time.Duration) RemoteOption {
	return func(r *RemoteSource) { r.retry.baseDelay = d }
}

// NewRemoteSource creates a client for the provider at baseURL.
func NewRemoteSource(baseURL string, logger *slog.Logger, opts ...RemoteOption) *RemoteSource {
	r := &RemoteSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: DefaultRequestTimeout},
		logger:  logger,
		retry:   defaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetAsset resolves one checksum via GET /assets/{checksum}.
func (r *RemoteSource) GetAsset(ctx context.Context, path asset.Path, sum checksum.Checksum) (asset.Record, error) {
	query := url.Values{"kind": {string(path.Kind)}}
	if path.Owner != "" {
		query.Set("owner", path.Owner)
	}

	body, err := r.doRequest(ctx, http.MethodGet, "/assets/"+sum.String(), nil, query, path, sum)
	if err != nil {
		return asset.Record{}, err
	}

	var wire WireAsset
	if err := json.Unmarshal(body, &wire); err != nil {
		return asset.Record{}, fmt.Errorf("invalid asset response: %w", err)
	}
	return r.verify(path, sum, wire)
}

// GetAssets resolves a set of checksums via one POST /assets/batch call.
func (r *RemoteSource) GetAssets(ctx context.Context, path asset.Path, sums []checksum.Checksum, onEach func(checksum.Checksum, asset.Record)) error {
	requested := make(map[checksum.Checksum]struct{}, len(sums))
	unique := make([]checksum.Checksum, 0, len(sums))
	for _, sum := range sums {
		if _, ok := requested[sum]; !ok {
			requested[sum] = struct{}{}
			unique = append(unique, sum)
		}
	}
	if len(unique) == 0 {
		return nil
	}

	reqBody, err := json.Marshal(BatchRequest{
		Kind:      string(path.Kind),
		Owner:     path.Owner,
		Checksums: unique,
	})
	if err != nil {
		return fmt.Errorf("failed to encode batch request: %w", err)
	}

	body, err := r.doRequest(ctx, http.MethodPost, "/assets/batch", reqBody, nil, path, checksum.Zero)
	if err != nil {
		return err
	}

	var resp BatchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("invalid batch response: %w", err)
	}

	resolved := make(map[checksum.Checksum]struct{}, len(resp.Assets))
	for _, wire := range resp.Assets {
		if _, ok := requested[wire.Checksum]; !ok {
			return fmt.Errorf("batch response contains unrequested checksum %s", wire.Checksum)
		}
		if _, ok := resolved[wire.Checksum]; ok {
			continue
		}
		rec, err := r.verify(path, wire.Checksum, wire)
		if err != nil {
			return err
		}
		resolved[wire.Checksum] = struct{}{}
		onEach(wire.Checksum, rec)
	}

	for _, sum := range unique {
		if _, ok := resolved[sum]; !ok {
			return &NotFoundError{Path: path, Checksum: sum}
		}
	}
	return nil
}

// verify recomputes the payload checksum before handing it to the caller.
func (r *RemoteSource) verify(path asset.Path, sum checksum.Checksum, wire WireAsset) (asset.Record, error) {
	rec := asset.Record{Kind: asset.Kind(wire.Kind), Data: wire.Data}
	if actual := rec.Checksum(); actual != sum {
		return asset.Record{}, &MismatchError{Kind: rec.Kind, Expected: sum, Actual: actual}
	}
	return rec, nil
}

// doRequest performs an HTTP request with retry on transient failures. A 404
// maps to NotFoundError immediately; other non-2xx statuses and transport
// errors back off and retry up to the configured limit.
func (r *RemoteSource) doRequest(ctx context.Context, method, path string, body []byte, query url.Values, assetPath asset.Path, sum checksum.Checksum) ([]byte, error) {
	u, err := url.Parse(r.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid provider URL: %w", err)
	}
	u.Path = path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= r.retry.maxRetries; attempt++ {
		if attempt > 0 {
			delay := r.retry.baseDelay * time.Duration(1<<uint(attempt-1))
			if delay > r.retry.maxDelay {
				delay = r.retry.maxDelay
			}

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}

			if r.logger != nil {
				r.logger.Debug("Retrying asset request",
					"attempt", attempt+1,
					"url", u.String(),
				)
			}
		}

		var reqBody io.Reader
		if body != nil {
			reqBody = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := r.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				lastErr = fmt.Errorf("failed to read response: %w", readErr)
				continue
			}
			return respBody, nil
		case resp.StatusCode == http.StatusNotFound:
			missing := sum
			var errResp ErrorResponse
			if readErr == nil && json.Unmarshal(respBody, &errResp) == nil && errResp.Checksum != "" {
				if parsed, perr := checksum.Parse(errResp.Checksum); perr == nil {
					missing = parsed
				}
			}
			return nil, &NotFoundError{Path: assetPath, Checksum: missing}
		default:
			lastErr = fmt.Errorf("provider returned status %d", resp.StatusCode)
			continue
		}
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", r.retry.maxRetries+1, lastErr)
}
