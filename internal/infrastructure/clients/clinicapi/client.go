// Package clinicapi talks to the clinic platform services (auth, clinic and
// patient service) over their HTTP/JSON contracts.
package clinicapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zatekoja/dentalbooking/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/dentalbooking/backend/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

// Options configures a platform client
type Options struct {
	Timeout    time.Duration
	Metrics    *observability.Metrics
	HTTPClient *http.Client
}

type client struct {
	service    string
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
}

func newClient(service, baseURL string, opts Options) *client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &client{
		service:    service,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		metrics:    opts.Metrics,
	}
}

func (c *client) endpoint(path string, query url.Values) (string, error) {
	parsed, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", fmt.Errorf("invalid %s url: %w", c.service, err)
	}
	if len(query) > 0 {
		parsed.RawQuery = query.Encode()
	}
	return parsed.String(), nil
}

// doJSON performs one request. Transport failures and non-2xx answers are
// returned as *apperrors.UpstreamError; out receives the decoded 2xx body.
func (c *client) doJSON(ctx context.Context, operation, method, endpoint string, body any, out any) error {
	ctx, span := observability.StartSpan(ctx, c.service+" "+operation)
	defer span.End()
	observability.SetSpanAttributes(span,
		attribute.String("peer.service", c.service),
		attribute.String("http.method", method),
	)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", operation, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.RecordUpstreamMetric(ctx, c.metrics, c.service, operation, 0, time.Since(start))
		upstream := &apperrors.UpstreamError{Service: c.service, Operation: operation, Err: err}
		observability.RecordError(span, upstream)
		return upstream
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	observability.RecordUpstreamMetric(ctx, c.metrics, c.service, operation, resp.StatusCode, time.Since(start))
	observability.SetSpanAttributes(span, attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		upstream := &apperrors.UpstreamError{
			Service:    c.service,
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Err:        readErr,
		}
		upstream.Message, upstream.ErrorText = decodeErrorPayload(raw)
		observability.RecordError(span, upstream)
		return upstream
	}
	if readErr != nil {
		return fmt.Errorf("failed to read %s response: %w", operation, readErr)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		observability.RecordError(span, err)
		return fmt.Errorf("failed to decode %s response: %w", operation, err)
	}
	return nil
}
