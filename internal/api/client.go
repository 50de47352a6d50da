package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"jobboard/common/telemetry"
	"jobboard/internal/errors"

	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobboard/api")

const (
	DefaultBaseURL = "http://localhost:5000/api"
	DefaultTimeout = 10 * time.Second
)

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client performs authenticated JSON calls against the job-board API. The
// bearer token is read when each request is built.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger

	mu             sync.RWMutex
	token          string
	onUnauthorized []func()
}

func NewClient(logger *zap.Logger, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		client:  httpClient,
		logger:  logger,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) ClearToken() {
	c.SetToken("")
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// OnUnauthorized registers fn to run after any 401 response. The client has
// already dropped its token when fn runs.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = append(c.onUnauthorized, fn)
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// call sends a JSON request and decodes a JSON response into out (when non-nil).
func (c *Client) call(ctx context.Context, op, method, path string, params, body, out interface{}) error {
	raw, err := c.send(ctx, op, method, path, params, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Error("failed to decode response", zap.String("op", op), zap.Error(err))
		return errors.Internal("decoding response", err)
	}
	return nil
}

// send performs the request and returns the raw body of a 2xx response.
func (c *Client) send(ctx context.Context, op, method, path string, params, body interface{}) ([]byte, error) {
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	target, err := c.buildURL(path, params)
	if err != nil {
		span.RecordError(err)
		return nil, errors.InvalidInput("encoding query", err)
	}
	span.SetAttributes(
		telemetry.String("http.method", method),
		telemetry.String("http.url", target),
	)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			span.RecordError(err)
			return nil, errors.Internal("marshaling request body", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Internal("creating request", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	telemetry.Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		c.logger.Error("failed to execute request",
			zap.String("op", op),
			zap.String("request_id", requestID),
			zap.Error(err))
		if ctx.Err() != nil {
			return nil, errors.Unavailable("request cancelled", ctx.Err())
		}
		return nil, errors.Unavailable("executing request", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	span.SetAttributes(telemetry.Int("http.status_code", resp.StatusCode))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Unavailable("reading response", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		message := eb.Message
		if message == "" {
			message = eb.Error
		}
		c.logger.Error("unexpected status code",
			zap.String("op", op),
			zap.String("request_id", requestID),
			zap.Int("status_code", resp.StatusCode),
			zap.String("message", message))
		return nil, errors.FromResponse(resp.StatusCode, message, raw)
	}

	c.logger.Debug("request completed",
		zap.String("op", op),
		zap.String("request_id", requestID),
		zap.Int("status_code", resp.StatusCode))
	return raw, nil
}

func (c *Client) buildURL(path string, params interface{}) (string, error) {
	target := c.baseURL + path
	if params == nil {
		return target, nil
	}
	values, err := query.Values(params)
	if err != nil {
		return "", err
	}
	if len(values) == 0 {
		return target, nil
	}
	return target + "?" + values.Encode(), nil
}

func (c *Client) handleUnauthorized() {
	c.mu.Lock()
	c.token = ""
	hooks := make([]func(), len(c.onUnauthorized))
	copy(hooks, c.onUnauthorized)
	c.mu.Unlock()

	c.logger.Warn("received 401, dropping session token")
	for _, fn := range hooks {
		fn()
	}
}

func escape(id string) string {
	return url.PathEscape(id)
}

func idPath(format, id string) string {
	return fmt.Sprintf(format, escape(id))
}
