package hue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amimof/huego"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// ErrUnsupportedMethod is returned by Send for methods other than GET, PUT and POST
var ErrUnsupportedMethod = errors.New("unsupported method")

// Client sends raw commands to the Hue bridge v1 REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new bridge client.
// rateLimitRPS bounds the request rate; 0 disables limiting.
func NewClient(baseURL string, timeout time.Duration, rateLimitRPS float64) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if rateLimitRPS > 0 {
		burst := int(rateLimitRPS)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rateLimitRPS), burst)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}
}

// Close closes idle connections
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// BaseURL returns the bridge base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Send issues method against path and returns the bridge response.
// For PUT and POST the body is attached as raw text. Any status other
// than 200 is logged with the full response but is not an error.
func (c *Client) Send(ctx context.Context, method, path, body string) (*Response, error) {
	log.Info().Str("method", method).Str("path", path).Str("body", body).Msg("Sending bridge command")

	var reader io.Reader
	switch method {
	case http.MethodGet:
	case http.MethodPut, http.MethodPost:
		reader = strings.NewReader(body)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if reader != nil {
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(method, "error").Inc()
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	resp := &Response{
		Method:     method,
		Path:       path,
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Header:     httpResp.Header,
		Body:       data,
	}
	requestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

	log.Info().Int("status", resp.StatusCode).Str("method", method).Str("path", path).Msg("Bridge responded")
	if !resp.OK() {
		log.Warn().Str("response", resp.String()).Msg("Bridge returned non-OK status")
	}

	return resp, nil
}

// Lights returns every light registered on the bridge
func (c *Client) Lights(ctx context.Context, username string) ([]Light, error) {
	bridge := huego.New(c.baseURL, username)

	lights, err := bridge.GetLightsContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lights: %w", err)
	}

	result := make([]Light, 0, len(lights))
	for _, l := range lights {
		result = append(result, lightFromHuego(l))
	}
	return result, nil
}

// LightPath returns the v1 resource path of a light
func LightPath(username, id string) string {
	return fmt.Sprintf("/api/%s/lights/%s", username, id)
}

// StatePath returns the v1 state path of a light
func StatePath(username, id string) string {
	return LightPath(username, id) + "/state"
}
