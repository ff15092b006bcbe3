package quote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog"

	"github.com/etnz/holdings"
)

// Provider fetches quote data from an origin. Implementations classify
// their failures: a rate-limit signal wraps ErrRateLimited, anything else
// wraps ErrUnavailable.
type Provider interface {
	Quote(ctx context.Context, securityID string) (Quote, error)
	Daily(ctx context.Context, securityID string) ([]Point, error)
}

// historyCap bounds a daily series to the most recent trading days.
const historyCap = 90

// Client is the HTTP quote provider. The provider speaks literal HTTP 200
// even when refusing to serve: quota exhaustion is signalled by a
// rate-notice field, or an "informational" field in lieu of data, inside
// the JSON payload. Classification therefore reads the parsed content, not
// the transport status.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	log      zerolog.Logger
}

// NewClient returns a provider client for the given boundary configuration.
func NewClient(cfg holdings.ProviderConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		http:     http.DefaultClient,
		log:      zerolog.Nop(),
	}
}

// WithHTTPClient replaces the underlying HTTP client (tests, proxies).
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// WithLogger sets the request logger.
func (c *Client) WithLogger(log zerolog.Logger) *Client {
	c.log = log
	return c
}

// fetch performs a GET for one request kind and returns the decoded JSON
// payload, classifying rate-limit markers on the way.
func (c *Client) fetch(ctx context.Context, kind, securityID string) (any, error) {
	q := url.Values{}
	q.Set("function", kind)
	q.Set("symbol", securityID)
	q.Set("apikey", c.apiKey)
	addr := c.endpoint + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	c.log.Debug().Str("kind", kind).Str("security", securityID).Str("status", resp.Status).Msg("provider request")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: http %s", ErrUnavailable, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var jobj any
	if err := json.Unmarshal(buf.Bytes(), &jobj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// The provider answers 200 with a notice payload when the quota is
	// exhausted.
	if obj, ok := jobj.(map[string]any); ok {
		if note, ok := obj["Note"].(string); ok {
			return nil, fmt.Errorf("%w: %s", ErrRateLimited, note)
		}
		if info, ok := obj["Information"].(string); ok {
			return nil, fmt.Errorf("%w: %s", ErrRateLimited, info)
		}
	}
	return jobj, nil
}

// Quote fetches the current quote of one security.
func (c *Client) Quote(ctx context.Context, securityID string) (Quote, error) {
	jobj, err := c.fetch(ctx, "GLOBAL_QUOTE", securityID)
	if err != nil {
		return Quote{}, err
	}

	price, err := jnumber(jobj, `$["Global Quote"]["05. price"]`)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	// Change fields are best-effort: a quote without them is still a quote.
	change, _ := jnumber(jobj, `$["Global Quote"]["09. change"]`)
	percent, _ := jnumber(jobj, `$["Global Quote"]["10. change percent"]`)

	return Quote{
		SecurityID:    securityID,
		Price:         price,
		Change:        change,
		ChangePercent: percent,
	}, nil
}

// Daily fetches the daily close history of one security, normalized to
// ascending calendar order and truncated to the most recent points. The
// source ordering is unspecified, so the series is re-sorted by date rather
// than trusted.
func (c *Client) Daily(ctx context.Context, securityID string) ([]Point, error) {
	jobj, err := c.fetch(ctx, "TIME_SERIES_DAILY", securityID)
	if err != nil {
		return nil, err
	}

	jdays, err := jsonpath.Get(`$["Time Series (Daily)"]`, jobj)
	if err != nil {
		return nil, fmt.Errorf("%w: missing daily series: %v", ErrUnavailable, err)
	}
	days, ok := jdays.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: daily series is not an object", ErrUnavailable)
	}

	type candle struct {
		close  float64
		volume int64
	}
	var history holdings.History[candle]
	for day, jentry := range days {
		on := holdings.ParseRowDate(day)
		if on.IsZero() {
			continue
		}
		close, err := jnumber(jentry, `$["4. close"]`)
		if err != nil {
			continue
		}
		volume, _ := jnumber(jentry, `$["5. volume"]`)
		history.Append(on, candle{close: close, volume: int64(volume)})
	}
	history.Truncate(historyCap)

	points := make([]Point, 0, history.Len())
	for on, cd := range history.All() {
		points = append(points, Point{Date: on, Close: cd.close, Volume: cd.volume})
	}
	return points, nil
}

// jnumber extracts a numeric value at a jsonpath, tolerating the provider's
// habit of sending numbers as strings (sometimes with a trailing "%").
func jnumber(jobj any, path string) (float64, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return 0, err
	}
	switch v := jval.(type) {
	case float64:
		return v, nil
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "%"))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("value at %q is not a number: %q", path, v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("value at %q is not a number: %v", path, jval)
	}
}
