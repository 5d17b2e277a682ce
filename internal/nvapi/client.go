// Package nvapi talks to the NvLabs API, the NSU link shortener and Reddit.
// Responses are loosely shaped JSON, so fields are plucked with gjson rather
// than decoded into fixed structs.
package nvapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/keshon/nvbot/internal/metrics"
	"github.com/keshon/nvbot/pkg/retrylimit"
)

const (
	UserAgent = "DiscordBot/1.0.0"

	DefaultBaseURL      = "https://nvlabs.my.id"
	DefaultShortBaseURL = "https://nsu.my.id"
	DefaultRedditURL    = "https://www.reddit.com"

	maxBody = 16 << 20
)

type Options struct {
	BaseURL      string
	ShortBaseURL string
	RedditURL    string
	Timeout      time.Duration
	Rate         float64 // requests per second across all endpoints
	HTTPClient   *http.Client
	Metrics      *metrics.Metrics
	Log          zerolog.Logger
	Retry        *retrylimit.Config
}

type Client struct {
	base    string
	short   string
	reddit  string
	http    *http.Client
	limiter *retrylimit.AdaptiveLimiter
	retry   retrylimit.Config
	metrics *metrics.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	rps := opts.Rate
	if rps <= 0 {
		rps = 5
	}
	retry := retrylimit.DefaultConfig()
	if opts.Retry != nil {
		retry = *opts.Retry
	}
	return &Client{
		base:    strings.TrimRight(or(opts.BaseURL, DefaultBaseURL), "/"),
		short:   strings.TrimRight(or(opts.ShortBaseURL, DefaultShortBaseURL), "/"),
		reddit:  strings.TrimRight(or(opts.RedditURL, DefaultRedditURL), "/"),
		http:    hc,
		limiter: retrylimit.NewAdaptiveLimiter(rate.Limit(rps), rate.Limit(rps/4), rate.Limit(rps*2), 0.5, 0.5),
		retry:   retry,
		metrics: opts.Metrics,
		log:     opts.Log,
		now:     time.Now,
	}
}

// ShortLinkURL is the public redirect address for a slug.
func (c *Client) ShortLinkURL(slug string) string {
	return c.short + "/r/" + url.PathEscape(slug)
}

type response struct {
	status      int
	contentType string
	body        []byte
}

// get performs a rate-limited GET with retries on overload. Any failure comes
// back as *UpstreamUnavailableError.
func (c *Client) get(ctx context.Context, endpoint, rawURL, accept string) (*response, error) {
	var resp *response
	err := retrylimit.WithRetryConfig(ctx, func() error {
		r, err := c.do(ctx, endpoint, rawURL, accept)
		if err != nil {
			var ue *UpstreamUnavailableError
			if errors.As(err, &ue) && ue.Status >= 400 && ue.Status < 500 && ue.Status != http.StatusTooManyRequests {
				return retrylimit.Fatal(err)
			}
			return err
		}
		resp = r
		return nil
	}, c.limiter, c.retry, c.log.With().Str("endpoint", endpoint).Logger())
	if err != nil {
		var ue *UpstreamUnavailableError
		if errors.As(err, &ue) {
			return nil, ue
		}
		return nil, &UpstreamUnavailableError{Endpoint: endpoint, Err: err}
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, endpoint, rawURL, accept string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, retrylimit.Fatal(&UpstreamUnavailableError{Endpoint: endpoint, Err: err})
	}
	req.Header.Set("User-Agent", UserAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(endpoint, "error")
		c.log.Warn().Err(err).Str("endpoint", endpoint).Msg("Upstream request failed")
		return nil, &UpstreamUnavailableError{Endpoint: endpoint, Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	c.metrics.ObserveUpstream(endpoint, strconv.Itoa(res.StatusCode))
	c.log.Debug().
		Str("endpoint", endpoint).
		Int("status", res.StatusCode).
		Dur("took", time.Since(start)).
		Int("bytes", len(body)).
		Msg("Upstream response")
	if err != nil {
		return nil, &UpstreamUnavailableError{Endpoint: endpoint, Status: res.StatusCode, Err: err}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &UpstreamUnavailableError{
			Endpoint: endpoint,
			Status:   res.StatusCode,
			Message:  gjson.GetBytes(body, "message").String(),
			Err:      fmt.Errorf("http %d: %s", res.StatusCode, truncate(body)),
		}
	}
	return &response{status: res.StatusCode, contentType: res.Header.Get("Content-Type"), body: body}, nil
}

// getJSON is get plus a validity check on the body.
func (c *Client) getJSON(ctx context.Context, endpoint, rawURL string) (gjson.Result, error) {
	resp, err := c.get(ctx, endpoint, rawURL, "application/json")
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(resp.body) {
		return gjson.Result{}, &UpstreamUnavailableError{
			Endpoint: endpoint,
			Status:   resp.status,
			Err:      fmt.Errorf("invalid json: %s", truncate(resp.body)),
		}
	}
	return gjson.ParseBytes(resp.body), nil
}

func (c *Client) endpointURL(base, path string, q url.Values) string {
	u := base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func truncate(b []byte) string {
	if len(b) > 200 {
		return string(b[:200]) + "..."
	}
	return string(b)
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
