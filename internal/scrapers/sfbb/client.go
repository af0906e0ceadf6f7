// client.go contains the http client used for everything fetched from smart
// fantasy baseball and the google sheets it links to.

package sfbb

import (
	"context"
	"fmt"
	"mlbids/internal/components/assert"
	"mlbids/internal/components/telemetry"
	"mlbids/lib/restyutil"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_client_fetch = "client.fetch"
)

// DefaultUserAgent is sent with every request, the site rejects the default
// user agents of http libraries.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

// TransportError is returned when a request fails or comes back with a non-2xx
// status. Timeouts are transport errors as well.
type TransportError struct {
	URL string
	// StatusCode is 0 when no response was received.
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("GET %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type ClientOptions struct {
	// UserAgent defaults to DefaultUserAgent.
	UserAgent string
	// Timeout bounds every request, it defaults to 30 seconds.
	Timeout time.Duration
	// RequestsPerSecond limits the request rate, a value <= 0 disables the limit.
	RequestsPerSecond float64
	// DisableCloudflareBypass keeps the transport untouched.
	DisableCloudflareBypass bool
	// Dump receives every http exchange when it is not nil.
	Dump restyutil.Output
}

// Client fetches raw documents. It holds no state between requests besides the
// rate limiter.
type Client struct {
	http *resty.Client
	tel  telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) *Client {
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("sfbb_client", tel)

	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	httpClient := resty.New()
	if !opts.DisableCloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	httpClient.SetHeader("user-agent", opts.UserAgent)
	// the download links redirect from the site to google sheets
	httpClient.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	httpClient.SetTimeout(opts.Timeout)

	if opts.RequestsPerSecond > 0 {
		// burst >= 1 just means that no requests will be dropped
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel)
	restyutil.Instrument(httpClient, telemetry.Tracer("mlbids/internal/scrapers/sfbb"), opts.Dump)

	return &Client{http: httpClient, tel: tel}
}

// Fetch GETs `link` and returns the response body, there are no retries.
func (c *Client) Fetch(ctx context.Context, link string) ([]byte, error) {
	c.tel.ReportDebug(report_client_fetch, link)

	res, err := c.http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		c.tel.ReportBroken(
			report_client_fetch,
			fmt.Errorf("request: %w", err),
			link,
		)
		return nil, &TransportError{URL: link, Err: err}
	}
	if res.IsError() {
		err := fmt.Errorf("unexpected status %q", res.Status())
		c.tel.ReportBroken(report_client_fetch, err, link)
		return nil, &TransportError{
			URL:        link,
			StatusCode: res.StatusCode(),
			Err:        err,
		}
	}

	return res.Body(), nil
}
