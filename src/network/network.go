package network

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"series-proxy/src/helpers"
	"series-proxy/src/logger"
	"series-proxy/src/models"

	"golang.org/x/time/rate"
)

const (
	maxBodyBytes     = 4 << 20
	defaultUserAgent = "series-proxy/1.0"
)

// secret query parameters never written to logs or error messages
var secretParams = []string{"api_key"}

// -----------------------------------------------------------------------------

type AsyncNetworkManager struct {
	Config  *models.MConfig
	Client  *http.Client
	Limiter *rate.Limiter
	Logger  *logger.Logger
	Timeout time.Duration
}

// -----------------------------------------------------------------------------

func NewAsyncNetworkManager(cfg *models.MConfig, log *logger.Logger) *AsyncNetworkManager {
	perMinute := cfg.Network.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 120
	}
	burst := cfg.Network.Burst
	if burst <= 0 {
		burst = 1
	}

	nm := &AsyncNetworkManager{
		Config:  cfg,
		Limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst),
		Logger:  log,
		Timeout: time.Duration(cfg.Network.RequestTimeout) * time.Second,
	}
	if nm.Timeout <= 0 {
		nm.Timeout = 10 * time.Second
	}
	nm.Client = nm.createClient()
	return nm
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) createClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyStr := nm.Config.Network.Proxy; proxyStr != "" {
		if ValidateProxy(proxyStr) {
			proxyURL, err := url.Parse(FormatProxy(proxyStr))
			if err == nil {
				transport.Proxy = http.ProxyURL(proxyURL)
			}
		} else {
			nm.Logger.Warning("Ignoring invalid proxy %q", proxyStr)
		}
	}

	agent := nm.Config.Network.UserAgent
	if agent == "" {
		agent = defaultUserAgent
	}

	// The per-call context carries the deadline, see Get.
	return &http.Client{
		Transport: userAgentTransport{agent: agent, base: transport},
	}
}

// -----------------------------------------------------------------------------

// Get performs one rate limited GET request bounded by the configured timeout.
func (nm *AsyncNetworkManager) Get(ctx context.Context, urlStr string, params map[string]string) (*models.MUpstreamResponse, error) {
	reqUrl, err := url.Parse(urlStr)
	if err != nil {
		return nil, helpers.NewNetworkError("invalid upstream url", err)
	}

	q := reqUrl.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	reqUrl.RawQuery = q.Encode()

	ctx, cancel := context.WithTimeout(ctx, nm.Timeout)
	defer cancel()

	if err := nm.Limiter.Wait(ctx); err != nil {
		return nil, helpers.NewNetworkError("rate limit wait aborted", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqUrl.String(), nil)
	if err != nil {
		return nil, helpers.NewNetworkError("failed to build request", err)
	}

	start := time.Now()
	resp, err := nm.Client.Do(req)
	if err != nil {
		nm.Logger.Info("Request to %s failed after %v: %v", RedactURL(reqUrl), time.Since(start), stripURL(err))
		return nil, helpers.NewNetworkError("request failed", stripURL(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, helpers.NewNetworkError("failed to read response body", stripURL(err))
	}

	nm.Logger.Debug("GET %s -> %d in %v", RedactURL(reqUrl), resp.StatusCode, time.Since(start))

	return &models.MUpstreamResponse{StatusCode: resp.StatusCode, Body: body}, nil
}

// -----------------------------------------------------------------------------

// stripURL drops the request URL (which carries the credential) from
// transport errors.
func stripURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}

// -----------------------------------------------------------------------------

// RedactURL renders u with secret query parameters masked.
func RedactURL(u *url.URL) string {
	clone := *u
	q := clone.Query()
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, "REDACTED")
		}
	}
	clone.RawQuery = q.Encode()
	return clone.String()
}

// -----------------------------------------------------------------------------

type userAgentTransport struct {
	agent string
	base  http.RoundTripper
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.agent)
	return t.base.RoundTrip(req)
}

// -----------------------------------------------------------------------------

// ValidateProxy checks if a proxy string is roughly valid.
func ValidateProxy(proxyStr string) bool {
	u, err := url.Parse(FormatProxy(proxyStr))
	return err == nil && u.Host != "" && (u.Scheme == "http" || u.Scheme == "https" || u.Scheme == "socks5")
}

// -----------------------------------------------------------------------------

// FormatProxy ensures the proxy has a scheme.
func FormatProxy(proxyStr string) string {
	if !strings.Contains(proxyStr, "://") {
		return "http://" + proxyStr
	}
	return proxyStr
}
