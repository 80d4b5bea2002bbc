package fetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/NamanBalaji/fget/internal/logger"
	"github.com/NamanBalaji/fget/internal/progress"
)

const (
	defaultUserAgent = "fget/1.0"
	defaultFilename  = "download"
)

// ClientConfig controls transport behavior for a Client.
type ClientConfig struct {
	ProxyURL            *url.URL
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
	IdleConnTimeout     time.Duration
	MaxRedirects        int

	DialTimeout           time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration

	TLSConfig *tls.Config

	UserAgent      string
	DefaultHeaders map[string]string
}

// DefaultClientConfig returns a ClientConfig with sensible defaults.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       16,
		IdleConnTimeout:       90 * time.Second,
		MaxRedirects:          10,
		DialTimeout:           30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		UserAgent:             defaultUserAgent,
	}
}

// ResourceInfo describes a remote resource before or while fetching it.
type ResourceInfo struct {
	URL            string
	Filename       string
	MimeType       string
	TotalSize      int64 // progress.UnknownTotal when not advertised
	SupportsRanges bool
	LastModified   time.Time
	ETag           string
	Server         string
}

// Client issues HTTP requests and hands back single-use body streams.
type Client struct {
	client    *http.Client
	transport *http.Transport
	config    ClientConfig
}

// NewClient creates a Client. A nil config uses DefaultClientConfig.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultClientConfig()
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		MaxConnsPerHost:     config.MaxConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		TLSHandshakeTimeout: config.TLSHandshakeTimeout,

		// Transparent gzip would make Content-Length and the received byte
		// count disagree, so compression stays off.
		DisableCompression: true,

		ResponseHeaderTimeout: config.ResponseHeaderTimeout,
		DialContext: (&net.Dialer{
			Timeout:   config.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	if config.ProxyURL != nil {
		transport.Proxy = http.ProxyURL(config.ProxyURL)
	}

	if config.TLSConfig != nil {
		transport.TLSClientConfig = config.TLSConfig
	}

	client := &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= config.MaxRedirects {
				return &Error{
					Kind:      KindHTTP,
					Operation: "redirect",
					URL:       req.URL.String(),
					Status:    http.StatusTooManyRequests,
					Err:       fmt.Errorf("too many redirects (max: %d)", config.MaxRedirects),
				}
			}
			return nil
		},
	}

	return &Client{
		client:    client,
		transport: transport,
		config:    *config,
	}
}

// Supports reports whether the URL uses a scheme this client can fetch.
func (c *Client) Supports(urlStr string) bool {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	scheme := strings.ToLower(parsed.Scheme)

	return scheme == "http" || scheme == "https"
}

// Probe learns what it can about a resource without consuming its body.
// HEAD first; servers that reject HEAD get a minimal Range GET, then a plain
// GET whose body is discarded unread.
func (c *Client) Probe(ctx context.Context, urlStr string, headers map[string]string) (*ResourceInfo, error) {
	if !c.Supports(urlStr) {
		return nil, &Error{Kind: KindValidation, Operation: "probe", URL: urlStr, Err: ErrUnsupportedScheme}
	}

	info, err := c.probeWithHEAD(ctx, urlStr, headers)
	if err == nil {
		return info, nil
	}
	logger.Debugf("HEAD probe failed for %s: %v", urlStr, err)

	if isFallbackStatus(err) {
		info, rangeErr := c.probeWithRangeGET(ctx, urlStr, headers)
		if rangeErr == nil {
			return info, nil
		}
		logger.Debugf("Range GET probe failed for %s: %v", urlStr, rangeErr)

		info, getErr := c.probeWithGET(ctx, urlStr, headers)
		if getErr == nil {
			return info, nil
		}
		logger.Debugf("GET probe failed for %s: %v", urlStr, getErr)
	}

	return nil, err
}

func (c *Client) probeWithHEAD(ctx context.Context, urlStr string, headers map[string]string) (*ResourceInfo, error) {
	req, err := c.newRequest(ctx, http.MethodHead, urlStr, headers)
	if err != nil {
		return nil, NewNetworkError("HEAD", urlStr, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyError("HEAD", urlStr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, NewStatusError("HEAD", urlStr, resp.StatusCode,
			fmt.Errorf("HEAD request returned status %d", resp.StatusCode))
	}

	supportsRanges := strings.Contains(strings.ToLower(resp.Header.Get("Accept-Ranges")), "bytes")

	return generateInfo(resp, supportsRanges, resp.ContentLength), nil
}

func (c *Client) probeWithRangeGET(ctx context.Context, urlStr string, headers map[string]string) (*ResourceInfo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, urlStr, headers)
	if err != nil {
		return nil, NewNetworkError("rangeGET", urlStr, err)
	}

	req.Header.Set("Range", "bytes=0-0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyError("rangeGET", urlStr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusPartialContent {
		return nil, NewStatusError("rangeGET", urlStr, resp.StatusCode, ErrRangesNotSupported)
	}

	totalSize := progress.UnknownTotal

	if contentRange := resp.Header.Get("Content-Range"); contentRange != "" {
		// Format: bytes 0-0/1234
		parts := strings.Split(contentRange, "/")
		if len(parts) == 2 && parts[1] != "*" {
			size, parseErr := strconv.ParseInt(parts[1], 10, 64)
			if parseErr != nil {
				return nil, NewStatusError("rangeGET", urlStr, resp.StatusCode, ErrInvalidContentRange)
			}
			totalSize = size
		}
	}

	return generateInfo(resp, true, totalSize), nil
}

func (c *Client) probeWithGET(ctx context.Context, urlStr string, headers map[string]string) (*ResourceInfo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, urlStr, headers)
	if err != nil {
		return nil, NewNetworkError("GET", urlStr, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyError("GET", urlStr, err)
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, NewStatusError("GET", urlStr, resp.StatusCode,
			fmt.Errorf("GET request returned status %d", resp.StatusCode))
	}

	return generateInfo(resp, false, resp.ContentLength), nil
}

// Open issues a GET and returns the response body as a single-use Stream.
// The expected length comes from the GET response itself, not from a probe.
func (c *Client) Open(ctx context.Context, urlStr string, headers map[string]string) (*Stream, *ResourceInfo, error) {
	if !c.Supports(urlStr) {
		return nil, nil, &Error{Kind: KindValidation, Operation: "open", URL: urlStr, Err: ErrUnsupportedScheme}
	}

	req, err := c.newRequest(ctx, http.MethodGet, urlStr, headers)
	if err != nil {
		return nil, nil, NewNetworkError("GET", urlStr, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, classifyError("GET", urlStr, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, nil, NewStatusError("GET", urlStr, resp.StatusCode,
			fmt.Errorf("GET request returned status %d", resp.StatusCode))
	}

	expected := resp.ContentLength
	if expected < 0 {
		expected = progress.UnknownTotal
	}

	supportsRanges := strings.Contains(strings.ToLower(resp.Header.Get("Accept-Ranges")), "bytes")
	info := generateInfo(resp, supportsRanges, expected)

	logger.Debugf("Opened stream for %s: expected=%d, type=%s", urlStr, expected, info.MimeType)

	return newStream(resp.Body, info.URL, expected), info, nil
}

// Cleanup releases idle connections held by the transport.
func (c *Client) Cleanup() {
	c.transport.CloseIdleConnections()
}

func (c *Client) newRequest(ctx context.Context, method, urlStr string, headers map[string]string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, urlStr, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.config.UserAgent)

	for k, v := range c.config.DefaultHeaders {
		req.Header.Set(k, v)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

// generateInfo builds resource info from a response.
func generateInfo(resp *http.Response, canRange bool, totalSize int64) *ResourceInfo {
	if totalSize < 0 {
		totalSize = progress.UnknownTotal
	}

	return &ResourceInfo{
		URL:            resp.Request.URL.String(),
		Filename:       getFilename(resp),
		MimeType:       resp.Header.Get("Content-Type"),
		TotalSize:      totalSize,
		SupportsRanges: canRange,
		LastModified:   parseLastModified(resp.Header.Get("Last-Modified")),
		ETag:           resp.Header.Get("ETag"),
		Server:         resp.Header.Get("Server"),
	}
}

// getFilename extracts the filename from the Content-Disposition header or the URL.
func getFilename(resp *http.Response) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if filename, ok := params["filename"]; ok && filename != "" {
				return filename
			}
		}
	}

	u := resp.Request.URL

	base := path.Base(u.Path)
	if base != "" && base != "/" && base != "." {
		return base
	}

	if filename := u.Query().Get("filename"); filename != "" {
		return filename
	}

	return defaultFilename
}

// parseLastModified parses the Last-Modified header (RFC1123).
func parseLastModified(header string) time.Time {
	if header == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC1123, header)
	if err != nil {
		return time.Time{}
	}

	return t
}
