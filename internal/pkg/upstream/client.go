package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 32 << 20

	// UserIDHeader carries the caller id between tiers.
	UserIDHeader = "X-Sharer-User-Id"
)

var (
	ErrTimeout     = errors.New("upstream timeout")
	ErrUnavailable = errors.New("upstream unavailable")
)

// TokenSigner signs service tokens for forwarded requests.
type TokenSigner interface {
	GenerateServiceToken(userID int64) (string, error)
}

// Client forwards validated requests to the ShareIt server.
type Client struct {
	baseURL string
	ua      string
	signer  TokenSigner
	http    *http.Client
}

// Request is a request to forward. UserID 0 means no caller header.
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	UserID    int64
	RequestID string
	Body      []byte
}

// Response is the server's reply, relayed as-is.
type Response struct {
	StatusCode         int
	ContentType        string
	ContentDisposition string
	Body               []byte
}

// NewClient creates a new upstream client. signer may be nil.
func NewClient(baseURL string, timeout time.Duration, ua string, signer TokenSigner) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		ua:      ua,
		signer:  signer,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// BaseURL returns the server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do forwards req and returns the server's response whatever its status.
// Only transport failures are returned as errors.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c == nil || c.http == nil {
		return nil, fmt.Errorf("upstream request error: client is nil")
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("upstream request error: %w", err)
	}

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.UserID > 0 {
		httpReq.Header.Set(UserIDHeader, strconv.FormatInt(req.UserID, 10))
	}
	if req.RequestID != "" {
		httpReq.Header.Set("X-Request-ID", req.RequestID)
	}
	if c.ua != "" {
		httpReq.Header.Set("User-Agent", c.ua)
	}
	if c.signer != nil {
		token, err := c.signer.GenerateServiceToken(req.UserID)
		if err != nil {
			return nil, fmt.Errorf("upstream request error: sign token: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, classifyRequestError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, classifyRequestError(ctx, fmt.Errorf("read body: status=%d: %w", resp.StatusCode, err))
	}

	return &Response{
		StatusCode:         resp.StatusCode,
		ContentType:        resp.Header.Get("Content-Type"),
		ContentDisposition: resp.Header.Get("Content-Disposition"),
		Body:               data,
	}, nil
}

func classifyRequestError(ctx context.Context, err error) error {
	if isTimeoutError(ctx, err) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	if isNetworkError(err) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return fmt.Errorf("upstream request error: %w", err)
}

func isTimeoutError(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, io.EOF)
}
