// Package source reads HTML from a file, a reader, a literal string or an
// HTTP URL and decodes it as UTF-8.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"os"
	"syscall"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	DefaultTimeout   = 10 * time.Second
)

var (
	ErrNoInput    = errors.New("no input")
	ErrHTTPStatus = errors.New("unexpected http status")
	ErrTooLarge   = errors.New("input too large")

	ErrForbiddenAddress = errors.New("address not allowed")
)

// Decode reads r to the end as UTF-8. A leading byte order mark selects the
// encoding it names and is dropped; invalid bytes become U+FFFD.
func Decode(r io.Reader) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	b, err := io.ReadAll(transform.NewReader(r, dec))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FromFile reads the file at path.
func FromFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return s, nil
}

// FromString returns the contents of the file named s if there is one,
// otherwise s itself.
func FromString(s string) (string, error) {
	if s == "" {
		return "", ErrNoInput
	}
	if fi, err := os.Stat(s); err == nil && fi.Mode().IsRegular() {
		return FromFile(s)
	}
	return s, nil
}

// Fetcher downloads pages over HTTP.
type Fetcher struct {
	Client    *http.Client
	UserAgent string

	// MaxBytes limits the body size. Zero means no limit.
	MaxBytes int64
}

// NewFetcher returns a Fetcher using a browser-like user agent when
// userAgent is empty and DefaultTimeout when timeout <= 0.
func NewFetcher(userAgent string, timeout time.Duration) *Fetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}
}

// PublicOnly makes f refuse to connect to loopback, private, link-local,
// multicast and unspecified addresses. The check runs on the resolved
// address when dialing, and environment proxies are not used.
func (f *Fetcher) PublicOnly() {
	if f.Client == nil {
		f.Client = &http.Client{Timeout: DefaultTimeout}
	}
	dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second, Control: publicOnly}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	f.Client.Transport = transport
}

func publicOnly(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}
	ip = ip.Unmap()
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() || ip.IsMulticast() {
		return fmt.Errorf("%w: %s", ErrForbiddenAddress, ip)
	}
	return nil
}

// Fetch GETs url and returns the decoded body. Any non-2xx response is an
// error wrapping ErrHTTPStatus.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch %s: %w: %s", url, ErrHTTPStatus, resp.Status)
	}

	var body io.Reader = resp.Body
	if f.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, f.MaxBytes+1)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	if f.MaxBytes > 0 && int64(len(b)) > f.MaxBytes {
		return "", fmt.Errorf("fetch %s: %w", url, ErrTooLarge)
	}
	s, err := Decode(bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", url, err)
	}
	return s, nil
}
