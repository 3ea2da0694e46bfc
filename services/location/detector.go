package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Hint carries what the transport knows about the caller.
type Hint struct {
	ClientIP string
	Header   http.Header
}

// Detector guesses the caller's country. ok is false when nothing usable was found.
type Detector interface {
	Detect(ctx context.Context, hint Hint) (country string, ok bool)
}

// NoopDetector never detects a country.
type NoopDetector struct{}

func (NoopDetector) Detect(context.Context, Hint) (string, bool) { return "", false }

// FixedDetector always answers with Country when it is in the catalog.
type FixedDetector struct {
	Country string
}

func (d FixedDetector) Detect(context.Context, Hint) (string, bool) {
	if HasCountry(d.Country) {
		return d.Country, true
	}
	return "", false
}

// HeaderDetector reads an ISO country code set by an edge proxy, e.g. CF-IPCountry.
type HeaderDetector struct {
	Header string
}

func (d HeaderDetector) Detect(_ context.Context, hint Hint) (string, bool) {
	if hint.Header == nil {
		return "", false
	}
	code := strings.ToUpper(strings.TrimSpace(hint.Header.Get(d.Header)))
	return CountryByISO(code)
}

// geoResponse is the subset of the ipapi.co payload we read.
type geoResponse struct {
	IP          string `json:"ip"`
	Country     string `json:"country_name"`
	CountryCode string `json:"country_code"`
	Error       bool   `json:"error"`
}

// IPAPIDetector resolves the client IP through ipapi.co and caches results per IP.
type IPAPIDetector struct {
	BaseURL string
	Client  *http.Client
	Logger  *zap.Logger

	mu    sync.RWMutex
	cache map[string]string
}

// NewIPAPIDetector returns a detector against the public ipapi.co endpoint.
func NewIPAPIDetector(logger *zap.Logger) *IPAPIDetector {
	return &IPAPIDetector{
		BaseURL: "https://ipapi.co",
		Client:  &http.Client{Timeout: 5 * time.Second},
		Logger:  logger,
		cache:   make(map[string]string),
	}
}

// isPrivateIP checks if an IP is private or loopback.
func isPrivateIP(ip string) bool {
	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}
	return parsedIP.IsPrivate() || parsedIP.IsLoopback() || parsedIP.IsUnspecified()
}

func (d *IPAPIDetector) Detect(ctx context.Context, hint Hint) (string, bool) {
	ip := hint.ClientIP
	if ip == "" || net.ParseIP(ip) == nil {
		return "", false
	}

	d.mu.RLock()
	cached, hit := d.cache[ip]
	d.mu.RUnlock()
	if hit {
		return cached, cached != ""
	}

	if isPrivateIP(ip) {
		d.Logger.Debug("Client IP is private; skipping country detection", zap.String("ip", ip))
		d.remember(ip, "")
		return "", false
	}

	name, err := d.query(ctx, ip)
	if err != nil {
		// Failures are not cached so a later session can retry.
		d.Logger.Warn("Country detection failed", zap.String("ip", ip), zap.Error(err))
		return "", false
	}
	d.remember(ip, name)
	return name, name != ""
}

func (d *IPAPIDetector) remember(ip, country string) {
	d.mu.Lock()
	if d.cache == nil {
		d.cache = make(map[string]string)
	}
	d.cache[ip] = country
	d.mu.Unlock()
}

func (d *IPAPIDetector) query(ctx context.Context, ip string) (string, error) {
	url := fmt.Sprintf("%s/%s/json/", strings.TrimRight(d.BaseURL, "/"), ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build geolocation request: %w", err)
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("query geolocation API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geolocation API returned status %d", resp.StatusCode)
	}

	var geo geoResponse
	if err := json.NewDecoder(resp.Body).Decode(&geo); err != nil {
		return "", fmt.Errorf("decode geolocation response: %w", err)
	}
	if geo.Error {
		return "", nil
	}
	if name, ok := CountryByISO(strings.ToUpper(geo.CountryCode)); ok {
		return name, nil
	}
	if HasCountry(geo.Country) {
		return geo.Country, nil
	}
	// Countries outside the catalog are remembered as "no answer".
	return "", nil
}

// NewDetector builds the detector named by kind: none, fixed, ipapi or header.
func NewDetector(kind, fixedCountry, header string, logger *zap.Logger) (Detector, error) {
	switch kind {
	case "", "none":
		return NoopDetector{}, nil
	case "fixed":
		if !HasCountry(fixedCountry) {
			return nil, fmt.Errorf("fixed detector country %q is not in the catalog", fixedCountry)
		}
		return FixedDetector{Country: fixedCountry}, nil
	case "ipapi":
		return NewIPAPIDetector(logger), nil
	case "header":
		if header == "" {
			header = "CF-IPCountry"
		}
		return HeaderDetector{Header: header}, nil
	}
	return nil, fmt.Errorf("unknown country detector %q", kind)
}
