package vendorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"resolveup/internal/profile"
)

const (
	// MaxResponseSize caps the two API responses (1MB); both are tiny in practice
	MaxResponseSize = 1 << 20

	// The vendor's endpoints are meant for browser traffic. The declared
	// identity and cookie values are fixed strings carrying no session state.
	userAgent    = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"
	staticCookie = "_ga=GA1.2.1849263781.1559284091; _gid=GA1.2.953840939.1559284091"
)

var (
	// ErrVersionLookup indicates the version endpoint returned nothing usable
	ErrVersionLookup = errors.New("version lookup failed")
	// ErrRegistration indicates the download-URL request was rejected
	ErrRegistration = errors.New("registration rejected")
)

// Version is the vendor's descriptor for the newest release.
type Version struct {
	Major      int
	Minor      int
	Patch      int
	DownloadID string
}

// String renders "major.minor" when the vendor reports no release increment,
// "major.minor.patch" otherwise. This matches both the recipe's pkgver and the
// version embedded in the installer filename.
func (v Version) String() string {
	if v.Patch == 0 {
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Options configures a Client. RegisterURL carries one %s verb for the
// download id.
type Options struct {
	VersionURL  string
	RegisterURL string
	Referer     string
	Product     string
	Platform    string
}

// Client speaks the vendor's support API: one GET for the latest version, one
// POST to trade registration details for a signed download URL.
type Client struct {
	httpClient *http.Client
	opts       Options
}

// NewClient creates a vendor API client.
func NewClient(opts Options) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		opts:       opts,
	}
}

type versionPayload struct {
	Major      int    `json:"major"`
	Minor      int    `json:"minor"`
	ReleaseNum int    `json:"releaseNum"`
	DownloadID string `json:"downloadId"`
}

// LatestVersion fetches the newest release descriptor for the configured
// platform.
func (c *Client) LatestVersion(ctx context.Context) (Version, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.VersionURL, nil)
	if err != nil {
		return Version{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %v", ErrVersionLookup, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return Version{}, fmt.Errorf("%w: reading response: %v", ErrVersionLookup, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return Version{}, fmt.Errorf("%w: empty response", ErrVersionLookup)
	}
	if bytes.Contains(body, []byte(`"error"`)) || resp.StatusCode >= 400 {
		return Version{}, fmt.Errorf("%w: status %d: %s", ErrVersionLookup, resp.StatusCode, trimForLog(body))
	}

	// The response is keyed by platform, e.g. {"linux": {...}}.
	var platforms map[string]versionPayload
	if err := json.Unmarshal(body, &platforms); err != nil {
		return Version{}, fmt.Errorf("%w: decoding response: %v", ErrVersionLookup, err)
	}
	p, ok := platforms[c.opts.Platform]
	if !ok || p.DownloadID == "" {
		return Version{}, fmt.Errorf("%w: no %s release in response", ErrVersionLookup, c.opts.Platform)
	}

	return Version{Major: p.Major, Minor: p.Minor, Patch: p.ReleaseNum, DownloadID: p.DownloadID}, nil
}

type registerRequest struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Country   string `json:"country"`
	State     string `json:"state"`
	City      string `json:"city"`
	Street    string `json:"street"`
	Product   string `json:"product"`
	Platform  string `json:"platform"`
	Policy    bool   `json:"policy"`
}

// RequestDownloadURL trades the registration profile for a signed URL to the
// installer archive. The response body is the URL as plain text.
func (c *Client) RequestDownloadURL(ctx context.Context, downloadID string, p *profile.Profile) (string, error) {
	payload := registerRequest{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Phone:     p.Phone,
		Country:   p.Country,
		State:     p.State,
		City:      p.City,
		Street:    p.Street,
		Product:   c.opts.Product,
		Platform:  "Linux",
		Policy:    true,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal registration: %w", err)
	}

	url := fmt.Sprintf(c.opts.RegisterURL, downloadID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	req.Header.Set("Referer", c.opts.Referer)
	req.Header.Set("Cookie", staticCookie)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRegistration, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrRegistration, err)
	}

	result := strings.TrimSpace(string(body))
	if result == "" {
		return "", fmt.Errorf("%w: empty response", ErrRegistration)
	}
	if resp.StatusCode >= 400 || strings.Contains(strings.ToLower(result), "error") {
		return "", fmt.Errorf("%w: status %d: %s", ErrRegistration, resp.StatusCode, trimForLog(body))
	}

	return result, nil
}

func trimForLog(body []byte) string {
	const max = 256
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		s = s[:max] + "..."
	}
	return s
}
