package vendorapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"resolveup/internal/profile"
)

func testProfile() *profile.Profile {
	return &profile.Profile{
		FirstName: "Jane", LastName: "Doe", Email: "jane@example.com",
		Country: "US", Street: "1 Main St",
	}
}

// TestVersionString verifies the patch component is omitted when zero
func TestVersionString(t *testing.T) {
	tests := []struct {
		name    string
		version Version
		want    string
	}{
		{"no release increment", Version{Major: 18, Minor: 6}, "18.6"},
		{"with release increment", Version{Major: 19, Minor: 0, Patch: 1}, "19.0.1"},
		{"zero minor", Version{Major: 19, Minor: 0}, "19.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.version.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestLatestVersion verifies the platform descriptor is extracted from the
// version endpoint response
func TestLatestVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Write([]byte(`{"linux": {"major": 19, "minor": 0, "releaseNum": 1, "downloadId": "dl-123"}}`))
	}))
	defer srv.Close()

	c := NewClient(Options{VersionURL: srv.URL, Platform: "linux"})
	v, err := c.LatestVersion(context.Background())
	if err != nil {
		t.Fatalf("LatestVersion failed: %v", err)
	}
	if v.String() != "19.0.1" {
		t.Errorf("expected version 19.0.1, got %s", v)
	}
	if v.DownloadID != "dl-123" {
		t.Errorf("expected download id dl-123, got %q", v.DownloadID)
	}
}

// TestLatestVersion_Failures covers empty, error-marker and wrong-platform
// responses
func TestLatestVersion_Failures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty response", ""},
		{"whitespace response", "  \n"},
		{"error marker", `{"error": "service unavailable"}`},
		{"no linux release", `{"mac": {"major": 19, "minor": 0, "releaseNum": 0, "downloadId": "x"}}`},
		{"missing download id", `{"linux": {"major": 19, "minor": 0, "releaseNum": 0}}`},
		{"not json", "<html>maintenance</html>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(Options{VersionURL: srv.URL, Platform: "linux"})
			if _, err := c.LatestVersion(context.Background()); !errors.Is(err, ErrVersionLookup) {
				t.Errorf("expected ErrVersionLookup, got %v", err)
			}
		})
	}
}

// TestRequestDownloadURL verifies the registration POST carries the profile,
// the product label and the fixed browser identity
func TestRequestDownloadURL(t *testing.T) {
	const wantURL = "https://downloads.example.com/signed/installer.zip"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/register/dl-123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json;charset=UTF-8" {
			t.Errorf("unexpected content type %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != userAgent {
			t.Errorf("unexpected user agent %q", got)
		}
		if got := r.Header.Get("Referer"); got != "https://example.com/product" {
			t.Errorf("unexpected referer %q", got)
		}
		if got := r.Header.Get("Cookie"); got != staticCookie {
			t.Errorf("unexpected cookie %q", got)
		}

		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if req.FirstName != "Jane" || req.Email != "jane@example.com" {
			t.Errorf("profile not carried in payload: %+v", req)
		}
		if req.Product != "Test Product" {
			t.Errorf("expected product label, got %q", req.Product)
		}
		if !req.Policy {
			t.Error("expected policy acceptance in payload")
		}

		w.Write([]byte(wantURL + "\n"))
	}))
	defer srv.Close()

	c := NewClient(Options{
		RegisterURL: srv.URL + "/register/%s",
		Referer:     "https://example.com/product",
		Product:     "Test Product",
		Platform:    "linux",
	})

	url, err := c.RequestDownloadURL(context.Background(), "dl-123", testProfile())
	if err != nil {
		t.Fatalf("RequestDownloadURL failed: %v", err)
	}
	if url != wantURL {
		t.Errorf("expected %q, got %q", wantURL, url)
	}
}

// TestRequestDownloadURL_Failures covers empty and rejected responses
func TestRequestDownloadURL_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"empty response", http.StatusOK, ""},
		{"error marker", http.StatusOK, `{"error": "registration rejected"}`},
		{"server error", http.StatusInternalServerError, "try again later"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(Options{RegisterURL: srv.URL + "/%s", Product: "p", Platform: "linux"})
			if _, err := c.RequestDownloadURL(context.Background(), "id", testProfile()); !errors.Is(err, ErrRegistration) {
				t.Errorf("expected ErrRegistration, got %v", err)
			}
		})
	}
}
