package forge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientGetModule(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/modules/puppetlabs-stdlib" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(ModuleData{
			Slug:     "puppetlabs-stdlib",
			Releases: []ReleaseInfo{{Version: "8.5.0"}, {Version: "8.4.0"}},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	data, err := client.GetModule(context.Background(), "puppetlabs", "stdlib")
	if err != nil {
		t.Fatalf("GetModule: unexpected error: %v", err)
	}
	if len(data.Releases) != 2 {
		t.Fatalf("len(Releases) = %d, want 2", len(data.Releases))
	}
}

func TestClientGetModuleNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.GetModule(context.Background(), "acme", "missing")
	if err != ErrModuleNotFound {
		t.Errorf("err = %v, want ErrModuleNotFound", err)
	}
}

func TestClientGetModuleRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.GetModule(context.Background(), "acme", "throttled")
	if err != ErrRateLimited {
		t.Errorf("err = %v, want ErrRateLimited", err)
	}
}

func TestClientGetModuleCaches(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(ModuleData{Slug: "acme-foo"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.GetModule(context.Background(), "acme", "foo"); err != nil {
		t.Fatalf("GetModule: unexpected error: %v", err)
	}
	if _, err := client.GetModule(context.Background(), "acme", "foo"); err != nil {
		t.Fatalf("GetModule: unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("server called %d times, want 1 (second call should hit the client cache)", calls)
	}
}

func TestClientGetRelease(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/releases/acme-foo-1.0.0" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(ReleaseData{
			Slug: "acme-foo",
			Metadata: ReleaseMetadata{
				Dependencies: []DependencySpec{{Name: "acme-bar", VersionRequirement: ">=1.0.0"}},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	data, err := client.GetRelease(context.Background(), "acme", "foo", "1.0.0")
	if err != nil {
		t.Fatalf("GetRelease: unexpected error: %v", err)
	}
	if len(data.Metadata.Dependencies) != 1 || data.Metadata.Dependencies[0].Name != "acme-bar" {
		t.Errorf("Metadata.Dependencies = %+v, want one acme-bar entry", data.Metadata.Dependencies)
	}
}
