package httpprov

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bayleafwalker/depresolve/internal/model"
	"github.com/bayleafwalker/depresolve/internal/semver"
	"github.com/bayleafwalker/depresolve/pkg/frameworks"
)

func TestFindLibraryParsesVersionsResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(versionsResponse{Versions: []string{"1.0.0", "1.5.0"}})
	}))
	defer server.Close()

	p := New("remote", server.URL)
	id, found, err := p.FindLibrary(context.Background(), model.LibraryRange{
		Name: "A", VersionRange: semver.MustParseRange("[1.0.0,2.0.0)"),
	}, frameworks.Framework{})
	if err != nil || !found {
		t.Fatalf("expected a match, err=%v found=%v", err, found)
	}
	if id.Version.String() != "1.5.0.0" {
		t.Fatalf("expected 1.5.0, got %s", id.Version)
	}
}

func TestFindLibraryTreatsNotFoundAsNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p := New("remote", server.URL)
	_, found, err := p.FindLibrary(context.Background(), model.LibraryRange{
		Name: "Missing", VersionRange: semver.MustParseRange("1.0.0"),
	}, frameworks.Framework{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatalf("expected no match for a 404 response")
	}
}
