// Package httpprov implements a Provider backed by a remote HTTP feed: a
// REST registry serving version lists and per-version dependency metadata
// as JSON, in the shape spec.md's external interfaces describe for a
// network-backed source.
package httpprov

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bayleafwalker/depresolve/internal/model"
	"github.com/bayleafwalker/depresolve/internal/semver"
	"github.com/bayleafwalker/depresolve/pkg/frameworks"
)

const defaultTimeout = 10 * time.Second

type versionsResponse struct {
	Versions []string `json:"versions"`
}

type dependenciesResponse struct {
	Dependencies []dependencyEntry `json:"dependencies"`
}

type dependencyEntry struct {
	Name  string `json:"name"`
	Range string `json:"range"`
}

// Provider queries baseURL for version lists (GET /{name}/versions) and
// per-version dependencies (GET /{name}/{version}/dependencies).
type Provider struct {
	name    string
	baseURL string
	client  *http.Client
}

// Option configures a Provider.
type Option func(*Provider)

// WithTimeout overrides the HTTP client's request timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) { p.client.Timeout = d }
}

// WithHTTPClient overrides the underlying *http.Client entirely.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.client = c }
}

// New builds a Provider named name against baseURL (no trailing slash).
func New(name, baseURL string, opts ...Option) *Provider {
	p := &Provider{
		name:    name,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Provider) Name() string { return p.name }
func (p *Provider) IsHTTP() bool { return true }

func (p *Provider) FindLibrary(ctx context.Context, r model.LibraryRange, _ frameworks.Framework) (model.Identity, bool, error) {
	endpoint := fmt.Sprintf("%s/%s/versions", p.baseURL, url.PathEscape(string(r.Name)))
	var resp versionsResponse
	if err := p.getJSON(ctx, endpoint, &resp); err != nil {
		return model.Identity{}, false, err
	}

	var candidates []model.Identity
	for _, raw := range resp.Versions {
		v, err := semver.ParseVersion(raw)
		if err != nil {
			continue
		}
		candidates = append(candidates, model.Identity{Name: r.Name, Version: v, Kind: model.KindPackage})
	}
	best, found := semver.BestMatch(candidates, func(id model.Identity) semver.Version { return id.Version }, r.VersionRange)
	return best, found, nil
}

func (p *Provider) GetDependencies(ctx context.Context, id model.Identity, _ frameworks.Framework) ([]model.LibraryDependency, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/dependencies", p.baseURL, url.PathEscape(string(id.Name)), url.PathEscape(id.Version.String()))
	var resp dependenciesResponse
	if err := p.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	deps := make([]model.LibraryDependency, 0, len(resp.Dependencies))
	for _, d := range resp.Dependencies {
		rng, err := semver.ParseRange(d.Range)
		if err != nil {
			continue
		}
		deps = append(deps, model.LibraryDependency{Range: model.LibraryRange{Name: model.Name(d.Name), VersionRange: rng}})
	}
	return deps, nil
}

func (p *Provider) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("httpprov: build request for %q: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("httpprov: request %q: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil // treated as "nothing offered" by the caller, not an error
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("httpprov: %q returned %d: %s", endpoint, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("httpprov: decode response from %q: %w", endpoint, err)
	}
	return nil
}
