// Package grpcprov implements a Provider backed by a gRPC registry
// service. It deliberately avoids protoc-generated message types: requests
// and responses are plain JSON-tagged structs, carried over
// grpc.ClientConn.Invoke with the depresolve-json content-subtype codec
// registered in codec.go.
package grpcprov

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"github.com/bayleafwalker/depresolve/internal/model"
	"github.com/bayleafwalker/depresolve/internal/semver"
	"github.com/bayleafwalker/depresolve/pkg/frameworks"
)

const (
	findLibraryMethod     = "/depresolve.registry.v1.Registry/FindLibrary"
	getDependenciesMethod = "/depresolve.registry.v1.Registry/GetDependencies"
)

type findLibraryRequest struct {
	Name      string `json:"name"`
	RangeSpec string `json:"range"`
	Framework string `json:"framework"`
}

type findLibraryResponse struct {
	Found   bool   `json:"found"`
	Version string `json:"version"`
}

type getDependenciesRequest struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Framework string `json:"framework"`
}

type getDependenciesResponse struct {
	Dependencies []struct {
		Name  string `json:"name"`
		Range string `json:"range"`
	} `json:"dependencies"`
}

// Provider queries a gRPC registry service over conn.
type Provider struct {
	name string
	conn *grpc.ClientConn
}

// New builds a Provider named name over an already-dialed conn.
func New(name string, conn *grpc.ClientConn) *Provider {
	return &Provider{name: name, conn: conn}
}

func (p *Provider) Name() string { return p.name }
func (p *Provider) IsHTTP() bool { return true }

func (p *Provider) FindLibrary(ctx context.Context, r model.LibraryRange, fw frameworks.Framework) (model.Identity, bool, error) {
	req := &findLibraryRequest{Name: string(r.Name), RangeSpec: r.VersionRange.OriginalString(), Framework: fw.String()}
	resp := &findLibraryResponse{}
	if err := p.conn.Invoke(ctx, findLibraryMethod, req, resp, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return model.Identity{}, false, fmt.Errorf("grpcprov: find-library %s: %w", r.Name, err)
	}
	if !resp.Found {
		return model.Identity{}, false, nil
	}
	v, err := semver.ParseVersion(resp.Version)
	if err != nil {
		return model.Identity{}, false, fmt.Errorf("grpcprov: parse version %q for %s: %w", resp.Version, r.Name, err)
	}
	return model.Identity{Name: r.Name, Version: v, Kind: model.KindPackage}, true, nil
}

func (p *Provider) GetDependencies(ctx context.Context, id model.Identity, fw frameworks.Framework) ([]model.LibraryDependency, error) {
	req := &getDependenciesRequest{Name: string(id.Name), Version: id.Version.String(), Framework: fw.String()}
	resp := &getDependenciesResponse{}
	if err := p.conn.Invoke(ctx, getDependenciesMethod, req, resp, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, fmt.Errorf("grpcprov: get-dependencies %s: %w", id, err)
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
