package grpcprov

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/bayleafwalker/depresolve/internal/model"
	"github.com/bayleafwalker/depresolve/internal/semver"
	"github.com/bayleafwalker/depresolve/pkg/frameworks"
)

func mustRange(s string) semver.Range   { return semver.MustParseRange(s) }
func mustVersion(s string) semver.Version { return semver.MustParseVersion(s) }

// fakeRegistryServer implements the Registry service by hand, the same way
// Provider calls it: no protoc-generated server interface, just handler
// functions wired into a grpc.ServiceDesc.
type fakeRegistryServer struct{}

func serviceDesc() grpc.ServiceDesc {
	return grpc.ServiceDesc{
		ServiceName: "depresolve.registry.v1.Registry",
		HandlerType: (*interface{})(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "FindLibrary",
				Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpc.UnaryServerInterceptor) (interface{}, error) {
					req := &findLibraryRequest{}
					if err := dec(req); err != nil {
						return nil, err
					}
					return &findLibraryResponse{Found: true, Version: "1.5.0"}, nil
				},
			},
			{
				MethodName: "GetDependencies",
				Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpc.UnaryServerInterceptor) (interface{}, error) {
					req := &getDependenciesRequest{}
					if err := dec(req); err != nil {
						return nil, err
					}
					resp := &getDependenciesResponse{}
					resp.Dependencies = append(resp.Dependencies, struct {
						Name  string `json:"name"`
						Range string `json:"range"`
					}{Name: "B", Range: "1.0.0"})
					return resp, nil
				},
			},
		},
	}
}

func dialBufconn(t *testing.T) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	server := grpc.NewServer()
	server.RegisterService(&serviceDescPtr, fakeRegistryServer{})
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufconn",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial bufconn: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

var serviceDescPtr = serviceDesc()

func TestFindLibraryOverGRPC(t *testing.T) {
	conn := dialBufconn(t)
	p := New("remote-grpc", conn)

	id, found, err := p.FindLibrary(context.Background(), model.LibraryRange{Name: "A", VersionRange: mustRange("1.0.0")}, frameworks.Framework{})
	if err != nil {
		t.Fatalf("FindLibrary error: %v", err)
	}
	if !found || id.Version.String() != "1.5.0.0" {
		t.Fatalf("expected found=true version=1.5.0, got found=%v id=%+v", found, id)
	}
}

func TestGetDependenciesOverGRPC(t *testing.T) {
	conn := dialBufconn(t)
	p := New("remote-grpc", conn)

	deps, err := p.GetDependencies(context.Background(), model.Identity{Name: "A", Version: mustVersion("1.0.0")}, frameworks.Framework{})
	if err != nil {
		t.Fatalf("GetDependencies error: %v", err)
	}
	if len(deps) != 1 || deps[0].Range.Name != "B" {
		t.Fatalf("expected one dependency on B, got %+v", deps)
	}
}
