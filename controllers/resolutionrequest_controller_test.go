package controllers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/bayleafwalker/depresolve/api/v1alpha1"
	"github.com/bayleafwalker/depresolve/internal/providers"
	"github.com/bayleafwalker/depresolve/internal/resolver"
	"github.com/bayleafwalker/depresolve/pkg/providers/local"
)

func TestResolutionRequestReconcile_ResolvesAndPatchesStatus(t *testing.T) {
	ctx := context.Background()

	scheme := runtime.NewScheme()
	if err := v1alpha1.AddToScheme(scheme); err != nil {
		t.Fatalf("AddToScheme: %v", err)
	}

	rr := &v1alpha1.ResolutionRequest{
		TypeMeta:   metav1.TypeMeta{APIVersion: "depresolve.bayleafwalker.dev/v1alpha1", Kind: "ResolutionRequest"},
		ObjectMeta: metav1.ObjectMeta{Name: "widgets-core", Namespace: "resolve-demo"},
		Spec: v1alpha1.ResolutionRequestSpec{
			Target: v1alpha1.LibraryRangeRef{Name: "Widgets.Core", Range: "[1.0.0,2.0.0)"},
		},
	}

	cl := fake.NewClientBuilder().WithScheme(scheme).WithObjects(rr).WithStatusSubresource(rr).Build()

	chain := providers.Chain{local.New("fixture", []local.Entry{
		{Name: "Widgets.Core", Version: "1.5.0"},
	})}

	r := &ResolutionRequestReconciler{Client: cl, Scheme: scheme, Resolver: resolver.NewDefault(chain, logr.Discard())}
	if _, err := r.Reconcile(ctx, ctrl.Request{NamespacedName: types.NamespacedName{Namespace: "resolve-demo", Name: "widgets-core"}}); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	var got v1alpha1.ResolutionRequest
	if err := cl.Get(ctx, types.NamespacedName{Namespace: "resolve-demo", Name: "widgets-core"}, &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status.Phase != "Resolved" {
		t.Fatalf("expected phase Resolved, got %q (summary %q)", got.Status.Phase, got.Status.DiagnosticsSummary)
	}
	if len(got.Status.Accepted) != 1 || got.Status.Accepted[0].Version != "1.5.0.0" {
		t.Fatalf("expected one accepted identity at 1.5.0, got %+v", got.Status.Accepted)
	}
}

func TestResolutionRequestReconcile_InvalidRangeMarksError(t *testing.T) {
	ctx := context.Background()

	scheme := runtime.NewScheme()
	if err := v1alpha1.AddToScheme(scheme); err != nil {
		t.Fatalf("AddToScheme: %v", err)
	}

	rr := &v1alpha1.ResolutionRequest{
		ObjectMeta: metav1.ObjectMeta{Name: "bad-range", Namespace: "resolve-demo"},
		Spec:       v1alpha1.ResolutionRequestSpec{Target: v1alpha1.LibraryRangeRef{Name: "Widgets.Core", Range: "not-a-range((("}},
	}
	cl := fake.NewClientBuilder().WithScheme(scheme).WithObjects(rr).WithStatusSubresource(rr).Build()

	chain := providers.Chain{local.New("fixture", nil)}
	r := &ResolutionRequestReconciler{Client: cl, Scheme: scheme, Resolver: resolver.NewDefault(chain, logr.Discard())}
	if _, err := r.Reconcile(ctx, ctrl.Request{NamespacedName: types.NamespacedName{Namespace: "resolve-demo", Name: "bad-range"}}); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	var got v1alpha1.ResolutionRequest
	if err := cl.Get(ctx, types.NamespacedName{Namespace: "resolve-demo", Name: "bad-range"}, &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status.Phase != "Error" {
		t.Fatalf("expected phase Error, got %q", got.Status.Phase)
	}
}

func TestResolutionRequestReconcile_ProviderRefsBuildsChainFromPackageIndexSource(t *testing.T) {
	ctx := context.Background()

	scheme := runtime.NewScheme()
	if err := v1alpha1.AddToScheme(scheme); err != nil {
		t.Fatalf("AddToScheme: %v", err)
	}

	idxPath := filepath.Join(t.TempDir(), "index.json")
	if err := os.WriteFile(idxPath, []byte(`[{"name":"Widgets.Core","version":"2.0.0"}]`), 0o600); err != nil {
		t.Fatalf("write fixture index: %v", err)
	}

	src := &v1alpha1.PackageIndexSource{
		ObjectMeta: metav1.ObjectMeta{Name: "local-fixture", Namespace: "resolve-demo"},
		Spec:       v1alpha1.PackageIndexSourceSpec{Type: v1alpha1.PackageIndexSourceLocal, LocalPath: idxPath},
	}
	rr := &v1alpha1.ResolutionRequest{
		ObjectMeta: metav1.ObjectMeta{Name: "widgets-core-via-ref", Namespace: "resolve-demo"},
		Spec: v1alpha1.ResolutionRequestSpec{
			Target:       v1alpha1.LibraryRangeRef{Name: "Widgets.Core", Range: "*"},
			ProviderRefs: []string{"local-fixture"},
		},
	}

	cl := fake.NewClientBuilder().WithScheme(scheme).WithObjects(src, rr).WithStatusSubresource(rr).Build()

	// Resolver is intentionally left without a usable chain: it must never
	// be consulted once ProviderRefs names a PackageIndexSource.
	r := &ResolutionRequestReconciler{Client: cl, Scheme: scheme, Resolver: resolver.NewDefault(providers.Chain{local.New("unused", nil)}, logr.Discard())}
	if _, err := r.Reconcile(ctx, ctrl.Request{NamespacedName: types.NamespacedName{Namespace: "resolve-demo", Name: "widgets-core-via-ref"}}); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	var got v1alpha1.ResolutionRequest
	if err := cl.Get(ctx, types.NamespacedName{Namespace: "resolve-demo", Name: "widgets-core-via-ref"}, &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status.Phase != "Resolved" {
		t.Fatalf("expected phase Resolved, got %q (summary %q)", got.Status.Phase, got.Status.DiagnosticsSummary)
	}
	if len(got.Status.Accepted) != 1 || got.Status.Accepted[0].Version != "2.0.0.0" {
		t.Fatalf("expected one accepted identity at 2.0.0 from the referenced source, got %+v", got.Status.Accepted)
	}
}
