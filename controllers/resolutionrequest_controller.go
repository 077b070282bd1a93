package controllers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	depresolvev1alpha1 "github.com/bayleafwalker/depresolve/api/v1alpha1"
	"github.com/bayleafwalker/depresolve/internal/combinatorial"
	"github.com/bayleafwalker/depresolve/internal/model"
	"github.com/bayleafwalker/depresolve/internal/providers"
	"github.com/bayleafwalker/depresolve/internal/resolver"
	"github.com/bayleafwalker/depresolve/internal/semver"
	"github.com/bayleafwalker/depresolve/pkg/frameworks"
	"github.com/bayleafwalker/depresolve/pkg/providers/grpcprov"
	"github.com/bayleafwalker/depresolve/pkg/providers/httpprov"
	"github.com/bayleafwalker/depresolve/pkg/providers/local"
	"github.com/bayleafwalker/depresolve/pkg/runtimegraph"
)

// ResolutionRequestReconciler drives a ResolutionRequest through the
// walk/conflict-resolve/diagnose pipeline and records the outcome in
// status.
//
// RBAC:
// +kubebuilder:rbac:groups=depresolve.bayleafwalker.dev,resources=resolutionrequests,verbs=get;list;watch
// +kubebuilder:rbac:groups=depresolve.bayleafwalker.dev,resources=resolutionrequests/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=depresolve.bayleafwalker.dev,resources=packageindexsources,verbs=get;list;watch
// +kubebuilder:rbac:groups="",resources=events,verbs=create;patch;update
type ResolutionRequestReconciler struct {
	client.Client
	Scheme   *runtime.Scheme
	Resolver resolver.Resolver
	Recorder record.EventRecorder

	// RuntimeGraph, when set, is propagated to any one-off resolver this
	// reconciler builds for ProviderRefs (spec.md §6.3).
	RuntimeGraph runtimegraph.Graph
}

func (r *ResolutionRequestReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	resolverControllerReconcileTotal.WithLabelValues("ResolutionRequest").Inc()

	logger := log.FromContext(ctx).WithValues(
		"controller", "ResolutionRequest",
		"namespace", req.Namespace,
		"name", req.Name,
	)

	var rr depresolvev1alpha1.ResolutionRequest
	if err := r.Get(ctx, req.NamespacedName, &rr); err != nil {
		if client.IgnoreNotFound(err) == nil {
			return ctrl.Result{}, nil
		}
		resolverControllerReconcileErrorTotal.WithLabelValues("ResolutionRequest").Inc()
		return ctrl.Result{}, err
	}

	logger = logger.WithValues("target", rr.Spec.Target.Name, "range", rr.Spec.Target.Range)
	logger.Info("reconciling resolution request")

	if r.Resolver == nil {
		resolverControllerReconcileErrorTotal.WithLabelValues("ResolutionRequest").Inc()
		return ctrl.Result{}, ErrNoResolverConfigured
	}

	vr, err := semver.ParseRange(rr.Spec.Target.Range)
	if err != nil {
		if perr := r.patchStatus(ctx, &rr, "Error", "Invalid version range: "+err.Error(), nil, nil,
			metav1.Condition{
				Type:    ResolutionConditionResolved,
				Status:  metav1.ConditionFalse,
				Reason:  "InvalidRange",
				Message: err.Error(),
			},
		); perr != nil {
			logger.Error(perr, "failed to patch status")
		}
		r.recordEventf(&rr, "Warning", "InvalidRange", "%s", err.Error())
		return ctrl.Result{}, nil
	}

	behavior, err := combinatorial.ParseDependencyBehavior(rr.Spec.DependencyBehavior)
	if err != nil {
		if perr := r.patchStatus(ctx, &rr, "Error", "Invalid dependency behavior: "+err.Error(), nil, nil,
			metav1.Condition{
				Type:    ResolutionConditionResolved,
				Status:  metav1.ConditionFalse,
				Reason:  "InvalidDependencyBehavior",
				Message: err.Error(),
			},
		); perr != nil {
			logger.Error(perr, "failed to patch status")
		}
		r.recordEventf(&rr, "Warning", "InvalidDependencyBehavior", "%s", err.Error())
		return ctrl.Result{}, nil
	}

	in := resolver.Input{
		Target: model.LibraryRange{
			Name:         model.Name(rr.Spec.Target.Name),
			VersionRange: vr,
		},
		Framework: frameworks.Framework{Identifier: rr.Spec.Framework},
		RuntimeID: rr.Spec.RuntimeID,
		Behavior:  behavior,
	}

	activeResolver, err := r.resolverFor(ctx, req.Namespace, rr.Spec.ProviderRefs, logger)
	if err != nil {
		if perr := r.patchStatus(ctx, &rr, "Error", err.Error(), nil, nil,
			metav1.Condition{
				Type:    ResolutionConditionResolved,
				Status:  metav1.ConditionFalse,
				Reason:  "ProviderRefsUnresolvable",
				Message: err.Error(),
			},
		); perr != nil {
			logger.Error(perr, "failed to patch status")
		}
		r.recordEventf(&rr, "Warning", "ProviderRefsUnresolvable", "%s", err.Error())
		resolverControllerReconcileErrorTotal.WithLabelValues("ResolutionRequest").Inc()
		return ctrl.Result{}, nil
	}

	start := time.Now()
	plan, err := activeResolver.Resolve(ctx, in)
	resolutionRequestResolutionDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if perr := r.patchStatus(ctx, &rr, "Error", err.Error(), nil, nil,
			metav1.Condition{
				Type:    ResolutionConditionResolved,
				Status:  metav1.ConditionFalse,
				Reason:  "ResolutionFailed",
				Message: err.Error(),
			},
		); perr != nil {
			logger.Error(perr, "failed to patch status")
		}
		logger.Info("resolution failed", "error", err.Error())
		r.recordEventf(&rr, "Warning", "ResolutionFailed", "%s", err.Error())
		resolverControllerReconcileErrorTotal.WithLabelValues("ResolutionRequest").Inc()
		return ctrl.Result{}, nil
	}

	resolutionRequestCausesObserved.Set(float64(len(plan.Diagnostics.Causes)))
	resolutionRequestAcceptedCount.Set(float64(len(plan.Accepted)))

	accepted := make([]depresolvev1alpha1.ResolvedIdentity, 0, len(plan.Accepted))
	for _, id := range plan.Accepted {
		accepted = append(accepted, depresolvev1alpha1.ResolvedIdentity{
			Name:    string(id.Name),
			Version: id.Version.String(),
			Kind:    id.Kind.String(),
		})
	}

	phase := "Resolved"
	noConflict := metav1.ConditionTrue
	reason := "Resolved"
	if len(plan.Diagnostics.Causes) > 0 {
		phase = "Conflicted"
		noConflict = metav1.ConditionFalse
		reason = "DiagnosablesFound"
	}

	if perr := r.patchStatus(ctx, &rr, phase, plan.Diagnostics.Summary, accepted, plan.Diagnostics.Causes,
		metav1.Condition{
			Type:    ResolutionConditionResolved,
			Status:  metav1.ConditionTrue,
			Reason:  "Resolved",
			Message: "resolution completed",
		},
		metav1.Condition{
			Type:    ResolutionConditionNoConflict,
			Status:  noConflict,
			Reason:  reason,
			Message: plan.Diagnostics.Summary,
		},
	); perr != nil {
		logger.Error(perr, "failed to patch status")
	}

	logger.Info("resolution completed", "phase", phase, "accepted", len(accepted))
	if phase == "Conflicted" {
		r.recordEventf(&rr, "Warning", "DiagnosablesFound", "%s", plan.Diagnostics.Summary)
	}

	return ctrl.Result{}, nil
}

// resolverFor returns r.Resolver unchanged when refs is empty (the common
// case: the operator's static provider chain), or builds a one-off
// resolver over the providers named by refs, each looked up as a
// PackageIndexSource in namespace.
func (r *ResolutionRequestReconciler) resolverFor(ctx context.Context, namespace string, refs []string, logger logr.Logger) (resolver.Resolver, error) {
	if len(refs) == 0 {
		return r.Resolver, nil
	}

	chain := make(providers.Chain, 0, len(refs))
	for _, name := range refs {
		var src depresolvev1alpha1.PackageIndexSource
		if err := r.Get(ctx, types.NamespacedName{Namespace: namespace, Name: name}, &src); err != nil {
			return nil, fmt.Errorf("loading PackageIndexSource %q: %w", name, err)
		}
		p, err := buildProvider(src)
		if err != nil {
			return nil, fmt.Errorf("building provider from PackageIndexSource %q: %w", name, err)
		}
		chain = append(chain, p)
	}
	adHoc := resolver.NewDefault(chain, logger)
	adHoc.RuntimeGraph = r.RuntimeGraph
	return adHoc, nil
}

func buildProvider(src depresolvev1alpha1.PackageIndexSource) (providers.Provider, error) {
	switch src.Spec.Type {
	case depresolvev1alpha1.PackageIndexSourceLocal:
		return local.Load(src.Name, src.Spec.LocalPath)
	case depresolvev1alpha1.PackageIndexSourceHTTP:
		return httpprov.New(src.Name, src.Spec.HTTPBaseURL), nil
	case depresolvev1alpha1.PackageIndexSourceGRPC:
		conn, err := grpc.NewClient(src.Spec.GRPCAddress, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, fmt.Errorf("dialing %q: %w", src.Spec.GRPCAddress, err)
		}
		return grpcprov.New(src.Name, conn), nil
	default:
		return nil, fmt.Errorf("unknown PackageIndexSource type %q", src.Spec.Type)
	}
}

func (r *ResolutionRequestReconciler) patchStatus(
	ctx context.Context,
	rr *depresolvev1alpha1.ResolutionRequest,
	phase, summary string,
	accepted []depresolvev1alpha1.ResolvedIdentity,
	causes []string,
	conds ...metav1.Condition,
) error {
	before := rr.DeepCopy()
	rr.Status.ObservedGeneration = rr.Generation
	rr.Status.Phase = phase
	rr.Status.DiagnosticsSummary = summary
	rr.Status.Accepted = accepted
	rr.Status.Causes = causes
	for _, c := range conds {
		setResolutionCondition(rr, c)
	}
	return r.Status().Patch(ctx, rr, client.MergeFrom(before))
}

func (r *ResolutionRequestReconciler) recordEventf(obj client.Object, eventType, reason, messageFmt string, args ...any) {
	if r.Recorder == nil || obj == nil {
		return
	}
	r.Recorder.Eventf(obj, eventType, reason, messageFmt, args...)
}

func (r *ResolutionRequestReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&depresolvev1alpha1.ResolutionRequest{}).
		Complete(r)
}
