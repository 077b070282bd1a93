package main

import (
	"flag"
	"os"

	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	depresolvev1alpha1 "github.com/bayleafwalker/depresolve/api/v1alpha1"
	"github.com/bayleafwalker/depresolve/controllers"
	"github.com/bayleafwalker/depresolve/internal/providers"
	"github.com/bayleafwalker/depresolve/internal/resolver"
	"github.com/bayleafwalker/depresolve/pkg/providers/httpprov"
	"github.com/bayleafwalker/depresolve/pkg/providers/local"
	"github.com/bayleafwalker/depresolve/pkg/runtimegraph"
)

// defaultRuntimeGraph is a minimal RID import table in the shape NuGet
// ships as runtime.json: a handful of common platform RIDs falling back to
// their OS family and finally "any" (spec.md §6.3).
func defaultRuntimeGraph() *runtimegraph.StaticGraph {
	return runtimegraph.NewStaticGraph(map[string][]string{
		"win-x64":     {"win", "any"},
		"win-x86":     {"win", "any"},
		"win-arm64":   {"win", "any"},
		"linux-x64":   {"linux", "any"},
		"linux-arm64": {"linux", "any"},
		"osx-x64":     {"osx", "any"},
		"osx-arm64":   {"osx", "any"},
		"win":         {"any"},
		"linux":       {"any"},
		"osx":         {"any"},
	}, nil)
}

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(depresolvev1alpha1.AddToScheme(scheme))
}

func main() {
	var metricsAddr string
	var probeAddr string
	var enableLeaderElection bool
	var localIndexPath string
	var remoteFeedURL string

	flag.StringVar(&metricsAddr, "metrics-bind-address", ":8080", "The address the metric endpoint binds to.")
	flag.StringVar(&probeAddr, "health-probe-bind-address", ":8081", "The address the probe endpoint binds to.")
	flag.BoolVar(&enableLeaderElection, "leader-elect", false, "Enable leader election for controller manager.")
	flag.StringVar(&localIndexPath, "local-index", "", "Path to a local JSON package index, raced alongside any remote feed.")
	flag.StringVar(&remoteFeedURL, "remote-feed-url", "", "Base URL of an HTTP registry feed; listed first in the chain, which only breaks ties between equal matches.")

	opts := zap.Options{Development: true}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme:                 scheme,
		Metrics:                metricsserver.Options{BindAddress: metricsAddr},
		HealthProbeBindAddress: probeAddr,
		LeaderElection:         enableLeaderElection,
		LeaderElectionID:       "resolutionrequest.depresolve.bayleafwalker.dev",
	})
	if err != nil {
		setupLog.Error(err, "unable to start manager")
		os.Exit(1)
	}

	var chain providers.Chain
	if remoteFeedURL != "" {
		chain = append(chain, httpprov.New("remote-feed", remoteFeedURL))
	}
	if localIndexPath != "" {
		p, err := local.Load("local-index", localIndexPath)
		if err != nil {
			setupLog.Error(err, "unable to load local index", "path", localIndexPath)
			os.Exit(1)
		}
		chain = append(chain, p)
	}
	if len(chain) == 0 {
		setupLog.Info("no providers configured; pass -local-index or -remote-feed-url")
	}

	runtimeGraph := defaultRuntimeGraph()
	defaultResolver := resolver.NewDefault(chain, ctrl.Log.WithName("resolver"))
	defaultResolver.RuntimeGraph = runtimeGraph

	if err := (&controllers.ResolutionRequestReconciler{
		Client:       mgr.GetClient(),
		Scheme:       mgr.GetScheme(),
		Resolver:     defaultResolver,
		Recorder:     mgr.GetEventRecorderFor("ResolutionRequest"),
		RuntimeGraph: runtimeGraph,
	}).SetupWithManager(mgr); err != nil {
		setupLog.Error(err, "unable to create controller", "controller", "ResolutionRequest")
		os.Exit(1)
	}

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up health check")
		os.Exit(1)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up ready check")
		os.Exit(1)
	}

	setupLog.Info("starting manager")
	if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		setupLog.Error(err, "problem running manager")
		os.Exit(1)
	}
}
