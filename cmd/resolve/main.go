package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-logr/logr"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/bayleafwalker/depresolve/internal/combinatorial"
	"github.com/bayleafwalker/depresolve/internal/model"
	"github.com/bayleafwalker/depresolve/internal/providers"
	"github.com/bayleafwalker/depresolve/internal/resolver"
	"github.com/bayleafwalker/depresolve/internal/semver"
	"github.com/bayleafwalker/depresolve/pkg/frameworks"
	"github.com/bayleafwalker/depresolve/pkg/providers/httpprov"
	"github.com/bayleafwalker/depresolve/pkg/providers/local"
)

func main() {
	var indexPath string
	var remoteFeedURL string
	var targetName string
	var targetRange string
	var framework string
	var runtimeID string
	var dependencyBehavior string
	var verbose bool

	flag.StringVar(&indexPath, "index", "", "Path to a local JSON package index")
	flag.StringVar(&remoteFeedURL, "remote-feed-url", "", "Base URL of an HTTP registry feed, raced alongside the local index")
	flag.StringVar(&targetName, "name", "", "Root library name to resolve")
	flag.StringVar(&targetRange, "range", "*", "Version range for the root library")
	flag.StringVar(&framework, "framework", "", "Target framework identifier")
	flag.StringVar(&runtimeID, "runtime", "", "Runtime identifier")
	flag.StringVar(&dependencyBehavior, "dependency-behavior", "Lowest", "Combinatorial fallback resolver preference: Lowest, HighestPatch, HighestMinor, Highest, Ignore")
	flag.BoolVar(&verbose, "v", false, "Verbose provider logging")
	flag.Parse()

	if targetName == "" {
		fmt.Fprintln(os.Stderr, "usage: resolve -index index.json -name Widgets.Core -range \"[1.0.0,2.0.0)\"")
		os.Exit(2)
	}

	var chain providers.Chain
	if remoteFeedURL != "" {
		chain = append(chain, httpprov.New("remote-feed", remoteFeedURL))
	}
	if indexPath != "" {
		p, err := local.Load("local-index", indexPath)
		if err != nil {
			log.Fatalf("loading index: %v", err)
		}
		chain = append(chain, p)
	}
	if len(chain) == 0 {
		log.Fatal("no providers configured: pass -index or -remote-feed-url")
	}

	vr, err := semver.ParseRange(targetRange)
	if err != nil {
		log.Fatalf("parsing range %q: %v", targetRange, err)
	}

	behavior, err := combinatorial.ParseDependencyBehavior(dependencyBehavior)
	if err != nil {
		log.Fatalf("parsing dependency behavior: %v", err)
	}

	logger := logr.Discard()
	if verbose {
		logger = zap.New(zap.UseDevMode(true))
	}

	r := resolver.NewDefault(chain, logger)
	plan, err := r.Resolve(context.Background(), resolver.Input{
		Target: model.LibraryRange{
			Name:         model.Name(targetName),
			VersionRange: vr,
		},
		Framework: frameworks.Framework{Identifier: framework},
		RuntimeID: runtimeID,
		Behavior:  behavior,
	})
	if err != nil {
		log.Fatalf("resolve: %v", err)
	}

	fmt.Printf("resolved %d identities\n", len(plan.Accepted))
	for _, id := range plan.Accepted {
		fmt.Printf("  %s %s (%s)\n", id.Name, id.Version, id.Kind)
	}
	if plan.Diagnostics.Summary != "" {
		fmt.Println()
		fmt.Println("diagnostics:", plan.Diagnostics.Summary)
		for _, c := range plan.Diagnostics.Causes {
			fmt.Println("  -", c)
		}
	}
}
