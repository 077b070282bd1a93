package controllers

import "errors"

// ErrNoResolverConfigured indicates ResolutionRequestReconciler.Resolver was
// left nil; main() should always inject a resolver.NewDefault before
// starting the manager, but the reconciler does not default one silently
// because provider chain configuration is caller-supplied.
var ErrNoResolverConfigured = errors.New("controllers: resolver not configured")
