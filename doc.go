// Package pbxforge resolves version-aware build configurations for a
// containerized PBX product spanning releases from the 1.2 line up to
// current development tips.
//
// A single release identifier drives everything: the version is classified
// into a capability era, the era picks the distribution and variant layers,
// the layers merge into one configuration tree, and the module selector
// computes which feature modules the build compiles in. The resolved
// configuration feeds the Dockerfile and build-script renderers.
//
// # Architecture
//
// Resolution is a pure synchronous pipeline over read-only data:
//
// 1. Version classification: parse the identifier, classify its era
// (legacy, transitional, modern, development tip), and evaluate the
// capability gates tied to specific majors.
//
// 2. Layer merge: base defaults, distribution overrides, variant overrides,
// and computed version overrides merge in fixed precedence order. Scalars
// overwrite, lists concatenate with stable deduplication, mappings merge
// recursively.
//
// 3. Module selection: an ordered pipeline of set-transforming rules over
// the static module catalog produces disjoint, sorted enable/disable sets
// plus the menuselect command list consumers diff against.
//
// 4. Substitution: {{VERSION}}-style placeholders resolve against the
// request, leaving configuration values free of template syntax.
//
// # Quick Start
//
// Resolve one release:
//
//	import (
//	    "github.com/pbxforge/pbxforge/pkg/layers"
//	    "github.com/pbxforge/pbxforge/pkg/logger"
//	)
//
//	store := layers.NewStore("templates", logger.Get())
//	resolver := layers.NewResolver(store, logger.Get())
//
//	cfg, err := resolver.Resolve(layers.Request{Version: "22.6.0"})
//
// Or generate every supported build in parallel:
//
//	reg, _ := registry.Load("asterisk/supported-asterisk-builds.yml")
//	runner := batch.NewRunner(resolver, &batch.FileSink{Dir: "configs/generated"},
//	    batch.Config{Workers: 8}, logger.Get())
//	summary, err := runner.Run(ctx, reg)
//
// # Key Packages
//
//	pkg/version     - Release identifier parsing and era classification
//	pkg/catalog     - Static feature-module tables
//	pkg/menuselect  - Module selection pipeline and command generation
//	pkg/layers      - Layer store, merge engine, substitution, resolver
//	pkg/registry    - Supported-builds registry and image naming
//	pkg/config      - Resolved configuration model and feature flags
//	pkg/schema      - Optional JSON-schema validation gate
//	pkg/forgeerrors - Structured error handling
//	pkg/logger      - Structured logging
//	pkg/metrics     - Resolution and batch metrics
//	internal/batch  - Parallel batch generation
//
// Every resolution allocates a fresh configuration against immutable layer
// and catalog data, so batch generation parallelizes without locking.
package pbxforge
