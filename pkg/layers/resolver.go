// Package layers resolves the final build configuration for a PBX release by
// merging layered configuration fragments.
//
// Layers merge in fixed precedence order: base defaults, then distribution
// overrides, then variant overrides, then computed version-specific
// overrides. Scalars overwrite, lists concatenate with stable deduplication,
// mappings merge recursively. Era-gated corrections that cannot live in
// static layer data (the legacy SIP channel removal at 21, the mandatory
// WebSocket channel at 23) are applied after the generic merge and feed the
// module selector's flags and seeds.
//
// Resolution is a pure synchronous computation over read-only layer data:
// every call allocates a fresh configuration, which makes batch resolution
// safe to parallelize without locking.
package layers

import (
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/pbxforge/pbxforge/pkg/config"
	"github.com/pbxforge/pbxforge/pkg/forgeerrors"
	"github.com/pbxforge/pbxforge/pkg/menuselect"
	"github.com/pbxforge/pbxforge/pkg/version"
)

// Request identifies one resolution. Distribution and Variant are inferred
// from the version when empty. Features overlays the layer-provided feature
// flags; unrecognized names are ignored.
type Request struct {
	Version      string
	Distribution string
	Variant      string
	Features     map[string]bool
}

// Resolver merges configuration layers and delegates module selection.
type Resolver struct {
	store  *Store
	logger *zap.Logger
}

// NewResolver creates a resolver over the given layer store.
func NewResolver(store *Store, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{store: store, logger: logger}
}

// Resolve computes the complete build configuration for one request.
func (r *Resolver) Resolve(req Request) (*config.Config, error) {
	v, err := version.Parse(req.Version)
	if err != nil {
		return nil, err
	}

	dist := req.Distribution
	if dist == "" {
		dist = InferDistribution(v)
	}
	variant := req.Variant
	if variant == "" {
		variant = InferVariant(v)
	}

	log := r.logger.With(
		zap.String("version", req.Version),
		zap.String("distribution", dist),
		zap.String("variant", variant),
	)
	log.Debug("resolving configuration")

	base, err := r.store.LoadBase()
	if err != nil {
		return nil, err
	}
	distTree, err := r.store.LoadDistribution(dist)
	if err != nil {
		return nil, err
	}
	variantTree, err := r.store.LoadVariant(variant)
	if err != nil {
		return nil, err
	}

	tree := Merge(base, distTree, variantTree)
	applySourceDefaults(tree, v)
	applyEOLSetup(tree)

	// Effective flags: defaults, then layer features, then caller features,
	// then era forcing. The selector receives the final values.
	flags := config.DefaultFeatures()
	if features, ok := tree["features"].(Tree); ok {
		flags.Apply(boolValues(features))
	}
	flags.Apply(req.Features)

	var extraEnable, extraDisable []string
	if v.ChanSIPRemoved() {
		extraDisable = append(extraDisable, "chan_sip")
	}
	if v.RequiresWebSocket() {
		extraEnable = append(extraEnable, "chan_websocket")
		flags.WebSocket = true
	}

	addons := ""
	if variant == VariantLegacyAddons {
		addons = AddonVersion(v)
	}

	tree = Substitute(tree, Vars{
		Version:       v.String(),
		Distribution:  dist,
		Variant:       variant,
		AddonsVersion: addons,
	})

	sel, err := menuselect.SelectSeeded(v, flags, extraEnable, extraDisable)
	if err != nil {
		return nil, err
	}

	cfg := &config.Config{}
	if err := decodeTree(tree, cfg); err != nil {
		return nil, err
	}

	cfg.Version = v.String()
	cfg.Variant = variant
	cfg.Base.Distribution = dist
	cfg.Features = flags
	cfg.Product.Menuselect = config.Menuselect{
		Enable:            sel.Enable,
		Disable:           sel.Disable,
		DisableCategories: sel.DisableCategories,
	}
	if addons != "" && cfg.Product.Addons == nil {
		cfg.Product.Addons = &config.Addons{Version: addons}
	}
	applyDockerDefaults(cfg)

	log.Debug("configuration resolved",
		zap.Int("enable_modules", len(sel.Enable)),
		zap.Int("disable_modules", len(sel.Disable)))

	return cfg, nil
}

// applySourceDefaults sets the release source location. Certified builds
// always use the certified source tree regardless of what a layer declared;
// otherwise a layer-provided template wins and the standard location is the
// fallback. Placeholders resolve during substitution.
func applySourceDefaults(tree Tree, v *version.Version) {
	product, ok := tree["product"].(Tree)
	if !ok {
		product = Tree{}
		tree["product"] = product
	}
	source, _ := product["source"].(Tree)

	switch {
	case v.Certified:
		product["source"] = Tree{"url_template": config.CertifiedSourceURLTemplate}
	case source == nil || source["url_template"] == nil:
		product["source"] = Tree{"url_template": config.DefaultSourceURLTemplate}
	}
}

// applyEOLSetup folds a distribution's archive-repository setup commands into
// the package tree when the distribution is past end of life.
func applyEOLSetup(tree Tree) {
	eol, _ := tree["eol"].(bool)
	setup, hasSetup := tree["eol_setup"].([]interface{})
	delete(tree, "eol")
	delete(tree, "eol_setup")
	if !eol || !hasSetup {
		return
	}

	packages, ok := tree["packages"].(Tree)
	if !ok {
		packages = Tree{}
		tree["packages"] = packages
	}
	packages["eol_setup"] = setup
}

func applyDockerDefaults(cfg *config.Config) {
	if cfg.Docker.Healthcheck == (config.Healthcheck{}) {
		cfg.Docker.Healthcheck = config.DefaultHealthcheck()
	}
	if len(cfg.Docker.Networking.Ports) == 0 {
		cfg.Docker.Networking.Ports = config.DefaultPorts()
	}
}

// boolValues extracts the boolean entries of a tree; other value types are
// ignored the same way unrecognized feature names are.
func boolValues(tree Tree) map[string]bool {
	out := make(map[string]bool, len(tree))
	for key, value := range tree {
		if b, ok := value.(bool); ok {
			out[key] = b
		}
	}
	return out
}

// decodeTree converts a merged tree into the typed configuration via a YAML
// round trip, reusing the exact field mapping renderers consume.
func decodeTree(tree Tree, out *config.Config) error {
	data, err := yaml.Marshal(tree)
	if err != nil {
		return forgeerrors.Wrap(err, forgeerrors.ErrorTypeConfig, "failed to encode merged layers")
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return forgeerrors.Wrap(err, forgeerrors.ErrorTypeConfig, "merged layers do not form a valid configuration")
	}
	return nil
}
