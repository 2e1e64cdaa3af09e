package layers

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/pbxforge/pbxforge/pkg/forgeerrors"
	"github.com/pbxforge/pbxforge/pkg/metrics"
)

// Store reads layer fragments from a templates directory:
//
//	<dir>/base/common-packages.yml      shared package lists
//	<dir>/base/asterisk-base.yml        base configuration layer
//	<dir>/distributions/debian-<d>.yml  distribution override layer
//	<dir>/variants/<v>.yml              variant override layer
//
// A missing layer file is a warning, not an error: resolution proceeds with
// an empty layer so one absent override cannot abort a batch. Malformed YAML
// is a hard error since silently dropping half a layer would produce an
// inconsistent build.
//
// A Store is read-only after construction and safe for concurrent use.
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore creates a layer store rooted at dir.
func NewStore(dir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: dir, logger: logger}
}

// LoadBase returns the base layer: the base template combined with the shared
// package lists, already in canonical tree shape (packages.build /
// packages.runtime).
func (s *Store) LoadBase() (Tree, error) {
	tree, err := s.loadLayer("base", filepath.Join(s.dir, "base", "asterisk-base.yml"))
	if err != nil {
		return nil, err
	}

	packages, err := s.loadLayer("base", filepath.Join(s.dir, "base", "common-packages.yml"))
	if err != nil {
		return nil, err
	}

	pkgTree := Tree{}
	if build, ok := packages["common_build_packages"].([]interface{}); ok {
		pkgTree["build"] = build
	}
	if runtime, ok := packages["common_runtime_packages"].([]interface{}); ok {
		pkgTree["runtime"] = runtime
	}
	if len(pkgTree) > 0 {
		tree = Merge(tree, Tree{"packages": pkgTree})
	}
	return tree, nil
}

// LoadDistribution returns the named distribution layer in canonical shape.
// The on-disk format keeps the historical package_overrides key; it is folded
// into packages.build/packages.runtime here so the generic merge applies.
func (s *Store) LoadDistribution(name string) (Tree, error) {
	raw, err := s.loadLayer("distribution", filepath.Join(s.dir, "distributions", "debian-"+name+".yml"))
	if err != nil {
		return nil, err
	}

	tree := Tree{}
	for key, value := range raw {
		switch key {
		case "package_overrides":
			if po, ok := value.(Tree); ok {
				tree["packages"] = po
			}
		case "distribution":
			// canonical location is base.distribution, set by the resolver
		default:
			tree[key] = value
		}
	}
	return tree, nil
}

// LoadVariant returns the named variant layer.
func (s *Store) LoadVariant(name string) (Tree, error) {
	return s.loadLayer("variant", filepath.Join(s.dir, "variants", name+".yml"))
}

func (s *Store) loadLayer(kind, path string) (Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("layer source not found, using empty layer",
				zap.String("layer", kind),
				zap.String("path", path))
			metrics.LayerLoads.WithLabelValues(kind, "missing").Inc()
			return Tree{}, nil
		}
		metrics.LayerLoads.WithLabelValues(kind, metrics.StatusError).Inc()
		return nil, forgeerrors.Wrap(err, forgeerrors.ErrorTypeFile, "failed to read layer").
			WithDetail("path", path)
	}

	tree := Tree{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		metrics.LayerLoads.WithLabelValues(kind, metrics.StatusError).Inc()
		return nil, forgeerrors.Wrap(err, forgeerrors.ErrorTypeConfig, "malformed layer").
			WithDetail("path", path)
	}
	metrics.LayerLoads.WithLabelValues(kind, metrics.StatusSuccess).Inc()
	return tree, nil
}
