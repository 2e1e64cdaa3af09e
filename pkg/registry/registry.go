// Package registry reads the supported-builds document: the ordered list of
// release records driving batch resolution and artifact naming.
//
// Each record names a version, optional additional image tags, and an OS
// matrix of (distribution, architectures) entries. The first matrix entry of
// a record determines the canonical distribution for that version's default
// artifact name. A matrix entry may pin a template name, which maps onto a
// build variant and bypasses version-based variant inference.
package registry

import (
	"fmt"
	"os"
	"sort"
	"strings"

	goversion "github.com/hashicorp/go-version"
	"gopkg.in/yaml.v3"

	"github.com/pbxforge/pbxforge/pkg/forgeerrors"
	"github.com/pbxforge/pbxforge/pkg/layers"
)

// OSEntry is one (distribution, architectures) row of a build's OS matrix.
type OSEntry struct {
	Distribution  string   `yaml:"distribution" json:"distribution"`
	Architectures []string `yaml:"architectures" json:"architectures"`
	// Template optionally pins the layer template for this entry instead
	// of inferring the variant from the version
	Template string `yaml:"template,omitempty" json:"template,omitempty"`
}

// Build is one supported release record.
type Build struct {
	Version        string    `yaml:"version" json:"version"`
	AdditionalTags []string  `yaml:"additional_tags,omitempty" json:"additional_tags,omitempty"`
	OSMatrix       []OSEntry `yaml:"os_matrix" json:"os_matrix"`
}

// Pair is one (version, distribution) combination to resolve.
type Pair struct {
	Version       string
	Distribution  string
	Variant       string // empty means infer from version
	Architectures []string
}

// Registry is the loaded supported-builds document.
type Registry struct {
	Builds []Build `yaml:"latest_builds" json:"latest_builds"`
}

// Load reads and parses a supported-builds file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, forgeerrors.Wrap(err, forgeerrors.ErrorTypeFile, "failed to read supported builds").
			WithDetail("path", path)
	}

	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, forgeerrors.Wrap(err, forgeerrors.ErrorTypeConfig, "malformed supported builds").
			WithDetail("path", path)
	}
	return &reg, nil
}

// Pairs enumerates every (version, distribution) combination in registry
// order, carrying pinned variants where a matrix entry names a template.
func (r *Registry) Pairs() []Pair {
	var pairs []Pair
	for _, build := range r.Builds {
		for _, entry := range build.OSMatrix {
			pairs = append(pairs, Pair{
				Version:       build.Version,
				Distribution:  entry.Distribution,
				Variant:       variantForTemplate(entry.Template),
				Architectures: entry.Architectures,
			})
		}
	}
	return pairs
}

// ImageName returns the canonical artifact name for a version, derived from
// the first OS matrix entry of its record. Unknown versions fall back to the
// "unknown" distribution; supported versions never hit that path.
func (r *Registry) ImageName(version string) string {
	for _, build := range r.Builds {
		if build.Version != version {
			continue
		}
		if len(build.OSMatrix) == 0 {
			break
		}
		return fmt.Sprintf("%s_debian-%s", version, build.OSMatrix[0].Distribution)
	}
	return fmt.Sprintf("%s_debian-%s", version, "unknown")
}

// SortedVersions returns all registry versions in ascending release order.
// Development tip builds sort last; versions that fail semantic parsing keep
// their registry position relative to each other at the end, before tips.
func (r *Registry) SortedVersions() []string {
	type entry struct {
		raw    string
		parsed *goversion.Version
		tip    bool
		index  int
	}

	entries := make([]entry, 0, len(r.Builds))
	for i, build := range r.Builds {
		e := entry{raw: build.Version, index: i}
		if build.Version == "git" || strings.HasPrefix(build.Version, "git-") {
			e.tip = true
		} else if parsed, err := goversion.NewVersion(strings.SplitN(build.Version, "-cert", 2)[0]); err == nil {
			e.parsed = parsed
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.tip != b.tip:
			return b.tip
		case a.parsed != nil && b.parsed != nil:
			if a.parsed.Equal(b.parsed) {
				return a.index < b.index
			}
			return a.parsed.LessThan(b.parsed)
		case a.parsed != nil:
			return true
		case b.parsed != nil:
			return false
		default:
			return a.index < b.index
		}
	})

	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.raw
	}
	return out
}

// variantForTemplate maps a pinned template name onto a build variant.
func variantForTemplate(template string) string {
	switch {
	case template == "":
		return ""
	case strings.Contains(template, layers.VariantLegacyAddons):
		return layers.VariantLegacyAddons
	case strings.Contains(template, layers.VariantLegacy):
		return layers.VariantLegacy
	case strings.Contains(template, layers.VariantAsterisk11):
		return layers.VariantAsterisk11
	default:
		return ""
	}
}
