package layers

import "github.com/pbxforge/pbxforge/pkg/version"

// Distribution codenames in support order. Each multi-year release band maps
// to the codename it was contemporary with; development tip always maps to
// the newest.
const (
	DistJessie   = "jessie"
	DistBuster   = "buster"
	DistBookworm = "bookworm"
	DistTrixie   = "trixie"
)

// Variant names. A variant selects which variant layer and feature defaults
// apply.
const (
	VariantLegacyAddons = "legacy-addons"
	VariantLegacy       = "legacy"
	VariantAsterisk11   = "asterisk-11"
	VariantModern       = "modern"
)

// InferDistribution maps a version to its default distribution. This is a
// pure function of the version, independent of any layer data.
func InferDistribution(v *version.Version) string {
	switch {
	case v.Major == 1 || (v.Major >= 10 && v.Major <= 12):
		return DistJessie
	case v.Major >= 13 && v.Major <= 15:
		return DistBuster
	case v.Major == 16 || v.Major == 17:
		return DistBookworm
	default:
		return DistTrixie
	}
}

// InferVariant maps a version to its default build variant. Certified 11
// releases deliberately fall through to modern: the certified line tracked
// the modern template while plain 11 kept its own layer.
func InferVariant(v *version.Version) string {
	switch {
	case v.Major == 1 && (v.Minor == 2 || v.Minor == 4 || v.Minor == 6):
		return VariantLegacyAddons
	case (v.Major == 1 && v.Minor == 8) || v.Major == 10:
		return VariantLegacy
	case v.Major == 11 && !v.Certified:
		return VariantAsterisk11
	default:
		return VariantModern
	}
}

// addonVersions maps the product's major.minor to the bundled add-on package
// version for legacy-addons builds.
var addonVersions = map[string]string{
	"1.2": "1.2.9",
	"1.4": "1.4.9",
	"1.6": "1.6.2.4",
}

// AddonVersion resolves the companion add-on version for a release. Unmapped
// major.minor values pass the product version through unchanged; that is
// documented fallback behavior, not an error.
func AddonVersion(v *version.Version) string {
	if addon, ok := addonVersions[v.MajorMinor()]; ok {
		return addon
	}
	return v.String()
}
