// Package version classifies PBX release identifiers.
//
// A release identifier is either a plain release string following the grammar
// MAJOR.MINOR[.PATCH][-(alpha|beta|rc)N][-certN], or one of the development
// tip tokens "git" / "git-<revision>". The package parses identifiers into a
// structured Version and exposes the era predicates the rest of the system
// gates module selection and layer resolution on.
//
// Era classification is a pure function of the parsed version and is never
// stored: legacy covers the 1.2-1.8 line, transitional covers majors 9-11,
// modern is major 12 and above, with finer capability gates at 21 (legacy SIP
// channel removed) and 23 (WebSocket transport mandatory). Development tip
// builds sort above every numbered release.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pbxforge/pbxforge/pkg/forgeerrors"
)

// DevTipMajor is the sentinel major assigned to development tip builds so
// that every numeric era gate treats them as the newest release.
const DevTipMajor = 99

// Era is a coarse classification of a release's capability generation.
type Era string

const (
	// EraLegacy covers the 1.2-1.8 release line.
	EraLegacy Era = "legacy"
	// EraTransitional covers majors 9 through 11.
	EraTransitional Era = "transitional"
	// EraModern covers major 12 and above.
	EraModern Era = "modern"
	// EraDevTip marks development tip ("git") builds.
	EraDevTip Era = "devtip"
)

// releasePattern accepts MAJOR.MINOR with an optional patch, optional extra
// numeric components (historic four-part releases such as 1.8.32.3), and an
// optional pre-release tag.
var releasePattern = regexp.MustCompile(`^(\d+)\.(\d+)(?:\.(\d+))?(?:\.\d+)*(?:-(alpha|beta|rc)\d*)?$`)

// Version is the structured form of a release identifier.
type Version struct {
	Major int
	Minor int
	Patch int
	// Suffix holds the pre-release tag (alpha, beta, rc) without its
	// trailing number, empty for final releases.
	Suffix string
	// Certified is set when the identifier carried a -certN marker.
	// Certification selects an alternate source location downstream and
	// never affects era classification or module selection.
	Certified bool
	// DevTip is set for git / git-<revision> identifiers.
	DevTip bool

	raw string
}

// Parse classifies a release identifier. It fails hard with an
// invalid_version error when the identifier does not match the accepted
// grammar: module selection is era dependent and a guessed version would
// silently produce an invalid build.
func Parse(s string) (*Version, error) {
	if s == "git" || strings.HasPrefix(s, "git-") {
		return &Version{
			Major:  DevTipMajor,
			Minor:  DevTipMajor,
			Patch:  DevTipMajor,
			DevTip: true,
			raw:    s,
		}, nil
	}

	base := s
	certified := false
	if idx := strings.Index(s, "-cert"); idx >= 0 {
		base = s[:idx]
		certified = true
	}

	m := releasePattern.FindStringSubmatch(base)
	if m == nil {
		return nil, forgeerrors.Newf(forgeerrors.ErrorTypeInvalidVersion,
			"invalid version format: %s", s).WithDetail("version", s)
	}

	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	patch := 0
	if m[3] != "" {
		patch, _ = strconv.Atoi(m[3])
	}

	return &Version{
		Major:     major,
		Minor:     minor,
		Patch:     patch,
		Suffix:    m[4],
		Certified: certified,
		DevTip:    false,
		raw:       s,
	}, nil
}

// MustParse is a test and table-literal helper that panics on parse failure.
func MustParse(s string) *Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the original identifier the version was parsed from.
func (v *Version) String() string {
	return v.raw
}

// MajorMinor returns the "MAJOR.MINOR" prefix, the key used by the
// addon-version lookup table.
func (v *Version) MajorMinor() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Era returns the capability era for this version.
func (v *Version) Era() Era {
	switch {
	case v.DevTip:
		return EraDevTip
	case v.Major >= 12:
		return EraModern
	case v.Major >= 9:
		return EraTransitional
	default:
		return EraLegacy
	}
}

// IsLegacy reports whether this release belongs to the legacy 1.2-1.8 line.
func (v *Version) IsLegacy() bool {
	return v.Major == 1 && v.Minor >= 2 && v.Minor <= 8
}

// SupportsPJSIP reports whether the PJSIP signalling stack exists in this
// release (major 12 and above).
func (v *Version) SupportsPJSIP() bool {
	return v.Major >= 12
}

// SupportsARI reports whether the ARI interface layer exists in this release
// (major 12 and above).
func (v *Version) SupportsARI() bool {
	return v.Major >= 12
}

// SupportsConfBridge reports whether the modern conference bridge application
// is available (major 10 and above).
func (v *Version) SupportsConfBridge() bool {
	return v.Major >= 10
}

// ChanSIPRemoved reports whether the legacy SIP channel driver was removed
// from the product (major 21 and above), forcing it onto the exclusion list.
func (v *Version) ChanSIPRemoved() bool {
	return v.Major >= 21
}

// RequiresWebSocket reports whether the WebSocket channel and transport
// modules are mandatory (major 23 and above). Below this gate they remain
// feature-flag controlled.
func (v *Version) RequiresWebSocket() bool {
	return v.Major >= 23
}
