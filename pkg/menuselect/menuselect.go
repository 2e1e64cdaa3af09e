// Package menuselect computes the feature-module selection for a PBX release.
//
// Selection is an ordered pipeline of pure set-transforming rules over the
// static catalog: seed exclusions, seed channels by era, add applications,
// pick the conferencing application, add resources, add the signalling stack,
// add flag-driven database and interface modules, apply era-forced overrides,
// then deduplicate, sort, and verify the enable/disable sets are disjoint.
// Later rules may force-override earlier ones; never the reverse.
//
// The output is deterministic for identical inputs: enable and disable are
// deduplicated and lexicographically sorted, and the generated command list
// follows a fixed ordering that consumers diff against.
package menuselect

import (
	"sort"
	"strings"

	"github.com/pbxforge/pbxforge/pkg/catalog"
	"github.com/pbxforge/pbxforge/pkg/config"
	"github.com/pbxforge/pbxforge/pkg/forgeerrors"
	"github.com/pbxforge/pbxforge/pkg/version"
)

// Selection is the resolved module set for one release.
type Selection struct {
	Enable            []string `yaml:"enable" json:"enable"`
	Disable           []string `yaml:"disable" json:"disable"`
	DisableCategories []string `yaml:"disable_categories" json:"disable_categories"`
}

// state carries the working sets through the rule pipeline. Modules in the
// forced set were mandated by era policy or explicit seeds; a forced module
// colliding with the exclusion list is a catalog defect, not something to
// resolve silently.
type state struct {
	v       *version.Version
	flags   config.Features
	enable  map[string]struct{}
	disable map[string]struct{}
	forced  map[string]struct{}
}

// rule is one step of the selection pipeline.
type rule func(*state)

func (s *state) add(modules ...string) {
	for _, m := range modules {
		s.enable[m] = struct{}{}
	}
}

func (s *state) force(modules ...string) {
	for _, m := range modules {
		s.enable[m] = struct{}{}
		s.forced[m] = struct{}{}
	}
}

func (s *state) drop(modules ...string) {
	for _, m := range modules {
		delete(s.enable, m)
	}
}

func (s *state) exclude(modules ...string) {
	for _, m := range modules {
		s.disable[m] = struct{}{}
	}
}

// Select computes the module selection for a version and feature-flag set.
func Select(v *version.Version, flags config.Features) (*Selection, error) {
	return SelectSeeded(v, flags, nil, nil)
}

// SelectSeeded computes the module selection with additional explicit seeds,
// typically supplied by era-gated version overrides. Seeded enables are
// treated as forced: they win over feature flags, and colliding with the
// always-excluded set is a fatal conflict.
func SelectSeeded(v *version.Version, flags config.Features, extraEnable, extraDisable []string) (*Selection, error) {
	s := &state{
		v:       v,
		flags:   flags,
		enable:  make(map[string]struct{}),
		disable: make(map[string]struct{}),
		forced:  make(map[string]struct{}),
	}

	pipeline := []rule{
		seedExclusions,
		seedChannels,
		addApplications,
		addConferencing,
		addResources,
		addSignalling,
		addDatabases,
		addInterfaces,
		addSecurity,
		dropRemovedModules,
	}
	for _, r := range pipeline {
		r(s)
	}

	s.force(extraEnable...)
	s.exclude(extraDisable...)
	// An explicit disable seed removes the module from the channel list it
	// may have been seeded into (the v21 legacy SIP removal).
	for _, m := range extraDisable {
		if _, ok := s.forced[m]; !ok {
			s.drop(m)
		}
	}

	return finalize(s)
}

// seedExclusions seeds the disable set with the hardware-dependent and
// known-problematic modules excluded from every build.
func seedExclusions(s *state) {
	s.exclude(catalog.AlwaysExcluded()...)
}

// seedChannels seeds the channel drivers for the version's era. The WebSocket
// channel rides in the modern list but only exists from the gate at 23; below
// that it is removed again.
func seedChannels(s *state) {
	if s.v.IsLegacy() {
		s.add(catalog.ChannelModules(catalog.ChannelsLegacy)...)
		return
	}
	s.add(catalog.ChannelModules(catalog.ChannelsModern)...)
	if !s.v.RequiresWebSocket() {
		s.drop("chan_websocket")
	}
}

// addApplications adds the application groups available at every era.
func addApplications(s *state) {
	s.add(catalog.ApplicationModules(catalog.AppsCore)...)
	s.add(catalog.ApplicationModules(catalog.AppsVoicemail)...)
	s.add(catalog.ApplicationModules(catalog.AppsCallFeatures)...)
	s.add(catalog.ApplicationModules(catalog.AppsControl)...)
}

// addConferencing picks exactly one conferencing application: the modern
// conference bridge from its availability gate, the legacy application below.
func addConferencing(s *state) {
	if s.v.SupportsConfBridge() && !s.v.IsLegacy() {
		s.add("app_confbridge")
	} else {
		s.add("app_meetme")
	}
}

// addResources adds the core resource, CDR, and CEL modules present at every
// era.
func addResources(s *state) {
	s.add(catalog.ResourceModules(catalog.ResCore)...)
	s.add(catalog.ResourceModules(catalog.ResCDRCEL)...)
	s.add(catalog.CDRModules("core")...)
	s.add(catalog.CELModules("core")...)
}

// addSignalling adds the PJSIP stack where the era supports it.
func addSignalling(s *state) {
	if s.v.SupportsPJSIP() && !s.v.IsLegacy() {
		s.add(catalog.ResourceModules(catalog.ResPJSIP)...)
	}
}

// addDatabases adds database-backed resource/CDR/CEL modules per feature
// flag. Each flag independently controls its own backend subset.
func addDatabases(s *state) {
	if s.flags.PostgreSQL {
		s.add(matching("pgsql", catalog.ResourceModules(catalog.ResDatabase))...)
		s.add(matching("pgsql", catalog.CDRModules("database"))...)
		s.add(matching("pgsql", catalog.CELModules("database"))...)
	}
	if s.flags.ODBC {
		s.add(matching("odbc", catalog.ResourceModules(catalog.ResDatabase))...)
		s.add(matching("odbc", catalog.CDRModules("database"))...)
		s.add(matching("odbc", catalog.CELModules("database"))...)
	}
}

// addInterfaces adds the ARI and WebSocket interface modules. From the gate
// at 23 both families are mandatory and override the feature flags; below it
// they follow their flags at eras that support them.
func addInterfaces(s *state) {
	if s.v.RequiresWebSocket() {
		s.force(catalog.ResourceModules(catalog.ResWebSocket)...)
		s.force(catalog.ResourceModules(catalog.ResARI)...)
		s.force("chan_websocket")
		return
	}
	if s.v.SupportsARI() && s.flags.ARI {
		s.add(catalog.ResourceModules(catalog.ResARI)...)
	}
	if s.flags.WebSocket && !s.v.IsLegacy() {
		s.add(catalog.ResourceModules(catalog.ResWebSocket)...)
	}
}

// addSecurity adds SRTP and monitoring/telemetry modules per flag, gated to
// non-legacy eras.
func addSecurity(s *state) {
	if s.flags.SRTP && !s.v.IsLegacy() {
		s.add(catalog.ResourceModules(catalog.ResSecurity)...)
	}
	if s.flags.HEP && !s.v.IsLegacy() {
		s.add(catalog.ResourceModules(catalog.ResMonitoring)...)
	}
}

// dropRemovedModules excludes modules the product itself removed. The legacy
// SIP channel was deleted at 21; keeping it on the explicit disable list makes
// generated scripts safe against stale makeopts carrying it.
func dropRemovedModules(s *state) {
	if s.v.ChanSIPRemoved() {
		s.drop("chan_sip")
		s.exclude("chan_sip")
	}
}

// finalize enforces the disjointness invariant, deduplicates, and sorts.
// A module both enabled by a generic rule and always-excluded loses to the
// exclusion; a forced module hitting the exclusion list means the two
// independently maintained rule sets disagree, and that is surfaced as a
// conflict rather than silently resolved.
func finalize(s *state) (*Selection, error) {
	for m := range s.enable {
		if _, excluded := s.disable[m]; !excluded {
			continue
		}
		if _, forced := s.forced[m]; forced {
			return nil, forgeerrors.Newf(forgeerrors.ErrorTypeConflict,
				"module %s is both force-enabled and excluded", m).
				WithDetail("module", m).
				WithDetail("version", s.v.String())
		}
		delete(s.enable, m)
	}

	sel := &Selection{
		Enable:            sortedKeys(s.enable),
		Disable:           sortedKeys(s.disable),
		DisableCategories: catalog.DisabledCategories(),
	}
	return sel, nil
}

func matching(substr string, modules []string) []string {
	out := modules[:0]
	for _, m := range modules {
		if strings.Contains(m, substr) {
			out = append(out, m)
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Required returns the modules that must survive selection for a minimally
// functional build at the given version.
func Required(v *version.Version) map[string]struct{} {
	base := map[string]struct{}{
		"chan_local":         {},
		"app_dial":           {},
		"app_playback":       {},
		"app_echo":           {},
		"res_timing_timerfd": {},
		"res_crypto":         {},
		"res_rtp_asterisk":   {},
	}

	if !v.IsLegacy() && v.SupportsPJSIP() {
		base["chan_pjsip"] = struct{}{}
		base["res_pjsip"] = struct{}{}
		base["res_pjsip_session"] = struct{}{}
	} else {
		base["chan_sip"] = struct{}{}
	}

	return base
}
