// Package config defines the resolved build-configuration object for a single
// PBX release. A Config is constructed fresh per resolution request, is
// immutable once returned, and is the input handed to external renderers.
//
// The YAML shape mirrors the generated config files consumed by the
// Dockerfile and build-script renderers:
//
//	version: "22.6.0"
//	base: {os, distribution, image}
//	packages: {build: [...], runtime: [...]}
//	product:
//	  menuselect: {enable: [...], disable: [...], disable_categories: [...]}
//	  configure_options: [...]
//	  source: {url_template: ...}
//	docker: {healthcheck: {...}, networking: {ports: [...]}}
//	features: {...}
package config

import (
	"fmt"
)

// Source URL templates for release tarballs. The certified template applies
// when the release identifier carries a -cert marker; certification is an
// axis orthogonal to era and distribution.
const (
	DefaultSourceURLTemplate   = "https://downloads.asterisk.org/pub/telephony/asterisk/releases/asterisk-{{VERSION}}.tar.gz"
	CertifiedSourceURLTemplate = "https://downloads.asterisk.org/pub/telephony/certified-asterisk/releases/asterisk-certified-{{VERSION}}.tar.gz"
)

// Config is the fully merged, variable-substituted build configuration.
type Config struct {
	// Version is the release identifier this configuration was resolved for
	Version string `yaml:"version" json:"version"`
	// Variant names the build flavor the variant layer was selected from
	Variant string `yaml:"variant,omitempty" json:"variant,omitempty"`
	// Base describes the container base image
	Base Base `yaml:"base" json:"base"`
	// Packages lists distribution packages per build stage
	Packages Packages `yaml:"packages" json:"packages"`
	// Product carries the PBX compile-time configuration
	Product Product `yaml:"product" json:"product"`
	// Docker carries container runtime settings
	Docker Docker `yaml:"docker" json:"docker"`
	// Features records the effective feature flags after era overrides
	Features Features `yaml:"features" json:"features"`
}

// Base describes the container base image layer.
type Base struct {
	OS           string `yaml:"os" json:"os"`
	Distribution string `yaml:"distribution" json:"distribution"`
	Image        string `yaml:"image" json:"image"`
}

// Packages lists distribution packages by build stage. Order is meaningful:
// install scripts consume these lists as written.
type Packages struct {
	Build   []string `yaml:"build" json:"build"`
	Runtime []string `yaml:"runtime" json:"runtime"`
	// EOLSetup holds archive-repository setup commands for distributions
	// past their end of life
	EOLSetup []string `yaml:"eol_setup,omitempty" json:"eol_setup,omitempty"`
}

// Product carries the PBX compile-time configuration.
type Product struct {
	Menuselect       Menuselect `yaml:"menuselect" json:"menuselect"`
	ConfigureOptions []string   `yaml:"configure_options,omitempty" json:"configure_options,omitempty"`
	Source           Source     `yaml:"source" json:"source"`
	Addons           *Addons    `yaml:"addons,omitempty" json:"addons,omitempty"`
}

// Menuselect is the resolved module selection.
type Menuselect struct {
	Enable            []string `yaml:"enable" json:"enable"`
	Disable           []string `yaml:"disable" json:"disable"`
	DisableCategories []string `yaml:"disable_categories" json:"disable_categories"`
}

// Source locates the release tarball.
type Source struct {
	URLTemplate string `yaml:"url_template" json:"url_template"`
}

// Addons names the companion add-on package bundled with certain legacy
// variants.
type Addons struct {
	Version string `yaml:"version" json:"version"`
}

// Docker carries container runtime settings.
type Docker struct {
	Healthcheck Healthcheck `yaml:"healthcheck" json:"healthcheck"`
	Networking  Networking  `yaml:"networking" json:"networking"`
}

// Healthcheck configures the container health probe.
type Healthcheck struct {
	Enabled     bool   `yaml:"enabled" json:"enabled"`
	Command     string `yaml:"command" json:"command"`
	Interval    string `yaml:"interval" json:"interval"`
	Timeout     string `yaml:"timeout" json:"timeout"`
	StartPeriod string `yaml:"start_period" json:"start_period"`
	Retries     int    `yaml:"retries" json:"retries"`
}

// Networking lists exposed container ports.
type Networking struct {
	Ports []string `yaml:"ports" json:"ports"`
}

// DefaultHealthcheck returns the healthcheck applied when no layer sets one.
func DefaultHealthcheck() Healthcheck {
	return Healthcheck{
		Enabled:     true,
		Command:     "/usr/local/bin/healthcheck.sh",
		Interval:    "30s",
		Timeout:     "10s",
		StartPeriod: "30s",
		Retries:     3,
	}
}

// DefaultPorts returns the signalling and media ports exposed when no layer
// sets them.
func DefaultPorts() []string {
	return []string{"5060/udp", "5060/tcp", "5061/tcp", "10000-10099/udp"}
}

// Validate checks the resolved configuration for internal consistency.
// Renderers depend on these invariants holding for every resolved config.
func (c *Config) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("version is required")
	}
	if c.Base.Distribution == "" {
		return fmt.Errorf("base.distribution is required")
	}
	if c.Base.Image == "" {
		return fmt.Errorf("base.image is required")
	}
	if c.Product.Source.URLTemplate == "" {
		return fmt.Errorf("product.source.url_template is required")
	}

	enabled := make(map[string]struct{}, len(c.Product.Menuselect.Enable))
	for _, m := range c.Product.Menuselect.Enable {
		enabled[m] = struct{}{}
	}
	for _, m := range c.Product.Menuselect.Disable {
		if _, ok := enabled[m]; ok {
			return fmt.Errorf("module %q is both enabled and disabled", m)
		}
	}
	return nil
}
