package menuselect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbxforge/pbxforge/pkg/catalog"
	"github.com/pbxforge/pbxforge/pkg/config"
	"github.com/pbxforge/pbxforge/pkg/forgeerrors"
	"github.com/pbxforge/pbxforge/pkg/version"
)

func mustSelect(t *testing.T, raw string, flags config.Features) *Selection {
	t.Helper()
	sel, err := Select(version.MustParse(raw), flags)
	require.NoError(t, err)
	return sel
}

func contains(list []string, module string) bool {
	for _, m := range list {
		if m == module {
			return true
		}
	}
	return false
}

func TestSelect_ModernRelease(t *testing.T) {
	sel := mustSelect(t, "22.6.0", config.DefaultFeatures())

	assert.True(t, contains(sel.Enable, "chan_pjsip"))
	assert.True(t, contains(sel.Enable, "res_pjsip"))
	assert.True(t, contains(sel.Enable, "res_ari"))
	assert.True(t, contains(sel.Enable, "res_http_websocket"))
	assert.True(t, contains(sel.Enable, "app_confbridge"))
	assert.False(t, contains(sel.Enable, "app_meetme"), "modern builds use the conference bridge")
	assert.False(t, contains(sel.Enable, "chan_sip"))
	assert.True(t, contains(sel.Disable, "chan_sip"), "removed SIP channel stays on the disable list")
	assert.False(t, contains(sel.Enable, "chan_websocket"), "websocket channel only exists from 23")
}

func TestSelect_LegacyRelease(t *testing.T) {
	sel := mustSelect(t, "1.4.44", config.DefaultFeatures())

	assert.True(t, contains(sel.Enable, "chan_sip"))
	assert.True(t, contains(sel.Enable, "app_meetme"))
	assert.False(t, contains(sel.Enable, "app_confbridge"))
	assert.False(t, contains(sel.Enable, "chan_pjsip"))
	assert.False(t, contains(sel.Enable, "res_ari"))
	assert.False(t, contains(sel.Enable, "res_srtp"), "srtp is gated off legacy eras")
}

func TestSelect_TransitionalRelease(t *testing.T) {
	sel := mustSelect(t, "11.25.3", config.DefaultFeatures())

	assert.True(t, contains(sel.Enable, "chan_pjsip"), "transitional uses the modern channel set")
	assert.True(t, contains(sel.Enable, "app_confbridge"))
	assert.False(t, contains(sel.Enable, "res_pjsip"), "pjsip resource stack needs 12+")
	assert.False(t, contains(sel.Enable, "res_ari"), "ari needs 12+")
	assert.True(t, contains(sel.Enable, "res_http_websocket"), "websocket flag applies from transitional on")
}

func TestSelect_FeatureFlags(t *testing.T) {
	t.Run("disabled flags remove their module families", func(t *testing.T) {
		flags := config.DefaultFeatures()
		flags.PostgreSQL = false
		flags.ODBC = false
		flags.ARI = false
		flags.WebSocket = false
		flags.SRTP = false
		flags.HEP = false

		sel := mustSelect(t, "20.11.2", flags)
		for _, m := range sel.Enable {
			assert.NotContains(t, m, "pgsql")
			assert.NotContains(t, m, "odbc")
			assert.False(t, strings.HasPrefix(m, "res_ari"), "unexpected %s", m)
			assert.NotEqual(t, "res_http_websocket", m)
			assert.NotEqual(t, "res_srtp", m)
			assert.False(t, strings.HasPrefix(m, "res_hep"), "unexpected %s", m)
		}
	})

	t.Run("each database flag controls only its backend", func(t *testing.T) {
		flags := config.DefaultFeatures()
		flags.ODBC = false

		sel := mustSelect(t, "20.11.2", flags)
		assert.True(t, contains(sel.Enable, "res_config_pgsql"))
		assert.True(t, contains(sel.Enable, "cdr_pgsql"))
		assert.False(t, contains(sel.Enable, "res_config_odbc"))
		assert.False(t, contains(sel.Enable, "cdr_odbc"))
	})
}

func TestSelect_WebSocketMandatoryFrom23(t *testing.T) {
	// From 23 the websocket and ARI families are forced even when every
	// flag is off.
	flags := config.Features{}

	sel := mustSelect(t, "23.0.0", flags)
	assert.True(t, contains(sel.Enable, "chan_websocket"))
	assert.True(t, contains(sel.Enable, "res_http_websocket"))
	assert.True(t, contains(sel.Enable, "res_ari"))
}

func TestSelect_ChanSIPRemovedAt21(t *testing.T) {
	for _, raw := range []string{"21.6.1", "22.6.0", "23.0.0", "git"} {
		t.Run(raw, func(t *testing.T) {
			sel := mustSelect(t, raw, config.DefaultFeatures())
			assert.False(t, contains(sel.Enable, "chan_sip"))
			assert.True(t, contains(sel.Disable, "chan_sip"))
		})
	}
}

func TestSelect_AlwaysExcluded(t *testing.T) {
	versions := []string{"1.2.40", "1.8.32.3", "11.25.3", "13.38.3", "22.6.0", "git"}
	for _, raw := range versions {
		t.Run(raw, func(t *testing.T) {
			sel := mustSelect(t, raw, config.DefaultFeatures())
			for _, excluded := range catalog.AlwaysExcluded() {
				assert.False(t, contains(sel.Enable, excluded),
					"%s must never be enabled", excluded)
				assert.True(t, contains(sel.Disable, excluded))
			}
		})
	}
}

func TestSelect_DisjointAndSorted(t *testing.T) {
	versions := []string{"1.2.40", "1.8.32.3", "10.12.4", "11.25.3", "13.38.3",
		"18.9-cert17", "21.6.1", "22.6.0", "23.0.0", "git"}

	for _, raw := range versions {
		t.Run(raw, func(t *testing.T) {
			sel := mustSelect(t, raw, config.DefaultFeatures())

			enabled := make(map[string]struct{}, len(sel.Enable))
			for _, m := range sel.Enable {
				_, dup := enabled[m]
				assert.False(t, dup, "duplicate enable %s", m)
				enabled[m] = struct{}{}
			}
			for _, m := range sel.Disable {
				_, both := enabled[m]
				assert.False(t, both, "%s is both enabled and disabled", m)
			}

			assert.True(t, sortIsStrict(sel.Enable), "enable list must be sorted")
			assert.True(t, sortIsStrict(sel.Disable), "disable list must be sorted")
		})
	}
}

func sortIsStrict(list []string) bool {
	for i := 1; i < len(list); i++ {
		if list[i-1] >= list[i] {
			return false
		}
	}
	return true
}

func TestSelect_Deterministic(t *testing.T) {
	first := mustSelect(t, "22.6.0", config.DefaultFeatures())
	second := mustSelect(t, "22.6.0", config.DefaultFeatures())
	assert.Equal(t, first, second)
}

func TestSelect_CertifiedMatchesPlain(t *testing.T) {
	cert := mustSelect(t, "18.9-cert17", config.DefaultFeatures())
	plain := mustSelect(t, "18.9.0", config.DefaultFeatures())
	assert.Equal(t, plain.Enable, cert.Enable)
	assert.Equal(t, plain.Disable, cert.Disable)
}

func TestSelectSeeded(t *testing.T) {
	t.Run("seeded enable wins over flags", func(t *testing.T) {
		flags := config.DefaultFeatures()
		flags.WebSocket = false

		sel, err := SelectSeeded(version.MustParse("22.6.0"), flags,
			[]string{"res_http_websocket"}, nil)
		require.NoError(t, err)
		assert.True(t, contains(sel.Enable, "res_http_websocket"))
	})

	t.Run("seeded disable removes an era-seeded module", func(t *testing.T) {
		sel, err := SelectSeeded(version.MustParse("18.26.4"), config.DefaultFeatures(),
			nil, []string{"chan_iax2"})
		require.NoError(t, err)
		assert.False(t, contains(sel.Enable, "chan_iax2"))
		assert.True(t, contains(sel.Disable, "chan_iax2"))
	})

	t.Run("forced module on the exclusion list is a conflict", func(t *testing.T) {
		_, err := SelectSeeded(version.MustParse("22.6.0"), config.DefaultFeatures(),
			[]string{"chan_dahdi"}, nil)
		require.Error(t, err)
		assert.True(t, forgeerrors.IsType(err, forgeerrors.ErrorTypeConflict))
	})
}

func TestRequired(t *testing.T) {
	t.Run("modern baseline survives selection", func(t *testing.T) {
		v := version.MustParse("22.6.0")
		sel := mustSelect(t, "22.6.0", config.DefaultFeatures())
		for m := range Required(v) {
			assert.True(t, contains(sel.Enable, m), "required module %s missing", m)
		}
	})

	t.Run("legacy baseline survives selection", func(t *testing.T) {
		v := version.MustParse("1.8.32.3")
		sel := mustSelect(t, "1.8.32.3", config.DefaultFeatures())
		for m := range Required(v) {
			assert.True(t, contains(sel.Enable, m), "required module %s missing", m)
		}
	})
}
