package layers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstitute(t *testing.T) {
	vars := Vars{Version: "22.6.0", Distribution: "trixie", Variant: "modern"}

	tree := Tree{
		"version": "{{VERSION}}",
		"base": Tree{
			"image": "debian:{{DISTRIBUTION}}-slim",
		},
		"labels": []interface{}{"variant={{VARIANT}}", "static"},
		"count":  3,
	}

	out := Substitute(tree, vars)

	assert.Equal(t, "22.6.0", out["version"])
	assert.Equal(t, "debian:trixie-slim", out["base"].(Tree)["image"])
	assert.Equal(t, []interface{}{"variant=modern", "static"}, out["labels"])
	assert.Equal(t, 3, out["count"], "non-string values pass through")
}

func TestSubstitute_Idempotent(t *testing.T) {
	vars := Vars{Version: "22.6.0", Distribution: "trixie", Variant: "modern"}
	tree := Tree{"version": "{{VERSION}}"}

	once := Substitute(tree, vars)
	twice := Substitute(once, vars)
	assert.Equal(t, once, twice)
}

func TestSubstitute_AddonsOnlyWhenSet(t *testing.T) {
	tree := Tree{"addons": "{{ADDONS_VERSION}}"}

	t.Run("unset leaves placeholder", func(t *testing.T) {
		out := Substitute(tree, Vars{Version: "22.6.0"})
		assert.Equal(t, "{{ADDONS_VERSION}}", out["addons"])
	})

	t.Run("set replaces", func(t *testing.T) {
		out := Substitute(tree, Vars{Version: "1.4.44", AddonsVersion: "1.4.9"})
		assert.Equal(t, "1.4.9", out["addons"])
	})
}

func TestSubstitute_KeysUntouched(t *testing.T) {
	tree := Tree{"{{VERSION}}": "value"}
	out := Substitute(tree, Vars{Version: "22.6.0"})

	_, ok := out["{{VERSION}}"]
	assert.True(t, ok, "placeholder keys are never substituted")
}

func TestSubstitute_InputUnmutated(t *testing.T) {
	tree := Tree{"version": "{{VERSION}}"}
	_ = Substitute(tree, Vars{Version: "22.6.0"})
	assert.Equal(t, "{{VERSION}}", tree["version"])
}
