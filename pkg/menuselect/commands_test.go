package menuselect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbxforge/pbxforge/pkg/config"
)

func TestCommands_Ordering(t *testing.T) {
	sel := &Selection{
		Enable:            []string{"app_dial", "chan_pjsip"},
		Disable:           []string{"chan_dahdi", "chan_sip"},
		DisableCategories: []string{"MENUSELECT_CORE_SOUNDS", "MENUSELECT_MOH"},
	}

	commands := Commands(sel)
	require.Len(t, commands, 8)

	// Fixed prologue, then categories, then enables, then disables. The
	// order is a compatibility contract consumers diff against.
	assert.Equal(t, "menuselect/menuselect --disable BUILD_NATIVE menuselect.makeopts", commands[0])
	assert.Equal(t, "menuselect/menuselect --enable BETTER_BACKTRACES menuselect.makeopts", commands[1])
	assert.Equal(t, "menuselect/menuselect --disable-category MENUSELECT_CORE_SOUNDS menuselect.makeopts", commands[2])
	assert.Equal(t, "menuselect/menuselect --disable-category MENUSELECT_MOH menuselect.makeopts", commands[3])
	assert.Equal(t, "menuselect/menuselect --enable app_dial menuselect.makeopts", commands[4])
	assert.Equal(t, "menuselect/menuselect --enable chan_pjsip menuselect.makeopts", commands[5])
	assert.Equal(t, "menuselect/menuselect --disable chan_dahdi menuselect.makeopts", commands[6])
	assert.Equal(t, "menuselect/menuselect --disable chan_sip menuselect.makeopts", commands[7])
}

func TestCommands_FullSelection(t *testing.T) {
	sel := mustSelect(t, "22.6.0", config.DefaultFeatures())
	commands := Commands(sel)

	require.Len(t, commands, 2+len(sel.DisableCategories)+len(sel.Enable)+len(sel.Disable))

	for _, command := range commands {
		assert.True(t, strings.HasPrefix(command, "menuselect/menuselect --"), command)
		assert.True(t, strings.HasSuffix(command, " menuselect.makeopts"), command)
	}
}

func TestCommands_Empty(t *testing.T) {
	commands := Commands(&Selection{})
	require.Len(t, commands, 2)
	assert.Contains(t, commands[0], "BUILD_NATIVE")
	assert.Contains(t, commands[1], "BETTER_BACKTRACES")
}
