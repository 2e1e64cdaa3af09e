package menuselect

import "fmt"

const (
	tool     = "menuselect/menuselect"
	makeopts = "menuselect.makeopts"
)

// Commands renders the selection as the ordered menuselect command list.
// The ordering is a compatibility contract: disable BUILD_NATIVE, enable
// BETTER_BACKTRACES, disable categories in catalog order, enable modules
// sorted, disable modules sorted. Consumers diff generated scripts, so the
// order never changes.
func Commands(sel *Selection) []string {
	commands := make([]string, 0, 2+len(sel.DisableCategories)+len(sel.Enable)+len(sel.Disable))

	// BUILD_NATIVE ties the binary to the build host's CPU
	commands = append(commands, fmt.Sprintf("%s --disable BUILD_NATIVE %s", tool, makeopts))
	commands = append(commands, fmt.Sprintf("%s --enable BETTER_BACKTRACES %s", tool, makeopts))

	for _, category := range sel.DisableCategories {
		commands = append(commands, fmt.Sprintf("%s --disable-category %s %s", tool, category, makeopts))
	}
	for _, module := range sel.Enable {
		commands = append(commands, fmt.Sprintf("%s --enable %s %s", tool, module, makeopts))
	}
	for _, module := range sel.Disable {
		commands = append(commands, fmt.Sprintf("%s --disable %s %s", tool, module, makeopts))
	}

	return commands
}
