package hrtf

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"
)

// defaultHrtfData is the built-in data set, compiled into the binary so
// spatial rendering works without any installed data files.
//
//go:embed assets/default.mhr
var defaultHrtfData []byte

// builtInResourceIndex identifies the default data set among the embedded
// resources.
const builtInResourceIndex = 1

// builtInName is the display name of the embedded default data set.
const builtInName = "Built-In HRTF"

// resource returns the embedded blob for the given index, or nil if none is
// compiled in.
func resource(index int) []byte {
	if index == builtInResourceIndex {
		return defaultHrtfData
	}
	return nil
}

// resourceLocator builds the synthetic locator that distinguishes an embedded
// resource from a filesystem path: "!<index>_<display-name>".
func resourceLocator(index int, name string) string {
	return fmt.Sprintf("!%d_%s", index, name)
}

// parseResourceLocator recognizes the embedded-resource locator syntax and
// extracts the resource index.
func parseResourceLocator(locator string) (int, bool) {
	if !strings.HasPrefix(locator, "!") {
		return 0, false
	}
	rest := locator[1:]
	sep := strings.IndexByte(rest, '_')
	if sep <= 0 {
		return 0, false
	}
	index, err := strconv.Atoi(rest[:sep])
	if err != nil {
		return 0, false
	}
	return index, true
}
