package hrtf

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// searchDataFiles returns the paths of candidate data files with the given
// extension under the named location. An absolute location is scanned
// directly; a logical subdirectory is resolved against the user's config
// directory and the system data directories. Results are sorted so
// enumeration order is stable.
func searchDataFiles(ext, location string) []string {
	var dirs []string
	if filepath.IsAbs(location) {
		dirs = []string{location}
	} else {
		if confdir, err := os.UserConfigDir(); err == nil {
			dirs = append(dirs, filepath.Join(confdir, location))
		}
		dirs = append(dirs,
			filepath.Join("/usr/local/share", location),
			filepath.Join("/usr/share", location),
		)
	}

	var results []string
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if strings.EqualFold(filepath.Ext(entry.Name()), ext) {
				results = append(results, filepath.Join(dir, entry.Name()))
			}
		}
	}
	sort.Strings(results)
	return results
}
