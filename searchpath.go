package schemaloader

import "sync"

// The component search path is process-wide state, mutated by -I flags and
// config lib entries before generation starts.
var (
	searchMu   sync.Mutex
	searchDirs []string
)

// AddSearchDir appends dir to the component search path. Directories are
// consulted in the order they were added.
func AddSearchDir(dir string) {
	if dir == "" {
		return
	}
	searchMu.Lock()
	defer searchMu.Unlock()
	searchDirs = append(searchDirs, dir)
}

// SearchDirs returns a copy of the current component search path.
func SearchDirs() []string {
	searchMu.Lock()
	defer searchMu.Unlock()
	dirs := make([]string, len(searchDirs))
	copy(dirs, searchDirs)
	return dirs
}

// ResetSearchDirs clears the search path. Tests use this between cases.
func ResetSearchDirs() {
	searchMu.Lock()
	defer searchMu.Unlock()
	searchDirs = nil
}
