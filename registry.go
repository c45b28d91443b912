package hrtf

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/stijn-volckaert/openal-soft/internal/resample"
)

// dataFileExt is the file extension of HRTF data sets.
const dataFileExt = ".mhr"

// defaultSearchSubdir is the logical subdirectory scanned when no search
// paths are configured.
const defaultSearchSubdir = "openal/hrtf"

// Resampler converts a fixed-length block of samples between the two rates
// it was constructed for. The registry uses one to adapt impulse responses
// when a data set's native rate differs from the device rate.
type Resampler interface {
	Process(in, out []float64)
}

// CatalogEntry pairs a deduplicated display name with the locator it
// resolves to: either a filesystem path or an embedded-resource reference.
type CatalogEntry struct {
	Name     string
	Filename string
}

// cacheEntry tracks one loaded table. Entries are kept ordered by filename
// for reuse lookup; several entries may share a filename when the same data
// set was adapted to different sample rates.
type cacheEntry struct {
	filename string
	store    *Store
}

// RegistryConfig configures a Registry. The zero value is usable: settings
// lookups all miss, logging goes to slog.Default, and the built-in polyphase
// resampler performs rate adaptation.
type RegistryConfig struct {
	// Config supplies the search-path, default-name and size settings. May
	// be nil.
	Config Config

	// Logger receives diagnostics. Logging is side-effect-only and never
	// alters results. Nil selects slog.Default().
	Logger *slog.Logger

	// NewResampler constructs the rate adapter for a native-to-device rate
	// conversion. Nil selects the built-in band-limited polyphase resampler.
	NewResampler func(srcRate, dstRate uint32) Resampler

	// SearchFiles overrides data-file discovery, returning candidate paths
	// with the extension under a configured location. Nil selects the
	// standard directory scan.
	SearchFiles func(ext, location string) []string
}

// Registry enumerates available HRTF data sets and hands out shared,
// immutable [Store] handles, deduplicating loads and adapting tables to the
// device sample rate. The catalog and the cache are guarded by independent
// locks; all methods are safe for concurrent use.
type Registry struct {
	cfg          Config
	log          *slog.Logger
	newResampler func(srcRate, dstRate uint32) Resampler
	searchFiles  func(ext, location string) []string

	catalogMu sync.Mutex
	catalog   []CatalogEntry

	cacheMu sync.Mutex
	cache   []cacheEntry
}

// noConfig is the all-miss Config used when none is supplied.
type noConfig struct{}

func (noConfig) String(string, string) (string, bool) { return "", false }
func (noConfig) Uint(string, string) (uint, bool)     { return 0, false }

// NewRegistry creates a registry. rc may be nil for all defaults.
func NewRegistry(rc *RegistryConfig) *Registry {
	r := &Registry{
		cfg:          noConfig{},
		log:          slog.Default(),
		newResampler: func(src, dst uint32) Resampler { return resample.NewRational(src, dst) },
		searchFiles:  searchDataFiles,
	}
	if rc == nil {
		return r
	}
	if rc.Config != nil {
		r.cfg = rc.Config
	}
	if rc.Logger != nil {
		r.log = rc.Logger
	}
	if rc.NewResampler != nil {
		r.newResampler = rc.NewResampler
	}
	if rc.SearchFiles != nil {
		r.searchFiles = rc.SearchFiles
	}
	return r
}

// Enumerate rebuilds the catalog for the given device scope and returns the
// display names of every available data set. Name collisions get a counted
// suffix (" #2", " #3", ...). If the configuration names a default entry that
// is present, it is moved to the front without reordering the remainder.
func (r *Registry) Enumerate(device string) []string {
	r.catalogMu.Lock()
	defer r.catalogMu.Unlock()
	r.catalog = r.catalog[:0]

	useDefaults := true
	if pathList, ok := r.cfg.String(device, ConfigKeyPaths); ok {
		entries := strings.Split(pathList, ",")
		// A trailing comma (or an all-blank tail) keeps the defaults.
		if last := strings.TrimSpace(entries[len(entries)-1]); last != "" {
			useDefaults = false
		}
		for _, entry := range entries {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			for _, fname := range r.searchFiles(dataFileExt, entry) {
				r.addFileEntry(fname)
			}
		}
	}

	if useDefaults {
		for _, fname := range r.searchFiles(dataFileExt, defaultSearchSubdir) {
			r.addFileEntry(fname)
		}
		if len(resource(builtInResourceIndex)) > 0 {
			r.addBuiltInEntry(builtInName, builtInResourceIndex)
		}
	}

	list := make([]string, len(r.catalog))
	for i, entry := range r.catalog {
		list[i] = entry.Name
	}

	if defName, ok := r.cfg.String(device, ConfigKeyDefault); ok {
		idx := -1
		for i, name := range list {
			if name == defName {
				idx = i
				break
			}
		}
		switch {
		case idx < 0:
			r.log.Warn("default HRTF not found", "name", defName)
		case idx > 0:
			name := list[idx]
			copy(list[1:idx+1], list[:idx])
			list[0] = name
		}
	}

	return list
}

// hasName reports whether a display name is already in the catalog.
func (r *Registry) hasName(name string) bool {
	for _, entry := range r.catalog {
		if entry.Name == name {
			return true
		}
	}
	return false
}

// dedupName appends a counted suffix to base until the name is unique.
func (r *Registry) dedupName(base string) string {
	name := base
	count := 1
	for r.hasName(name) {
		count++
		name = fmt.Sprintf("%s #%d", base, count)
	}
	return name
}

// addFileEntry catalogs one data file, deriving the display name from the
// basename with the extension stripped. Duplicate filenames are skipped.
func (r *Registry) addFileEntry(filename string) {
	for _, entry := range r.catalog {
		if entry.Filename == filename {
			r.log.Debug("skipping duplicate file entry", "filename", filename)
			return
		}
	}

	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	name := r.dedupName(base)
	r.catalog = append(r.catalog, CatalogEntry{Name: name, Filename: filename})
	r.log.Debug("adding file entry", "filename", filename, "name", name)
}

// addBuiltInEntry catalogs an embedded resource under its synthetic locator.
func (r *Registry) addBuiltInEntry(dispName string, index int) {
	filename := resourceLocator(index, dispName)
	for _, entry := range r.catalog {
		if entry.Filename == filename {
			r.log.Debug("skipping duplicate file entry", "filename", filename)
			return
		}
	}

	name := r.dedupName(dispName)
	r.catalog = append(r.catalog, CatalogEntry{Name: name, Filename: filename})
	r.log.Debug("adding built-in entry", "filename", filename, "name", name)
}

// Load resolves a display name from the last enumeration and returns a table
// adapted to the device sample rate, reusing a cached table when the locator
// and rate match. Every successful Load must be balanced by a
// [Registry.Release].
func (r *Registry) Load(name, device string, devRate uint32) (*Store, error) {
	r.catalogMu.Lock()
	filename := ""
	for _, entry := range r.catalog {
		if entry.Name == name {
			filename = entry.Filename
			break
		}
	}
	r.catalogMu.Unlock()
	if filename == "" {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	// The cache is ordered by filename; scan the equal range for a table
	// already adapted to this rate.
	pos := sort.Search(len(r.cache), func(i int) bool {
		return r.cache[i].filename >= filename
	})
	for i := pos; i < len(r.cache) && r.cache[i].filename == filename; i++ {
		if store := r.cache[i].store; store != nil && store.sampleRate == devRate {
			store.addRef()
			r.log.Debug("reusing loaded HRTF", "name", name, "rate", devRate)
			return store, nil
		}
	}

	data, err := r.readLocator(filename)
	if err != nil {
		return nil, err
	}

	r.log.Debug("loading HRTF", "filename", filename)
	store, err := LoadStore(data)
	if err != nil {
		r.log.Error("failed to load HRTF", "filename", filename, "error", err)
		return nil, err
	}

	// Rate mismatch is not an error: adapt the table before it is published
	// so no reader ever observes a partially adapted table.
	if store.sampleRate != devRate {
		r.adaptRate(store, devRate)
	}

	if size, ok := r.cfg.Uint(device, ConfigKeySize); ok {
		if size > 0 && uint32(size) < store.irSize {
			store.irSize = max(uint32(size), minIRSize)
			store.irSize -= store.irSize % modIRSize
		}
	}

	r.log.Info("loaded HRTF", "name", name,
		"rate", store.sampleRate, "irSize", store.irSize)

	r.cache = append(r.cache, cacheEntry{})
	copy(r.cache[pos+1:], r.cache[pos:])
	r.cache[pos] = cacheEntry{filename: filename, store: store}

	return store, nil
}

// readLocator obtains the raw bytes behind a locator: an embedded blob for
// the synthetic resource syntax, a file read otherwise.
func (r *Registry) readLocator(filename string) ([]byte, error) {
	if index, ok := parseResourceLocator(filename); ok {
		data := resource(index)
		if len(data) == 0 {
			r.log.Error("missing embedded resource", "index", index)
			return nil, fmt.Errorf("%w: resource %d", ErrNoResource, index)
		}
		return data, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		r.log.Error("could not open HRTF file", "filename", filename, "error", err)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
	}
	return data, nil
}

// adaptRate resamples every response to the device rate, rescales the stored
// delays by the rate ratio, and scales the response length, rounded up to
// the length modulus and capped at the storage maximum.
func (r *Registry) adaptRate(store *Store, devRate uint32) {
	srcRate := store.sampleRate
	irCount := store.irCount()

	rs := r.newResampler(srcRate, devRate)
	var in, out [HRIRLength]float64
	for i := 0; i < irCount; i++ {
		row := store.response(i)
		for ear := 0; ear < 2; ear++ {
			for k := 0; k < HRIRLength; k++ {
				in[k] = float64(row[k*2+ear])
			}
			rs.Process(in[:], out[:])
			for k := 0; k < HRIRLength; k++ {
				row[k*2+ear] = float32(out[k])
			}
		}
	}

	const maxFixedDelay = maxHRIRDelay * delayFracOne
	for i := 0; i < irCount; i++ {
		for ear := 0; ear < 2; ear++ {
			scaled := (uint64(store.delays[i][ear])*uint64(devRate) + uint64(srcRate)/2) /
				uint64(srcRate)
			store.delays[i][ear] = uint8(min(scaled, maxFixedDelay))
		}
	}

	newSize := (uint64(store.irSize)*uint64(devRate) + uint64(srcRate) - 1) /
		uint64(srcRate)
	store.irSize = roundUpIRSize(uint32(min(newSize, HRIRLength)))
	store.sampleRate = devRate
}

// Release decrements a table's reference count. When it reaches zero the
// entire cache is swept, removing every entry whose table is unreferenced;
// teardown is batched this way so releases may arrive in any order.
func (r *Registry) Release(store *Store) {
	ref := store.refs.Add(-1)
	r.log.Debug("HRTF refcount decreased", "refs", ref)
	if ref != 0 {
		return
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	kept := r.cache[:0]
	for _, entry := range r.cache {
		if entry.store != nil && entry.store.refs.Load() == 0 {
			r.log.Debug("unloading unused HRTF", "filename", entry.filename)
			entry.store = nil
			continue
		}
		kept = append(kept, entry)
	}
	r.cache = kept
}
