package hrtf

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSearch maps configured locations to fixed path lists.
func fakeSearch(paths map[string][]string) func(ext, location string) []string {
	return func(ext, location string) []string {
		return paths[location]
	}
}

func TestRegistryEnumerateDedupsNames(t *testing.T) {
	reg := NewRegistry(&RegistryConfig{
		Config: &FileConfig{Global: map[string]string{
			ConfigKeyPaths: "dirA,dirB",
		}},
		Logger: quietLogger(),
		SearchFiles: fakeSearch(map[string][]string{
			"dirA": {"/a/set1.mhr", "/a/set2.mhr"},
			"dirB": {"/b/set1.mhr"},
		}),
	})

	names := reg.Enumerate("")
	assert.Equal(t, []string{"set1", "set2", "set1 #2"}, names)
}

func TestRegistryEnumerateTrailingCommaKeepsDefaults(t *testing.T) {
	search := fakeSearch(map[string][]string{
		"dirA":        {"/a/set1.mhr"},
		"openal/hrtf": {"/sys/sys1.mhr"},
	})

	// Without the trailing comma only the configured path is scanned.
	reg := NewRegistry(&RegistryConfig{
		Config: &FileConfig{Global: map[string]string{ConfigKeyPaths: "dirA"}},
		Logger: quietLogger(), SearchFiles: search,
	})
	assert.Equal(t, []string{"set1"}, reg.Enumerate(""))

	// With it, the default locations and the embedded set follow.
	reg = NewRegistry(&RegistryConfig{
		Config: &FileConfig{Global: map[string]string{ConfigKeyPaths: "dirA,"}},
		Logger: quietLogger(), SearchFiles: search,
	})
	assert.Equal(t, []string{"set1", "sys1", "Built-In HRTF"}, reg.Enumerate(""))
}

func TestRegistryEnumerateDefaultRotation(t *testing.T) {
	search := fakeSearch(map[string][]string{
		"dirA": {"/a/set1.mhr", "/a/set2.mhr", "/a/set3.mhr"},
	})

	reg := NewRegistry(&RegistryConfig{
		Config: &FileConfig{Global: map[string]string{
			ConfigKeyPaths:   "dirA",
			ConfigKeyDefault: "set3",
		}},
		Logger: quietLogger(), SearchFiles: search,
	})
	assert.Equal(t, []string{"set3", "set1", "set2"}, reg.Enumerate(""))

	// A missing default leaves the order alone.
	reg = NewRegistry(&RegistryConfig{
		Config: &FileConfig{Global: map[string]string{
			ConfigKeyPaths:   "dirA",
			ConfigKeyDefault: "nope",
		}},
		Logger: quietLogger(), SearchFiles: search,
	})
	assert.Equal(t, []string{"set1", "set2", "set3"}, reg.Enumerate(""))
}

func TestRegistryEnumerateDeviceOverride(t *testing.T) {
	reg := NewRegistry(&RegistryConfig{
		Config: &FileConfig{
			Global: map[string]string{ConfigKeyPaths: "dirA"},
			Devices: map[string]map[string]string{
				"Cans": {ConfigKeyPaths: "dirB"},
			},
		},
		Logger: quietLogger(),
		SearchFiles: fakeSearch(map[string][]string{
			"dirA": {"/a/global.mhr"},
			"dirB": {"/b/cans.mhr"},
		}),
	})

	assert.Equal(t, []string{"global"}, reg.Enumerate(""))
	assert.Equal(t, []string{"cans"}, reg.Enumerate("Cans"))
}

func TestRegistryLoadCachesAndReleases(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.mhr")
	require.NoError(t, os.WriteFile(path, buildV1(44100, 8, testAzCounts), 0o644))

	reg := NewRegistry(&RegistryConfig{
		Config: &FileConfig{Global: map[string]string{ConfigKeyPaths: dir}},
		Logger: quietLogger(),
	})
	names := reg.Enumerate("")
	require.Equal(t, []string{"test"}, names)

	first, err := reg.Load("test", "", 44100)
	require.NoError(t, err)
	assert.Equal(t, int32(1), first.refs.Load())

	// Same locator and rate reuses the cached table.
	second, err := reg.Load("test", "", 44100)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int32(2), first.refs.Load())

	// A different rate is a separate table for the same locator.
	adapted, err := reg.Load("test", "", 48000)
	require.NoError(t, err)
	assert.NotSame(t, first, adapted)
	assert.Equal(t, uint32(48000), adapted.SampleRate())

	reg.Release(second)
	assert.Equal(t, int32(1), first.refs.Load())
	reg.Release(first)
	reg.Release(adapted)

	// The cache was swept; a new load builds a fresh table.
	reloaded, err := reg.Load("test", "", 44100)
	require.NoError(t, err)
	assert.NotSame(t, first, reloaded)
	reg.Release(reloaded)
}

func TestRegistryLoadUnknownName(t *testing.T) {
	reg := NewRegistry(&RegistryConfig{Logger: quietLogger(),
		SearchFiles: fakeSearch(nil)})
	reg.Enumerate("")
	_, err := reg.Load("nope", "", 48000)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistryLoadBuiltIn(t *testing.T) {
	reg := NewRegistry(&RegistryConfig{Logger: quietLogger(),
		SearchFiles: fakeSearch(nil)})

	names := reg.Enumerate("")
	require.Contains(t, names, builtInName)

	store, err := reg.Load(builtInName, "", 44100)
	require.NoError(t, err)
	assert.Equal(t, uint32(44100), store.SampleRate())
	reg.Release(store)
}

// copyResampler stands in for the polyphase resampler so rate adaptation is
// observable without resampling artifacts.
type copyResampler struct {
	srcRate, dstRate uint32
}

func (c *copyResampler) Process(in, out []float64) { copy(out, in) }

func TestRegistryLoadAdaptsRate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.mhr")
	require.NoError(t, os.WriteFile(path, buildV1(44100, 8, testAzCounts), 0o644))

	var made *copyResampler
	reg := NewRegistry(&RegistryConfig{
		Config: &FileConfig{Global: map[string]string{ConfigKeyPaths: dir}},
		Logger: quietLogger(),
		NewResampler: func(src, dst uint32) Resampler {
			made = &copyResampler{srcRate: src, dstRate: dst}
			return made
		},
	})
	reg.Enumerate("")

	store, err := reg.Load("test", "", 48000)
	require.NoError(t, err)
	defer reg.Release(store)

	require.NotNil(t, made)
	assert.Equal(t, uint32(44100), made.srcRate)
	assert.Equal(t, uint32(48000), made.dstRate)

	assert.Equal(t, uint32(48000), store.SampleRate())

	// 8 taps at 44100 Hz spans 9 at 48000 Hz, rounded up to the modulus.
	assert.Equal(t, uint32(10), store.IRSize())

	// Fixed-point delays rescale by the rate ratio, rounded to nearest:
	// response 1 stored 12 quarter-samples, 12*48000/44100 rounds to 13.
	assert.Equal(t, uint8(13), store.delays[1][0])
}

func TestRegistryLoadAppliesSizeCap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.mhr")
	require.NoError(t, os.WriteFile(path, buildV1(44100, 16, testAzCounts), 0o644))

	reg := NewRegistry(&RegistryConfig{
		Config: &FileConfig{Global: map[string]string{
			ConfigKeyPaths: dir,
			ConfigKeySize:  "11",
		}},
		Logger: quietLogger(),
	})
	reg.Enumerate("")

	store, err := reg.Load("test", "", 44100)
	require.NoError(t, err)
	defer reg.Release(store)

	// The cap is rounded down to the length modulus.
	assert.Equal(t, uint32(10), store.IRSize())
}
