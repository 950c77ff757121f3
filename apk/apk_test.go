package apk_test

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/require"

	"github.com/RLStrug/DexParser/apk"
	"github.com/RLStrug/DexParser/dex"
	"github.com/RLStrug/DexParser/dextest"
)

// writeApk assembles a zip archive from the given name/content pairs.
func writeApk(t *testing.T, entries map[string][]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.apk")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	// Deterministic order for the test assertions below.
	for _, name := range []string{"AndroidManifest.xml", "classes.dex", "classes2.dex", "lib/arm/code.so"} {
		content, ok := entries[name]
		if !ok {
			continue
		}
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestReadPicksDexEntries(t *testing.T) {
	image := dextest.Empty()
	path := writeApk(t, map[string][]byte{
		"AndroidManifest.xml": []byte("<manifest/>"),
		"classes.dex":         image,
		"classes2.dex":        image,
		"lib/arm/code.so":     {0x7f, 'E', 'L', 'F'},
	})

	entries, err := apk.Read(path, log.NewNopLogger())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "classes.dex", entries[0].Name)
	require.Equal(t, "classes2.dex", entries[1].Name)

	for _, e := range entries {
		_, err := dex.Parse(e.Data)
		require.NoError(t, err)
	}
}

func TestReadNoDexEntries(t *testing.T) {
	path := writeApk(t, map[string][]byte{
		"AndroidManifest.xml": []byte("<manifest/>"),
	})
	entries, err := apk.Read(path, log.NewNopLogger())
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestReadMissingFile(t *testing.T) {
	_, err := apk.Read(filepath.Join(t.TempDir(), "absent.apk"), log.NewNopLogger())
	require.Error(t, err)
}
