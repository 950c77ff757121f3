// Package apk extracts DEX entries from Android APK archives. An APK
// is a ZIP file containing a manifest, resources, assets, and one or
// more DEX files; only the DEX entries are of interest here.
package apk

import (
	"archive/zip"
	"fmt"
	"io"
	"regexp"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Entry is one DEX file pulled out of an archive.
type Entry struct {
	Name string
	Data []byte
}

var isDex = regexp.MustCompile(`^\S+\.dex$`)

// Read opens the archive at path and returns the contents of every
// DEX entry in it, in archive order.
func Read(path string, logger log.Logger) ([]Entry, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening apk %s: %w", path, err)
	}
	defer rc.Close()

	level.Debug(logger).Log("msg", "scanning archive", "apk", path, "entries", len(rc.File))

	var out []Entry
	for _, zf := range rc.File {
		if !isDex.MatchString(zf.Name) {
			continue
		}
		r, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("opening apk %s entry %s: %w", path, zf.Name, err)
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			return nil, fmt.Errorf("reading apk %s entry %s: %w", path, zf.Name, err)
		}
		if uint64(len(data)) != zf.UncompressedSize64 {
			return nil, fmt.Errorf("apk %s entry %s: expected %d bytes, read %d",
				path, zf.Name, zf.UncompressedSize64, len(data))
		}
		level.Debug(logger).Log("msg", "read dex entry", "name", zf.Name, "bytes", len(data))
		out = append(out, Entry{Name: zf.Name, Data: data})
	}
	return out, nil
}
