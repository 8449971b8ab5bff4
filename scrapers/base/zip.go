package base

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"iter"
	"path"
	"strings"
)

// ZipEntry is one file extracted from an archive.
type ZipEntry struct {
	Name    string
	Content []byte
}

// ZipEntries opens an in-memory archive and returns a lazy sequence of the
// files whose name ends with suffix. Entries are read one at a time; an entry
// that cannot be read is yielded with its error and iteration continues.
func ZipEntries(data []byte, suffix string) (iter.Seq2[ZipEntry, error], error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	return func(yield func(ZipEntry, error) bool) {
		for _, f := range zr.File {
			if f.FileInfo().IsDir() || !strings.HasSuffix(strings.ToLower(f.Name), strings.ToLower(suffix)) {
				continue
			}
			content, err := readZipFile(f)
			if !yield(ZipEntry{Name: path.Base(f.Name), Content: content}, err) {
				return
			}
		}
	}, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}
