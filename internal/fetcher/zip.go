package fetcher

import (
	"archive/zip"
	"io"

	"github.com/rotisserie/eris"
)

// EachZIPMember calls fn with a reader for every regular file in the archive,
// without extracting to disk. Iteration stops on the first error from fn.
func EachZIPMember(zipPath string, fn func(name string, r io.Reader) error) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return eris.Wrap(err, "zip: open archive")
	}
	defer r.Close() //nolint:errcheck

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return eris.Wrapf(err, "zip: open entry %s", f.Name)
		}
		err = fn(f.Name, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}

	return nil
}
