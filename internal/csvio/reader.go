package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Reader reads a day file row by row, decompressing .csv.xz transparently.
type Reader struct {
	path   string
	source io.ReadCloser
	csv    *csv.Reader
	header []string
	index  map[string]int
}

// OpenStream returns the raw CSV bytes of path, decompressing .xz files.
// A missing file yields an error that satisfies errors.Is(err, fs.ErrNotExist).
func OpenStream(path string) (io.ReadCloser, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".xz") {
		xr, err := newXZReader(path)
		if err != nil {
			return nil, err
		}
		return xr, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Open opens path and reads its header row
func Open(path string) (*Reader, error) {
	source, err := OpenStream(path)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(source)
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		source.Close()
		if err == io.EOF {
			return nil, fmt.Errorf("%s: file has no header row", path)
		}
		return nil, fmt.Errorf("%s: failed to read header: %w", path, err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[col] = i
	}
	cr.FieldsPerRecord = len(header)

	return &Reader{
		path:   path,
		source: source,
		csv:    cr,
		header: header,
		index:  index,
	}, nil
}

// Header returns the column names in file order
func (r *Reader) Header() []string {
	return r.header
}

// Index returns the position of a column in each row
func (r *Reader) Index(column string) (int, bool) {
	i, ok := r.index[column]
	return i, ok
}

// Next returns the next data row, or io.EOF after the last one
func (r *Reader) Next() ([]string, error) {
	row, err := r.csv.Read()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%s: %w", r.path, err)
	}
	return row, nil
}

// Close releases the underlying file or xz process
func (r *Reader) Close() error {
	return r.source.Close()
}

// Path returns the file being read
func (r *Reader) Path() string {
	return r.path
}

// ResolveDayFile finds base+".csv" or base+".csv.xz" in dir, preferring the
// plain file. When neither exists the returned error wraps fs.ErrNotExist
// for the plain path.
func ResolveDayFile(dir, base string) (string, error) {
	plain := filepath.Join(dir, base+Ext)
	if _, err := os.Stat(plain); err == nil {
		return plain, nil
	} else if !os.IsNotExist(err) {
		return "", err
	}

	compressed := filepath.Join(dir, base+XZExt)
	if _, err := os.Stat(compressed); err == nil {
		return compressed, nil
	}

	_, err := os.Stat(plain)
	return "", err
}
