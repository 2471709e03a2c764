package archive

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Record is one data row of a CSV member.
type Record struct {
	// Line is the 1-based line of the record in the member.
	Line   int
	Header []string
	Values []string
}

// Each calls fn for every header/value pair in column order.
// Columns missing from a short row are not visited; extra values
// beyond the header have no name and are dropped.
func (r Record) Each(fn func(key, value string)) {
	for i, h := range r.Header {
		if i >= len(r.Values) {
			return
		}
		fn(h, r.Values[i])
	}
}

// Reader iterates over the records of a CSV stream with a header row.
type Reader struct {
	csv    *csv.Reader
	src    *sourceReader
	header []string
	closer io.Closer
}

// sourceReader remembers the first non-EOF error of the decoded stream, so a
// broken stream is not mistaken for a record-level ParseError.
type sourceReader struct {
	r   io.Reader
	err error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && s.err == nil {
		s.err = err
	}
	return n, err
}

// NewReader decodes the stream and reads its header row.
// The stream must be UTF-8; a leading byte order mark is stripped and invalid
// bytes fail the read with encoding.ErrInvalidUTF8. Quotes inside unquoted
// fields are kept as literal characters. An empty stream is an error.
func NewReader(rd io.Reader) (*Reader, error) {
	src := &sourceReader{
		r: transform.NewReader(rd, transform.Chain(encoding.UTF8Validator, unicode.BOMOverride(transform.Nop))),
	}

	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if src.err != nil {
			return nil, fmt.Errorf("failed to decode header row: %w", src.err)
		}
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header row")
		}
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	return &Reader{csv: cr, src: src, header: header}, nil
}

// Header returns the column names.
func (r *Reader) Header() []string {
	return r.header
}

// Next returns the next record, or io.EOF when the stream is exhausted.
// A *csv.ParseError affects only that record; any other error ends the stream.
func (r *Reader) Next() (Record, error) {
	values, err := r.csv.Read()
	if err != nil {
		if r.src.err != nil {
			return Record{}, fmt.Errorf("failed to decode record: %w", r.src.err)
		}
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("failed to read record: %w", err)
	}
	line, _ := r.csv.FieldPos(0)
	return Record{Line: line, Header: r.header, Values: values}, nil
}

// Close releases the underlying member, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}
