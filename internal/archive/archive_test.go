package archive

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/roastery/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding"
)

// field returns the value under the named header; the last duplicate wins.
func field(rec Record, name string) (string, bool) {
	val, ok := "", false
	rec.Each(func(k, v string) {
		if k == name {
			val, ok = v, true
		}
	})
	return val, ok
}

func TestOpen(t *testing.T) {
	path := testutil.WriteZip(t, map[string]string{
		"staff.csv":    "staff_id,first_name\n1,Ada\n",
		"Dates.csv":    "transaction_date\n4/1/2019\n",
		"docs/x.txt":   "not csv",
		"customer.csv": "",
	})

	a, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	assert.Equal(t, path, a.Path())
	assert.Equal(t, []string{"Dates.csv", "customer.csv", "docs/x.txt", "staff.csv"}, a.Names())
	assert.True(t, a.Has("staff.csv"))
	assert.False(t, a.Has("STAFF.csv"))
}

func TestOpen_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Open(filepath.Join(t.TempDir(), "nope.zip"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open archive")
	})

	t.Run("not a zip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "plain.zip")
		require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))
		_, err := Open(path)
		assert.Error(t, err)
	})
}

func TestOpenCSV(t *testing.T) {
	path := testutil.WriteZip(t, map[string]string{
		"test.csv":  "id,id_2\n1,1\n2,2\n3,3\n",
		"empty.csv": "",
	})
	a, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	t.Run("reads records lazily", func(t *testing.T) {
		r, err := a.OpenCSV("test.csv")
		require.NoError(t, err)
		defer func() { _ = r.Close() }()

		assert.Equal(t, []string{"id", "id_2"}, r.Header())

		var lines []int
		var ids []string
		for {
			rec, err := r.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			require.NoError(t, err)
			lines = append(lines, rec.Line)
			id, _ := field(rec, "id")
			ids = append(ids, id)
		}
		assert.Equal(t, []int{2, 3, 4}, lines)
		assert.Equal(t, []string{"1", "2", "3"}, ids)
	})

	t.Run("missing member", func(t *testing.T) {
		_, err := a.OpenCSV("sales_reciepts.csv")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMemberNotFound)
	})

	t.Run("empty member", func(t *testing.T) {
		_, err := a.OpenCSV("empty.csv")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing header row")
	})
}

func TestNewReader_StripsBOM(t *testing.T) {
	r, err := NewReader(strings.NewReader("\ufeffcustomer_id,name\n5,Kim\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"customer_id", "name"}, r.Header())

	rec, err := r.Next()
	require.NoError(t, err)
	v, ok := field(rec, "customer_id")
	assert.True(t, ok)
	assert.Equal(t, "5", v)
}

func TestNewReader_QuotedFields(t *testing.T) {
	src := "store_address,% waste\n\"32-20 Broadway, Astoria\",12%\n"
	r, err := NewReader(strings.NewReader(src))
	require.NoError(t, err)

	rec, err := r.Next()
	require.NoError(t, err)
	addr, _ := field(rec, "store_address")
	waste, _ := field(rec, "% waste")
	assert.Equal(t, "32-20 Broadway, Astoria", addr)
	assert.Equal(t, "12%", waste)
}

func TestRecord_RaggedRows(t *testing.T) {
	r, err := NewReader(strings.NewReader("a,b,c\n1,2\n1,2,3,4\n"))
	require.NoError(t, err)

	short, err := r.Next()
	require.NoError(t, err)
	got := map[string]string{}
	short.Each(func(k, v string) { got[k] = v })
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, got)
	_, ok := field(short, "c")
	assert.False(t, ok)

	long, err := r.Next()
	require.NoError(t, err)
	got = map[string]string{}
	long.Each(func(k, v string) { got[k] = v })
	assert.Equal(t, map[string]string{"a": "1", "b": "2", "c": "3"}, got)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestRecord_EachVisitsDuplicateHeaders(t *testing.T) {
	rec := Record{Header: []string{"x", "y", "x"}, Values: []string{"1", "2", "3"}}
	var keys, values []string
	rec.Each(func(k, v string) {
		keys = append(keys, k)
		values = append(values, v)
	})
	assert.Equal(t, []string{"x", "y", "x"}, keys)
	assert.Equal(t, []string{"1", "2", "3"}, values)
}

func TestNewReader_BareQuoteInUnquotedField(t *testing.T) {
	r, err := NewReader(strings.NewReader("id,id_2\n1,1\n2,12 oz \"mug\"\n3,3\n"))
	require.NoError(t, err)

	var got []string
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		v, _ := field(rec, "id_2")
		got = append(got, v)
	}
	assert.Equal(t, []string{"1", `12 oz "mug"`, "3"}, got)
}

func TestNewReader_InvalidUTF8(t *testing.T) {
	t.Run("in a record ends the stream", func(t *testing.T) {
		r, err := NewReader(strings.NewReader("id,name\n1,Kim\n2,Jo\xffe\n3,Al\n"))
		require.NoError(t, err)

		rec, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "Kim"}, rec.Values)

		_, err = r.Next()
		require.Error(t, err)
		assert.ErrorIs(t, err, encoding.ErrInvalidUTF8)
		var perr *csv.ParseError
		assert.False(t, errors.As(err, &perr), "decode errors are not record-level")
	})

	t.Run("in the header", func(t *testing.T) {
		_, err := NewReader(strings.NewReader("id,n\xe9\n1,2\n"))
		require.Error(t, err)
		assert.ErrorIs(t, err, encoding.ErrInvalidUTF8)
	})

	t.Run("valid multibyte text passes", func(t *testing.T) {
		r, err := NewReader(strings.NewReader("\ufeffname\nJosé\n"))
		require.NoError(t, err)
		rec, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, []string{"José"}, rec.Values)
	})
}
