package loader

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-sql/civil"
	"github.com/leapstack-labs/roastery/internal/archive"
	"github.com/leapstack-labs/roastery/internal/mapping"
	"github.com/leapstack-labs/roastery/internal/store"
	"github.com/leapstack-labs/roastery/internal/testutil"
	"github.com/leapstack-labs/roastery/internal/transform"
	"github.com/leapstack-labs/roastery/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/leapstack-labs/roastery/pkg/adapters/sqlite"
)

const testCSV = "id,id_2\n1,1\n2,2\n3,3\n4,4\n5,5\n"

// recordingInserter keeps every row it is given and fails the rows failOn selects.
type recordingInserter struct {
	rows   []map[string]any
	failOn func(fields map[string]any) bool
}

func (r *recordingInserter) InsertRow(_ context.Context, _ core.Entity, fields map[string]any) store.RowResult {
	if r.failOn != nil && r.failOn(fields) {
		return store.RowResult{Err: errors.New("constraint violated")}
	}
	r.rows = append(r.rows, fields)
	return store.RowResult{Committed: true}
}

func squareRegistry() *transform.Registry {
	reg := transform.NewRegistry()
	reg.Register("square", func(raw string) (any, error) {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		return n * n, nil
	})
	return reg
}

func testRule() *mapping.Rule {
	return &mapping.Rule{
		SourceFile: "test.csv",
		Entity:     "test",
		Rename:     [][]string{{"id_2", "square"}},
		Transform:  [][]string{{"square", "square"}},
	}
}

func TestNew_RequiresInserter(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestRun_RenameThenTransform(t *testing.T) {
	path := testutil.WriteZip(t, map[string]string{"test.csv": "id,id_2\n4,4\n"})
	rows := &recordingInserter{}

	e, err := New(Config{Rows: rows, Rules: []*mapping.Rule{testRule()}, Transforms: squareRegistry(), Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)

	sum, err := e.Run(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, rows.rows, 1)
	assert.Equal(t, map[string]any{"id": "4", "square": int64(16)}, rows.rows[0])
	assert.Equal(t, 1, sum.Loaded())
}

func TestRun_RowIsolation(t *testing.T) {
	path := testutil.WriteZip(t, map[string]string{"test.csv": testCSV})
	rows := &recordingInserter{failOn: func(f map[string]any) bool { return f["id"] == "3" }}

	logger, logs := testutil.NewCaptureLogger(t)

	e, err := New(Config{Rows: rows, Rules: []*mapping.Rule{testRule()}, Transforms: squareRegistry(), Logger: logger})
	require.NoError(t, err)

	sum, err := e.Run(context.Background(), path)
	require.NoError(t, err)

	assert.Len(t, rows.rows, 4)
	assert.Equal(t, 4, sum.Loaded())
	assert.Equal(t, 1, sum.Failed())
	assert.Equal(t, 1, logs.Count("row failed"))
	assert.Contains(t, logs.String(), "constraint violated")

	// Row order is preserved around the failure.
	var ids []any
	for _, r := range rows.rows {
		ids = append(ids, r["id"])
	}
	assert.Equal(t, []any{"1", "2", "4", "5"}, ids)
}

func TestRun_TransformFailureIsRowLevel(t *testing.T) {
	path := testutil.WriteZip(t, map[string]string{"test.csv": "id,id_2\n1,1\n2,two\n3,3\n"})
	rows := &recordingInserter{}

	e, err := New(Config{Rows: rows, Rules: []*mapping.Rule{testRule()}, Transforms: squareRegistry(), Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)

	sum, err := e.Run(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Loaded())
	assert.Equal(t, 1, sum.Failed())
}

func TestRun_InvalidRuleSkipped(t *testing.T) {
	path := testutil.WriteZip(t, map[string]string{"test.csv": testCSV})
	rows := &recordingInserter{}

	rules := []*mapping.Rule{
		{Entity: "test"}, // no source file
		{SourceFile: "test.csv", Entity: "test", Rename: [][]string{{"id_2"}}},
		testRule(),
	}

	logger, logs := testutil.NewCaptureLogger(t)
	e, err := New(Config{Rows: rows, Rules: rules, Transforms: squareRegistry(), Logger: logger})
	require.NoError(t, err)

	sum, err := e.Run(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, sum.Files, 3)
	assert.True(t, sum.Files[0].Skipped)
	assert.True(t, sum.Files[1].Skipped)
	assert.False(t, sum.Files[2].Skipped)
	assert.Equal(t, 2, sum.Skipped())
	assert.Equal(t, 5, sum.Loaded())
	assert.Equal(t, 2, logs.Count("skipping mapping rule"))
}

func TestRun_InvalidRuleReasonInSummary(t *testing.T) {
	path := testutil.WriteZip(t, map[string]string{"test.csv": testCSV})
	rule := &mapping.Rule{SourceFile: "test.csv", Entity: "test", Transform: [][]string{{"id", "rot13"}}}

	e, err := New(Config{Rows: &recordingInserter{}, Rules: []*mapping.Rule{rule}, Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)

	sum, err := e.Run(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, sum.Files, 1)
	assert.True(t, sum.Files[0].Skipped)
	require.ErrorIs(t, rule.Err, mapping.ErrInvalidRule)
	assert.Equal(t, rule.Err.Error(), sum.Files[0].Reason)
	assert.Contains(t, sum.Files[0].Reason, "rot13")
}

func TestRun_MalformedTableRuleSkipped(t *testing.T) {
	path := testutil.WriteZip(t, map[string]string{"test.csv": testCSV})
	rules, err := mapping.Load(strings.NewReader(`
rules:
  - file: test.csv
    model: test
  - source_file: test.csv
    entity: test
    rename: [id_2]
  - source_file: test.csv
    entity: test
    rename:
      - [id_2, square]
    transform:
      - [square, square]
`))
	require.NoError(t, err)
	require.Len(t, rules, 3)

	rows := &recordingInserter{}
	logger, logs := testutil.NewCaptureLogger(t)
	e, err := New(Config{Rows: rows, Rules: rules, Transforms: squareRegistry(), Logger: logger})
	require.NoError(t, err)

	sum, err := e.Run(context.Background(), path)
	require.NoError(t, err)

	assert.True(t, sum.Files[0].Skipped)
	assert.Contains(t, sum.Files[0].Reason, `unknown field "file"`)
	assert.True(t, sum.Files[1].Skipped)
	assert.False(t, sum.Files[2].Skipped)
	assert.Equal(t, 5, sum.Loaded())
	assert.Equal(t, 2, logs.Count("skipping mapping rule"))
}

func TestRun_BareQuoteRowLoads(t *testing.T) {
	path := testutil.WriteZip(t, map[string]string{"test.csv": "id,id_2\n1,1\n2,12 oz \"mug\"\n3,3\n"})
	rows := &recordingInserter{}
	rule := &mapping.Rule{SourceFile: "test.csv", Entity: "test"}

	e, err := New(Config{Rows: rows, Rules: []*mapping.Rule{rule}, Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)

	sum, err := e.Run(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Loaded())
	assert.Equal(t, 0, sum.Failed())
	require.Len(t, rows.rows, 3)
	assert.Equal(t, `12 oz "mug"`, rows.rows[1]["id_2"])
}

func TestRun_InvalidUTF8StopsMember(t *testing.T) {
	path := testutil.WriteZip(t, map[string]string{
		"bad.csv":  "id,id_2\n1,1\n2,\xff\n3,3\n",
		"test.csv": testCSV,
	})
	rows := &recordingInserter{}
	rules := []*mapping.Rule{{SourceFile: "bad.csv", Entity: "test"}, testRule()}

	logger, logs := testutil.NewCaptureLogger(t)
	e, err := New(Config{Rows: rows, Rules: rules, Transforms: squareRegistry(), Logger: logger})
	require.NoError(t, err)

	sum, err := e.Run(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Files[0].Loaded)
	assert.Equal(t, 0, sum.Files[0].Failed)
	assert.Contains(t, sum.Files[0].Reason, "invalid UTF-8")
	assert.Equal(t, 1, logs.Count("member unreadable"))
	assert.Equal(t, 5, sum.Files[1].Loaded)
}

func TestRun_MissingMemberSkipsToNextRule(t *testing.T) {
	path := testutil.WriteZip(t, map[string]string{"test.csv": testCSV})
	rows := &recordingInserter{}

	rules := []*mapping.Rule{
		{SourceFile: "sales_reciepts.csv", Entity: core.EntityReceipt},
		testRule(),
	}
	e, err := New(Config{Rows: rows, Rules: rules, Transforms: squareRegistry(), Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)

	sum, err := e.Run(context.Background(), path)
	require.NoError(t, err)

	assert.True(t, sum.Files[0].Skipped)
	assert.Contains(t, sum.Files[0].Reason, archive.ErrMemberNotFound.Error())
	assert.Equal(t, 5, sum.Files[1].Loaded)
}

func TestRun_ArchiveUnavailable(t *testing.T) {
	e, err := New(Config{Rows: &recordingInserter{}, Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)

	sum, err := e.Run(context.Background(), t.TempDir()+"/missing.zip")
	require.Error(t, err)
	assert.Nil(t, sum)
	assert.ErrorIs(t, err, ErrArchive)
}

func TestRun_Cancelled(t *testing.T) {
	path := testutil.WriteZip(t, map[string]string{"test.csv": testCSV})
	rows := &recordingInserter{}
	e, err := New(Config{Rows: rows, Rules: []*mapping.Rule{testRule()}, Transforms: squareRegistry()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum, err := e.Run(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, sum)
	assert.Empty(t, rows.rows)
}

func TestRun_SummaryIdentity(t *testing.T) {
	path := testutil.WriteZip(t, map[string]string{"test.csv": testCSV})
	e, err := New(Config{Rows: &recordingInserter{}, Rules: []*mapping.Rule{testRule()}, Transforms: squareRegistry()})
	require.NoError(t, err)

	first, err := e.Run(context.Background(), path)
	require.NoError(t, err)
	second, err := e.Run(context.Background(), path)
	require.NoError(t, err)

	assert.NotEmpty(t, first.RunID)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, path, first.Archive)
}

func TestMapRecord(t *testing.T) {
	rule := &mapping.Rule{
		SourceFile: "pastry inventory.csv",
		Entity:     core.EntityPastryInventory,
		Rename:     [][]string{{"% waste", "waste_percent"}},
		Transform:  [][]string{{"waste_percent", transform.Percent}, {"transaction_date", transform.DateMDY}},
	}
	require.NoError(t, rule.Normalize(transform.NewRegistry()))

	rec := archive.Record{
		Header: []string{"sales_outlet_id", "transaction_date", "", "% waste"},
		Values: []string{"3", "4/1/2019", "junk", "12%"},
	}
	got, err := MapRecord(rec, rule)
	require.NoError(t, err)

	assert.Equal(t, "3", got["sales_outlet_id"])
	assert.Equal(t, "12", got["waste_percent"])
	assert.Equal(t, civil.Date{Year: 2019, Month: time.April, Day: 1}, got["transaction_date"])
	assert.NotContains(t, got, "")
	assert.NotContains(t, got, "% waste")
}

func TestMapRecord_TransformError(t *testing.T) {
	rule := &mapping.Rule{SourceFile: "staff.csv", Entity: core.EntityStaff, Transform: [][]string{{"start_date", transform.DateMDY}}}
	require.NoError(t, rule.Normalize(transform.NewRegistry()))

	_, err := MapRecord(archive.Record{Header: []string{"start_date"}, Values: []string{"2019-04-01"}}, rule)
	require.Error(t, err)
	assert.ErrorIs(t, err, transform.ErrInvalidValue)
	assert.Contains(t, err.Error(), "start_date")
}

// The five-row archive ends up in a real database with square == id*id.
func TestRun_EndToEndSQLite(t *testing.T) {
	ctx := context.Background()
	schema := core.NewSchema(&core.Table{Entity: "test", Name: "test", Columns: []core.Column{
		{Name: "id", Type: core.ColumnInteger, PrimaryKey: true},
		{Name: "square", Type: core.ColumnInteger, Nullable: true},
	}})

	s, err := store.Open(ctx, "sqlite://", schema, testutil.NewTestLogger(t))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	_, err = s.DB().ExecContext(ctx, "CREATE TABLE test (id INTEGER PRIMARY KEY, square INTEGER)")
	require.NoError(t, err)

	path := testutil.WriteZip(t, map[string]string{"test.csv": testCSV})
	e, err := New(Config{Rows: s, Rules: []*mapping.Rule{testRule()}, Transforms: squareRegistry(), Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)

	sum, err := e.Run(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Loaded())

	rows, err := s.DB().QueryContext(ctx, "SELECT id, square FROM test ORDER BY id")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	count := 0
	for rows.Next() {
		var id, square int64
		require.NoError(t, rows.Scan(&id, &square))
		assert.Equal(t, id*id, square)
		count++
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, 5, count)

	// Loading the same archive again commits nothing new: every row collides.
	again, err := e.Run(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Loaded())
	assert.Equal(t, 5, again.Failed())
}
