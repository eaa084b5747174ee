package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/aristath/skusim/internal/modules/presentation"
	"github.com/aristath/skusim/internal/modules/projection"
)

func defaultView() presentation.View {
	in := projection.DefaultInput()
	return presentation.BuildView(in, projection.Compute(in))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("pdf")
	assert.Error(t, err)

	assert.Equal(t, "sku_simulator.csv", FileName(FormatCSV))
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
}

func TestParseHeaderLocale(t *testing.T) {
	tests := []struct {
		in       string
		expected HeaderLocale
		wantErr  bool
	}{
		{in: "", expected: HeaderJapanese},
		{in: "ja", expected: HeaderJapanese},
		{in: "en", expected: HeaderEnglish},
		{in: "EN", expected: HeaderEnglish},
		{in: "fr", wantErr: true},
		{in: "english", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			locale, err := ParseHeaderLocale(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, locale)
		})
	}
}

func TestWriteCSV(t *testing.T) {
	view := defaultView()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, view, CSVOptions{}))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, utf8BOM), "UTF-8 BOM expected")

	records, err := csv.NewReader(bytes.NewReader(raw[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, Columns(HeaderJapanese), records[0])
	assert.Equal(t, "ヨドバシ.com", records[1][0], "non-ASCII names survive")
	assert.Equal(t, "MonotaRO", records[2][0])
	assert.Equal(t, "3333333", records[2][2])
	assert.Equal(t, "11642", records[2][3])
	assert.Equal(t, "0.293", records[2][4])
	assert.True(t, strings.HasPrefix(records[2][1], "33.333"))
}

func TestWriteCSV_EnglishHeaderWithoutBOM(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, defaultView(), CSVOptions{Locale: HeaderEnglish, NoBOM: true}))

	firstLine := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.Equal(t, "entity,share_pct,added_units,revenue_per_unit,margin_rate,gross_profit_per_unit,added_revenue,added_gross_profit", firstLine)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteCSV_PropagatesWriteErrors(t *testing.T) {
	err := WriteCSV(failingWriter{}, defaultView(), CSVOptions{})
	assert.ErrorContains(t, err, "disk full")
}

func TestWriteXLSX(t *testing.T) {
	view := defaultView()

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, view))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(detailSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5, "header, three entities, totals")
	assert.Equal(t, presentation.LabelEntity, rows[0][0])
	assert.Equal(t, "ASKUL", rows[3][0])
	assert.Equal(t, "合計", rows[4][0])

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	assert.Equal(t, presentation.LabelTotalAdded, summary[1][0])
	assert.Equal(t, "10,000,000", summary[1][1])

	widths := []struct {
		sheet, col string
		expected   float64
	}{
		{detailSheet, "A", 20},
		{detailSheet, "H", 18},
		{summarySheet, "A", 24},
		{summarySheet, "C", 36},
	}
	for _, w := range widths {
		width, err := f.GetColWidth(w.sheet, w.col)
		require.NoError(t, err)
		assert.Equal(t, w.expected, width, "%s column %s", w.sheet, w.col)
	}

	headerStyle, err := f.GetCellStyle(detailSheet, "A1")
	require.NoError(t, err)
	assert.NotZero(t, headerStyle, "header row is styled")
	totalsStyle, err := f.GetCellStyle(detailSheet, "A5")
	require.NoError(t, err)
	assert.Equal(t, headerStyle, totalsStyle)
}

func TestSetColWidths_MissingSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	err := setColWidths(f, "missing", 20, 18, "H")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing column A")
}

func TestRender(t *testing.T) {
	view := defaultView()

	csvBytes, err := Render(FormatCSV, view)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(csvBytes, utf8BOM))

	xlsxBytes, err := Render(FormatXLSX, view)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(xlsxBytes, []byte("PK")), "xlsx is a zip archive")
}

func TestFileSink(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir)
	require.NoError(t, err)
	sink.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

	loc, err := sink.Put(context.Background(), "sku_simulator.csv", "text/csv", []byte("a,b\n"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(loc.Key, "2026/03/04/"))
	assert.True(t, strings.HasSuffix(loc.Key, "/sku_simulator.csv"))

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(loc.Key)))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))
}

func TestFileSink_StripsDirectoriesFromName(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir)
	require.NoError(t, err)

	loc, err := sink.Put(context.Background(), "../../escape.csv", "text/csv", []byte("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(loc.Key, "/escape.csv"))
	assert.NotContains(t, loc.Key, "..")
}

func TestFileSink_CancelledContext(t *testing.T) {
	sink, err := NewFileSink(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = sink.Put(ctx, "x.csv", "text/csv", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeUploader struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = input
	f.body, _ = io.ReadAll(input.Body)
	return &manager.UploadOutput{}, nil
}

func TestS3Sink(t *testing.T) {
	up := &fakeUploader{}
	sink := NewS3Sink(up, "exports-bucket", "skusim")
	sink.now = func() time.Time { return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) }

	loc, err := sink.Put(context.Background(), "sku_simulator.xlsx", FormatXLSX.ContentType(), []byte("PK"))
	require.NoError(t, err)

	require.NotNil(t, up.input)
	assert.Equal(t, "exports-bucket", *up.input.Bucket)
	assert.Equal(t, loc.Key, *up.input.Key)
	assert.Equal(t, FormatXLSX.ContentType(), *up.input.ContentType)
	assert.Equal(t, []byte("PK"), up.body)
	assert.True(t, strings.HasPrefix(loc.Key, "skusim/2026/01/02/"))
	assert.Equal(t, "s3://exports-bucket/"+loc.Key, loc.URI)
}

func TestS3Sink_UploadError(t *testing.T) {
	sink := NewS3Sink(&fakeUploader{err: errors.New("access denied")}, "b", "")

	_, err := sink.Put(context.Background(), "x.csv", "text/csv", []byte("x"))
	assert.ErrorContains(t, err, "access denied")
}
