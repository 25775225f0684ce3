package printshop

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFixturesAreValid(t *testing.T) {
	doc := DefaultFixtures()
	require.NoError(t, doc.Validate())
	assert.Len(t, doc.Pending, 3)
	assert.Len(t, doc.Completed, 2)
	assert.Equal(t, Money(5000), doc.Metrics.TotalRevenue)
}

func TestFixturesRoundTripThroughYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeFixtures(&buf, DefaultFixtures()))
	assert.Contains(t, buf.String(), "total_pages_printed: 15000")

	doc, err := DecodeFixtures(&buf)
	require.NoError(t, err)
	assert.Equal(t, DefaultFixtures().Series, doc.Series)
}

func TestDecodeFixturesRejectsUnknownFields(t *testing.T) {
	_, err := DecodeFixtures(strings.NewReader("version: \"1\"\ncustomers: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "customers")
}

func TestDecodeFixturesRejectsEmptyDocument(t *testing.T) {
	_, err := DecodeFixtures(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestDecodeFixturesDefaultsVersion(t *testing.T) {
	src := DefaultFixtures()
	src.Version = ""
	src.Metrics.PendingPrints = 4
	var buf bytes.Buffer
	require.NoError(t, EncodeFixtures(&buf, src))

	doc, err := DecodeFixtures(&buf)
	require.NoError(t, err)
	assert.Equal(t, FixturesVersion, doc.Version)
	assert.Equal(t, 4, doc.Metrics.PendingPrints)
}

func TestFixturesValidateRejectsBadDocuments(t *testing.T) {
	cases := map[string]func(doc *Fixtures){
		"version":          func(doc *Fixtures) { doc.Version = "2" },
		"duplicate id":     func(doc *Fixtures) { doc.Pending[1].ID = doc.Pending[0].ID },
		"overlapping id":   func(doc *Fixtures) { doc.Completed[0].ID = doc.Pending[0].ID },
		"missing document": func(doc *Fixtures) { doc.Pending[0].Document = "" },
		"zero pages":       func(doc *Fixtures) { doc.Completed[1].Pages = 0 },
		"series key":       func(doc *Fixtures) { doc.Series[0].Key = "" },
		"duplicate series": func(doc *Fixtures) { doc.Series[1].Key = doc.Series[0].Key },
		"missing series":   func(doc *Fixtures) { doc.Series = doc.Series[:1] },
		"renamed series":   func(doc *Fixtures) { doc.Series[1].Key = "refunds" },
		"empty series":     func(doc *Fixtures) { doc.Series[0].Points = nil },
	}
	for name, mutate := range cases {
		doc := DefaultFixtures()
		mutate(doc)
		assert.Error(t, doc.Validate(), name)
	}
}

func TestReadFixturesRecordsSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	var buf bytes.Buffer
	require.NoError(t, EncodeFixtures(&buf, DefaultFixtures()))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	doc, err := ReadFixtures(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Source)

	_, err = ReadFixtures(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestStaticRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewStaticRepository(nil)

	pending, err := repo.PendingTasks(ctx)
	require.NoError(t, err)
	pending[0].Name = "mutated"
	again, _ := repo.PendingTasks(ctx)
	assert.Equal(t, "John Doe", again[0].Name)

	series, err := repo.Series(ctx, SeriesMonthlySales)
	require.NoError(t, err)
	require.Len(t, series.Points, 12)
	series.Points[0].Value = -1
	again2, _ := repo.Series(ctx, SeriesMonthlySales)
	assert.Equal(t, 4000, again2.Points[0].Value)

	_, err = repo.Series(ctx, "unknown")
	assert.Error(t, err)
}

func TestMoneyAndCountFormatting(t *testing.T) {
	assert.Equal(t, "$5,000", Money(5000).String())
	assert.Equal(t, "$0", Money(0).String())
	assert.Equal(t, "15,000", formatCount(15000))
	assert.Equal(t, "75", formatCount(75))
}
