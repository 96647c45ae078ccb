package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Caia-Tech/caia-legal-corpus/pkg/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDoc(url string) *document.ExtractedDocument {
	return &document.ExtractedDocument{
		RawTitle:      "قرار بقانون رقم (12) لسنة 2020",
		RepairedTitle: "قرار بقانون رقم (12) لسنة 2020",
		BodyText:      strings.Repeat("نص <المادة> & ", 10),
		ContentType:   document.ContentTypePDF,
		SourceURL:     url,
		Raw:           []byte("%PDF-1.4 fake"),
	}
}

func TestContentID(t *testing.T) {
	id := ContentID("https://example.org/a.pdf")
	assert.Len(t, id, 40)
	assert.Equal(t, id, ContentID("https://example.org/a.pdf"))
	assert.NotEqual(t, id, ContentID("https://example.org/b.pdf"))
	// sha1("abc")
	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", ContentID("abc"))
}

func TestCorpusStore_Persist(t *testing.T) {
	root := t.TempDir()
	metrics := NewSimpleMetricsCollector()
	store, err := NewCorpusStore(root, "PS", metrics)
	require.NoError(t, err)

	doc := testDoc("https://example.org/a.pdf")
	record, err := store.Persist(context.Background(), doc, "قرار بقانون رقم (12) لسنة 2020")
	require.NoError(t, err)

	id := ContentID(doc.SourceURL)
	assert.Equal(t, id, record.ID)
	assert.Equal(t, "law_or_regulation", record.Type)
	assert.Equal(t, "PS", record.Jurisdiction)
	assert.Equal(t, 1, record.Version)
	assert.Nil(t, record.IssuedAt)
	assert.Equal(t, "قرار بقانون رقم (12) لسنة 2020 - "+id[:8]+".pdf", record.Filename)
	assert.Equal(t, "قرار بقانون رقم (12) لسنة 2020 - "+id[:8]+".txt", record.TextFile)

	data, err := os.ReadFile(filepath.Join(root, FilesDir, record.Filename))
	require.NoError(t, err)
	assert.Equal(t, doc.Raw, data)

	text, err := os.ReadFile(filepath.Join(root, TextsDir, record.TextFile))
	require.NoError(t, err)
	assert.Equal(t, doc.BodyText, string(text))

	line, err := os.ReadFile(store.CorpusPath())
	require.NoError(t, err)
	assert.Equal(t, 1, bytes.Count(line, []byte("\n")))
	// non-ASCII and HTML characters are left unescaped
	assert.Contains(t, string(line), "قرار بقانون")
	assert.Contains(t, string(line), "<المادة> &")
	assert.Contains(t, string(line), `"issued_at":null`)

	summary := metrics.GetMetricsSummary()
	for _, op := range []string{"write_binary", "write_text", "append_record"} {
		require.Contains(t, summary, op)
		assert.Equal(t, 1, summary[op].SuccessCount)
	}
}

func TestCorpusStore_CollisionsNeverOverwrite(t *testing.T) {
	root := t.TempDir()
	store, err := NewCorpusStore(root, "PS", nil)
	require.NoError(t, err)
	ctx := context.Background()

	first := testDoc("https://example.org/a.pdf")
	second := testDoc("https://example.org/a.pdf")
	second.Raw = []byte("%PDF-1.4 second")
	third := testDoc("https://example.org/a.pdf")
	third.Raw = []byte("%PDF-1.4 third")

	r1, err := store.Persist(ctx, first, "title")
	require.NoError(t, err)
	r2, err := store.Persist(ctx, second, "title")
	require.NoError(t, err)
	r3, err := store.Persist(ctx, third, "title")
	require.NoError(t, err)

	prefix := "title - " + r1.ID[:8]
	assert.Equal(t, prefix+".pdf", r1.Filename)
	assert.Equal(t, prefix+"_1.pdf", r2.Filename)
	assert.Equal(t, prefix+"_2.pdf", r3.Filename)
	assert.Equal(t, prefix+"_2.txt", r3.TextFile)

	data, err := os.ReadFile(filepath.Join(root, FilesDir, r1.Filename))
	require.NoError(t, err)
	assert.Equal(t, first.Raw, data)

	records, err := store.Records()
	require.NoError(t, err)
	require.Len(t, records, 3)
	// same URL, same id: duplicates are accepted
	assert.Equal(t, records[0].ID, records[2].ID)
}

func TestCorpusStore_HTMLRecordType(t *testing.T) {
	store, err := NewCorpusStore(t.TempDir(), "PS", nil)
	require.NoError(t, err)

	doc := testDoc("https://example.org/page")
	doc.ContentType = document.ContentTypeHTML
	record, err := store.Persist(context.Background(), doc, "page")
	require.NoError(t, err)
	assert.Equal(t, "web_page", record.Type)
	assert.True(t, strings.HasSuffix(record.Filename, ".html"))
}

func TestCorpusStore_TextFailureAppendsNoRecord(t *testing.T) {
	root := t.TempDir()
	metrics := NewSimpleMetricsCollector()
	store, err := NewCorpusStore(root, "PS", metrics)
	require.NoError(t, err)

	// make the texts directory unusable
	require.NoError(t, os.RemoveAll(filepath.Join(root, TextsDir)))
	require.NoError(t, os.WriteFile(filepath.Join(root, TextsDir), []byte("not a dir"), 0644))

	_, err = store.Persist(context.Background(), testDoc("https://example.org/a.pdf"), "title")
	require.Error(t, err)

	records, err := store.Records()
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 1, metrics.GetMetricsSummary()["write_text"].FailureCount)
}

func TestCorpusStore_RejectsInvalidDocument(t *testing.T) {
	root := t.TempDir()
	store, err := NewCorpusStore(root, "PS", nil)
	require.NoError(t, err)

	short := testDoc("https://example.org/short.pdf")
	short.BodyText = strings.Repeat("ن", document.MinContentLength-1)
	noURL := testDoc("")

	for _, doc := range []*document.ExtractedDocument{short, noURL} {
		_, err := store.Persist(context.Background(), doc, "title")
		assert.Error(t, err)
	}

	files, err := os.ReadDir(filepath.Join(root, FilesDir))
	require.NoError(t, err)
	assert.Empty(t, files)
	_, err = os.Stat(store.CorpusPath())
	assert.True(t, os.IsNotExist(err))
}

func TestCorpusStore_CanceledContext(t *testing.T) {
	store, err := NewCorpusStore(t.TempDir(), "PS", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Persist(ctx, testDoc("https://example.org/a.pdf"), "title")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadRecords_Missing(t *testing.T) {
	called := false
	err := ReadRecords(filepath.Join(t.TempDir(), "none.jsonl"), func(document.Record) error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.False(t, called)
}
