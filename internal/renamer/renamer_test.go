package renamer

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/Caia-Tech/caia-legal-corpus/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	mirrored  = "نوناقب 2020 رارق )5( مقر"
	canonical = "قرار بقانون رقم (5) لسنة 2020"
)

func setupOutput(t *testing.T, files, texts map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for sub, contents := range map[string]map[string]string{storage.FilesDir: files, storage.TextsDir: texts} {
		dir := filepath.Join(root, sub)
		require.NoError(t, os.MkdirAll(dir, 0755))
		for name, body := range contents {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
		}
	}
	return root
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestRenamer_Plan(t *testing.T) {
	r := New(Options{})

	tests := []struct {
		name     string
		input    string
		expected string
		action   Action
	}{
		{
			name:     "mirrored title repaired",
			input:    mirrored + " - 1a2b3c4d.pdf",
			expected: canonical + " - 1a2b3c4d.pdf",
			action:   ActionRename,
		},
		{
			name:     "underscore separator rebuilt",
			input:    mirrored + "_1A2B3C4D.txt",
			expected: canonical + " - 1a2b3c4d.txt",
			action:   ActionRename,
		},
		{
			name:     "underscore counter kept",
			input:    mirrored + " - 1a2b3c4d_2.pdf",
			expected: canonical + " - 1a2b3c4d_2.pdf",
			action:   ActionRename,
		},
		{
			name:     "paren counter kept",
			input:    mirrored + " - 1a2b3c4d (3).html",
			expected: canonical + " - 1a2b3c4d (3).html",
			action:   ActionRename,
		},
		{
			name:     "canonical name unchanged",
			input:    canonical + " - 1a2b3c4d.pdf",
			expected: canonical + " - 1a2b3c4d.pdf",
			action:   ActionRename,
		},
		{
			name:     "tatweel removed",
			input:    "قان\u0640\u0640\u0640ون العمل - 1a2b3c4d.pdf",
			expected: "قانون العمل - 1a2b3c4d.pdf",
			action:   ActionRename,
		},
		{
			name:     "unknown grammar only loses bidi controls",
			input:    "\u202bnotes\u202c.md",
			expected: "notes.md",
			action:   ActionStripBidi,
		},
		{
			name:     "unknown grammar without bidi unchanged",
			input:    "README",
			expected: "README",
			action:   ActionStripBidi,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, action := r.plan(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.action, action)
		})
	}
}

func TestRenamer_Apply(t *testing.T) {
	root := setupOutput(t,
		map[string]string{mirrored + " - 1a2b3c4d.pdf": "%PDF-1.4 bytes"},
		map[string]string{mirrored + " - 1a2b3c4d.txt": "body text"},
	)
	corpus := filepath.Join(root, storage.CorpusFile)
	require.NoError(t, os.WriteFile(corpus, []byte(`{"filename":"`+mirrored+` - 1a2b3c4d.pdf"}`+"\n"), 0644))
	before, err := os.ReadFile(corpus)
	require.NoError(t, err)

	report, err := New(Options{}).Run(root)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Applied)
	assert.Zero(t, report.Pending)

	assert.Equal(t, []string{canonical + " - 1a2b3c4d.pdf"}, listDir(t, filepath.Join(root, storage.FilesDir)))
	assert.Equal(t, []string{canonical + " - 1a2b3c4d.txt"}, listDir(t, filepath.Join(root, storage.TextsDir)))

	data, err := os.ReadFile(filepath.Join(root, storage.FilesDir, canonical+" - 1a2b3c4d.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 bytes", string(data))

	after, err := os.ReadFile(corpus)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRenamer_Idempotent(t *testing.T) {
	root := setupOutput(t,
		map[string]string{
			mirrored + " - 1a2b3c4d.pdf":  "a",
			mirrored + "_1a2b3c4d.pdf":    "b",
			"\u202bscan\u202c - note.pdf": "c",
		},
		nil,
	)

	first, err := New(Options{}).Run(root)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Applied)

	second, err := New(Options{}).Run(root)
	require.NoError(t, err)
	assert.Empty(t, second.Changes)
}

func TestRenamer_DryRunMatchesApply(t *testing.T) {
	files := map[string]string{
		mirrored + " - 1a2b3c4d.pdf": "a",
		mirrored + "_1a2b3c4d.pdf":   "b",
	}
	dryRoot := setupOutput(t, files, nil)
	applyRoot := setupOutput(t, files, nil)

	dry, err := New(Options{DryRun: true}).Run(dryRoot)
	require.NoError(t, err)
	assert.Equal(t, 2, dry.Pending)
	assert.Zero(t, dry.Applied)

	// nothing moved
	assert.Equal(t, listDir(t, filepath.Join(applyRoot, storage.FilesDir)), listDir(t, filepath.Join(dryRoot, storage.FilesDir)))

	applied, err := New(Options{}).Run(applyRoot)
	require.NoError(t, err)

	targets := func(r *Report) []string {
		out := make([]string, 0, len(r.Changes))
		for _, c := range r.Changes {
			out = append(out, c.To)
		}
		sort.Strings(out)
		return out
	}
	expected := []string{canonical + " - 1a2b3c4d (1).pdf", canonical + " - 1a2b3c4d.pdf"}
	sort.Strings(expected)
	assert.Equal(t, expected, targets(dry))
	assert.Equal(t, targets(dry), targets(applied))
	assert.Equal(t, expected, listDir(t, filepath.Join(applyRoot, storage.FilesDir)))
}

func TestRenamer_Collisions(t *testing.T) {
	files := map[string]string{
		canonical + " - 1a2b3c4d.pdf": "existing",
		mirrored + " - 1a2b3c4d.pdf":  "incoming",
	}

	t.Run("suffix appended", func(t *testing.T) {
		root := setupOutput(t, files, nil)
		report, err := New(Options{}).Run(root)
		require.NoError(t, err)
		require.Len(t, report.Changes, 1)
		assert.Equal(t, canonical+" - 1a2b3c4d (1).pdf", report.Changes[0].To)

		existing, err := os.ReadFile(filepath.Join(root, storage.FilesDir, canonical+" - 1a2b3c4d.pdf"))
		require.NoError(t, err)
		assert.Equal(t, "existing", string(existing))
		incoming, err := os.ReadFile(filepath.Join(root, storage.FilesDir, canonical+" - 1a2b3c4d (1).pdf"))
		require.NoError(t, err)
		assert.Equal(t, "incoming", string(incoming))
	})

	t.Run("skip on collision", func(t *testing.T) {
		root := setupOutput(t, files, nil)
		report, err := New(Options{SkipOnCollision: true}).Run(root)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Skipped)
		assert.Zero(t, report.Applied)
		require.Len(t, report.Changes, 1)
		assert.Equal(t, ActionSkipCollision, report.Changes[0].Action)

		names := listDir(t, filepath.Join(root, storage.FilesDir))
		assert.Contains(t, names, mirrored+" - 1a2b3c4d.pdf")
		assert.Len(t, names, 2)
	})
}

func TestRenamer_MissingDirectories(t *testing.T) {
	report, err := New(Options{}).Run(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, report.Changes)
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "strip-bidi", ActionStripBidi.String())
	assert.Equal(t, "skip-collision", ActionSkipCollision.String())
	assert.Equal(t, "unknown", Action(42).String())
}
