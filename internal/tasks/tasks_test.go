package tasks

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDocument_Title(t *testing.T) {
	withHeading := Document{Filename: "01-intro.md", Content: []byte("# My Title\n\nBody\n")}
	require.Equal(t, "My Title", withHeading.Title())

	fallback := Document{Filename: "03-setup.md", Content: []byte("No heading here\n## Sub\n")}
	require.Equal(t, "03-setup", fallback.Title())

	empty := Document{Filename: "notes.md"}
	require.Equal(t, "notes", empty.Title())
}

func TestOutputName(t *testing.T) {
	require.Equal(t, "01-intro.html", OutputName("01-intro.md"))
	require.Equal(t, "readme.html", Document{Filename: "readme.md"}.OutputName())
	require.Equal(t, "a.md.html", OutputName("a.md.md"), "only the final extension is swapped")
}

func TestParseOrdinal(t *testing.T) {
	tests := []struct {
		name string
		want int
		ok   bool
	}{
		{"007-intro.md", 7, true},
		{"03-setup.md", 3, true},
		{"10-y.md", 10, true},
		{"0-zero.md", 0, true},
		{"42.md", 42, true},
		{"intro.md", 0, false},
		{"-1-neg.md", 0, false},
		{"99999999999999999999999-huge.md", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseOrdinal(tt.name)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestIndexEntry_DisplayTitle(t *testing.T) {
	require.Equal(t, "Task 3: 03-setup",
		IndexEntry{Filename: "03-setup.html", Title: "03-setup", OriginalFile: "03-setup.md"}.DisplayTitle())
	require.Equal(t, "Task 7: Intro",
		IndexEntry{Filename: "007-intro.html", Title: "Intro", OriginalFile: "007-intro.md"}.DisplayTitle())
	require.Equal(t, "Appendix",
		IndexEntry{Filename: "appendix.html", Title: "Appendix", OriginalFile: "appendix.md"}.DisplayTitle())
}

func TestIndexEntry_Href(t *testing.T) {
	entry := NewIndexEntry(Document{Filename: "01-a.md"}, Page{Filename: "01-a.html", Title: "A"})
	require.Equal(t, "tasks/01-a.html", entry.Href())
	require.Equal(t, "01-a.md", entry.OriginalFile)
	require.Equal(t, "A", entry.Title)
}

func TestListSources_LexicographicOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"2-x.md", "10-y.md", "1-a.md", "notes.txt", "b.MD"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested.md"), 0o755))

	names, err := ListSources(dir)
	require.NoError(t, err)
	require.Equal(t, []string{"1-a.md", "10-y.md", "2-x.md"}, names)
}

func TestListSources_FollowsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	shared := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(shared, "intro.md"), []byte("# Intro\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(shared, "chapter"), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(shared, "intro.md"), filepath.Join(dir, "01-intro.md")))
	require.NoError(t, os.Symlink(filepath.Join(shared, "chapter"), filepath.Join(dir, "02-chapter.md")))
	require.NoError(t, os.Symlink(filepath.Join(shared, "gone.md"), filepath.Join(dir, "03-dangling.md")))

	names, err := ListSources(dir)
	require.NoError(t, err)
	require.Equal(t, []string{"01-intro.md"}, names)

	docs, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "Intro", docs[0].Title())
}

func TestListSources_MissingDir(t *testing.T) {
	_, err := ListSources(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "02-b.md"), []byte("# B\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "01-a.md"), []byte("# A\n"), 0o644))

	docs, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, "01-a.md", docs[0].Filename)
	require.Equal(t, "A", docs[0].Title())
	require.Equal(t, "B", docs[1].Title())
}

func TestLoad_Empty(t *testing.T) {
	docs, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Empty(t, docs)
}
