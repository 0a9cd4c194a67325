package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/metcalfc/rsvp/internal/library"
	"github.com/metcalfc/rsvp/internal/session"
)

const story = "Chapter 1 The cat sat on the mat. Chapter 2 It purred all day."

// harness runs commands against a library in a temp dir. The runner
// records the session it is handed instead of opening a reader.
type harness struct {
	t     *testing.T
	dir   string
	stdin string
	tty   bool

	// onRead runs against each opened session before it is closed.
	onRead func(*session.Session)
	sess   *session.Session
	stderr string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	for _, key := range []string{
		"RSVP_DATA_DIR", "RSVP_STATE_DIR", "RSVP_WPM", "RSVP_JUMP_MS",
		"RSVP_ARROW_JUMP_MS", "RSVP_AUTOSAVE_INTERVAL", "RSVP_THEME",
		"RSVP_FONT", "RSVP_FONT_SIZE", "RSVP_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
	return &harness{t: t, dir: dir, tty: true}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	a := &app{
		info: VersionInfo{Version: "1.2.3", Commit: "abc123", Date: "2025-01-01"},
		run: func(s *session.Session, _ *log.Logger) error {
			h.sess = s
			if h.onRead != nil {
				h.onRead(s)
			}
			return s.Close()
		},
		stdin:      strings.NewReader(h.stdin),
		stdinIsTTY: func() bool { return h.tty },
	}

	cmd := newRootCmd(a)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	// nil args would make cobra fall back to os.Args.
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.Execute()
	h.stderr = errOut.String()
	return out.String(), err
}

func (h *harness) writeFile(name, content string) string {
	h.t.Helper()
	path := filepath.Join(h.dir, name)
	require.NoError(h.t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd(VersionInfo{}, nil)

	assert.Equal(t, "rsvp [file|title]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Contains(t, cmd.Long, "EPUB (.epub)")

	for _, name := range []string{"config", "verbose", "wpm", "fresh"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "--%s flag", name)
	}

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"read", "import", "library", "bookmark", "stats", "chapters", "config", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestVersionCmd(t *testing.T) {
	h := newHarness(t)
	out, err := h.run("version")
	require.NoError(t, err)
	assert.Equal(t, "rsvp 1.2.3 (commit: abc123, built: 2025-01-01)\n", out)
}

func TestImportAndList(t *testing.T) {
	h := newHarness(t)
	path := h.writeFile("story.txt", story)

	out, err := h.run("import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported story (14 words)")

	out, err = h.run("import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Already in library: story")

	out, err = h.run("library", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "story")
	assert.Contains(t, out, "never")

	out, err = h.run("library", "list", "-o", "json")
	require.NoError(t, err)
	var sums []library.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &sums))
	require.Len(t, sums, 1)
	assert.Equal(t, "story", sums[0].Book.Title)
	assert.Equal(t, 14, sums[0].Book.TotalWords)
	assert.Nil(t, sums[0].LastRead)

	out, err = h.run("library", "list", "nothing-like-it")
	require.NoError(t, err)
	assert.Contains(t, out, "No books found")
}

func TestImportErrors(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("import")
	assert.Error(t, err)

	_, err = h.run("import", filepath.Join(h.dir, "missing.txt"))
	assert.ErrorContains(t, err, "1 of 1 imports failed")
	assert.Contains(t, h.stderr, "Error:")
}

func TestReadFile(t *testing.T) {
	h := newHarness(t)
	path := h.writeFile("story.txt", story)
	h.onRead = func(s *session.Session) { s.Reader.Seek(5) }

	_, err := h.run("read", path)
	require.NoError(t, err)
	require.NotNil(t, h.sess)
	assert.Equal(t, "story", h.sess.Book.Title)
	assert.Equal(t, 300, h.sess.Reader.WPM)

	// Reopening by title restores the saved position.
	h.onRead = nil
	_, err = h.run("read", "stor")
	require.NoError(t, err)
	assert.Equal(t, 5, h.sess.Reader.Position)

	_, err = h.run("read", "story", "--fresh", "--wpm", "455")
	require.NoError(t, err)
	assert.Equal(t, 0, h.sess.Reader.Position)
	assert.Equal(t, 460, h.sess.Reader.WPM)
}

func TestReadResumesLastRead(t *testing.T) {
	h := newHarness(t)
	first := h.writeFile("first.txt", "one two three four")
	second := h.writeFile("second.txt", story)

	h.onRead = func(s *session.Session) { s.Reader.Seek(2) }
	_, err := h.run("read", first)
	require.NoError(t, err)

	// Progress timestamps have millisecond resolution.
	time.Sleep(5 * time.Millisecond)
	h.onRead = func(s *session.Session) { s.Reader.Seek(3) }
	_, err = h.run("read", second)
	require.NoError(t, err)

	h.onRead = nil
	_, err = h.run()
	require.NoError(t, err)
	assert.Equal(t, "second", h.sess.Book.Title)
	assert.Equal(t, 3, h.sess.Reader.Position)
}

func TestReadStdin(t *testing.T) {
	h := newHarness(t)
	h.tty = false
	h.stdin = "Piped words to read."

	_, err := h.run("read")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(h.sess.Book.Title, "Piped text"))
	assert.Equal(t, "text", h.sess.Book.FileType)
	assert.Equal(t, 4, len(h.sess.Reader.Tokens))

	// The same text again reuses the stored book.
	id := h.sess.Book.ID
	h.stdin = "Piped words to read."
	_, err = h.run("read")
	require.NoError(t, err)
	assert.Equal(t, id, h.sess.Book.ID)
}

func TestReadNoInput(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("read")
	assert.ErrorIs(t, err, ErrNoInput)

	h.tty = false
	h.stdin = "   \n"
	_, err = h.run("read")
	assert.Error(t, err)

	h.tty = true
	_, err = h.run("read", "no such book")
	assert.ErrorIs(t, err, library.ErrNotFound)
}

func TestLibraryRm(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("import", h.writeFile("story.txt", story))
	require.NoError(t, err)

	out, err := h.run("library", "rm", "story")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed story")

	out, err = h.run("library")
	require.NoError(t, err)
	assert.Contains(t, out, "No books found")

	_, err = h.run("library", "rm", "story")
	assert.ErrorIs(t, err, library.ErrNotFound)
}

func TestBookmarkCommands(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("import", h.writeFile("story.txt", story))
	require.NoError(t, err)

	out, err := h.run("bookmark", "add", "story", "the cat", "--word", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Bookmarked word 3 of story")

	_, err = h.run("bookmark", "add", "story")
	require.NoError(t, err)

	_, err = h.run("bookmark", "add", "story", "--word", "99")
	assert.ErrorContains(t, err, "outside")

	out, err = h.run("bookmark", "list", "story", "-o", "yaml")
	require.NoError(t, err)
	var views []struct {
		ID      string `yaml:"id"`
		Index   int    `yaml:"index"`
		Note    string `yaml:"note"`
		Preview string `yaml:"preview"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &views))
	require.Len(t, views, 2)
	assert.Equal(t, 0, views[0].Index)
	assert.Equal(t, 2, views[1].Index)
	assert.Equal(t, "the cat", views[1].Note)
	assert.Equal(t, "The cat sat on the mat. Chapter 2", views[1].Preview)

	out, err = h.run("bookmark", "list", "story")
	require.NoError(t, err)
	assert.Contains(t, out, "the cat")

	out, err = h.run("bookmark", "rm", "story", views[1].ID[:8])
	require.NoError(t, err)
	assert.Contains(t, out, "Removed bookmark at word 3")

	_, err = h.run("bookmark", "rm", "story", views[1].ID)
	assert.ErrorIs(t, err, library.ErrNotFound)
}

func TestChaptersCmd(t *testing.T) {
	h := newHarness(t)
	path := h.writeFile("story.txt", story)

	out, err := h.run("chapters", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Chapter 1 The cat sat")
	assert.Contains(t, out, "Chapter 2 It purred all")

	_, err = h.run("import", path)
	require.NoError(t, err)

	out, err = h.run("chapters", "story", "-o", "json")
	require.NoError(t, err)
	var rows []chapterRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, chapterRow{Title: "Chapter 2 It purred all", Word: 9, Words: 6}, rows[1])

	out, err = h.run("chapters", h.writeFile("plain.txt", "no headings here"))
	require.NoError(t, err)
	assert.Contains(t, out, "No chapters found")
}

func TestConfigCmd(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("config", "init")
	require.NoError(t, err)
	path := filepath.Join(h.dir, "config", "rsvp", "config.toml")
	assert.Contains(t, out, path)
	assert.FileExists(t, path)

	_, err = h.run("config", "init")
	assert.ErrorContains(t, err, "already exists")
	_, err = h.run("config", "init", "--force")
	assert.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("wpm = 420\ntheme = \"sepia\"\n"), 0600))
	out, err = h.run("config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "wpm = 420")
	assert.Contains(t, out, "theme = 'sepia'")

	_, err = h.run("--config", filepath.Join(h.dir, "absent.toml"), "stats")
	assert.Error(t, err)
}

func TestComputeStats(t *testing.T) {
	read := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	sums := []library.Summary{
		{Book: library.Book{TotalWords: 1000}, Position: 999, LastRead: &read, Bookmarks: 2},
		{Book: library.Book{TotalWords: 3000}, Position: 499, LastRead: &read},
		{Book: library.Book{TotalWords: 2000}, Bookmarks: 1},
	}

	st := computeStats(sums, 300)
	assert.Equal(t, Stats{
		Books:      3,
		Started:    2,
		Finished:   1,
		Words:      6000,
		WordsRead:  1500,
		Bookmarks:  3,
		WPM:        300,
		TimeToRead: "15m 0s",
	}, st)
}

func TestStatsCmd(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("import", h.writeFile("story.txt", story))
	require.NoError(t, err)

	out, err := h.run("stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Books:")
	assert.Contains(t, out, "1 (0 started, 0 finished)")
	assert.Contains(t, out, "at 300 WPM")
}

func TestWriteOutputUnknownFormat(t *testing.T) {
	err := writeOutput(&bytes.Buffer{}, "xml", nil, nil)
	assert.ErrorContains(t, err, "unknown output format")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
