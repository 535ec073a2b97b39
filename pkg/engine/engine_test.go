package engine

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/playsync/pkg/config"
	"github.com/walteh/playsync/pkg/fsops"
	"github.com/walteh/playsync/pkg/metadata"
)

// stubMeta serves tags by basename so tests don't depend on temp dir layout.
type stubMeta struct {
	byBase map[string]metadata.Tags
}

func (s stubMeta) ReadTags(path string) (metadata.Tags, error) {
	return s.byBase[filepath.Base(path)], nil
}

type fixture struct {
	srcDir   string
	destDir  string
	playlist string
}

// newFixture creates source tracks and a playlist referencing them by
// relative path, plus an empty destination.
func newFixture(t *testing.T, names ...string) fixture {
	t.Helper()
	srcDir := t.TempDir()

	var lines []string
	lines = append(lines, "#EXTM3U")
	for _, n := range names {
		writeFile(t, filepath.Join(srcDir, "tracks", n), "data-"+n)
		lines = append(lines, filepath.Join("tracks", n))
	}
	playlist := filepath.Join(srcDir, "test.m3u")
	require.NoError(t, os.WriteFile(playlist, []byte(strings.Join(lines, "\n")+"\n"), 0o644))

	return fixture{srcDir: srcDir, destDir: t.TempDir(), playlist: playlist}
}

func newTestEngine(t *testing.T, fx fixture, meta metadata.Reader, mutate func(*config.Config)) *Engine {
	t.Helper()
	cfg := config.Default()
	cfg.Destination = fx.destDir
	cfg.Playlists = []string{fx.playlist}
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Validate())
	if meta == nil {
		meta = stubMeta{}
	}
	return New(fsops.NewOS(), meta, testReporter(t), rand.New(rand.NewSource(1)), cfg)
}

func listNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := fsops.NewOS().ListDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
}

// Scenario: three tagged tracks, empty destination, single-folder mode.
func TestSyncFlatDestination(t *testing.T) {
	fx := newFixture(t, "one.mp3", "two.mp3", "three.mp3")
	meta := stubMeta{byBase: map[string]metadata.Tags{
		"one.mp3":   {Artist: "A", Album: "X", Title: "First"},
		"two.mp3":   {Artist: "B", Album: "Y", Title: "Second"},
		"three.mp3": {Artist: "C", Album: "Z", Title: "Third"},
	}}
	eng := newTestEngine(t, fx, meta, func(c *config.Config) {
		c.RewriteNames = true
	})

	require.NoError(t, eng.SyncOrAppend(testContext(t), ModeSync))

	assert.ElementsMatch(t,
		[]string{"A - X - First.mp3", "B - Y - Second.mp3", "C - Z - Third.mp3"},
		listNames(t, fx.destDir),
		"exactly the three computed names, no folders")
}

// Scenario: five tracks at two per folder land as 2/2/1 in playlist order.
func TestSyncFoldersInPlaylistOrder(t *testing.T) {
	fx := newFixture(t, "t1.mp3", "t2.mp3", "t3.mp3", "t4.mp3", "t5.mp3")
	eng := newTestEngine(t, fx, nil, func(c *config.Config) {
		c.TracksPerFolder = 2
	})

	require.NoError(t, eng.SyncOrAppend(testContext(t), ModeSync))

	assert.ElementsMatch(t, []string{"Folder 1", "Folder 2", "Folder 3"}, listNames(t, fx.destDir))
	assert.Equal(t, []string{"t1.mp3", "t2.mp3"}, listNames(t, filepath.Join(fx.destDir, "Folder 1")))
	assert.Equal(t, []string{"t3.mp3", "t4.mp3"}, listNames(t, filepath.Join(fx.destDir, "Folder 2")))
	assert.Equal(t, []string{"t5.mp3"}, listNames(t, filepath.Join(fx.destDir, "Folder 3")))
}

// Scenario: a destination file no playlist references is deleted by sync,
// and its folder is removed once emptied.
func TestSyncDeletesUnreferencedFiles(t *testing.T) {
	fx := newFixture(t, "keep.mp3")
	writeFile(t, filepath.Join(fx.destDir, "Folder 1", "stale.mp3"), "old")
	eng := newTestEngine(t, fx, nil, func(c *config.Config) {
		c.TracksPerFolder = 2
	})

	require.NoError(t, eng.SyncOrAppend(testContext(t), ModeSync))

	assert.NoFileExists(t, filepath.Join(fx.destDir, "Folder 1", "stale.mp3"))
	assert.FileExists(t, filepath.Join(fx.destDir, "Folder 1", "keep.mp3"))
}

func TestSyncRemovesEmptiedFolder(t *testing.T) {
	fx := newFixture(t) // playlist with only the #EXTM3U directive
	writeFile(t, filepath.Join(fx.destDir, "Folder 1", "stale.mp3"), "old")
	writeFile(t, filepath.Join(fx.destDir, "Folder 2", "also.mp3"), "old")
	eng := newTestEngine(t, fx, nil, func(c *config.Config) {
		c.TracksPerFolder = 2
	})

	require.NoError(t, eng.SyncOrAppend(testContext(t), ModeSync))

	assert.NoDirExists(t, filepath.Join(fx.destDir, "Folder 1"))
	assert.NoDirExists(t, filepath.Join(fx.destDir, "Folder 2"))
	assert.Empty(t, listNames(t, fx.destDir))
}

func TestAppendKeepsUnreferencedFiles(t *testing.T) {
	fx := newFixture(t, "new.mp3")
	writeFile(t, filepath.Join(fx.destDir, "Folder 1", "stale.mp3"), "old")
	eng := newTestEngine(t, fx, nil, func(c *config.Config) {
		c.TracksPerFolder = 2
	})

	require.NoError(t, eng.SyncOrAppend(testContext(t), ModeAppend))

	assert.FileExists(t, filepath.Join(fx.destDir, "Folder 1", "stale.mp3"), "append must not delete")
	assert.FileExists(t, filepath.Join(fx.destDir, "Folder 1", "new.mp3"))
}

func TestSyncIsIdempotent(t *testing.T) {
	fx := newFixture(t, "a.mp3", "b.mp3", "c.mp3")
	eng := newTestEngine(t, fx, nil, func(c *config.Config) {
		c.TracksPerFolder = 2
	})

	require.NoError(t, eng.SyncOrAppend(testContext(t), ModeSync))
	first := listNames(t, filepath.Join(fx.destDir, "Folder 1"))

	require.NoError(t, eng.SyncOrAppend(testContext(t), ModeSync))
	assert.Equal(t, first, listNames(t, filepath.Join(fx.destDir, "Folder 1")), "second run must change nothing")
}

func TestSyncCollidingTagsGetSuffixes(t *testing.T) {
	fx := newFixture(t, "a.mp3", "b.mp3")
	same := metadata.Tags{Artist: "A", Album: "B", Title: "C"}
	meta := stubMeta{byBase: map[string]metadata.Tags{"a.mp3": same, "b.mp3": same}}
	eng := newTestEngine(t, fx, meta, func(c *config.Config) {
		c.RewriteNames = true
	})

	require.NoError(t, eng.SyncOrAppend(testContext(t), ModeSync))

	assert.ElementsMatch(t, []string{"A - B - C.mp3", "A - B - C (2).mp3"}, listNames(t, fx.destDir))
}

func TestSyncMissingMetadataAborts(t *testing.T) {
	fx := newFixture(t, "a.mp3")
	eng := newTestEngine(t, fx, stubMeta{}, func(c *config.Config) {
		c.RewriteNames = true
	})

	err := eng.SyncOrAppend(testContext(t), ModeSync)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingMetadata)
	assert.Empty(t, listNames(t, fx.destDir), "nothing may be copied after a fatal precondition")
}

func snapshotTree(t *testing.T, root string) map[string]string {
	t.Helper()
	snap := map[string]string{}
	require.NoError(t, filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			snap[rel] = "<dir>"
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		snap[rel] = string(data)
		return nil
	}))
	return snap
}

func TestDryRunLeavesDestinationUntouched(t *testing.T) {
	fx := newFixture(t, "a.mp3", "b.mp3", "c.mp3")
	writeFile(t, filepath.Join(fx.destDir, "Folder 1", "stale.mp3"), "old")
	before := snapshotTree(t, fx.destDir)

	cfg := config.Default()
	cfg.Destination = fx.destDir
	cfg.Playlists = []string{fx.playlist}
	cfg.TracksPerFolder = 2
	cfg.DryRun = true
	require.NoError(t, cfg.Validate())

	rep := testReporter(t)
	fsys := fsops.NewDryRun(fsops.NewOS(), rep)
	eng := New(fsys, stubMeta{}, rep, rand.New(rand.NewSource(1)), cfg)

	require.NoError(t, eng.SyncOrAppend(testContext(t), ModeSync))
	assert.Equal(t, before, snapshotTree(t, fx.destDir), "dry run must be byte-for-byte side-effect free")
}

type opRecorder struct {
	ops []string
}

func (r *opRecorder) Planned(op, src, dst string) {
	r.ops = append(r.ops, op)
}

// The reshuffle riding on a sync must plan against the post-sync state, not a
// rescan of the untouched disk. With every destination file slated for
// deletion the post-sync index is empty, so a dry run may not plan any move,
// no matter what the still-present files on disk look like.
func TestDryRunReshufflePlansAgainstPostSyncState(t *testing.T) {
	fx := newFixture(t) // playlist with only the #EXTM3U directive
	writeFile(t, filepath.Join(fx.destDir, "Folder 1", "a.mp3"), "a")
	writeFile(t, filepath.Join(fx.destDir, "Folder 2", "b.mp3"), "b")
	before := snapshotTree(t, fx.destDir)

	cfg := config.Default()
	cfg.Destination = fx.destDir
	cfg.Playlists = []string{fx.playlist}
	cfg.TracksPerFolder = 2
	cfg.Reshuffle = true
	cfg.DryRun = true
	require.NoError(t, cfg.Validate())

	rec := &opRecorder{}
	eng := New(fsops.NewDryRun(fsops.NewOS(), rec), stubMeta{}, testReporter(t), rand.New(rand.NewSource(1)), cfg)

	require.NoError(t, eng.SyncOrAppend(testContext(t), ModeSync))

	assert.NotContains(t, rec.ops, "move", "files planned for deletion must not appear in the reshuffle plan")
	assert.Contains(t, rec.ops, "delete")
	assert.Equal(t, before, snapshotTree(t, fx.destDir))
}

func TestDryRunStillFailsPreconditions(t *testing.T) {
	fx := newFixture(t, "a.mp3")
	// two folders holding the same basename: broken destination state
	writeFile(t, filepath.Join(fx.destDir, "Folder 1", "dup.mp3"), "x")
	writeFile(t, filepath.Join(fx.destDir, "Folder 2", "dup.mp3"), "y")

	cfg := config.Default()
	cfg.Destination = fx.destDir
	cfg.Playlists = []string{fx.playlist}
	cfg.TracksPerFolder = 2
	cfg.DryRun = true
	require.NoError(t, cfg.Validate())

	rep := testReporter(t)
	eng := New(fsops.NewDryRun(fsops.NewOS(), rep), stubMeta{}, rep, rand.New(rand.NewSource(1)), cfg)

	err := eng.SyncOrAppend(testContext(t), ModeSync)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateName, "a dry run fails on the same fatal conditions a real run would")
}

func TestSyncWithReshuffleConservesFiles(t *testing.T) {
	fx := newFixture(t, "a.mp3", "b.mp3", "c.mp3", "d.mp3", "e.mp3")
	eng := newTestEngine(t, fx, nil, func(c *config.Config) {
		c.TracksPerFolder = 2
		c.Reshuffle = true
	})

	require.NoError(t, eng.SyncOrAppend(testContext(t), ModeSync))

	ix, err := ScanDest(testContext(t), fsops.NewOS(), fx.destDir, "Folder %d", false, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, ix.TotalFiles(), "reshuffle must not lose or duplicate files")
	for n, occ := range ix.Folders {
		assert.LessOrEqual(t, occ, 2, "folder %d past its slot budget", n)
	}
}
