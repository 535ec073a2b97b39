package playlist

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf16"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/playsync/pkg/fsops"
	"github.com/walteh/playsync/pkg/status"
)

var mp3Only = []string{".mp3"}

func testContext(t *testing.T) context.Context {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func testReporter(t *testing.T) *status.Reporter {
	t.Helper()
	return status.NewReporter(testContext(t), true, false)
}

func writePlaylist(t *testing.T, dir string, raw []byte) string {
	t.Helper()
	path := filepath.Join(dir, "test.m3u")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func writeTrack(t *testing.T, dir string, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("audio"), 0o644))
	return path
}

func TestParseSkipsDirectivesAndBlanks(t *testing.T) {
	dir := t.TempDir()
	a := writeTrack(t, dir, "a.mp3")
	b := writeTrack(t, dir, "b.mp3")
	pl := writePlaylist(t, dir, []byte("#EXTM3U\n\n#EXTINF:123,Artist - Title\na.mp3\n   \nb.mp3\n"))

	tracks, err := Parse(testContext(t), fsops.NewOS(), testReporter(t), pl, mp3Only)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, tracks, "order must follow the playlist")
}

func TestParseResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	nested := writeTrack(t, dir, filepath.Join("albums", "x.mp3"))
	pl := writePlaylist(t, dir, []byte("albums/x.mp3\n"))

	tracks, err := Parse(testContext(t), fsops.NewOS(), testReporter(t), pl, mp3Only)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, nested, tracks[0])
	assert.True(t, filepath.IsAbs(tracks[0]))
}

func TestParseAbsolutePathsPassThrough(t *testing.T) {
	dir := t.TempDir()
	elsewhere := t.TempDir()
	abs := writeTrack(t, elsewhere, "far.mp3")
	pl := writePlaylist(t, dir, []byte(abs+"\n"))

	tracks, err := Parse(testContext(t), fsops.NewOS(), testReporter(t), pl, mp3Only)
	require.NoError(t, err)
	assert.Equal(t, []string{abs}, tracks)
}

func TestParseSkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeTrack(t, dir, "a.mp3")
	pl := writePlaylist(t, dir, []byte("gone.mp3\na.mp3\n"))

	tracks, err := Parse(testContext(t), fsops.NewOS(), testReporter(t), pl, mp3Only)
	require.NoError(t, err, "a missing entry must not abort the parse")
	assert.Equal(t, []string{a}, tracks)
}

func TestParseFiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	a := writeTrack(t, dir, "a.mp3")
	writeTrack(t, dir, "cover.jpg")
	upper := writeTrack(t, dir, "LOUD.MP3")
	pl := writePlaylist(t, dir, []byte("a.mp3\ncover.jpg\nLOUD.MP3\n"))

	tracks, err := Parse(testContext(t), fsops.NewOS(), testReporter(t), pl, mp3Only)
	require.NoError(t, err)
	assert.Equal(t, []string{a, upper}, tracks, "extension matching is case-insensitive")
}

func TestParseMissingPlaylistErrors(t *testing.T) {
	_, err := Parse(testContext(t), fsops.NewOS(), testReporter(t), filepath.Join(t.TempDir(), "nope.m3u"), mp3Only)
	require.Error(t, err)
	assert.ErrorContains(t, err, "reading playlist")
}

func utf16LE(t *testing.T, s string) []byte {
	t.Helper()
	units := utf16.Encode([]rune(s))
	buf := make([]byte, 2+2*len(units))
	buf[0], buf[1] = 0xFF, 0xFE
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[2+2*i:], u)
	}
	return buf
}

func TestParseEncodings(t *testing.T) {
	tests := []struct {
		name string
		raw  func(t *testing.T) []byte
	}{
		{
			name: "utf8_bom",
			raw: func(t *testing.T) []byte {
				return append([]byte{0xEF, 0xBB, 0xBF}, []byte("träck.mp3\n")...)
			},
		},
		{
			name: "utf16_le_bom",
			raw: func(t *testing.T) []byte {
				return utf16LE(t, "träck.mp3\n")
			},
		},
		{
			name: "windows_1252",
			raw: func(t *testing.T) []byte {
				// 0xE4 is a-umlaut in Windows-1252 and invalid as UTF-8 here
				return []byte("tr\xe4ck.mp3\n")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			want := writeTrack(t, dir, "träck.mp3")
			pl := writePlaylist(t, dir, tt.raw(t))

			tracks, err := Parse(testContext(t), fsops.NewOS(), testReporter(t), pl, mp3Only)
			require.NoError(t, err)
			assert.Equal(t, []string{want}, tracks)
		})
	}
}
