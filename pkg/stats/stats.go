// Package stats summarizes the destination's contents, grouped by artist or
// by individual track.
package stats

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/walteh/playsync/pkg/config"
	"github.com/walteh/playsync/pkg/engine"
	"github.com/walteh/playsync/pkg/fsops"
	"github.com/walteh/playsync/pkg/metadata"
)

const unknownArtist = "(unknown)"

// Row is one line of the rendered table.
type Row struct {
	Artist string
	Title  string
	Folder string
	Size   int64
	Count  int
}

// Run scans the destination and renders the statistics table to w. Folder
// layouts are auto-detected: a destination without template-matching folders
// is treated as a single flat folder.
func Run(ctx context.Context, fsys fsops.FS, meta metadata.Reader, cfg *config.Config, w io.Writer) error {
	ix, err := engine.ScanDest(ctx, fsys, cfg.Destination, cfg.FolderTemplate, false, cfg.IgnorePatterns)
	if err != nil {
		return err
	}
	if len(ix.Folders) == 0 {
		ix, err = engine.ScanDest(ctx, fsys, cfg.Destination, cfg.FolderTemplate, true, cfg.IgnorePatterns)
		if err != nil {
			return err
		}
	}

	rows := Collect(ix, meta, cfg.GroupBy)
	render(w, cfg.GroupBy, rows, ix.TotalFiles())
	return nil
}

// Collect builds the table rows from an already scanned index. Tags are read
// from each file where possible; otherwise the `artist - album - title`
// filename convention is parsed, and failing that the artist is unknown.
func Collect(ix *engine.FolderIndex, meta metadata.Reader, groupBy string) []Row {
	if groupBy == config.GroupByTrack {
		return collectTracks(ix, meta)
	}
	return collectArtists(ix, meta)
}

func collectArtists(ix *engine.FolderIndex, meta metadata.Reader) []Row {
	type agg struct {
		count int
		size  int64
	}
	byArtist := make(map[string]*agg)
	for _, f := range ix.Files {
		artist, _ := describe(meta, f)
		a := byArtist[artist]
		if a == nil {
			a = &agg{}
			byArtist[artist] = a
		}
		a.count++
		a.size += f.Size
	}

	rows := make([]Row, 0, len(byArtist))
	for artist, a := range byArtist {
		rows = append(rows, Row{Artist: artist, Count: a.count, Size: a.size})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Artist < rows[j].Artist
	})
	return rows
}

func collectTracks(ix *engine.FolderIndex, meta metadata.Reader) []Row {
	rows := make([]Row, 0, len(ix.Files))
	for _, f := range ix.Files {
		artist, title := describe(meta, f)
		rows = append(rows, Row{
			Artist: artist,
			Title:  title,
			Folder: filepath.Base(filepath.Dir(f.Path)),
			Size:   f.Size,
			Count:  1,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Artist != rows[j].Artist {
			return rows[i].Artist < rows[j].Artist
		}
		return rows[i].Title < rows[j].Title
	})
	return rows
}

// trailing collision suffix like " (2)"
var suffixPattern = regexp.MustCompile(`\s\(\d+\)$`)

func describe(meta metadata.Reader, f engine.DestFile) (artist, title string) {
	if tags, err := meta.ReadTags(f.Path); err == nil && tags.Complete() {
		return tags.Artist, tags.Title
	}

	base := strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
	base = suffixPattern.ReplaceAllString(base, "")
	if parts := strings.Split(base, " - "); len(parts) == 3 {
		return parts[0], parts[2]
	}
	return unknownArtist, base
}

func render(w io.Writer, groupBy string, rows []Row, total int) {
	table := tablewriter.NewWriter(w)

	var totalSize int64
	if groupBy == config.GroupByTrack {
		table.SetHeader([]string{"Artist", "Title", "Folder", "Size"})
		for _, r := range rows {
			table.Append([]string{r.Artist, r.Title, r.Folder, formatSize(r.Size)})
			totalSize += r.Size
		}
		table.SetFooter([]string{"", "", fmt.Sprintf("%d tracks", total), formatSize(totalSize)})
	} else {
		table.SetHeader([]string{"Artist", "Tracks", "Size"})
		for _, r := range rows {
			table.Append([]string{r.Artist, fmt.Sprintf("%d", r.Count), formatSize(r.Size)})
			totalSize += r.Size
		}
		table.SetFooter([]string{"Total", fmt.Sprintf("%d", total), formatSize(totalSize)})
	}

	table.Render()
	color.New(color.FgGreen, color.Bold).Fprintf(w, "%d tracks, %s\n", total, formatSize(totalSize))
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GiB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
