// Package status provides user-friendly feedback about the progress of a run.
// Structured debug logging stays on zerolog; these lines are for humans.
package status

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 🎨 ChangeType represents the kind of change made to the destination
type ChangeType int

const (
	TrackCopied ChangeType = iota
	TrackDeleted
	TrackKept
	TrackMoved
	TrackSkipped
	FolderCreated
	FolderRemoved
)

// 🖼️ Change represents one destination change to report
type Change struct {
	Type   ChangeType
	Path   string
	Detail string
}

// 📢 Reporter prints per-file feedback. In quiet mode everything but warnings
// is dropped; in dry-run mode the verbs switch to the conditional so the
// output reads as a plan rather than a result.
type Reporter struct {
	log    zerolog.Logger
	quiet  bool
	dryRun bool
}

// 🎯 NewReporter creates a reporter bound to the context logger
func NewReporter(ctx context.Context, quiet, dryRun bool) *Reporter {
	return &Reporter{
		log:    *zerolog.Ctx(ctx),
		quiet:  quiet,
		dryRun: dryRun,
	}
}

// 📝 LogChange prints a change with the matching pterm prefix
func (r *Reporter) LogChange(change Change) {
	r.log.Debug().
		Int("type", int(change.Type)).
		Str("path", change.Path).
		Str("detail", change.Detail).
		Msg("destination change")

	if r.quiet {
		return
	}

	var prefix, action string
	var printer pterm.PrefixPrinter
	switch change.Type {
	case TrackCopied:
		prefix = "✨"
		action = r.verb("Copied", "Would copy")
		printer = pterm.Success
	case TrackDeleted:
		prefix = "🗑️"
		action = r.verb("Deleted", "Would delete")
		printer = pterm.Info
	case TrackKept:
		prefix = "📌"
		action = "Kept (append mode)"
		printer = pterm.Info
	case TrackMoved:
		prefix = "🔀"
		action = r.verb("Moved", "Would move")
		printer = pterm.Success
	case TrackSkipped:
		prefix = "⏭️"
		action = "Skipped"
		printer = pterm.Info
	case FolderCreated:
		prefix = "📁"
		action = r.verb("Created folder", "Would create folder")
		printer = pterm.Info
	case FolderRemoved:
		prefix = "📂"
		action = r.verb("Removed empty folder", "Would remove empty folder")
		printer = pterm.Info
	}

	p := printer.WithPrefix(pterm.Prefix{Text: prefix})
	if change.Detail != "" {
		p.Printfln("%s %s (%s)", action, change.Path, change.Detail)
	} else {
		p.Printfln("%s %s", action, change.Path)
	}
}

// Copied reports one copied track with its position in the batch
func (r *Reporter) Copied(name string, done, total int) {
	r.LogChange(Change{Type: TrackCopied, Path: name, Detail: fmt.Sprintf("track %d/%d", done, total)})
}

// Deleted reports a destination file removed by sync mode
func (r *Reporter) Deleted(name string) {
	r.LogChange(Change{Type: TrackDeleted, Path: name})
}

// Kept reports a deletion candidate that append mode leaves in place
func (r *Reporter) Kept(name string) {
	r.LogChange(Change{Type: TrackKept, Path: name})
}

// Moved reports one reshuffle move
func (r *Reporter) Moved(from, to string) {
	r.LogChange(Change{Type: TrackMoved, Path: from, Detail: "to " + to})
}

// Skipped reports a playlist entry that was not processed
func (r *Reporter) Skipped(name, reason string) {
	r.LogChange(Change{Type: TrackSkipped, Path: name, Detail: reason})
}

// FolderCreated reports a numbered folder created during allocation
func (r *Reporter) FolderCreated(path string) {
	r.LogChange(Change{Type: FolderCreated, Path: path})
}

// FolderRemoved reports a numbered folder removed after deletion sync
func (r *Reporter) FolderRemoved(path string) {
	r.LogChange(Change{Type: FolderRemoved, Path: path})
}

// Planned implements fsops.PlanRecorder for dry runs
func (r *Reporter) Planned(op, src, dst string) {
	r.log.Debug().Str("op", op).Str("src", src).Str("dst", dst).Msg("dry run, mutation suppressed")
}

// Warnf prints a warning regardless of quiet mode
func (r *Reporter) Warnf(format string, args ...any) {
	r.log.Warn().Msg(fmt.Sprintf(format, args...))
	pterm.Warning.Printfln(format, args...)
}

// Summaryf prints a closing summary line
func (r *Reporter) Summaryf(format string, args ...any) {
	if r.quiet {
		return
	}
	pterm.Info.WithPrefix(pterm.Prefix{Text: "🏁"}).Printfln(format, args...)
}

func (r *Reporter) verb(real, dry string) string {
	if r.dryRun {
		return dry
	}
	return real
}
