// Package renamer re-applies title repair to the artifact names of an
// existing output directory. It only ever renames: file bytes and the record
// log are left untouched.
package renamer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Caia-Tech/caia-legal-corpus/internal/storage"
	"github.com/Caia-Tech/caia-legal-corpus/pkg/filename"
	"github.com/Caia-Tech/caia-legal-corpus/pkg/logging"
	"github.com/Caia-Tech/caia-legal-corpus/pkg/titlerepair"
	"github.com/rs/zerolog"
)

// Options controls a renamer pass.
type Options struct {
	DryRun          bool
	SkipOnCollision bool
}

// Action is what the renamer decided for one file.
type Action int

const (
	ActionRename Action = iota
	ActionStripBidi
	ActionSkipCollision
)

func (a Action) String() string {
	switch a {
	case ActionRename:
		return "rename"
	case ActionStripBidi:
		return "strip-bidi"
	case ActionSkipCollision:
		return "skip-collision"
	default:
		return "unknown"
	}
}

// Change is one planned or applied rename.
type Change struct {
	Dir    string
	From   string
	To     string
	Action Action
	Err    error
}

// Report summarizes a pass over one or more directories.
type Report struct {
	Applied int
	Pending int
	Skipped int
	Failed  int
	Changes []Change
}

// Renamer runs the rename-mode repair pipeline over artifact names.
type Renamer struct {
	opts     Options
	repairer *titlerepair.Repairer
}

// New creates a renamer.
func New(opts Options) *Renamer {
	return &Renamer{
		opts:     opts,
		repairer: titlerepair.NewRepairer(titlerepair.ModeRename),
	}
}

// Run processes the files/ and texts/ directories under root.
func (r *Renamer) Run(root string) (*Report, error) {
	report := &Report{}
	for _, sub := range []string{storage.FilesDir, storage.TextsDir} {
		if err := r.RenameDir(filepath.Join(root, sub), report); err != nil {
			return report, err
		}
	}
	return report, nil
}

// RenameDir processes a single directory and adds its changes to report.
// A missing directory is not an error.
func (r *Renamer) RenameDir(dir string, report *Report) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}

	logger := logging.GetRenameLogger(dir, r.opts.DryRun)
	state := newDirState(dir)

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		target, action := r.plan(name)
		if target == name {
			continue
		}

		if state.exists(target) {
			if r.opts.SkipOnCollision {
				r.record(logger, report, Change{Dir: dir, From: name, To: target, Action: ActionSkipCollision})
				continue
			}
			target = filename.ResolveRename(target, state.exists)
		}

		change := Change{Dir: dir, From: name, To: target, Action: action}
		if !r.opts.DryRun {
			change.Err = os.Rename(filepath.Join(dir, name), filepath.Join(dir, target))
		}
		if change.Err == nil {
			state.move(name, target)
		}
		r.record(logger, report, change)
	}
	return nil
}

// plan returns the desired name for an existing file. Names outside the
// artifact grammar only lose their bidi controls.
func (r *Renamer) plan(name string) (string, Action) {
	parsed, ok := filename.Parse(name)
	if !ok {
		return titlerepair.StripBidiControls(name), ActionStripBidi
	}
	title := filename.SanitizeForRename(r.repairer.Repair(parsed.Title))
	if title == "" {
		return name, ActionRename
	}
	parsed.Title = title
	return parsed.String(), ActionRename
}

func (r *Renamer) record(logger zerolog.Logger, report *Report, c Change) {
	report.Changes = append(report.Changes, c)

	switch {
	case c.Action == ActionSkipCollision:
		report.Skipped++
		logger.Info().Str("event", c.Action.String()).Str("from", c.From).Str("to", c.To).Msg("Target exists, skipping")
	case c.Err != nil:
		report.Failed++
		logger.Error().Err(c.Err).Str("event", c.Action.String()).Str("from", c.From).Str("to", c.To).Msg("Rename failed")
	case r.opts.DryRun:
		report.Pending++
		logger.Info().Str("event", c.Action.String()).Str("from", c.From).Str("to", c.To).Msg("Would rename")
	default:
		report.Applied++
		logger.Info().Str("event", c.Action.String()).Str("from", c.From).Str("to", c.To).Msg("Renamed")
	}
}

// dirState answers collision checks against the directory as it will look
// after the changes made or planned so far.
type dirState struct {
	dir     string
	claimed map[string]bool
	vacated map[string]bool
}

func newDirState(dir string) *dirState {
	return &dirState{dir: dir, claimed: make(map[string]bool), vacated: make(map[string]bool)}
}

func (s *dirState) exists(name string) bool {
	if s.claimed[name] {
		return true
	}
	if s.vacated[name] {
		return false
	}
	_, err := os.Lstat(filepath.Join(s.dir, name))
	return err == nil
}

func (s *dirState) move(from, to string) {
	delete(s.claimed, from)
	s.vacated[from] = true
	delete(s.vacated, to)
	s.claimed[to] = true
}
