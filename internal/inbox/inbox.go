// Package inbox imports Markdown files dropped into a directory as notes.
// Imported files are moved to imported/, rejected ones to failed/.
package inbox

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sohanasz/viote/internal/models"
	"github.com/sohanasz/viote/internal/storage"
)

// Subdirectories of the inbox root that are never scanned.
const (
	ImportedDir = "imported"
	FailedDir   = "failed"
)

const debounce = 200 * time.Millisecond

// Importer turns a Markdown document into a stored note.
// noteservice.Service implements it.
type Importer interface {
	ImportMarkdown(ctx context.Context, projectID string, data []byte, fallbackTitle string) (*models.Note, error)
}

// Inbox watches one directory.
type Inbox struct {
	fs        storage.Provider
	root      string
	importer  Importer
	projectID string
	logger    *slog.Logger
	now       func() time.Time
}

// New returns an inbox over files, whose files live under root on disk.
// projectID is the default project for files without a "project"
// frontmatter field.
func New(files storage.Provider, root string, importer Importer, projectID string, logger *slog.Logger) *Inbox {
	return &Inbox{
		fs:        files,
		root:      root,
		importer:  importer,
		projectID: projectID,
		logger:    logger,
		now:       time.Now,
	}
}

// Sync imports every pending file. It returns the number imported.
func (in *Inbox) Sync(ctx context.Context) (int, error) {
	metas, err := in.fs.List("", ".md")
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range metas {
		if skipped(m.Path) {
			continue
		}
		if in.importFile(ctx, m.Path) {
			n++
		}
	}
	return n, nil
}

// Watch imports files as they appear until ctx is cancelled. Writes to the
// same file are debounced so a file is imported once it stops changing.
func (in *Inbox) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, in.root); err != nil {
		return err
	}

	in.logger.Info("inbox: watching", slog.String("root", in.root))

	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func(rel string) {
		pending[rel] = struct{}{}
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			in.logger.Info("inbox: stopped")
			return nil

		case <-timerCh:
			for rel := range pending {
				in.importFile(ctx, rel)
				delete(pending, rel)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			rel, relErr := filepath.Rel(in.root, ev.Name)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if skipped(rel) {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if isDir(ev.Name) {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						in.logger.Warn("inbox: add new dir failed",
							slog.String("path", rel),
							slog.String("error", addErr.Error()))
					}
					in.scheduleDir(ev.Name, schedule)
					continue
				}
			}

			if strings.HasSuffix(rel, ".md") {
				schedule(rel)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			in.logger.Error("inbox: watch error", slog.String("error", watchErr.Error()))
		}
	}
}

// importFile imports one file and moves it out of the way. It reports
// whether the import succeeded.
func (in *Inbox) importFile(ctx context.Context, rel string) bool {
	data, err := in.fs.Read(rel)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			in.logger.Warn("inbox: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		}
		return false
	}

	title := strings.TrimSuffix(path.Base(rel), ".md")
	note, err := in.importer.ImportMarkdown(ctx, in.projectID, data, title)
	if err != nil {
		in.logger.Warn("inbox: import failed", slog.String("path", rel), slog.String("error", err.Error()))
		in.move(rel, FailedDir)
		return false
	}

	in.logger.Info("inbox: imported",
		slog.String("path", rel),
		slog.String("project_id", note.ProjectID),
		slog.String("note_id", note.ID))
	in.move(rel, ImportedDir)
	return true
}

func (in *Inbox) move(rel, dir string) {
	stamp := in.now().UTC().Format("20060102T150405")
	dst := path.Join(dir, stamp+"-"+strings.ReplaceAll(rel, "/", "_"))
	if err := in.fs.Move(rel, dst); err != nil {
		in.logger.Error("inbox: move failed",
			slog.String("path", rel),
			slog.String("to", dst),
			slog.String("error", err.Error()))
	}
}

// scheduleDir queues the Markdown files already present in a new directory.
func (in *Inbox) scheduleDir(dir string, schedule func(string)) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(p, ".md") {
			return nil
		}
		if rel, relErr := filepath.Rel(in.root, p); relErr == nil {
			schedule(filepath.ToSlash(rel))
		}
		return nil
	})
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

func skipped(rel string) bool {
	top, _, _ := strings.Cut(rel, "/")
	return top == ImportedDir || top == FailedDir || strings.HasPrefix(path.Base(rel), ".")
}

// addDirsRecursive adds root and its subdirectories, except the output
// directories, to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); p != root && (name == ImportedDir || name == FailedDir) {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}
