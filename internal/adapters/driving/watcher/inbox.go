package watcher

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// DefaultSettle is how long a file must go without writes before it is uploaded.
const DefaultSettle = 500 * time.Millisecond

// Result reports the outcome of one upload attempt.
type Result struct {
	Path     string
	Document *domain.Document
	Err      error
}

// Inbox uploads supported files that appear in a directory.
type Inbox struct {
	watcher   *Watcher
	documents driving.DocumentService
	ownerID   int64
	settle    time.Duration
	scan      bool
}

// InboxOption configures an Inbox.
type InboxOption func(*Inbox)

// WithSettle sets the quiet period before a changed file is uploaded.
func WithSettle(d time.Duration) InboxOption {
	return func(i *Inbox) {
		if d > 0 {
			i.settle = d
		}
	}
}

// WithInitialScan uploads files already present when Run starts.
func WithInitialScan(scan bool) InboxOption {
	return func(i *Inbox) {
		i.scan = scan
	}
}

// NewInbox creates an inbox over dir that uploads as ownerID.
func NewInbox(dir string, documents driving.DocumentService, ownerID int64, opts ...InboxOption) *Inbox {
	i := &Inbox{
		watcher:   New(dir),
		documents: documents,
		ownerID:   ownerID,
		settle:    DefaultSettle,
		scan:      true,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Run watches the directory until ctx is done, uploading each supported file
// once it has settled. report is called for every upload attempt.
func (i *Inbox) Run(ctx context.Context, report func(Result)) error {
	if report == nil {
		report = func(Result) {}
	}

	changes, err := i.watcher.Watch(ctx)
	if err != nil {
		return err
	}
	defer i.watcher.Close()

	if i.scan {
		for _, path := range i.existing() {
			report(i.upload(ctx, path))
		}
	}

	ready := make(chan string)
	done := make(chan struct{})
	pending := make(map[string]*time.Timer)
	defer func() {
		close(done)
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			if !i.supported(change.Path) {
				logger.Debug("inbox: ignoring %s", change.Path)
				continue
			}
			if t, ok := pending[change.Path]; ok {
				t.Reset(i.settle)
				continue
			}
			path := change.Path
			pending[path] = time.AfterFunc(i.settle, func() {
				select {
				case ready <- path:
				case <-done:
				}
			})
		case path := <-ready:
			delete(pending, path)
			report(i.upload(ctx, path))
		}
	}
}

func (i *Inbox) upload(ctx context.Context, path string) Result {
	doc, err := i.documents.Upload(ctx, path, i.ownerID)
	if err != nil {
		logger.Warn("inbox: upload %s: %v", path, err)
	} else {
		logger.Info("inbox: uploaded %s as doc=%d", path, doc.ID)
	}
	return Result{Path: path, Document: doc, Err: err}
}

// existing returns the supported, visible files already in the directory, sorted.
func (i *Inbox) existing() []string {
	entries, err := os.ReadDir(i.watcher.Root())
	if err != nil {
		logger.Warn("inbox: scan %s: %v", i.watcher.Root(), err)
		return nil
	}

	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(i.watcher.Root(), e.Name())
		if i.supported(path) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

func (i *Inbox) supported(path string) bool {
	return slices.Contains(i.documents.SupportedExtensions(), strings.ToLower(filepath.Ext(path)))
}
