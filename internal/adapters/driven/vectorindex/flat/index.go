package flat

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// FileName is the index database file inside the index directory.
const FileName = "index.db"

const fingerprintKey = "fingerprint"

//go:embed schema.sql
var schema string

// Index is a flat cosine-similarity index.
type Index struct {
	path string

	mu sync.Mutex // serialises writers and guards db
	db *sql.DB

	loadGroup singleflight.Group
	loaded    atomic.Bool
	snap      atomic.Pointer[snapshot]
}

// snapshot is an immutable view of the persisted index.
type snapshot struct {
	fingerprint string
	entries     []domain.IndexEntry
	norms       []float64
	// hidden maps a document ID to the highest tombstoned seq.
	hidden map[int64]int64
}

func (s *snapshot) visible(e domain.IndexEntry) bool {
	maxSeq, ok := s.hidden[e.Metadata.DocumentID]
	return !ok || e.Seq > maxSeq
}

// New creates an index stored under dir. Nothing is read until Load or Add.
func New(dir string) *Index {
	return &Index{path: filepath.Join(dir, FileName)}
}

// Path returns the database file path.
func (idx *Index) Path() string {
	return idx.path
}

// Load reads the persisted index once. Later calls reuse the loaded snapshot.
// A failed load is not remembered, so the next call retries.
//
// The shared load is detached from ctx: a caller whose ctx ends stops
// waiting, but the load carries on for the callers still waiting on it.
func (idx *Index) Load(ctx context.Context) (bool, error) {
	if idx.loaded.Load() {
		return idx.exists(), nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := idx.loadGroup.DoChan("load", func() (any, error) {
		if idx.loaded.Load() {
			return nil, nil
		}
		if err := idx.load(loadCtx); err != nil {
			return nil, err
		}
		idx.loaded.Store(true)
		return nil, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return false, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, res.Err)
		}
		return idx.exists(), nil
	case <-ctx.Done():
		return false, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, ctx.Err())
	}
}

func (idx *Index) exists() bool {
	s := idx.snap.Load()
	return s != nil && s.fingerprint != ""
}

func (idx *Index) load(ctx context.Context) error {
	if _, err := os.Stat(idx.path); errors.Is(err, os.ErrNotExist) {
		logger.Debug("index: no index at %s", idx.path)
		return nil
	} else if err != nil {
		return fmt.Errorf("stat index: %w", err)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if err := idx.openLocked(); err != nil {
		return err
	}
	s, err := readSnapshot(ctx, idx.db)
	if err != nil {
		return err
	}
	idx.snap.Store(s)
	logger.Debug("index: loaded %d entries (%s)", len(s.entries), s.fingerprint)
	return nil
}

// openLocked opens (and creates) the database. Callers hold mu.
func (idx *Index) openLocked() error {
	if idx.db != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(idx.path), 0700); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite", idx.path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return fmt.Errorf("creating index schema: %w", err)
	}
	idx.db = db
	return nil
}

func readSnapshot(ctx context.Context, db *sql.DB) (*snapshot, error) {
	s := &snapshot{hidden: make(map[int64]int64)}

	err := db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", fingerprintKey).Scan(&s.fingerprint)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reading fingerprint: %w", err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT seq, document_id, filename, text, vector
		FROM entries ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	dims := -1
	for rows.Next() {
		var e domain.IndexEntry
		var blob []byte
		if err := rows.Scan(&e.Seq, &e.Metadata.DocumentID, &e.Metadata.Filename, &e.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		if len(blob)%4 != 0 {
			return nil, fmt.Errorf("entry %d: corrupt vector of %d bytes", e.Seq, len(blob))
		}
		e.Vector = bytesToFloat32Slice(blob)
		if dims >= 0 && len(e.Vector) != dims {
			return nil, fmt.Errorf("entry %d: %d dimensions, index has %d", e.Seq, len(e.Vector), dims)
		}
		dims = len(e.Vector)
		s.entries = append(s.entries, e)
		s.norms = append(s.norms, norm(e.Vector))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	tombs, err := db.QueryContext(ctx, "SELECT document_id, MAX(max_seq) FROM tombstones GROUP BY document_id")
	if err != nil {
		return nil, fmt.Errorf("querying tombstones: %w", err)
	}
	defer tombs.Close()
	for tombs.Next() {
		var docID, maxSeq int64
		if err := tombs.Scan(&docID, &maxSeq); err != nil {
			return nil, fmt.Errorf("scanning tombstone: %w", err)
		}
		s.hidden[docID] = maxSeq
	}
	if err := tombs.Err(); err != nil {
		return nil, fmt.Errorf("iterating tombstones: %w", err)
	}

	return s, nil
}

// Add persists entries and then publishes them to readers.
// If the write fails nothing is published and the batch is dropped.
func (idx *Index) Add(ctx context.Context, fingerprint string, entries []domain.IndexEntry) error {
	if fingerprint == "" {
		return fmt.Errorf("%w: empty embedding fingerprint", domain.ErrInvalidInput)
	}
	if _, err := idx.Load(ctx); err != nil {
		return err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	cur := idx.current()
	if cur.fingerprint != "" && cur.fingerprint != fingerprint {
		return fmt.Errorf("%w: index built with %s, got %s", domain.ErrEmbeddingMismatch, cur.fingerprint, fingerprint)
	}
	if err := checkDimensions(cur, entries); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	added, err := idx.persistLocked(ctx, cur.fingerprint == "", fingerprint, entries)
	if err != nil {
		logger.Warn("index: batch of %d entries not persisted and dropped: %v", len(entries), err)
		return fmt.Errorf("%w: %w", domain.ErrPersist, err)
	}

	next := &snapshot{
		fingerprint: fingerprint,
		entries:     make([]domain.IndexEntry, 0, len(cur.entries)+len(added)),
		norms:       make([]float64, 0, len(cur.norms)+len(added)),
		hidden:      cur.hidden,
	}
	next.entries = append(append(next.entries, cur.entries...), added...)
	next.norms = append(next.norms, cur.norms...)
	for _, e := range added {
		next.norms = append(next.norms, norm(e.Vector))
	}
	idx.snap.Store(next)
	return nil
}

func checkDimensions(cur *snapshot, entries []domain.IndexEntry) error {
	want := -1
	if len(cur.entries) > 0 {
		want = len(cur.entries[0].Vector)
	}
	for i, e := range entries {
		if len(e.Vector) == 0 {
			return fmt.Errorf("%w: entry %d has no vector", domain.ErrInvalidInput, i)
		}
		if want < 0 {
			want = len(e.Vector)
		}
		if len(e.Vector) != want {
			return fmt.Errorf("%w: entry %d has %d dimensions, want %d",
				domain.ErrEmbeddingMismatch, i, len(e.Vector), want)
		}
	}
	return nil
}

// persistLocked writes the batch in a single transaction and returns the
// entries with their assigned sequence numbers. Callers hold mu.
func (idx *Index) persistLocked(
	ctx context.Context,
	create bool,
	fingerprint string,
	entries []domain.IndexEntry,
) ([]domain.IndexEntry, error) {
	if err := idx.openLocked(); err != nil {
		return nil, err
	}

	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if create {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
			fingerprintKey, fingerprint); err != nil {
			return nil, fmt.Errorf("saving fingerprint: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (document_id, filename, text, vector)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	added := make([]domain.IndexEntry, len(entries))
	for i, e := range entries {
		res, err := stmt.ExecContext(ctx, e.Metadata.DocumentID, e.Metadata.Filename, e.Text, float32SliceToBytes(e.Vector))
		if err != nil {
			return nil, fmt.Errorf("saving entry: %w", err)
		}
		seq, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("reading entry seq: %w", err)
		}
		e.Seq = seq
		e.Vector = append([]float32(nil), e.Vector...)
		added[i] = e
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return added, nil
}

// current returns the published snapshot, or an empty one.
func (idx *Index) current() *snapshot {
	if s := idx.snap.Load(); s != nil {
		return s
	}
	return &snapshot{hidden: map[int64]int64{}}
}

// Search scores every visible entry and returns the best k.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]domain.SearchHit, error) {
	s := idx.current()
	hits := []domain.SearchHit{}
	if k <= 0 || len(s.entries) == 0 {
		return hits, nil
	}
	if len(query) != len(s.entries[0].Vector) {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrEmbeddingMismatch, len(query), len(s.entries[0].Vector))
	}

	type scored struct {
		i     int
		score float64
	}
	qn := norm(query)
	candidates := make([]scored, 0, len(s.entries))
	for i, e := range s.entries {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if !s.visible(e) {
			continue
		}
		candidates = append(candidates, scored{i: i, score: cosine(query, qn, e.Vector, s.norms[i])})
	}

	// Entries are in seq order, so a stable sort breaks ties by insertion order.
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})

	for _, c := range candidates[:min(k, len(candidates))] {
		e := s.entries[c.i]
		hits = append(hits, domain.SearchHit{Text: e.Text, Metadata: e.Metadata, Score: c.score})
	}
	return hits, nil
}

// Tombstone hides the document's current entries from search. Entries added
// for the same document afterwards remain visible.
func (idx *Index) Tombstone(ctx context.Context, documentID int64) error {
	if _, err := idx.Load(ctx); err != nil {
		return err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	cur := idx.current()
	var maxSeq int64
	for _, e := range cur.entries {
		if e.Metadata.DocumentID == documentID && e.Seq > maxSeq {
			maxSeq = e.Seq
		}
	}
	if maxSeq == 0 {
		return nil
	}
	if err := idx.openLocked(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersist, err)
	}

	if _, err := idx.db.ExecContext(ctx,
		"INSERT INTO tombstones (document_id, max_seq, created_at) VALUES (?, ?, ?)",
		documentID, maxSeq, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("%w: saving tombstone: %w", domain.ErrPersist, err)
	}

	hidden := make(map[int64]int64, len(cur.hidden)+1)
	for k, v := range cur.hidden {
		hidden[k] = v
	}
	hidden[documentID] = maxSeq
	idx.snap.Store(&snapshot{
		fingerprint: cur.fingerprint,
		entries:     cur.entries,
		norms:       cur.norms,
		hidden:      hidden,
	})
	return nil
}

// Len returns the number of entries visible to Search.
func (idx *Index) Len() int {
	s := idx.current()
	n := 0
	for _, e := range s.entries {
		if s.visible(e) {
			n++
		}
	}
	return n
}

// Fingerprint returns the embedding space of the index.
func (idx *Index) Fingerprint() string {
	return idx.current().fingerprint
}

// Close closes the database. The published snapshot stays readable.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.db == nil {
		return nil
	}
	err := idx.db.Close()
	idx.db = nil
	return err
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func cosine(q []float32, qn float64, v []float32, vn float64) float64 {
	if qn == 0 || vn == 0 {
		return 0
	}
	var dot float64
	for i := range q {
		dot += float64(q[i]) * float64(v[i])
	}
	return dot / (qn * vn)
}

// float32SliceToBytes encodes vectors as little-endian float32 so round trips are bit-exact.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
