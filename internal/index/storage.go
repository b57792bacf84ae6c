package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/cortesi/ra/internal/analyzer"
	"github.com/cortesi/ra/pkg/types"
)

// SQLiteStore implements Store over a SQLite database. The inverted index
// is a plain postings table populated from an Analyzer's output, rather
// than SQLite's own FTS5 tokenizer, since scoring and term matching must
// use the same multi-language stemming pipeline at index and query time.
type SQLiteStore struct {
	db       *sql.DB
	analyzer *analyzer.Analyzer
}

// Open opens (creating if needed) a SQLite-backed store at dbPath, applying
// migrations, using the text analyzer a for tokenizing indexed fields.
func Open(dbPath string, a *analyzer.Analyzer) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return &SQLiteStore{db: db, analyzer: a}, nil
}

func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, analyzer: s.analyzer}, nil
}

// querier is implemented by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) querier() querier { return s.db }

type sqliteTx struct {
	tx       *sql.Tx
	analyzer *analyzer.Analyzer
}

func (t *sqliteTx) querier() querier { return t.tx }
func (t *sqliteTx) Commit() error    { return t.tx.Commit() }
func (t *sqliteTx) Rollback() error  { return t.tx.Rollback() }

func (t *sqliteTx) BeginTx(context.Context) (Tx, error) {
	return nil, fmt.Errorf("nested transactions are not supported")
}
func (t *sqliteTx) Close() error { return nil }

// backend is the common implementation shared by SQLiteStore and sqliteTx,
// so both satisfy Store with identical logic over different queriers.
type backend struct {
	q querier
	a *analyzer.Analyzer
}

func (s *SQLiteStore) back() backend { return backend{q: s.querier(), a: s.analyzer} }
func (t *sqliteTx) back() backend    { return backend{q: t.querier(), a: t.analyzer} }

func (s *SQLiteStore) AddChunks(ctx context.Context, docID string, chunks []types.Chunk, mtime int64) error {
	return s.back().addChunks(ctx, docID, chunks, mtime)
}
func (t *sqliteTx) AddChunks(ctx context.Context, docID string, chunks []types.Chunk, mtime int64) error {
	return t.back().addChunks(ctx, docID, chunks, mtime)
}

func (b backend) addChunks(ctx context.Context, docID string, chunks []types.Chunk, mtime int64) error {
	if err := b.removeDoc(ctx, docID); err != nil {
		return err
	}
	var contentHash [32]byte
	for _, c := range chunks {
		if err := b.upsertChunk(ctx, c); err != nil {
			return fmt.Errorf("upsert chunk %s: %w", c.ID, err)
		}
		contentHash = c.ContentHash
	}
	_, err := b.q.ExecContext(ctx,
		`INSERT INTO manifest (doc_id, mtime, content_hash) VALUES (?, ?, ?)
		 ON CONFLICT(doc_id) DO UPDATE SET mtime=excluded.mtime, content_hash=excluded.content_hash`,
		docID, mtime, contentHash[:])
	if err != nil {
		return fmt.Errorf("update manifest: %w", err)
	}
	return nil
}

func (b backend) upsertChunk(ctx context.Context, c types.Chunk) error {
	tags := strings.Join(c.Tags, ",")
	_, err := b.q.ExecContext(ctx,
		`INSERT INTO chunks (id, doc_id, parent_id, tree, path, kind, depth, position, title, slug,
		   byte_start, byte_end, sibling_count, breadcrumb, tags, content_hash)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.DocID, nullable(c.ParentID), c.Tree, c.Path, string(c.Kind), c.Depth, c.Position,
		c.Title, c.Slug, c.ByteStart, c.ByteEnd, c.SiblingCount, c.Breadcrumb, tags, c.ContentHash[:])
	if err != nil {
		return err
	}

	fields := map[Field]string{
		FieldTitle:          c.Title,
		FieldTags:           tags,
		FieldPath:           c.Path,
		FieldPathComponents: pathComponentText(c.Path),
	}
	for field, text := range fields {
		if err := b.indexField(ctx, c.ID, field, text); err != nil {
			return err
		}
	}
	return nil
}

// pathComponentText rewrites a path's "/" and "." separators as spaces so
// the ordinary analyzer tokenizer splits it into path components.
func pathComponentText(path string) string {
	r := strings.NewReplacer("/", " ", ".", " ")
	return r.Replace(path)
}

func (b backend) indexField(ctx context.Context, chunkID string, field Field, text string) error {
	if text == "" {
		return nil
	}
	tokens := b.a.Analyze(text)
	for pos, tok := range tokens {
		if _, err := b.q.ExecContext(ctx,
			"INSERT INTO postings (field, term, chunk_id, position) VALUES (?, ?, ?, ?)",
			string(field), tok, chunkID, pos); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) IndexBody(ctx context.Context, chunkID, body string) error {
	return s.back().indexBody(ctx, chunkID, body)
}
func (t *sqliteTx) IndexBody(ctx context.Context, chunkID, body string) error {
	return t.back().indexBody(ctx, chunkID, body)
}

// indexBody stores a chunk's reconstructed body, both verbatim (for
// snippets) and tokenized into the body field's postings.
func (b backend) indexBody(ctx context.Context, chunkID, body string) error {
	if _, err := b.q.ExecContext(ctx,
		"INSERT INTO bodies (chunk_id, body) VALUES (?, ?) ON CONFLICT(chunk_id) DO UPDATE SET body=excluded.body",
		chunkID, body); err != nil {
		return err
	}
	return b.indexField(ctx, chunkID, FieldBody, body)
}

func (s *SQLiteStore) RemoveDoc(ctx context.Context, docID string) error {
	return s.back().removeDoc(ctx, docID)
}
func (t *sqliteTx) RemoveDoc(ctx context.Context, docID string) error {
	return t.back().removeDoc(ctx, docID)
}

func (b backend) removeDoc(ctx context.Context, docID string) error {
	rows, err := b.q.QueryContext(ctx, "SELECT id FROM chunks WHERE doc_id = ?", docID)
	if err != nil {
		return err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	_ = rows.Close()

	for _, id := range ids {
		if _, err := b.q.ExecContext(ctx, "DELETE FROM postings WHERE chunk_id = ?", id); err != nil {
			return err
		}
		if _, err := b.q.ExecContext(ctx, "DELETE FROM bodies WHERE chunk_id = ?", id); err != nil {
			return err
		}
	}
	if _, err := b.q.ExecContext(ctx, "DELETE FROM chunks WHERE doc_id = ?", docID); err != nil {
		return err
	}
	if _, err := b.q.ExecContext(ctx, "DELETE FROM manifest WHERE doc_id = ?", docID); err != nil {
		return err
	}
	return nil
}

func (s *SQLiteStore) Lookup(ctx context.Context, field Field, term string) ([]Posting, error) {
	return lookup(ctx, s.querier(), field, term)
}
func (t *sqliteTx) Lookup(ctx context.Context, field Field, term string) ([]Posting, error) {
	return lookup(ctx, t.querier(), field, term)
}

func lookup(ctx context.Context, q querier, field Field, term string) ([]Posting, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT chunk_id, position FROM postings WHERE field = ? AND term = ?", string(field), term)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Posting
	for rows.Next() {
		var p Posting
		if err := rows.Scan(&p.ChunkID, &p.Position); err != nil {
			return nil, err
		}
		p.Field = field
		p.Term = term
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) LookupExact(ctx context.Context, field Field, value string) ([]types.Chunk, error) {
	return lookupExact(ctx, s.querier(), field, value)
}
func (t *sqliteTx) LookupExact(ctx context.Context, field Field, value string) ([]types.Chunk, error) {
	return lookupExact(ctx, t.querier(), field, value)
}

func lookupExact(ctx context.Context, q querier, field Field, value string) ([]types.Chunk, error) {
	if field != FieldTree {
		return nil, fmt.Errorf("field %q does not support exact lookup", field)
	}
	rows, err := q.QueryContext(ctx, fmt.Sprintf("SELECT %s FROM chunks WHERE tree = ?", chunkColumns), value) //nolint:gosec
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChunks(rows)
}

func (s *SQLiteStore) Vocabulary(ctx context.Context, field Field) ([]string, error) {
	return vocabulary(ctx, s.querier(), field)
}
func (t *sqliteTx) Vocabulary(ctx context.Context, field Field) ([]string, error) {
	return vocabulary(ctx, t.querier(), field)
}

func vocabulary(ctx context.Context, q querier, field Field) ([]string, error) {
	rows, err := q.QueryContext(ctx, "SELECT DISTINCT term FROM postings WHERE field = ?", string(field))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var term string
		if err := rows.Scan(&term); err != nil {
			return nil, err
		}
		out = append(out, term)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DocFreq(ctx context.Context, field Field, term string) (int, error) {
	return docFreq(ctx, s.querier(), field, term)
}
func (t *sqliteTx) DocFreq(ctx context.Context, field Field, term string) (int, error) {
	return docFreq(ctx, t.querier(), field, term)
}

func docFreq(ctx context.Context, q querier, field Field, term string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT chunk_id) FROM postings WHERE field = ? AND term = ?",
		string(field), term).Scan(&n)
	return n, err
}

func (s *SQLiteStore) NumDocs(ctx context.Context) (int, error) { return numDocs(ctx, s.querier()) }
func (t *sqliteTx) NumDocs(ctx context.Context) (int, error)    { return numDocs(ctx, t.querier()) }

func numDocs(ctx context.Context, q querier) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n)
	return n, err
}

func (s *SQLiteStore) FieldLength(ctx context.Context, field Field, chunkID string) (int, error) {
	return fieldLength(ctx, s.querier(), field, chunkID)
}
func (t *sqliteTx) FieldLength(ctx context.Context, field Field, chunkID string) (int, error) {
	return fieldLength(ctx, t.querier(), field, chunkID)
}

func fieldLength(ctx context.Context, q querier, field Field, chunkID string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM postings WHERE field = ? AND chunk_id = ?", string(field), chunkID).Scan(&n)
	return n, err
}

func (s *SQLiteStore) AvgFieldLength(ctx context.Context, field Field) (float64, error) {
	return avgFieldLength(ctx, s.querier(), field)
}
func (t *sqliteTx) AvgFieldLength(ctx context.Context, field Field) (float64, error) {
	return avgFieldLength(ctx, t.querier(), field)
}

func avgFieldLength(ctx context.Context, q querier, field Field) (float64, error) {
	var avg sql.NullFloat64
	err := q.QueryRowContext(ctx, `
		SELECT AVG(cnt) FROM (
			SELECT COUNT(*) AS cnt FROM postings WHERE field = ? GROUP BY chunk_id
		)`, string(field)).Scan(&avg)
	if err != nil {
		return 0, err
	}
	return avg.Float64, nil
}

const chunkColumns = "id, doc_id, parent_id, tree, path, kind, depth, position, title, slug, " +
	"byte_start, byte_end, sibling_count, breadcrumb, tags, content_hash"

func scanChunks(rows *sql.Rows) ([]types.Chunk, error) {
	var out []types.Chunk
	for rows.Next() {
		c, err := scanChunkRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanChunkRow(row interface {
	Scan(dest ...any) error
}) (types.Chunk, error) {
	var c types.Chunk
	var parentID sql.NullString
	var kind, tags string
	var hash []byte
	err := row.Scan(&c.ID, &c.DocID, &parentID, &c.Tree, &c.Path, &kind, &c.Depth, &c.Position,
		&c.Title, &c.Slug, &c.ByteStart, &c.ByteEnd, &c.SiblingCount, &c.Breadcrumb, &tags, &hash)
	if err != nil {
		return c, err
	}
	c.ParentID = parentID.String
	c.Kind = types.NodeKind(kind)
	if tags != "" {
		c.Tags = strings.Split(tags, ",")
	}
	copy(c.ContentHash[:], hash)
	return c, nil
}

func (s *SQLiteStore) GetChunk(ctx context.Context, id string) (*types.Chunk, error) {
	return getChunk(ctx, s.querier(), id)
}
func (t *sqliteTx) GetChunk(ctx context.Context, id string) (*types.Chunk, error) {
	return getChunk(ctx, t.querier(), id)
}

func getChunk(ctx context.Context, q querier, id string) (*types.Chunk, error) {
	row := q.QueryRowContext(ctx, fmt.Sprintf("SELECT %s FROM chunks WHERE id = ?", chunkColumns), id) //nolint:gosec
	c, err := scanChunkRow(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("chunk %s: %w", id, types.ErrUnknownID)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLiteStore) GetBody(ctx context.Context, id string) (string, error) {
	return getBody(ctx, s.querier(), id)
}
func (t *sqliteTx) GetBody(ctx context.Context, id string) (string, error) {
	return getBody(ctx, t.querier(), id)
}

func getBody(ctx context.Context, q querier, id string) (string, error) {
	var body string
	err := q.QueryRowContext(ctx, "SELECT body FROM bodies WHERE chunk_id = ?", id).Scan(&body)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return body, err
}

func (s *SQLiteStore) Manifest(ctx context.Context, docID string) (int64, [32]byte, bool, error) {
	return manifest(ctx, s.querier(), docID)
}
func (t *sqliteTx) Manifest(ctx context.Context, docID string) (int64, [32]byte, bool, error) {
	return manifest(ctx, t.querier(), docID)
}

func manifest(ctx context.Context, q querier, docID string) (int64, [32]byte, bool, error) {
	var mtime int64
	var hash []byte
	err := q.QueryRowContext(ctx, "SELECT mtime, content_hash FROM manifest WHERE doc_id = ?", docID).
		Scan(&mtime, &hash)
	if err == sql.ErrNoRows {
		return 0, [32]byte{}, false, nil
	}
	if err != nil {
		return 0, [32]byte{}, false, err
	}
	var h [32]byte
	copy(h[:], hash)
	return mtime, h, true, nil
}

func (s *SQLiteStore) ManifestDocIDs(ctx context.Context, tree string) ([]string, error) {
	return manifestDocIDs(ctx, s.querier(), tree)
}
func (t *sqliteTx) ManifestDocIDs(ctx context.Context, tree string) ([]string, error) {
	return manifestDocIDs(ctx, t.querier(), tree)
}

func manifestDocIDs(ctx context.Context, q querier, tree string) ([]string, error) {
	rows, err := q.QueryContext(ctx, "SELECT DISTINCT doc_id FROM chunks WHERE tree = ?", tree)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ConfigHash(ctx context.Context) ([32]byte, bool, error) {
	return configHash(ctx, s.querier())
}
func (t *sqliteTx) ConfigHash(ctx context.Context) ([32]byte, bool, error) {
	return configHash(ctx, t.querier())
}

func configHash(ctx context.Context, q querier) ([32]byte, bool, error) {
	var hash []byte
	err := q.QueryRowContext(ctx, "SELECT config_hash FROM config_state WHERE id = 1").Scan(&hash)
	if err == sql.ErrNoRows {
		return [32]byte{}, false, nil
	}
	if err != nil {
		return [32]byte{}, false, err
	}
	var h [32]byte
	copy(h[:], hash)
	return h, true, nil
}

func (s *SQLiteStore) SetConfigHash(ctx context.Context, hash [32]byte) error {
	return setConfigHash(ctx, s.querier(), hash)
}
func (t *sqliteTx) SetConfigHash(ctx context.Context, hash [32]byte) error {
	return setConfigHash(ctx, t.querier(), hash)
}

func setConfigHash(ctx context.Context, q querier, hash [32]byte) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO config_state (id, config_hash) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET config_hash=excluded.config_hash`,
		hash[:])
	return err
}

func (s *SQLiteStore) Clear(ctx context.Context) error { return clear(ctx, s.querier()) }
func (t *sqliteTx) Clear(ctx context.Context) error    { return clear(ctx, t.querier()) }

func clear(ctx context.Context, q querier) error {
	for _, table := range []string{"postings", "bodies", "chunks", "manifest", "config_state"} {
		if _, err := q.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
