package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"git.home.luguber.info/inful/pagetree/internal/foundation/errors"
	"git.home.luguber.info/inful/pagetree/internal/model"
)

// SQLiteStore implements Store on top of SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (and migrates) the database at dbPath.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS tree_nodes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		site TEXT NOT NULL,
		scope TEXT NOT NULL,
		path TEXT NOT NULL,
		depth INTEGER NOT NULL,
		numchild INTEGER NOT NULL DEFAULT 0,
		UNIQUE (site, scope, path)
	);
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		site TEXT NOT NULL,
		tree_node_id INTEGER NOT NULL UNIQUE,
		is_draft INTEGER NOT NULL,
		counterpart_id INTEGER,
		template TEXT NOT NULL DEFAULT '',
		in_navigation INTEGER NOT NULL DEFAULT 0,
		login_required INTEGER NOT NULL DEFAULT 0,
		soft_root INTEGER NOT NULL DEFAULT 0,
		created_by TEXT NOT NULL DEFAULT '',
		changed_by TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL DEFAULT 0,
		changed_at INTEGER NOT NULL DEFAULT 0,
		publication_date INTEGER,
		publication_end_date INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_pages_site ON pages(site, is_draft);
	CREATE TABLE IF NOT EXISTS content_versions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		content_node_id INTEGER NOT NULL,
		scope TEXT NOT NULL,
		site TEXT NOT NULL,
		language TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		menu_title TEXT NOT NULL DEFAULT '',
		page_title TEXT NOT NULL DEFAULT '',
		meta_description TEXT NOT NULL DEFAULT '',
		slug TEXT NOT NULL,
		path TEXT NOT NULL,
		has_url_overwrite INTEGER NOT NULL DEFAULT 0,
		redirect TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		fingerprint TEXT NOT NULL DEFAULT '',
		published INTEGER NOT NULL DEFAULT 0,
		state TEXT NOT NULL,
		creation_date INTEGER NOT NULL DEFAULT 0,
		UNIQUE (content_node_id, scope, language)
	);
	CREATE INDEX IF NOT EXISTS idx_versions_path ON content_versions(site, scope, language, path);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Update implements Store.
func (s *SQLiteStore) Update(ctx context.Context, site string, fn func(tx Tx) error) error {
	if site == "" {
		return ErrEmptySite
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run(ctx, site, true, fn)
}

// View implements Store.
func (s *SQLiteStore) View(ctx context.Context, site string, fn func(tx Tx) error) error {
	if site == "" {
		return ErrEmptySite
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.run(ctx, site, false, fn)
}

func (s *SQLiteStore) run(ctx context.Context, site string, writable bool, fn func(tx Tx) error) error {
	if s.db == nil {
		return ErrClosed
	}
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classifySQL(err, "begin transaction")
	}
	tx := &sqliteTx{ctx: ctx, tx: sqlTx, site: site, writable: writable}
	if err := fn(tx); err != nil {
		_ = sqlTx.Rollback() // Best effort; the callback error wins
		return err
	}
	if !writable {
		return sqlTx.Rollback()
	}
	if err := sqlTx.Commit(); err != nil {
		return classifySQL(err, "commit transaction")
	}
	return nil
}

// Sites implements Store.
func (s *SQLiteStore) Sites(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrClosed
	}

	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT site FROM tree_nodes ORDER BY site")
	if err != nil {
		return nil, classifySQL(err, "query sites")
	}
	defer rows.Close()

	var sites []string
	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			return nil, classifySQL(err, "scan site")
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// classifySQL maps driver errors onto the store's sentinels.
func classifySQL(err error, op string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, sql.ErrNoRows) {
		return ErrNotFound.WithCause(err)
	}
	var sqliteErr *sqlite.Error
	if stderrors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		switch {
		case code&0xff == sqlite3.SQLITE_BUSY, code&0xff == sqlite3.SQLITE_LOCKED:
			return ErrConcurrentModification.WithCause(err)
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return ErrDuplicate.WithCause(err)
		}
	}
	return errors.WrapError(err, errors.CategoryStore, op).Build()
}

func encodeTime(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func decodeTime(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

func encodeTimePtr(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func decodeTimePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := time.Unix(0, n.Int64).UTC()
	return &t
}

type sqliteTx struct {
	ctx      context.Context
	tx       *sql.Tx
	site     string
	writable bool
}

func (tx *sqliteTx) mutable() error {
	if !tx.writable {
		return ErrReadOnly
	}
	return nil
}

func (tx *sqliteTx) exec(op, query string, args ...any) (int, error) {
	if err := tx.mutable(); err != nil {
		return 0, err
	}
	res, err := tx.tx.ExecContext(tx.ctx, query, args...)
	if err != nil {
		return 0, classifySQL(err, op)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, classifySQL(err, op)
	}
	return int(n), nil
}

func (tx *sqliteTx) insert(op, query string, args ...any) (int64, error) {
	if err := tx.mutable(); err != nil {
		return 0, err
	}
	res, err := tx.tx.ExecContext(tx.ctx, query, args...)
	if err != nil {
		return 0, classifySQL(err, op)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, classifySQL(err, op)
	}
	return id, nil
}

// Tree nodes

const nodeColumns = "id, site, scope, path, depth, numchild"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*model.TreeNode, error) {
	var n model.TreeNode
	var scope string
	if err := row.Scan(&n.ID, &n.Site, &scope, &n.Path, &n.Depth, &n.NumChild); err != nil {
		return nil, err
	}
	n.Scope = model.Scope(scope)
	return &n, nil
}

func (tx *sqliteTx) Node(id int64) (*model.TreeNode, error) {
	row := tx.tx.QueryRowContext(tx.ctx, "SELECT "+nodeColumns+" FROM tree_nodes WHERE site = ? AND id = ?", tx.site, id)
	n, err := scanNode(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, notFound("tree_node", id)
	}
	if err != nil {
		return nil, classifySQL(err, "get tree node")
	}
	return n, nil
}

func (tx *sqliteTx) NodeByPath(scope model.Scope, path string) (*model.TreeNode, error) {
	row := tx.tx.QueryRowContext(tx.ctx,
		"SELECT "+nodeColumns+" FROM tree_nodes WHERE site = ? AND scope = ? AND path = ?",
		tx.site, string(scope), path)
	n, err := scanNode(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, notFound("tree_node", path)
	}
	if err != nil {
		return nil, classifySQL(err, "get tree node by path")
	}
	return n, nil
}

func (tx *sqliteTx) Nodes(q NodeQuery) ([]*model.TreeNode, error) {
	var sb strings.Builder
	sb.WriteString("SELECT " + nodeColumns + " FROM tree_nodes WHERE site = ? AND scope = ? AND substr(path, 1, ?) = ?")
	args := []any{tx.site, string(q.Scope), len(q.PathPrefix), q.PathPrefix}
	if q.Depth > 0 {
		sb.WriteString(" AND depth = ?")
		args = append(args, q.Depth)
	}
	sb.WriteString(" ORDER BY path")

	rows, err := tx.tx.QueryContext(tx.ctx, sb.String(), args...)
	if err != nil {
		return nil, classifySQL(err, "query tree nodes")
	}
	defer rows.Close()

	var nodes []*model.TreeNode
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, classifySQL(err, "scan tree node")
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func (tx *sqliteTx) InsertNode(n *model.TreeNode) error {
	id, err := tx.insert("insert tree node",
		"INSERT INTO tree_nodes (site, scope, path, depth, numchild) VALUES (?, ?, ?, ?, ?)",
		tx.site, string(n.Scope), n.Path, n.Depth, n.NumChild)
	if err != nil {
		return err
	}
	n.ID = id
	n.Site = tx.site
	return nil
}

func (tx *sqliteTx) AdjustNumChild(id int64, delta int) error {
	n, err := tx.exec("adjust numchild",
		"UPDATE tree_nodes SET numchild = numchild + ? WHERE site = ? AND id = ?", delta, tx.site, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("tree_node", id)
	}
	return nil
}

func (tx *sqliteTx) RewritePrefix(scope model.Scope, oldPrefix, newPrefix string, depthDelta int) (int, error) {
	return tx.exec("rewrite path prefix",
		`UPDATE tree_nodes SET path = ? || substr(path, ?), depth = depth + ?
		 WHERE site = ? AND scope = ? AND substr(path, 1, ?) = ?`,
		newPrefix, len(oldPrefix)+1, depthDelta, tx.site, string(scope), len(oldPrefix), oldPrefix)
}

func (tx *sqliteTx) DeleteNodes(scope model.Scope, prefix string) (int, error) {
	return tx.exec("delete tree nodes",
		"DELETE FROM tree_nodes WHERE site = ? AND scope = ? AND substr(path, 1, ?) = ?",
		tx.site, string(scope), len(prefix), prefix)
}

// Pages

const pageColumns = `id, site, tree_node_id, counterpart_id, template, in_navigation, login_required,
	soft_root, created_by, changed_by, created_at, changed_at, publication_date, publication_end_date`

type pageRow struct {
	id, nodeID           int64
	site                 string
	counterpart          sql.NullInt64
	attrs                model.PageAttributes
	createdAt, changedAt int64
	pubDate, pubEndDate  sql.NullInt64
}

func scanPage(row rowScanner) (*pageRow, error) {
	var p pageRow
	err := row.Scan(&p.id, &p.site, &p.nodeID, &p.counterpart,
		&p.attrs.Template, &p.attrs.InNavigation, &p.attrs.LoginRequired, &p.attrs.SoftRoot,
		&p.attrs.CreatedBy, &p.attrs.ChangedBy, &p.createdAt, &p.changedAt, &p.pubDate, &p.pubEndDate)
	if err != nil {
		return nil, err
	}
	p.attrs.CreatedAt = decodeTime(p.createdAt)
	p.attrs.ChangedAt = decodeTime(p.changedAt)
	p.attrs.PublicationDate = decodeTimePtr(p.pubDate)
	p.attrs.PublicationEndDate = decodeTimePtr(p.pubEndDate)
	return &p, nil
}

func (p *pageRow) draft() *model.DraftPage {
	d := &model.DraftPage{ID: p.id, NodeID: p.nodeID, Site: p.site, PageAttributes: p.attrs}
	if p.counterpart.Valid {
		id := p.counterpart.Int64
		d.PublicID = &id
	}
	return d
}

func (p *pageRow) public() *model.PublicPage {
	return &model.PublicPage{ID: p.id, NodeID: p.nodeID, Site: p.site, DraftID: p.counterpart.Int64, PageAttributes: p.attrs}
}

func (tx *sqliteTx) page(isDraft bool, column string, value any) (*pageRow, error) {
	kind := "public_page"
	if isDraft {
		kind = "draft_page"
	}
	row := tx.tx.QueryRowContext(tx.ctx,
		"SELECT "+pageColumns+" FROM pages WHERE site = ? AND is_draft = ? AND "+column+" = ?",
		tx.site, isDraft, value)
	p, err := scanPage(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, notFound(kind, value)
	}
	if err != nil {
		return nil, classifySQL(err, "get "+kind)
	}
	return p, nil
}

func (tx *sqliteTx) DraftPage(id int64) (*model.DraftPage, error) {
	p, err := tx.page(true, "id", id)
	if err != nil {
		return nil, err
	}
	return p.draft(), nil
}

func (tx *sqliteTx) DraftPageByNode(nodeID int64) (*model.DraftPage, error) {
	p, err := tx.page(true, "tree_node_id", nodeID)
	if err != nil {
		return nil, err
	}
	return p.draft(), nil
}

func (tx *sqliteTx) DraftPages() ([]*model.DraftPage, error) {
	rows, err := tx.tx.QueryContext(tx.ctx,
		"SELECT "+pageColumns+" FROM pages WHERE site = ? AND is_draft = 1 ORDER BY id", tx.site)
	if err != nil {
		return nil, classifySQL(err, "query draft pages")
	}
	defer rows.Close()

	var pages []*model.DraftPage
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, classifySQL(err, "scan draft page")
		}
		pages = append(pages, p.draft())
	}
	return pages, rows.Err()
}

func pageArgs(a model.PageAttributes) []any {
	return []any{
		a.Template, a.InNavigation, a.LoginRequired, a.SoftRoot, a.CreatedBy, a.ChangedBy,
		encodeTime(a.CreatedAt), encodeTime(a.ChangedAt),
		encodeTimePtr(a.PublicationDate), encodeTimePtr(a.PublicationEndDate),
	}
}

const insertPage = `INSERT INTO pages (site, tree_node_id, is_draft, counterpart_id, template, in_navigation,
	login_required, soft_root, created_by, changed_by, created_at, changed_at, publication_date, publication_end_date)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const updatePage = `UPDATE pages SET tree_node_id = ?, counterpart_id = ?, template = ?, in_navigation = ?,
	login_required = ?, soft_root = ?, created_by = ?, changed_by = ?, created_at = ?, changed_at = ?,
	publication_date = ?, publication_end_date = ?
	WHERE site = ? AND is_draft = ? AND id = ?`

func (tx *sqliteTx) InsertDraftPage(p *model.DraftPage) error {
	var counterpart sql.NullInt64
	if p.PublicID != nil {
		counterpart = sql.NullInt64{Int64: *p.PublicID, Valid: true}
	}
	args := append([]any{tx.site, p.NodeID, true, counterpart}, pageArgs(p.PageAttributes)...)
	id, err := tx.insert("insert draft page", insertPage, args...)
	if err != nil {
		return err
	}
	p.ID = id
	p.Site = tx.site
	return nil
}

func (tx *sqliteTx) UpdateDraftPage(p *model.DraftPage) error {
	var counterpart sql.NullInt64
	if p.PublicID != nil {
		counterpart = sql.NullInt64{Int64: *p.PublicID, Valid: true}
	}
	args := append([]any{p.NodeID, counterpart}, pageArgs(p.PageAttributes)...)
	args = append(args, tx.site, true, p.ID)
	n, err := tx.exec("update draft page", updatePage, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("draft_page", p.ID)
	}
	return nil
}

func (tx *sqliteTx) PublicPage(id int64) (*model.PublicPage, error) {
	p, err := tx.page(false, "id", id)
	if err != nil {
		return nil, err
	}
	return p.public(), nil
}

func (tx *sqliteTx) PublicPageByNode(nodeID int64) (*model.PublicPage, error) {
	p, err := tx.page(false, "tree_node_id", nodeID)
	if err != nil {
		return nil, err
	}
	return p.public(), nil
}

func (tx *sqliteTx) InsertPublicPage(p *model.PublicPage) error {
	counterpart := sql.NullInt64{Int64: p.DraftID, Valid: true}
	args := append([]any{tx.site, p.NodeID, false, counterpart}, pageArgs(p.PageAttributes)...)
	id, err := tx.insert("insert public page", insertPage, args...)
	if err != nil {
		return err
	}
	p.ID = id
	p.Site = tx.site
	return nil
}

func (tx *sqliteTx) UpdatePublicPage(p *model.PublicPage) error {
	counterpart := sql.NullInt64{Int64: p.DraftID, Valid: true}
	args := append([]any{p.NodeID, counterpart}, pageArgs(p.PageAttributes)...)
	args = append(args, tx.site, false, p.ID)
	n, err := tx.exec("update public page", updatePage, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("public_page", p.ID)
	}
	return nil
}

func (tx *sqliteTx) DeletePage(id int64) error {
	n, err := tx.exec("delete page", "DELETE FROM pages WHERE site = ? AND id = ?", tx.site, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("page", id)
	}
	return nil
}

// Content versions

const versionColumns = `id, content_node_id, scope, site, language, title, menu_title, page_title,
	meta_description, slug, path, has_url_overwrite, redirect, content, fingerprint, published, state, creation_date`

func scanVersion(row rowScanner) (*model.ContentVersion, error) {
	var v model.ContentVersion
	var scope, state string
	var created int64
	err := row.Scan(&v.ID, &v.PageID, &scope, &v.Site, &v.Language, &v.Title, &v.MenuTitle, &v.PageTitle,
		&v.MetaDescription, &v.Slug, &v.Path, &v.HasURLOverwrite, &v.Redirect, &v.Content, &v.Fingerprint,
		&v.Published, &state, &created)
	if err != nil {
		return nil, err
	}
	v.Scope = model.Scope(scope)
	v.State = model.PublishState(state)
	v.CreationDate = decodeTime(created)
	return &v, nil
}

func (tx *sqliteTx) Version(id int64) (*model.ContentVersion, error) {
	row := tx.tx.QueryRowContext(tx.ctx,
		"SELECT "+versionColumns+" FROM content_versions WHERE site = ? AND id = ?", tx.site, id)
	v, err := scanVersion(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, notFound("content_version", id)
	}
	if err != nil {
		return nil, classifySQL(err, "get content version")
	}
	return v, nil
}

func (tx *sqliteTx) VersionFor(scope model.Scope, pageID int64, language string) (*model.ContentVersion, error) {
	row := tx.tx.QueryRowContext(tx.ctx,
		"SELECT "+versionColumns+" FROM content_versions WHERE site = ? AND scope = ? AND content_node_id = ? AND language = ?",
		tx.site, string(scope), pageID, language)
	v, err := scanVersion(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, notFound("content_version", pageID)
	}
	if err != nil {
		return nil, classifySQL(err, "get content version")
	}
	return v, nil
}

func (tx *sqliteTx) Versions(q VersionQuery) ([]*model.ContentVersion, error) {
	var sb strings.Builder
	sb.WriteString("SELECT " + versionColumns + " FROM content_versions WHERE site = ? AND scope = ?")
	args := []any{tx.site, string(q.Scope)}
	if q.Language != "" {
		sb.WriteString(" AND language = ?")
		args = append(args, q.Language)
	}
	if q.PageID != 0 {
		sb.WriteString(" AND content_node_id = ?")
		args = append(args, q.PageID)
	}
	if q.Path != "" {
		sb.WriteString(" AND path = ?")
		args = append(args, q.Path)
	}
	sb.WriteString(" ORDER BY id")

	rows, err := tx.tx.QueryContext(tx.ctx, sb.String(), args...)
	if err != nil {
		return nil, classifySQL(err, "query content versions")
	}
	defer rows.Close()

	var versions []*model.ContentVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, classifySQL(err, "scan content version")
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (tx *sqliteTx) InsertVersion(v *model.ContentVersion) error {
	id, err := tx.insert("insert content version",
		`INSERT INTO content_versions (content_node_id, scope, site, language, title, menu_title, page_title,
		 meta_description, slug, path, has_url_overwrite, redirect, content, fingerprint, published, state, creation_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.PageID, string(v.Scope), tx.site, v.Language, v.Title, v.MenuTitle, v.PageTitle,
		v.MetaDescription, v.Slug, v.Path, v.HasURLOverwrite, v.Redirect, v.Content, v.Fingerprint,
		v.Published, string(v.State), encodeTime(v.CreationDate))
	if err != nil {
		return err
	}
	v.ID = id
	v.Site = tx.site
	return nil
}

func (tx *sqliteTx) UpdateVersion(v *model.ContentVersion) error {
	n, err := tx.exec("update content version",
		`UPDATE content_versions SET title = ?, menu_title = ?, page_title = ?, meta_description = ?, slug = ?,
		 path = ?, has_url_overwrite = ?, redirect = ?, content = ?, fingerprint = ?, published = ?, state = ?,
		 creation_date = ?
		 WHERE site = ? AND id = ?`,
		v.Title, v.MenuTitle, v.PageTitle, v.MetaDescription, v.Slug,
		v.Path, v.HasURLOverwrite, v.Redirect, v.Content, v.Fingerprint, v.Published, string(v.State),
		encodeTime(v.CreationDate), tx.site, v.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("content_version", v.ID)
	}
	return nil
}

func (tx *sqliteTx) DeleteVersion(id int64) error {
	n, err := tx.exec("delete content version", "DELETE FROM content_versions WHERE site = ? AND id = ?", tx.site, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("content_version", id)
	}
	return nil
}
