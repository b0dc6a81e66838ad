package store

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"git.home.luguber.info/inful/pagetree/internal/model"
)

// MemoryStore keeps every site in process memory. Update works on a
// copy-on-write snapshot of the site that replaces the live data only when
// the callback succeeds, which gives the same all-or-nothing behaviour as a
// SQL transaction.
//
// Every Update deep-copies the whole site, so a write costs time
// proportional to the site size, and a retried operation pays that again.
// MemoryStore is meant for tests and development; use SQLiteStore for real
// sites.
type MemoryStore struct {
	mu     sync.Mutex
	sites  map[string]*memSite
	nextID atomic.Int64
	closed atomic.Bool
}

type memSite struct {
	mu   sync.RWMutex
	data *memData
}

type memData struct {
	nodes    map[int64]*model.TreeNode
	drafts   map[int64]*model.DraftPage
	publics  map[int64]*model.PublicPage
	versions map[int64]*model.ContentVersion
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sites: make(map[string]*memSite)}
}

func newMemData() *memData {
	return &memData{
		nodes:    make(map[int64]*model.TreeNode),
		drafts:   make(map[int64]*model.DraftPage),
		publics:  make(map[int64]*model.PublicPage),
		versions: make(map[int64]*model.ContentVersion),
	}
}

func (d *memData) clone() *memData {
	c := &memData{
		nodes:    make(map[int64]*model.TreeNode, len(d.nodes)),
		drafts:   make(map[int64]*model.DraftPage, len(d.drafts)),
		publics:  make(map[int64]*model.PublicPage, len(d.publics)),
		versions: make(map[int64]*model.ContentVersion, len(d.versions)),
	}
	for id, n := range d.nodes {
		c.nodes[id] = n.Clone()
	}
	for id, p := range d.drafts {
		c.drafts[id] = p.Clone()
	}
	for id, p := range d.publics {
		c.publics[id] = p.Clone()
	}
	for id, v := range d.versions {
		c.versions[id] = v.Clone()
	}
	return c
}

func (s *MemoryStore) site(id string) *memSite {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sites[id]
	if !ok {
		st = &memSite{data: newMemData()}
		s.sites[id] = st
	}
	return st
}

// Update implements Store.
func (s *MemoryStore) Update(ctx context.Context, site string, fn func(tx Tx) error) error {
	if err := s.check(ctx, site); err != nil {
		return err
	}
	st := s.site(site)
	st.mu.Lock()
	defer st.mu.Unlock()

	work := st.data.clone()
	if err := fn(&memTx{site: site, data: work, ids: &s.nextID, writable: true}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	st.data = work
	return nil
}

// View implements Store.
func (s *MemoryStore) View(ctx context.Context, site string, fn func(tx Tx) error) error {
	if err := s.check(ctx, site); err != nil {
		return err
	}
	st := s.site(site)
	st.mu.RLock()
	defer st.mu.RUnlock()
	return fn(&memTx{site: site, data: st.data, ids: &s.nextID})
}

// Sites implements Store.
func (s *MemoryStore) Sites(ctx context.Context) ([]string, error) {
	if err := s.check(ctx, "-"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	ids := make([]string, 0, len(s.sites))
	states := make([]*memSite, 0, len(s.sites))
	for id, st := range s.sites {
		ids = append(ids, id)
		states = append(states, st)
	}
	s.mu.Unlock()

	out := make([]string, 0, len(ids))
	for i, st := range states {
		st.mu.RLock()
		if len(st.data.nodes) > 0 {
			out = append(out, ids[i])
		}
		st.mu.RUnlock()
	}
	sort.Strings(out)
	return out, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *MemoryStore) check(ctx context.Context, site string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if site == "" {
		return ErrEmptySite
	}
	return ctx.Err()
}

type memTx struct {
	site     string
	data     *memData
	ids      *atomic.Int64
	writable bool
}

func (tx *memTx) mutable() error {
	if !tx.writable {
		return ErrReadOnly
	}
	return nil
}

// Tree nodes

func (tx *memTx) Node(id int64) (*model.TreeNode, error) {
	n, ok := tx.data.nodes[id]
	if !ok {
		return nil, notFound("tree_node", id)
	}
	return n.Clone(), nil
}

func (tx *memTx) NodeByPath(scope model.Scope, path string) (*model.TreeNode, error) {
	for _, n := range tx.data.nodes {
		if n.Scope == scope && n.Path == path {
			return n.Clone(), nil
		}
	}
	return nil, notFound("tree_node", path)
}

func (tx *memTx) Nodes(q NodeQuery) ([]*model.TreeNode, error) {
	var out []*model.TreeNode
	for _, n := range tx.data.nodes {
		if n.Scope != q.Scope || !strings.HasPrefix(n.Path, q.PathPrefix) {
			continue
		}
		if q.Depth > 0 && n.Depth != q.Depth {
			continue
		}
		out = append(out, n.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (tx *memTx) InsertNode(n *model.TreeNode) error {
	if err := tx.mutable(); err != nil {
		return err
	}
	for _, existing := range tx.data.nodes {
		if existing.Scope == n.Scope && existing.Path == n.Path {
			return ErrDuplicate.WithContext("path", n.Path)
		}
	}
	n.ID = tx.ids.Add(1)
	n.Site = tx.site
	tx.data.nodes[n.ID] = n.Clone()
	return nil
}

func (tx *memTx) AdjustNumChild(id int64, delta int) error {
	if err := tx.mutable(); err != nil {
		return err
	}
	n, ok := tx.data.nodes[id]
	if !ok {
		return notFound("tree_node", id)
	}
	n.NumChild += delta
	return nil
}

func (tx *memTx) RewritePrefix(scope model.Scope, oldPrefix, newPrefix string, depthDelta int) (int, error) {
	if err := tx.mutable(); err != nil {
		return 0, err
	}
	moving := make(map[int64]string)
	for id, n := range tx.data.nodes {
		if n.Scope == scope && strings.HasPrefix(n.Path, oldPrefix) {
			moving[id] = newPrefix + n.Path[len(oldPrefix):]
		}
	}
	if len(moving) == 0 {
		return 0, nil
	}
	targets := make(map[string]struct{}, len(moving))
	for _, p := range moving {
		targets[p] = struct{}{}
	}
	for id, n := range tx.data.nodes {
		if _, isMoving := moving[id]; isMoving || n.Scope != scope {
			continue
		}
		if _, clash := targets[n.Path]; clash {
			return 0, ErrDuplicate.WithContext("path", n.Path)
		}
	}
	for id, p := range moving {
		n := tx.data.nodes[id]
		n.Path = p
		n.Depth += depthDelta
	}
	return len(moving), nil
}

func (tx *memTx) DeleteNodes(scope model.Scope, prefix string) (int, error) {
	if err := tx.mutable(); err != nil {
		return 0, err
	}
	removed := 0
	for id, n := range tx.data.nodes {
		if n.Scope == scope && strings.HasPrefix(n.Path, prefix) {
			delete(tx.data.nodes, id)
			removed++
		}
	}
	return removed, nil
}

// Pages

func (tx *memTx) DraftPage(id int64) (*model.DraftPage, error) {
	p, ok := tx.data.drafts[id]
	if !ok {
		return nil, notFound("draft_page", id)
	}
	return p.Clone(), nil
}

func (tx *memTx) DraftPageByNode(nodeID int64) (*model.DraftPage, error) {
	for _, p := range tx.data.drafts {
		if p.NodeID == nodeID {
			return p.Clone(), nil
		}
	}
	return nil, notFound("draft_page_node", nodeID)
}

func (tx *memTx) DraftPages() ([]*model.DraftPage, error) {
	out := make([]*model.DraftPage, 0, len(tx.data.drafts))
	for _, p := range tx.data.drafts {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (tx *memTx) nodeTaken(nodeID, exceptPage int64) bool {
	for id, p := range tx.data.drafts {
		if p.NodeID == nodeID && id != exceptPage {
			return true
		}
	}
	for id, p := range tx.data.publics {
		if p.NodeID == nodeID && id != exceptPage {
			return true
		}
	}
	return false
}

func (tx *memTx) InsertDraftPage(p *model.DraftPage) error {
	if err := tx.mutable(); err != nil {
		return err
	}
	if tx.nodeTaken(p.NodeID, 0) {
		return ErrDuplicate.WithContext("tree_node_id", p.NodeID)
	}
	p.ID = tx.ids.Add(1)
	p.Site = tx.site
	tx.data.drafts[p.ID] = p.Clone()
	return nil
}

func (tx *memTx) UpdateDraftPage(p *model.DraftPage) error {
	if err := tx.mutable(); err != nil {
		return err
	}
	if _, ok := tx.data.drafts[p.ID]; !ok {
		return notFound("draft_page", p.ID)
	}
	if tx.nodeTaken(p.NodeID, p.ID) {
		return ErrDuplicate.WithContext("tree_node_id", p.NodeID)
	}
	tx.data.drafts[p.ID] = p.Clone()
	return nil
}

func (tx *memTx) PublicPage(id int64) (*model.PublicPage, error) {
	p, ok := tx.data.publics[id]
	if !ok {
		return nil, notFound("public_page", id)
	}
	return p.Clone(), nil
}

func (tx *memTx) PublicPageByNode(nodeID int64) (*model.PublicPage, error) {
	for _, p := range tx.data.publics {
		if p.NodeID == nodeID {
			return p.Clone(), nil
		}
	}
	return nil, notFound("public_page_node", nodeID)
}

func (tx *memTx) InsertPublicPage(p *model.PublicPage) error {
	if err := tx.mutable(); err != nil {
		return err
	}
	if tx.nodeTaken(p.NodeID, 0) {
		return ErrDuplicate.WithContext("tree_node_id", p.NodeID)
	}
	p.ID = tx.ids.Add(1)
	p.Site = tx.site
	tx.data.publics[p.ID] = p.Clone()
	return nil
}

func (tx *memTx) UpdatePublicPage(p *model.PublicPage) error {
	if err := tx.mutable(); err != nil {
		return err
	}
	if _, ok := tx.data.publics[p.ID]; !ok {
		return notFound("public_page", p.ID)
	}
	if tx.nodeTaken(p.NodeID, p.ID) {
		return ErrDuplicate.WithContext("tree_node_id", p.NodeID)
	}
	tx.data.publics[p.ID] = p.Clone()
	return nil
}

func (tx *memTx) DeletePage(id int64) error {
	if err := tx.mutable(); err != nil {
		return err
	}
	if _, ok := tx.data.drafts[id]; ok {
		delete(tx.data.drafts, id)
		return nil
	}
	if _, ok := tx.data.publics[id]; ok {
		delete(tx.data.publics, id)
		return nil
	}
	return notFound("page", id)
}

// Content versions

func (tx *memTx) Version(id int64) (*model.ContentVersion, error) {
	v, ok := tx.data.versions[id]
	if !ok {
		return nil, notFound("content_version", id)
	}
	return v.Clone(), nil
}

func (tx *memTx) VersionFor(scope model.Scope, pageID int64, language string) (*model.ContentVersion, error) {
	for _, v := range tx.data.versions {
		if v.Scope == scope && v.PageID == pageID && v.Language == language {
			return v.Clone(), nil
		}
	}
	return nil, notFound("content_version", pageID)
}

func (tx *memTx) Versions(q VersionQuery) ([]*model.ContentVersion, error) {
	var out []*model.ContentVersion
	for _, v := range tx.data.versions {
		if v.Scope != q.Scope {
			continue
		}
		if q.Language != "" && v.Language != q.Language {
			continue
		}
		if q.PageID != 0 && v.PageID != q.PageID {
			continue
		}
		if q.Path != "" && v.Path != q.Path {
			continue
		}
		out = append(out, v.Clone())
	}
	slices.SortFunc(out, func(a, b *model.ContentVersion) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out, nil
}

func (tx *memTx) InsertVersion(v *model.ContentVersion) error {
	if err := tx.mutable(); err != nil {
		return err
	}
	for _, existing := range tx.data.versions {
		if existing.Scope == v.Scope && existing.PageID == v.PageID && existing.Language == v.Language {
			return ErrDuplicate.WithContext("page_id", v.PageID).WithContext("language", v.Language)
		}
	}
	v.ID = tx.ids.Add(1)
	v.Site = tx.site
	tx.data.versions[v.ID] = v.Clone()
	return nil
}

func (tx *memTx) UpdateVersion(v *model.ContentVersion) error {
	if err := tx.mutable(); err != nil {
		return err
	}
	if _, ok := tx.data.versions[v.ID]; !ok {
		return notFound("content_version", v.ID)
	}
	tx.data.versions[v.ID] = v.Clone()
	return nil
}

func (tx *memTx) DeleteVersion(id int64) error {
	if err := tx.mutable(); err != nil {
		return err
	}
	if _, ok := tx.data.versions[id]; !ok {
		return notFound("content_version", id)
	}
	delete(tx.data.versions, id)
	return nil
}
