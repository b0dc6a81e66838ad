// Package pathresolver derives the per-language URL path of content
// versions from the slugs of their ancestors and enforces path uniqueness
// within a scope.
package pathresolver

import (
	stderrors "errors"
	"strconv"

	"git.home.luguber.info/inful/pagetree/internal/foundation/errors"
	"git.home.luguber.info/inful/pagetree/internal/model"
	"git.home.luguber.info/inful/pagetree/internal/store"
	"git.home.luguber.info/inful/pagetree/internal/treepath"
)

// ErrPathCollision is returned when another version of the same scope and
// language already uses a path. It is never resolved by renaming.
var ErrPathCollision = errors.PathCollisionError("path already in use").Build()

// FallbackSource supplies the ordered fallback languages of a site language.
type FallbackSource interface {
	Fallbacks(site, language string) []string
}

type noFallbacks struct{}

func (noFallbacks) Fallbacks(string, string) []string { return nil }

// Resolver computes and validates paths. It is stateless apart from its
// configuration and safe for concurrent use.
type Resolver struct {
	codec     *treepath.Codec
	fallbacks FallbackSource
}

// New returns a Resolver. Nil arguments select treepath.Default and no fallbacks.
func New(codec *treepath.Codec, fallbacks FallbackSource) *Resolver {
	if codec == nil {
		codec = treepath.Default
	}
	if fallbacks == nil {
		fallbacks = noFallbacks{}
	}
	return &Resolver{codec: codec, fallbacks: fallbacks}
}

// ComputePath returns the path v should have. A version with a URL overwrite
// keeps its stored path. Otherwise the path is the parent page's path in the
// same scope joined with v's slug, trying v's language first and then the
// site's fallback languages. Without a parent version the bare slug is used.
func (r *Resolver) ComputePath(tx store.Tx, v *model.ContentVersion) (string, error) {
	if v.HasURLOverwrite {
		return v.Path, nil
	}
	parent, err := r.parentVersion(tx, v.Scope, v.PageID, v.Site, v.Language)
	if err != nil {
		return "", err
	}
	if parent == nil {
		return v.Slug, nil
	}
	return parent.Path + "/" + v.Slug, nil
}

// parentVersion finds the version of the parent page used as path base, or
// nil when the page is at root level or no usable translation exists.
func (r *Resolver) parentVersion(tx store.Tx, scope model.Scope, pageID int64, site, language string) (*model.ContentVersion, error) {
	node, err := store.PageNode(tx, scope, pageID)
	if err != nil {
		return nil, err
	}
	parentPath := r.codec.Parent(node.Path)
	if parentPath == "" {
		return nil, nil
	}
	parentNode, err := tx.NodeByPath(scope, parentPath)
	if err != nil {
		return nil, err
	}
	parentPage, err := store.PageIDAt(tx, scope, parentNode.ID)
	if err != nil {
		return nil, err
	}
	for _, lang := range append([]string{language}, r.fallbacks.Fallbacks(site, language)...) {
		pv, err := tx.VersionFor(scope, parentPage, lang)
		if stderrors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return pv, nil
	}
	return nil, nil
}

// ValidateUniqueness fails with ErrPathCollision when a version other than
// excludeID in scope and language already has path. Draft and public scopes
// are checked independently.
func (r *Resolver) ValidateUniqueness(tx store.Tx, scope model.Scope, path, language string, excludeID int64) error {
	existing, err := tx.Versions(store.VersionQuery{Scope: scope, Language: language, Path: path})
	if err != nil {
		return err
	}
	for _, v := range existing {
		if v.ID != excludeID {
			return ErrPathCollision.
				WithContext("path", path).
				WithContext("language", language).
				WithContext("scope", string(scope)).
				WithContext("conflicting_page_id", v.PageID)
		}
	}
	return nil
}

// AvailableSlug returns base, or base-1, base-2, ... whichever is first not
// used by a direct sibling draft page in language. parentPageID 0 means the
// root level; excludePageID is ignored among the siblings. The result only
// depends on the current siblings, so repeated calls agree.
func (r *Resolver) AvailableSlug(tx store.Tx, base string, parentPageID int64, language string, excludePageID int64) (string, error) {
	taken, err := r.siblingSlugs(tx, parentPageID, language, excludePageID)
	if err != nil {
		return "", err
	}
	slug := base
	for i := 1; ; i++ {
		if _, used := taken[slug]; !used {
			return slug, nil
		}
		slug = base + "-" + strconv.Itoa(i)
	}
}

func (r *Resolver) siblingSlugs(tx store.Tx, parentPageID int64, language string, excludePageID int64) (map[string]struct{}, error) {
	parentPath := ""
	if parentPageID != 0 {
		node, err := store.PageNode(tx, model.ScopeDraft, parentPageID)
		if err != nil {
			return nil, err
		}
		parentPath = node.Path
	}
	nodes, err := tx.Nodes(store.NodeQuery{
		Scope:      model.ScopeDraft,
		PathPrefix: parentPath,
		Depth:      r.codec.Depth(parentPath) + 1,
	})
	if err != nil {
		return nil, err
	}

	taken := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		pageID, err := store.PageIDAt(tx, model.ScopeDraft, n.ID)
		if stderrors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if pageID == excludePageID {
			continue
		}
		v, err := tx.VersionFor(model.ScopeDraft, pageID, language)
		if stderrors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		taken[v.Slug] = struct{}{}
	}
	return taken, nil
}

// RecomputeSubtree recomputes, validates and stores the path of every
// version below pageID in scope, in pre-order so each child sees its
// parent's new path. With includeSelf the page's own versions are
// recomputed first, restricted to language unless it is empty. Descendants
// are always recomputed in every language because a translation may borrow
// its base path through a fallback language. Versions with a URL overwrite
// are left alone. It returns the versions whose path changed.
func (r *Resolver) RecomputeSubtree(tx store.Tx, scope model.Scope, pageID int64, language string, includeSelf bool) ([]*model.ContentVersion, error) {
	root, err := store.PageNode(tx, scope, pageID)
	if err != nil {
		return nil, err
	}
	nodes, err := tx.Nodes(store.NodeQuery{Scope: scope, PathPrefix: root.Path})
	if err != nil {
		return nil, err
	}

	var changed []*model.ContentVersion
	for _, n := range nodes {
		self := n.ID == root.ID
		if self && !includeSelf {
			continue
		}
		id, err := store.PageIDAt(tx, scope, n.ID)
		if stderrors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		q := store.VersionQuery{Scope: scope, PageID: id}
		if self {
			q.Language = language
		}
		versions, err := tx.Versions(q)
		if err != nil {
			return nil, err
		}
		for _, v := range versions {
			updated, err := r.Refresh(tx, v)
			if err != nil {
				return nil, err
			}
			if updated {
				changed = append(changed, v)
			}
		}
	}
	return changed, nil
}

// Refresh recomputes v's path and, when it differs, validates and stores it.
func (r *Resolver) Refresh(tx store.Tx, v *model.ContentVersion) (bool, error) {
	if v.HasURLOverwrite {
		return false, nil
	}
	path, err := r.ComputePath(tx, v)
	if err != nil {
		return false, err
	}
	if path == v.Path {
		return false, nil
	}
	if err := r.ValidateUniqueness(tx, v.Scope, path, v.Language, v.ID); err != nil {
		return false, err
	}
	v.Path = path
	return true, tx.UpdateVersion(v)
}
