package pathresolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagetree/internal/model"
	"git.home.luguber.info/inful/pagetree/internal/store"
	"git.home.luguber.info/inful/pagetree/internal/tree"
)

type fallbackMap map[string][]string

func (m fallbackMap) Fallbacks(_, language string) []string { return m[language] }

type fixture struct {
	t        *testing.T
	store    store.Store
	tree     *tree.Tree
	resolver *Resolver
}

func newFixture(t *testing.T, fallbacks FallbackSource) *fixture {
	return &fixture{
		t:        t,
		store:    store.NewMemoryStore(),
		tree:     tree.New(model.ScopeDraft, nil),
		resolver: New(nil, fallbacks),
	}
}

func (f *fixture) update(fn func(tx store.Tx) error) error {
	return f.store.Update(f.t.Context(), "main", fn)
}

// page creates a draft page as the last child of parentPageID (0 for root).
func (f *fixture) page(parentPageID int64) int64 {
	f.t.Helper()
	var id int64
	require.NoError(f.t, f.update(func(tx store.Tx) error {
		var target int64
		if parentPageID != 0 {
			p, err := tx.DraftPage(parentPageID)
			if err != nil {
				return err
			}
			target = p.NodeID
		}
		node, err := f.tree.AddChild(tx, target, tree.LastChild)
		if err != nil {
			return err
		}
		p := &model.DraftPage{NodeID: node.ID}
		if err := tx.InsertDraftPage(p); err != nil {
			return err
		}
		id = p.ID
		return nil
	}))
	return id
}

// version adds a translation with slug and stores its computed path.
func (f *fixture) version(pageID int64, lang, slug string) *model.ContentVersion {
	f.t.Helper()
	v := &model.ContentVersion{PageID: pageID, Scope: model.ScopeDraft, Site: "main", Language: lang, Slug: slug, State: model.StateNeverPublished}
	require.NoError(f.t, f.update(func(tx store.Tx) error {
		path, err := f.resolver.ComputePath(tx, v)
		if err != nil {
			return err
		}
		if err := f.resolver.ValidateUniqueness(tx, model.ScopeDraft, path, lang, 0); err != nil {
			return err
		}
		v.Path = path
		return tx.InsertVersion(v)
	}))
	return v
}

func (f *fixture) path(pageID int64, lang string) string {
	f.t.Helper()
	var path string
	require.NoError(f.t, f.store.View(f.t.Context(), "main", func(tx store.Tx) error {
		v, err := tx.VersionFor(model.ScopeDraft, pageID, lang)
		if err != nil {
			return err
		}
		path = v.Path
		return nil
	}))
	return path
}

func TestChildPathJoinsParentPath(t *testing.T) {
	f := newFixture(t, nil)
	home := f.page(0)
	f.version(home, "en", "home")
	about := f.page(home)
	v := f.version(about, "en", "about")

	assert.Equal(t, "home/about", v.Path)
}

func TestComputePathLanguageFallback(t *testing.T) {
	f := newFixture(t, fallbackMap{"de": {"en"}})
	home := f.page(0)
	f.version(home, "en", "home")
	about := f.page(home)

	assert.Equal(t, "home/ueber", f.version(about, "de", "ueber").Path)
	assert.Equal(t, "a-propos", f.version(about, "fr", "a-propos").Path, "fr has no fallback chain")

	g := newFixture(t, nil)
	root := g.page(0)
	g.version(root, "en", "home")
	child := g.page(root)
	assert.Equal(t, "ueber", g.version(child, "de", "ueber").Path, "no fallback means bare slug")
}

func TestComputePathKeepsOverwrite(t *testing.T) {
	f := newFixture(t, nil)
	home := f.page(0)
	f.version(home, "en", "home")
	child := f.page(home)

	require.NoError(t, f.store.View(t.Context(), "main", func(tx store.Tx) error {
		v := &model.ContentVersion{PageID: child, Scope: model.ScopeDraft, Language: "en", Slug: "x", Path: "custom/url", HasURLOverwrite: true}
		path, err := f.resolver.ComputePath(tx, v)
		require.NoError(t, err)
		assert.Equal(t, "custom/url", path)
		return nil
	}))
}

func TestValidateUniqueness(t *testing.T) {
	f := newFixture(t, nil)
	a := f.page(0)
	v := f.version(a, "en", "docs")

	require.NoError(t, f.store.View(t.Context(), "main", func(tx store.Tx) error {
		err := f.resolver.ValidateUniqueness(tx, model.ScopeDraft, "docs", "en", 0)
		assert.ErrorIs(t, err, ErrPathCollision)

		assert.NoError(t, f.resolver.ValidateUniqueness(tx, model.ScopeDraft, "docs", "en", v.ID), "own version is excluded")
		assert.NoError(t, f.resolver.ValidateUniqueness(tx, model.ScopeDraft, "docs", "de", 0), "languages are independent")
		assert.NoError(t, f.resolver.ValidateUniqueness(tx, model.ScopePublic, "docs", "en", 0), "scopes are independent")
		return nil
	}))
}

func TestAvailableSlugAmongSiblings(t *testing.T) {
	f := newFixture(t, nil)
	parent := f.page(0)
	f.version(parent, "en", "parent")

	slug := func(parentID int64) string {
		var s string
		require.NoError(t, f.store.View(t.Context(), "main", func(tx store.Tx) error {
			var err error
			s, err = f.resolver.AvailableSlug(tx, "foo", parentID, "en", 0)
			return err
		}))
		return s
	}

	first := f.page(parent)
	assert.Equal(t, "foo", slug(parent))
	f.version(first, "en", slug(parent))

	second := f.page(parent)
	got := slug(parent)
	assert.Equal(t, "foo-1", got)
	assert.Equal(t, got, slug(parent), "no insert in between, same answer")
	f.version(second, "en", got)

	third := f.page(parent)
	assert.Equal(t, "foo-2", slug(parent))
	f.version(third, "en", slug(parent))

	// A "foo" elsewhere in the tree does not matter.
	assert.Equal(t, "foo", slug(0))

	// The page being renamed does not collide with itself.
	require.NoError(t, f.store.View(t.Context(), "main", func(tx store.Tx) error {
		s, err := f.resolver.AvailableSlug(tx, "foo-1", parent, "en", second)
		require.NoError(t, err)
		assert.Equal(t, "foo-1", s)
		return nil
	}))
}

func TestRecomputeSubtreeAfterSlugChange(t *testing.T) {
	f := newFixture(t, fallbackMap{"de": {"en"}})
	home := f.page(0)
	root := f.version(home, "en", "home")
	about := f.page(home)
	f.version(about, "en", "about")
	f.version(about, "de", "ueber")
	team := f.page(about)
	f.version(team, "en", "team")
	pinned := f.page(about)
	require.NoError(t, f.update(func(tx store.Tx) error {
		return tx.InsertVersion(&model.ContentVersion{PageID: pinned, Scope: model.ScopeDraft, Language: "en", Slug: "p", Path: "fixed", HasURLOverwrite: true})
	}))

	var changed []*model.ContentVersion
	require.NoError(t, f.update(func(tx store.Tx) error {
		root.Slug = "start"
		if err := tx.UpdateVersion(root); err != nil {
			return err
		}
		var err error
		changed, err = f.resolver.RecomputeSubtree(tx, model.ScopeDraft, home, "en", true)
		return err
	}))

	assert.Len(t, changed, 4)
	assert.Equal(t, "start", f.path(home, "en"))
	assert.Equal(t, "start/about", f.path(about, "en"))
	assert.Equal(t, "start/ueber", f.path(about, "de"))
	assert.Equal(t, "start/about/team", f.path(team, "en"))
	assert.Equal(t, "fixed", f.path(pinned, "en"))
}

func TestRecomputeSubtreeRejectsCollision(t *testing.T) {
	f := newFixture(t, nil)
	a := f.page(0)
	f.version(a, "en", "a")
	b := f.page(0)
	vb := f.version(b, "en", "b")
	child := f.page(b)
	f.version(child, "en", "x")

	err := f.update(func(tx store.Tx) error {
		vb.Slug = "a"
		if err := tx.UpdateVersion(vb); err != nil {
			return err
		}
		_, err := f.resolver.RecomputeSubtree(tx, model.ScopeDraft, b, "en", true)
		return err
	})
	require.ErrorIs(t, err, ErrPathCollision)
	assert.Equal(t, "b", f.path(b, "en"), "rolled back")
	assert.Equal(t, "b/x", f.path(child, "en"))
}
