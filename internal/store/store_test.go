package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagetree/internal/model"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	sqliteStore, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqliteStore.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqliteStore,
	}
}

func forEachBackend(t *testing.T, fn func(t *testing.T, s Store)) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) { fn(t, s) })
	}
}

func insertNodes(t *testing.T, s Store, site string, scope model.Scope, paths ...string) map[string]int64 {
	t.Helper()
	ids := make(map[string]int64, len(paths))
	err := s.Update(t.Context(), site, func(tx Tx) error {
		for _, p := range paths {
			n := &model.TreeNode{Scope: scope, Path: p, Depth: len(p) / 4}
			if err := tx.InsertNode(n); err != nil {
				return err
			}
			ids[p] = n.ID
		}
		return nil
	})
	require.NoError(t, err)
	return ids
}

func nodePaths(t *testing.T, s Store, site string, q NodeQuery) []string {
	t.Helper()
	var paths []string
	require.NoError(t, s.View(t.Context(), site, func(tx Tx) error {
		nodes, err := tx.Nodes(q)
		for _, n := range nodes {
			paths = append(paths, n.Path)
		}
		return err
	}))
	return paths
}

func TestNodesOrderedAndFiltered(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		insertNodes(t, s, "main", model.ScopeDraft, "0002", "0001", "00010001", "000100010001")
		insertNodes(t, s, "main", model.ScopePublic, "0001")
		insertNodes(t, s, "other", model.ScopeDraft, "0001")

		assert.Equal(t, []string{"0001", "00010001", "000100010001", "0002"},
			nodePaths(t, s, "main", NodeQuery{Scope: model.ScopeDraft}))
		assert.Equal(t, []string{"00010001", "000100010001"},
			nodePaths(t, s, "main", NodeQuery{Scope: model.ScopeDraft, PathPrefix: "00010001"}))
		assert.Equal(t, []string{"00010001"},
			nodePaths(t, s, "main", NodeQuery{Scope: model.ScopeDraft, PathPrefix: "0001", Depth: 2}))
		assert.Equal(t, []string{"0001"}, nodePaths(t, s, "other", NodeQuery{Scope: model.ScopeDraft}))

		sites, err := s.Sites(t.Context())
		require.NoError(t, err)
		assert.Equal(t, []string{"main", "other"}, sites)
	})
}

func TestInsertNodeRejectsDuplicatePath(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		insertNodes(t, s, "main", model.ScopeDraft, "0001")

		err := s.Update(t.Context(), "main", func(tx Tx) error {
			return tx.InsertNode(&model.TreeNode{Scope: model.ScopeDraft, Path: "0001", Depth: 1})
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDuplicate))

		// Same path in the other scope is a different namespace.
		insertNodes(t, s, "main", model.ScopePublic, "0001")
	})
}

func TestRewritePrefixMovesSubtree(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		insertNodes(t, s, "main", model.ScopeDraft, "0001", "00010001", "000100010001", "0003")

		var rewritten int
		require.NoError(t, s.Update(t.Context(), "main", func(tx Tx) error {
			var err error
			rewritten, err = tx.RewritePrefix(model.ScopeDraft, "00010001", "00030001", 0)
			return err
		}))
		assert.Equal(t, 2, rewritten)
		assert.Equal(t, []string{"0001", "0003", "00030001", "000300010001"},
			nodePaths(t, s, "main", NodeQuery{Scope: model.ScopeDraft}))

		require.NoError(t, s.Update(t.Context(), "main", func(tx Tx) error {
			_, err := tx.RewritePrefix(model.ScopeDraft, "00030001", "0002", -1)
			return err
		}))
		require.NoError(t, s.View(t.Context(), "main", func(tx Tx) error {
			n, err := tx.NodeByPath(model.ScopeDraft, "00020001")
			require.NoError(t, err)
			assert.Equal(t, 2, n.Depth)
			return nil
		}))
	})
}

func TestRewritePrefixCollisionIsDuplicate(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		insertNodes(t, s, "main", model.ScopeDraft, "0001", "0002")
		err := s.Update(t.Context(), "main", func(tx Tx) error {
			_, err := tx.RewritePrefix(model.ScopeDraft, "0001", "0002", 0)
			return err
		})
		assert.True(t, errors.Is(err, ErrDuplicate))
	})
}

func TestUpdateRollsBackOnError(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		insertNodes(t, s, "main", model.ScopeDraft, "0001")
		boom := errors.New("boom")

		err := s.Update(t.Context(), "main", func(tx Tx) error {
			if err := tx.InsertNode(&model.TreeNode{Scope: model.ScopeDraft, Path: "0002", Depth: 1}); err != nil {
				return err
			}
			if _, err := tx.DeleteNodes(model.ScopeDraft, "0001"); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"0001"}, nodePaths(t, s, "main", NodeQuery{Scope: model.ScopeDraft}))
	})
}

func TestViewIsReadOnly(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		err := s.View(t.Context(), "main", func(tx Tx) error {
			return tx.InsertNode(&model.TreeNode{Scope: model.ScopeDraft, Path: "0001", Depth: 1})
		})
		assert.ErrorIs(t, err, ErrReadOnly)
	})
}

func TestEmptySiteRejected(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		err := s.View(t.Context(), "", func(Tx) error { return nil })
		assert.ErrorIs(t, err, ErrEmptySite)
	})
}

func TestPagesRoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ids := insertNodes(t, s, "main", model.ScopeDraft, "0001")
		pubNodes := insertNodes(t, s, "main", model.ScopePublic, "0001")
		created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		start := created.Add(time.Hour)

		var draftID, publicID int64
		require.NoError(t, s.Update(t.Context(), "main", func(tx Tx) error {
			d := &model.DraftPage{NodeID: ids["0001"], PageAttributes: model.PageAttributes{
				Template: "base.html", InNavigation: true, CreatedBy: "alice", CreatedAt: created,
				PublicationDate: &start,
			}}
			if err := tx.InsertDraftPage(d); err != nil {
				return err
			}
			draftID = d.ID

			p := &model.PublicPage{NodeID: pubNodes["0001"], DraftID: d.ID, PageAttributes: d.PageAttributes}
			if err := tx.InsertPublicPage(p); err != nil {
				return err
			}
			publicID = p.ID

			d.PublicID = &p.ID
			return tx.UpdateDraftPage(d)
		}))

		require.NoError(t, s.View(t.Context(), "main", func(tx Tx) error {
			d, err := tx.DraftPageByNode(ids["0001"])
			require.NoError(t, err)
			assert.Equal(t, draftID, d.ID)
			assert.Equal(t, "main", d.Site)
			require.NotNil(t, d.PublicID)
			assert.Equal(t, publicID, *d.PublicID)
			assert.True(t, d.CreatedAt.Equal(created))
			require.NotNil(t, d.PublicationDate)
			assert.True(t, d.PublicationDate.Equal(start))
			assert.Nil(t, d.PublicationEndDate)

			p, err := tx.PublicPage(publicID)
			require.NoError(t, err)
			assert.Equal(t, draftID, p.DraftID)
			assert.Equal(t, "base.html", p.Template)

			_, err = tx.PublicPage(draftID)
			assert.ErrorIs(t, err, ErrNotFound)

			drafts, err := tx.DraftPages()
			require.NoError(t, err)
			assert.Len(t, drafts, 1)
			return nil
		}))

		require.NoError(t, s.Update(t.Context(), "main", func(tx Tx) error {
			return tx.DeletePage(publicID)
		}))
		require.NoError(t, s.View(t.Context(), "main", func(tx Tx) error {
			_, err := tx.PublicPage(publicID)
			assert.ErrorIs(t, err, ErrNotFound)
			return nil
		}))
	})
}

func TestVersionsQueryAndUniqueness(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		require.NoError(t, s.Update(t.Context(), "main", func(tx Tx) error {
			for _, v := range []*model.ContentVersion{
				{PageID: 1, Scope: model.ScopeDraft, Language: "en", Slug: "home", Path: "home", State: model.StateNeverPublished},
				{PageID: 1, Scope: model.ScopeDraft, Language: "de", Slug: "start", Path: "start", State: model.StateNeverPublished},
				{PageID: 2, Scope: model.ScopeDraft, Language: "en", Slug: "about", Path: "home/about", State: model.StatePending},
				{PageID: 3, Scope: model.ScopePublic, Language: "en", Slug: "home", Path: "home", Published: true, State: model.StatePublished},
			} {
				if err := tx.InsertVersion(v); err != nil {
					return err
				}
			}
			return nil
		}))

		err := s.Update(t.Context(), "main", func(tx Tx) error {
			return tx.InsertVersion(&model.ContentVersion{PageID: 1, Scope: model.ScopeDraft, Language: "en", Slug: "x", Path: "x"})
		})
		assert.ErrorIs(t, err, ErrDuplicate)

		require.NoError(t, s.View(t.Context(), "main", func(tx Tx) error {
			en, err := tx.Versions(VersionQuery{Scope: model.ScopeDraft, Language: "en"})
			require.NoError(t, err)
			assert.Len(t, en, 2)

			byPath, err := tx.Versions(VersionQuery{Scope: model.ScopePublic, Path: "home"})
			require.NoError(t, err)
			require.Len(t, byPath, 1)
			assert.True(t, byPath[0].Published)
			assert.Equal(t, model.StatePublished, byPath[0].State)

			v, err := tx.VersionFor(model.ScopeDraft, 2, "en")
			require.NoError(t, err)
			assert.Equal(t, "home/about", v.Path)

			_, err = tx.VersionFor(model.ScopeDraft, 2, "de")
			assert.ErrorIs(t, err, ErrNotFound)
			return nil
		}))
	})
}

func TestNumChildAdjustAndDelete(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ids := insertNodes(t, s, "main", model.ScopeDraft, "0001", "00010001", "00010002")

		var removed int
		require.NoError(t, s.Update(t.Context(), "main", func(tx Tx) error {
			if err := tx.AdjustNumChild(ids["0001"], 2); err != nil {
				return err
			}
			var err error
			removed, err = tx.DeleteNodes(model.ScopeDraft, "00010002")
			if err != nil {
				return err
			}
			return tx.AdjustNumChild(ids["0001"], -1)
		}))
		assert.Equal(t, 1, removed)

		require.NoError(t, s.View(t.Context(), "main", func(tx Tx) error {
			n, err := tx.Node(ids["0001"])
			require.NoError(t, err)
			assert.Equal(t, 1, n.NumChild)
			_, err = tx.Node(ids["00010002"])
			assert.ErrorIs(t, err, ErrNotFound)
			return nil
		}))
	})
}

func TestReturnedRowsAreDetached(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ids := insertNodes(t, s, "main", model.ScopeDraft, "0001")
		require.NoError(t, s.View(t.Context(), "main", func(tx Tx) error {
			n, err := tx.Node(ids["0001"])
			require.NoError(t, err)
			n.Path = "9999"
			return nil
		}))
		assert.Equal(t, []string{"0001"}, nodePaths(t, s, "main", NodeQuery{Scope: model.ScopeDraft}))
	})
}
