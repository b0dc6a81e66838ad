package pages

import (
	"context"
	stderrors "errors"
	"strings"

	"git.home.luguber.info/inful/pagetree/internal/eventstore"
	"git.home.luguber.info/inful/pagetree/internal/model"
	"git.home.luguber.info/inful/pagetree/internal/notify"
	"git.home.luguber.info/inful/pagetree/internal/pathresolver"
	"git.home.luguber.info/inful/pagetree/internal/store"
)

// VersionInput is the content of a new language version.
type VersionInput struct {
	Language        string
	Title           string
	MenuTitle       string
	PageTitle       string
	MetaDescription string
	// Slug is derived from Title when empty, numbered to avoid siblings.
	Slug string
	// Overwrite, when set, replaces the computed path.
	Overwrite string
	Redirect  string
	Content   string
}

// VersionUpdate lists the fields to change; nil fields are kept. An empty
// Overwrite removes the URL overwrite.
type VersionUpdate struct {
	Title           *string
	MenuTitle       *string
	PageTitle       *string
	MetaDescription *string
	Slug            *string
	Overwrite       *string
	Redirect        *string
	Content         *string
}

func normalizeOverwrite(raw string) (string, error) {
	p := strings.Trim(strings.TrimSpace(raw), "/")
	if p == "" || strings.Contains(p, "//") {
		return "", ErrInvalidOverwrite.WithContext("overwrite", raw)
	}
	for _, seg := range strings.Split(p, "/") {
		if err := pathresolver.ValidateSlug(seg); err != nil {
			return "", ErrInvalidOverwrite.WithContext("overwrite", raw).WithCause(err)
		}
	}
	return p, nil
}

// CreateVersion adds the draft version of in.Language to a page.
func (s *Service) CreateVersion(ctx context.Context, site string, pageID int64, in VersionInput) (*model.ContentVersion, error) {
	language, err := s.checkLanguage(site, in.Language)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrTitleRequired
	}
	if in.Slug != "" {
		if err := pathresolver.ValidateSlug(in.Slug); err != nil {
			return nil, err
		}
	}
	overwrite := ""
	if in.Overwrite != "" {
		if overwrite, err = normalizeOverwrite(in.Overwrite); err != nil {
			return nil, err
		}
	}

	var created *model.ContentVersion
	err = s.write(ctx, "create_version", site, func(tx store.Tx, rec *record) error {
		page, err := tx.DraftPage(pageID)
		if err != nil {
			return err
		}
		_, err = tx.VersionFor(model.ScopeDraft, pageID, language)
		if err == nil {
			return ErrVersionExists.WithContext("page_id", pageID).WithContext("language", language)
		}
		if !stderrors.Is(err, store.ErrNotFound) {
			return err
		}

		slug := in.Slug
		if slug == "" {
			parentPageID, err := s.parentPageID(tx, page)
			if err != nil {
				return err
			}
			if slug, err = s.resolver.AvailableSlug(tx, pathresolver.Slugify(in.Title), parentPageID, language, pageID); err != nil {
				return err
			}
		}

		v := &model.ContentVersion{
			PageID:          pageID,
			Scope:           model.ScopeDraft,
			Site:            site,
			Language:        language,
			Title:           in.Title,
			MenuTitle:       in.MenuTitle,
			PageTitle:       in.PageTitle,
			MetaDescription: in.MetaDescription,
			Slug:            slug,
			Path:            overwrite,
			HasURLOverwrite: overwrite != "",
			Redirect:        in.Redirect,
			Content:         in.Content,
			State:           model.StateNeverPublished,
			CreationDate:    s.now().UTC(),
		}
		if _, err := v.RefreshFingerprint(); err != nil {
			return err
		}
		path, err := s.resolver.ComputePath(tx, v)
		if err != nil {
			return err
		}
		if err := s.resolver.ValidateUniqueness(tx, model.ScopeDraft, path, language, 0); err != nil {
			return err
		}
		v.Path = path
		if err := tx.InsertVersion(v); err != nil {
			return err
		}
		// Descendants may have borrowed a fallback language's path.
		if _, err := s.resolver.RecomputeSubtree(tx, model.ScopeDraft, pageID, "", false); err != nil {
			return err
		}

		created = v.Clone()
		rec.event(eventstore.TypeVersionCreated, eventstore.PageChange{
			Site: site, PageID: pageID, Language: language, Path: v.Path,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateVersion edits the draft version of language. A visible version
// whose content now differs from the public copy becomes dirty. Changing
// the slug or the overwrite recomputes the draft paths below the page.
func (s *Service) UpdateVersion(ctx context.Context, site string, pageID int64, language string, upd VersionUpdate) (*model.ContentVersion, error) {
	language, err := s.checkLanguage(site, language)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return nil, ErrTitleRequired
	}
	if upd.Slug != nil {
		if err := pathresolver.ValidateSlug(*upd.Slug); err != nil {
			return nil, err
		}
	}
	overwrite := ""
	if upd.Overwrite != nil && *upd.Overwrite != "" {
		if overwrite, err = normalizeOverwrite(*upd.Overwrite); err != nil {
			return nil, err
		}
	}

	var updated *model.ContentVersion
	err = s.write(ctx, "update_version", site, func(tx store.Tx, rec *record) error {
		v, err := tx.VersionFor(model.ScopeDraft, pageID, language)
		if err != nil {
			return err
		}
		oldSlug, oldOverwrite, oldPath := v.Slug, v.HasURLOverwrite, v.Path

		setString(&v.Title, upd.Title)
		setString(&v.MenuTitle, upd.MenuTitle)
		setString(&v.PageTitle, upd.PageTitle)
		setString(&v.MetaDescription, upd.MetaDescription)
		setString(&v.Slug, upd.Slug)
		setString(&v.Redirect, upd.Redirect)
		setString(&v.Content, upd.Content)
		if upd.Overwrite != nil {
			v.HasURLOverwrite = overwrite != ""
			if v.HasURLOverwrite {
				v.Path = overwrite
			}
		}

		path, err := s.resolver.ComputePath(tx, v)
		if err != nil {
			return err
		}
		if path != oldPath {
			if err := s.resolver.ValidateUniqueness(tx, model.ScopeDraft, path, language, v.ID); err != nil {
				return err
			}
		}
		v.Path = path
		if _, err := v.RefreshFingerprint(); err != nil {
			return err
		}
		tr, err := s.publisher.MarkDirty(tx, v)
		if err != nil {
			return err
		}
		if err := tx.UpdateVersion(v); err != nil {
			return err
		}
		if v.Slug != oldSlug || v.HasURLOverwrite != oldOverwrite || v.Path != oldPath {
			if _, err := s.resolver.RecomputeSubtree(tx, model.ScopeDraft, pageID, "", false); err != nil {
				return err
			}
		}

		change := eventstore.PageChange{Site: site, PageID: pageID, Language: language, Path: v.Path}
		if tr != nil {
			change.Transitions = []eventstore.TransitionRecord{{
				PageID: tr.PageID, Language: tr.Language, From: string(tr.From), To: string(tr.To),
			}}
		}
		rec.event(eventstore.TypeVersionUpdated, change)
		updated = v.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteVersion removes a language from a page in both scopes. Visible
// descendants in that language become pending when the page was visible.
func (s *Service) DeleteVersion(ctx context.Context, site string, pageID int64, language string) error {
	language, err := s.checkLanguage(site, language)
	if err != nil {
		return err
	}
	return s.write(ctx, "delete_version", site, func(tx store.Tx, rec *record) error {
		paths, err := s.publicPaths(tx, pageID, language, true)
		if err != nil {
			return err
		}
		res, err := s.publisher.DeleteTranslation(tx, pageID, language)
		if err != nil {
			return err
		}
		rec.cascaded += res.Cascaded()
		rec.event(eventstore.TypeVersionDeleted, eventstore.PageChange{
			Site: site, PageID: pageID, Language: language,
			Transitions: transitionRecords(res.Transitions),
		})
		rec.notify(notify.Change{Site: site, PageID: pageID, Language: language, Kind: notify.KindTranslation, Paths: paths})
		return nil
	})
}

// Version returns the draft version of a page in language.
func (s *Service) Version(ctx context.Context, site string, pageID int64, language string) (*model.ContentVersion, error) {
	language, err := s.checkLanguage(site, language)
	if err != nil {
		return nil, err
	}
	var v *model.ContentVersion
	err = s.read(ctx, site, func(tx store.Tx) error {
		var err error
		v, err = tx.VersionFor(model.ScopeDraft, pageID, language)
		return err
	})
	return v, err
}

func (s *Service) parentPageID(tx store.Tx, page *model.DraftPage) (int64, error) {
	node, err := s.draft.Get(tx, page.NodeID)
	if err != nil {
		return 0, err
	}
	parent, err := s.draft.Parent(tx, node)
	if err != nil || parent == nil {
		return 0, err
	}
	return store.PageIDAt(tx, model.ScopeDraft, parent.ID)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
