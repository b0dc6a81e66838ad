package pages

import (
	"context"
	"strings"

	"git.home.luguber.info/inful/pagetree/internal/model"
	"git.home.luguber.info/inful/pagetree/internal/store"
)

// Resolution is the public page answering a path.
type Resolution struct {
	Page    *model.PublicPage
	Version *model.ContentVersion
	// Redirect is the version's redirect target, empty when the page is served.
	Redirect string
}

// ResolvePath finds the published public version with path in language
// whose page is inside its publication window.
func (s *Service) ResolvePath(ctx context.Context, site, language, path string) (*Resolution, error) {
	language, err := s.checkLanguage(site, language)
	if err != nil {
		return nil, err
	}
	path = strings.Trim(strings.TrimSpace(path), "/")
	notFound := ErrPageNotFound.WithContext("site", site).WithContext("language", language).WithContext("path", path)
	if path == "" {
		return nil, notFound
	}

	var res *Resolution
	err = s.read(ctx, site, func(tx store.Tx) error {
		versions, err := tx.Versions(store.VersionQuery{Scope: model.ScopePublic, Language: language, Path: path})
		if err != nil {
			return err
		}
		now := s.now()
		for _, v := range versions {
			if !v.Published {
				continue
			}
			page, err := tx.PublicPage(v.PageID)
			if err != nil {
				return err
			}
			if !page.VisibleAt(now) {
				continue
			}
			res = &Resolution{Page: page, Version: v, Redirect: v.Redirect}
			return nil
		}
		return notFound
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
