package model

import "time"

// PublishState is the lifecycle state of a (draft page, language) pair.
type PublishState string

const (
	StateNeverPublished PublishState = "never_published"
	StatePublished      PublishState = "published"
	// StatePending: published at some point, but an ancestor is not visible.
	StatePending PublishState = "pending"
	// StateDirty: visible, with draft changes not yet copied to the public version.
	StateDirty PublishState = "dirty"
	// StateUnpublished: explicitly hidden; the public version is kept for revert.
	StateUnpublished PublishState = "unpublished"
)

// Visible reports whether the public copy of a page in this state is reachable.
func (s PublishState) Visible() bool {
	return s == StatePublished || s == StateDirty
}

// WantsPublic reports whether the editor intends the page to be public,
// whether or not it currently is.
func (s PublishState) WantsPublic() bool {
	return s == StatePublished || s == StateDirty || s == StatePending
}

// ContentVersion is the per-language content of one page in one scope.
type ContentVersion struct {
	ID       int64  `json:"id"`
	PageID   int64  `json:"page_id"`
	Scope    Scope  `json:"scope"`
	Site     string `json:"site"`
	Language string `json:"language"`

	Title           string `json:"title"`
	MenuTitle       string `json:"menu_title,omitempty"`
	PageTitle       string `json:"page_title,omitempty"`
	MetaDescription string `json:"meta_description,omitempty"`

	Slug            string `json:"slug"`
	Path            string `json:"path"`
	HasURLOverwrite bool   `json:"has_url_overwrite"`
	Redirect        string `json:"redirect,omitempty"`

	// Content stands in for the placeholder data rendered by plugins.
	Content     string `json:"content,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`

	Published    bool         `json:"published"`
	State        PublishState `json:"state"`
	CreationDate time.Time    `json:"creation_date"`
}

// Clone returns a copy safe to mutate.
func (v *ContentVersion) Clone() *ContentVersion {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// CopyContentFrom overwrites the editable fields of v with those of src.
// Identity, scope, path and state are left alone.
func (v *ContentVersion) CopyContentFrom(src *ContentVersion) {
	v.Title = src.Title
	v.MenuTitle = src.MenuTitle
	v.PageTitle = src.PageTitle
	v.MetaDescription = src.MetaDescription
	v.Slug = src.Slug
	v.HasURLOverwrite = src.HasURLOverwrite
	v.Redirect = src.Redirect
	v.Content = src.Content
	v.Fingerprint = src.Fingerprint
	if src.HasURLOverwrite {
		v.Path = src.Path
	}
}
