package model

import "time"

// PageAttributes are the page-level fields shared by draft and public pages.
// Publishing copies them from the draft onto the public counterpart.
type PageAttributes struct {
	Template      string `json:"template,omitempty"`
	InNavigation  bool   `json:"in_navigation"`
	LoginRequired bool   `json:"login_required"`
	SoftRoot      bool   `json:"soft_root"`

	CreatedBy string    `json:"created_by,omitempty"`
	ChangedBy string    `json:"changed_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ChangedAt time.Time `json:"changed_at"`

	// PublicationDate and PublicationEndDate bound the window in which the
	// public copy resolves. Nil means unbounded.
	PublicationDate    *time.Time `json:"publication_date,omitempty"`
	PublicationEndDate *time.Time `json:"publication_end_date,omitempty"`
}

// VisibleAt reports whether t falls inside the publication window.
func (a PageAttributes) VisibleAt(t time.Time) bool {
	if a.PublicationDate != nil && t.Before(*a.PublicationDate) {
		return false
	}
	if a.PublicationEndDate != nil && !t.Before(*a.PublicationEndDate) {
		return false
	}
	return true
}

func (a PageAttributes) clone() PageAttributes {
	c := a
	if a.PublicationDate != nil {
		d := *a.PublicationDate
		c.PublicationDate = &d
	}
	if a.PublicationEndDate != nil {
		d := *a.PublicationEndDate
		c.PublicationEndDate = &d
	}
	return c
}

// DraftPage is the editable working copy of a page.
type DraftPage struct {
	ID     int64  `json:"id"`
	NodeID int64  `json:"node_id"`
	Site   string `json:"site"`
	// PublicID is nil until the page is published for the first time.
	PublicID *int64 `json:"public_id,omitempty"`
	PageAttributes
}

// HasPublic reports whether a public counterpart exists.
func (p *DraftPage) HasPublic() bool {
	return p.PublicID != nil
}

// Clone returns a deep copy.
func (p *DraftPage) Clone() *DraftPage {
	if p == nil {
		return nil
	}
	c := *p
	c.PageAttributes = p.PageAttributes.clone()
	if p.PublicID != nil {
		id := *p.PublicID
		c.PublicID = &id
	}
	return &c
}

// PublicPage is the externally visible copy of a draft.
type PublicPage struct {
	ID      int64  `json:"id"`
	NodeID  int64  `json:"node_id"`
	Site    string `json:"site"`
	DraftID int64  `json:"draft_id"`
	PageAttributes
}

// Clone returns a deep copy.
func (p *PublicPage) Clone() *PublicPage {
	if p == nil {
		return nil
	}
	c := *p
	c.PageAttributes = p.PageAttributes.clone()
	return &c
}
