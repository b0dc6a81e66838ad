package model

import (
	"strings"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"
)

// fingerprintFields is the canonical metadata hashed together with the
// content body. Path is excluded: it is derived from the tree, not edited.
type fingerprintFields struct {
	Title           string `yaml:"title"`
	MenuTitle       string `yaml:"menu_title,omitempty"`
	PageTitle       string `yaml:"page_title,omitempty"`
	MetaDescription string `yaml:"meta_description,omitempty"`
	Slug            string `yaml:"slug"`
	Overwrite       string `yaml:"overwrite,omitempty"`
	Redirect        string `yaml:"redirect,omitempty"`
}

// ComputeFingerprint returns the content fingerprint of v: the editable
// metadata serialized as YAML plus the content body.
func (v *ContentVersion) ComputeFingerprint() (string, error) {
	fields := fingerprintFields{
		Title:           v.Title,
		MenuTitle:       v.MenuTitle,
		PageTitle:       v.PageTitle,
		MetaDescription: v.MetaDescription,
		Slug:            v.Slug,
		Redirect:        v.Redirect,
	}
	if v.HasURLOverwrite {
		fields.Overwrite = v.Path
	}
	serialized, err := yaml.Marshal(fields)
	if err != nil {
		return "", err
	}
	frontmatter := strings.TrimSuffix(string(serialized), "\n")
	return mdfp.CalculateFingerprintFromParts(frontmatter, v.Content), nil
}

// RefreshFingerprint recomputes and stores the fingerprint, reporting whether it changed.
func (v *ContentVersion) RefreshFingerprint() (bool, error) {
	fp, err := v.ComputeFingerprint()
	if err != nil {
		return false, err
	}
	changed := fp != v.Fingerprint
	v.Fingerprint = fp
	return changed, nil
}
