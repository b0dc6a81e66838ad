package config

import "git.home.luguber.info/inful/pagetree/internal/treepath"

// Site returns the configuration of site id.
func (c *Config) Site(id string) (*SiteConfig, bool) {
	for i := range c.Sites {
		if c.Sites[i].ID == id {
			return &c.Sites[i], true
		}
	}
	return nil, false
}

// SiteIDs lists the configured site ids in file order.
func (c *Config) SiteIDs() []string {
	ids := make([]string, 0, len(c.Sites))
	for _, s := range c.Sites {
		ids = append(ids, s.ID)
	}
	return ids
}

// HasLanguage reports whether language is configured for site.
func (c *Config) HasLanguage(site, language string) bool {
	s, ok := c.Site(site)
	if !ok {
		return false
	}
	return s.language(normalizeLanguage(language)) != nil
}

// Fallbacks returns the languages tried, in order, when a parent page has no
// translation in language. Without an explicit list a language falls back
// to the site's default language.
func (c *Config) Fallbacks(site, language string) []string {
	s, ok := c.Site(site)
	if !ok {
		return nil
	}
	l := s.language(normalizeLanguage(language))
	if l == nil {
		return nil
	}
	if len(l.Fallbacks) > 0 {
		return append([]string(nil), l.Fallbacks...)
	}
	if l.Code != s.DefaultLanguage {
		return []string{s.DefaultLanguage}
	}
	return nil
}

func (s *SiteConfig) language(code string) *LanguageConfig {
	for i := range s.Languages {
		if s.Languages[i].Code == code {
			return &s.Languages[i]
		}
	}
	return nil
}

// Codec builds the path codec described by the tree section.
func (c *Config) Codec() (*treepath.Codec, error) {
	return treepath.New(c.Tree.Alphabet, c.Tree.StepLen)
}
