package commands

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/pagetree/internal/store"
)

// TreeCmd implements the 'tree' command.
type TreeCmd struct {
	Site string `help:"Site to print (required with several sites)"`
	Lang string `help:"Language of the paths shown (default: the site's default language)"`
}

func (c *TreeCmd) Run(g *Global, root *CLI) error {
	rt, err := openRuntime(g, root)
	if err != nil {
		return err
	}
	defer rt.Close()

	site, lang, err := rt.siteLanguage(c.Site, c.Lang)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	return rt.printTree(ctx, site, lang, 0, 0)
}

func (rt *runtime) printTree(ctx context.Context, site, lang string, pageID int64, depth int) error {
	children, err := rt.service.Children(ctx, site, pageID)
	if err != nil {
		return err
	}
	for _, p := range children {
		label := "(no translation)"
		v, err := rt.service.Version(ctx, site, p.ID, lang)
		switch {
		case err == nil:
			label = fmt.Sprintf("/%s [%s]", v.Path, v.State)
		case !stderrors.Is(err, store.ErrNotFound):
			return err
		}
		fmt.Printf("%s#%d %s\n", strings.Repeat("  ", depth), p.ID, label)
		if err := rt.printTree(ctx, site, lang, p.ID, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// siteLanguage fills in the site and its default language when omitted.
func (rt *runtime) siteLanguage(site, lang string) (string, string, error) {
	site, err := rt.defaultSite(site)
	if err != nil {
		return "", "", err
	}
	if lang == "" {
		if sc, ok := rt.cfg.Site(site); ok {
			lang = sc.DefaultLanguage
		}
	}
	return site, lang, nil
}
