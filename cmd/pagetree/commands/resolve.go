package commands

import (
	"fmt"
)

// ResolveCmd implements the 'resolve' command.
type ResolveCmd struct {
	Path string `arg:"" help:"Public path, with or without slashes"`
	Site string `help:"Site to resolve in (required with several sites)"`
	Lang string `help:"Language (default: the site's default language)"`
}

func (c *ResolveCmd) Run(g *Global, root *CLI) error {
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

	res, err := rt.service.ResolvePath(ctx, site, lang, c.Path)
	if err != nil {
		return err
	}
	fmt.Printf("page:  #%d (public #%d)\n", res.Page.DraftID, res.Page.ID)
	fmt.Printf("title: %s\n", res.Version.Title)
	fmt.Printf("path:  /%s\n", res.Version.Path)
	if res.Redirect != "" {
		fmt.Printf("redirect: %s\n", res.Redirect)
	}
	return nil
}
