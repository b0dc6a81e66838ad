package commands

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/pagetree/internal/foundation/errors"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	PageID int64  `arg:"" name:"page-id" help:"Draft page id"`
	Site   string `help:"Site of the page (required with several sites)"`
	Lang   string `help:"Language (default: the site's default language)"`
}

func (c *HistoryCmd) Run(g *Global, root *CLI) error {
	rt, err := openRuntime(g, root)
	if err != nil {
		return err
	}
	defer rt.Close()

	if rt.events == nil {
		return errors.ConfigError("publish history requires events.enabled").Build()
	}
	site, lang, err := rt.siteLanguage(c.Site, c.Lang)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	entries, err := rt.service.History(ctx, site, c.PageID, lang)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no publish history")
		return nil
	}
	for _, e := range entries {
		via := ""
		if e.Cascaded {
			via = " (cascaded)"
		}
		fmt.Printf("%s  %-16s %s -> %s%s\n", e.At.Format(time.RFC3339), e.EventType, e.From, e.To, via)
	}
	return nil
}
