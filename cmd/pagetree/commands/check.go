package commands

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/pagetree/internal/foundation/errors"
	"git.home.luguber.info/inful/pagetree/internal/monitor"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Site   string `help:"Only audit this site"`
	Repair bool   `help:"Renumber the trees when violations are found"`
}

// siteFilter narrows an auditor to a fixed list of sites.
type siteFilter struct {
	monitor.Auditor
	sites []string
}

func (f siteFilter) Sites() []string { return f.sites }

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	rt, err := openRuntime(g, root)
	if err != nil {
		return err
	}
	defer rt.Close()

	sites, err := rt.sites(c.Site)
	if err != nil {
		return err
	}
	m, err := monitor.New(siteFilter{Auditor: rt.service, sites: sites}, time.Minute, c.Repair, g.Logger)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	return reportAudit(ctx, m)
}

func reportAudit(ctx context.Context, m *monitor.Monitor) error {
	remaining := 0
	for _, r := range m.RunOnce(ctx) {
		if r.Err != nil {
			return r.Err
		}
		if r.Rewritten > 0 {
			fmt.Printf("%s: repaired, %d nodes renumbered\n", r.Site, r.Rewritten)
		}
		if len(r.Violations) == 0 {
			fmt.Printf("%s: ok\n", r.Site)
			continue
		}
		fmt.Printf("%s: %d violations\n", r.Site, len(r.Violations))
		for _, v := range r.Violations {
			fmt.Printf("  %s\n", v)
		}
		remaining += len(r.Violations)
	}
	if remaining > 0 {
		return errors.StructuralViolation("tree invariants violated").WithContext("violations", remaining).Build()
	}
	return nil
}
