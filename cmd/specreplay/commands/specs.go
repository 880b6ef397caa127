package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/specreplay/internal/eventstore"
)

// SpecsCmd implements the 'specs' command.
type SpecsCmd struct {
	Status bool `help:"Fold every specification and show its state"`
}

func (s *SpecsCmd) Run(g *Global, root *CLI) error {
	store, err := openStore(root)
	if err != nil {
		return err
	}
	defer closeStore(store)

	ctx := context.Background()
	ids, err := store.Specs(ctx)
	if err != nil {
		return err
	}
	if !s.Status {
		for _, id := range ids {
			if _, err := fmt.Fprintln(g.Out, id); err != nil {
				return err
			}
		}
		return nil
	}

	projections := eventstore.NewProjections(store)
	for _, id := range ids {
		if _, err := fmt.Fprintf(g.Out, "%s\t%s\n", id, projectionStatus(ctx, projections, id)); err != nil {
			return err
		}
	}
	return nil
}

func projectionStatus(ctx context.Context, projections *eventstore.Projections, id string) string {
	p, err := projections.Get(ctx, id)
	if err != nil {
		return "invalid: " + err.Error()
	}
	spec, err := p.Snapshot()
	if err != nil {
		return "invalid: " + err.Error()
	}
	if spec.Incomplete {
		return fmt.Sprintf("incomplete (%d events, batch %s open)", spec.EventCount, spec.OpenBatch.UnwrapOr(""))
	}
	return fmt.Sprintf("ok (%d events, %d commits)", spec.EventCount, len(spec.Commits))
}
