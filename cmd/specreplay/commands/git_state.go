package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/specreplay/internal/foundation"
	"git.home.luguber.info/inful/specreplay/internal/git"
	"git.home.luguber.info/inful/specreplay/internal/logfields"
	"git.home.luguber.info/inful/specreplay/internal/rfc"
)

// GitCmd implements the 'git-state' command.
type GitCmd struct {
	Spec     string `short:"s" required:"" help:"Specification id"`
	Repo     string `short:"r" default:"." help:"Path inside the git repository"`
	Message  string `short:"m" default:"Record git state" help:"Batch commit message"`
	ClientID string `name:"client-id" help:"Attach an event context with this client id"`
	DryRun   bool   `name:"dry-run" help:"Print the events instead of appending them"`
}

func (c *GitCmd) Run(g *Global, root *CLI) error {
	st, events, err := git.StateEvents(c.Repo, c.Message, c.eventContext(time.Now()))
	if err != nil {
		return err
	}

	if c.DryRun {
		return rfc.EncodeStream(g.Out, events)
	}

	store, err := openStore(root)
	if err != nil {
		return err
	}
	defer closeStore(store)

	if err := store.Append(context.Background(), c.Spec, events, map[string]string{
		"source":     "git-state",
		"repository": st.Repository,
	}); err != nil {
		return err
	}

	g.Logger.Info("Recorded git state",
		logfields.SpecID(c.Spec),
		logfields.Branch(st.Branch),
		logfields.Commit(st.Commit))
	_, err = fmt.Fprintf(g.Out, "%s %s\n", st.Branch, st.Commit)
	return err
}

func (c *GitCmd) eventContext(at time.Time) foundation.Option[rfc.EventContext] {
	if c.ClientID == "" {
		return foundation.None[rfc.EventContext]()
	}
	return foundation.Some(rfc.NewEventContext(c.ClientID, uuid.NewString(), at))
}
