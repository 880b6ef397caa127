package commands

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/specreplay/internal/eventstore"
	"git.home.luguber.info/inful/specreplay/internal/logfields"
	"git.home.luguber.info/inful/specreplay/internal/replay"
	"git.home.luguber.info/inful/specreplay/internal/rfc"
)

// AppendCmd implements the 'append' command.
type AppendCmd struct {
	Spec   string `short:"s" required:"" help:"Specification id"`
	File   string `short:"f" default:"-" help:"Event stream (JSON array or JSON lines); - reads stdin"`
	Source string `help:"Source recorded in event metadata"`
	Check  bool   `help:"Replay stored and new events before appending and refuse an invalid stream"`
}

func (a *AppendCmd) Run(g *Global, root *CLI) error {
	in, err := openInput(a.File)
	if err != nil {
		return err
	}
	events, err := rfc.DecodeStream(in)
	_ = in.Close()
	if err != nil {
		return err
	}

	store, err := openStore(root)
	if err != nil {
		return err
	}
	defer closeStore(store)

	ctx := context.Background()
	if a.Check {
		stored, err := store.Load(ctx, a.Spec)
		if err != nil {
			return err
		}
		existing, err := eventstore.Decode(stored)
		if err != nil {
			return err
		}
		if _, err := replay.Replay(append(existing, events...)); err != nil {
			return err
		}
	}

	metadata := map[string]string{}
	if a.Source != "" {
		metadata["source"] = a.Source
	}
	if err := store.Append(ctx, a.Spec, events, metadata); err != nil {
		return err
	}

	g.Logger.Info("Appended events", logfields.SpecID(a.Spec), logfields.EventCount(len(events)),
		slog.String("file", a.File))
	_, err = fmt.Fprintf(g.Out, "appended %d events to %s\n", len(events), a.Spec)
	return err
}
