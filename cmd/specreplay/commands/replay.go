package commands

import (
	"context"
	"time"

	"git.home.luguber.info/inful/specreplay/internal/eventstore"
	"git.home.luguber.info/inful/specreplay/internal/foundation/errors"
	"git.home.luguber.info/inful/specreplay/internal/logfields"
	"git.home.luguber.info/inful/specreplay/internal/replay"
	"git.home.luguber.info/inful/specreplay/internal/rfc"
)

// ReplayCmd implements the 'replay' command.
type ReplayCmd struct {
	Spec  string `short:"s" help:"Specification id to replay from the event log"`
	File  string `short:"f" help:"Replay an event stream file instead of the log"`
	Limit int    `short:"n" help:"Replay only the first N events; an open batch at the cut is reported as incomplete"`
}

// ReplayOutput is printed by the replay command.
type ReplayOutput struct {
	Specification *replay.Specification `json:"specification"`
	Digest        string                `json:"digest"`
}

func (r *ReplayCmd) Validate() error {
	if (r.Spec == "") == (r.File == "") {
		return errors.ValidationError("exactly one of --spec or --file is required").Build()
	}
	return nil
}

func (r *ReplayCmd) Run(g *Global, root *CLI) error {
	events, err := r.load(root)
	if err != nil {
		return err
	}

	start := time.Now()
	var spec *replay.Specification
	if r.Limit > 0 {
		spec, err = replay.ReplayN(events, r.Limit, replay.WithLogger(g.Logger))
	} else {
		spec, err = replay.Replay(events, replay.WithLogger(g.Logger))
	}
	if err != nil {
		return err
	}

	digest, err := spec.Digest()
	if err != nil {
		return err
	}
	g.Logger.Debug("Replayed specification",
		logfields.SpecID(r.Spec),
		logfields.EventCount(spec.EventCount),
		logfields.Digest(digest),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))

	return writeJSON(g.Out, ReplayOutput{Specification: spec, Digest: digest})
}

func (r *ReplayCmd) load(root *CLI) ([]rfc.Event, error) {
	if r.File != "" {
		in, err := openInput(r.File)
		if err != nil {
			return nil, err
		}
		defer func() { _ = in.Close() }()
		return rfc.DecodeStream(in)
	}

	store, err := openStore(root)
	if err != nil {
		return nil, err
	}
	defer closeStore(store)

	stored, err := store.Load(context.Background(), r.Spec)
	if err != nil {
		return nil, err
	}
	return eventstore.Decode(stored)
}
