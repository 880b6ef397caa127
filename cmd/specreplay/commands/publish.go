package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/specreplay/internal/capture"
	"git.home.luguber.info/inful/specreplay/internal/interaction"
	"git.home.luguber.info/inful/specreplay/internal/logfields"
	"git.home.luguber.info/inful/specreplay/internal/retry"
)

// PublishCmd implements the 'publish' command.
type PublishCmd struct {
	File    string `short:"f" default:"-" help:"Interaction JSON document; - reads stdin"`
	Subject string `help:"Override the capture subject"`
}

func (p *PublishCmd) Run(g *Global, root *CLI) error {
	raw, err := readInput(p.File)
	if err != nil {
		return err
	}
	h, err := interaction.Ingest(raw)
	if err != nil {
		return err
	}

	cfg := root.Settings()
	subject := cfg.Capture.Subject
	if p.Subject != "" {
		subject = p.Subject
	}

	conn, err := capture.Connect(context.Background(), cfg.Capture.NATSURL, retry.FromConfig(cfg.Retry), "specreplay-publish")
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := capture.NewPublisher(conn, subject).Publish(h); err != nil {
		return err
	}
	if err := conn.Flush(); err != nil {
		return err
	}

	g.Logger.Info("Published interaction", logfields.InteractionUUID(h.UUID), logfields.Subject(subject))
	_, err = fmt.Fprintln(g.Out, h.UUID)
	return err
}
