package commands

import (
	"git.home.luguber.info/inful/specreplay/internal/interaction"
)

// IngestCmd implements the 'ingest' command.
type IngestCmd struct {
	File string `short:"f" default:"-" help:"Interaction JSON document; - reads stdin"`
}

func (i *IngestCmd) Run(g *Global, _ *CLI) error {
	in, err := openInput(i.File)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	h, err := interaction.IngestReader(in)
	if err != nil {
		return err
	}
	return writeJSON(g.Out, h)
}
