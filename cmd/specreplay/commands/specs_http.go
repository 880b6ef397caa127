package commands

import (
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/specreplay/internal/eventstore"
	"git.home.luguber.info/inful/specreplay/internal/foundation/errors"
	"git.home.luguber.info/inful/specreplay/internal/metrics"
	"git.home.luguber.info/inful/specreplay/internal/replay"
)

func replayOptions(recorder metrics.Recorder, logger *slog.Logger) []replay.EngineOption {
	return []replay.EngineOption{replay.WithRecorder(recorder), replay.WithLogger(logger)}
}

// specHandler serves the current projection of one specification. Streams
// left with an open batch are returned with incomplete set.
func specHandler(projections *eventstore.Projections, logger *slog.Logger) http.Handler {
	adapter := errors.NewHTTPErrorAdapter(logger)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		p, err := projections.Get(r.Context(), id)
		if err != nil {
			adapter.WriteErrorResponse(w, r, err)
			return
		}
		spec, err := p.Snapshot()
		if err != nil {
			adapter.WriteErrorResponse(w, r, err)
			return
		}
		if spec.EventCount == 0 {
			adapter.WriteErrorResponse(w, r, errors.NotFoundError("specification not found").
				WithContext("spec_id", id).
				Build())
			return
		}
		digest, err := spec.Digest()
		if err != nil {
			adapter.WriteErrorResponse(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("ETag", `"`+digest+`"`)
		_ = writeJSON(w, ReplayOutput{Specification: spec, Digest: digest})
	})
}
