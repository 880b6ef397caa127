package capture

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/specreplay/internal/foundation/errors"
)

// MaxInteractionBytes bounds the size of a posted capture document.
const MaxInteractionBytes = 4 << 20

// NewHandler serves POST /interactions, ingesting the request body.
// Accepted captures are answered with 202 and an Ack.
func NewHandler(ingester *Ingester, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	adapter := errors.NewHTTPErrorAdapter(logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /interactions", func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxInteractionBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if stderrors.As(err, &tooLarge) {
				http.Error(w, "interaction too large", http.StatusRequestEntityTooLarge)
				return
			}
			adapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryValidation, "failed to read request body").Build())
			return
		}

		h, err := ingester.Handle(r.Context(), raw)
		if err != nil {
			adapter.WriteErrorResponse(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(Ack{UUID: h.UUID, Accepted: true})
	})
	return mux
}
