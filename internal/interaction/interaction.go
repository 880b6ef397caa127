// Package interaction models one captured HTTP request/response exchange and
// validates raw captures into that model.
package interaction

import (
	"git.home.luguber.info/inful/specreplay/internal/arbitrary"
	"git.home.luguber.info/inful/specreplay/internal/foundation"
)

// HTTPInteraction is one observed exchange. Values are immutable once
// ingested and never shared between callers.
type HTTPInteraction struct {
	UUID     string   `json:"uuid"`
	Request  Request  `json:"request"`
	Response Response `json:"response"`
	Tags     []Tag    `json:"tags"`
}

// Request is the captured request side.
type Request struct {
	Host   string         `json:"host"`
	Method string         `json:"method"`
	Path   string         `json:"path"`
	Query  arbitrary.Data `json:"query"`
	// Headers is only present when the capture recorded request headers.
	Headers foundation.Option[arbitrary.Data] `json:"-"`
	Body    Body                              `json:"body"`
}

// Response is the captured response side.
type Response struct {
	StatusCode uint16         `json:"statusCode"`
	Headers    arbitrary.Data `json:"headers"`
	// Body is only present when the capture recorded a response body.
	Body foundation.Option[Body] `json:"-"`
}

// Body is a payload with its declared content type.
type Body struct {
	ContentType foundation.Option[string] `json:"contentType"`
	Value       arbitrary.Data            `json:"value"`
}

// Tag is a free-form label. Order is significant and duplicates are allowed.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Tag returns the value of the first tag with the given name.
func (h *HTTPInteraction) Tag(name string) (string, bool) {
	for _, t := range h.Tags {
		if t.Name == name {
			return t.Value, true
		}
	}
	return "", false
}
