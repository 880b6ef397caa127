package interaction

import (
	"encoding/json"

	"git.home.luguber.info/inful/specreplay/internal/arbitrary"
	"git.home.luguber.info/inful/specreplay/internal/foundation"
)

// Wire shapes keep absent and null distinguishable so defaults can be applied
// after decoding.
type wireInteraction struct {
	UUID     *string       `json:"uuid"`
	Request  *wireRequest  `json:"request"`
	Response *wireResponse `json:"response"`
	Tags     []Tag         `json:"tags"`
}

type wireRequest struct {
	Host    *string         `json:"host"`
	Method  *string         `json:"method"`
	Path    *string         `json:"path"`
	Query   json.RawMessage `json:"query"`
	Headers json.RawMessage `json:"headers"`
	Body    *wireBody       `json:"body"`
}

type wireResponse struct {
	StatusCode json.RawMessage `json:"statusCode"`
	Headers    json.RawMessage `json:"headers"`
	Body       *wireBody       `json:"body"`
}

type wireBody struct {
	ContentType foundation.Option[string] `json:"contentType"`
	Value       json.RawMessage           `json:"value"`
}

type outRequest struct {
	Host    string          `json:"host"`
	Method  string          `json:"method"`
	Path    string          `json:"path"`
	Query   arbitrary.Data  `json:"query"`
	Headers *arbitrary.Data `json:"headers,omitempty"`
	Body    Body            `json:"body"`
}

type outResponse struct {
	StatusCode uint16         `json:"statusCode"`
	Headers    arbitrary.Data `json:"headers"`
	Body       *Body          `json:"body,omitempty"`
}

// MarshalJSON writes the capture wire format. Optional request headers and
// response body are omitted when absent.
func (r Request) MarshalJSON() ([]byte, error) {
	return json.Marshal(outRequest{
		Host:    r.Host,
		Method:  r.Method,
		Path:    r.Path,
		Query:   r.Query,
		Headers: r.Headers.ToPointer(),
		Body:    r.Body,
	})
}

// MarshalJSON writes the capture wire format.
func (r Response) MarshalJSON() ([]byte, error) {
	return json.Marshal(outResponse{
		StatusCode: r.StatusCode,
		Headers:    r.Headers,
		Body:       r.Body.ToPointer(),
	})
}

// MarshalJSON writes the capture wire format with tags as an array, never null.
func (h HTTPInteraction) MarshalJSON() ([]byte, error) {
	type plain HTTPInteraction
	p := plain(h)
	if p.Tags == nil {
		p.Tags = []Tag{}
	}
	return json.Marshal(p)
}
