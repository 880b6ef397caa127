package interaction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"git.home.luguber.info/inful/specreplay/internal/arbitrary"
	"git.home.luguber.info/inful/specreplay/internal/foundation"
)

// Status codes outside this range are rejected.
const (
	MinStatusCode uint16 = 100
	MaxStatusCode uint16 = 599
)

var standardMethods = foundation.NewNormalizer(map[string]string{
	http.MethodGet:     http.MethodGet,
	http.MethodHead:    http.MethodHead,
	http.MethodPost:    http.MethodPost,
	http.MethodPut:     http.MethodPut,
	http.MethodDelete:  http.MethodDelete,
	http.MethodConnect: http.MethodConnect,
	http.MethodOptions: http.MethodOptions,
	http.MethodTrace:   http.MethodTrace,
	http.MethodPatch:   http.MethodPatch,
})

var validator = foundation.NewValidatorChain(
	foundation.Field(func(h *HTTPInteraction) string { return h.UUID }, foundation.NotEmpty("uuid")),
	foundation.Field(func(h *HTTPInteraction) uint16 { return h.Response.StatusCode },
		foundation.InRange("response.statusCode", MinStatusCode, MaxStatusCode)),
)

// NormalizeMethod upper-cases standard HTTP verbs matched case-insensitively.
// Any other method is returned unchanged.
func NormalizeMethod(method string) string {
	if m, ok := standardMethods.Lookup(method); ok {
		return m
	}
	return method
}

// Ingest validates one raw capture and returns the normalized interaction.
// Ingest has no shared state and is safe for concurrent use.
func Ingest(raw []byte) (*HTTPInteraction, error) {
	var w wireInteraction
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&w); err != nil {
		return nil, &DecodeError{Reason: "invalid json", Err: err}
	}
	if dec.More() {
		return nil, &DecodeError{Reason: "trailing data after interaction"}
	}
	return fromWire(&w)
}

// IngestReader is Ingest over a reader holding a single interaction document.
func IngestReader(r io.Reader) (*HTTPInteraction, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &DecodeError{Reason: "read interaction", Err: err}
	}
	return Ingest(raw)
}

func fromWire(w *wireInteraction) (*HTTPInteraction, error) {
	switch {
	case w.UUID == nil:
		return nil, &DecodeError{Reason: `missing field "uuid"`}
	case w.Request == nil:
		return nil, &DecodeError{Reason: `missing field "request"`}
	case w.Response == nil:
		return nil, &DecodeError{Reason: `missing field "response"`}
	case w.Request.Host == nil:
		return nil, &DecodeError{Reason: `missing field "request.host"`}
	case w.Request.Method == nil:
		return nil, &DecodeError{Reason: `missing field "request.method"`}
	case w.Request.Path == nil:
		return nil, &DecodeError{Reason: `missing field "request.path"`}
	}

	status, err := parseStatusCode(w.Response.StatusCode)
	if err != nil {
		return nil, err
	}

	h := &HTTPInteraction{
		UUID: *w.UUID,
		Request: Request{
			Host:   *w.Request.Host,
			Method: NormalizeMethod(*w.Request.Method),
			Path:   *w.Request.Path,
		},
		Response: Response{StatusCode: status},
		Tags:     w.Tags,
	}
	if h.Tags == nil {
		h.Tags = []Tag{}
	}

	if h.Request.Query, err = objectOrEmpty("request.query", w.Request.Query); err != nil {
		return nil, err
	}
	if len(w.Request.Headers) > 0 {
		headers, err := arbitrary.Parse(w.Request.Headers)
		if err != nil {
			return nil, &DecodeError{Reason: "request.headers", Err: err}
		}
		h.Request.Headers = foundation.Some(headers)
	}
	if h.Request.Body, err = bodyFromWire("request.body", w.Request.Body); err != nil {
		return nil, err
	}
	if h.Response.Headers, err = objectOrEmpty("response.headers", w.Response.Headers); err != nil {
		return nil, err
	}
	if w.Response.Body != nil {
		body, err := bodyFromWire("response.body", w.Response.Body)
		if err != nil {
			return nil, err
		}
		h.Response.Body = foundation.Some(body)
	}

	if result := validator.Validate(h); !result.Valid {
		return nil, &ValidationError{UUID: h.UUID, Fields: result.Errors}
	}
	return h, nil
}

func parseStatusCode(raw json.RawMessage) (uint16, error) {
	literal := string(bytes.TrimSpace(raw))
	if literal == "" || literal == "null" {
		return 0, &DecodeError{Reason: `missing field "response.statusCode"`}
	}
	if literal[0] == '"' || literal == "true" || literal == "false" || literal[0] == '{' || literal[0] == '[' {
		return 0, &DecodeError{Reason: "response.statusCode must be a number"}
	}
	code, err := strconv.ParseUint(literal, 10, 16)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, &DecodeError{Reason: fmt.Sprintf("response.statusCode %s does not fit in uint16", literal), Err: err}
		}
		return 0, &DecodeError{Reason: fmt.Sprintf("response.statusCode %s is not an unsigned integer", literal), Err: err}
	}
	return uint16(code), nil
}

// objectOrEmpty parses an arbitrary payload, treating absent or null as {}.
func objectOrEmpty(field string, raw json.RawMessage) (arbitrary.Data, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return arbitrary.EmptyObject(), nil
	}
	d, err := arbitrary.Parse(trimmed)
	if err != nil {
		return arbitrary.Data{}, &DecodeError{Reason: field, Err: err}
	}
	return d, nil
}

func bodyFromWire(field string, w *wireBody) (Body, error) {
	if w == nil {
		return Body{Value: arbitrary.EmptyObject()}, nil
	}
	value, err := objectOrEmpty(field+".value", w.Value)
	if err != nil {
		return Body{}, err
	}
	return Body{ContentType: w.ContentType, Value: value}, nil
}
