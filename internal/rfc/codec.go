package rfc

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
)

// Wire keys of the single-key event envelope.
const (
	keyContributionAdded  = "contributionAdded"
	keyAPINamed           = "apiNamed"
	keyGitStateSet        = "gitStateSet"
	keyBatchCommitStarted = "batchCommitStarted"
	keyBatchCommitEnded   = "batchCommitEnded"
)

type variant struct {
	required []string
	decode   func(json.RawMessage) (Event, error)
}

func decodeAs[T Event](raw json.RawMessage) (Event, error) {
	var e T
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, err
	}
	return e, nil
}

var variants = map[string]variant{
	keyContributionAdded:  {required: []string{"id", "key", "value"}, decode: decodeAs[ContributionAdded]},
	keyAPINamed:           {required: []string{"name"}, decode: decodeAs[APINamed]},
	keyGitStateSet:        {required: []string{"branchName", "commitId"}, decode: decodeAs[GitStateSet]},
	keyBatchCommitStarted: {required: []string{"batchId", "commitMessage"}, decode: decodeAs[BatchCommitStarted]},
	keyBatchCommitEnded:   {required: []string{"batchId"}, decode: decodeAs[BatchCommitEnded]},
}

// Producers that serialize the variant name verbatim use PascalCase tags.
var legacyTags = map[string]string{
	TypeContributionAdded:  keyContributionAdded,
	TypeAPINamed:           keyAPINamed,
	TypeGitStateSet:        keyGitStateSet,
	TypeBatchCommitStarted: keyBatchCommitStarted,
	TypeBatchCommitEnded:   keyBatchCommitEnded,
}

func wireKey(e Event) (string, error) {
	switch e.(type) {
	case ContributionAdded:
		return keyContributionAdded, nil
	case APINamed:
		return keyAPINamed, nil
	case GitStateSet:
		return keyGitStateSet, nil
	case BatchCommitStarted:
		return keyBatchCommitStarted, nil
	case BatchCommitEnded:
		return keyBatchCommitEnded, nil
	default:
		return "", fmt.Errorf("rfc: cannot encode %T", e)
	}
}

// Decode parses one event envelope.
func Decode(raw []byte) (Event, error) {
	return decodeAt(raw, -1)
}

func decodeAt(raw []byte, index int) (Event, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &DecodeError{Index: index, Reason: "invalid envelope", Err: err}
	}
	if envelope == nil {
		return nil, &DecodeError{Index: index, Reason: "envelope is null"}
	}
	if len(envelope) != 1 {
		keys := make([]string, 0, len(envelope))
		for k := range envelope {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil, &DecodeError{Index: index, Reason: fmt.Sprintf("envelope must have exactly one key, got %d %v", len(keys), keys)}
	}

	var tag string
	for k := range envelope {
		tag = k
	}
	payload := envelope[tag]

	key := tag
	if canonical, ok := legacyTags[tag]; ok {
		key = canonical
	}
	v, ok := variants[key]
	if !ok {
		return nil, &UnknownEventError{Index: index, Tag: tag}
	}
	if err := checkRequired(payload, v.required); err != nil {
		return nil, &DecodeError{Index: index, Reason: tag, Err: err}
	}
	ev, err := v.decode(payload)
	if err != nil {
		return nil, &DecodeError{Index: index, Reason: tag, Err: err}
	}
	return ev, nil
}

func checkRequired(payload json.RawMessage, required []string) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("payload is null")
	}
	for _, name := range required {
		raw, ok := fields[name]
		if !ok {
			return fmt.Errorf("missing field %q", name)
		}
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return fmt.Errorf("field %q must not be null", name)
		}
	}
	return nil
}

// Encode writes e as a single-key envelope with lower-camel keys.
func Encode(e Event) ([]byte, error) {
	key, err := wireKey(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]Event{key: e})
}

// DecodeStream reads either a JSON array of envelopes or a sequence of
// envelopes (newline-delimited or concatenated). Stream order is preserved.
func DecodeStream(r io.Reader) ([]Event, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, &DecodeError{Index: 0, Reason: "read stream", Err: err}
	}

	if first == '[' {
		var raws []json.RawMessage
		if err := json.NewDecoder(br).Decode(&raws); err != nil {
			return nil, &DecodeError{Index: 0, Reason: "invalid event array", Err: err}
		}
		events := make([]Event, 0, len(raws))
		for i, raw := range raws {
			ev, err := decodeAt(raw, i)
			if err != nil {
				return nil, err
			}
			events = append(events, ev)
		}
		return events, nil
	}

	dec := json.NewDecoder(br)
	var events []Event
	for i := 0; ; i++ {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return events, nil
			}
			return nil, &DecodeError{Index: i, Reason: "invalid json", Err: err}
		}
		ev, err := decodeAt(raw, i)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
}

// EncodeStream writes events as newline-delimited envelopes.
func EncodeStream(w io.Writer, events []Event) error {
	for i, e := range events {
		b, err := Encode(e)
		if err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
		b = append(b, '\n')
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			_, _ = br.ReadByte()
		default:
			return b[0], nil
		}
	}
}
