package replay

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"maps"
	"slices"

	"github.com/gowebpki/jcs"

	"git.home.luguber.info/inful/specreplay/internal/foundation"
)

// GitState is the git coordinate pair a specification corresponds to.
type GitState struct {
	BranchName string `json:"branchName"`
	CommitID   string `json:"commitId"`
}

// BatchCommit is a closed batch and the stream positions of its data events.
type BatchCommit struct {
	BatchID      string `json:"batchId"`
	Message      string `json:"message"`
	EventIndices []int  `json:"eventIndices"`
}

// Specification is the folded state of an event stream. Values returned by
// the engine are snapshots; mutating them does not affect the engine.
type Specification struct {
	Name          foundation.Option[string]    `json:"name"`
	Git           foundation.Option[GitState]  `json:"git"`
	Contributions map[string]map[string]string `json:"contributions"`
	Commits       []BatchCommit                `json:"commits"`
	EventCount    int                          `json:"eventCount"`

	// Incomplete is set when a batch was open at the snapshot point.
	Incomplete bool                      `json:"incomplete"`
	OpenBatch  foundation.Option[string] `json:"openBatch"`
}

func newSpecification() *Specification {
	return &Specification{
		Contributions: map[string]map[string]string{},
		Commits:       []BatchCommit{},
	}
}

// Contribution returns the value stored for id and key.
func (s *Specification) Contribution(id, key string) (string, bool) {
	byKey, ok := s.Contributions[id]
	if !ok {
		return "", false
	}
	v, ok := byKey[key]
	return v, ok
}

// Clone returns a deep copy.
func (s *Specification) Clone() *Specification {
	out := *s
	out.Contributions = make(map[string]map[string]string, len(s.Contributions))
	for id, byKey := range s.Contributions {
		out.Contributions[id] = maps.Clone(byKey)
	}
	out.Commits = make([]BatchCommit, len(s.Commits))
	for i, c := range s.Commits {
		c.EventIndices = slices.Clone(c.EventIndices)
		out.Commits[i] = c
	}
	return &out
}

// Canonical returns the RFC 8785 canonical JSON form of the specification.
func (s *Specification) Canonical() ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return jcs.Transform(raw)
}

// Digest returns the hex SHA-256 of Canonical. Two replays of the same stream
// produce the same digest.
func (s *Specification) Digest() (string, error) {
	c, err := s.Canonical()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(c)
	return hex.EncodeToString(sum[:]), nil
}
