package replay

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"git.home.luguber.info/inful/specreplay/internal/rfc"
)

// buildStream turns generated opcodes into a well-formed stream: 0-2 emit data
// events, 3 opens or closes a batch. A batch left open is closed at the end.
func buildStream(ops []int, words []string) []rfc.Event {
	word := func(i int) string {
		if len(words) == 0 {
			return "w"
		}
		return words[i%len(words)]
	}
	var events []rfc.Event
	open := ""
	batches := 0
	for i, op := range ops {
		switch op {
		case 0:
			events = append(events, rfc.ContributionAdded{ID: "e" + word(i), Key: "k" + word(i+1), Value: word(i + 2)})
		case 1:
			events = append(events, rfc.APINamed{Name: word(i)})
		case 2:
			events = append(events, rfc.GitStateSet{BranchName: word(i), CommitID: word(i + 1)})
		default:
			if open == "" {
				batches++
				open = fmt.Sprintf("b%d", batches)
				events = append(events, rfc.BatchCommitStarted{BatchID: open, CommitMessage: word(i)})
			} else {
				events = append(events, rfc.BatchCommitEnded{BatchID: open})
				open = ""
			}
		}
	}
	if open != "" {
		events = append(events, rfc.BatchCommitEnded{BatchID: open})
	}
	return events
}

func TestReplayDeterminism(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("replaying the same stream twice yields identical specifications", prop.ForAll(
		func(ops []int, words []string) bool {
			events := buildStream(ops, words)
			first, err1 := Replay(events)
			second, err2 := Replay(events)
			if err1 != nil || err2 != nil {
				return false
			}
			d1, err1 := first.Digest()
			d2, err2 := second.Digest()
			if err1 != nil || err2 != nil {
				return false
			}
			return d1 == d2 && reflect.DeepEqual(first, second)
		},
		gen.SliceOf(gen.IntRange(0, 3)),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}

func TestReplayLastWriteWins(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("name equals the last APINamed in stream order", prop.ForAll(
		func(names []string, ops []int) bool {
			if len(names) == 0 {
				return true
			}
			events := buildStream(ops, names)
			for _, n := range names {
				events = append(events, rfc.APINamed{Name: n})
			}
			spec, err := Replay(events)
			if err != nil {
				return false
			}
			return spec.Name.Unwrap() == names[len(names)-1]
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.IntRange(0, 3)),
	))

	properties.TestingRun(t)
}

func TestReplayBatchAtomicity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("a matched batch records exactly the data events between its markers", prop.ForAll(
		func(before, inside, after int) bool {
			var events []rfc.Event
			for i := 0; i < before; i++ {
				events = append(events, rfc.APINamed{Name: "before"})
			}
			events = append(events, rfc.BatchCommitStarted{BatchID: "b", CommitMessage: "m"})
			want := make([]int, 0, inside)
			for i := 0; i < inside; i++ {
				want = append(want, len(events))
				events = append(events, rfc.ContributionAdded{ID: "e", Key: fmt.Sprint(i), Value: "v"})
			}
			events = append(events, rfc.BatchCommitEnded{BatchID: "b"})
			for i := 0; i < after; i++ {
				events = append(events, rfc.GitStateSet{BranchName: "main", CommitID: fmt.Sprint(i)})
			}

			spec, err := Replay(events)
			if err != nil || len(spec.Commits) != 1 {
				return false
			}
			return reflect.DeepEqual(spec.Commits[0].EventIndices, want)
		},
		gen.IntRange(0, 10),
		gen.IntRange(0, 10),
		gen.IntRange(0, 10),
	))

	properties.TestingRun(t)
}

func TestReplayRejectsUnopenedEnd(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("an end with no open batch never yields a specification", prop.ForAll(
		func(ops []int, words []string, id string) bool {
			events := append(buildStream(ops, words), rfc.BatchCommitEnded{BatchID: "x" + id})
			spec, err := Replay(events)
			return spec == nil && err != nil && errors.Is(err, ErrUnopenedBatch)
		},
		gen.SliceOf(gen.IntRange(0, 3)),
		gen.SliceOf(gen.AlphaString()),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
