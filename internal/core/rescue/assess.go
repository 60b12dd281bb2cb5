// Package rescue classifies how far an interrupted run actually progressed,
// using only on-disk evidence, and proposes a safe continuation. It is part
// of the Functional Core - callers list the images directory and pass the
// file names in; nothing here touches the filesystem.
package rescue

import (
	"sort"

	"github.com/example/gemscreen/internal/core/well"
)

// Status is the continuation decision for an interrupted well.
type Status string

const (
	// StatusContinueRound1 means round-1 pairs are incomplete and the
	// missing FOVs can be re-imaged (stale partials may be overwritten).
	StatusContinueRound1 Status = "continue_round1"
	// StatusReadyForRound2 means round 1 is complete with no round-2
	// evidence yet; the normal round-2 workflow applies.
	StatusReadyForRound2 Status = "ready_for_round2"
	// StatusContinueRound2 means round 1 is complete and round 2 is
	// present but incomplete; only the missing FOVs need re-imaging.
	StatusContinueRound2 Status = "continue_round2"
	// StatusAnalyzeCompletePairsOnly means round-2 evidence exists while
	// round 1 is incomplete. Round 1 can never be redone once stimulation
	// has occurred, so analysis is restricted to FOVs complete in both
	// rounds.
	StatusAnalyzeCompletePairsOnly Status = "analyze_complete_pairs_only"
	// StatusComplete means both rounds are fully imaged.
	StatusComplete Status = "complete"
)

// Assessment is the result of classifying a well's on-disk evidence.
type Assessment struct {
	Status        Status
	ExpectedFOVs  []string
	MissingRound1 []string // FOVs without a complete round-1 pair
	MissingRound2 []string // round-1-complete FOVs without a round-2 pair
	CompletePairs []string // FOVs complete in both rounds
}

// Assess classifies the round progression of a well given the expected FOV
// identifiers and the file names found in its images directory. A FOV counts
// as complete for a round when both the measure and refseg channels are
// present for that round; with the refseg channel disabled the measure
// channel alone decides.
func Assess(expectedFOVs []string, imageFiles []string, refsegEnabled bool) Assessment {
	type roundSet map[string]bool
	present := map[well.Category][2]roundSet{}
	for _, cat := range []well.Category{well.CategoryMeasure, well.CategoryRefseg} {
		present[cat] = [2]roundSet{{}, {}}
	}

	for _, name := range imageFiles {
		fovID, cat, instance, err := well.ParseFilename(name)
		if err != nil {
			// Malformed names are not evidence.
			continue
		}
		if instance != 1 && instance != 2 {
			continue
		}
		if sets, ok := present[cat]; ok {
			sets[instance-1][fovID] = true
		}
	}

	complete := func(round int, fovID string) bool {
		if !present[well.CategoryMeasure][round-1][fovID] {
			return false
		}
		if refsegEnabled && !present[well.CategoryRefseg][round-1][fovID] {
			return false
		}
		return true
	}

	hasRound2Evidence := len(present[well.CategoryMeasure][1]) > 0 ||
		(refsegEnabled && len(present[well.CategoryRefseg][1]) > 0)

	a := Assessment{ExpectedFOVs: append([]string(nil), expectedFOVs...)}
	for _, id := range expectedFOVs {
		r1 := complete(1, id)
		r2 := complete(2, id)
		if !r1 {
			a.MissingRound1 = append(a.MissingRound1, id)
		}
		if r1 && r2 {
			a.CompletePairs = append(a.CompletePairs, id)
		}
	}
	round1Complete := len(a.MissingRound1) == 0
	if round1Complete && hasRound2Evidence {
		for _, id := range expectedFOVs {
			if !complete(2, id) {
				a.MissingRound2 = append(a.MissingRound2, id)
			}
		}
	}
	round2Complete := round1Complete && len(a.MissingRound2) == 0

	sort.Strings(a.MissingRound1)
	sort.Strings(a.MissingRound2)
	sort.Strings(a.CompletePairs)

	switch {
	case !hasRound2Evidence && round1Complete:
		a.Status = StatusReadyForRound2
	case !hasRound2Evidence:
		a.Status = StatusContinueRound1
	case round1Complete && round2Complete:
		a.Status = StatusComplete
	case round1Complete:
		a.Status = StatusContinueRound2
	default:
		a.Status = StatusAnalyzeCompletePairsOnly
	}
	return a
}
