package spelling

import "github.com/Conceptual-Machines/magda-harmony/internal/music"

// GenerateCombinations enumerates every way to spell the pitch classes: the
// Cartesian product of each pitch class's spelling table. The i-th note of
// every group spells the i-th input pitch class. Groups come out in odometer
// order with the last position varying fastest, so the first group uses each
// pitch class's default spelling. No scoring or filtering happens here.
func GenerateCombinations(pcs []music.PitchClass) [][]music.Note {
	if len(pcs) == 0 {
		return [][]music.Note{}
	}

	tables := make([][]music.Spelling, len(pcs))
	for i, pc := range pcs {
		tables[i] = pc.Spellings()
	}

	groups := make([][]music.Note, 0, CombinationCount(pcs))
	choice := make([]int, len(pcs))
	for {
		group := make([]music.Note, len(pcs))
		for i, c := range choice {
			group[i] = music.NoteFromSpelling(tables[i][c], music.NoOctave)
		}
		groups = append(groups, group)

		// advance the odometer
		pos := len(choice) - 1
		for pos >= 0 {
			choice[pos]++
			if choice[pos] < len(tables[pos]) {
				break
			}
			choice[pos] = 0
			pos--
		}
		if pos < 0 {
			return groups
		}
	}
}

// CombinationCount is the number of groups GenerateCombinations would return
func CombinationCount(pcs []music.PitchClass) int {
	if len(pcs) == 0 {
		return 0
	}
	count := 1
	for _, pc := range pcs {
		count *= len(pc.Spellings())
	}
	return count
}
