package spelling

import (
	"sort"

	"github.com/Conceptual-Machines/magda-harmony/internal/music"
)

// FewestNoteFifths picks the spelling whose notes sit closest together on the
// spiral of fifths. Every combination is scored with FifthsDistance in the
// order GenerateCombinations would produce it, and the lowest wins. On a tie
// the group whose mean spiral index is nearest SpiralMidpoint wins; after that
// the first group generated.
//
// n pitch classes with 2-3 spellings each give up to 3^n groups. Groups are
// scored as they are enumerated, so memory stays O(n).
func FewestNoteFifths(pcs []music.PitchClass) []music.Note {
	if len(pcs) == 0 {
		return []music.Note{}
	}
	if len(pcs) == 1 {
		return []music.Note{music.NoteFromSpelling(pcs[0].Spellings()[0], music.NoOctave)}
	}

	tables := make([][]music.Spelling, len(pcs))
	indices := make([][]int, len(pcs))
	for i, pc := range pcs {
		tables[i] = pc.Spellings()
		indices[i] = make([]int, len(tables[i]))
		for j, s := range tables[i] {
			indices[i][j] = FifthsIndex(music.NoteFromSpelling(s, music.NoOctave))
		}
	}

	var best fifthsScore
	choice := make([]int, len(pcs))
	bestChoice := make([]int, len(pcs))
	group := make([]int, len(pcs))
	for {
		for i, c := range choice {
			group[i] = indices[i][c]
		}
		if best.consider(group) {
			copy(bestChoice, choice)
		}

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
			break
		}
	}

	notes := make([]music.Note, len(pcs))
	for i, c := range bestChoice {
		notes[i] = music.NoteFromSpelling(tables[i][c], music.NoOctave)
	}
	return notes
}

// minNoteFifths returns the group with the lowest fifths distance. Groups are
// expected to be the same length.
func minNoteFifths(groups [][]music.Note) []music.Note {
	if len(groups) == 0 {
		return []music.Note{}
	}

	var best fifthsScore
	bestIdx := 0
	for i, g := range groups {
		if best.consider(spiralIndices(g)) {
			bestIdx = i
		}
	}
	return groups[bestIdx]
}

// fifthsScore tracks the best group seen so far by distance, then midpoint offset
type fifthsScore struct {
	seen     bool
	distance int
	offset   int
	scratch  []int
}

// consider scores a group of spiral indices and reports whether it replaced
// the current best. Earlier groups win full ties. indices is not modified.
func (s *fifthsScore) consider(indices []int) bool {
	s.scratch = append(s.scratch[:0], indices...)
	sort.Ints(s.scratch)
	distance := sortedFifthsDistance(s.scratch)

	sum := 0
	for _, idx := range indices {
		sum += idx
	}
	offset := absInt(sum - SpiralMidpoint*len(indices))

	switch {
	case !s.seen:
	case distance < s.distance:
	case distance == s.distance && offset < s.offset:
	default:
		return false
	}
	s.seen, s.distance, s.offset = true, distance, offset
	return true
}

// FifthsDistance sums the spiral distance between every pair of notes
func FifthsDistance(notes []music.Note) int {
	indices := spiralIndices(notes)
	sort.Ints(indices)
	return sortedFifthsDistance(indices)
}

func spiralIndices(notes []music.Note) []int {
	indices := make([]int, len(notes))
	for i, n := range notes {
		indices[i] = FifthsIndex(n)
	}
	return indices
}

// sortedFifthsDistance is FifthsDistance over ascending spiral indices
func sortedFifthsDistance(indices []int) int {
	// each adjacent gap is crossed by (i+1)*(n-i-1) pairs
	total := 0
	for i := 0; i < len(indices)-1; i++ {
		gap := indices[i+1] - indices[i]
		total += gap * (i + 1) * (len(indices) - i - 1)
	}
	return total
}
