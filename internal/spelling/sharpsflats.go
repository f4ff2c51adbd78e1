package spelling

import (
	"github.com/Conceptual-Machines/magda-harmony/internal/logger"
	"github.com/Conceptual-Machines/magda-harmony/internal/music"
)

// NotePair is two notes judged together
type NotePair struct {
	First  music.Note
	Second music.Note
}

// AllSharpsOrAllFlats spells black keys either all as sharps or all as flats,
// whichever leaves fewer suboptimally spelled pairs. White keys stay natural.
// Sharps win ties. Output order follows input order.
func AllSharpsOrAllFlats(pcs []music.PitchClass) []music.Note {
	if len(pcs) == 0 {
		return []music.Note{}
	}

	sharps := spellUniformly(pcs, music.Sharp)
	flats := spellUniformly(pcs, music.Flat)

	if CountSuboptimalPairs(sharps) <= CountSuboptimalPairs(flats) {
		return sharps
	}
	return flats
}

// spellUniformly uses the given accidental for black keys and naturals otherwise
func spellUniformly(pcs []music.PitchClass, acc music.Accidental) []music.Note {
	notes := make([]music.Note, 0, len(pcs))
	for _, pc := range pcs {
		want := music.Natural
		if pc.IsBlackKey() {
			want = acc
		}
		s, ok := pc.SpellingWith(want)
		if !ok {
			// unreachable with the fixed table
			s = pc.Spellings()[0]
		}
		notes = append(notes, music.NoteFromSpelling(s, music.NoOctave))
	}
	return notes
}

// SuboptimalPairs returns every pair of notes that is spelled badly relative to
// each other. Pairs of two white keys are never reported. Notes must not
// repeat a pitch class.
func SuboptimalPairs(notes []music.Note) []NotePair {
	var pairs []NotePair
	for i := 0; i < len(notes)-1; i++ {
		for j := i + 1; j < len(notes); j++ {
			a, b := notes[i], notes[j]
			if !a.PitchClass().IsBlackKey() && !b.PitchClass().IsBlackKey() {
				continue
			}
			if IsSuboptimallySpelled(a, b) {
				pairs = append(pairs, NotePair{First: a, Second: b})
			}
		}
	}
	return pairs
}

// CountSuboptimalPairs is len(SuboptimalPairs(notes))
func CountSuboptimalPairs(notes []music.Note) int {
	return len(SuboptimalPairs(notes))
}

// IsSuboptimallySpelled reports whether two notes are spelled with letters
// that do not match the interval between them, e.g. E-Ab instead of E-G#.
// The letters are folded to their closest diatonic distance and the semitones
// to an interval class; 2nds must span 1-2 semitones, 3rds 3-4 and 4ths 5-6.
// The same letter twice is always suboptimal.
func IsSuboptimallySpelled(a, b music.Note) bool {
	steps := absInt(a.Letter().ScaleDegree() - b.Letter().ScaleDegree())
	if steps > 3 {
		steps = music.NumLetters - steps
	}

	semitones := absInt(int(a.PitchClass()) - int(b.PitchClass()))
	intervalClass := semitones
	if semitones > 6 {
		intervalClass = music.NumPitchClasses - semitones
	}

	switch steps {
	case 0:
		return true
	case 1:
		return intervalClass < 1 || intervalClass > 2
	case 2:
		return intervalClass < 3 || intervalClass > 4
	case 3:
		return intervalClass < 5 || intervalClass > 6
	default:
		logger.Warn("Letter distance out of range while judging pair spelling", logger.Fields{
			"first":  a.String(),
			"second": b.String(),
			"steps":  steps,
		})
		return false
	}
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
