package spelling

import "github.com/Conceptual-Machines/magda-harmony/internal/music"

const (
	// letter steps in a perfect fifth
	stepsInFifth = 4
	// each tier starts on F so the accidental changes across B-F, the only
	// non-perfect fifth between letter names
	stepsFIsAboveC = 3
)

// SpiralLength is the number of entries in the spiral of fifths
const SpiralLength = music.NumLetters * music.NumAccidentals

// SpiralMidpoint is the index of D natural, the centre of the spiral
const SpiralMidpoint = SpiralLength / 2

var (
	spiral      = buildSpiral()
	spiralIndex = buildSpiralIndex(spiral)
)

// buildSpiral lays out every letter/accidental spelling so neighbours are a
// perfect fifth apart: F C G D A E B per tier, tiers from double-flat to
// double-sharp.
func buildSpiral() [SpiralLength]music.Spelling {
	var out [SpiralLength]music.Spelling
	letters := music.AllLetters()
	i := 0
	for _, acc := range music.AllAccidentals() {
		for n := 0; n < music.NumLetters; n++ {
			letter := letters[(stepsInFifth*n+stepsFIsAboveC)%music.NumLetters]
			out[i] = music.Spelling{Letter: letter, Accidental: acc}
			i++
		}
	}
	return out
}

func buildSpiralIndex(s [SpiralLength]music.Spelling) map[music.Spelling]int {
	index := make(map[music.Spelling]int, len(s))
	for i, sp := range s {
		index[sp] = i
	}
	return index
}

// SpiralOfFifths returns the 35 spellings in spiral order as octave-less notes
func SpiralOfFifths() []music.Note {
	notes := make([]music.Note, len(spiral))
	for i, s := range spiral {
		notes[i] = music.NoteFromSpelling(s, music.NoOctave)
	}
	return notes
}

// FifthsIndex is the note's position on the spiral of fifths, 0-34. The octave
// is ignored.
func FifthsIndex(n music.Note) int {
	return spiralIndex[n.Spelling()]
}
