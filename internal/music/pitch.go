package music

import "fmt"

// Number of pitch classes in the octave
const NumPitchClasses = 12

// PitchClass is a pitch reduced to 0-11 (C=0 ... B=11)
type PitchClass int

// Pitch class constants, named by their sharp spelling
const (
	C PitchClass = iota
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
	A
	ASharp
	B
)

// NewPitchClass folds any integer into 0-11, negatives included
func NewPitchClass(n int) PitchClass {
	return PitchClass(mod12(n))
}

func mod12(n int) int {
	return ((n % NumPitchClasses) + NumPitchClasses) % NumPitchClasses
}

// AllPitchClasses returns C through B in ascending order
func AllPitchClasses() []PitchClass {
	pcs := make([]PitchClass, NumPitchClasses)
	for i := range pcs {
		pcs[i] = PitchClass(i)
	}
	return pcs
}

// Valid reports whether the value is already in 0-11
func (pc PitchClass) Valid() bool {
	return pc >= 0 && pc < NumPitchClasses
}

// IsBlackKey reports whether the pitch class sits on a black piano key.
// Values outside 0-11 are folded first.
func (pc PitchClass) IsBlackKey() bool {
	switch NewPitchClass(int(pc)) {
	case CSharp, DSharp, FSharp, GSharp, ASharp:
		return true
	}
	return false
}

// Spelling is a letter name plus accidental
type Spelling struct {
	Letter     Letter
	Accidental Accidental
}

func (s Spelling) String() string {
	return s.Letter.String() + s.Accidental.Symbol()
}

// spellingTable lists every valid spelling per pitch class. The first entry is
// the default spelling. G#/Ab has no double-accidental form.
var spellingTable = [NumPitchClasses][]Spelling{
	C:      {{LetterC, Natural}, {LetterB, Sharp}, {LetterD, DoubleFlat}},
	CSharp: {{LetterC, Sharp}, {LetterD, Flat}, {LetterB, DoubleSharp}},
	D:      {{LetterD, Natural}, {LetterC, DoubleSharp}, {LetterE, DoubleFlat}},
	DSharp: {{LetterD, Sharp}, {LetterE, Flat}, {LetterF, DoubleFlat}},
	E:      {{LetterE, Natural}, {LetterF, Flat}, {LetterD, DoubleSharp}},
	F:      {{LetterF, Natural}, {LetterE, Sharp}, {LetterG, DoubleFlat}},
	FSharp: {{LetterF, Sharp}, {LetterG, Flat}, {LetterE, DoubleSharp}},
	G:      {{LetterG, Natural}, {LetterF, DoubleSharp}, {LetterA, DoubleFlat}},
	GSharp: {{LetterG, Sharp}, {LetterA, Flat}},
	A:      {{LetterA, Natural}, {LetterG, DoubleSharp}, {LetterB, DoubleFlat}},
	ASharp: {{LetterA, Sharp}, {LetterB, Flat}, {LetterC, DoubleFlat}},
	B:      {{LetterB, Natural}, {LetterC, Flat}, {LetterA, DoubleSharp}},
}

// Spellings returns the valid spellings of the pitch class, default first.
// The returned slice is a copy.
func (pc PitchClass) Spellings() []Spelling {
	table := spellingTable[mod12(int(pc))]
	out := make([]Spelling, len(table))
	copy(out, table)
	return out
}

// SpellingNames renders Spellings with naturals left bare ("C♯", "D♭", "B𝄪")
func (pc PitchClass) SpellingNames() []string {
	table := spellingTable[mod12(int(pc))]
	names := make([]string, len(table))
	for i, s := range table {
		names[i] = s.String()
	}
	return names
}

// SpellingWith returns the first spelling that uses the given accidental
func (pc PitchClass) SpellingWith(acc Accidental) (Spelling, bool) {
	for _, s := range spellingTable[mod12(int(pc))] {
		if s.Accidental == acc {
			return s, true
		}
	}
	return Spelling{}, false
}

// spellingFor returns the spelling that uses the given letter
func (pc PitchClass) spellingFor(letter Letter) (Spelling, bool) {
	for _, s := range spellingTable[mod12(int(pc))] {
		if s.Letter == letter {
			return s, true
		}
	}
	return Spelling{}, false
}

func (pc PitchClass) String() string {
	return fmt.Sprintf("%d", int(pc))
}

// Letter is a note letter name, ordered C through B
type Letter int

const (
	LetterC Letter = iota
	LetterD
	LetterE
	LetterF
	LetterG
	LetterA
	LetterB
)

// Number of letter names
const NumLetters = 7

var (
	letterNames     = [NumLetters]string{"C", "D", "E", "F", "G", "A", "B"}
	letterBasePitch = [NumLetters]int{0, 2, 4, 5, 7, 9, 11}
)

// AllLetters returns C through B
func AllLetters() []Letter {
	return []Letter{LetterC, LetterD, LetterE, LetterF, LetterG, LetterA, LetterB}
}

// ScaleDegree is the 1-based position of the letter in a C-rooted diatonic scale
func (l Letter) ScaleDegree() int {
	return int(l) + 1
}

// BasePitch is the pitch class of the unaltered letter
func (l Letter) BasePitch() int {
	return letterBasePitch[l]
}

func (l Letter) String() string {
	if l < LetterC || l > LetterB {
		return "?"
	}
	return letterNames[l]
}

// Accidental alters a letter by -2 to +2 semitones
type Accidental int

const (
	DoubleFlat Accidental = iota
	Flat
	Natural
	Sharp
	DoubleSharp
)

// Number of accidentals
const NumAccidentals = 5

var (
	accidentalSymbols = [NumAccidentals]string{"𝄫", "♭", "", "♯", "𝄪"}
	accidentalASCII   = [NumAccidentals]string{"bb", "b", "", "#", "x"}
	accidentalNames   = [NumAccidentals]string{"double_flat", "flat", "natural", "sharp", "double_sharp"}
)

// AllAccidentals returns double-flat through double-sharp
func AllAccidentals() []Accidental {
	return []Accidental{DoubleFlat, Flat, Natural, Sharp, DoubleSharp}
}

// Offset is the semitone alteration, -2 to +2
func (a Accidental) Offset() int {
	return int(a) - int(Natural)
}

// Symbol is the Unicode symbol; empty for natural
func (a Accidental) Symbol() string {
	return accidentalSymbols[a]
}

// ASCII is the plain-text symbol; empty for natural
func (a Accidental) ASCII() string {
	return accidentalASCII[a]
}

func (a Accidental) String() string {
	return accidentalNames[a]
}
