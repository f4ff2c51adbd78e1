package music

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

var (
	// ErrNoSpelling is returned when a letter cannot spell a pitch class
	ErrNoSpelling  = errors.New("no spelling for pitch class with that letter")
	ErrInvalidNote = errors.New("invalid note name")
)

// Octave follows scientific pitch notation (C4 is middle C). NoOctave marks an
// unknown octave.
type Octave int

const (
	NoOctave  Octave = -1
	MinOctave Octave = 0
	MaxOctave Octave = 8
)

// Known reports whether the octave is set
func (o Octave) Known() bool {
	return o >= MinOctave && o <= MaxOctave
}

// Note is a spelled pitch class with an optional octave. Notes are values and
// compare with ==. The zero Note is C natural with no octave.
type Note struct {
	pitchClass PitchClass
	letter     Letter
	// alteration in semitones, so 0 is natural
	alter int
	// octave + 1, so 0 is NoOctave
	octave int
}

func newNote(pc PitchClass, letter Letter, accidental Accidental, octave Octave) Note {
	return Note{
		pitchClass: pc,
		letter:     letter,
		alter:      accidental.Offset(),
		octave:     int(normalizeOctave(octave)) + 1,
	}
}

// NewNote builds a note from its spelling; the pitch class is derived
func NewNote(letter Letter, accidental Accidental, octave Octave) Note {
	return newNote(NewPitchClass(letter.BasePitch()+accidental.Offset()), letter, accidental, octave)
}

// NoteFromPitchClass spells pc with the given letter. It returns ErrNoSpelling
// when the letter is not in the pitch class's spelling table.
func NoteFromPitchClass(pc PitchClass, letter Letter, octave Octave) (Note, error) {
	pc = NewPitchClass(int(pc))
	s, ok := pc.spellingFor(letter)
	if !ok {
		return Note{}, fmt.Errorf("%w: pitch class %d, letter %s", ErrNoSpelling, pc, letter)
	}
	return newNote(pc, s.Letter, s.Accidental, octave), nil
}

// NoteFromSpelling is NewNote for a Spelling value
func NoteFromSpelling(s Spelling, octave Octave) Note {
	return NewNote(s.Letter, s.Accidental, octave)
}

func normalizeOctave(o Octave) Octave {
	if !o.Known() {
		return NoOctave
	}
	return o
}

func (n Note) PitchClass() PitchClass { return n.pitchClass }

func (n Note) Letter() Letter { return n.letter }

func (n Note) Accidental() Accidental { return Accidental(n.alter + int(Natural)) }

func (n Note) Octave() Octave { return Octave(n.octave - 1) }

// Spelling returns the letter and accidental without the octave
func (n Note) Spelling() Spelling {
	return Spelling{Letter: n.letter, Accidental: n.Accidental()}
}

// WithOctave returns a copy of the note in another octave
func (n Note) WithOctave(o Octave) Note {
	n.octave = int(normalizeOctave(o)) + 1
	return n
}

// KeyValue is octave*12 + pitch class; only meaningful when the octave is known
func (n Note) KeyValue() int {
	return int(n.Octave())*NumPitchClasses + int(n.pitchClass)
}

// Compare orders notes by absolute pitch when both octaves are known and by
// pitch class alone otherwise, so an unknown octave counts as the same octave.
func (n Note) Compare(other Note) int {
	a, b := int(n.pitchClass), int(other.pitchClass)
	if n.Octave().Known() && other.Octave().Known() {
		a, b = n.KeyValue(), other.KeyValue()
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Less reports whether n sorts before other
func (n Note) Less(other Note) bool {
	return n.Compare(other) < 0
}

// String renders the note with Unicode accidentals, e.g. "C♯", "B𝄪4"
func (n Note) String() string {
	s := n.letter.String() + n.Accidental().Symbol()
	if o := n.Octave(); o.Known() {
		s += strconv.Itoa(int(o))
	}
	return s
}

// ASCIIName renders the note with plain-text accidentals, e.g. "C#", "Bx4"
func (n Note) ASCIIName() string {
	s := n.letter.String() + n.Accidental().ASCII()
	if o := n.Octave(); o.Known() {
		s += strconv.Itoa(int(o))
	}
	return s
}

// SortNotes sorts notes ascending by Compare, keeping equal notes in order
func SortNotes(notes []Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Less(notes[j])
	})
}

var accidentalsByText = map[string]Accidental{
	"":   Natural,
	"♮":  Natural,
	"n":  Natural,
	"#":  Sharp,
	"♯":  Sharp,
	"b":  Flat,
	"♭":  Flat,
	"##": DoubleSharp,
	"x":  DoubleSharp,
	"𝄪":  DoubleSharp,
	"bb": DoubleFlat,
	"𝄫":  DoubleFlat,
}

// ParseNote parses a note name like "C", "f#", "Db4", "Bbb", "Fx3" or "E♭2".
// Format: <letter><accidental?><octave?> where:
//   - letter: A-G (case insensitive)
//   - accidental: # ♯ ## x 𝄪 b ♭ bb 𝄫 ♮ n, optional
//   - octave: 0-8, optional
func ParseNote(name string) (Note, error) {
	// fold fullwidth input such as "Ｃ＃４"
	name = width.Narrow.String(strings.TrimSpace(name))
	if name == "" {
		return Note{}, fmt.Errorf("%w: empty", ErrInvalidNote)
	}

	letterIdx := strings.IndexByte("CDEFGAB", strings.ToUpper(name[:1])[0])
	if letterIdx < 0 {
		return Note{}, fmt.Errorf("%w: letter %s", ErrInvalidNote, name[:1])
	}
	rest := name[1:]

	digits := strings.IndexAny(rest, "0123456789-")
	accText, octText := rest, ""
	if digits >= 0 {
		accText, octText = rest[:digits], rest[digits:]
	}

	acc, ok := accidentalsByText[accText]
	if !ok {
		return Note{}, fmt.Errorf("%w: accidental %q in %s", ErrInvalidNote, accText, name)
	}

	octave := NoOctave
	if octText != "" {
		o, err := strconv.Atoi(octText)
		if err != nil {
			return Note{}, fmt.Errorf("%w: octave in %s: %v", ErrInvalidNote, name, err)
		}
		if !Octave(o).Known() {
			return Note{}, fmt.Errorf("%w: octave %d out of range %d-%d in %s", ErrInvalidNote, o, MinOctave, MaxOctave, name)
		}
		octave = Octave(o)
	}

	return NewNote(Letter(letterIdx), acc, octave), nil
}
