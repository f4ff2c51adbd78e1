package theory

import (
	"errors"
	"fmt"

	"github.com/Conceptual-Machines/magda-harmony/internal/logger"
	"github.com/Conceptual-Machines/magda-harmony/internal/music"
	"github.com/Conceptual-Machines/magda-harmony/internal/spelling"
)

var ErrNoInterval = errors.New("no interval for quality and size")

// IntervalSize is the diatonic size of an interval within the octave
type IntervalSize int

const (
	Unison IntervalSize = iota
	Second
	Third
	Fourth
	Fifth
	Sixth
	Seventh
	Octave
)

var sizeNames = []string{"unison", "second", "third", "fourth", "fifth", "sixth", "seventh", "octave"}

// Steps is the number of letter names the interval spans
func (s IntervalSize) Steps() int {
	return int(s)
}

func (s IntervalSize) String() string {
	if s < Unison || s > Octave {
		return "unknown"
	}
	return sizeNames[s]
}

// Quality of an interval
type Quality int

const (
	Diminished Quality = iota
	Minor
	Major
	Perfect
	Augmented
)

var (
	qualityNames  = []string{"diminished", "minor", "major", "perfect", "augmented"}
	qualityAbbrev = []string{"d", "m", "M", "P", "A"}
)

func (q Quality) String() string {
	return qualityNames[q]
}

// Interval is a spelled interval. Semitones is the pitch interval class, 0-11.
type Interval struct {
	Quality   Quality
	Size      IntervalSize
	Semitones int
}

// Name is the short form, e.g. "m3", "P5", "A4"
func (i Interval) Name() string {
	number := i.Size.Steps() + 1
	return fmt.Sprintf("%s%d", qualityAbbrev[i.Quality], number)
}

func (i Interval) String() string {
	return i.Quality.String() + " " + i.Size.String()
}

type qualitySize struct {
	quality Quality
	size    IntervalSize
}

// semitone class of each valid quality/size combination
var intervalTable = map[qualitySize]int{
	{Perfect, Unison}:     0,
	{Augmented, Unison}:   1,
	{Diminished, Second}:  0,
	{Minor, Second}:       1,
	{Major, Second}:       2,
	{Augmented, Second}:   3,
	{Diminished, Third}:   2,
	{Minor, Third}:        3,
	{Major, Third}:        4,
	{Augmented, Third}:    5,
	{Diminished, Fourth}:  4,
	{Perfect, Fourth}:     5,
	{Augmented, Fourth}:   6,
	{Diminished, Fifth}:   6,
	{Perfect, Fifth}:      7,
	{Augmented, Fifth}:    8,
	{Diminished, Sixth}:   7,
	{Minor, Sixth}:        8,
	{Major, Sixth}:        9,
	{Augmented, Sixth}:    10,
	{Diminished, Seventh}: 9,
	{Minor, Seventh}:      10,
	{Major, Seventh}:      11,
	{Diminished, Octave}:  11,
	{Perfect, Octave}:     0,
	{Augmented, Octave}:   1,
}

// NewInterval builds an interval from quality and size
func NewInterval(quality Quality, size IntervalSize) (Interval, error) {
	semitones, ok := intervalTable[qualitySize{quality, size}]
	if !ok {
		return Interval{}, fmt.Errorf("%w: %s %s", ErrNoInterval, quality, size)
	}
	return Interval{Quality: quality, Size: size, Semitones: semitones}, nil
}

// IntervalFromClass builds an interval from its pitch interval class and size
func IntervalFromClass(semitones int, size IntervalSize) (Interval, error) {
	semitones = int(music.NewPitchClass(semitones))
	for _, q := range []Quality{Diminished, Minor, Major, Perfect, Augmented} {
		if s, ok := intervalTable[qualitySize{q, size}]; ok && s == semitones {
			return Interval{Quality: q, Size: size, Semitones: semitones}, nil
		}
	}
	return Interval{}, fmt.Errorf("%w: %d semitones as a %s", ErrNoInterval, semitones, size)
}

// PitchIntervalClass is the semitone distance between two notes, mod 12. An
// unknown octave is taken from the other note, or 0 when both are unknown.
func PitchIntervalClass(a, b music.Note) int {
	octA, octB := a.Octave(), b.Octave()
	if !octA.Known() {
		octA = octB
	}
	if !octB.Known() {
		octB = octA
	}
	if !octA.Known() {
		octA, octB = 0, 0
	}
	diff := a.WithOctave(octA).KeyValue() - b.WithOctave(octB).KeyValue()
	if diff < 0 {
		diff = -diff
	}
	return diff % music.NumPitchClasses
}

// DiatonicSize counts letter steps up from the lower note to the higher one.
// Zero steps is a unison when the octaves match and an octave otherwise.
func DiatonicSize(a, b music.Note) IntervalSize {
	higher, lower := a, b
	if a.Less(b) {
		higher, lower = b, a
	}
	steps := (higher.Letter().ScaleDegree() + music.NumLetters - lower.Letter().ScaleDegree()) % music.NumLetters
	if steps == 0 {
		if a.Octave() == b.Octave() {
			return Unison
		}
		return Octave
	}
	return IntervalSize(steps)
}

// Between names the interval from a to b. When the spelling gives no valid
// interval (e.g. F#-Cb as a "fifth" of 5 semitones) both pitch classes are
// respelled with all sharps or all flats, keeping octaves, and tried again.
func Between(a, b music.Note, speller spelling.Speller) (Interval, error) {
	if iv, err := IntervalFromClass(PitchIntervalClass(a, b), DiatonicSize(a, b)); err == nil {
		return iv, nil
	}

	ra, rb := respell(a, b, speller)
	logger.Debug("Respelling notes to find interval", logger.Fields{
		"from":         a.String(),
		"to":           b.String(),
		"respelled_as": ra.String() + "-" + rb.String(),
	})

	iv, err := IntervalFromClass(PitchIntervalClass(ra, rb), DiatonicSize(ra, rb))
	if err != nil {
		return Interval{}, fmt.Errorf("interval between %s and %s: %w", a, b, err)
	}
	return iv, nil
}

func respell(a, b music.Note, speller spelling.Speller) (music.Note, music.Note) {
	notes := speller.AllSharpsOrAllFlats([]music.PitchClass{a.PitchClass(), b.PitchClass()})
	ra := notes[0].WithOctave(a.Octave())
	if len(notes) < 2 {
		// same pitch class: spell both the same way
		return ra, notes[0].WithOctave(b.Octave())
	}
	return ra, notes[1].WithOctave(b.Octave())
}
