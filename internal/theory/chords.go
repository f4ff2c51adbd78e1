package theory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/magda-harmony/internal/music"
	"github.com/Conceptual-Machines/magda-harmony/internal/spelling"
)

var ErrInvalidChord = errors.New("invalid chord symbol")

// Chord qualities understood by ParseChord
const (
	QualityMajor      = "major"
	QualityMinor      = "minor"
	QualityDiminished = "diminished"
	QualityAugmented  = "augmented"
	QualitySus2       = "sus2"
	QualitySus4       = "sus4"
)

// Chord is a parsed chord symbol reduced to pitch classes
type Chord struct {
	Symbol     string
	Root       music.PitchClass
	Quality    string
	Extensions []string
	// Bass is set for slash chords such as Em/G
	Bass    music.PitchClass
	HasBass bool
	// PitchClasses lists the bass first when present, then the chord tones
	// from the root up; repeats are dropped
	PitchClasses []music.PitchClass
}

// SpelledChord is a chord with its notes spelled
type SpelledChord struct {
	Chord    Chord
	Strategy spelling.Strategy
	Notes    []music.Note
}

// ParseChord reads symbols like C, Em, Am7, Cmaj7, Bbdim, F#sus4, Dadd9 or
// Emin/G into pitch classes
func ParseChord(symbol string) (Chord, error) {
	symbol = strings.TrimSpace(symbol)

	// Parse bass note if present (e.g., "Emin/G" -> chord="Emin", bass="G")
	baseChord := symbol
	bassName := ""
	switch parts := strings.Split(symbol, "/"); len(parts) {
	case 1:
	case 2:
		baseChord = strings.TrimSpace(parts[0])
		bassName = strings.TrimSpace(parts[1])
		if bassName == "" {
			return Chord{}, fmt.Errorf("%w: missing bass note in %s", ErrInvalidChord, symbol)
		}
	default:
		return Chord{}, fmt.Errorf("%w: more than one bass note in %s", ErrInvalidChord, symbol)
	}

	root, rest, err := parseRoot(baseChord)
	if err != nil {
		return Chord{}, err
	}

	chord := Chord{
		Symbol:     symbol,
		Root:       root,
		Quality:    parseChordQuality(rest),
		Extensions: parseExtensions(rest),
	}

	if bassName != "" {
		bass, tail, err := parseRoot(bassName)
		if err != nil {
			return Chord{}, fmt.Errorf("bass note: %w", err)
		}
		if tail != "" {
			return Chord{}, fmt.Errorf("%w: unexpected %q after bass note in %s", ErrInvalidChord, tail, symbol)
		}
		chord.Bass, chord.HasBass = bass, true
	}

	var pcs []music.PitchClass
	if chord.HasBass {
		pcs = append(pcs, chord.Bass)
	}
	for _, semitones := range buildChordIntervals(chord.Quality, chord.Extensions) {
		pcs = append(pcs, music.NewPitchClass(int(root)+semitones))
	}
	chord.PitchClasses = spelling.Unique(pcs)

	return chord, nil
}

// SpellChord parses the symbol and spells its pitch classes with the strategy
func SpellChord(symbol string, speller *spelling.EnharmonicSpeller, strategy spelling.Strategy) (SpelledChord, error) {
	chord, err := ParseChord(symbol)
	if err != nil {
		return SpelledChord{}, err
	}
	if strategy == "" {
		strategy = speller.DefaultStrategy()
	}
	notes, err := speller.Spell(strategy, chord.PitchClasses)
	if err != nil {
		return SpelledChord{}, err
	}
	return SpelledChord{Chord: chord, Strategy: strategy, Notes: notes}, nil
}

// parseRoot splits a leading note name (C, C#, Db, ...) from the rest
func parseRoot(symbol string) (music.PitchClass, string, error) {
	if symbol == "" {
		return 0, "", fmt.Errorf("%w: empty chord symbol", ErrInvalidChord)
	}

	n := 1
	if len(symbol) > 1 && (symbol[1] == '#' || symbol[1] == 'b') {
		n = 2
	}

	note, err := music.ParseNote(symbol[:n])
	if err != nil || strings.ToUpper(symbol[:1]) != symbol[:1] {
		return 0, "", fmt.Errorf("%w: invalid root note: %s", ErrInvalidChord, symbol[:n])
	}
	return note.PitchClass(), symbol[n:], nil
}

func parseChordQuality(rest string) string {
	switch {
	case strings.HasPrefix(rest, "m") && !strings.HasPrefix(rest, "maj"):
		return QualityMinor
	case strings.HasPrefix(rest, "dim"):
		return QualityDiminished
	case strings.HasPrefix(rest, "aug"), strings.HasPrefix(rest, "+"):
		return QualityAugmented
	case strings.HasPrefix(rest, "sus2"):
		return QualitySus2
	case strings.HasPrefix(rest, "sus4"), strings.HasPrefix(rest, "sus"):
		return QualitySus4
	}
	return QualityMajor
}

func parseExtensions(rest string) []string {
	extensions := []string{}

	// maj7/min7 come out before the quality markers so "maj7" is not read as "m"
	if strings.Contains(rest, "maj7") {
		extensions = append(extensions, "maj7")
		rest = strings.ReplaceAll(rest, "maj7", "")
	}
	if strings.Contains(rest, "min7") {
		extensions = append(extensions, "min7")
		rest = strings.ReplaceAll(rest, "min7", "")
	}

	for _, marker := range []string{"min", "m", "dim", "aug", "+", "sus2", "sus4", "sus"} {
		if strings.HasPrefix(rest, marker) {
			rest = strings.TrimPrefix(rest, marker)
			break
		}
	}

	// add-tones first so "add9" is not also counted as a plain 9
	for _, add := range []string{"add9", "add11", "add13"} {
		if strings.Contains(rest, add) {
			extensions = append(extensions, add)
			rest = strings.ReplaceAll(rest, add, "")
		}
	}
	if strings.Contains(rest, "7") {
		extensions = append(extensions, "7")
	}
	if strings.Contains(rest, "9") {
		extensions = append(extensions, "9")
	}
	if strings.Contains(rest, "11") {
		extensions = append(extensions, "11")
	}
	if strings.Contains(rest, "13") {
		extensions = append(extensions, "13")
	}

	return extensions
}

// buildChordIntervals returns semitones above the root
func buildChordIntervals(quality string, extensions []string) []int {
	var intervals []int

	switch quality {
	case QualityMinor:
		intervals = []int{0, 3, 7}
	case QualityDiminished:
		intervals = []int{0, 3, 6}
	case QualityAugmented:
		intervals = []int{0, 4, 8}
	case QualitySus2:
		intervals = []int{0, 2, 7}
	case QualitySus4:
		intervals = []int{0, 5, 7}
	default:
		intervals = []int{0, 4, 7}
	}

	for _, ext := range extensions {
		switch ext {
		case "7", "min7":
			if quality == QualityDiminished && ext == "7" {
				intervals = append(intervals, 9) // fully diminished 7th
			} else {
				intervals = append(intervals, 10)
			}
		case "maj7":
			intervals = append(intervals, 11)
		case "9", "add9":
			intervals = append(intervals, 14)
		case "11", "add11":
			intervals = append(intervals, 17)
		case "13", "add13":
			intervals = append(intervals, 21)
		}
	}

	return intervals
}
