package spelling

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/magda-harmony/internal/music"
)

var (
	ErrUnknownStrategy     = errors.New("unknown spelling strategy")
	ErrDuplicatePitchClass = errors.New("duplicate pitch class")
	ErrInvalidPitchClass   = errors.New("pitch class out of range 0-11")
	ErrTooManyPitchClasses = errors.New("too many pitch classes")
)

// Strategy names a spelling heuristic
type Strategy string

const (
	StrategySharpsOrFlats Strategy = "sharps_or_flats"
	StrategyFifths        Strategy = "fifths"
)

// ParseStrategy accepts a strategy name, case insensitive
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(name))) {
	case StrategySharpsOrFlats:
		return StrategySharpsOrFlats, nil
	case StrategyFifths:
		return StrategyFifths, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Speller chooses spellings for collections of pitch classes
type Speller interface {
	AllSharpsOrAllFlats(pcs []music.PitchClass) []music.Note
	FewestNoteFifths(pcs []music.PitchClass) []music.Note
}

// EnharmonicSpeller is the Speller used across the service. Repeated pitch
// classes are dropped (first occurrence kept) before either heuristic runs.
type EnharmonicSpeller struct {
	defaultStrategy Strategy
}

// NewEnharmonicSpeller returns a speller whose BestSpelling uses the given
// strategy; an empty strategy means sharps or flats.
func NewEnharmonicSpeller(defaultStrategy Strategy) *EnharmonicSpeller {
	if defaultStrategy == "" {
		defaultStrategy = StrategySharpsOrFlats
	}
	return &EnharmonicSpeller{defaultStrategy: defaultStrategy}
}

// DefaultStrategy is the strategy BestSpelling uses
func (s *EnharmonicSpeller) DefaultStrategy() Strategy {
	return s.defaultStrategy
}

func (s *EnharmonicSpeller) AllSharpsOrAllFlats(pcs []music.PitchClass) []music.Note {
	return AllSharpsOrAllFlats(Unique(pcs))
}

func (s *EnharmonicSpeller) FewestNoteFifths(pcs []music.PitchClass) []music.Note {
	return FewestNoteFifths(Unique(pcs))
}

// BestSpelling spells with the default strategy
func (s *EnharmonicSpeller) BestSpelling(pcs []music.PitchClass) []music.Note {
	notes, _ := s.Spell(s.defaultStrategy, pcs)
	return notes
}

// Spell spells with the named strategy
func (s *EnharmonicSpeller) Spell(strategy Strategy, pcs []music.PitchClass) ([]music.Note, error) {
	switch strategy {
	case StrategySharpsOrFlats:
		return s.AllSharpsOrAllFlats(pcs), nil
	case StrategyFifths:
		return s.FewestNoteFifths(pcs), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
}

// Unique drops repeated pitch classes, keeping the first occurrence of each.
// Values outside 0-11 are folded first.
func Unique(pcs []music.PitchClass) []music.PitchClass {
	var seen [music.NumPitchClasses]bool
	out := make([]music.PitchClass, 0, len(pcs))
	for _, pc := range pcs {
		pc = music.NewPitchClass(int(pc))
		if seen[pc] {
			continue
		}
		seen[pc] = true
		out = append(out, pc)
	}
	return out
}

// ValidatePitchClasses rejects values outside 0-11 and repeats, for callers
// that would rather refuse than dedupe
func ValidatePitchClasses(pcs []music.PitchClass) error {
	var seen [music.NumPitchClasses]bool
	for i, pc := range pcs {
		if !pc.Valid() {
			return fmt.Errorf("%w: %d at position %d", ErrInvalidPitchClass, int(pc), i)
		}
		if seen[pc] {
			return fmt.Errorf("%w: %d at position %d", ErrDuplicatePitchClass, int(pc), i)
		}
		seen[pc] = true
	}
	return nil
}
