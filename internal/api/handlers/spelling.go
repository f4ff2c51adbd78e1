package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Conceptual-Machines/magda-harmony/internal/config"
	"github.com/Conceptual-Machines/magda-harmony/internal/logger"
	"github.com/Conceptual-Machines/magda-harmony/internal/metrics"
	"github.com/Conceptual-Machines/magda-harmony/internal/music"
	"github.com/Conceptual-Machines/magda-harmony/internal/spelling"
	"github.com/gin-gonic/gin"
)

// sharps-or-flats always scores exactly two candidates
const uniformCandidates = 2

type SpellingHandler struct {
	speller               *spelling.EnharmonicSpeller
	maxPitchClasses       int
	maxFifthsPitchClasses int
	batchWorkers          int
	maxBatchSize          int
	sentryMetrics         *metrics.SentryMetrics
	cloudwatch            *metrics.Client
}

func NewSpellingHandler(speller *spelling.EnharmonicSpeller, cfg *config.Config, cloudwatch *metrics.Client) *SpellingHandler {
	return &SpellingHandler{
		speller:               speller,
		maxPitchClasses:       cfg.SpellingMaxPitchClasses,
		maxFifthsPitchClasses: cfg.SpellingMaxFifthsPitchClasses,
		batchWorkers:          cfg.SpellingBatchWorkers,
		maxBatchSize:          cfg.SpellingMaxBatchSize,
		sentryMetrics:         metrics.NewSentryMetrics(),
		cloudwatch:            cloudwatch,
	}
}

type SpellRequest struct {
	PitchClasses []int  `json:"pitch_classes" binding:"required"`
	Strategy     string `json:"strategy"`
}

type NoteResponse struct {
	Name       string `json:"name"`
	ASCII      string `json:"ascii"`
	Letter     string `json:"letter"`
	Accidental string `json:"accidental"`
	PitchClass int    `json:"pitch_class"`
	Octave     *int   `json:"octave,omitempty"`
}

type SpellResponse struct {
	Strategy        spelling.Strategy `json:"strategy"`
	Notes           []NoteResponse    `json:"notes"`
	SuboptimalPairs int               `json:"suboptimal_pairs"`
	FifthsDistance  int               `json:"fifths_distance"`
}

type PitchClassResponse struct {
	PitchClass int      `json:"pitch_class"`
	BlackKey   bool     `json:"black_key"`
	Spellings  []string `json:"spellings"`
}

type SpiralEntry struct {
	Index int `json:"index"`
	NoteResponse
}

func newNoteResponse(n music.Note) NoteResponse {
	resp := NoteResponse{
		Name:       n.String(),
		ASCII:      n.ASCIIName(),
		Letter:     n.Letter().String(),
		Accidental: n.Accidental().String(),
		PitchClass: int(n.PitchClass()),
	}
	if n.Octave().Known() {
		octave := int(n.Octave())
		resp.Octave = &octave
	}
	return resp
}

func newNoteResponses(notes []music.Note) []NoteResponse {
	out := make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, newNoteResponse(n))
	}
	return out
}

// PitchClasses lists every pitch class with its spellings, default first
// GET /api/v1/pitch-classes
func (h *SpellingHandler) PitchClasses(c *gin.Context) {
	out := make([]PitchClassResponse, 0, music.NumPitchClasses)
	for _, pc := range music.AllPitchClasses() {
		out = append(out, PitchClassResponse{
			PitchClass: int(pc),
			BlackKey:   pc.IsBlackKey(),
			Spellings:  pc.SpellingNames(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"pitch_classes": out})
}

// Spiral lists the spiral of fifths from F double-flat to B double-sharp
// GET /api/v1/spiral
func (h *SpellingHandler) Spiral(c *gin.Context) {
	notes := spelling.SpiralOfFifths()
	out := make([]SpiralEntry, 0, len(notes))
	for i, n := range notes {
		out = append(out, SpiralEntry{Index: i, NoteResponse: newNoteResponse(n)})
	}
	c.JSON(http.StatusOK, gin.H{
		"midpoint": spelling.SpiralMidpoint,
		"spiral":   out,
	})
}

// Spell picks spellings for a set of pitch classes
// POST /api/v1/spell
func (h *SpellingHandler) Spell(c *gin.Context) {
	var req SpellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Spell: JSON binding error", logger.Fields{
			"request_id": c.GetString("request_id"),
			"error":      err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	strategy, err := h.strategy(req.Strategy)
	if err != nil {
		respondError(c, "Spell: invalid strategy", err)
		return
	}

	pcs, err := h.pitchClasses(strategy, req.PitchClasses)
	if err != nil {
		h.record(c, strategy, len(req.PitchClasses), 0, 0, false)
		respondError(c, "Spell: invalid pitch classes", err)
		return
	}

	start := time.Now()
	notes, err := h.speller.Spell(strategy, pcs)
	duration := time.Since(start)
	if err != nil {
		respondError(c, "Spell: spelling failed", err)
		return
	}
	h.record(c, strategy, len(pcs), candidateCount(strategy, pcs), duration, true)

	c.JSON(http.StatusOK, SpellResponse{
		Strategy:        strategy,
		Notes:           newNoteResponses(notes),
		SuboptimalPairs: spelling.CountSuboptimalPairs(notes),
		FifthsDistance:  spelling.FifthsDistance(notes),
	})
}

// strategy resolves the requested strategy, falling back to the default
func (h *SpellingHandler) strategy(name string) (spelling.Strategy, error) {
	if name == "" {
		return h.speller.DefaultStrategy(), nil
	}
	return spelling.ParseStrategy(name)
}

// pitchClasses rejects values outside 0-11, repeats and sets too large for
// the strategy
func (h *SpellingHandler) pitchClasses(strategy spelling.Strategy, values []int) ([]music.PitchClass, error) {
	if h.maxPitchClasses > 0 && len(values) > h.maxPitchClasses {
		return nil, fmt.Errorf("%w: %d given, at most %d allowed", spelling.ErrTooManyPitchClasses, len(values), h.maxPitchClasses)
	}
	if strategy == spelling.StrategyFifths && h.maxFifthsPitchClasses > 0 && len(values) > h.maxFifthsPitchClasses {
		return nil, fmt.Errorf("%w: %d given, at most %d allowed with %s", spelling.ErrTooManyPitchClasses, len(values), h.maxFifthsPitchClasses, strategy)
	}
	pcs := make([]music.PitchClass, len(values))
	for i, v := range values {
		pcs[i] = music.PitchClass(v)
	}
	if err := spelling.ValidatePitchClasses(pcs); err != nil {
		return nil, err
	}
	return pcs, nil
}

// record logs the spelling run and sends it to Sentry and CloudWatch
func (h *SpellingHandler) record(c *gin.Context, strategy spelling.Strategy, size, candidates int, duration time.Duration, success bool) {
	ctx := c.Request.Context()
	if success {
		logger.LogSpellingRequest(ctx, string(strategy), size, candidates, duration, logger.WithContext(c))
	}
	h.sentryMetrics.RecordSpelling(ctx, string(strategy), size, candidates, duration, success)
	h.cloudwatch.RecordSpelling(string(strategy), size, candidates, duration, success)
}

// candidateCount is how many spellings the strategy scored
func candidateCount(strategy spelling.Strategy, pcs []music.PitchClass) int {
	if len(pcs) == 0 {
		return 0
	}
	if strategy == spelling.StrategyFifths {
		return spelling.CombinationCount(pcs)
	}
	return uniformCandidates
}
