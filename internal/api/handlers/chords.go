package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Conceptual-Machines/magda-harmony/internal/logger"
	"github.com/Conceptual-Machines/magda-harmony/internal/theory"
	"github.com/gin-gonic/gin"
)

type ChordRequest struct {
	Symbol   string `json:"symbol" binding:"required"`
	Strategy string `json:"strategy"`
}

type ChordResponse struct {
	Symbol       string         `json:"symbol"`
	Root         int            `json:"root"`
	Quality      string         `json:"quality"`
	Extensions   []string       `json:"extensions"`
	Bass         *int           `json:"bass,omitempty"`
	PitchClasses []int          `json:"pitch_classes"`
	Strategy     string         `json:"strategy"`
	Notes        []NoteResponse `json:"notes"`
}

// SpellChord parses a chord symbol and spells its tones
// POST /api/v1/chords/spell
func (h *SpellingHandler) SpellChord(c *gin.Context) {
	var req ChordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("SpellChord: JSON binding error", logger.Fields{
			"request_id": c.GetString("request_id"),
			"error":      err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Symbol) > maxChordSymbolLength {
		err := fmt.Errorf("%w: longer than %d bytes", theory.ErrInvalidChord, maxChordSymbolLength)
		respondError(c, "SpellChord: invalid symbol", err)
		return
	}

	strategy, err := h.strategy(req.Strategy)
	if err != nil {
		respondError(c, "SpellChord: invalid strategy", err)
		return
	}

	start := time.Now()
	spelled, err := theory.SpellChord(req.Symbol, h.speller, strategy)
	duration := time.Since(start)
	if err != nil {
		respondError(c, "SpellChord: spelling failed", err)
		return
	}
	chord := spelled.Chord
	h.record(c, strategy, len(chord.PitchClasses), candidateCount(strategy, chord.PitchClasses), duration, true)

	resp := ChordResponse{
		Symbol:       chord.Symbol,
		Root:         int(chord.Root),
		Quality:      chord.Quality,
		Extensions:   chord.Extensions,
		PitchClasses: make([]int, 0, len(chord.PitchClasses)),
		Strategy:     string(spelled.Strategy),
		Notes:        newNoteResponses(spelled.Notes),
	}
	if chord.HasBass {
		bass := int(chord.Bass)
		resp.Bass = &bass
	}
	for _, pc := range chord.PitchClasses {
		resp.PitchClasses = append(resp.PitchClasses, int(pc))
	}

	c.JSON(http.StatusOK, resp)
}
