package handlers

import (
	"fmt"
	"net/http"

	"github.com/Conceptual-Machines/magda-harmony/internal/logger"
	"github.com/Conceptual-Machines/magda-harmony/internal/music"
	"github.com/Conceptual-Machines/magda-harmony/internal/theory"
	"github.com/gin-gonic/gin"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type IntervalRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

type IntervalResponse struct {
	From      NoteResponse `json:"from"`
	To        NoteResponse `json:"to"`
	Name      string       `json:"name"`
	Display   string       `json:"display"`
	Quality   string       `json:"quality"`
	Size      string       `json:"size"`
	Semitones int          `json:"semitones"`
}

// Interval names the interval between two spelled notes
// POST /api/v1/intervals
func (h *SpellingHandler) Interval(c *gin.Context) {
	var req IntervalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Interval: JSON binding error", logger.Fields{
			"request_id": c.GetString("request_id"),
			"error":      err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	from, err := parseNoteName(req.From)
	if err != nil {
		respondError(c, "Interval: invalid from note", err)
		return
	}
	to, err := parseNoteName(req.To)
	if err != nil {
		respondError(c, "Interval: invalid to note", err)
		return
	}

	iv, err := theory.Between(from, to, h.speller)
	if err != nil {
		respondError(c, "Interval: no interval", err)
		return
	}

	c.JSON(http.StatusOK, IntervalResponse{
		From:      newNoteResponse(from),
		To:        newNoteResponse(to),
		Name:      iv.Name(),
		Display:   cases.Title(language.English).String(iv.String()),
		Quality:   iv.Quality.String(),
		Size:      iv.Size.String(),
		Semitones: iv.Semitones,
	})
}

func parseNoteName(name string) (music.Note, error) {
	if len(name) > maxNoteNameLength {
		return music.Note{}, fmt.Errorf("%w: longer than %d bytes", music.ErrInvalidNote, maxNoteNameLength)
	}
	return music.ParseNote(name)
}
