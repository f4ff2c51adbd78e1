package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Conceptual-Machines/magda-harmony/internal/logger"
	"github.com/Conceptual-Machines/magda-harmony/internal/spelling"
	"github.com/gin-gonic/gin"
	"github.com/remeh/sizedwaitgroup"
)

var errBatchTooLarge = errors.New("too many sets in batch")

type BatchSpellRequest struct {
	Sets     []SpellRequest `json:"sets" binding:"required"`
	Strategy string         `json:"strategy"`
}

// BatchSpellResult is one entry of a batch response. Error is set instead of
// the spelling when that set was rejected.
type BatchSpellResult struct {
	Index int `json:"index"`
	*SpellResponse
	Error string `json:"error,omitempty"`
}

type BatchSpellResponse struct {
	Results  []BatchSpellResult `json:"results"`
	Failures int                `json:"failures"`
}

// SpellBatch spells several pitch-class sets concurrently. Each set may name
// its own strategy; otherwise the batch strategy, then the default, applies.
// Results come back in request order.
// POST /api/v1/spell/batch
func (h *SpellingHandler) SpellBatch(c *gin.Context) {
	var req BatchSpellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("SpellBatch: JSON binding error", logger.Fields{
			"request_id": c.GetString("request_id"),
			"error":      err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if h.maxBatchSize > 0 && len(req.Sets) > h.maxBatchSize {
		err := fmt.Errorf("%w: %d sets given, at most %d allowed", errBatchTooLarge, len(req.Sets), h.maxBatchSize)
		respondError(c, "SpellBatch: batch too large", err)
		return
	}

	batchStrategy, err := h.strategy(req.Strategy)
	if err != nil {
		respondError(c, "SpellBatch: invalid strategy", err)
		return
	}

	workers := h.batchWorkers
	if workers < 1 {
		workers = 1
	}

	start := time.Now()
	results := make([]BatchSpellResult, len(req.Sets))
	swg := sizedwaitgroup.New(workers)
	for i, set := range req.Sets {
		if err := swg.AddWithContext(c.Request.Context()); err != nil {
			swg.Wait()
			respondError(c, "SpellBatch: request cancelled", err)
			return
		}
		go func(i int, set SpellRequest) {
			defer swg.Done()
			results[i] = h.spellOne(c, i, set, batchStrategy)
		}(i, set)
	}
	swg.Wait()

	failures := 0
	for _, r := range results {
		if r.Error != "" {
			failures++
		}
	}

	logger.Info("Batch spelled", logger.Fields{
		"request_id":  c.GetString("request_id"),
		"sets":        len(req.Sets),
		"failures":    failures,
		"workers":     workers,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	c.JSON(http.StatusOK, BatchSpellResponse{Results: results, Failures: failures})
}

// spellOne spells a single batch entry; it is safe to run concurrently
func (h *SpellingHandler) spellOne(c *gin.Context, index int, set SpellRequest, fallback spelling.Strategy) BatchSpellResult {
	strategy := fallback
	if set.Strategy != "" {
		s, err := spelling.ParseStrategy(set.Strategy)
		if err != nil {
			return BatchSpellResult{Index: index, Error: err.Error()}
		}
		strategy = s
	}

	pcs, err := h.pitchClasses(strategy, set.PitchClasses)
	if err != nil {
		return BatchSpellResult{Index: index, Error: err.Error()}
	}

	begin := time.Now()
	notes, err := h.speller.Spell(strategy, pcs)
	if err != nil {
		return BatchSpellResult{Index: index, Error: err.Error()}
	}
	h.record(c, strategy, len(pcs), candidateCount(strategy, pcs), time.Since(begin), true)

	return BatchSpellResult{
		Index: index,
		SpellResponse: &SpellResponse{
			Strategy:        strategy,
			Notes:           newNoteResponses(notes),
			SuboptimalPairs: spelling.CountSuboptimalPairs(notes),
			FifthsDistance:  spelling.FifthsDistance(notes),
		},
	}
}
