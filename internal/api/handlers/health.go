package handlers

import (
	"net/http"

	"github.com/Conceptual-Machines/magda-harmony/internal/spelling"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	speller *spelling.EnharmonicSpeller
}

func NewHealthHandler(speller *spelling.EnharmonicSpeller) *HealthHandler {
	return &HealthHandler{speller: speller}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusHealthy,
		"spelling": gin.H{
			"default_strategy": h.speller.DefaultStrategy(),
			"strategies":       []spelling.Strategy{spelling.StrategySharpsOrFlats, spelling.StrategyFifths},
		},
	})
}
