package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nctrnlman/api-crypto/internal/model"
	"github.com/nctrnlman/api-crypto/internal/service"
)

// Errors collapse to a generic body; detail stays in the server log.
var internalServerError = gin.H{"error": "Internal Server Error"}

type FuturesHandler struct {
	futuresService *service.FuturesService
	logger         *logrus.Logger
}

func NewFuturesHandler(service *service.FuturesService, logger *logrus.Logger) *FuturesHandler {
	return &FuturesHandler{
		futuresService: service,
		logger:         logger,
	}
}

// GetFuturesData builds a fresh snapshot from the vendor and returns it.
func (h *FuturesHandler) GetFuturesData(c *gin.Context) {
	snapshot, err := h.futuresService.BuildSnapshot(c.Request.Context())
	if err != nil {
		h.logger.Errorf("Error fetching data: %v", err)
		c.JSON(http.StatusInternalServerError, internalServerError)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// SaveFuturesData ingests a snapshot-shaped body. The body does not have to
// come from GetFuturesData; any payload matching the shape is accepted.
func (h *FuturesHandler) SaveFuturesData(c *gin.Context) {
	var snapshot model.FuturesSnapshot
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		h.logger.Errorf("Error saving data: %v", err)
		c.JSON(http.StatusInternalServerError, internalServerError)
		return
	}

	if _, err := h.futuresService.IngestSnapshot(c.Request.Context(), snapshot); err != nil {
		h.logger.Errorf("Error saving data: %v", err)
		c.JSON(http.StatusInternalServerError, internalServerError)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Data saved successfully"})
}

// GetStats reports how many trade records have been ingested so far.
func (h *FuturesHandler) GetStats(c *gin.Context) {
	count, err := h.futuresService.TradeDataCount(c.Request.Context())
	if err != nil {
		h.logger.Errorf("Error counting trade records: %v", err)
		c.JSON(http.StatusInternalServerError, internalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trade_records": count})
}
