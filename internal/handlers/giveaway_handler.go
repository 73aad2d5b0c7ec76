package handlers

import (
	"net/http"

	"github.com/cardhaus/giveaway-backend/internal/models"
	"github.com/cardhaus/giveaway-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GiveawayHandler handles giveaway lifecycle HTTP requests
type GiveawayHandler struct {
	giveawayService services.GiveawayService
}

// NewGiveawayHandler creates a new GiveawayHandler
func NewGiveawayHandler(giveawayService services.GiveawayService) *GiveawayHandler {
	return &GiveawayHandler{
		giveawayService: giveawayService,
	}
}

// CreateGiveawayRequest is the body for POST /giveaways
type CreateGiveawayRequest struct {
	Title              string `json:"title" binding:"required"`
	SlotCount          int    `json:"slotCount" binding:"required,min=1"`
	HasBoxTopper       bool   `json:"hasBoxTopper"`
	MinPicks           int    `json:"minPicks" binding:"min=0"`
	FreeEntriesPerUser int    `json:"freeEntriesPerUser" binding:"min=0"`
	CreditCost         int    `json:"creditCost" binding:"required,min=1"`
}

// CreateGiveaway handles POST /giveaways
func (h *GiveawayHandler) CreateGiveaway(c *gin.Context) {
	var request CreateGiveawayRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	giveaway := &models.Giveaway{
		Title:              request.Title,
		SlotCount:          request.SlotCount,
		HasBoxTopper:       request.HasBoxTopper,
		MinPicks:           request.MinPicks,
		FreeEntriesPerUser: request.FreeEntriesPerUser,
		CreditCost:         request.CreditCost,
	}
	if err := h.giveawayService.CreateGiveaway(c.Request.Context(), giveaway); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, giveaway)
}

// GetGiveawayByID handles GET /giveaways/:id
func (h *GiveawayHandler) GetGiveawayByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid giveaway ID format"})
		return
	}
	giveaway, err := h.giveawayService.GetGiveawayByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, giveaway)
}

// GetGiveaways handles GET /giveaways
func (h *GiveawayHandler) GetGiveaways(c *gin.Context) {
	giveaways, err := h.giveawayService.GetGiveaways(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve giveaways: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, giveaways)
}

// RecordDrawResultRequest is the body for POST /giveaways/:id/draw
type RecordDrawResultRequest struct {
	DrawnNumber string `json:"drawnNumber" binding:"required"`
}

// RecordDrawResult handles POST /giveaways/:id/draw
func (h *GiveawayHandler) RecordDrawResult(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid giveaway ID format"})
		return
	}
	var request RecordDrawResultRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	winners, err := h.giveawayService.RecordDrawResult(c.Request.Context(), id, request.DrawnNumber)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"winnersCount": len(winners), "winners": winners})
}

// GetWinners handles GET /giveaways/:id/winners
func (h *GiveawayHandler) GetWinners(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid giveaway ID format"})
		return
	}
	winners, err := h.giveawayService.GetWinners(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve winners: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, winners)
}

// CloseGiveaway handles POST /giveaways/:id/close
func (h *GiveawayHandler) CloseGiveaway(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid giveaway ID format"})
		return
	}
	if err := h.giveawayService.CloseGiveaway(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Giveaway closed for entries"})
}

// CancelGiveaway handles POST /giveaways/:id/cancel
func (h *GiveawayHandler) CancelGiveaway(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid giveaway ID format"})
		return
	}
	refunded, err := h.giveawayService.CancelGiveaway(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Giveaway cancelled", "creditsRefunded": refunded})
}
