package handlers

import (
	"net/http"
	"strconv"

	"github.com/cardhaus/giveaway-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PickHandler handles pick-related HTTP requests
type PickHandler struct {
	pickService services.PickService
}

// NewPickHandler creates a new PickHandler
func NewPickHandler(pickService services.PickService) *PickHandler {
	return &PickHandler{
		pickService: pickService,
	}
}

// CreatePickRequest is the body for POST /giveaways/:id/picks
type CreatePickRequest struct {
	UserID         string `json:"userId" binding:"required"`
	Slot           *int   `json:"slot" binding:"required"`
	PickNumber     string `json:"pickNumber" binding:"required"`
	WantsFreeEntry bool   `json:"wantsFreeEntry"`
}

// CreatePick handles POST /giveaways/:id/picks
func (h *PickHandler) CreatePick(c *gin.Context) {
	giveawayID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid giveaway ID format"})
		return
	}
	var request CreatePickRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, err := primitive.ObjectIDFromHex(request.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	result, err := h.pickService.CreatePick(c.Request.Context(), giveawayID, userID, *request.Slot, request.PickNumber, request.WantsFreeEntry)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// CreateBulkPicksRequest is the body for POST /giveaways/:id/picks/bulk
type CreateBulkPicksRequest struct {
	UserID           string `json:"userId" binding:"required"`
	Count            int    `json:"count" binding:"required"`
	TargetSlot       *int   `json:"targetSlot"`
	WantsFreeEntries bool   `json:"wantsFreeEntries"`
}

// CreateBulkPicks handles POST /giveaways/:id/picks/bulk
func (h *PickHandler) CreateBulkPicks(c *gin.Context) {
	giveawayID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid giveaway ID format"})
		return
	}
	var request CreateBulkPicksRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, err := primitive.ObjectIDFromHex(request.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	result, err := h.pickService.CreateBulkPicks(c.Request.Context(), giveawayID, userID, request.Count, request.TargetSlot, request.WantsFreeEntries)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GetSlotSnapshot handles GET /giveaways/:id/slots/:slot
func (h *PickHandler) GetSlotSnapshot(c *gin.Context) {
	giveawayID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid giveaway ID format"})
		return
	}
	slot, err := strconv.Atoi(c.Param("slot"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid slot number"})
		return
	}

	snapshot, err := h.pickService.GetSlotSnapshot(c.Request.Context(), giveawayID, slot)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// SuggestAutoPick handles GET /giveaways/:id/auto-pick
func (h *PickHandler) SuggestAutoPick(c *gin.Context) {
	giveawayID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid giveaway ID format"})
		return
	}

	suggestion, err := h.pickService.SuggestAutoPick(c.Request.Context(), giveawayID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, suggestion)
}
