package handler

import (
	"errors"
	"net/http"

	"auction-storefront/internal/auction"
	"auction-storefront/internal/biddingerrors"
	"auction-storefront/internal/identity"
	model "auction-storefront/internal/models"
	"auction-storefront/services/bidding/helpers"
	"auction-storefront/services/common"
	"auction-storefront/utils"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -source=bidding_handler.go -destination=mock_bidding_handler.go -package=handler

type BiddingServiceInterface interface {
	PlaceBid(itemID string, bidder auction.Bidder, amount float64) (model.Bid, error)
	GetBidsForItem(itemID string) ([]model.Bid, error)
	GetWinningBid(itemID string) (model.Bid, error)
	GetItemsByUser(userID string) ([]model.Product, error)
	GetAuctionStatus(itemID string) (auction.Snapshot, error)
	GetOutcome(itemID, userID string) (auction.Outcome, auction.Result, error)
}

type BiddingHandler struct {
	service BiddingServiceInterface
}

func NewBiddingHandler(service BiddingServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

// RecordBidHandler handles POST /bids. The bidder is the signed-in user.
func (h *BiddingHandler) RecordBidHandler(c *gin.Context) {
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.HandleBindError(c, "RecordBidHandler", err)
		return
	}

	var bidder auction.Bidder
	if user, ok := common.CurrentUser(c); ok {
		bidder = identity.BidderFor(user)
	}

	bid, err := h.service.PlaceBid(req.ItemID, bidder, req.Amount)
	if err != nil {
		common.RespondError(c, "RecordBidHandler", err, map[string]any{
			"item_id": req.ItemID,
			"user_id": bidder.ID,
			"amount":  req.Amount,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, common.NewBidResponse(bid), "bid recorded successfully")
	common.LogSuccess("RecordBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":  bid.BidID,
		"item_id": bid.ItemID,
		"user_id": bid.UserID,
		"amount":  bid.Amount.StringFixed(2),
	})
}

// GetBidsByItemHandler handles GET /items/:item_id/bids
func (h *BiddingHandler) GetBidsByItemHandler(c *gin.Context) {
	itemID := c.Param("item_id")
	bids, err := h.service.GetBidsForItem(itemID)
	if err != nil && !errors.Is(err, biddingerrors.ErrNoBids) {
		common.RespondError(c, "GetBidsByItemHandler", err, map[string]any{"item_id": itemID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, common.NewBidResponses(bids), "bids retrieved successfully")
	common.LogSuccess("GetBidsByItemHandler", "bids retrieved successfully", map[string]any{
		"item_id": itemID,
		"count":   len(bids),
	})
}

// GetWinningBidHandler handles GET /items/:item_id/winning
func (h *BiddingHandler) GetWinningBidHandler(c *gin.Context) {
	itemID := c.Param("item_id")
	bid, err := h.service.GetWinningBid(itemID)
	if err != nil {
		if errors.Is(err, biddingerrors.ErrNoBids) {
			utils.JSONError(c, http.StatusNotFound, err, "no winning bid found")
			utils.Info("GetWinningBidHandler: no winning bid found", map[string]any{"item_id": itemID})
			return
		}
		common.RespondError(c, "GetWinningBidHandler", err, map[string]any{"item_id": itemID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, common.NewBidResponse(bid), "winning bid retrieved successfully")
	common.LogSuccess("GetWinningBidHandler", "winning bid retrieved successfully", map[string]any{
		"bid_id":  bid.BidID,
		"item_id": bid.ItemID,
		"user_id": bid.UserID,
		"amount":  bid.Amount.StringFixed(2),
	})
}

// GetItemsByUserHandler handles GET /users/:user_id/items
func (h *BiddingHandler) GetItemsByUserHandler(c *gin.Context) {
	userID := c.Param("user_id")
	items, err := h.service.GetItemsByUser(userID)
	if err != nil && !errors.Is(err, biddingerrors.ErrUserNoBids) {
		common.RespondError(c, "GetItemsByUserHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, common.NewProductResponses(items), "items retrieved successfully")
	common.LogSuccess("GetItemsByUserHandler", "items retrieved successfully", map[string]any{
		"user_id":     userID,
		"items_count": len(items),
	})
}

// GetAuctionStatusHandler handles GET /auctions/:item_id
func (h *BiddingHandler) GetAuctionStatusHandler(c *gin.Context) {
	itemID := c.Param("item_id")
	snap, err := h.service.GetAuctionStatus(itemID)
	if err != nil {
		common.RespondError(c, "GetAuctionStatusHandler", err, map[string]any{"item_id": itemID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewAuctionStatusResponse(snap), "auction status retrieved successfully")
}

// GetOutcomeHandler handles GET /auctions/:item_id/outcome for the signed-in user
func (h *BiddingHandler) GetOutcomeHandler(c *gin.Context) {
	itemID := c.Param("item_id")
	user, ok := common.CurrentUser(c)
	if !ok {
		common.RespondError(c, "GetOutcomeHandler", biddingerrors.ErrUnauthorized, map[string]any{"item_id": itemID})
		return
	}

	outcome, result, err := h.service.GetOutcome(itemID, user.UserID)
	if err != nil {
		common.RespondError(c, "GetOutcomeHandler", err, map[string]any{
			"item_id": itemID,
			"user_id": user.UserID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewOutcomeResponse(outcome, result), "auction outcome retrieved successfully")
	common.LogSuccess("GetOutcomeHandler", "auction outcome retrieved successfully", map[string]any{
		"item_id": itemID,
		"user_id": user.UserID,
		"result":  string(result),
	})
}
