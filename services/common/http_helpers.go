package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"auction-storefront/internal/biddingerrors"
	"auction-storefront/internal/models"
	"auction-storefront/utils"

	"github.com/gin-gonic/gin"
)

// userKey is the gin context key holding the signed-in user
const userKey = "current_user"

// SetUser attaches the signed-in user to the request
func SetUser(c *gin.Context, user models.User) {
	c.Set(userKey, user)
}

// CurrentUser returns the signed-in user, if any
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(models.User)
	if !ok {
		return nil, false
	}
	return &user, true
}

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, biddingerrors.ErrItemNotFound):
		return http.StatusNotFound, "item not found"
	case errors.Is(err, biddingerrors.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, biddingerrors.ErrSessionNotFound):
		return http.StatusNotFound, "auction not running"
	case errors.Is(err, biddingerrors.ErrNoBids):
		return http.StatusNotFound, "no bids found for item"
	case errors.Is(err, biddingerrors.ErrUserNoBids):
		return http.StatusNotFound, "no items found for user"
	case errors.Is(err, biddingerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, biddingerrors.ErrAuctionEnded):
		return http.StatusConflict, "auction has ended"
	case errors.Is(err, biddingerrors.ErrAuctionOpen):
		return http.StatusConflict, "auction is still open"
	case errors.Is(err, biddingerrors.ErrAlreadyPaid):
		return http.StatusConflict, "auction item already paid for"
	case errors.Is(err, biddingerrors.ErrOutOfStock):
		return http.StatusConflict, "not enough stock"
	case errors.Is(err, biddingerrors.ErrEmailTaken):
		return http.StatusConflict, "email already registered"
	case errors.Is(err, biddingerrors.ErrRequestDecided):
		return http.StatusConflict, "seller request already decided"
	case errors.Is(err, biddingerrors.ErrAlreadyListed):
		return http.StatusConflict, "auction already listed"
	case errors.Is(err, biddingerrors.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid bid amount"
	case errors.Is(err, biddingerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, biddingerrors.ErrNotAnAuction):
		return http.StatusBadRequest, "product is not an auction"
	case errors.Is(err, biddingerrors.ErrInvalidProduct):
		return http.StatusBadRequest, "invalid product details"
	case errors.Is(err, biddingerrors.ErrInvalidQuantity):
		return http.StatusBadRequest, "invalid quantity"
	case errors.Is(err, biddingerrors.ErrCartEmpty):
		return http.StatusBadRequest, "cart is empty"
	case errors.Is(err, biddingerrors.ErrNotPurchasable):
		return http.StatusBadRequest, "product cannot be purchased directly"
	case errors.Is(err, biddingerrors.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, biddingerrors.ErrAnonymousBidder),
		errors.Is(err, biddingerrors.ErrUnauthorized):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, biddingerrors.ErrBadCredentials):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, biddingerrors.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid or expired token"
	case errors.Is(err, biddingerrors.ErrNotWinner):
		return http.StatusForbidden, "only the winning bidder can check out"
	case errors.Is(err, biddingerrors.ErrForbiddenProduct):
		return http.StatusForbidden, "product belongs to another seller"
	case errors.Is(err, biddingerrors.ErrForbidden):
		return http.StatusForbidden, "insufficient role"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// RespondError maps err, writes the error envelope and logs it. Bids that
// are too low also report the minimum acceptable amount.
func RespondError(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, message := MapErrorToHTTP(err)
	wrapped := fmt.Errorf("%s: %w", message, err)

	if minimum, ok := biddingerrors.MinimumFor(err); ok {
		utils.JSONErrorWithDetails(c, status, wrapped, message, gin.H{"minimum_bid": minimum.InexactFloat64()})
	} else {
		utils.JSONError(c, status, wrapped, message)
	}

	if fields == nil {
		fields = map[string]any{}
	}
	fields["handler"] = handlerName
	fields["error"] = err.Error()
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": request failed", fields)
		return
	}
	utils.Warn(handlerName+": request rejected", fields)
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

// BearerToken extracts the token from an "Authorization: Bearer ..." header
func BearerToken(c *gin.Context) string {
	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
