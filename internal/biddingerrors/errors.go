package biddingerrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Repository-level errors
var (
	ErrItemNotFound = errors.New("item not found")
	ErrNoBids       = errors.New("no bids found for item")
	ErrUserNoBids   = errors.New("user has not placed any bids")
	ErrUserNotFound = errors.New("user not found")
	ErrNotAnAuction = errors.New("product is not an auction")
)

// bid rejection reasons
var (
	ErrInvalidAmount = errors.New("invalid bid amount")
	ErrBidTooLow     = errors.New("bid amount too low")
	ErrAuctionEnded  = errors.New("auction has ended")
)

// business logic errors
var (
	ErrInvalidBid       = errors.New("invalid bid")
	ErrAnonymousBidder  = errors.New("sign in to place a bid")
	ErrMissingDeadline  = errors.New("auction has no deadline")
	ErrAuctionOpen      = errors.New("auction is still open")
	ErrNotWinner        = errors.New("only the winning bidder can check out")
	ErrInvalidProduct   = errors.New("invalid product")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrCartEmpty        = errors.New("cart is empty")
	ErrNotPurchasable   = errors.New("product cannot be purchased directly")
	ErrAlreadyPaid      = errors.New("auction item already paid for")
	ErrOutOfStock       = errors.New("not enough stock")
	ErrRequestDecided   = errors.New("seller request already decided")
	ErrSessionNotFound  = errors.New("auction session not found")
	ErrAlreadyListed    = errors.New("auction session already running")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrPublishFailed    = errors.New("event publish failed")
	ErrForbiddenProduct = errors.New("product belongs to another seller")
)

// identity errors
var (
	ErrBadCredentials = errors.New("invalid email or password")
	ErrEmailTaken     = errors.New("email already registered")
	ErrUnauthorized   = errors.New("authentication required")
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrForbidden      = errors.New("insufficient role")
)

// RejectionError is returned when a bid is refused. It unwraps to its
// Reason so callers can branch with errors.Is.
type RejectionError struct {
	Reason  error
	Minimum decimal.Decimal // set when Reason is ErrBidTooLow
}

func (e *RejectionError) Error() string {
	if errors.Is(e.Reason, ErrBidTooLow) {
		return fmt.Sprintf("%v: minimum acceptable bid is %s", e.Reason, e.Minimum.StringFixed(2))
	}
	return e.Reason.Error()
}

func (e *RejectionError) Unwrap() error { return e.Reason }

// Reject builds a RejectionError with no minimum.
func Reject(reason error) *RejectionError {
	return &RejectionError{Reason: reason}
}

// MinimumFor extracts the minimum acceptable bid from err, if it carries one.
func MinimumFor(err error) (decimal.Decimal, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) && errors.Is(rej.Reason, ErrBidTooLow) {
		return rej.Minimum, true
	}
	return decimal.Decimal{}, false
}
