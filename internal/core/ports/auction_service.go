package ports

import (
	"context"
	"time"
)

// AuctionSummary is the list view, ordered by last activity.
type AuctionSummary struct {
	ID             string
	ItemName       string
	SellerUsername string
	CurrentPrice   int64
	UpdatedAt      time.Time
	Selected       bool
}

// BidView is a single history entry, newest first.
type BidView struct {
	Amount         int64
	BidderUsername string
	CreatedAt      time.Time
}

// AuctionDetail is the full view of the selected auction.
type AuctionDetail struct {
	ID              string
	ItemName        string
	SellerUsername  string
	StartPrice      int64
	CurrentPrice    int64
	PriceProgress   string // percentage increase over the start price
	Bids            []BidView
	SellerIsUnknown bool
}

// UserView is a row of the moderation panel.
type UserView struct {
	ID        string
	Username  string
	IsAdmin   bool
	IsBlocked bool
}

// AuctionService is the auction and bid state machine. Every mutating
// operation requires a valid, non-blocked session.
type AuctionService interface {
	CreateAuction(ctx context.Context, itemName string, startPrice int64) (string, error)
	PlaceBid(ctx context.Context, auctionID string, increment int64) error
	// DeleteAuction removes the auction and cascades deletion of its bids.
	// Admin-only, re-checked in the engine.
	DeleteAuction(ctx context.Context, auctionID string) error
	// ToggleBlock flips the target's blocked flag. Admin-only, re-checked in
	// the engine; a no-op on the fixed admin account. Blocking the active
	// session's owner force-invalidates that session.
	ToggleBlock(ctx context.Context, userID string) error

	ListAuctions(ctx context.Context) ([]AuctionSummary, error)
	AuctionDetail(ctx context.Context, auctionID string) (*AuctionDetail, error)
	ListUsers(ctx context.Context) ([]UserView, error)
	Select(auctionID string)
}
