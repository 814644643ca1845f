package domain

import "time"

// AuctionStatus represents the lifecycle state of an auction.
type AuctionStatus string

const (
	AuctionActive  AuctionStatus = "active"
	AuctionDeleted AuctionStatus = "deleted"
)

// Auction is the core aggregate. CurrentPrice never drops below StartPrice and
// is monotonically non-decreasing; UpdatedAt advances on every accepted bid.
type Auction struct {
	ID           string        `json:"id"`
	ItemName     string        `json:"itemName"`
	SellerID     string        `json:"sellerId"`
	StartPrice   int64         `json:"startPrice"`
	CurrentPrice int64         `json:"currentPrice"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	Status       AuctionStatus `json:"status"`
}

// Bid is an append-only priced snapshot: Amount equals the auction's
// CurrentPrice immediately after the increment was applied, not the raw
// increment. Bids are removed only as a cascade of auction deletion.
type Bid struct {
	ID        string    `json:"id"`
	AuctionID string    `json:"auctionId"`
	UserID    string    `json:"userId"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}

// Snapshot is the full persisted domain: the three collections serialized and
// written as one unit. Version carries the optimistic-concurrency token of the
// underlying blob and is never serialized itself.
type Snapshot struct {
	Users    []User    `json:"users"`
	Auctions []Auction `json:"auctions"`
	Bids     []Bid     `json:"bids"`

	Version int64 `json:"-"`
}

// SeedSnapshot returns the initial domain containing only the admin user.
func SeedSnapshot() *Snapshot {
	return &Snapshot{
		Users: []User{{
			ID:       AdminUserID,
			Username: AdminUsername,
			IsAdmin:  true,
		}},
	}
}

// UserByID returns the user with the given id, or nil.
func (s *Snapshot) UserByID(id string) *User {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return &s.Users[i]
		}
	}
	return nil
}

// UserByUsername returns the user with the given username (case-sensitive), or nil.
func (s *Snapshot) UserByUsername(username string) *User {
	for i := range s.Users {
		if s.Users[i].Username == username {
			return &s.Users[i]
		}
	}
	return nil
}

// AuctionByID returns the auction with the given id, or nil.
func (s *Snapshot) AuctionByID(id string) *Auction {
	for i := range s.Auctions {
		if s.Auctions[i].ID == id {
			return &s.Auctions[i]
		}
	}
	return nil
}
