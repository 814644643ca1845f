package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eetrade/marketplace/internal/api/metrics"
	"github.com/eetrade/marketplace/internal/core/domain"
	"github.com/eetrade/marketplace/internal/core/ports"
	"github.com/eetrade/marketplace/internal/pkg/config"
)

// AuctionService is the auction and bid state machine. All mutations resolve
// the acting user from the session slot first; a blocked or expired session
// never reaches the domain write. Authorization for the admin operations is
// re-checked here rather than trusting the presentation layer.
type AuctionService struct {
	store    ports.DomainStore
	sessions ports.SessionService
	pricing  config.PricingConfig
	log      zerolog.Logger
	now      func() time.Time

	mu         sync.Mutex
	selectedID string
}

func NewAuctionService(store ports.DomainStore, sessions ports.SessionService, pricing config.PricingConfig, log zerolog.Logger) *AuctionService {
	return &AuctionService{
		store:    store,
		sessions: sessions,
		pricing:  pricing,
		log:      log,
		now:      time.Now,
	}
}

func (s *AuctionService) CreateAuction(ctx context.Context, itemName string, startPrice int64) (string, error) {
	itemName = strings.TrimSpace(itemName)
	if itemName == "" || startPrice < s.pricing.MinStartPrice || startPrice > s.pricing.MaxStartPrice {
		return "", &domain.ValidationError{
			Field: "startPrice",
			Min:   s.pricing.MinStartPrice,
			Max:   s.pricing.MaxStartPrice,
		}
	}

	var auctionID string
	err := s.store.Update(ctx, func(snap *domain.Snapshot) error {
		user, err := s.sessions.Current(ctx, snap)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		auction := domain.Auction{
			ID:           "a-" + uuid.NewString(),
			ItemName:     itemName,
			SellerID:     user.ID,
			StartPrice:   startPrice,
			CurrentPrice: startPrice,
			CreatedAt:    now,
			UpdatedAt:    now,
			Status:       domain.AuctionActive,
		}
		snap.Auctions = append(snap.Auctions, auction)
		auctionID = auction.ID
		return nil
	})
	if err != nil {
		return "", err
	}

	s.Select(auctionID)
	metrics.AuctionsCreatedTotal.Inc()
	s.log.Info().Str("auction_id", auctionID).Str("item", itemName).Int64("start_price", startPrice).Msg("auction created")
	return auctionID, nil
}

func (s *AuctionService) PlaceBid(ctx context.Context, auctionID string, increment int64) error {
	if increment <= 0 {
		return domain.ErrInvalidBid
	}

	err := s.store.Update(ctx, func(snap *domain.Snapshot) error {
		user, err := s.sessions.Current(ctx, snap)
		if err != nil {
			return err
		}

		auction := snap.AuctionByID(auctionID)
		if auction == nil {
			return domain.ErrAuctionNotFound
		}
		if auction.Status != domain.AuctionActive {
			return domain.ErrInvalidBid
		}

		now := s.now().UTC()
		auction.CurrentPrice += increment
		auction.UpdatedAt = now

		// The bid records the price after the increment, not the increment.
		snap.Bids = append(snap.Bids, domain.Bid{
			ID:        "b-" + uuid.NewString(),
			AuctionID: auction.ID,
			UserID:    user.ID,
			Amount:    auction.CurrentPrice,
			CreatedAt: now,
		})
		return nil
	})
	if err != nil {
		return err
	}

	metrics.BidsPlacedTotal.Inc()
	s.log.Info().Str("auction_id", auctionID).Int64("increment", increment).Msg("bid placed")
	return nil
}

func (s *AuctionService) DeleteAuction(ctx context.Context, auctionID string) error {
	err := s.store.Update(ctx, func(snap *domain.Snapshot) error {
		user, err := s.sessions.Current(ctx, snap)
		if err != nil {
			return err
		}
		if !user.IsAdmin {
			return domain.ErrForbidden
		}
		if snap.AuctionByID(auctionID) == nil {
			return domain.ErrAuctionNotFound
		}

		// Removal is by filtering, with the bid cascade maintained here; the
		// store enforces no referential integrity of its own.
		auctions := snap.Auctions[:0]
		for _, a := range snap.Auctions {
			if a.ID != auctionID {
				auctions = append(auctions, a)
			}
		}
		snap.Auctions = auctions

		bids := snap.Bids[:0]
		for _, b := range snap.Bids {
			if b.AuctionID != auctionID {
				bids = append(bids, b)
			}
		}
		snap.Bids = bids
		return nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.selectedID == auctionID {
		s.selectedID = ""
	}
	s.mu.Unlock()

	metrics.AuctionsDeletedTotal.Inc()
	s.log.Info().Str("auction_id", auctionID).Msg("auction deleted with bid cascade")
	return nil
}

func (s *AuctionService) ToggleBlock(ctx context.Context, userID string) error {
	var blocked bool
	err := s.store.Update(ctx, func(snap *domain.Snapshot) error {
		actor, err := s.sessions.Current(ctx, snap)
		if err != nil {
			return err
		}
		if !actor.IsAdmin {
			return domain.ErrForbidden
		}

		target := snap.UserByID(userID)
		if target == nil {
			return domain.ErrUserNotFound
		}
		// The seed admin can never be blocked.
		if target.IsSeedAdmin() {
			blocked = false
			return nil
		}

		target.IsBlocked = !target.IsBlocked
		blocked = target.IsBlocked
		return nil
	})
	if err != nil {
		return err
	}

	if blocked {
		// A blocked user must not retain the active session.
		sess, err := s.sessions.Active(ctx)
		if err != nil {
			return err
		}
		if sess != nil && sess.UserID == userID {
			if err := s.sessions.Invalidate(ctx); err != nil {
				return err
			}
			s.log.Info().Str("user_id", userID).Msg("active session force-invalidated on block")
		}
	}
	return nil
}

func (s *AuctionService) ListAuctions(ctx context.Context) ([]ports.AuctionSummary, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	sorted := make([]domain.Auction, len(snap.Auctions))
	copy(sorted, snap.Auctions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})

	s.mu.Lock()
	if s.selectedID == "" && len(sorted) > 0 {
		s.selectedID = sorted[0].ID
	}
	selected := s.selectedID
	s.mu.Unlock()

	summaries := make([]ports.AuctionSummary, 0, len(sorted))
	for _, a := range sorted {
		summaries = append(summaries, ports.AuctionSummary{
			ID:             a.ID,
			ItemName:       a.ItemName,
			SellerUsername: usernameOf(snap, a.SellerID),
			CurrentPrice:   a.CurrentPrice,
			UpdatedAt:      a.UpdatedAt,
			Selected:       a.ID == selected,
		})
	}
	return summaries, nil
}

func (s *AuctionService) AuctionDetail(ctx context.Context, auctionID string) (*ports.AuctionDetail, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	auction := snap.AuctionByID(auctionID)
	if auction == nil {
		return nil, domain.ErrAuctionNotFound
	}

	var bids []domain.Bid
	for _, b := range snap.Bids {
		if b.AuctionID == auctionID {
			bids = append(bids, b)
		}
	}
	// Newest first; equal timestamps keep insertion order.
	sort.SliceStable(bids, func(i, j int) bool {
		return bids[i].CreatedAt.After(bids[j].CreatedAt)
	})

	views := make([]ports.BidView, 0, len(bids))
	for _, b := range bids {
		views = append(views, ports.BidView{
			Amount:         b.Amount,
			BidderUsername: usernameOf(snap, b.UserID),
			CreatedAt:      b.CreatedAt,
		})
	}

	seller := snap.UserByID(auction.SellerID)
	detail := &ports.AuctionDetail{
		ID:              auction.ID,
		ItemName:        auction.ItemName,
		SellerUsername:  usernameOf(snap, auction.SellerID),
		StartPrice:      auction.StartPrice,
		CurrentPrice:    auction.CurrentPrice,
		PriceProgress:   priceProgress(auction, len(bids)),
		Bids:            views,
		SellerIsUnknown: seller == nil,
	}
	return detail, nil
}

func (s *AuctionService) ListUsers(ctx context.Context) ([]ports.UserView, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]ports.UserView, 0, len(snap.Users))
	for _, u := range snap.Users {
		views = append(views, ports.UserView{
			ID:        u.ID,
			Username:  u.Username,
			IsAdmin:   u.IsAdmin,
			IsBlocked: u.IsBlocked,
		})
	}
	return views, nil
}

func (s *AuctionService) Select(auctionID string) {
	s.mu.Lock()
	s.selectedID = auctionID
	s.mu.Unlock()
}

func usernameOf(snap *domain.Snapshot, userID string) string {
	if u := snap.UserByID(userID); u != nil {
		return u.Username
	}
	return ""
}

// priceProgress renders the increase over the start price as a percentage.
func priceProgress(a *domain.Auction, bidCount int) string {
	if bidCount == 0 || a.StartPrice == 0 {
		return "0 %"
	}
	pct := float64(a.CurrentPrice-a.StartPrice) / float64(a.StartPrice) * 100
	return fmt.Sprintf("%.2f %%", pct)
}
