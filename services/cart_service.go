package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roshshop/backend/models"
	"github.com/roshshop/backend/repository"
)

// CartService merges the anonymous guest cart into the logged-in user's cart
// when a session is established.
type CartService struct {
	guestCarts repository.GuestCartRepository
	userCarts  repository.CartRepository
	logger     *zap.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewCartService(guestCarts repository.GuestCartRepository, userCarts repository.CartRepository, logger *zap.Logger) *CartService {
	return &CartService{
		guestCarts: guestCarts,
		userCarts:  userCarts,
		logger:     logger,
		locks:      make(map[uuid.UUID]*sync.Mutex),
	}
}

// MergeItems combines two carts keyed by product id. Products present in both
// get their quantities summed; products present in only one carry over
// unchanged. The remote ordering is preserved, guest-only lines append.
func MergeItems(remote, guest []models.CartItem) []models.CartItem {
	merged := make([]models.CartItem, len(remote))
	copy(merged, remote)

	index := make(map[uuid.UUID]int, len(merged))
	for i, item := range merged {
		index[item.ProductID] = i
	}

	for _, item := range guest {
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
		} else {
			index[item.ProductID] = len(merged)
			merged = append(merged, item)
		}
	}

	return merged
}

// Reconcile runs the login-time merge: read both carts, merge, rewrite the
// user cart as a whole, then clear the guest cart. The whole operation is a
// critical section per user id, so duplicate session-change events cannot
// double quantities; the second run sees an already-cleared guest cart.
func (s *CartService) Reconcile(ctx context.Context, userID uuid.UUID, sessionID string) ([]models.CartItem, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	remote, err := s.userCarts.GetItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	var guestItems []models.CartItem
	if sessionID != "" {
		guestCart, err := s.guestCarts.GetCart(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if guestCart != nil {
			guestItems = guestCart.Items
		}
	}

	merged := MergeItems(remote, guestItems)

	if err := s.userCarts.ReplaceItems(ctx, userID, merged); err != nil {
		return nil, err
	}

	if sessionID != "" {
		if err := s.guestCarts.DeleteCart(ctx, sessionID); err != nil {
			// The merge already landed; a leftover guest cart would double
			// quantities on the next sync, so surface the failure.
			return nil, err
		}
	}

	s.logger.Info("cart reconciled",
		zap.String("user_id", userID.String()),
		zap.Int("lines", len(merged)),
	)

	return merged, nil
}

func (s *CartService) userLock(userID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}
