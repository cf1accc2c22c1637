package services

import (
	"gorm.io/gorm"
)

// adjustResult carries the before/after pair for auditing.
type adjustResult struct {
	beforeSpent     int
	afterSpent      int
	beforeAvailable int
	afterAvailable  int
}

// AvailablePoints is the spendable balance: total earned minus total spent.
func (s *Service) AvailablePoints(user Identity) (int, error) {
	var available int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		u, err := ensureUser(tx, user)
		if err != nil {
			return err
		}
		total, err := totalPoints(tx, user.ID)
		if err != nil {
			return err
		}
		available = total - u.SpentPoints
		return nil
	})
	return available, err
}

// applyAdjustment is the single mutation path for spent_points. delta > 0
// credits, delta < 0 debits. The new spent counter is clamped into
// [0, total earned]: adjustments saturate rather than fail, so the balance
// invariant holds after every call. Must run inside a transaction that holds
// the user row.
func applyAdjustment(tx *gorm.DB, target Identity, delta int) (*adjustResult, error) {
	u, err := ensureUser(tx, target)
	if err != nil {
		return nil, err
	}
	total, err := totalPoints(tx, target.ID)
	if err != nil {
		return nil, err
	}

	res := &adjustResult{
		beforeSpent:     u.SpentPoints,
		beforeAvailable: total - u.SpentPoints,
	}

	newSpent := u.SpentPoints - delta
	if newSpent < 0 {
		newSpent = 0
	}
	if newSpent > total {
		newSpent = total
	}

	u.SpentPoints = newSpent
	if err := tx.Save(u).Error; err != nil {
		return nil, err
	}

	res.afterSpent = newSpent
	res.afterAvailable = total - newSpent
	return res, nil
}

// AdjustPoints changes the target's available balance by delta (positive
// credits, negative debits) and writes a best-effort audit record. A zero
// delta is rejected; out-of-range deltas clamp silently.
func (s *Service) AdjustPoints(actor, target Identity, delta int) (*Summary, error) {
	if delta == 0 {
		return nil, ErrZeroDelta
	}

	var res *adjustResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = applyAdjustment(tx, target, delta)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(actor, "jifen_adjust_points", map[string]any{
		"target_user_id":   target.ID,
		"target_username":  target.Username,
		"delta":            delta,
		"before_spent":     res.beforeSpent,
		"after_spent":      res.afterSpent,
		"before_available": res.beforeAvailable,
		"after_available":  res.afterAvailable,
	})

	return s.Summary(target)
}

// PurchaseMakeupCard debits the configured card price and grants one makeup
// card, atomically. Unlike AdjustPoints this is a real purchase, so an
// insufficient balance is rejected instead of clamped.
func (s *Service) PurchaseMakeupCard(user Identity) (*Summary, error) {
	st := s.Settings()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		u, err := ensureUser(tx, user)
		if err != nil {
			return err
		}
		total, err := totalPoints(tx, user.ID)
		if err != nil {
			return err
		}
		if total-u.SpentPoints < st.MakeupCardPrice {
			return ErrInsufficientPoints
		}

		u.SpentPoints += st.MakeupCardPrice
		u.MakeupCards++
		return tx.Save(u).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Summary(user)
}
