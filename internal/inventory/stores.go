package inventory

import (
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/partsroom/internal/database"
)

// Selection is a value/label pair for a store picker
type Selection struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// StorePart is the compact part row used when restocking a store
type StorePart struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Amount     int64  `json:"amount"`
	PartNumber string `json:"part_number"`
}

// InsertPartStore creates a store. Both fields must pass CheckInput and the
// name must be unused.
func (s *Service) InsertPartStore(name, icon string) (Result, error) {
	if !CheckInput(name) || !CheckInput(icon) {
		return rejected(ReasonInvalidInput), nil
	}

	store, err := s.db.CreatePartStore(name, icon)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return rejected(ReasonDuplicate), nil
		}
		return Result{}, err
	}

	s.publish(EventStoreChanged, store)
	return applied(store.ID), nil
}

// UpdatePartStore diffs the requested name and icon against the stored row:
// an icon-only change needs a known icon, a name-only change needs a valid
// unused name, and changing both needs both.
func (s *Service) UpdatePartStore(id int64, name, icon string) (Result, error) {
	current, err := s.db.GetPartStore(id)
	if err != nil {
		return Result{}, err
	}
	if current == nil {
		return rejected(ReasonNotFound), nil
	}

	nameChanged := name != current.Name
	iconChanged := icon != current.Icon

	var ok bool
	switch {
	case !nameChanged && !iconChanged:
		return rejected(ReasonUnchanged), nil

	case !nameChanged:
		if !s.iconExists(icon) {
			return rejected(ReasonUnknownIcon), nil
		}
		ok, err = s.db.UpdatePartStoreIcon(id, icon)

	case !iconChanged:
		if !CheckInput(name) {
			return rejected(ReasonInvalidInput), nil
		}
		ok, err = s.db.UpdatePartStoreName(id, name)

	default:
		if !CheckInput(name) {
			return rejected(ReasonInvalidInput), nil
		}
		if !s.iconExists(icon) {
			return rejected(ReasonUnknownIcon), nil
		}
		ok, err = s.db.UpdatePartStore(id, name, icon)
	}

	if err != nil {
		if database.IsUniqueViolation(err) {
			return rejected(ReasonDuplicate), nil
		}
		return Result{}, err
	}

	if ok {
		log.Debug().Int64("store_id", id).Bool("name", nameChanged).Bool("icon", iconChanged).Msg("Part store updated")
		s.publish(EventStoreChanged, &database.PartStore{ID: id, Name: name, Icon: icon})
	}
	return appliedIf(ok, id), nil
}

// DeletePartStore removes a store. Its parts keep their store name.
func (s *Service) DeletePartStore(id int64) (Result, error) {
	ok, err := s.db.DeletePartStore(id)
	if err != nil {
		return Result{}, err
	}
	if ok {
		s.publish(EventStoreChanged, map[string]any{"id": id, "deleted": true})
	}
	return appliedIf(ok, id), nil
}

// ListPartStores returns every store, numeric names in numeric order
func (s *Service) ListPartStores() ([]*database.PartStore, error) {
	return s.db.ListPartStores()
}

// StoreSelections returns a name/name pair per store for pickers
func (s *Service) StoreSelections() ([]Selection, error) {
	stores, err := s.db.ListPartStores()
	if err != nil {
		return nil, err
	}

	selections := make([]Selection, 0, len(stores))
	for _, store := range stores {
		selections = append(selections, Selection{Value: store.Name, Label: store.Name})
	}
	return selections, nil
}

// CheckIfStoreExists reports whether a store with this name exists
func (s *Service) CheckIfStoreExists(name string) (bool, error) {
	return s.db.PartStoreNameExists(name)
}

// GetCurrentStoreNameIcon returns the stored row for id, nil when missing
func (s *Service) GetCurrentStoreNameIcon(id int64) (*database.PartStore, error) {
	return s.db.GetPartStore(id)
}

// PartsInStore returns full part rows for a store, nil when it has none
func (s *Service) PartsInStore(name string) ([]*database.Part, error) {
	parts, err := s.db.ListPartsByStore(name)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, nil
	}
	return parts, nil
}

// PartsByStore returns the id, name, amount and number of each part in a store
func (s *Service) PartsByStore(name string) ([]StorePart, error) {
	parts, err := s.db.ListPartsByStore(name)
	if err != nil {
		return nil, err
	}

	out := make([]StorePart, 0, len(parts))
	for _, p := range parts {
		out = append(out, StorePart{ID: p.ID, Name: p.Name, Amount: p.Amount, PartNumber: p.PartNumber})
	}
	return out, nil
}

// TotalPartsByStore sums the amounts in a store, 0 when it has no parts
func (s *Service) TotalPartsByStore(name string) (int64, error) {
	return s.db.SumPartsByStore(name)
}

// UpdateAmounts applies a batch of amount changes in one transaction.
// One invalid entry rejects the whole batch.
func (s *Service) UpdateAmounts(updates []database.AmountUpdate) (Result, error) {
	if len(updates) == 0 {
		return rejected(ReasonInvalidInput), nil
	}
	for i := range updates {
		if err := s.validate.Struct(updates[i]); err != nil {
			log.Debug().Err(err).Int("index", i).Msg("Amount update rejected")
			return rejected(ReasonInvalidInput), nil
		}
	}

	n, err := s.db.UpdatePartAmounts(updates)
	if err != nil {
		return Result{}, err
	}

	s.publish(EventPartChanged, map[string]any{"updated": n})
	return Result{Applied: n > 0, Affected: n, Reason: reasonIfNone(n)}, nil
}

func reasonIfNone(n int64) Reason {
	if n == 0 {
		return ReasonNotFound
	}
	return ""
}
