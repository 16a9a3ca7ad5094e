package inventory

import (
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/saltyorg/partsroom/internal/database"
)

// PartInput is the user-supplied form of a part. Amount arrives as text and
// must be a plain non-negative integer.
type PartInput struct {
	Name          string `json:"name"`
	Amount        string `json:"amount"`
	PartNumber    string `json:"part_number"`
	PartStoreName string `json:"part_store_name"`
	Type          string `json:"type"`
}

// check validates every field and resolves the unit from the part type
func (s *Service) check(in PartInput) (*database.Part, Reason, error) {
	for _, field := range []string{in.Name, in.Amount, in.PartNumber, in.PartStoreName, in.Type} {
		if !CheckInput(field) {
			return nil, ReasonInvalidInput, nil
		}
	}
	if !IsNumeric(in.Amount) {
		return nil, ReasonNotNumeric, nil
	}
	amount, err := strconv.ParseInt(in.Amount, 10, 64)
	if err != nil {
		return nil, ReasonNotNumeric, nil
	}

	pt, err := s.db.GetPartTypeByName(in.Type)
	if err != nil {
		return nil, "", err
	}
	if pt == nil {
		return nil, ReasonUnknownType, nil
	}

	return &database.Part{
		Name:          in.Name,
		Amount:        amount,
		PartNumber:    in.PartNumber,
		PartStoreName: in.PartStoreName,
		Type:          pt.Name,
		Unit:          pt.Unit,
	}, "", nil
}

// InsertPart validates and stores a new part with its type's unit
func (s *Service) InsertPart(in PartInput) (Result, error) {
	part, reason, err := s.check(in)
	if err != nil {
		return Result{}, err
	}
	if part == nil {
		log.Debug().Str("name", in.Name).Str("reason", string(reason)).Msg("Part insert rejected")
		return rejected(reason), nil
	}

	if err := s.db.CreatePart(part); err != nil {
		return Result{}, err
	}

	s.publish(EventPartChanged, part)
	return applied(part.ID), nil
}

// UpdatePart applies the same validation as InsertPart and recopies the
// unit. The low-stock threshold is left as is.
func (s *Service) UpdatePart(id int64, in PartInput) (Result, error) {
	part, reason, err := s.check(in)
	if err != nil {
		return Result{}, err
	}
	if part == nil {
		log.Debug().Int64("part_id", id).Str("reason", string(reason)).Msg("Part update rejected")
		return rejected(reason), nil
	}

	part.ID = id
	ok, err := s.db.UpdatePart(part)
	if err != nil {
		return Result{}, err
	}
	if ok {
		s.publish(EventPartChanged, part)
	}
	return appliedIf(ok, id), nil
}

// DeletePart removes a part
func (s *Service) DeletePart(id int64) (Result, error) {
	ok, err := s.db.DeletePart(id)
	if err != nil {
		return Result{}, err
	}
	if ok {
		s.publish(EventPartChanged, map[string]any{"id": id, "deleted": true})
	}
	return appliedIf(ok, id), nil
}

// ListParts returns every part
func (s *Service) ListParts() ([]*database.Part, error) {
	return s.db.ListParts()
}

// GetPartInformation returns one part, nil when missing
func (s *Service) GetPartInformation(id int64) (*database.Part, error) {
	return s.db.GetPart(id)
}

// UpdateThreshold sets a part's low-stock threshold without validation
func (s *Service) UpdateThreshold(id, thresh int64) (Result, error) {
	ok, err := s.db.UpdatePartThreshold(id, thresh)
	if err != nil {
		return Result{}, err
	}
	if ok {
		s.publish(EventPartChanged, map[string]any{"id": id, "low_thresh": thresh})
	}
	return appliedIf(ok, id), nil
}

// GetLowParts returns parts whose amount is strictly below their threshold
func (s *Service) GetLowParts() ([]*database.Part, error) {
	return s.db.ListLowParts()
}
