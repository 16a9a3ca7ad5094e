package inventory

import (
	"github.com/saltyorg/partsroom/internal/database"
)

// InsertPartType creates a type. The name is unique regardless of case.
func (s *Service) InsertPartType(name, unit string) (Result, error) {
	if !CheckInput(name) || !CheckInput(unit) {
		return rejected(ReasonInvalidInput), nil
	}

	pt, err := s.db.CreatePartType(name, unit)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return rejected(ReasonDuplicate), nil
		}
		return Result{}, err
	}

	s.publish(EventTypeChanged, pt)
	return applied(pt.ID), nil
}

// UpdatePartType renames a type or changes its unit. Parts keep the unit
// they were saved with until they are next updated.
func (s *Service) UpdatePartType(id int64, name, unit string) (Result, error) {
	if !CheckInput(name) || !CheckInput(unit) {
		return rejected(ReasonInvalidInput), nil
	}

	taken, err := s.db.PartTypeNameTaken(name, id)
	if err != nil {
		return Result{}, err
	}
	if taken {
		return rejected(ReasonDuplicate), nil
	}

	ok, err := s.db.UpdatePartType(id, name, unit)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return rejected(ReasonDuplicate), nil
		}
		return Result{}, err
	}
	if ok {
		s.publish(EventTypeChanged, &database.PartType{ID: id, Name: name, Unit: unit})
	}
	return appliedIf(ok, id), nil
}

// DeletePartType removes a type
func (s *Service) DeletePartType(id int64) (Result, error) {
	ok, err := s.db.DeletePartType(id)
	if err != nil {
		return Result{}, err
	}
	if ok {
		s.publish(EventTypeChanged, map[string]any{"id": id, "deleted": true})
	}
	return appliedIf(ok, id), nil
}

// ListPartTypes returns every type
func (s *Service) ListPartTypes() ([]*database.PartType, error) {
	return s.db.ListPartTypes()
}

// PartTypeNames returns the name of every type
func (s *Service) PartTypeNames() ([]string, error) {
	types, err := s.db.ListPartTypes()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(types))
	for _, pt := range types {
		names = append(names, pt.Name)
	}
	return names, nil
}

// PartsByType returns the parts filed under a type name
func (s *Service) PartsByType(name string) ([]*database.Part, error) {
	return s.db.ListPartsByType(name)
}

// UnitForType returns the unit of the named type, "" when there is no such type
func (s *Service) UnitForType(name string) (string, error) {
	pt, err := s.db.GetPartTypeByName(name)
	if err != nil || pt == nil {
		return "", err
	}
	return pt.Unit, nil
}

// CheckIfTypeExists reports whether a type with this name exists
func (s *Service) CheckIfTypeExists(name string) (bool, error) {
	pt, err := s.db.GetPartTypeByName(name)
	if err != nil {
		return false, err
	}
	return pt != nil, nil
}
