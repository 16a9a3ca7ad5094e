package database

import (
	"database/sql"
	"errors"
	"fmt"
)

// PartType groups parts and carries the unit of measure copied onto them.
type PartType struct {
	ID   int64  `json:"id"`
	Name string `json:"type_name"`
	Unit string `json:"type_unit"`
}

// CreatePartType inserts a new part type.
func (db *DB) CreatePartType(name, unit string) (*PartType, error) {
	result, err := db.exec("INSERT INTO part_types (type_name, type_unit) VALUES (?, ?)", name, unit)
	if err != nil {
		return nil, fmt.Errorf("failed to create part type: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get part type id: %w", err)
	}

	return &PartType{ID: id, Name: name, Unit: unit}, nil
}

// GetPartTypeByName retrieves a part type by name (case-insensitive).
func (db *DB) GetPartTypeByName(name string) (*PartType, error) {
	pt := &PartType{}
	err := db.queryRow("SELECT id, type_name, type_unit FROM part_types WHERE type_name = ?", name).
		Scan(&pt.ID, &pt.Name, &pt.Unit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get part type: %w", err)
	}
	return pt, nil
}

// ListPartTypes returns all part types.
func (db *DB) ListPartTypes() ([]*PartType, error) {
	rows, err := db.query("SELECT id, type_name, type_unit FROM part_types ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list part types: %w", err)
	}
	defer rows.Close()

	var types []*PartType
	for rows.Next() {
		pt := &PartType{}
		if err := rows.Scan(&pt.ID, &pt.Name, &pt.Unit); err != nil {
			return nil, fmt.Errorf("failed to scan part type: %w", err)
		}
		types = append(types, pt)
	}
	return types, rows.Err()
}

// PartTypeNameTaken reports whether another type (any ID but excludeID) uses the name.
// Pass 0 to check against every type.
func (db *DB) PartTypeNameTaken(name string, excludeID int64) (bool, error) {
	var count int
	err := db.queryRow("SELECT COUNT(*) FROM part_types WHERE type_name = ? AND id != ?", name, excludeID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check part type: %w", err)
	}
	return count > 0, nil
}

// UpdatePartType changes a part type's name and unit.
func (db *DB) UpdatePartType(id int64, name, unit string) (bool, error) {
	result, err := db.exec("UPDATE part_types SET type_name = ?, type_unit = ? WHERE id = ?", name, unit, id)
	if err != nil {
		return false, fmt.Errorf("failed to update part type: %w", err)
	}
	return affected(result)
}

// DeletePartType removes a part type.
func (db *DB) DeletePartType(id int64) (bool, error) {
	result, err := db.exec("DELETE FROM part_types WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete part type: %w", err)
	}
	return affected(result)
}
