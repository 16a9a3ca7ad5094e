package database

import (
	"database/sql"
	"errors"
	"fmt"
)

// PartStore is a named supplier or location that parts are sourced from.
type PartStore struct {
	ID   int64  `json:"id"`
	Name string `json:"part_store_name"`
	Icon string `json:"icon"`
}

// CreatePartStore inserts a new part store.
func (db *DB) CreatePartStore(name, icon string) (*PartStore, error) {
	result, err := db.exec("INSERT INTO part_stores (part_store_name, icon) VALUES (?, ?)", name, icon)
	if err != nil {
		return nil, fmt.Errorf("failed to create part store: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get part store id: %w", err)
	}

	return &PartStore{ID: id, Name: name, Icon: icon}, nil
}

// GetPartStore retrieves a part store by ID.
func (db *DB) GetPartStore(id int64) (*PartStore, error) {
	store := &PartStore{}
	err := db.queryRow("SELECT id, part_store_name, icon FROM part_stores WHERE id = ?", id).
		Scan(&store.ID, &store.Name, &store.Icon)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get part store: %w", err)
	}
	return store, nil
}

// ListPartStores returns all part stores ordered by the integer value of
// their name, then by name. Non-numeric names cast to 0 and sort first.
func (db *DB) ListPartStores() ([]*PartStore, error) {
	rows, err := db.query(`
		SELECT id, part_store_name, icon FROM part_stores
		ORDER BY CAST(part_store_name AS INTEGER), part_store_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list part stores: %w", err)
	}
	defer rows.Close()

	var stores []*PartStore
	for rows.Next() {
		s := &PartStore{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Icon); err != nil {
			return nil, fmt.Errorf("failed to scan part store: %w", err)
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

// PartStoreNameExists reports whether a store with this exact name exists.
func (db *DB) PartStoreNameExists(name string) (bool, error) {
	var count int
	err := db.queryRow("SELECT COUNT(*) FROM part_stores WHERE part_store_name = ?", name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check part store: %w", err)
	}
	return count > 0, nil
}

// UpdatePartStoreIcon changes only the icon.
func (db *DB) UpdatePartStoreIcon(id int64, icon string) (bool, error) {
	result, err := db.exec("UPDATE part_stores SET icon = ? WHERE id = ?", icon, id)
	if err != nil {
		return false, fmt.Errorf("failed to update part store icon: %w", err)
	}
	return affected(result)
}

// UpdatePartStoreName changes only the name.
func (db *DB) UpdatePartStoreName(id int64, name string) (bool, error) {
	result, err := db.exec("UPDATE part_stores SET part_store_name = ? WHERE id = ?", name, id)
	if err != nil {
		return false, fmt.Errorf("failed to update part store name: %w", err)
	}
	return affected(result)
}

// UpdatePartStore changes both name and icon.
func (db *DB) UpdatePartStore(id int64, name, icon string) (bool, error) {
	result, err := db.exec("UPDATE part_stores SET part_store_name = ?, icon = ? WHERE id = ?", name, icon, id)
	if err != nil {
		return false, fmt.Errorf("failed to update part store: %w", err)
	}
	return affected(result)
}

// DeletePartStore removes a part store. Parts that reference it by name are left alone.
func (db *DB) DeletePartStore(id int64) (bool, error) {
	result, err := db.exec("DELETE FROM part_stores WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete part store: %w", err)
	}
	return affected(result)
}
