package database

import (
	"database/sql"
	"errors"
	"fmt"
)

// Part is a stocked item. PartStoreName and Type reference their tables by
// name; Unit is a copy of the type's unit taken at insert/update time.
type Part struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Amount        int64  `json:"amount"`
	PartNumber    string `json:"part_number"`
	PartStoreName string `json:"part_store_name"`
	Type          string `json:"type"`
	Unit          string `json:"unit"`
	LowThresh     int64  `json:"low_thresh"`
}

// AmountUpdate sets a new amount on one part.
type AmountUpdate struct {
	PartID int64 `json:"id" validate:"required,gt=0"`
	Amount int64 `json:"amount" validate:"gte=0"`
}

const partColumns = "id, name, amount, part_number, part_store_name, type, unit, low_thresh"

func scanPart(row interface{ Scan(...any) error }) (*Part, error) {
	p := &Part{}
	if err := row.Scan(&p.ID, &p.Name, &p.Amount, &p.PartNumber, &p.PartStoreName, &p.Type, &p.Unit, &p.LowThresh); err != nil {
		return nil, err
	}
	return p, nil
}

func (db *DB) listParts(query string, args ...any) ([]*Part, error) {
	rows, err := db.query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list parts: %w", err)
	}
	defer rows.Close()

	var parts []*Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan part: %w", err)
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

// CreatePart inserts a part and sets its ID.
func (db *DB) CreatePart(p *Part) error {
	result, err := db.exec(`
		INSERT INTO parts (name, amount, part_number, part_store_name, type, unit, low_thresh)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.Name, p.Amount, p.PartNumber, p.PartStoreName, p.Type, p.Unit, p.LowThresh)
	if err != nil {
		return fmt.Errorf("failed to create part: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get part id: %w", err)
	}
	p.ID = id
	return nil
}

// UpdatePart rewrites every column except the threshold.
func (db *DB) UpdatePart(p *Part) (bool, error) {
	result, err := db.exec(`
		UPDATE parts
		SET name = ?, amount = ?, part_number = ?, part_store_name = ?, type = ?, unit = ?
		WHERE id = ?
	`, p.Name, p.Amount, p.PartNumber, p.PartStoreName, p.Type, p.Unit, p.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update part: %w", err)
	}
	return affected(result)
}

// GetPart retrieves a part by ID.
func (db *DB) GetPart(id int64) (*Part, error) {
	p, err := scanPart(db.queryRow("SELECT "+partColumns+" FROM parts WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get part: %w", err)
	}
	return p, nil
}

// ListParts returns every part.
func (db *DB) ListParts() ([]*Part, error) {
	return db.listParts("SELECT " + partColumns + " FROM parts ORDER BY id")
}

// ListPartsByStore returns parts sourced from the named store.
func (db *DB) ListPartsByStore(storeName string) ([]*Part, error) {
	return db.listParts("SELECT "+partColumns+" FROM parts WHERE part_store_name = ? ORDER BY id", storeName)
}

// ListPartsByType returns parts of the named type.
func (db *DB) ListPartsByType(typeName string) ([]*Part, error) {
	return db.listParts("SELECT "+partColumns+" FROM parts WHERE type = ? COLLATE NOCASE ORDER BY id", typeName)
}

// ListLowParts returns parts whose amount is strictly below their threshold.
func (db *DB) ListLowParts() ([]*Part, error) {
	return db.listParts("SELECT " + partColumns + " FROM parts WHERE amount < low_thresh ORDER BY id")
}

// SumPartsByStore totals the amount of every part in the named store.
func (db *DB) SumPartsByStore(storeName string) (int64, error) {
	var total sql.NullInt64
	err := db.queryRow("SELECT SUM(amount) FROM parts WHERE part_store_name = ?", storeName).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum parts: %w", err)
	}
	return total.Int64, nil
}

// UpdatePartThreshold sets the low-stock threshold.
func (db *DB) UpdatePartThreshold(id, thresh int64) (bool, error) {
	result, err := db.exec("UPDATE parts SET low_thresh = ? WHERE id = ?", thresh, id)
	if err != nil {
		return false, fmt.Errorf("failed to update threshold: %w", err)
	}
	return affected(result)
}

// UpdatePartAmounts applies a batch of amount changes atomically and returns
// how many rows matched.
func (db *DB) UpdatePartAmounts(updates []AmountUpdate) (int64, error) {
	var total int64
	err := db.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare("UPDATE parts SET amount = ? WHERE id = ?")
		if err != nil {
			return fmt.Errorf("failed to prepare amount update: %w", err)
		}
		defer stmt.Close()

		for _, u := range updates {
			result, err := stmt.Exec(u.Amount, u.PartID)
			if err != nil {
				return fmt.Errorf("failed to update part %d: %w", u.PartID, err)
			}
			n, err := result.RowsAffected()
			if err != nil {
				return err
			}
			total += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// DeletePart removes a part.
func (db *DB) DeletePart(id int64) (bool, error) {
	result, err := db.exec("DELETE FROM parts WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete part: %w", err)
	}
	return affected(result)
}
