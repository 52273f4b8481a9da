package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/omara/internal/db"
	"github.com/erazemk/omara/internal/model"
)

// CreateBag inserts a bag. Uniqueness of (owner, bag id) and (owner, barcode)
// is enforced by the database; violations return ErrDuplicateBagID or
// ErrDuplicateBarcode.
func CreateBag(ctx context.Context, database *db.DB, ownerID, bagID, name, barcode string, createdAt time.Time) (*model.Bag, error) {
	_, err := database.ExecContext(ctx,
		`INSERT INTO bags (owner_id, bag_id, name, barcode_value, created_at) VALUES (?, ?, ?, ?, ?)`,
		ownerID, bagID, name, barcode, db.FormatTime(createdAt),
	)
	if err != nil {
		return nil, classifyDuplicate("creating bag", err)
	}

	return GetBag(ctx, database, ownerID, bagID)
}

// GetBag returns a bag by its bag id, scoped to the owner.
func GetBag(ctx context.Context, database *db.DB, ownerID, bagID string) (*model.Bag, error) {
	b := &model.Bag{}
	err := database.QueryRowContext(ctx,
		`SELECT bag_id, name, barcode_value, owner_id, created_at
		 FROM bags WHERE owner_id = ? AND bag_id = ?`, ownerID, bagID,
	).Scan(&b.BagID, &b.Name, &b.BarcodeValue, &b.OwnerID, db.Time(&b.CreatedAt))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting bag: %w", err)
	}
	return b, nil
}

// GetBagByBarcode returns the owner's bag with the exact barcode value.
func GetBagByBarcode(ctx context.Context, database *db.DB, ownerID, barcode string) (*model.Bag, error) {
	b := &model.Bag{}
	err := database.QueryRowContext(ctx,
		`SELECT bag_id, name, barcode_value, owner_id, created_at
		 FROM bags WHERE owner_id = ? AND barcode_value = ?`, ownerID, barcode,
	).Scan(&b.BagID, &b.Name, &b.BarcodeValue, &b.OwnerID, db.Time(&b.CreatedAt))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting bag by barcode: %w", err)
	}
	return b, nil
}

// LatestBag returns the owner's most recently created bag, or nil.
func LatestBag(ctx context.Context, database *db.DB, ownerID string) (*model.Bag, error) {
	b := &model.Bag{}
	err := database.QueryRowContext(ctx,
		`SELECT bag_id, name, barcode_value, owner_id, created_at
		 FROM bags WHERE owner_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT 1`, ownerID,
	).Scan(&b.BagID, &b.Name, &b.BarcodeValue, &b.OwnerID, db.Time(&b.CreatedAt))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting latest bag: %w", err)
	}
	return b, nil
}

const bagWithCountSelect = `SELECT b.bag_id, b.name, b.barcode_value, b.owner_id, b.created_at,
	        (SELECT COUNT(*) FROM clothes c WHERE c.owner_id = b.owner_id AND c.container_bag_id = b.bag_id)
	 FROM bags b`

// ListBags returns the owner's bags, newest first, each with its cloth count.
func ListBags(ctx context.Context, database *db.DB, ownerID string) ([]model.BagWithCount, error) {
	rows, err := database.QueryContext(ctx,
		bagWithCountSelect+` WHERE b.owner_id = ? ORDER BY b.created_at DESC, b.id DESC`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing bags: %w", err)
	}
	defer rows.Close()

	var bags []model.BagWithCount
	for rows.Next() {
		var b model.BagWithCount
		if err := rows.Scan(&b.BagID, &b.Name, &b.BarcodeValue, &b.OwnerID, db.Time(&b.CreatedAt), &b.ClothCount); err != nil {
			return nil, fmt.Errorf("scanning bag: %w", err)
		}
		bags = append(bags, b)
	}
	return bags, rows.Err()
}

// GetBagWithCount returns a single bag with its cloth count.
func GetBagWithCount(ctx context.Context, database *db.DB, ownerID, bagID string) (*model.BagWithCount, error) {
	b := &model.BagWithCount{}
	err := database.QueryRowContext(ctx,
		bagWithCountSelect+` WHERE b.owner_id = ? AND b.bag_id = ?`, ownerID, bagID,
	).Scan(&b.BagID, &b.Name, &b.BarcodeValue, &b.OwnerID, db.Time(&b.CreatedAt), &b.ClothCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting bag: %w", err)
	}
	return b, nil
}

// RenameBag changes a bag's name. Returns false if the bag does not exist.
func RenameBag(ctx context.Context, database *db.DB, ownerID, bagID, name string) (bool, error) {
	result, err := database.ExecContext(ctx,
		`UPDATE bags SET name = ? WHERE owner_id = ? AND bag_id = ?`,
		name, ownerID, bagID,
	)
	if err != nil {
		return false, fmt.Errorf("renaming bag: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("renaming bag: %w", err)
	}
	return n > 0, nil
}

// DeleteBag deletes a bag and every cloth in it in one transaction. It returns
// the image keys of the deleted clothes so the caller can release them.
// found is false if the bag does not exist.
func DeleteBag(ctx context.Context, database *db.DB, ownerID, bagID string) (imageKeys []string, found bool, err error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bags WHERE owner_id = ? AND bag_id = ?`, ownerID, bagID,
	).Scan(&exists)
	if err != nil {
		return nil, false, fmt.Errorf("checking bag: %w", err)
	}
	if exists == 0 {
		return nil, false, nil
	}

	rows, err := tx.QueryContext(ctx,
		`DELETE FROM clothes WHERE owner_id = ? AND container_bag_id = ? RETURNING image_key`,
		ownerID, bagID,
	)
	if err != nil {
		return nil, true, fmt.Errorf("deleting bag contents: %w", err)
	}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			rows.Close()
			return nil, true, fmt.Errorf("scanning image key: %w", err)
		}
		imageKeys = append(imageKeys, key)
	}
	if err := rows.Close(); err != nil {
		return nil, true, fmt.Errorf("deleting bag contents: %w", err)
	}
	if err := rows.Err(); err != nil {
		return nil, true, fmt.Errorf("deleting bag contents: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM bags WHERE owner_id = ? AND bag_id = ?`, ownerID, bagID,
	); err != nil {
		return nil, true, fmt.Errorf("deleting bag: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, true, fmt.Errorf("committing bag deletion: %w", err)
	}
	return imageKeys, true, nil
}

// BagNames returns display names for the given bag ids in a single query.
// Ids that do not belong to the owner are absent from the map.
func BagNames(ctx context.Context, database *db.DB, ownerID string, bagIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(bagIDs))
	if len(bagIDs) == 0 {
		return names, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(bagIDs)), ", ")
	args := make([]any, 0, len(bagIDs)+1)
	args = append(args, ownerID)
	for _, id := range bagIDs {
		args = append(args, id)
	}

	rows, err := database.QueryContext(ctx,
		`SELECT bag_id, name FROM bags WHERE owner_id = ? AND bag_id IN (`+placeholders+`)`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("looking up bag names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scanning bag name: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}
