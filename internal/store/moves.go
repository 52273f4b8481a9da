package store

import (
	"context"
	"fmt"

	"github.com/erazemk/omara/internal/db"
	"github.com/erazemk/omara/internal/model"
)

// recordMove inserts a relocation into the move history.
func recordMove(ctx context.Context, tx *db.Tx, m *model.Move) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO moves (owner_id, cloth_id, from_bag_id, to_bag_id, moved_at) VALUES (?, ?, ?, ?, ?)`,
		m.OwnerID, m.ClothID, m.FromBagID, m.ToBagID, db.FormatTime(m.MovedAt),
	)
	if err != nil {
		return fmt.Errorf("recording move: %w", err)
	}
	return nil
}

// ListMoves returns the relocation history of a cloth, newest first.
// Bag names are joined when the bags still exist.
func ListMoves(ctx context.Context, database *db.DB, ownerID, clothID string) ([]model.Move, error) {
	rows, err := database.QueryContext(ctx,
		`SELECT m.id, m.cloth_id, m.from_bag_id, m.to_bag_id, m.owner_id, m.moved_at,
		        COALESCE(fb.name, ''), COALESCE(tb.name, '')
		 FROM moves m
		 LEFT JOIN bags fb ON fb.owner_id = m.owner_id AND fb.bag_id = m.from_bag_id
		 LEFT JOIN bags tb ON tb.owner_id = m.owner_id AND tb.bag_id = m.to_bag_id
		 WHERE m.owner_id = ? AND m.cloth_id = ?
		 ORDER BY m.moved_at DESC, m.id DESC`, ownerID, clothID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing moves: %w", err)
	}
	defer rows.Close()

	var moves []model.Move
	for rows.Next() {
		var m model.Move
		if err := rows.Scan(&m.ID, &m.ClothID, &m.FromBagID, &m.ToBagID, &m.OwnerID, db.Time(&m.MovedAt),
			&m.FromBagName, &m.ToBagName); err != nil {
			return nil, fmt.Errorf("scanning move: %w", err)
		}
		moves = append(moves, m)
	}
	return moves, rows.Err()
}
