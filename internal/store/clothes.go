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

const clothColumns = `cloth_id, owner_id, name, color, owner, category, notes,
	image_url, image_key, image_blurhash, container_bag_id, favorite,
	last_moved_at, created_at, updated_at`

// ClothFilter is a compiled filter for listing clothes. Clauses are ANDed
// together; OrderBy is a trusted ORDER BY expression.
type ClothFilter struct {
	Clauses []string
	Args    []any
	OrderBy string
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCloth(s rowScanner, c *model.Cloth) error {
	return s.Scan(&c.ClothID, &c.OwnerID, &c.Name, &c.Color, &c.Owner, &c.Category, &c.Notes,
		&c.URL, &c.Key, &c.BlurHash, &c.ContainerBagID, &c.Favorite,
		db.Time(&c.LastMovedTimestamp), db.Time(&c.CreatedAt), db.Time(&c.UpdatedAt))
}

// CreateCloth inserts a fully populated cloth.
func CreateCloth(ctx context.Context, database *db.DB, c model.Cloth) (*model.Cloth, error) {
	_, err := database.ExecContext(ctx,
		`INSERT INTO clothes (`+clothColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ClothID, c.OwnerID, c.Name, c.Color, c.Owner, c.Category, c.Notes,
		c.URL, c.Key, c.BlurHash, c.ContainerBagID, c.Favorite,
		db.FormatTime(c.LastMovedTimestamp), db.FormatTime(c.CreatedAt), db.FormatTime(c.UpdatedAt),
	)
	if err != nil {
		return nil, classifyDuplicate("creating cloth", err)
	}

	return GetCloth(ctx, database, c.OwnerID, c.ClothID)
}

// GetCloth returns a cloth by id, scoped to the owner.
func GetCloth(ctx context.Context, database *db.DB, ownerID, clothID string) (*model.Cloth, error) {
	c := &model.Cloth{}
	err := scanCloth(database.QueryRowContext(ctx,
		`SELECT `+clothColumns+` FROM clothes WHERE owner_id = ? AND cloth_id = ?`, ownerID, clothID,
	), c)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting cloth: %w", err)
	}
	return c, nil
}

// ListClothes returns clothes matching the filter.
func ListClothes(ctx context.Context, database *db.DB, f ClothFilter) ([]model.Cloth, error) {
	query := `SELECT ` + clothColumns + ` FROM clothes`
	if len(f.Clauses) > 0 {
		query += ` WHERE ` + strings.Join(f.Clauses, ` AND `)
	}
	if f.OrderBy != "" {
		query += ` ORDER BY ` + f.OrderBy
	}

	rows, err := database.QueryContext(ctx, query, f.Args...)
	if err != nil {
		return nil, fmt.Errorf("listing clothes: %w", err)
	}
	defer rows.Close()

	return scanClothes(rows)
}

// ListClothesInBag returns the owner's clothes in a bag, newest first.
func ListClothesInBag(ctx context.Context, database *db.DB, ownerID, bagID string) ([]model.Cloth, error) {
	rows, err := database.QueryContext(ctx,
		`SELECT `+clothColumns+` FROM clothes
		 WHERE owner_id = ? AND container_bag_id = ?
		 ORDER BY created_at DESC, cloth_id DESC`, ownerID, bagID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing clothes in bag: %w", err)
	}
	defer rows.Close()

	return scanClothes(rows)
}

func scanClothes(rows *sql.Rows) ([]model.Cloth, error) {
	var clothes []model.Cloth
	for rows.Next() {
		var c model.Cloth
		if err := scanCloth(rows, &c); err != nil {
			return nil, fmt.Errorf("scanning cloth: %w", err)
		}
		clothes = append(clothes, c)
	}
	return clothes, rows.Err()
}

// ClothChanges is a partial cloth update. Nil fields keep their stored value.
//
// A set Move only applies while the cloth is still in Move.FromBagID, and a
// set Image only while the stored key is still PrevImageKey. Otherwise the
// update returns ErrClothChanged and writes nothing.
type ClothChanges struct {
	Name         *string
	Color        *string
	Owner        *string
	Category     *string
	Notes        *string
	Favorite     *bool
	Image        *model.ImageRef
	PrevImageKey string
	Move         *model.Move
	UpdatedAt    time.Time
}

// UpdateCloth applies ch to one cloth and records ch.Move in the same
// transaction. found is false if the owner has no such cloth.
func UpdateCloth(ctx context.Context, database *db.DB, ownerID, clothID string, ch ClothChanges) (found bool, err error) {
	var sets []string
	var args []any
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	for _, f := range []struct {
		column string
		value  *string
	}{
		{"name", ch.Name},
		{"color", ch.Color},
		{"owner", ch.Owner},
		{"category", ch.Category},
		{"notes", ch.Notes},
	} {
		if f.value != nil {
			set(f.column, *f.value)
		}
	}
	if ch.Favorite != nil {
		set("favorite", *ch.Favorite)
	}
	if ch.Image != nil {
		set("image_url", ch.Image.URL)
		set("image_key", ch.Image.Key)
		set("image_blurhash", ch.Image.BlurHash)
	}
	if ch.Move != nil {
		set("container_bag_id", ch.Move.ToBagID)
		set("last_moved_at", db.FormatTime(ch.Move.MovedAt))
	}
	set("updated_at", db.FormatTime(ch.UpdatedAt))

	where := []string{"owner_id = ?", "cloth_id = ?"}
	args = append(args, ownerID, clothID)
	if ch.Move != nil {
		where = append(where, "container_bag_id = ?")
		args = append(args, ch.Move.FromBagID)
	}
	if ch.Image != nil {
		where = append(where, "image_key = ?")
		args = append(args, ch.PrevImageKey)
	}

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE clothes SET `+strings.Join(sets, ", ")+` WHERE `+strings.Join(where, " AND "),
		args...,
	)
	if err != nil {
		return false, fmt.Errorf("updating cloth: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating cloth: %w", err)
	}
	if n == 0 {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM clothes WHERE owner_id = ? AND cloth_id = ?`, ownerID, clothID,
		).Scan(&exists)
		if err != nil {
			return false, fmt.Errorf("updating cloth: %w", err)
		}
		if exists == 0 {
			return false, nil
		}
		return true, ErrClothChanged
	}

	if ch.Move != nil {
		if err := recordMove(ctx, tx, ch.Move); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing cloth update: %w", err)
	}
	return true, nil
}

// ToggleFavorite flips a cloth's favorite flag and returns the new value.
// found is false if the cloth does not exist.
func ToggleFavorite(ctx context.Context, database *db.DB, ownerID, clothID string, now time.Time) (favorite, found bool, err error) {
	err = database.QueryRowContext(ctx,
		`UPDATE clothes SET favorite = NOT favorite, updated_at = ?
		 WHERE owner_id = ? AND cloth_id = ?
		 RETURNING favorite`,
		db.FormatTime(now), ownerID, clothID,
	).Scan(&favorite)
	if err == sql.ErrNoRows {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("toggling favorite: %w", err)
	}
	return favorite, true, nil
}

// DeleteCloth deletes a cloth and returns its image key.
// found is false if the cloth does not exist.
func DeleteCloth(ctx context.Context, database *db.DB, ownerID, clothID string) (imageKey string, found bool, err error) {
	err = database.QueryRowContext(ctx,
		`DELETE FROM clothes WHERE owner_id = ? AND cloth_id = ? RETURNING image_key`,
		ownerID, clothID,
	).Scan(&imageKey)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("deleting cloth: %w", err)
	}
	return imageKey, true, nil
}

// GetFilterOptions returns the distinct non-empty colors, owners and
// categories in use, plus the owner's bags.
func GetFilterOptions(ctx context.Context, database *db.DB, ownerID string) (*model.FilterOptions, error) {
	opts := &model.FilterOptions{}

	for _, col := range []struct {
		name string
		dst  *[]string
	}{
		{"color", &opts.Colors},
		{"owner", &opts.Owners},
		{"category", &opts.Categories},
	} {
		values, err := distinctValues(ctx, database, ownerID, col.name)
		if err != nil {
			return nil, err
		}
		*col.dst = values
	}

	rows, err := database.QueryContext(ctx,
		`SELECT bag_id, name FROM bags WHERE owner_id = ? ORDER BY created_at DESC, id DESC`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing bag options: %w", err)
	}
	defer rows.Close()

	opts.Bags = []model.BagOption{}
	for rows.Next() {
		var b model.BagOption
		if err := rows.Scan(&b.BagID, &b.Name); err != nil {
			return nil, fmt.Errorf("scanning bag option: %w", err)
		}
		opts.Bags = append(opts.Bags, b)
	}
	return opts, rows.Err()
}

// distinctValues lists distinct non-empty values of a clothes column. column
// must be a trusted identifier.
func distinctValues(ctx context.Context, database *db.DB, ownerID, column string) ([]string, error) {
	rows, err := database.QueryContext(ctx,
		`SELECT DISTINCT `+column+` FROM clothes
		 WHERE owner_id = ? AND `+column+` <> ''
		 ORDER BY `+column, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing distinct %s values: %w", column, err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning %s value: %w", column, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
