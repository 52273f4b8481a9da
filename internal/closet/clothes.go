package closet

import (
	"context"
	"strings"

	"github.com/erazemk/omara/internal/errors"
	"github.com/erazemk/omara/internal/model"
	"github.com/erazemk/omara/internal/store"
)

// ClothInput is the body of a cloth create.
type ClothInput struct {
	Name           string `json:"name" validate:"required,max=200"`
	Color          string `json:"color" validate:"required,max=100"`
	ContainerBagID string `json:"containerBagId" validate:"required"`
	ImageBase64    string `json:"imageBase64" validate:"required"`
	Owner          string `json:"owner" validate:"max=100"`
	Category       string `json:"category" validate:"max=100"`
	Notes          string `json:"notes" validate:"max=2000"`
}

// CreateCloth validates the input, checks the bag belongs to the owner,
// stores the image and inserts the cloth.
func (s *Service) CreateCloth(ctx context.Context, ownerID string, in ClothInput) (*model.Cloth, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Color = strings.TrimSpace(in.Color)
	in.ContainerBagID = strings.TrimSpace(in.ContainerBagID)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	bag, err := store.GetBag(ctx, s.db, ownerID, in.ContainerBagID)
	if err != nil {
		return nil, internal(err, "failed to create cloth")
	}
	if bag == nil {
		return nil, errors.NotFound("bag not found")
	}

	clothID, err := s.newClothID()
	if err != nil {
		return nil, internal(err, "failed to generate cloth id")
	}

	img, err := s.storeImage(ctx, ownerID, in.ImageBase64)
	if err != nil {
		return nil, err
	}

	now := s.now()
	cloth, err := store.CreateCloth(ctx, s.db, model.Cloth{
		ClothID:            clothID,
		Name:               in.Name,
		Color:              in.Color,
		Owner:              in.Owner,
		Category:           in.Category,
		Notes:              in.Notes,
		ImageRef:           img,
		ContainerBagID:     bag.BagID,
		LastMovedTimestamp: now,
		OwnerID:            ownerID,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		s.discardImage(ctx, img.Key)
		if errors.Is(err, store.ErrDuplicateClothID) {
			return nil, errors.Conflict("cloth id already exists, try again").WithCause(err)
		}
		return nil, internal(err, "failed to create cloth")
	}

	cloth.BagName = bag.Name
	return cloth, nil
}

// GetCloth returns a cloth decorated with its bag name.
func (s *Service) GetCloth(ctx context.Context, ownerID, clothID string) (*model.Cloth, error) {
	cloth, err := s.loadCloth(ctx, ownerID, clothID)
	if err != nil {
		return nil, err
	}
	if err := s.decorate(ctx, ownerID, []*model.Cloth{cloth}); err != nil {
		return nil, err
	}
	return cloth, nil
}

func (s *Service) loadCloth(ctx context.Context, ownerID, clothID string) (*model.Cloth, error) {
	cloth, err := store.GetCloth(ctx, s.db, ownerID, clothID)
	if err != nil {
		return nil, internal(err, "failed to get cloth")
	}
	if cloth == nil {
		return nil, errors.NotFound("cloth not found")
	}
	return cloth, nil
}

// ListClothes returns the owner's clothes matching q, each with its bag name.
func (s *Service) ListClothes(ctx context.Context, ownerID string, q model.ClothQuery) ([]model.Cloth, error) {
	clothes, err := store.ListClothes(ctx, s.db, BuildQuery(ownerID, q))
	if err != nil {
		return nil, internal(err, "failed to list clothes")
	}
	if clothes == nil {
		return []model.Cloth{}, nil
	}

	ptrs := make([]*model.Cloth, len(clothes))
	for i := range clothes {
		ptrs[i] = &clothes[i]
	}
	if err := s.decorate(ctx, ownerID, ptrs); err != nil {
		return nil, err
	}
	return clothes, nil
}

// decorate fills BagName with one batched lookup scoped to the owner.
func (s *Service) decorate(ctx context.Context, ownerID string, clothes []*model.Cloth) error {
	seen := make(map[string]bool)
	var ids []string
	for _, c := range clothes {
		if !seen[c.ContainerBagID] {
			seen[c.ContainerBagID] = true
			ids = append(ids, c.ContainerBagID)
		}
	}

	names, err := store.BagNames(ctx, s.db, ownerID, ids)
	if err != nil {
		return internal(err, "failed to look up bag names")
	}
	for _, c := range clothes {
		name, ok := names[c.ContainerBagID]
		if !ok {
			name = model.UnknownBagName
		}
		c.BagName = name
	}
	return nil
}

// UpdateCloth applies a partial update. Only supplied fields are written.
//
// Moving to another bag requires that bag to belong to the owner, stamps
// LastMovedTimestamp and records a move. Setting the bag it is already in
// changes nothing. A new image replaces the old one, which is then deleted
// on a best-effort basis. If the cloth was moved or given a new image by
// another request in the meantime, nothing is written and Conflict is
// returned.
func (s *Service) UpdateCloth(ctx context.Context, ownerID, clothID string, patch model.ClothPatch) (*model.Cloth, error) {
	if err := s.validator.Validate(patch); err != nil {
		return nil, err
	}
	if details := validatePatch(patch); len(details) > 0 {
		return nil, errors.ValidationWithDetails("validation failed", details)
	}

	current, err := s.loadCloth(ctx, ownerID, clothID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	changes := store.ClothChanges{
		Name:      trimmed(patch.Name),
		Color:     trimmed(patch.Color),
		Owner:     patch.Owner,
		Category:  patch.Category,
		Notes:     patch.Notes,
		Favorite:  patch.Favorite,
		UpdatedAt: now,
	}

	if target := trimmed(patch.ContainerBagID); target != nil && *target != current.ContainerBagID {
		bag, err := store.GetBag(ctx, s.db, ownerID, *target)
		if err != nil {
			return nil, internal(err, "failed to update cloth")
		}
		if bag == nil {
			return nil, errors.NotFound("bag not found")
		}
		changes.Move = &model.Move{
			ClothID:   current.ClothID,
			FromBagID: current.ContainerBagID,
			ToBagID:   bag.BagID,
			OwnerID:   ownerID,
			MovedAt:   now,
		}
	}

	if patch.ImageBase64 != nil && strings.TrimSpace(*patch.ImageBase64) != "" {
		img, err := s.storeImage(ctx, ownerID, *patch.ImageBase64)
		if err != nil {
			return nil, err
		}
		changes.Image = &img
		changes.PrevImageKey = current.Key
	}

	found, err := store.UpdateCloth(ctx, s.db, ownerID, clothID, changes)
	if err != nil || !found {
		if changes.Image != nil {
			s.discardImage(ctx, changes.Image.Key)
		}
		switch {
		case errors.Is(err, store.ErrClothChanged):
			return nil, errors.Conflict("cloth was changed by another request")
		case err != nil:
			return nil, internal(err, "failed to update cloth")
		default:
			return nil, errors.NotFound("cloth not found")
		}
	}

	if changes.Image != nil {
		s.discardImage(ctx, changes.PrevImageKey)
	}
	if changes.Move != nil {
		s.metrics.Relocations.Inc()
	}
	return s.GetCloth(ctx, ownerID, clothID)
}

// validatePatch rejects explicit empty values for required fields.
func validatePatch(p model.ClothPatch) map[string]string {
	details := map[string]string{}
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"name", p.Name},
		{"color", p.Color},
		{"containerBagId", p.ContainerBagID},
	} {
		if f.value != nil && strings.TrimSpace(*f.value) == "" {
			details[f.name] = "must not be empty"
		}
	}
	return details
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (s *Service) ToggleFavorite(ctx context.Context, ownerID, clothID string) (bool, error) {
	favorite, found, err := store.ToggleFavorite(ctx, s.db, ownerID, clothID, s.now())
	if err != nil {
		return false, internal(err, "failed to toggle favorite")
	}
	if !found {
		return false, errors.NotFound("cloth not found")
	}
	return favorite, nil
}

// DeleteCloth removes a cloth and releases its image.
func (s *Service) DeleteCloth(ctx context.Context, ownerID, clothID string) error {
	key, found, err := store.DeleteCloth(ctx, s.db, ownerID, clothID)
	if err != nil {
		return internal(err, "failed to delete cloth")
	}
	if !found {
		return errors.NotFound("cloth not found")
	}
	s.discardImage(ctx, key)
	return nil
}

// FilterOptions lists the distinct attribute values and bags of the owner.
func (s *Service) FilterOptions(ctx context.Context, ownerID string) (*model.FilterOptions, error) {
	opts, err := store.GetFilterOptions(ctx, s.db, ownerID)
	if err != nil {
		return nil, internal(err, "failed to get filter options")
	}
	return opts, nil
}

// Moves returns a cloth's relocation history, newest first.
func (s *Service) Moves(ctx context.Context, ownerID, clothID string) ([]model.Move, error) {
	if _, err := s.loadCloth(ctx, ownerID, clothID); err != nil {
		return nil, err
	}
	moves, err := store.ListMoves(ctx, s.db, ownerID, clothID)
	if err != nil {
		return nil, internal(err, "failed to list moves")
	}
	if moves == nil {
		moves = []model.Move{}
	}
	return moves, nil
}
