package closet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/omara/internal/model"
)

func TestBuildQuery(t *testing.T) {
	fav := true
	f := BuildQuery(ownerA, model.ClothQuery{
		Color:     "Blue",
		BagID:     "B3",
		Favorite:  &fav,
		Search:    "50%_off",
		SortBy:    "name",
		SortOrder: "ASC",
	})

	assert.Equal(t, []string{
		"owner_id = ?",
		`casefold(color) LIKE ? ESCAPE '\'`,
		"container_bag_id = ?",
		"favorite = ?",
		`(casefold(name) LIKE ? ESCAPE '\' OR casefold(color) LIKE ? ESCAPE '\' OR casefold(owner) LIKE ? ESCAPE '\' OR casefold(category) LIKE ? ESCAPE '\')`,
	}, f.Clauses)

	search := `%50\%\_off%`
	assert.Equal(t, []any{ownerA, "%blue%", "B3", true, search, search, search, search}, f.Args)
	assert.Equal(t, "name ASC, cloth_id ASC", f.OrderBy)
}

func TestListClothesFoldsNonASCII(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bag := f.bag(t, ownerA, "Zima")
	scarf := f.cloth(t, ownerA, bag.BagID, "Šal", "Črna")
	f.cloth(t, ownerA, bag.BagID, "Kapa", "bela")

	for _, q := range []model.ClothQuery{
		{Color: "Črna"},
		{Color: "črna"},
		{Color: "ČRNA"},
		{Search: "Šal"},
		{Search: "šal"},
		{Search: "ŠAL"},
	} {
		got, err := f.svc.ListClothes(ctx, ownerA, q)
		require.NoError(t, err)
		assert.Equal(t, []string{scarf.ClothID}, clothIDs(got), "%+v", q)
	}
}

func TestBuildQueryDefaults(t *testing.T) {
	f := BuildQuery(ownerA, model.ClothQuery{SortBy: "password_hash; DROP TABLE clothes", SortOrder: "sideways"})
	assert.Equal(t, []string{"owner_id = ?"}, f.Clauses)
	assert.Equal(t, []any{ownerA}, f.Args)
	assert.Equal(t, "created_at DESC, cloth_id DESC", f.OrderBy)
}

func TestParseFavorite(t *testing.T) {
	assert.True(t, *ParseFavorite("TRUE"))
	assert.False(t, *ParseFavorite("false"))
	assert.Nil(t, ParseFavorite(""))
	assert.Nil(t, ParseFavorite("yes"))
}

func TestListClothesSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bag := f.bag(t, ownerA, "Mixed")

	shirt, err := f.svc.CreateCloth(ctx, ownerA, ClothInput{
		Name: "Red Shirt", Color: "white", Category: "Jeans", ContainerBagID: bag.BagID, ImageBase64: testImage(t),
	})
	require.NoError(t, err)
	hat := f.cloth(t, ownerA, bag.BagID, "Hat", "red")
	boots := f.cloth(t, ownerA, bag.BagID, "Redwood Hiking Boots", "brown")
	f.cloth(t, ownerA, bag.BagID, "Scarf", "green")

	theirs := f.bag(t, ownerB, "Theirs")
	f.cloth(t, ownerB, theirs.BagID, "Red Sock", "red")

	got, err := f.svc.ListClothes(ctx, ownerA, model.ClothQuery{Search: "red", SortBy: "name", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, []string{hat.ClothID, shirt.ClothID, boots.ClothID}, clothIDs(got))
	for _, c := range got {
		assert.Equal(t, "Mixed", c.BagName)
	}
}

func TestListClothesFilterCombination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bag := f.bag(t, ownerA, "Mixed")

	blueFav := f.cloth(t, ownerA, bag.BagID, "Jeans", "Dark Blue")
	f.cloth(t, ownerA, bag.BagID, "Shirt", "blue")
	redFav := f.cloth(t, ownerA, bag.BagID, "Cap", "red")
	for _, id := range []string{blueFav.ClothID, redFav.ClothID} {
		_, err := f.svc.ToggleFavorite(ctx, ownerA, id)
		require.NoError(t, err)
	}

	got, err := f.svc.ListClothes(ctx, ownerA, model.ClothQuery{Color: "blue", Favorite: ParseFavorite("true")})
	require.NoError(t, err)
	assert.Equal(t, []string{blueFav.ClothID}, clothIDs(got))

	got, err = f.svc.ListClothes(ctx, ownerA, model.ClothQuery{Favorite: ParseFavorite("false")})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = f.svc.ListClothes(ctx, ownerA, model.ClothQuery{Color: "%"})
	require.NoError(t, err)
	assert.Empty(t, got, "wildcards are matched literally")
}

func TestListClothesDefaultOrder(t *testing.T) {
	f := newFixture(t)
	bag := f.bag(t, ownerA, "Mixed")
	first := f.cloth(t, ownerA, bag.BagID, "A", "red")
	second := f.cloth(t, ownerA, bag.BagID, "B", "red")

	got, err := f.svc.ListClothes(context.Background(), ownerA, model.ClothQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{second.ClothID, first.ClothID}, clothIDs(got))
}

func clothIDs(clothes []model.Cloth) []string {
	ids := make([]string, len(clothes))
	for i, c := range clothes {
		ids[i] = c.ClothID
	}
	return ids
}
