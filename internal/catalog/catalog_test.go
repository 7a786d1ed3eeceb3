package catalog

import (
	"testing"

	"github.com/angelmondragon/obohub-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Load()
	require.NoError(t, err)
	return c
}

func ids(products []Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestEmbeddedCatalogIsValid(t *testing.T) {
	c := loadCatalog(t)
	assert.Len(t, c.All(), 12)
	assert.Equal(t, []string{"Women", "Men", "Shoes", "Accessories"}, c.Categories())

	p, ok := c.Find("3")
	require.True(t, ok)
	assert.Equal(t, "Leather Chelsea Boots", p.Name)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(159)))
	assert.True(t, p.OnSale())
	assert.True(t, p.HasSize("9"))
	assert.False(t, p.HasColor("Pink"))

	_, ok = c.Find("missing")
	assert.False(t, ok)
}

func TestListFilters(t *testing.T) {
	c := loadCatalog(t)

	assert.Equal(t, []string{"3", "7", "11"}, ids(c.List(Filter{Category: "Shoes"})))
	assert.Equal(t, []string{"1", "3", "5", "8", "10"}, ids(c.List(Filter{OnSale: true})))
	assert.Equal(t, []string{"4", "8", "12"}, ids(c.List(Filter{Sizes: []string{"One Size"}})))
	assert.Equal(t, []string{"2", "4", "6", "8", "9", "12"}, ids(c.List(Filter{Categories: []string{"Men", "Accessories"}})))
	assert.ElementsMatch(t, []string{"2", "7"}, ids(c.List(Filter{Colors: []string{"White"}})))
}

func TestListSearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	c := loadCatalog(t)

	assert.Equal(t, []string{"1", "4", "10"}, ids(c.List(Filter{Search: "MAISON"})))
	assert.Equal(t, []string{"12"}, ids(c.List(Filter{Search: "cashmere"})))
	assert.Equal(t, []string{"3"}, ids(c.List(Filter{Search: "elastic side"})))
}

func TestListPriceRange(t *testing.T) {
	c := loadCatalog(t)
	min := decimal.NewFromInt(60)
	max := decimal.NewFromInt(90)

	got := c.List(Filter{MinPrice: &min, MaxPrice: &max, Sort: enums.SortPriceLow})
	assert.Equal(t, []string{"5", "12", "8", "11", "1"}, ids(got))

	low := decimal.NewFromInt(150)
	assert.Equal(t, []string{"3", "9"}, ids(c.List(Filter{MinPrice: &low})))
}

func TestListSorts(t *testing.T) {
	c := loadCatalog(t)

	high := c.List(Filter{Sort: enums.SortPriceHigh})
	assert.Equal(t, "9", high[0].ID)
	assert.Equal(t, "10", high[len(high)-1].ID)

	popular := c.List(Filter{Sort: enums.SortPopular})
	assert.Equal(t, "7", popular[0].ID)

	assert.Equal(t, ids(c.All()), ids(c.List(Filter{Sort: enums.SortNewest})))
	assert.Equal(t, ids(c.All()), ids(c.List(Filter{})))
}

func TestHighlights(t *testing.T) {
	h := loadCatalog(t).Highlights()
	assert.Equal(t, []string{"1", "3", "5", "8"}, ids(h.Sale))
	assert.Len(t, h.NewArrivals, 8)
	assert.Equal(t, "1", h.NewArrivals[0].ID)
}

func TestNewRejectsInvalidProducts(t *testing.T) {
	valid := Product{
		ID:          "p1",
		Name:        "Tee",
		Price:       decimal.NewFromInt(20),
		Image:       "https://example.com/tee.jpg",
		Category:    "Men",
		Description: "Cotton tee",
		Sizes:       []string{"M"},
		Colors:      []string{"Black"},
		Brand:       "Basics",
	}
	_, err := New([]Product{valid})
	require.NoError(t, err)

	noSizes := valid
	noSizes.Sizes = nil
	_, err = New([]Product{noSizes})
	assert.Error(t, err)

	free := valid
	free.Price = decimal.Zero
	_, err = New([]Product{free})
	assert.Error(t, err)

	badSale := valid
	lower := decimal.NewFromInt(10)
	badSale.OriginalPrice = &lower
	_, err = New([]Product{badSale})
	assert.Error(t, err)

	_, err = New([]Product{valid, valid})
	assert.Error(t, err)
}
