package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/obohub-backend/api/responses"
	"github.com/angelmondragon/obohub-backend/api/validators"
	"github.com/angelmondragon/obohub-backend/internal/catalog"
	"github.com/angelmondragon/obohub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/obohub-backend/pkg/errors"
	"github.com/angelmondragon/obohub-backend/pkg/logger"
)

// CatalogList filters and sorts the catalog from query parameters.
func CatalogList(cat *catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseCatalogFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		products := cat.List(filter)
		responses.WriteSuccess(w, map[string]any{
			"products": products,
			"count":    len(products),
		})
	}
}

// CatalogProduct returns one product by id.
func CatalogProduct(cat *catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "productID"))
		product, ok := cat.Find(id)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func CatalogCategories(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{"categories": cat.Categories()})
	}
}

// CatalogHighlights returns the storefront landing sections.
func CatalogHighlights(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, cat.Highlights())
	}
}

func parseCatalogFilter(r *http.Request) (catalog.Filter, error) {
	filter := catalog.Filter{
		Category:   strings.TrimSpace(r.URL.Query().Get("category")),
		Search:     validators.SanitizeString(r.URL.Query().Get("q"), 100),
		Categories: validators.ParseQueryList(r, "categories"),
		Sizes:      validators.ParseQueryList(r, "sizes"),
		Colors:     validators.ParseQueryList(r, "colors"),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("sale")); raw != "" {
		onSale, err := strconv.ParseBool(raw)
		if err != nil {
			return catalog.Filter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sale value")
		}
		filter.OnSale = onSale
	}

	var err error
	if filter.MinPrice, err = validators.ParseQueryDecimal(r, "min_price"); err != nil {
		return catalog.Filter{}, err
	}
	if filter.MaxPrice, err = validators.ParseQueryDecimal(r, "max_price"); err != nil {
		return catalog.Filter{}, err
	}

	sort, err := enums.ParseSortOption(strings.TrimSpace(r.URL.Query().Get("sort")))
	if err != nil {
		return catalog.Filter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort option")
	}
	filter.Sort = sort
	return filter, nil
}
