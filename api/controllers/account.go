package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/obohub-backend/api/responses"
	"github.com/angelmondragon/obohub-backend/api/validators"
	"github.com/angelmondragon/obohub-backend/internal/shop"
	pkgerrors "github.com/angelmondragon/obohub-backend/pkg/errors"
	"github.com/angelmondragon/obohub-backend/pkg/logger"
)

func profileOf(c *shop.Container) shop.UserProfile {
	user, _ := c.User()
	return user
}

func AccountGetProfile(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, profileOf(c))
	}
}

// AccountUpdateProfile merges name, email and phone into the profile.
func AccountUpdateProfile(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		var payload shop.UserUpdate
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Name != nil {
			trimmed := validators.SanitizeString(*payload.Name, 120)
			payload.Name = &trimmed
		}
		if err := c.UpdateUser(r.Context(), payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profileOf(c))
	}
}

func AccountListAddresses(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, map[string]any{"addresses": profileOf(c).Addresses})
	}
}

// AccountAddAddress saves a new address; the first one becomes the default.
func AccountAddAddress(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		var payload shop.AddressInput
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(profileOf(c).Addresses) == 0 {
			payload.IsDefault = true
		}
		address, err := c.AddAddress(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, address)
	}
}

func AccountUpdateAddress(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		id, ok := existingAddress(w, r, c, logg)
		if !ok {
			return
		}
		var payload shop.AddressUpdate
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := c.UpdateAddress(r.Context(), id, payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		address, _ := profileOf(c).FindAddress(id)
		responses.WriteSuccess(w, address)
	}
}

func AccountDeleteAddress(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		id, ok := existingAddress(w, r, c, logg)
		if !ok {
			return
		}
		if err := c.DeleteAddress(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"addresses": profileOf(c).Addresses})
	}
}

// AccountSetDefaultAddress flags one address as default and clears the rest.
func AccountSetDefaultAddress(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		id, ok := existingAddress(w, r, c, logg)
		if !ok {
			return
		}
		if err := c.SetDefaultAddress(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"addresses": profileOf(c).Addresses})
	}
}

// existingAddress reads {addressID} and answers 404 for unknown ids. The
// container itself treats unknown ids as a no-op.
func existingAddress(w http.ResponseWriter, r *http.Request, c *shop.Container, logg *logger.Logger) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "addressID"))
	if _, found := profileOf(c).FindAddress(id); !found {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "address not found"))
		return "", false
	}
	return id, true
}
