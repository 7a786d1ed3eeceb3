package shop

import (
	"context"
	"strings"
)

// AddAddress appends a new address with a fresh id. A new default address
// takes the flag from its siblings.
func (c *Container) AddAddress(ctx context.Context, in AddressInput) (Address, error) {
	var created Address
	err := c.mutate(ctx, func(next *snapshot) ([]Kind, error) {
		created = Address{
			ID:        c.ids.token(),
			FullName:  strings.TrimSpace(in.FullName),
			Street:    strings.TrimSpace(in.Street),
			City:      strings.TrimSpace(in.City),
			State:     strings.TrimSpace(in.State),
			ZipCode:   strings.TrimSpace(in.ZipCode),
			Country:   strings.TrimSpace(in.Country),
			Phone:     strings.TrimSpace(in.Phone),
			IsDefault: in.IsDefault,
		}
		next.user.Addresses = append(next.user.Addresses, created)
		if created.IsDefault {
			markDefault(next.user.Addresses, created.ID)
		}
		return []Kind{KindUser}, nil
	})
	if err != nil {
		return Address{}, err
	}
	return created, nil
}

// UpdateAddress merges the set fields of u into the address. Unknown ids are
// a no-op.
func (c *Container) UpdateAddress(ctx context.Context, id string, u AddressUpdate) error {
	return c.mutate(ctx, func(next *snapshot) ([]Kind, error) {
		for i, a := range next.user.Addresses {
			if a.ID != id {
				continue
			}
			next.user.Addresses[i] = u.apply(a)
			next.user.Addresses[i].ID = id
			if next.user.Addresses[i].IsDefault {
				markDefault(next.user.Addresses, id)
			}
			return []Kind{KindUser}, nil
		}
		return nil, nil
	})
}

// DeleteAddress removes the address. Unknown ids are a no-op.
func (c *Container) DeleteAddress(ctx context.Context, id string) error {
	return c.mutate(ctx, func(next *snapshot) ([]Kind, error) {
		for i, a := range next.user.Addresses {
			if a.ID == id {
				next.user.Addresses = append(next.user.Addresses[:i], next.user.Addresses[i+1:]...)
				return []Kind{KindUser}, nil
			}
		}
		return nil, nil
	})
}

// SetDefaultAddress flags id as the only default address. Unknown ids are a
// no-op so an existing default is never lost.
func (c *Container) SetDefaultAddress(ctx context.Context, id string) error {
	return c.mutate(ctx, func(next *snapshot) ([]Kind, error) {
		if _, ok := next.user.FindAddress(id); !ok {
			return nil, nil
		}
		markDefault(next.user.Addresses, id)
		return []Kind{KindUser}, nil
	})
}

func markDefault(addresses []Address, id string) {
	for i := range addresses {
		addresses[i].IsDefault = addresses[i].ID == id
	}
}

// UpdateUser merges the set fields of u into the profile.
func (c *Container) UpdateUser(ctx context.Context, u UserUpdate) error {
	return c.mutate(ctx, func(next *snapshot) ([]Kind, error) {
		if u.Name == nil && u.Email == nil && u.Phone == nil {
			return nil, nil
		}
		if u.Name != nil {
			next.user.Name = strings.TrimSpace(*u.Name)
		}
		if u.Email != nil {
			next.user.Email = strings.TrimSpace(*u.Email)
		}
		if u.Phone != nil {
			phone := strings.TrimSpace(*u.Phone)
			if phone == "" {
				next.user.Phone = nil
			} else {
				next.user.Phone = &phone
			}
		}
		return []Kind{KindUser}, nil
	})
}
