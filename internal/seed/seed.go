// Package seed loads the default rows a fresh delivery database needs: the
// admin and demo driver accounts, categories, restaurant sections, system
// settings, demo restaurants with menu items, and a demo offer.
//
// Every fixture is guarded by an existence check, so running the
// bootstrapper against a populated database changes nothing.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/markb/sareeone/internal/log"
	"github.com/markb/sareeone/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// OfferDuration is how long the demo offer stays valid from seeding time.
const OfferDuration = 30 * 24 * time.Hour

type Bootstrapper struct {
	store    *store.Store
	hashCost int
	now      func() time.Time

	// firstRestaurant is the id of the first demo restaurant inserted by
	// this run; the demo offer links to it.
	firstRestaurant string
}

type Option func(*Bootstrapper)

// WithHashCost overrides the bcrypt cost used for the default accounts.
func WithHashCost(cost int) Option {
	return func(b *Bootstrapper) { b.hashCost = cost }
}

// WithClock overrides the time source used for the demo offer window.
func WithClock(now func() time.Time) Option {
	return func(b *Bootstrapper) { b.now = now }
}

func New(s *store.Store, opts ...Option) *Bootstrapper {
	b := &Bootstrapper{
		store:    s,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Result lists the fixtures that inserted rows during a run.
type Result struct {
	Inserted []string
}

// Empty reports whether the run was a no-op.
func (r *Result) Empty() bool {
	return len(r.Inserted) == 0
}

type fixture struct {
	name string
	load func(ctx context.Context) (bool, error)
}

// Run loads every fixture in order and stops at the first error.
func (b *Bootstrapper) Run(ctx context.Context) (*Result, error) {
	log.Info("seed: initializing database")

	fixtures := []fixture{
		{"admin_user", b.seedAdmin},
		{"driver_user", b.seedDriver},
		{"categories", b.seedCategories},
		{"restaurant_sections", b.seedSections},
		{"system_settings", b.seedSettings},
		{"restaurants", b.seedRestaurants},
		{"special_offers", b.seedOffers},
	}

	result := &Result{}
	for _, f := range fixtures {
		inserted, err := f.load(ctx)
		if err != nil {
			log.Error("seed: fixture failed", "fixture", f.name, "error", err.Error())
			return result, fmt.Errorf("seed %s: %w", f.name, err)
		}
		if inserted {
			log.Info("seed: fixture loaded", "fixture", f.name)
			result.Inserted = append(result.Inserted, f.name)
		}
	}

	log.Info("seed: database initialized", "fixtures_loaded", len(result.Inserted))
	return result, nil
}

func (b *Bootstrapper) seedAdmin(ctx context.Context) (bool, error) {
	_, err := b.store.GetAccountByEmail(ctx, AdminEmail)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), b.hashCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = b.store.CreateAccount(ctx, store.NewAccount{
		Name:     adminName,
		Email:    AdminEmail,
		Password: string(hash),
		UserType: store.UserTypeAdmin,
		IsActive: true,
	})
	return err == nil, err
}

func (b *Bootstrapper) seedDriver(ctx context.Context) (bool, error) {
	_, err := b.store.GetAccountByPhone(ctx, DriverPhone)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(driverPassword), b.hashCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = b.store.CreateAccount(ctx, store.NewAccount{
		Name:     driverName,
		Phone:    DriverPhone,
		Password: string(hash),
		UserType: store.UserTypeDriver,
		IsActive: true,
	})
	return err == nil, err
}

func (b *Bootstrapper) empty(ctx context.Context, table string) (bool, error) {
	n, err := b.store.Count(ctx, table)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

func (b *Bootstrapper) seedCategories(ctx context.Context) (bool, error) {
	if ok, err := b.empty(ctx, "categories"); !ok || err != nil {
		return false, err
	}

	err := b.store.InTx(ctx, func(tx *store.Store) error {
		for i, c := range defaultCategories {
			c.SortOrder = i
			c.IsActive = true
			if err := tx.InsertCategory(ctx, &c); err != nil {
				return err
			}
		}
		return nil
	})
	return err == nil, err
}

func (b *Bootstrapper) seedSections(ctx context.Context) (bool, error) {
	if ok, err := b.empty(ctx, "restaurant_sections"); !ok || err != nil {
		return false, err
	}

	err := b.store.InTx(ctx, func(tx *store.Store) error {
		for i, sec := range defaultSections {
			sec.SortOrder = i
			sec.IsActive = true
			if err := tx.InsertSection(ctx, &sec); err != nil {
				return err
			}
		}
		return nil
	})
	return err == nil, err
}

func (b *Bootstrapper) seedSettings(ctx context.Context) (bool, error) {
	if ok, err := b.empty(ctx, "system_settings"); !ok || err != nil {
		return false, err
	}

	err := b.store.InTx(ctx, func(tx *store.Store) error {
		for _, st := range defaultSettings {
			if err := tx.InsertSetting(ctx, st.key, st.value, st.description, st.category, st.public); err != nil {
				return err
			}
		}
		return nil
	})
	return err == nil, err
}

// seedRestaurants needs the restaurants category; without it nothing is
// inserted. Menu items additionally need the grilled and fried sections.
func (b *Bootstrapper) seedRestaurants(ctx context.Context) (bool, error) {
	if ok, err := b.empty(ctx, "restaurants"); !ok || err != nil {
		return false, err
	}

	category, err := b.store.GetCategoryByName(ctx, restaurantsCategory)
	if errors.Is(err, store.ErrNotFound) {
		log.Warn("seed: restaurants category missing, skipping demo restaurants", "category", restaurantsCategory)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	sections := map[string]string{}
	for _, name := range []string{grilledSection, friedSection} {
		sec, err := b.store.GetSectionByName(ctx, name)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return false, err
		}
		sections[name] = sec.ID
	}

	var firstID string
	err = b.store.InTx(ctx, func(tx *store.Store) error {
		ids := make([]string, 0, len(defaultRestaurants))
		for _, r := range defaultRestaurants {
			r.CategoryID = category.ID
			r.IsActive = true
			r.IsOpen = true
			if err := tx.InsertRestaurant(ctx, &r); err != nil {
				return err
			}
			ids = append(ids, r.ID)
		}
		firstID = ids[0]

		if len(sections) < 2 {
			log.Warn("seed: menu sections missing, skipping demo menu items")
			return nil
		}

		for _, m := range defaultMenu {
			item := m.item
			item.RestaurantID = ids[m.restaurant]
			item.SectionID = sections[m.section]
			item.IsAvailable = true
			if err := tx.InsertMenuItem(ctx, &item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	b.firstRestaurant = firstID
	return true, nil
}

func (b *Bootstrapper) seedOffers(ctx context.Context) (bool, error) {
	if ok, err := b.empty(ctx, "special_offers"); !ok || err != nil {
		return false, err
	}

	restaurantID := b.firstRestaurant
	if restaurantID == "" {
		// Restaurants came from an earlier run or another source.
		restaurant, err := b.store.FirstRestaurant(ctx)
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		restaurantID = restaurant.ID
	}

	now := b.now().UTC()
	offer := defaultOffer
	offer.RestaurantID = restaurantID
	offer.StartDate = now
	offer.EndDate = now.Add(OfferDuration)
	offer.IsActive = true

	if err := b.store.InsertOffer(ctx, &offer); err != nil {
		return false, err
	}
	return true, nil
}
