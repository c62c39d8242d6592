package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (s *Store) InsertCategory(ctx context.Context, c *Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := s.exec(ctx, `
		INSERT INTO categories (id, name, name_en, description, icon, image, color, sort_order, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.NameEn, c.Description, c.Icon, c.Image, c.Color, c.SortOrder, c.IsActive)
	if err != nil {
		return fmt.Errorf("failed to insert category %q: %w", c.Name, err)
	}
	return nil
}

func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.query(ctx, `
		SELECT id, name, COALESCE(name_en, ''), COALESCE(description, ''), COALESCE(icon, ''),
		       COALESCE(image, ''), color, sort_order, is_active
		FROM categories WHERE is_active = ? ORDER BY sort_order, created_at
	`, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.NameEn, &c.Description, &c.Icon, &c.Image, &c.Color, &c.SortOrder, &c.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) InsertSection(ctx context.Context, sec *Section) error {
	if sec.ID == "" {
		sec.ID = uuid.NewString()
	}
	_, err := s.exec(ctx, `
		INSERT INTO restaurant_sections (id, name, name_en, icon, sort_order, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
	`, sec.ID, sec.Name, sec.NameEn, sec.Icon, sec.SortOrder, sec.IsActive)
	if err != nil {
		return fmt.Errorf("failed to insert section %q: %w", sec.Name, err)
	}
	return nil
}

func (s *Store) ListSections(ctx context.Context) ([]Section, error) {
	rows, err := s.query(ctx, `
		SELECT id, name, COALESCE(name_en, ''), COALESCE(icon, ''), sort_order, is_active
		FROM restaurant_sections WHERE is_active = ? ORDER BY sort_order, created_at
	`, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	defer rows.Close()

	sections := []Section{}
	for rows.Next() {
		var sec Section
		if err := rows.Scan(&sec.ID, &sec.Name, &sec.NameEn, &sec.Icon, &sec.SortOrder, &sec.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

func (s *Store) InsertRestaurant(ctx context.Context, r *Restaurant) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.exec(ctx, `
		INSERT INTO restaurants (id, name, name_en, description, image, logo, category_id, phone, address,
		                         rating, delivery_fee, minimum_order, delivery_time, is_active, is_open)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Name, r.NameEn, r.Description, r.Image, r.Logo, nullString(r.CategoryID), r.Phone, r.Address,
		r.Rating, r.DeliveryFee, r.MinimumOrder, r.DeliveryTime, r.IsActive, r.IsOpen)
	if err != nil {
		return fmt.Errorf("failed to insert restaurant %q: %w", r.Name, err)
	}
	return nil
}

const restaurantColumns = `id, name, COALESCE(name_en, ''), COALESCE(description, ''), COALESCE(image, ''),
	COALESCE(logo, ''), COALESCE(category_id, ''), COALESCE(phone, ''), COALESCE(address, ''),
	rating, delivery_fee, minimum_order, COALESCE(delivery_time, ''), is_active, is_open`

func scanRestaurant(row interface{ Scan(...any) error }) (*Restaurant, error) {
	var r Restaurant
	err := row.Scan(&r.ID, &r.Name, &r.NameEn, &r.Description, &r.Image, &r.Logo, &r.CategoryID, &r.Phone,
		&r.Address, &r.Rating, &r.DeliveryFee, &r.MinimumOrder, &r.DeliveryTime, &r.IsActive, &r.IsOpen)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan restaurant: %w", err)
	}
	return &r, nil
}

// ListRestaurants returns active restaurants, optionally limited to one
// category when categoryID is non-empty.
func (s *Store) ListRestaurants(ctx context.Context, categoryID string) ([]Restaurant, error) {
	q := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE is_active = ?`
	args := []any{true}
	if categoryID != "" {
		q += ` AND category_id = ?`
		args = append(args, categoryID)
	}
	q += ` ORDER BY rating DESC, name`

	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}
	defer rows.Close()

	restaurants := []Restaurant{}
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		restaurants = append(restaurants, *r)
	}
	return restaurants, rows.Err()
}

func (s *Store) GetRestaurant(ctx context.Context, id string) (*Restaurant, error) {
	return scanRestaurant(s.queryRow(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE id = ?`, id))
}

func (s *Store) InsertMenuItem(ctx context.Context, m *MenuItem) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := s.exec(ctx, `
		INSERT INTO menu_items (id, restaurant_id, section_id, name, name_en, description, image, price,
		                        is_available, is_popular, preparation_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.RestaurantID, nullString(m.SectionID), m.Name, m.NameEn, m.Description, m.Image, m.Price,
		m.IsAvailable, m.IsPopular, m.PreparationTime)
	if err != nil {
		return fmt.Errorf("failed to insert menu item %q: %w", m.Name, err)
	}
	return nil
}

func (s *Store) ListMenuItems(ctx context.Context, restaurantID string) ([]MenuItem, error) {
	rows, err := s.query(ctx, `
		SELECT id, restaurant_id, COALESCE(section_id, ''), name, COALESCE(name_en, ''), COALESCE(description, ''),
		       COALESCE(image, ''), price, is_available, is_popular, preparation_time
		FROM menu_items WHERE restaurant_id = ? ORDER BY is_popular DESC, name
	`, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	defer rows.Close()

	items := []MenuItem{}
	for rows.Next() {
		var m MenuItem
		if err := rows.Scan(&m.ID, &m.RestaurantID, &m.SectionID, &m.Name, &m.NameEn, &m.Description,
			&m.Image, &m.Price, &m.IsAvailable, &m.IsPopular, &m.PreparationTime); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (s *Store) InsertOffer(ctx context.Context, o *Offer) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	_, err := s.exec(ctx, `
		INSERT INTO special_offers (id, title, title_en, description, image, type, discount_type, discount_value,
		                            minimum_order, restaurant_id, start_date, end_date, is_active, priority)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID, o.Title, o.TitleEn, o.Description, o.Image, o.Type, o.DiscountType, o.DiscountValue,
		o.MinimumOrder, nullString(o.RestaurantID), o.StartDate.UTC(), o.EndDate.UTC(), o.IsActive, o.Priority)
	if err != nil {
		return fmt.Errorf("failed to insert offer %q: %w", o.Title, err)
	}
	return nil
}

// ListActiveOffers returns active offers whose window contains now, highest
// priority first.
func (s *Store) ListActiveOffers(ctx context.Context, now time.Time) ([]Offer, error) {
	now = now.UTC()
	rows, err := s.query(ctx, `
		SELECT id, title, COALESCE(title_en, ''), COALESCE(description, ''), COALESCE(image, ''), type,
		       discount_type, discount_value, minimum_order, COALESCE(restaurant_id, ''),
		       start_date, end_date, is_active, priority
		FROM special_offers
		WHERE is_active = ? AND start_date <= ? AND end_date >= ?
		ORDER BY priority DESC, start_date
	`, true, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	defer rows.Close()

	offers := []Offer{}
	for rows.Next() {
		var o Offer
		if err := rows.Scan(&o.ID, &o.Title, &o.TitleEn, &o.Description, &o.Image, &o.Type, &o.DiscountType,
			&o.DiscountValue, &o.MinimumOrder, &o.RestaurantID, &o.StartDate, &o.EndDate, &o.IsActive, &o.Priority); err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

func (s *Store) GetCategoryByName(ctx context.Context, name string) (*Category, error) {
	var c Category
	err := s.queryRow(ctx, `
		SELECT id, name, COALESCE(name_en, ''), COALESCE(description, ''), COALESCE(icon, ''),
		       COALESCE(image, ''), color, sort_order, is_active
		FROM categories WHERE name = ? ORDER BY created_at LIMIT 1
	`, name).Scan(&c.ID, &c.Name, &c.NameEn, &c.Description, &c.Icon, &c.Image, &c.Color, &c.SortOrder, &c.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

func (s *Store) GetSectionByName(ctx context.Context, name string) (*Section, error) {
	var sec Section
	err := s.queryRow(ctx, `
		SELECT id, name, COALESCE(name_en, ''), COALESCE(icon, ''), sort_order, is_active
		FROM restaurant_sections WHERE name = ? ORDER BY created_at LIMIT 1
	`, name).Scan(&sec.ID, &sec.Name, &sec.NameEn, &sec.Icon, &sec.SortOrder, &sec.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get section: %w", err)
	}
	return &sec, nil
}

// FirstRestaurant returns the oldest restaurant row.
func (s *Store) FirstRestaurant(ctx context.Context) (*Restaurant, error) {
	return scanRestaurant(s.queryRow(ctx, `SELECT `+restaurantColumns+` FROM restaurants ORDER BY created_at, name LIMIT 1`))
}
