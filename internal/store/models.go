package store

import (
	"time"

	"github.com/goccy/go-json"
)

// Account types stored in admin_users.user_type.
const (
	UserTypeAdmin  = "admin"
	UserTypeDriver = "driver"
)

type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Password  string    `json:"-"`
	UserType  string    `json:"userType"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	NameEn      string `json:"nameEn"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Image       string `json:"image"`
	Color       string `json:"color"`
	SortOrder   int    `json:"sortOrder"`
	IsActive    bool   `json:"isActive"`
}

type Section struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	NameEn    string `json:"nameEn"`
	Icon      string `json:"icon"`
	SortOrder int    `json:"sortOrder"`
	IsActive  bool   `json:"isActive"`
}

// Money amounts are whole Yemeni rials.
type Restaurant struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	NameEn       string  `json:"nameEn"`
	Description  string  `json:"description"`
	Image        string  `json:"image"`
	Logo         string  `json:"logo"`
	CategoryID   string  `json:"categoryId"`
	Phone        string  `json:"phone"`
	Address      string  `json:"address"`
	Rating       float64 `json:"rating"`
	DeliveryFee  int64   `json:"deliveryFee"`
	MinimumOrder int64   `json:"minimumOrder"`
	DeliveryTime string  `json:"deliveryTime"`
	IsActive     bool    `json:"isActive"`
	IsOpen       bool    `json:"isOpen"`
}

type MenuItem struct {
	ID              string `json:"id"`
	RestaurantID    string `json:"restaurantId"`
	SectionID       string `json:"sectionId"`
	Name            string `json:"name"`
	NameEn          string `json:"nameEn"`
	Description     string `json:"description"`
	Image           string `json:"image"`
	Price           int64  `json:"price"`
	IsAvailable     bool   `json:"isAvailable"`
	IsPopular       bool   `json:"isPopular"`
	PreparationTime int    `json:"preparationTime"`
}

type Offer struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	TitleEn       string    `json:"titleEn"`
	Description   string    `json:"description"`
	Image         string    `json:"image"`
	Type          string    `json:"type"`
	DiscountType  string    `json:"discountType"`
	DiscountValue float64   `json:"discountValue"`
	MinimumOrder  int64     `json:"minimumOrder"`
	RestaurantID  string    `json:"restaurantId"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	IsActive      bool      `json:"isActive"`
	Priority      int       `json:"priority"`
}

type Setting struct {
	Key         string          `json:"key"`
	Value       json.RawMessage `json:"value"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	IsPublic    bool            `json:"isPublic"`
}
