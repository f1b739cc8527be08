package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	UnitKilograms = "kg"
	UnitPounds    = "lb"

	poundsPerKilogram = 2.20462
)

// Spot is a fishing location. Spots are grouped into territories.
type Spot struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"size:120"`
	Territory string    `json:"territory" gorm:"size:120;index"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Spot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Catch is a logged fish.
type Catch struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"index"`
	SpotID    string    `json:"spot_id" gorm:"index"`
	Species   string    `json:"species" gorm:"size:80"`
	Weight    float64   `json:"weight"`
	Unit      string    `json:"unit" gorm:"size:2"`
	PhotoURL  *string   `json:"photo_url,omitempty"`
	CaughtAt  time.Time `json:"caught_at" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Catch) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// WeightKg normalises the catch weight for ranking.
func (c *Catch) WeightKg() float64 {
	if c.Unit == UnitPounds {
		return c.Weight / poundsPerKilogram
	}
	return c.Weight
}

type CreateSpotRequest struct {
	Name      string  `json:"name" validate:"required,max=120"`
	Territory string  `json:"territory" validate:"required,max=120"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

type CreateCatchRequest struct {
	SpotID   string     `json:"spot_id" validate:"required"`
	Species  string     `json:"species" validate:"required,max=80"`
	Weight   float64    `json:"weight" validate:"gt=0"`
	Unit     string     `json:"unit" validate:"required,oneof=kg lb"`
	PhotoURL *string    `json:"photo_url,omitempty" validate:"omitempty,url"`
	CaughtAt *time.Time `json:"caught_at,omitempty"`
}
