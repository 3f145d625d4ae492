package models

import (
	"time"
)

// GeocodeCache represents a durable reverse-geocoding cache row. CacheKey
// is "lat,lng" with both coordinates rounded to 6 decimal places.
type GeocodeCache struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CacheKey  string    `gorm:"size:64;not null;uniqueIndex" json:"cache_key"`
	Address   string    `gorm:"size:500;not null" json:"address"`
	PlaceName *string   `gorm:"size:255" json:"place_name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (GeocodeCache) TableName() string {
	return "geocode_cache"
}
