package data

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Preset is a named key that can be picked instead of typing one in.
type Preset struct {
	ID        uint64 `gorm:"primaryKey"`
	Name      string `gorm:"unique; not null"`
	Key       string `gorm:"not null"`
	Strength  int    `gorm:"default:0"`
	CreatedAt time.Time
}

// DefaultPresets are the Thin-ICE keys offered by the drag-and-drop
// encryption tool this command replaces.
var DefaultPresets = []Preset{
	{Name: "Preset 1", Key: "x9Ke0BY7"},
	{Name: "Preset 2", Key: "d7NSuLq2"},
	{Name: "Preset 3", Key: "Wl0u5B3F"},
	{Name: "Preset 4", Key: "E2NcUkG2"},
	{Name: "Preset 5", Key: "SDhfi878"},
}

// SeedPresets inserts any of the DefaultPresets that are missing.
func SeedPresets(db *gorm.DB) error {
	for _, p := range DefaultPresets {
		existing, err := FindPresetByName(db, p.Name)
		if err != nil {
			return err
		} else if existing != nil {
			continue
		}

		preset := p
		if err := CreatePreset(db, &preset); err != nil {
			return err
		}
	}
	return nil
}

// FindPresets returns all presets ordered by name.
func FindPresets(db *gorm.DB) ([]Preset, error) {
	var presets []Preset
	if err := db.Order("name").Find(&presets).Error; err != nil {
		return nil, err
	}
	return presets, nil
}

// FindPresetByName returns the preset with the given name or nil if there is no match.
func FindPresetByName(db *gorm.DB, name string) (*Preset, error) {
	var preset Preset
	err := db.Where("name = ?", name).First(&preset).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &preset, nil
}

func CreatePreset(db *gorm.DB, preset *Preset) error {
	return db.Create(preset).Error
}

// DeletePreset removes the named preset, reporting whether it existed.
func DeletePreset(db *gorm.DB, name string) (bool, error) {
	result := db.Where("name = ?", name).Delete(&Preset{})
	return result.RowsAffected > 0, result.Error
}
