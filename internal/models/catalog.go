package models

// Tag is read-mostly reference data attached to recipes. Color is a hex
// value normalized to a leading '#'.
type Tag struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `gorm:"size:200;uniqueIndex;not null" json:"name"`
	Color string `gorm:"size:8" json:"color"`
	Slug  string `gorm:"size:200;uniqueIndex;not null" json:"slug"`
}

// Ingredient is reference data; no user owns an ingredient.
type Ingredient struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	Name            string `gorm:"size:200;index;not null" json:"name"`
	MeasurementUnit string `gorm:"size:200;not null" json:"measurement_unit"`
}
