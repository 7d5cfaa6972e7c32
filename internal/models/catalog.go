package models

// Tag is reference data attached to recipes. Only the catalog loader writes it.
type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:16;uniqueIndex;not null" json:"name"`
	Color string `gorm:"size:7;uniqueIndex;not null" json:"color"`
	Slug  string `gorm:"size:50;uniqueIndex;not null" json:"slug"`
}

// Ingredient is reference data. (name, measurement_unit) is unique in practice
// but not enforced by the schema.
type Ingredient struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"size:100;index;not null" json:"name"`
	MeasurementUnit string `gorm:"size:200;not null" json:"measurement_unit"`
}
