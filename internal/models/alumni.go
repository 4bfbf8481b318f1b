package models

// Alumni is a historical placement outcome shown on the public alumni page.
type Alumni struct {
	BaseModel

	Name    string  `gorm:"not null" json:"name"`
	Branch  string  `gorm:"not null" json:"branch"`
	Batch   int     `gorm:"not null" json:"batch"`
	Package float64 `gorm:"not null" json:"package"`
	Company string  `gorm:"not null" json:"company"`
}
