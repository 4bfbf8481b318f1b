package models

// Gender values accepted on placement and profile records.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
)

// Placement is a single placement record, admin-maintained. All fields are
// required; package and CPI are stored as entered with no precision contract.
type Placement struct {
	BaseModel

	Name    string  `gorm:"not null" json:"name"`
	Batch   int     `gorm:"not null;index" json:"batch"`
	Branch  string  `gorm:"not null;index" json:"branch"`
	Company string  `gorm:"not null" json:"company"`
	Package float64 `gorm:"not null" json:"package"`
	CPI     float64 `gorm:"not null" json:"cpi"`
	Gender  string  `gorm:"type:varchar(8);not null" json:"gender"`
}

// PlacementSummary is the public projection of a placement record. CPI and
// gender are withheld from non-admin callers.
type PlacementSummary struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Branch  string  `json:"branch"`
	Batch   int     `json:"batch"`
	Company string  `json:"company"`
	Package float64 `json:"package"`
}
