// internal/models/household.go
package models

// Household is the partition key for every inventory collection. Members join
// with an invite code; the core services only ever see the household id.
type Household struct {
	BaseModel
	Name       string `json:"name" gorm:"size:100;not null"`
	InviteCode string `json:"invite_code" gorm:"uniqueIndex;size:12;not null"`

	Members []User `json:"members,omitempty" gorm:"foreignKey:HouseholdID"`
}
