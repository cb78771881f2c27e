package model

import "time"

type UserType string

const (
	UserTypeFarmer UserType = "farmer"
	UserTypeBuyer  UserType = "buyer"
)

// Profile carries the marketplace-side data for an authenticated user.
// ID equals the auth provider's uid.
type Profile struct {
	ID          string    `gorm:"type:varchar(128);primaryKey"`
	UserType    UserType  `gorm:"column:user_type;size:16;not null"`
	FullName    string    `gorm:"column:full_name;size:255"`
	CompanyName string    `gorm:"column:company_name;size:255"`
	Phone       string    `gorm:"size:32"`
	Bio         string    `gorm:"type:text"`
	Website     string    `gorm:"size:255"`
	Address     string    `gorm:"size:255"`
	City        string    `gorm:"size:128"`
	State       string    `gorm:"size:128"`
	ZipCode     string    `gorm:"column:zip_code;size:16"`
	Country     string    `gorm:"size:128"`
	AvatarURL   string    `gorm:"column:avatar_url;size:512"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Profile) TableName() string {
	return "profiles"
}
