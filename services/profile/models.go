package profile

import "time"

type Profile struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	UserID             uint      `json:"userId" gorm:"not null;index"`
	FirstName          string    `json:"firstName" gorm:"size:100;not null"`
	LastName           string    `json:"lastName" gorm:"size:100;not null"`
	Age                int       `json:"age" gorm:"not null"`
	Gender             string    `json:"gender" gorm:"size:10;not null"`
	Denomination       string    `json:"denomination" gorm:"size:100;not null"`
	Location           string    `json:"location" gorm:"size:255;not null"`
	Occupation         string    `json:"occupation,omitempty" gorm:"size:255"`
	AboutMe            string    `json:"aboutMe,omitempty" gorm:"type:text"`
	PartnerPreferences string    `json:"partnerPreferences,omitempty" gorm:"type:text"`
	PhotoURL           string    `json:"photoUrl,omitempty" gorm:"size:1024"`
	PhoneNumber        string    `json:"phoneNumber,omitempty" gorm:"size:32"`
	PhoneVerified      bool      `json:"phoneVerified" gorm:"not null"`
	CreatedBy          string    `json:"createdBy" gorm:"size:50;not null"`
	CreatedAt          time.Time `json:"createdAt"`
}

func (Profile) TableName() string {
	return "profiles"
}

// CreateInput is the client-supplied part of a profile.
type CreateInput struct {
	FirstName          string `json:"firstName" validate:"required,max=100"`
	LastName           string `json:"lastName" validate:"required,max=100"`
	Age                int    `json:"age" validate:"required,gte=18,lte=120"`
	Gender             string `json:"gender" validate:"required,oneof=Male Female"`
	Denomination       string `json:"denomination" validate:"required,max=100"`
	Location           string `json:"location" validate:"required,max=255"`
	Occupation         string `json:"occupation" validate:"max=255"`
	AboutMe            string `json:"aboutMe" validate:"max=5000"`
	PartnerPreferences string `json:"partnerPreferences" validate:"max=5000"`
	PhotoURL           string `json:"photoUrl" validate:"omitempty,url,max=1024"`
	PhoneNumber        string `json:"phoneNumber" validate:"omitempty,min=10,max=32"`
	CreatedBy          string `json:"createdBy" validate:"required,max=50"`
}

type Filters struct {
	Gender       string
	Denomination string
	Location     string
	MinAge       int
	MaxAge       int
}
