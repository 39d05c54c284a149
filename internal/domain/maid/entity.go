package maid

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Maid is a domestic worker listed on the marketplace. Contact and passport
// details belong to the CV and are only shown after the customer unlocks it.
type Maid struct {
	ID              string   `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name            string   `json:"name" gorm:"type:varchar(120);not null;index" validate:"required,max=120"`
	Nationality     string   `json:"nationality" gorm:"type:varchar(64);not null;index" validate:"required,max=64"`
	Age             int      `json:"age" gorm:"not null" validate:"gte=18,lte=70"`
	ExperienceYears int      `json:"experience_years" gorm:"not null;default:0" validate:"gte=0,lte=50"`
	Religion        string   `json:"religion,omitempty" gorm:"type:varchar(64)"`
	Languages       []string `json:"languages" gorm:"serializer:json"`
	Skills          []string `json:"skills" gorm:"serializer:json"`
	MonthlySalary   int64    `json:"monthly_salary" gorm:"not null;default:0" validate:"gte=0"`
	Available       bool     `json:"available" gorm:"not null;default:true;index"`
	PhotoURL        string   `json:"photo_url,omitempty" gorm:"type:varchar(512)"`

	Phone          string `json:"-" gorm:"type:varchar(32)"`
	PassportNumber string `json:"-" gorm:"type:varchar(32)"`
	CVURL          string `json:"-" gorm:"type:varchar(512)"`

	OfficeID  int64     `json:"office_id" gorm:"index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Maid) TableName() string {
	return "maids"
}

func (m *Maid) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// CV is the unlockable part of a maid's profile.
type CV struct {
	Phone          string `json:"phone"`
	PassportNumber string `json:"passport_number"`
	CVURL          string `json:"cv_url"`
}

func (m *Maid) CV() CV {
	return CV{Phone: m.Phone, PassportNumber: m.PassportNumber, CVURL: m.CVURL}
}
