package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LeadSource enum constants
const (
	LeadSourceWeb      = "WEB"
	LeadSourcePhone    = "PHONE"
	LeadSourceReferral = "REFERRAL"
	LeadSourceOther    = "OTHER"
)

// Client represents a customer (or incoming lead) that quotes attach to.
// Lead intake creates a Client in status-light form; admins enrich it later.
type Client struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string         `gorm:"type:varchar(255);not null" json:"name"`
	CompanyName   string         `gorm:"type:varchar(255)" json:"company_name"`
	ContactPerson string         `gorm:"type:varchar(255)" json:"contact_person"`
	Email         string         `gorm:"type:varchar(255);index" json:"email"`
	Phone         string         `gorm:"type:varchar(50)" json:"phone"`
	State         string         `gorm:"type:varchar(10)" json:"state"` // default jurisdiction for quotes
	LeadSource    string         `gorm:"type:varchar(20);default:'WEB'" json:"lead_source"`
	Notes         string         `gorm:"type:text" json:"notes"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
