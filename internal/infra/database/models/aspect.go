package models

import (
	"time"
)

type Aspect struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"userID" gorm:"index;not null"`
	User      User      `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE;"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"cdate" gorm:"<-:create;not null"`
}

// Contact is unique per (owner, person); the index serves contact_for lookups.
type Contact struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"userID" gorm:"uniqueIndex:idx_contacts_owner_person;not null"`
	User      User      `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE;"`
	PersonID  int64     `json:"personID" gorm:"uniqueIndex:idx_contacts_owner_person;index;not null"`
	Person    Person    `json:"person" gorm:"foreignKey:PersonID;references:ID;constraint:OnDelete:CASCADE;"`
	Pending   bool      `json:"pending" gorm:"not null"`
	CreatedAt time.Time `json:"cdate" gorm:"<-:create;not null"`
}

type AspectMembership struct {
	AspectID  int64   `json:"aspectID" gorm:"primaryKey;autoIncrement:false"`
	Aspect    Aspect  `json:"-" gorm:"foreignKey:AspectID;references:ID;constraint:OnDelete:CASCADE;"`
	ContactID int64   `json:"contactID" gorm:"primaryKey;autoIncrement:false;index"`
	Contact   Contact `json:"-" gorm:"foreignKey:ContactID;references:ID;constraint:OnDelete:CASCADE;"`
}
