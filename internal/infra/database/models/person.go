package models

import (
	"time"
)

type Person struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	GUID      string    `json:"guid" gorm:"type:text;uniqueIndex;not null"`
	Handle    string    `json:"handle" gorm:"type:text;uniqueIndex;not null"`
	OwnerID   *int64    `json:"ownerID" gorm:"index"`
	CreatedAt time.Time `json:"cdate" gorm:"<-:create;not null"`
}

func (Person) TableName() string { return "people" }

type User struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"type:text;uniqueIndex;not null"`
	PersonID  int64     `json:"personID" gorm:"uniqueIndex;not null"`
	Person    Person    `json:"person" gorm:"foreignKey:PersonID;references:ID;constraint:OnDelete:CASCADE;"`
	CreatedAt time.Time `json:"cdate" gorm:"<-:create;not null"`
}
