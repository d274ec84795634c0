package models

import (
	"time"
)

type Account struct {
	UserID string    `json:"userId" gorm:"primaryKey;type:text"`
	CDate  time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type AccountProperty struct {
	ID       int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID   string  `json:"userId" gorm:"type:text;index:account_property_owner_name,unique"`
	Account  Account `json:"-" gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE;"`
	Name     string  `json:"name" gorm:"type:text;index:account_property_owner_name,unique"`
	Value    string  `json:"value" gorm:"type:text"`
	Scope    string  `json:"scope" gorm:"type:text"`
	Verified bool    `json:"verified" gorm:"type:boolean;not null;default:false"`
	// Ordinal fixes presentation order within one account.
	Ordinal int64     `json:"ordinal" gorm:"not null;default:0"`
	MDate   time.Time `json:"mdate" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}
