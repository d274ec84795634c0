package models

import (
	"time"
)

type TrustedServer struct {
	Domain       string    `json:"domain" gorm:"primaryKey;type:text"`
	URL          string    `json:"url" gorm:"type:text"`
	Status       string    `json:"status" gorm:"type:text;not null;default:'pending'"`
	SharedSecret string    `json:"-" gorm:"type:text"`
	WellKnown    string    `json:"wellKnown" gorm:"type:text"`
	CDate        time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
