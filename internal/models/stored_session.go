package models

import "time"

// StoredSession is the database row behind the MySQL-backed registry store.
type StoredSession struct {
	Base
	Identity      string    `json:"identity"       gorm:"uniqueIndex;size:191;not null"`
	SessionToken  string    `json:"session_token"  gorm:"size:191;not null"`
	EstablishedAt time.Time `json:"established_at" gorm:"index;not null"`
	Profile       Profile   `json:"profile"        gorm:"type:longtext;serializer:json"`
}

func (StoredSession) TableName() string { return "sessions" }
