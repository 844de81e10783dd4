package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
}

// BeforeCreate assigns an id when the caller did not set one.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Account returns the key under which the user's state is stored.
func (u *User) Account() string {
	return u.ID.String()
}

// StateEntry is one persisted collection for one account, stored as its
// full JSON serialization.
type StateEntry struct {
	Key       string    `gorm:"primaryKey;size:191" json:"key"`
	Value     []byte    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StateEntry) TableName() string {
	return "state_entries"
}

// RemoteSnapshot is the server-side copy of an account's state used by
// account sync.
type RemoteSnapshot struct {
	Account   string    `gorm:"primaryKey;size:64" json:"account"`
	Data      []byte    `gorm:"not null" json:"data"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RemoteSnapshot) TableName() string {
	return "remote_snapshots"
}
