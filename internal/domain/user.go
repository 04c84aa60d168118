package domain

import "time"

// User is a back-office account.
type User struct {
	ID           string    `bson:"_id" json:"id"`
	FullName     string    `bson:"fullName" json:"fullName"`
	Email        string    `bson:"email" json:"email"`
	Phone        string    `bson:"phone" json:"phone"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	Role         string    `bson:"role" json:"role"`
	Permissions  []string  `bson:"permissions" json:"permissions"`
	Status       string    `bson:"status" json:"status"`
	Deleted      bool      `bson:"deleted" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// User statuses.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)
