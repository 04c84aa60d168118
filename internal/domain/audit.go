package domain

import "time"

// AuditEntry records one back-office mutation.
type AuditEntry struct {
	ID         string    `bson:"_id" json:"id"`
	ActorID    string    `bson:"actorId" json:"actorId"`
	ActorRole  string    `bson:"actorRole,omitempty" json:"actorRole,omitempty"`
	Action     string    `bson:"action" json:"action"`
	Resource   string    `bson:"resource" json:"resource"`
	ResourceID string    `bson:"resourceId,omitempty" json:"resourceId,omitempty"`
	Route      string    `bson:"route" json:"route"`
	Status     int       `bson:"status" json:"status"`
	IP         string    `bson:"ip,omitempty" json:"ip,omitempty"`
	RequestID  string    `bson:"requestId,omitempty" json:"requestId,omitempty"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

// AuditFilter narrows audit listings. Empty fields are ignored.
type AuditFilter struct {
	ActorID  string
	Resource string
	Offset   int64
	Limit    int64
}
