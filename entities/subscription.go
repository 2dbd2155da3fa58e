// File: entities/subscription.go
package entities

import (
	"time"

	"github.com/google/uuid"
)

// Subscription links a follower to an author. Self-subscription is rejected
// in the service and additionally blocked by the check constraint.
type Subscription struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID `gorm:"uniqueIndex:idx_user_author;not null" json:"user_id"`
	AuthorID  uuid.UUID `gorm:"uniqueIndex:idx_user_author;not null;check:author_id <> user_id" json:"author_id"`
	CreatedAt time.Time `gorm:"type:timestamp" json:"created_at"`

	User   *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Author *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
}
