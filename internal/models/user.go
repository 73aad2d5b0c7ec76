package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a storefront customer as seen by the giveaway engine:
// an identity with a credit balance and a ban flag. Account management
// beyond that lives in the surrounding system.
type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Username        string             `bson:"username" json:"username"`
	Email           string             `bson:"email,omitempty" json:"email,omitempty"`
	GiveawayCredits int                `bson:"giveawayCredits" json:"giveawayCredits"`
	IsBanned        bool               `bson:"isBanned" json:"isBanned"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
