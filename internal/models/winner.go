package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Winner represents the winning pick of one slot, resolved against the
// drawn number at draw-entry time.
type Winner struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	GiveawayID primitive.ObjectID `bson:"giveawayId" json:"giveawayId"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	Slot       int                `bson:"slot" json:"slot"`
	PickNumber string             `bson:"pickNumber" json:"pickNumber"`
	Distance   int                `bson:"distance" json:"distance"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
