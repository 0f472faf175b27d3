package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// CategoryDocument maps a marketplace display category id to its stored reference.
type CategoryDocument struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	CID  string             `bson:"cId"`
	Name string             `bson:"name,omitempty"`
}
