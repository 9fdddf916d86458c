package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Person is a contact a note can reference.
type Person struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email" bson:"email,omitempty"`
	DeptName  string             `json:"dept_name" bson:"dept_name,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// Department groups people and notes.
type Department struct {
	ID   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name string             `json:"name" bson:"name"`
}

// Project is a long-running effort notes can be filed under.
type Project struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Status    string             `json:"status" bson:"status,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
