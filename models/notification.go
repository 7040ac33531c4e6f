package models

import "time"

// Notification holds the structure for the notifications collection in mongo
type Notification struct {
	ID        string    `json:"_id" bson:"_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Message   string    `json:"message" bson:"message"`
	IsRead    bool      `json:"is_read" bson:"is_read"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Notice is a message to deliver to the owner of a FIR
type Notice struct {
	RecipientID string
	Email       string
	Name        string
	Message     string
}
