package messages

import "time"

// Message is immutable once stored.
type Message struct {
	ID        string    `bson:"_id"`
	AuthorID  string    `bson:"author_id"`
	Text      string    `bson:"text"`
	CreatedAt time.Time `bson:"created_at"`
}

type CreateMessageRequest struct {
	UserID  string `json:"userId" validate:"required,uuid"`
	Content string `json:"content" validate:"required,notblank,max=280"`
}

type MessageResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
}
