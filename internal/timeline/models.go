package timeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"flock/internal/constants"
)

// entryNamespace seeds the deterministic entry ids. Changing it would break
// idempotent redelivery for entries already written.
var entryNamespace = uuid.MustParse("6f1c5c2e-3f6a-5d8e-9b1a-5e7d2f0c4a11")

// Entry is one message in one owner's timeline. Entries are written only by
// the fan-out consumer and never updated.
type Entry struct {
	ID        string    `bson:"_id"`
	OwnerID   string    `bson:"owner_id"`
	MessageID string    `bson:"message_id"`
	AuthorID  string    `bson:"author_id"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"created_at"`
}

// EntryID is stable per (owner, message), so redelivered events upsert the same documents.
func EntryID(ownerID, messageID string) string {
	return uuid.NewSHA1(entryNamespace, []byte(ownerID+":"+messageID)).String()
}

func NewEntry(ownerID, messageID, authorID, content string, createdAt time.Time) Entry {
	return Entry{
		ID:        EntryID(ownerID, messageID),
		OwnerID:   ownerID,
		MessageID: messageID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: createdAt,
	}
}

func PageKey(ownerID string, pageNumber, pageSize int) string {
	return fmt.Sprintf("%s%s:page:%d:size:%d", constants.TimelineCacheKeyPrefix, ownerID, pageNumber, pageSize)
}

func OwnerKeyPattern(ownerID string) string {
	return constants.TimelineCacheKeyPrefix + ownerID + ":*"
}

// Item is a timeline entry as served to clients. ID is the message id.
type Item struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
}

type Page struct {
	Items       []Item `json:"items"`
	PageNumber  int    `json:"pageNumber"`
	PageSize    int    `json:"pageSize"`
	TotalCount  int64  `json:"totalCount"`
	TotalPages  int    `json:"totalPages"`
	HasNext     bool   `json:"hasNext"`
	HasPrevious bool   `json:"hasPrevious"`
}

func NewPage(items []Item, pageNumber, pageSize int, totalCount int64) *Page {
	if items == nil {
		items = []Item{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	}
	return &Page{
		Items:       items,
		PageNumber:  pageNumber,
		PageSize:    pageSize,
		TotalCount:  totalCount,
		TotalPages:  totalPages,
		HasNext:     pageNumber < totalPages,
		HasPrevious: pageNumber > 1,
	}
}
