package db

import "github.com/google/uuid"

// Citation points an answer back at the chunk it was grounded on.
type Citation struct {
	DocumentID string  `bson:"documentId" json:"documentId"`
	PageNumber int     `bson:"pageNumber" json:"pageNumber"`
	TableID    string  `bson:"tableId,omitempty" json:"tableId,omitempty"`
	Snippet    string  `bson:"snippet" json:"snippet"` // at most 200 chars + ellipsis
	Confidence float64 `bson:"confidence" json:"confidence"`
}

type QueryHistoryModel struct {
	ID         string     `bson:"_id" json:"id"`
	UserId     string     `bson:"userId" json:"userId"`
	Query      string     `bson:"query" json:"query"`
	Answer     string     `bson:"answer" json:"answer"`
	Citations  []Citation `bson:"citations" json:"citations"`
	Confidence float64    `bson:"confidence" json:"confidence"`
	ElapsedMs  int64      `bson:"elapsedMs" json:"elapsedMs"`
	CreatedOn  int64      `bson:"createdOn" json:"createdOn"`
}

func (m QueryHistoryModel) Id() string {
	if len(m.ID) == 0 {
		return uuid.New().String()
	}
	return m.ID
}

func (m QueryHistoryModel) CollectionName() string { return "query_history" }
