package store

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type DailyQuestion struct {
	ID       string `json:"id" db:"id"`
	Question string `json:"question" db:"question"`
	// Streak is a display hint shipped with the question, not the user's streak.
	Streak    int       `json:"streak" db:"streak"`
	Date      string    `json:"date" db:"date"`
	IsActive  bool      `json:"isActive" db:"is_active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type FeedbackType string

const (
	FeedbackSuccess FeedbackType = "success"
	FeedbackError   FeedbackType = "error"
	FeedbackInfo    FeedbackType = "info"
)

type FeedbackItem struct {
	Title string       `json:"title"`
	Text  string       `json:"text"`
	Type  FeedbackType `json:"type"`
}

const StatusGraded = "graded"

type GradingResult struct {
	ID         string       `json:"id" db:"id"`
	UserID     string       `json:"userId" db:"user_id"`
	QuestionID string       `json:"questionId" db:"question_id"`
	Question   string       `json:"question" db:"question"`
	ImageURLs  StringList   `json:"imageUrls" db:"image_urls"`
	Score      int          `json:"score" db:"score"`
	Feedback   FeedbackList `json:"feedback" db:"feedback"`
	Status     string       `json:"status,omitempty" db:"status"`
	CreatedAt  time.Time    `json:"createdAt" db:"created_at"`
}

// HistoryItem is the flat record shown in the history list.
type HistoryItem struct {
	ID        string    `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	Question  string    `json:"question" db:"question"`
	Score     int       `json:"score" db:"score"`
}

// StringList is stored as a JSON array column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(l))
	return string(data), err
}

func (l *StringList) Scan(src any) error {
	return scanJSON(src, (*[]string)(l))
}

// FeedbackList is stored as a JSON array column, in display order.
type FeedbackList []FeedbackItem

func (l FeedbackList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]FeedbackItem(l))
	return string(data), err
}

func (l *FeedbackList) Scan(src any) error {
	return scanJSON(src, (*[]FeedbackItem)(l))
}

func scanJSON(src any, dst any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}
