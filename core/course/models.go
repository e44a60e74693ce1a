package course

import (
	"sort"
	"time"
)

// Course types & sub types
const (
	TypeStudent = "student"
	TypeTeacher = "teacher"

	SubTypeGrade1 = "grade1"
	SubTypeGrade2 = "grade2"
)

type Course struct {
	ID          int     `json:"id" db:"id"`
	Title       string  `json:"title" db:"title"`
	Description string  `json:"description" db:"description"`
	CourseType  *string `json:"course_type" db:"course_type"`
	SubType     *string `json:"sub_type" db:"sub_type"`
	Img         *string `json:"img" db:"img"`
}

type Topic struct {
	ID                int     `db:"id"`
	CourseID          int     `db:"course_id"`
	Title             string  `db:"title"`
	Order             int     `db:"order"`
	VideoURL          *string `db:"video_url"`
	VideoTitle        string  `db:"video_title"`
	DurationInMinutes *int    `db:"duration_in_minutes"`
	TestID            *int    `db:"test_id"` // nil when the topic has no test
}

func (t Topic) HasTest() bool { return t.TestID != nil }

// SortTopics orders topics by Order; topics sharing an Order keep ID order.
func SortTopics(topics []Topic) {
	sort.SliceStable(topics, func(i, j int) bool {
		if topics[i].Order != topics[j].Order {
			return topics[i].Order < topics[j].Order
		}
		return topics[i].ID < topics[j].ID
	})
}

type Test struct {
	ID           int `db:"id"`
	TopicID      int `db:"topic_id"`
	PassingScore int `db:"passing_score"`
	Questions    []Question
}

type Question struct {
	ID      int    `db:"id"`
	TestID  int    `db:"test_id"`
	Text    string `db:"text"`
	Answers []Answer
}

type Answer struct {
	ID         int    `db:"id"`
	QuestionID int    `db:"question_id"`
	Text       string `db:"text"`
	IsCorrect  bool   `db:"is_correct"`
}

type Enrollment struct {
	ID         int       `json:"id" db:"id"`
	UserID     int       `json:"user_id" db:"user_id"`
	CourseID   int       `json:"course_id" db:"course_id"`
	EnrolledAt time.Time `json:"enrolled_at" db:"enrolled_at"`
}

// TestResult is the ledger entry holding the best known result of a user for a test.
type TestResult struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	TestID    int       `json:"test_id" db:"test_id"`
	Score     int       `json:"score" db:"score"`
	Passed    bool      `json:"passed" db:"passed"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
