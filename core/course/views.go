package course

// TopicView is the payload of one topic in a topic list.
// It is either an UnlockedTopicView or one of the locked views, which never carry
// video or test data.
type TopicView interface {
	topicView()
}

type UnlockedTopicView struct {
	ID                int     `json:"id"`
	Title             string  `json:"title"`
	Order             int     `json:"order"`
	VideoURL          *string `json:"video_url"`
	VideoTitle        string  `json:"video_title"`
	DurationInMinutes *int    `json:"duration_in_minutes"`
	IsUnlocked        bool    `json:"is_unlocked"`
}

type LockedTopicView struct {
	ID                int    `json:"id"`
	Title             string `json:"title"`
	DurationInMinutes *int   `json:"duration_in_minutes"`
	Order             int    `json:"order"`
	IsUnlocked        bool   `json:"is_unlocked"`
}

// LockedPreviewTopicView is the locked view of the public preview, which hides the order too.
type LockedPreviewTopicView struct {
	ID                int    `json:"id"`
	Title             string `json:"title"`
	DurationInMinutes *int   `json:"duration_in_minutes"`
	IsUnlocked        bool   `json:"is_unlocked"`
}

func (UnlockedTopicView) topicView()      {}
func (LockedTopicView) topicView()        {}
func (LockedPreviewTopicView) topicView() {}

func newUnlockedTopicView(t Topic) UnlockedTopicView {
	return UnlockedTopicView{
		ID:                t.ID,
		Title:             t.Title,
		Order:             t.Order,
		VideoURL:          t.VideoURL,
		VideoTitle:        t.VideoTitle,
		DurationInMinutes: t.DurationInMinutes,
		IsUnlocked:        true,
	}
}

// TopicViews shapes each topic according to the user's progress.
func TopicViews(topics []Topic, progress Progress) []TopicView {
	views := make([]TopicView, 0, len(topics))
	for _, t := range topics {
		if progress.IsUnlocked(t.ID) {
			views = append(views, newUnlockedTopicView(t))
			continue
		}
		views = append(views, LockedTopicView{
			ID:                t.ID,
			Title:             t.Title,
			DurationInMinutes: t.DurationInMinutes,
			Order:             t.Order,
		})
	}
	return views
}

// PreviewViews unlocks the first topic only, whoever asks.
func PreviewViews(topics []Topic) []TopicView {
	views := make([]TopicView, 0, len(topics))
	for i, t := range topics {
		if i == 0 {
			views = append(views, newUnlockedTopicView(t))
			continue
		}
		views = append(views, LockedPreviewTopicView{
			ID:                t.ID,
			Title:             t.Title,
			DurationInMinutes: t.DurationInMinutes,
		})
	}
	return views
}

type (
	// TopicDetail is the full content of an unlocked topic.
	TopicDetail struct {
		ID                int       `json:"id"`
		Title             string    `json:"title"`
		VideoURL          *string   `json:"video_url"`
		VideoTitle        string    `json:"video_title"`
		DurationInMinutes *int      `json:"duration_in_minutes"`
		Test              *TestView `json:"test"`
	}

	TestView struct {
		ID           int            `json:"id"`
		PassingScore int            `json:"passing_score"`
		Questions    []QuestionView `json:"questions"`
	}

	QuestionView struct {
		ID      int          `json:"id"`
		Text    string       `json:"text"`
		Answers []AnswerView `json:"answers"`
	}

	// AnswerView leaves out the answer correctness.
	AnswerView struct {
		ID   int    `json:"id"`
		Text string `json:"text"`
	}
)

func newTopicDetail(t Topic, test *Test) TopicDetail {
	detail := TopicDetail{
		ID:                t.ID,
		Title:             t.Title,
		VideoURL:          t.VideoURL,
		VideoTitle:        t.VideoTitle,
		DurationInMinutes: t.DurationInMinutes,
	}
	if test == nil {
		return detail
	}

	tv := &TestView{
		ID:           test.ID,
		PassingScore: test.PassingScore,
		Questions:    make([]QuestionView, 0, len(test.Questions)),
	}
	for _, q := range test.Questions {
		qv := QuestionView{ID: q.ID, Text: q.Text, Answers: make([]AnswerView, 0, len(q.Answers))}
		for _, a := range q.Answers {
			qv.Answers = append(qv.Answers, AnswerView{ID: a.ID, Text: a.Text})
		}
		tv.Questions = append(tv.Questions, qv)
	}
	detail.Test = tv
	return detail
}
