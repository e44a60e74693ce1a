package course

type (
	SubmittedAnswer struct {
		QuestionID int `json:"question_id"`
		AnswerID   int `json:"answer_id"`
	}

	Submission struct {
		Answers []SubmittedAnswer `json:"answers"`
	}

	AnswerDetail struct {
		QuestionID        int  `json:"question_id"`
		AnsweredCorrectly bool `json:"answered_correctly"`
	}

	GradeResult struct {
		Score         int            `json:"score"`
		Passed        bool           `json:"passed"`
		AnswersDetail []AnswerDetail `json:"answers_detail"`
	}
)

// Grade scores answers against the test.
// Questions are looked up within the test only and answers within their question only;
// an item that cannot be resolved counts as incorrect.
func Grade(test Test, answers []SubmittedAnswer) GradeResult {
	questions := make(map[int]Question, len(test.Questions))
	for _, q := range test.Questions {
		questions[q.ID] = q
	}

	res := GradeResult{AnswersDetail: make([]AnswerDetail, 0, len(answers))}
	for _, sa := range answers {
		correct := false
		if q, ok := questions[sa.QuestionID]; ok {
			for _, a := range q.Answers {
				if a.ID == sa.AnswerID {
					correct = a.IsCorrect
					break
				}
			}
		}
		if correct {
			res.Score++
		}
		res.AnswersDetail = append(res.AnswersDetail, AnswerDetail{
			QuestionID:        sa.QuestionID,
			AnsweredCorrectly: correct,
		})
	}
	res.Passed = res.Score >= test.PassingScore
	return res
}

// Reconcile merges a graded attempt into the stored ledger entry.
// It reports whether the entry changed.
//
// passed only ever goes from false to true. The first passing attempt overwrites
// the score (even with a lower one); afterwards the score only moves up.
func Reconcile(stored TestResult, attempt GradeResult) (TestResult, bool) {
	switch {
	case attempt.Passed && !stored.Passed:
		stored.Score = attempt.Score
		stored.Passed = true
		return stored, true
	case attempt.Score > stored.Score:
		stored.Score = attempt.Score
		return stored, true
	default:
		return stored, false
	}
}
