package tests

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/sabaq/backend/core/course"
	"github.com/sabaq/backend/core/user"
	"github.com/sabaq/backend/tests"
)

type courseEnv struct {
	*env
	curator, student, outsider user.User
	course                     course.Course
	topics                     []course.Topic
	tests                      []course.Test // by topic index; zero when the topic has no test
}

// setupCourse creates a course of 3 topics: 1 and 3 have a 2-question test (default passing score, 2), 2 has none.
func setupCourse(t *testing.T) *courseEnv {
	e := &courseEnv{env: setup(t)}
	e.curator = testutil.CreateUser(t, e.usrRepo, "Ada", "ada", user.RoleCurator)
	e.student = testutil.CreateUser(t, e.usrRepo, "Bob", "bob", user.RoleStudent, e.curator)
	e.outsider = testutil.CreateUser(t, e.usrRepo, "Eve", "eve", user.RoleStudent)

	e.course, e.topics = testutil.CreateCourse(t, e.courseRepo, "Algebra",
		testutil.TopicContent("numbers", 1, testutil.TestContent(0, 2)),
		testutil.TopicContent("break", 2, nil),
		testutil.TopicContent("fractions", 3, testutil.TestContent(0, 2)),
	)
	for _, topic := range e.topics {
		var test course.Test
		if topic.HasTest() {
			var err error
			if test, err = e.courseRepo.GetTest(context.Background(), *topic.TestID); err != nil {
				t.Fatalf("GetTest(): %v", err)
			}
		}
		e.tests = append(e.tests, test)
	}
	testutil.Enroll(t, e.courseRepo, e.student, e.course)
	return e
}

func (e *courseEnv) submission(t *testing.T, topic, right int) []byte {
	var sub course.Submission
	for i, q := range e.tests[topic].Questions {
		ans := q.Answers[1]
		if i < right {
			ans = q.Answers[0]
		}
		sub.Answers = append(sub.Answers, course.SubmittedAnswer{QuestionID: q.ID, AnswerID: ans.ID})
	}
	return marchallObj(t, sub)
}

func (e *courseEnv) unlockedView(i int) map[string]interface{} {
	topic := e.topics[i]
	return map[string]interface{}{
		"id": topic.ID, "title": topic.Title, "order": topic.Order, "video_url": topic.VideoURL,
		"video_title": topic.VideoTitle, "duration_in_minutes": topic.DurationInMinutes, "is_unlocked": true,
	}
}

func (e *courseEnv) lockedView(i int) map[string]interface{} {
	topic := e.topics[i]
	return map[string]interface{}{
		"id": topic.ID, "title": topic.Title, "order": topic.Order,
		"duration_in_minutes": topic.DurationInMinutes, "is_unlocked": false,
	}
}

func (e *courseEnv) previewView(i int) map[string]interface{} {
	topic := e.topics[i]
	return map[string]interface{}{
		"id": topic.ID, "title": topic.Title, "duration_in_minutes": topic.DurationInMinutes, "is_unlocked": false,
	}
}

func (e *courseEnv) testView(i int) map[string]interface{} {
	test := e.tests[i]
	questions := make([]interface{}, 0, len(test.Questions))
	for _, q := range test.Questions {
		answers := make([]interface{}, 0, len(q.Answers))
		for _, a := range q.Answers {
			answers = append(answers, map[string]interface{}{"id": a.ID, "text": a.Text})
		}
		questions = append(questions, map[string]interface{}{"id": q.ID, "text": q.Text, "answers": answers})
	}
	return map[string]interface{}{"id": test.ID, "passing_score": 2, "questions": questions}
}

func (e *courseEnv) topicDetail(i int, test interface{}) map[string]interface{} {
	topic := e.topics[i]
	return map[string]interface{}{
		"id": topic.ID, "title": topic.Title, "video_url": topic.VideoURL, "video_title": topic.VideoTitle,
		"duration_in_minutes": topic.DurationInMinutes, "test": test,
	}
}

func gradeResult(score int, passed bool, details ...course.AnswerDetail) course.GradeResult {
	return course.GradeResult{Score: score, Passed: passed, AnswersDetail: details}
}

func (e *courseEnv) details(topic int, correct ...bool) []course.AnswerDetail {
	var ds []course.AnswerDetail
	for i, q := range e.tests[topic].Questions {
		ds = append(ds, course.AnswerDetail{QuestionID: q.ID, AnsweredCorrectly: correct[i]})
	}
	return ds
}

func Test_courseApi_publicCourses(t *testing.T) {
	e := setupCourse(t)
	geo, _ := testutil.CreateCourse(t, e.courseRepo, "Geometry")

	e.run(t, []httpTest{
		{name: "List", path: "/api/public-courses", wantData: marchallList(t, e.course, geo)},
		{name: "List by -title", path: "/api/public-courses?ordering=-title", wantData: marchallList(t, geo, e.course)},
		{name: "Unknown ordering ignored", path: "/api/public-courses?ordering=secret", wantData: marchallList(t, e.course, geo)},
		{name: "Detail", path: fmt.Sprintf("/api/public-courses/%d", geo.ID), wantData: marchallObj(t, geo)},
		{
			name: "Detail (not found)", path: "/api/public-courses/9999",
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Detail: "course not found"}),
		},
		{
			name: "Detail (bad id)", path: "/api/public-courses/abc",
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Detail: "not found"}),
		},
	})
}

func Test_courseApi_firstTopic(t *testing.T) {
	e := setupCourse(t)
	empty, _ := testutil.CreateCourse(t, e.courseRepo, "Empty")

	e.run(t, []httpTest{
		{
			name: "Preview (public)", path: fmt.Sprintf("/api/public-courses/%d/first-topic", e.course.ID),
			wantData: marchallList(t, e.unlockedView(0), e.previewView(1), e.previewView(2)),
		},
		{
			name: "Preview ignores progress", path: fmt.Sprintf("/api/public-courses/%d/first-topic", e.course.ID),
			token:    e.getToken(t, e.student),
			wantData: marchallList(t, e.unlockedView(0), e.previewView(1), e.previewView(2)),
		},
		{
			name: "Course not found", path: "/api/public-courses/9999/first-topic",
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Detail: "course not found"}),
		},
		{
			name: "No topics", path: fmt.Sprintf("/api/public-courses/%d/first-topic", empty.ID),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Detail: "course has no topics"}),
		},
	})
}

func Test_courseApi_myCourses(t *testing.T) {
	e := setupCourse(t)

	e.run(t, []httpTest{
		{name: "Auth required", path: "/api/my-courses", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Student", path: "/api/my-courses", token: e.getToken(t, e.student), wantData: marchallList(t, e.course)},
		{name: "Not enrolled", path: "/api/my-courses", token: e.getToken(t, e.outsider), wantData: marchallList(t)},
		{name: "Curator", path: "/api/my-courses", token: e.getToken(t, e.curator), wantData: marchallList(t)},
	})
}

func Test_courseApi_flow(t *testing.T) {
	e := setupCourse(t)
	token := e.getToken(t, e.student)
	topicsPath := fmt.Sprintf("/api/my-courses/%d/topics", e.course.ID)
	submitPath := func(i int) string { return fmt.Sprintf("/api/topics/%d/submit-test", e.topics[i].ID) }
	detailPath := func(i int) string { return fmt.Sprintf("/api/topics/%d", e.topics[i].ID) }
	notEnrolled := marchallObj(t, httpErr{Detail: "you are not enrolled in this course"})
	locked := marchallObj(t, httpErr{Detail: "topic is not unlocked yet"})

	e.run(t, []httpTest{
		{name: "Auth required", path: topicsPath, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Not enrolled", path: topicsPath, token: e.getToken(t, e.outsider), wantCode: http.StatusForbidden, wantData: notEnrolled},
		{name: "Unknown course", path: "/api/my-courses/9999/topics", token: token, wantCode: http.StatusForbidden, wantData: notEnrolled},
		{
			name: "Fresh start", path: topicsPath, token: token,
			wantData: marchallList(t, e.unlockedView(0), e.lockedView(1), e.lockedView(2)),
		},
		{name: "First topic detail", path: detailPath(0), token: token, wantData: marchallObj(t, e.topicDetail(0, e.testView(0)))},
		{name: "Locked topic detail", path: detailPath(1), token: token, wantCode: http.StatusForbidden, wantData: locked},
		{
			name: "Failing submission", method: http.MethodPost, path: submitPath(0), token: token, body: e.submission(t, 0, 1),
			wantData: marchallObj(t, gradeResult(1, false, e.details(0, true, false)...)),
		},
		{
			name: "Still locked", path: topicsPath, token: token,
			wantData: marchallList(t, e.unlockedView(0), e.lockedView(1), e.lockedView(2)),
		},
		{
			name: "Passing submission", method: http.MethodPost, path: submitPath(0), token: token, body: e.submission(t, 0, 2),
			wantData: marchallObj(t, gradeResult(2, true, e.details(0, true, true)...)),
		},
		{
			name: "Topic without test clears itself", path: topicsPath, token: token,
			wantData: marchallList(t, e.unlockedView(0), e.unlockedView(1), e.unlockedView(2)),
		},
		{name: "Topic without test detail", path: detailPath(1), token: token, wantData: marchallObj(t, e.topicDetail(1, nil))},
		{name: "Last topic detail", path: detailPath(2), token: token, wantData: marchallObj(t, e.topicDetail(2, e.testView(2)))},
		{
			name: "Fail after pass", method: http.MethodPost, path: submitPath(0), token: token, body: e.submission(t, 0, 0),
			wantData: marchallObj(t, gradeResult(0, false, e.details(0, false, false)...)),
		},
		{
			name: "Pass is kept", path: topicsPath, token: token,
			wantData: marchallList(t, e.unlockedView(0), e.unlockedView(1), e.unlockedView(2)),
		},
	})
}

func Test_courseApi_submitTest(t *testing.T) {
	e := setupCourse(t)
	token := e.getToken(t, e.student)
	submitPath := func(id int) string { return fmt.Sprintf("/api/topics/%d/submit-test", id) }
	noTest := marchallObj(t, httpErr{Detail: "test not found for this topic"})

	unresolvable := marchallObj(t, course.Submission{Answers: []course.SubmittedAnswer{
		{QuestionID: e.tests[2].Questions[0].ID, AnswerID: e.tests[0].Questions[0].Answers[0].ID}, // answer of another test
		{QuestionID: 9999, AnswerID: 9999},
	}})

	e.run(t, []httpTest{
		{name: "Auth required", method: http.MethodPost, path: submitPath(e.topics[0].ID), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Unknown topic", method: http.MethodPost, path: submitPath(9999), token: token, body: e.submission(t, 0, 2), wantCode: http.StatusNotFound, wantData: noTest},
		{name: "Topic without test", method: http.MethodPost, path: submitPath(e.topics[1].ID), token: token, body: e.submission(t, 0, 2), wantCode: http.StatusNotFound, wantData: noTest},
		{
			name: "Not enrolled", method: http.MethodPost, path: submitPath(e.topics[0].ID), token: e.getToken(t, e.outsider),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Detail: "you are not enrolled in this course"}),
		},
		{
			name: "Empty answers", method: http.MethodPost, path: submitPath(e.topics[0].ID), token: token, body: []byte(`{"answers": []}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Detail: "answers are required"}),
		},
		{
			name: "Malformed body", method: http.MethodPost, path: submitPath(e.topics[0].ID), token: token, body: []byte(`{"answers": 1`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Detail: "answers are required"}),
		},
		{
			name: "Unresolvable answers", method: http.MethodPost, path: submitPath(e.topics[2].ID), token: token, body: unresolvable,
			wantData: marchallObj(t, gradeResult(0, false,
				course.AnswerDetail{QuestionID: e.tests[2].Questions[0].ID},
				course.AnswerDetail{QuestionID: 9999},
			)),
		},
	})
}

func Test_courseApi_curatorProgress(t *testing.T) {
	e := setupCourse(t)
	path := "/api/curator/progress"

	req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/api/topics/%d/submit-test", e.topics[0].ID), e.getToken(t, e.student), e.submission(t, 0, 2))
	e.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit-test: code = %v; body %s", rec.Code, rec.Body.String())
	}

	e.run(t, []httpTest{
		{name: "Auth required", path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Curators only", path: path, token: e.getToken(t, e.student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Detail: "available to curators only"}),
		},
		{
			name: "Progress", path: path, token: e.getToken(t, e.curator),
			wantData: marchallList(t, course.StudentProgress{
				StudentID:   e.student.ID,
				StudentName: "Bob",
				Courses: []course.CourseProgress{
					{CourseID: e.course.ID, CourseTitle: "Algebra", PassedTopics: 2, TotalTopics: 3},
				},
			}),
		},
	})
}
