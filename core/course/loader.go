package course

import (
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sabaq/backend/core"
)

type (
	// CourseContent is a whole course hierarchy, as written in a course file.
	CourseContent struct {
		Title       string         `yaml:"title" json:"title" validate:"required,max=255"`
		Description string         `yaml:"description" json:"description"`
		CourseType  string         `yaml:"course_type" json:"course_type" validate:"omitempty,coursetype"`
		SubType     string         `yaml:"sub_type" json:"sub_type" validate:"omitempty,subtype"`
		Img         string         `yaml:"img" json:"img" validate:"omitempty,url"`
		Topics      []TopicContent `yaml:"topics" json:"topics" validate:"dive"`
	}

	TopicContent struct {
		Title             string       `yaml:"title" json:"title" validate:"required,max=255"`
		Order             int          `yaml:"order" json:"order" validate:"gte=0"`
		VideoURL          string       `yaml:"video_url" json:"video_url" validate:"omitempty,url"`
		VideoTitle        string       `yaml:"video_title" json:"video_title" validate:"max=255"`
		DurationInMinutes *int         `yaml:"duration_in_minutes" json:"duration_in_minutes" validate:"omitempty,gte=0"`
		Test              *TestContent `yaml:"test" json:"test"`
	}

	TestContent struct {
		// PassingScore falls back to the configured default when left out.
		PassingScore int               `yaml:"passing_score" json:"passing_score" validate:"gte=0"`
		Questions    []QuestionContent `yaml:"questions" json:"questions" validate:"required,min=1,dive"`
	}

	QuestionContent struct {
		Text    string          `yaml:"text" json:"text" validate:"required"`
		Answers []AnswerContent `yaml:"answers" json:"answers" validate:"required,min=2,dive"`
	}

	AnswerContent struct {
		Text    string `yaml:"text" json:"text" validate:"required"`
		Correct bool   `yaml:"correct" json:"correct"`
	}
)

// LoadCourseContent decodes a YAML course file. Unknown keys are rejected.
func LoadCourseContent(r io.Reader) (CourseContent, error) {
	var content CourseContent
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&content); err != nil {
		return CourseContent{}, errors.Wrap(err, "decoding course file")
	}
	return content, nil
}

func (c *CourseContent) Validate(validate *validator.Validate) error {
	c.Title = core.CleanString(c.Title)
	c.CourseType = core.CleanString(c.CourseType, true /* lower */)
	c.SubType = core.CleanString(c.SubType, true /* lower */)
	for i := range c.Topics {
		c.Topics[i].Title = core.CleanString(c.Topics[i].Title)
	}
	return validate.Struct(c)
}

// Course returns the course row of the content.
func (c CourseContent) Course() Course {
	return Course{
		Title:       c.Title,
		Description: c.Description,
		CourseType:  optional(c.CourseType),
		SubType:     optional(c.SubType),
		Img:         optional(c.Img),
	}
}

// Topic returns the topic row of the content, without its test.
func (t TopicContent) Topic(courseID int) Topic {
	return Topic{
		CourseID:          courseID,
		Title:             t.Title,
		Order:             t.Order,
		VideoURL:          optional(t.VideoURL),
		VideoTitle:        t.VideoTitle,
		DurationInMinutes: t.DurationInMinutes,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
