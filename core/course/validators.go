package course

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/sabaq/backend/core"
)

var (
	courseTypeTag  = "coursetype"
	courseTypeText = "invalid course type"

	subTypeTag  = "subtype"
	subTypeText = "invalid course sub type"
)

// InitValidators registers the course validators. core.InitValidators must be called first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(courseTypeTag, oneOf(TypeStudent, TypeTeacher))
	core.RegisterCustomTranslation(validate, translator, courseTypeTag, courseTypeText)

	_ = validate.RegisterValidation(subTypeTag, oneOf(SubTypeGrade1, SubTypeGrade2))
	core.RegisterCustomTranslation(validate, translator, subTypeTag, subTypeText)
}

func oneOf(values ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		for _, val := range values {
			if v == val {
				return true
			}
		}
		return false
	}
}
