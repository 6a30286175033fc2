package school

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/devbenja/colegio/core"
)

var (
	gradeNameTag  = "gradename"
	gradeNameText = "el nombre del grado no es una opción válida"
)

// InitValidators registers the catalog validation tags and texts. The set of
// allowed grade names comes from the configuration; an empty list allows
// freeform names.
func InitValidators(validate *validator.Validate, translator ut.Translator, conf *core.Config) {
	choices := conf.School.GradeNameChoices
	_ = validate.RegisterValidation(gradeNameTag, gradeNameValidation(choices))
	core.RegisterCustomTranslation(validate, translator, gradeNameTag,
		gradeNameText+choicesHint(choices))
}

func gradeNameValidation(choices []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		if len(choices) == 0 {
			return true
		}
		name := fl.Field().String()
		for _, c := range choices {
			if name == c {
				return true
			}
		}
		return false
	}
}

func choicesHint(choices []string) string {
	if len(choices) == 0 {
		return ""
	}
	return " (opciones: " + strings.Join(choices, ", ") + ")"
}
