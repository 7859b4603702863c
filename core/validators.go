package core

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	Validate   *validator.Validate
	translator ut.Translator

	// custom validation tags & texts
	noSpaceTag   = "nospace"
	noSpaceText  = "whitespace is not allowed in this field"
	noSpaceRegex = regexp.MustCompile(`^\S+$`)

	requiredTag  = "required"
	requiredText = "this field is required"
)

// InitValidators instantiates the shared validator. The program bootstrap
// calls it once before any validation runs; nothing initializes it ambiently.
func InitValidators() {
	Validate = validator.New()
	enLocale := en.New()
	translator, _ = ut.New(enLocale, enLocale).GetTranslator("en")
	registerValidations(Validate, translator)
}

func registerValidations(validate *validator.Validate, trans ut.Translator) {
	_ = entranslations.RegisterDefaultTranslations(validate, trans)

	// Use mapstructure/json tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "mapstructure"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	_ = validate.RegisterValidation(noSpaceTag, noSpaceValidation)
	RegisterCustomTranslation(validate, trans, noSpaceTag, noSpaceText)
	RegisterCustomTranslation(validate, trans, requiredTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, trans ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// TranslateErrors flattens a validator error into per-field errors.
func TranslateErrors(err error) []FieldError {
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "", Error: err.Error()}}
	}
	flds := make([]FieldError, 0, len(vErrs))
	for _, fe := range vErrs {
		flds = append(flds, FieldError{Field: fe.Field(), Error: fe.Translate(translator)})
	}
	return flds
}

// noSpaceValidation rejects values containing any whitespace.
func noSpaceValidation(fl validator.FieldLevel) bool {
	return noSpaceRegex.MatchString(fl.Field().String())
}
