// Package inputval validates decoded JSON payloads with go-playground/validator.
// Field names in errors are the json tag names.
package inputval

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

const (
	notBlankTag = "notblank"
	roleTag     = "role"
	slugTag     = "slug"
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	eng := en.New()
	translator, _ = ut.New(eng, eng).GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && strings.TrimSpace(s) != ""
	})
	_ = validate.RegisterValidation(roleTag, func(fl validator.FieldLevel) bool {
		_, ok := models.ParseRole(fl.Field().String())
		return ok
	})
	_ = validate.RegisterValidation(slugTag, func(fl validator.FieldLevel) bool {
		return models.ValidSlug(strings.ToLower(strings.TrimSpace(fl.Field().String())))
	})

	messages := map[string]string{
		notBlankTag: "{0} cannot be blank",
		roleTag:     "{0} must be USER, LEADER or ADMIN",
		slugTag:     "{0} must be lower-case letters, digits and dashes",
	}
	for tag, msg := range messages {
		msg := msg
		tag := tag
		_ = validate.RegisterTranslation(tag, translator,
			func(t ut.Translator) error { return t.Add(tag, msg, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				s, _ := t.T(tag, fe.Field())
				return s
			})
	}
}

// FieldErrors maps json field names to messages.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, f[k])
	}
	return strings.Join(parts, "; ")
}

// Struct validates v. Failures come back as errs.ErrInvalid wrapping FieldErrors.
func Struct(op string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return errs.Wrap(op, errs.ErrInvalid, err)
	}
	fields := FieldErrors{}
	for _, fe := range ve {
		fields[fe.Field()] = fe.Translate(translator)
	}
	return &errs.Error{Op: op, Kind: errs.ErrInvalid, Message: fields.Error(), Err: fields}
}

// Fields extracts the per-field messages from err, if any.
func Fields(err error) FieldErrors {
	var f FieldErrors
	if errors.As(err, &f) {
		return f
	}
	return nil
}

// IsValidEmail reports whether s is a bare e-mail address.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && validate.Var(s, "email") == nil
}
