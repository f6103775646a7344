// Package validation checks request payloads against struct-tag schemas and
// reports every violated constraint with its JSON field path.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"folio-api/internal/domain"
)

// MaxSlugLength bounds slugs and keeps object keys short.
const MaxSlugLength = 50

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// FieldError is one violated constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the list of violations returned by a failed validation.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation: " + strings.Join(parts, "; ")
}

// Validator wraps a configured validator.Validate. It is safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the content tags registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails on empty tags or nil funcs.
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return ValidSlug(fl.Field().String())
	})
	_ = v.RegisterValidation("contentdate", func(fl validator.FieldLevel) bool {
		return domain.ValidDate(fl.Field().String())
	})
	_ = v.RegisterValidation("safefilename", func(fl validator.FieldLevel) bool {
		return SafeFilename(fl.Field().String())
	})
	return &Validator{v: v}
}

// Struct validates s. A nil return means s is valid; otherwise the error is Errors.
func (v *Validator) Struct(s any) error {
	return v.collect(v.v.Struct(s))
}

// Var validates a single value under the given field name.
func (v *Validator) Var(field string, value any, tag string) error {
	err := v.v.Var(value, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: field, Message: message(fe)})
	}
	return out
}

func (v *Validator) collect(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fieldPath(fe.Namespace()), Message: message(fe)})
	}
	return out
}

// Merge concatenates validation errors, passing other errors through.
func Merge(errs ...error) error {
	var out Errors
	for _, err := range errs {
		if err == nil {
			continue
		}
		var ve Errors
		if !errors.As(err, &ve) {
			return err
		}
		out = append(out, ve...)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// fieldPath turns "Project.Common.media[0].src" into "media.0.src". The
// first segment is the validated type; embedded struct names are the only
// other capitalized segments since every JSON name is lower case.
func fieldPath(namespace string) string {
	namespace = strings.NewReplacer("[", ".", "]", "").Replace(namespace)
	segments := strings.Split(namespace, ".")
	if len(segments) > 1 {
		segments = segments[1:]
	}
	kept := make([]string, 0, len(segments))
	for _, s := range segments {
		if s == "" || unicode.IsUpper(rune(s[0])) {
			continue
		}
		kept = append(kept, s)
	}
	return strings.Join(kept, ".")
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		switch fe.Kind() {
		case reflect.Slice, reflect.Array:
			return fmt.Sprintf("must have at most %s items", fe.Param())
		case reflect.String:
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		default:
			return fmt.Sprintf("must be at most %s", fe.Param())
		}
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "slug":
		return "must be lowercase letters and digits separated by single hyphens, at most " + strconv.Itoa(MaxSlugLength) + " characters"
	case "contentdate":
		return "must be a YYYY-MM-DD date or \"present\""
	case "safefilename":
		return "must contain only letters, digits, dots, hyphens and underscores"
	default:
		return "is invalid"
	}
}

// ValidSlug reports whether s is a well-formed slug.
func ValidSlug(s string) bool {
	return s != "" && len(s) <= MaxSlugLength && slugPattern.MatchString(s)
}

var filenamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// SafeFilename reports whether s is a single path element made of safe
// characters. Traversal sequences are rejected even though the character
// class alone would admit "..".
func SafeFilename(s string) bool {
	if s == "" || len(s) > 255 {
		return false
	}
	if strings.Contains(s, "..") || strings.ContainsAny(s, `/\`) {
		return false
	}
	return filenamePattern.MatchString(s)
}
