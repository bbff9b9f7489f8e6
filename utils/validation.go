package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// fieldLabels gives form fields their human readable names.
var fieldLabels = map[string]string{
	"first_name": "First name",
	"last_name":  "Last name",
	"image_url":  "Image URL",
	"title":      "Title",
	"content":    "Content",
	"name":       "Name",
}

// RegisterValidators installs the notblank rule on gin's validator and makes
// validation errors report form field names. Safe to call more than once.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin binding validator is not go-playground/validator")
			return
		}
		if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
			registerErr = fmt.Errorf("register notblank: %w", err)
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return registerErr
}

// ValidationMessages turns a binding error into notices fit for a form page.
func ValidationMessages(err error) []string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"Invalid form submission"}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		label := fieldLabel(fe.Field())
		switch fe.Tag() {
		case "required", "notblank":
			msgs = append(msgs, label+" is required")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", label, fe.Param()))
		default:
			msgs = append(msgs, label+" is invalid")
		}
	}
	return msgs
}

func fieldLabel(field string) string {
	if label, ok := fieldLabels[field]; ok {
		return label
	}
	label := strings.ReplaceAll(field, "_", " ")
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
