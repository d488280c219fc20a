package apperror

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// formatFieldName turns a json tag (monthly_ctc) into a label (Monthly Ctc).
func formatFieldName(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	caser := cases.Title(language.English)
	return caser.String(s)
}

// MapValidationError converts a gin binding error into an AppError. Only the
// first failing field is named in the message; details.fields lists all of
// them so the error envelope always carries an object.
func MapValidationError(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		fields := make([]map[string]string, 0, len(errs))
		for _, fe := range errs {
			fields = append(fields, map[string]string{
				"field": fe.Field(),
				"rule":  fe.Tag(),
			})
		}

		details := map[string]any{"fields": fields}

		e := errs[0]
		humanReadableField := formatFieldName(e.Field())

		switch e.Tag() {
		case "required":
			return RequiredField(humanReadableField).WithDetails(details)
		case "oneof":
			return New(
				CodeInvalidInput,
				humanReadableField+" must be one of: "+strings.ReplaceAll(e.Param(), " ", ", "),
				http.StatusBadRequest,
			).WithDetails(details)
		default:
			return InvalidField(humanReadableField).WithDetails(details)
		}
	}

	return New(
		CodeInvalidInput,
		"Invalid input",
		http.StatusBadRequest,
	)
}
