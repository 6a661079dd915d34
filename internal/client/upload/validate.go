package upload

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dmitrijs2005/findash/internal/client/models"
	"github.com/go-playground/validator/v10"
)

// Validation messages shown to the user.
const (
	MsgFileRequired     = "Please select a file to upload."
	MsgFileNotCSV       = "Only .csv files are supported."
	MsgFileTypeRequired = "Please choose a file type."
	MsgNotLoggedIn      = "You must be logged in to upload."
)

// ValidationError lists the preconditions an attempt failed. It never
// reaches the network.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, " ")
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("csvfile", func(fl validator.FieldLevel) bool {
		return strings.EqualFold(filepath.Ext(fl.Field().String()), ".csv")
	})
	_ = v.RegisterValidation("filetype", func(fl validator.FieldLevel) bool {
		return slices.Contains(models.SupportedFileTypes, fl.Field().String())
	})
	return v
}

func validateAttempt(v *validator.Validate, a Attempt) *ValidationError {
	err := v.Struct(a)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return &ValidationError{Problems: []string{err.Error()}}
	}

	out := &ValidationError{}
	for _, fe := range ve {
		out.Problems = append(out.Problems, fieldError(fe))
	}
	return out
}

// fieldError converts a single validator.FieldError into the form's wording.
func fieldError(fe validator.FieldError) string {
	switch fe.Field() + "." + fe.Tag() {
	case "File.required":
		return MsgFileRequired
	case "File.csvfile":
		return MsgFileNotCSV
	case "FileType.required":
		return MsgFileTypeRequired
	case "FileType.filetype":
		return fmt.Sprintf("Unsupported file type %q. Choose one of: %s.",
			fe.Value(), strings.Join(models.SupportedFileTypes, ", "))
	case "ProjectID.max":
		return fmt.Sprintf("Project id must be at most %s characters.", fe.Param())
	}
	return fmt.Sprintf("%s failed validation (%s).", strings.ToLower(fe.Field()), fe.Tag())
}
