package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/findash/internal/client/models"
	"github.com/dmitrijs2005/findash/internal/common"
	"github.com/go-playground/validator/v10"
)

// MinPasswordLength matches the backend's sign-up rule.
const MinPasswordLength = 8

const (
	MsgEmailInvalid  = "Please enter a valid email address."
	MsgPasswordShort = "Password must be at least 8 characters."
)

type signUp struct {
	Email    string `validate:"required,email"`
	Password []byte `validate:"min=8"`
}

var signUpValidator = validator.New()

func validateSignUp(email string, password []byte) error {
	err := signUpValidator.Struct(signUp{Email: email, Password: password})
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	problems := make([]string, 0, len(ve))
	for _, fe := range ve {
		switch fe.Field() {
		case "Email":
			problems = append(problems, MsgEmailInvalid)
		case "Password":
			problems = append(problems, MsgPasswordShort)
		}
	}
	return fmt.Errorf("%w: %s", common.ErrorValidation, strings.Join(problems, " "))
}

// Register creates an account. It does not sign in: the backend may want
// the email confirmed first, so the user logs in as a separate step. The
// session is never touched.
func (a *Authenticator) Register(ctx context.Context, email string, password []byte) (*models.User, error) {
	if err := validateSignUp(email, password); err != nil {
		return nil, err
	}

	user, err := a.issuer.Register(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}
	a.log.Info(ctx, "account created", "user_id", user.ID)
	return user, nil
}
