package accountsdk

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

var subscriptionRule = validation.In("starter", "pro", "business").Error("must be one of starter, pro, business")

// Validate checks the registration form. Returns field -> message, or nil.
func (r RegisterRequest) Validate() map[string]string {
	return fieldErrors(validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(MinPasswordLength, MaxPasswordLength)),
		validation.Field(&r.Subscription, subscriptionRule),
	))
}

// Validate checks the login form. Returns field -> message, or nil.
func (r LoginRequest) Validate() map[string]string {
	return fieldErrors(validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	))
}

// Validate checks the email format. An empty email passes here; the server
// reports it with its own message.
func (r ResendVerificationRequest) Validate() map[string]string {
	return fieldErrors(validation.ValidateStruct(&r,
		validation.Field(&r.Email, is.Email),
	))
}

func fieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for field, ferr := range verrs {
		out[field] = ferr.Error()
	}
	return out
}
