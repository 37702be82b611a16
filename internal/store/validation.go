package store

import (
	"errors"

	"github.com/priku/tilitin/internal/model"
)

func isValidation(err error) bool {
	var verr model.ValidationError
	return errors.As(err, &verr)
}
