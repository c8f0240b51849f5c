package models

import "github.com/go-playground/validator/v10"

// validate is shared by every model's Validate method.
var validate = validator.New(validator.WithRequiredStructEnabled())
