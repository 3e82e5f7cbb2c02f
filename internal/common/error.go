// Package common defines shared constants, sentinel errors and the error
// taxonomy used across filekeeper layers. Callers should use errors.Is and
// errors.As to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
)
