package repository

import "errors"

// ErrDuplicate is returned when a unique constraint rejects a write. It needs
// gorm.Config.TranslateError to be enabled on the connection.
var ErrDuplicate = errors.New("duplicate entry")
