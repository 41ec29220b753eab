package errors

import (
	"fmt"
)

var (
	ErrInvalidConfig = fmt.Errorf("contextengine: invalid config")
	ErrNotFound      = fmt.Errorf("contextengine: not found")
	ErrInvalidParams = fmt.Errorf("contextengine: invalid params")
)
