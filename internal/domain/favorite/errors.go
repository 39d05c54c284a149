package favorite

import "errors"

var ErrMaidNotFound = errors.New("maid not found")
