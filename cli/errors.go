package cli

import "errors"

// ErrNoChoices is returned when a selection is requested over an empty list.
var ErrNoChoices = errors.New("nothing to choose from")
