package cli

import "errors"

// Common CLI errors
var (
	ErrInvalidFixtures   = errors.New("one or more fixtures are invalid")
	ErrNoFixtures        = errors.New("no fixture files matched")
	ErrUnmetExpectations = errors.New("expectations were not met")
)
