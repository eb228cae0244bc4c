package domain

import "errors"

// Category errors for the three failure classes every game and quiz operation
// reports. Call sites wrap them with fmt.Errorf("%w: ...") context and callers
// classify with errors.Is.
var (
	// ErrNotFound is returned when a referenced game, quiz, player, round,
	// or question does not exist in the expected scope.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is returned for malformed or mismatched input,
	// including an adminId that does not match the game's admin.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState is returned when an operation is not permitted given
	// the current status (submitting while closed, duplicate submission,
	// advancing before closing).
	ErrInvalidState = errors.New("invalid state")
)
