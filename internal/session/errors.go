package session

import "github.com/pkg/errors"

var (
	ErrSessionNotFound = errors.New("checkout session not found")
	ErrSessionTerminal = errors.New("checkout session already has a confirmed order")
	ErrStageRegression = errors.New("checkout stage cannot move backwards")
	ErrInvalidStage    = errors.New("unknown checkout stage")
)
