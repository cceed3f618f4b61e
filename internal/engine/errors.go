package engine

import "errors"

var (
	ErrInvalidRole         = errors.New("invalid role")
	ErrInvalidChoice       = errors.New("invalid choice")
	ErrDuplicateSubmission = errors.New("role already decided this round")
	ErrRoundNotActive      = errors.New("round not active")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidRules        = errors.New("invalid rules")
)
