package domain

import "errors"

var (
	// ErrSourceUnavailable is returned when a pack cannot be fetched or decoded.
	ErrSourceUnavailable = errors.New("question source unavailable")
	// ErrPersistenceUnavailable is returned when no score store accepted a write or read.
	ErrPersistenceUnavailable = errors.New("score persistence unavailable")
	// ErrSessionNotStarted indicates an event arrived before the session was in progress.
	ErrSessionNotStarted = errors.New("quiz session not started")
	// ErrSessionFinished indicates an event arrived after the last question.
	ErrSessionFinished = errors.New("quiz session finished")
	// ErrInvalidSelection indicates a presented choice index out of range.
	ErrInvalidSelection = errors.New("selection out of range")
	// ErrQuestionOpen indicates an attempt to advance before the current question locked.
	ErrQuestionOpen = errors.New("current question not locked")
	// ErrEmptyPool indicates no question could be presented at all.
	ErrEmptyPool = errors.New("question pool is empty")
)
