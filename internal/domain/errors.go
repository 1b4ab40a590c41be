package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session has not been initialized.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrNotReady is returned while country data and the map are still loading, or after they failed to load.
	ErrNotReady = errors.New("quiz data not ready")
	// ErrInsufficientData is returned when a pool cannot supply the requested number of questions or options.
	ErrInsufficientData = errors.New("insufficient quiz data")
	// ErrUnknownMode indicates an unsupported quiz mode.
	ErrUnknownMode = errors.New("unknown quiz mode")
	// ErrUnsupportedStyle indicates an answer style that the mode cannot present.
	ErrUnsupportedStyle = errors.New("answer style not supported for mode")
	// ErrNoActiveQuestion is returned when an action needs a question but the session is not on the quiz screen.
	ErrNoActiveQuestion = errors.New("no active question")
	// ErrAlreadyAnswered is returned when a second answer arrives for the same question.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrNotAnswered is returned when advancing before the current question was answered.
	ErrNotAnswered = errors.New("question not answered yet")
	// ErrEmptyAnswer marks an empty free-text submission; callers drop it without surfacing an error.
	ErrEmptyAnswer = errors.New("empty answer")
	// ErrWrongInput indicates an answer kind that does not fit the current question (e.g. text for a choice question).
	ErrWrongInput = errors.New("answer does not fit the current question")
	// ErrNoMap is returned for map interactions when the current question has no mounted map.
	ErrNoMap = errors.New("no map mounted")
	// ErrCatalogNotFound indicates the country catalog could not be loaded from a backing store.
	ErrCatalogNotFound = errors.New("country catalog not found")
)
