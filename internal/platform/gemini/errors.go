package gemini

import "errors"

// Errors returned by the chat client.
var (
	// ErrInvalidConfig indicates the client was constructed with bad settings.
	ErrInvalidConfig = errors.New("invalid gemini configuration")

	// ErrEmptyPrompt indicates an empty prompt was submitted.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrContentBlocked indicates the model refused the request on safety
	// grounds; never retried.
	ErrContentBlocked = errors.New("content blocked by safety filters")

	// ErrInvalidResponse indicates the model returned an unusable response;
	// never retried.
	ErrInvalidResponse = errors.New("invalid response from model")

	// ErrTransientFailure indicates the API kept failing after all retry
	// attempts.
	ErrTransientFailure = errors.New("transient API failure")
)
