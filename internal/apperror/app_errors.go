package apperror

import "errors"

var (
	ErrCorpusUnavailable = errors.New("word corpus is unavailable")
	ErrMalformedRecord   = errors.New("malformed session record")
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionConcluded  = errors.New("session is already concluded")
	ErrUnknownStoreKind  = errors.New("unknown session store kind")
)
