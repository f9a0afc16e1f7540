package session

import (
	"encoding/json"
	"errors"
)

// ErrCorruptSession is returned when a stored session blob cannot be decoded.
var ErrCorruptSession = errors.New("corrupt session blob")

// Encode serializes a session to its stored JSON document.
func Encode(s *Session) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

// Decode parses a stored session document. Blobs that do not decode to a
// valid session surface [ErrCorruptSession] so callers can distinguish
// corruption from absence.
func Decode(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Join(ErrCorruptSession, err)
	}
	if err := s.Validate(); err != nil {
		return nil, errors.Join(ErrCorruptSession, err)
	}
	return &s, nil
}
