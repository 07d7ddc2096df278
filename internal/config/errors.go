package config

import "errors"

var (
	ErrReadingFile   = errors.New("config: failed to read file")
	ErrParsingConfig = errors.New("config: failed to parse")
	ErrInvalidConfig = errors.New("config: invalid value")
)
