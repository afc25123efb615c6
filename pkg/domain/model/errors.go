package model

import "github.com/m-mizutani/goerr/v2"

var (
	ErrEmptyDecklist = goerr.New("decklist is required")
)
