package flowstats

import "github.com/pkg/errors"

var (
	ErrParse            = errors.New("malformed flow monitor report")
	ErrDivision         = errors.New("flow has no transmitted packets")
	ErrEmptySeries      = errors.New("empty series")
	ErrInsufficientData = errors.New("insufficient data for confidence interval")
	ErrKeyParse         = errors.New("identifier does not encode a group key")
)
