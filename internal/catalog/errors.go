package catalog

import "errors"

var (
	ErrInvalidCategoryID = errors.New("Invalid Category ID")
	ErrNotFound          = errors.New("Not Found!")
	ErrCategoryCycle     = errors.New("category parent chain contains a cycle")
)

type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindInvalidInput
	KindNotFound
	KindCycle
	KindInternal
)

// Kind classifies err so transports can pick a response without string matching.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidCategoryID):
		return KindInvalidInput
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrCategoryCycle):
		return KindCycle
	default:
		return KindInternal
	}
}
