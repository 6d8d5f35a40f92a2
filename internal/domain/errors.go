package domain

import "errors"

var (
	ErrEmptyPlaceID      = errors.New("empty place id")
	ErrAreaNotResolved   = errors.New("area reference cannot be resolved to coordinates")
	ErrNoValidCategories = errors.New("no valid categories after catalog filtering")
	ErrAddressNotFound   = errors.New("no matching addresses found")
	ErrNoPrimaryCategory = errors.New("no primary category could be resolved")
	ErrMissingProviderID = errors.New("record has no provider id")
)
