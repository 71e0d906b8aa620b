package master

import "errors"

var (
	ErrUnknownCatalogue = errors.New("unknown catalogue")
	ErrItemNotFound     = errors.New("catalogue item not found")
	ErrItemNameExists   = errors.New("an item with this name already exists")
)
