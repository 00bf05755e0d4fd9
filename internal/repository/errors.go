package repository

import "errors"

var (
	ErrHotelNotFound = errors.New("hotel not found")

	ErrRoomNotFound = errors.New("room not found")

	ErrRegistrationNotFound = errors.New("registration not found")

	ErrDuplicateRegistration = errors.New("registration already exists")

	ErrInvalidInventory = errors.New("invalid hotel inventory")

	// ErrStaleState means the stored room or registration no longer matches
	// what the mutation was built from.
	ErrStaleState = errors.New("state changed since it was read")
)
