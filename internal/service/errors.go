package service

import (
	"errors"
	"fmt"
)

// ErrInvalidArguments indicates the request itself is unusable: wrong arity,
// a bad amount or a currency the snapshot does not quote.
var ErrInvalidArguments = errors.New("invalid arguments")

// ErrUnknownCurrency indicates a code that is neither the base currency nor in the snapshot.
var ErrUnknownCurrency = fmt.Errorf("%w: unknown currency", ErrInvalidArguments)

// ErrTransport indicates the remote snapshot could not be fetched.
var ErrTransport = errors.New("transport failure")

// ErrPersistence indicates the cached snapshot could not be checked, read or written.
var ErrPersistence = errors.New("persistence failure")

// ErrMalformedData indicates a snapshot that does not parse into rate records.
var ErrMalformedData = errors.New("malformed rate data")

// ErrZeroRate indicates a resolved currency quoted at zero.
var ErrZeroRate = fmt.Errorf("%w: zero rate", ErrMalformedData)
