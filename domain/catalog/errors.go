package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedPointer   = errors.New("malformed metadata pointer")
	ErrEmptyTokenURI      = errors.New("empty token uri")
	ErrIdentifierOverflow = errors.New("identifier does not fit in 64 bits")
	ErrInvalidMetadata    = errors.New("metadata is not a json object")
	ErrInvalidTab         = errors.New("invalid tab")
)

// Stream names one of the three event logs
type Stream string

const (
	StreamListingCreated Stream = "listing-created"
	StreamMintStarted    Stream = "mint-started"
	StreamPurchase       Stream = "purchase"
)

// Stage of the per record resolution
type Stage string

const (
	StageTokenURI    Stage = "tokenURI"
	StageContentHash Stage = "contentHash"
	StageMetadata    Stage = "metadata"
)

// ResolutionError is a failed token uri read or metadata fetch for a single record
type ResolutionError struct {
	Stream Stream
	Index  int
	Stage  Stage
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s record #%d at %s: %v", e.Stream, e.Index, e.Stage, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// MalformedEventError is a record missing or carrying an unusable field
type MalformedEventError struct {
	Stream Stream
	Index  int
	Field  string
	Err    error
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("malformed %s record #%d field %s: %v", e.Stream, e.Index, e.Field, e.Err)
}

func (e *MalformedEventError) Unwrap() error {
	return e.Err
}
