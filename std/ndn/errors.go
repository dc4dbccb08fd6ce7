package ndn

import (
	"errors"
	"fmt"
)

type ErrInvalidValue struct {
	Item  string
	Value any
}

// Returns an error message indicating an invalid value for a specific item, including the item name and invalid value in the formatted string.
func (e ErrInvalidValue) Error() string {
	return fmt.Sprintf("invalid value for %s: %v", e.Item, e.Value)
}

type ErrNotSupported struct {
	Item string
}

// Returns an error string indicating that the specified field (e.Item) is not supported, formatted as "not supported field: {Item}".
func (e ErrNotSupported) Error() string {
	return fmt.Sprintf("not supported field: %s", e.Item)
}

var ErrCancelled = errors.New("operation cancelled")
var ErrNetwork = errors.New("network error")
var ErrProtocol = errors.New("protocol error")
var ErrSecurity = errors.New("security error")

// ErrFailedToEncode is returned when encoding fails but the input arguments are valid.
var ErrFailedToEncode = errors.New("failed to encode an NDN packet")

// ErrWrongType is returned when the type of the packet to parse is not expected.
var ErrWrongType = errors.New("packet to parse is not of desired type")

// ErrMultipleHandlers is returned when multiple handlers are attached to the same prefix.
var ErrMultipleHandlers = errors.New("multiple handlers attached to the same prefix")

// ErrDeadlineExceed is returned when the deadline of the Interest passed.
var ErrDeadlineExceed = errors.New("interest deadline exceeded")

// ErrFaceDown is returned when the face is closed.
var ErrFaceDown = errors.New("face is down. Unable to send packet")

// ErrNoPubKey is returned when the public key does not exist.
var ErrNoPubKey = errors.New("public key does not exist")

// PacketType names a kind of NDN packet, used by OversizedPacketError.
type PacketType string

const (
	PacketTypeInterest PacketType = "Interest"
	PacketTypeData     PacketType = "Data"
	PacketTypeNack     PacketType = "Nack"
)

// OversizedPacketError describes an encoded wire that exceeds a maximum
// packet size. No function in this module returns it: outgoing Interests,
// Data and Nacks are sent without a size check.
type OversizedPacketError struct {
	PktType  PacketType
	Name     string
	WireSize int
}

func (e *OversizedPacketError) Error() string {
	return fmt.Sprintf("oversized %s packet %s: %d bytes", e.PktType, e.Name, e.WireSize)
}

// ConfigError is raised synchronously by Face construction when the
// transport URI is unrecognised/unsupported or the config file is
// unparseable.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s", e.Reason)
}

// CommandErrorCode is the numeric status returned by forwarder management
// command responses, per the NFD management protocol.
type CommandErrorCode uint64

const (
	CommandErrorOK               CommandErrorCode = 200
	CommandErrorMalformedCommand CommandErrorCode = 400
	CommandErrorUnsupported      CommandErrorCode = 401
	CommandErrorUnauthorized     CommandErrorCode = 403
	CommandErrorNotFound         CommandErrorCode = 404
	CommandErrorConflict         CommandErrorCode = 409
	CommandErrorInternal         CommandErrorCode = 500
)

// CommandError pairs a forwarder-management status code with its text. No
// function in this module returns it: the controller reports a failed
// command through its failure callback, and Engine.ExecMgmtCmd returns a
// plain formatted error.
type CommandError struct {
	Code CommandErrorCode
	Text string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command failed (%d): %s", e.Code, e.Text)
}

// FetchErrorCode enumerates the ways a segment fetch can abort.
type FetchErrorCode int

const (
	FetchErrorInterestTimeout        FetchErrorCode = 1
	FetchErrorDataHasNoSegment       FetchErrorCode = 2
	FetchErrorSegmentValidationFail  FetchErrorCode = 3
	FetchErrorNack                   FetchErrorCode = 4
	FetchErrorFinalBlockIdNotSegment FetchErrorCode = 5
)

// FetchError pairs a FetchErrorCode with a message. The segment fetcher
// does not return it; it reports an abort by calling Options.OnError with
// the code and message.
type FetchError struct {
	Code    FetchErrorCode
	Message string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed (%d): %s", e.Code, e.Message)
}

// AlreadyLinkedError reports that a dummy transport is already linked to a
// peer. No function in this module returns it: DummyFace has no way to be
// linked to another face.
type AlreadyLinkedError struct{}

func (e *AlreadyLinkedError) Error() string {
	return "dummy face is already linked"
}
