package core

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/tcm/internal/store"
)

// Kind classifies an *Error for transports.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindNotFound
	KindDuplicate
	KindInUse
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindNotFound:
		return "not_found"
	case KindDuplicate:
		return "duplicate"
	case KindInUse:
		return "in_use"
	default:
		return "internal"
	}
}

// Error is a business rule violation. Message is written for the end user
// and is shown as-is by the HTTP layer and the CLI.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage lets the importer surface the message in row errors.
func (e *Error) UserMessage() string {
	return e.Message
}

// KindOf returns the Kind of the first *Error in err's chain, or
// KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func invalid(msg string) error {
	return &Error{Kind: KindInvalid, Message: msg}
}

// entity names one resource in the messages produced by storeError.
type entity struct {
	label  string // "Module", "Automation status", ...
	keyTag string // field named in duplicate messages
}

var (
	moduleEntity    = entity{label: "Module", keyTag: "name"}
	subModuleEntity = entity{label: "SubModule", keyTag: "name"}
	priorityEntity  = entity{label: "Priority", keyTag: "name"}
	statusEntity    = entity{label: "Automation status", keyTag: "name"}
	userEntity      = entity{label: "AutomatedBy", keyTag: "name"}
	tagEntity       = entity{label: "Tag", keyTag: "name"}
	testCaseEntity  = entity{label: "TestCase", keyTag: "testcaseId"}
)

// storeError converts the store sentinels into *Error. id is reported for
// missing or referenced rows, key for duplicates. Other errors pass through.
func storeError(err error, e entity, id int64, key string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found with id: %d", e.label, id), Err: err}
	case errors.Is(err, store.ErrDuplicate):
		return &Error{Kind: KindDuplicate, Message: fmt.Sprintf("%s already exists with %s: %s", e.label, e.keyTag, key), Err: err}
	case errors.Is(err, store.ErrInUse):
		return &Error{Kind: KindInUse, Message: fmt.Sprintf("%s with id: %d is in use and cannot be deleted", e.label, id), Err: err}
	}
	return err
}
