package domain

import (
	"strings"
	"unicode"

	"github.com/google/uuid"

	dErrors "voterdata/pkg/domain-errors"
)

// RecordID is the internal identifier of a stored voter record.
type RecordID uuid.UUID

// NewRecordID returns a fresh random RecordID.
func NewRecordID() RecordID {
	return RecordID(uuid.New())
}

// ParseRecordID constructs a RecordID from external input.
//
// Errors: returns CodeInvalidInput when the value is empty, malformed or the nil UUID.
func ParseRecordID(s string) (RecordID, error) {
	if s == "" {
		return RecordID{}, dErrors.New(dErrors.CodeInvalidInput, "record id cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return RecordID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid record id")
	}
	if parsed == uuid.Nil {
		return RecordID{}, dErrors.New(dErrors.CodeInvalidInput, "record id cannot be nil")
	}
	return RecordID(parsed), nil
}

func (id RecordID) String() string {
	return uuid.UUID(id).String()
}

func (id RecordID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

func (id RecordID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText decodes stored snapshots; unlike ParseRecordID it accepts
// the nil UUID.
func (id *RecordID) UnmarshalText(b []byte) error {
	parsed, err := uuid.ParseBytes(b)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid record id")
	}
	*id = RecordID(parsed)
	return nil
}

// MaxEPICLength bounds identifiers accepted at trust boundaries.
const MaxEPICLength = 32

// EPICNumber is the natural key of a voter record.
// Invariant: non-empty after trimming, at most MaxEPICLength runes, no
// whitespace, control characters or path separators.
type EPICNumber string

// ParseEPICNumber trims and validates an identifier from external input.
//
// Errors: returns CodeInvalidInput; no other errors are expected.
func ParseEPICNumber(s string) (EPICNumber, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "epic number cannot be empty")
	}
	if len([]rune(trimmed)) > MaxEPICLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "epic number too long")
	}
	for _, r := range trimmed {
		if unicode.IsSpace(r) || unicode.IsControl(r) || r == '/' || r == '\\' || unicode.Is(unicode.Cf, r) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "epic number contains invalid characters")
		}
	}
	return EPICNumber(trimmed), nil
}

func (e EPICNumber) String() string {
	return string(e)
}

// CacheKey is the accelerator cache key for this identifier.
func (e EPICNumber) CacheKey() string {
	return "voter:" + string(e)
}
