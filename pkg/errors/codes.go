package errors

// ErrorCode is a stable, typed identifier for a failure category.  Codes are
// grouped by domain prefix so that log queries and API clients can match on
// whole families (e.g. "INT_*" for interest-calculation failures).
type ErrorCode string

// ─────────────────────────────────────────────────────────────────────────────
// Common codes
// ─────────────────────────────────────────────────────────────────────────────

const (
	CodeOK       ErrorCode = "OK"
	CodeUnknown  ErrorCode = "COMMON_000"
	CodeInternal ErrorCode = "COMMON_001"
	CodeNotFound ErrorCode = "COMMON_002"
	CodeConflict ErrorCode = "COMMON_003"

	// CodeValidation marks a missing or malformed required field.  Recoverable:
	// the caller must supply the data and retry.
	CodeValidation ErrorCode = "COMMON_010"
)

// ─────────────────────────────────────────────────────────────────────────────
// Domain codes
// ─────────────────────────────────────────────────────────────────────────────

const (
	// CodeIndeterminateBasis marks an interest calculation whose legal basis
	// cannot be determined because one or both party types are unset.  The
	// calculator never guesses a statutory regime; the user must resolve the
	// party types.
	CodeIndeterminateBasis ErrorCode = "INT_001"

	// CodeIncompleteData marks a document generation aborted because required
	// claim fields are missing.  The error's Fields list names them.
	CodeIncompleteData ErrorCode = "DOC_001"

	// CodeGenerationInFlight marks a rejected concurrent generation attempt
	// for the same claim and document type.
	CodeGenerationInFlight ErrorCode = "DOC_002"

	// CodeTemplateMismatch marks an official form template that is absent or
	// structurally different from the pinned expectation.  Fatal for the
	// operation; not retryable until the asset is fixed.
	CodeTemplateMismatch ErrorCode = "FORM_001"
)

// ─────────────────────────────────────────────────────────────────────────────
// Infrastructure codes
// ─────────────────────────────────────────────────────────────────────────────

const (
	CodeDatabase  ErrorCode = "INFRA_001"
	CodeCache     ErrorCode = "INFRA_002"
	CodeMessaging ErrorCode = "INFRA_003"
	CodeStorage   ErrorCode = "INFRA_004"
)

// String returns the code's stable identifier.
func (c ErrorCode) String() string { return string(c) }

// Retryable reports whether an operation failing with this code may succeed
// on retry once the caller has corrected its input.  Template mismatches and
// internal failures are not retryable without external intervention.
func (c ErrorCode) Retryable() bool {
	switch c {
	case CodeValidation, CodeIndeterminateBasis, CodeIncompleteData, CodeGenerationInFlight:
		return true
	}
	return false
}
