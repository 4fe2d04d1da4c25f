// Package errors provides structured, machine-readable domain errors.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Grant validation errors
	CodeBlocked               Code = "BLOCKED"
	CodeInvalidTier           Code = "INVALID_TIER"
	CodeInsufficientPrimary   Code = "INSUFFICIENT_PRIMARY"
	CodeInsufficientSecondary Code = "INSUFFICIENT_SECONDARY"
	CodeNoSpace               Code = "NO_SPACE"

	// Grant transaction errors
	CodeSecondaryDeductFailed Code = "SECONDARY_DEDUCT_FAILED"
	CodeCreationFailed        Code = "CREATION_FAILED"

	// Infrastructure errors
	CodeStoreUnavailable     Code = "STORE_UNAVAILABLE"
	CodeProviderIncompatible Code = "PROVIDER_INCOMPATIBLE"
)
