// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Notation errors
	CodeDiceLex    Code = "DICE_LEX"
	CodeDiceParse  Code = "DICE_PARSE"
	CodeDiceBounds Code = "DICE_RESOURCE"

	// Evaluation errors
	CodeDiceDivisionByZero Code = "DICE_DIVISION_BY_ZERO"
	CodeDiceOverflow       Code = "DICE_OVERFLOW"

	// Random/seed errors
	CodeSeedOutOfRange Code = "SEED_OUT_OF_RANGE"

	// Analytics errors
	CodeAnalyticsScopeEmpty Code = "ANALYTICS_SCOPE_EMPTY"
	CodeAnalyticsOrderBy    Code = "ANALYTICS_INVALID_ORDER_BY"
	CodeAnalyticsFilter     Code = "ANALYTICS_INVALID_FILTER"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - the notation or request itself is wrong
	case CodeDiceLex,
		CodeDiceParse,
		CodeSeedOutOfRange,
		CodeAnalyticsScopeEmpty,
		CodeAnalyticsOrderBy,
		CodeAnalyticsFilter:
		return codes.InvalidArgument

	// ResourceExhausted - the expression asks for more than the limits allow
	case CodeDiceBounds:
		return codes.ResourceExhausted

	// FailedPrecondition - the expression is valid but this roll cannot be totalled
	case CodeDiceDivisionByZero,
		CodeDiceOverflow:
		return codes.FailedPrecondition

	default:
		return codes.Internal
	}
}
