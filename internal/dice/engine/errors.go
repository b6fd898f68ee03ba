package engine

import (
	"errors"
	"strconv"

	"github.com/louisbranch/kobold-keeper/internal/dice/analytics"
	"github.com/louisbranch/kobold-keeper/internal/dice/notation"
	"github.com/louisbranch/kobold-keeper/internal/dice/roll"
	apperrors "github.com/louisbranch/kobold-keeper/internal/platform/errors"
	"github.com/louisbranch/kobold-keeper/internal/random"
)

// DomainError classifies err into a coded error whose metadata fills the
// localized message templates. It returns nil for a nil err and passes an
// existing *apperrors.Error through unchanged.
func DomainError(err error) *apperrors.Error {
	if err == nil {
		return nil
	}

	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		return domainErr
	}

	var lexErr *notation.LexError
	if errors.As(err, &lexErr) {
		char := "end of input"
		if lexErr.Char != 0 {
			char = strconv.QuoteRune(lexErr.Char)
		}
		return apperrors.Wrap(apperrors.CodeDiceLex, err, map[string]string{
			"Char":     char,
			"Position": strconv.Itoa(lexErr.Pos),
		})
	}

	var parseErr *notation.ParseError
	if errors.As(err, &parseErr) {
		return apperrors.Wrap(apperrors.CodeDiceParse, err, map[string]string{
			"Position": strconv.Itoa(parseErr.Pos),
			"Expected": parseErr.Expected,
			"Found":    parseErr.Found,
		})
	}

	var resourceErr *notation.ResourceError
	if errors.As(err, &resourceErr) {
		return apperrors.Wrap(apperrors.CodeDiceBounds, err, map[string]string{
			"Reason":   string(resourceErr.Reason),
			"Limit":    strconv.Itoa(resourceErr.Limit),
			"Actual":   strconv.FormatInt(resourceErr.Actual, 10),
			"Position": strconv.Itoa(resourceErr.Pos),
		})
	}

	var divErr *roll.DivisionByZeroError
	if errors.As(err, &divErr) {
		return apperrors.Wrap(apperrors.CodeDiceDivisionByZero, err, map[string]string{
			"Divisor":  divErr.Divisor,
			"Position": strconv.Itoa(divErr.Pos),
		})
	}

	var overflowErr *roll.OverflowError
	if errors.As(err, &overflowErr) {
		return apperrors.Wrap(apperrors.CodeDiceOverflow, err, map[string]string{
			"Operator": overflowErr.Op.String(),
			"Position": strconv.Itoa(overflowErr.Pos),
		})
	}

	var orderErr *analytics.OrderByError
	if errors.As(err, &orderErr) {
		return apperrors.Wrap(apperrors.CodeAnalyticsOrderBy, err, map[string]string{
			"OrderBy": strconv.Quote(orderErr.OrderBy),
		})
	}

	var filterErr *analytics.FilterError
	if errors.As(err, &filterErr) {
		return apperrors.Wrap(apperrors.CodeAnalyticsFilter, err, map[string]string{
			"Filter": strconv.Quote(filterErr.Filter),
		})
	}

	switch {
	case errors.Is(err, random.ErrSeedOutOfRange):
		return apperrors.Wrap(apperrors.CodeSeedOutOfRange, err, nil)
	case errors.Is(err, analytics.ErrEmptyScope):
		return apperrors.Wrap(apperrors.CodeAnalyticsScopeEmpty, err, nil)
	}

	return apperrors.Wrap(apperrors.CodeUnknown, err, nil)
}
