package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown             = "UNKNOWN"
	CodeDiceLex             = "DICE_LEX"
	CodeDiceParse           = "DICE_PARSE"
	CodeDiceBounds          = "DICE_RESOURCE"
	CodeDiceDivisionByZero  = "DICE_DIVISION_BY_ZERO"
	CodeDiceOverflow        = "DICE_OVERFLOW"
	CodeSeedOutOfRange      = "SEED_OUT_OF_RANGE"
	CodeAnalyticsScopeEmpty = "ANALYTICS_SCOPE_EMPTY"
	CodeAnalyticsOrderBy    = "ANALYTICS_INVALID_ORDER_BY"
	CodeAnalyticsFilter     = "ANALYTICS_INVALID_FILTER"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		CodeUnknown: "Something went wrong rolling the dice",

		// Notation errors
		CodeDiceLex:    "Unexpected character {{.Char}} at position {{.Position}}",
		CodeDiceParse:  "Invalid dice expression at position {{.Position}}: expected {{.Expected}}, found {{.Found}}",
		CodeDiceBounds: "Dice expression exceeds the {{.Reason}} limit of {{.Limit}} (got {{.Actual}})",

		// Evaluation errors
		CodeDiceDivisionByZero: "Division by zero: {{.Divisor}} rolled 0",
		CodeDiceOverflow:       "Roll total is too large to compute at position {{.Position}}",

		// Seed errors
		CodeSeedOutOfRange: "Seed must be a whole number between -9223372036854775808 and 9223372036854775807",

		// Analytics errors
		CodeAnalyticsScopeEmpty: "A character, group or user is required to record statistics",
		CodeAnalyticsOrderBy:    "Cannot sort statistics by {{.OrderBy}}",
		CodeAnalyticsFilter:     "Cannot filter statistics with {{.Filter}}",
	},
}
