package constants

// ComparisonStatus is the lifecycle state of a comparison batch.
type ComparisonStatus string

// Stable values (persisted as-is).
const (
	StatusProcessing ComparisonStatus = "processing"
	StatusCompleted  ComparisonStatus = "completed"
	StatusFailed     ComparisonStatus = "failed" // every file in the batch failed
)

// Included flag values on a policy section.
const (
	IncludedYes     = "Y"
	IncludedNo      = "N"
	IncludedUnknown = "unknown"
)

// Unknown is the sentinel for fields that could not be extracted.
const Unknown = "unknown"

// Placeholders used on quotes whose file failed to process.
const (
	VendorExtractionFailed = "Extraction failed"
	VendorUnknown          = "Unknown Provider"
	DefaultPaymentTerms    = "Monthly"
)

// Strategy names recorded on quotes.
const (
	StrategyPattern = "pattern"
)
