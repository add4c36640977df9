package domain

// Issue is a single validator finding. Fatal issues land in a record's error
// list and abort ingestion; advisory ones accumulate as warnings.
type Issue struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Issue codes shared across validators.
const (
	CodeMissingField    = "missing_field"
	CodeInvalidFormat   = "invalid_format"
	CodeDuplicateVIN    = "duplicate_vin"
	CodeTooFewImages    = "too_few_images"
	CodeTooLarge        = "too_large"
	CodeTooSmall        = "too_small"
	CodeUnreadable      = "unreadable"
	CodeAspectRatio     = "aspect_ratio"
	CodeFetchTimeout    = "fetch_timeout"
	CodeFetchNotFound   = "fetch_not_found"
	CodeFetchForbidden  = "fetch_forbidden"
	CodeFetchFailed     = "fetch_failed"
	CodePriceOutlier    = "price_outlier"
	CodePriceSuspectLow = "price_suspect_low"
	CodeNoComparables   = "insufficient_comparables"
)

type VINCheck struct {
	Valid          bool    `json:"valid"`
	Normalized     string  `json:"normalized"`
	Duplicate      bool    `json:"duplicate"`
	DuplicateOfVIN string  `json:"duplicate_of_vin,omitempty"`
	Errors         []Issue `json:"errors,omitempty"`
	Warnings       []Issue `json:"warnings,omitempty"`
}

type PriceCheck struct {
	Median   *float64 `json:"median,omitempty"`
	Ratio    *float64 `json:"ratio,omitempty"`
	Outlier  bool     `json:"outlier"`
	Warnings []Issue  `json:"warnings,omitempty"`
}

type ImageCheck struct {
	Valid    bool    `json:"valid"`
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
	Bytes    int     `json:"bytes,omitempty"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}
