package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for a single HTTP attempt.
	DefaultHTTPTimeout = 30 * time.Second

	// UploadHTTPTimeout is used for uploads and downloads.
	UploadHTTPTimeout = 5 * time.Minute

	// DefaultRenewTimeout bounds one credential exchange.
	DefaultRenewTimeout = 30 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default number of retries after the first attempt.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait between retries.
	DefaultRetryWaitMax = 30 * time.Second
)

// Token handling.
const (
	// TokenExpirationBuffer is subtracted from a token's expiry.
	TokenExpirationBuffer = 30 * time.Second
)

// Thread polling.
const (
	// DefaultThreadPollInterval is the first wait between progress checks.
	DefaultThreadPollInterval = 1 * time.Second

	// MaxThreadPollInterval caps the wait between progress checks.
	MaxThreadPollInterval = 10 * time.Second

	// DefaultThreadWaitTimeout bounds how long Wait polls a thread.
	DefaultThreadWaitTimeout = 10 * time.Minute
)

// Pagination.
const (
	// DefaultPageSize is the number of search results requested per page.
	DefaultPageSize = 100

	// MaxSearchPages bounds how many pages a search walk fetches.
	MaxSearchPages = 1000
)

// Output formats.
const (
	// FormatTable is the default tabular output format.
	FormatTable = "table"

	// FormatJSON is the JSON output format.
	FormatJSON = "json"

	// FormatYAML is the YAML output format.
	FormatYAML = "yaml"

	// FormatXML is the PSML/XML output format.
	FormatXML = "xml"
)

// Display.
const (
	// NotAvailable is shown for missing values.
	NotAvailable = "N/A"

	// MaskedSecret replaces secrets in output.
	MaskedSecret = "***"

	// DescriptionDisplayLength truncates descriptions in tables.
	DescriptionDisplayLength = 60

	// JSONIndentSize is the indent for JSON output.
	JSONIndentSize = 2
)
