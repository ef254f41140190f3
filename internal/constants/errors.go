package constants

import "errors"

// Configuration errors.
var (
	ErrNoProfilesConfigured = errors.New("no servers configured, use 'psctl config add' to add one")
	ErrProfileNotFound      = errors.New("server profile not found")
	ErrNoCurrentProfile     = errors.New("no current server, use 'psctl config use' to select one")
	ErrInvalidConfigKey     = errors.New("unknown configuration key")
)

// Command errors.
var (
	ErrMemberRequired  = errors.New("--member flag or configured username is required")
	ErrGroupRequired   = errors.New("--group flag or configured group is required")
	ErrUnknownFormat   = errors.New("unknown output format")
	ErrDocumentInvalid = errors.New("document is not valid PSML")
)
