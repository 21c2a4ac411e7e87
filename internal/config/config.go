package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Countdown/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Countdown"
	AppID             = "com.github.tartampluch.go-countdown"
	KeyringService    = "com.github.tartampluch.go-countdown"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	SettingsFileName  = "settings.yaml"
	EnvConfigPath     = "GO_COUNTDOWN_CONFIG"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
	ExitCodeUsage   = 2
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for sensitive files like logs.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	// Used for creating secure cache directories.
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion  = "version"
	FlagDebug    = "debug"
	FlagBirthday = "birthday"
	FlagToday    = "today"
	FlagQuiet    = "quiet"
	FlagFile     = "file"
	FlagURL      = "url"
	FlagUser     = "user"
	FlagWithin   = "within"
	FlagServe    = "serve"
	FlagLogin    = "login"
	FlagConfig   = "config"
	FlagLang     = "lang"
	FlagPort     = "port"
	FlagJSON     = "json"
	FlagSort     = "sort"
	FlagReverse  = "reverse"

	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging"
	FlagDescBirthday = "Birthday to count down to (MM-DD, --MM-DD or YYYY-MM-DD)"
	FlagDescToday    = "Reference date (YYYY-MM-DD); defaults to the local current date"
	FlagDescQuiet    = "Print only the number of days"
	FlagDescFile     = "Local vCard file to list birthdays from"
	FlagDescURL      = "CardDAV/WebDAV URL to list birthdays from"
	FlagDescUser     = "HTTP Basic Auth user for --url (password is read from the keyring)"
	FlagDescWithin   = "Only list birthdays occurring within N days (0 lists all)"
	FlagDescServe    = "Run the HTTP server and the periodic sync until interrupted"
	FlagDescLogin    = "Prompt for the password of --user and store it in the keyring"
	FlagDescConfig   = "Path to the YAML settings file (or $" + EnvConfigPath + ")"
	FlagDescLang     = "Output language (ISO 639-1)"
	FlagDescPort     = "Server port for --serve"
	FlagDescJSON     = "Output as JSON"
	FlagDescSort     = "List order: days, name or age"
	FlagDescReverse  = "Reverse the list order"

	MsgVersionOutput = "%s version %s (commit %s, built %s, %s/%s)\n"
	MsgUsageHeader   = "Usage: go-countdown [flags]\n\n"
	MsgPasswordLabel = "Password: "
	MsgPasswordSaved = "Password stored in the system keyring."
	FormatListRow    = "%s\t%s\t%d\t%s\n"
)

// -----------------------------------------------------------------------------
// Settings (YAML) Defaults & Validation
// -----------------------------------------------------------------------------

const (
	SourceModeWeb        = "web"
	SourceModeLocal      = "local"
	DefaultPort          = "18080"
	DefaultRefreshMin    = 60
	DefaultLanguage      = "en"
	DefaultLeapYear      = 2000 // Leap year reference for birthdays without a year (--02-29)
	DefaultReminderValue = 1
	DefaultUpcomingDays  = 30
	UIDSalt              = "go-countdown-v1-" // Salt for deterministic UID generation
	DisabledInterval     = 0

	SortKeyDays = "days"
	SortKeyName = "name"
	SortKeyAge  = "age"
)

// SupportedLanguages defines the list of available languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// ISO8601 Duration Components for Reminders
const (
	ISOPeriodPrefix   = "P"
	ISONegativePrefix = "-P"
	ISOTime           = "T" // Hours and minutes follow the time designator (RFC 5545 dur-time)
	ISODay            = "D"
	ISOHour           = "H"
	ISOMinute         = "M"
)

// Reminder Units & Directions
const (
	UnitDays    = "d"
	UnitHours   = "h"
	UnitMinutes = "m"
	DirBefore   = "before"
	DirAfter    = "after"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyCountdown       = "countdown"         // Requires Name, Count
	TKeyCountdownToday  = "countdown_today"   // Requires Name
	TKeyCountdownAnon   = "countdown_anon"    // Requires Count
	TKeyCountdownAnonT  = "countdown_anon_today"
	TKeyEvtSummary      = "event_summary"       // Requires Name
	TKeyEvtSummaryAge   = "event_summary_age"   // Requires Name, Age
	TKeyEvtSummaryBirth = "event_summary_birth" // Requires Name (For age 0)
	TKeyColName         = "col_name"
	TKeyColDate         = "col_date"
	TKeyColDays         = "col_days"
	TKeyColAge          = "col_age"
	TKeyFormatDate      = "format_date_short" // Date format pattern (e.g., "2006-01-02")
	TKeyAgeBirth        = "age_birth"
	TKeyListEmpty       = "list_empty"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Countdown//Engine//EN"
	ICalCalName   = "Birthdays"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "gocountdown"

	// iCal/vCard Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"
	VCardN    = "N"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts used for parsing birthdays and reference dates
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"
	DateFormatMonthDay  = "01-02"
	DateFormatDisplay   = "2006-01-02"
	AgeUnknown          = "-"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%d@%s"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 256 * 1024 * 1024 // 256MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	AddrSeparator       = ":"

	RouteRoot      = "/"
	RouteCountdown = "/countdown"
	RouteUpcoming  = "/upcoming"

	QueryBirthday = "birthday"
	QueryToday    = "today"
	QueryWithin   = "within"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"
	HeaderAccept          = "Accept"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeNoSniff         = "nosniff"
	MimeVCardAccept     = "text/vcard, text/x-vcard;q=0.9, */*;q=0.1"
	CacheControlPrivate = "private, no-cache"
	CacheControlNoStore = "no-store"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty   = "configuration error: local path is empty"
	ErrWebURLEmpty      = "configuration error: web URL is empty"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrFetchRequest     = "failed to build contact book request"
	ErrFetchNetwork     = "network error while fetching contact book"
	ErrFetchStatus      = "contact book server answered"
	ErrFetchTooLarge    = "contact book exceeds size limit"
	ErrModeUnsupport    = "configuration error: unsupported source mode"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrPortNumber       = "server port must be a number"
	ErrPortRange        = "server port must be between 1 and 65535"
	ErrIntervalNegative = "refresh interval must not be negative"
	ErrReminderUnit     = "unsupported reminder unit"
	ErrReminderDir      = "unsupported reminder direction"
	ErrReminderValue    = "reminder value must be positive"
	ErrLanguage         = "unsupported language"
	ErrSettingsRead     = "failed to read settings file"
	ErrSettingsParse    = "failed to parse settings file"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrVCardParse       = "failed to parse vCard stream"
	ErrVCardRead        = "failed to read vCard stream"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrDateParse        = "unable to parse date"
	ErrInvalidBirthday  = "invalid birthday"
	ErrInvalidDate      = "invalid reference date"
	ErrInvalidWithin    = "within must be a non-negative number of days"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrConfigDir        = "could not determine user config dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrLocNotInit       = "localizer not initialized"
	ErrKeyringGet       = "failed to read password from keyring"
	ErrKeyringSet       = "failed to store password in keyring"
	ErrPasswordNotFound = "no password stored for user"
	ErrPasswordEmpty    = "password must not be empty"
	ErrNoTerminal       = "no terminal available for interactive password prompt"
	ErrPasswordRead     = "failed to read password"
	ErrUserRequired     = "--user is required"
	ErrNothingToDo      = "one of --birthday, --file, --url, --serve or --login is required"
	ErrUnexpectedArg    = "unexpected argument"
	ErrSyncFailed       = "synchronization failed"
	ErrSortKey          = "unsupported sort key"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgMissingBday  = "missing birthday query parameter"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackSummary        = "Birthday: %s"
	FallbackSummaryAge     = "Birthday: %s (%d)"
	FallbackSummaryBirth   = "Birthday: %s (birth)"
	FallbackCountdown      = "%d days until %s's birthday"
	FallbackCountdownToday = "Today is %s's birthday!"
	FallbackCountdownAnon  = "%d days until the birthday"
	FallbackCountdownAnonT = "The birthday is today!"
	FallbackName           = "Unknown"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgSyncStarted   = "Synchronization started..."
	MsgSyncFailed    = "Synchronization failed. Check logs."
	MsgSyncFinished  = "Sync finished"
	MsgWorkerStart   = "Background worker started"
	MsgWorkerStop    = "Worker stopping due to context cancellation"
	MsgWorkerOnce    = "Periodic refresh disabled, waiting for manual refresh"
	MsgWorkerRefresh = "Manual refresh requested"
	MsgSyncDone      = "Snapshot published"
	MsgAppStop       = "Application stopped gracefully"
	MsgSkippedCard   = "Skipping malformed vCard"
	MsgFetchStart    = "Downloading contact book"
	MsgFetchStatus   = "Contact book server returned an error status"
	MsgFetchStream   = "Contact book download started"
	MsgSkippedDate   = "Skipping invalid date format"
	MsgGenSuccess    = "Calendar generation successful"
	MsgAppStarting   = "Starting application"
	MsgServerListen  = "HTTP server listening"
	MsgServerStop    = "Shutting down HTTP server..."
	MsgCacheUpdated  = "Calendar cache updated"
	MsgLocaleSkip    = "Skipping non-locale file"
	MsgLocaleBadName = "Skipping malformed locale filename"
	MsgLocaleLoaded  = "Locale loaded successfully"
	MsgTransMissing  = "Missing translation key"
	MsgPassFail      = "Password retrieval failed (might be empty)"
	MsgLogWarning    = "Warning: %s at %s: %v\n"
	MsgBdayToday     = "Birthday found today"
	MsgCountdown     = "Countdown computed"
	MsgSettings      = "Settings loaded"
	MsgBadRequest    = "Rejected countdown request"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyInterval  = "interval"
	LogKeyUser      = "user"
	LogKeyTotal     = "total_cards"
	LogKeyFound     = "birthdays_found"
	LogKeyToday     = "birthdays_today"
	LogKeySizeBytes = "size_bytes"
	LogKeyLength    = "content_length"
	LogKeyAuth      = "basic_auth"
	LogKeyETag      = "etag"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyDOB       = "date_of_birth"
	LogKeyDuration  = "duration_ms"
	LogKeyBirthday  = "birthday"
	LogKeyRefDate   = "today"
	LogKeyNext      = "next"
	LogKeyDays      = "days"
	LogKeyPath      = "path"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompEngine    = "engine"
	CompServer    = "server"
	CompFetcher   = "fetcher"
	CompWorker    = "worker"
	CompMain      = "main"
	CompI18n      = "i18n"
	CompSecret    = "secret"
	CompSettings  = "settings"
	CompCountdown = "countdown"
)
