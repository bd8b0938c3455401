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

// UserAgent identifies the HTTP client against the Gramps Web server.
var UserAgent = "Gramps-HA/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName        = "Gramps HA"
	AppID          = "com.github.edgarm73.gramps-ha"
	KeyringService = "com.github.edgarm73.gramps-ha"
	LogFileName    = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
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
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagConfig       = "config"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescConfig   = "Path to a YAML settings file (overrides " + EnvConfigFile + ")"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Settings (koanf)
// -----------------------------------------------------------------------------

const (
	// EnvPrefix namespaces environment variables, e.g. GRAMPS_HA_URL.
	EnvPrefix = "GRAMPS_HA_"

	// EnvConfigFile points at an optional YAML settings file.
	EnvConfigFile = "GRAMPS_HA_CONFIG"

	KoanfDelim = "."
)

// SupportedLanguages defines the list of available presentation languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeySensorNext    = "sensor_next_birthday" // Requires Rank
	TKeySensorAll     = "sensor_all_birthdays" // Aggregate sensor display name
	TKeyEvtSummary    = "event_summary"        // Requires Name
	TKeyEvtSummaryAge = "event_summary_age"    // Requires Name, Age
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeWeb   = "web"
	SourceModeLocal = "local"

	DefaultBindAddr     = "127.0.0.1"
	DefaultPort         = "8095"
	DefaultRefreshMin   = 360 // Upstream is polled every 6 hours.
	DefaultLimit        = 50
	DefaultDisplayCount = 5
	DefaultLanguage     = "en"

	// RefIndexUnknown is the sentinel for an absent birth/death reference index.
	RefIndexUnknown = -1

	// MinPlausibleYear rejects dateval fields too small to be a year.
	MinPlausibleYear = 100

	// BirthTypeSubstring identifies birth events by their type label.
	BirthTypeSubstring = "birth"

	// EventTypeBirth is the type label given to synthesized birth events.
	EventTypeBirth = "Birth"

	FallbackName = "Unknown"

	// HandleSeparator splits path-like event references.
	HandleSeparator = "/"

	UIDSalt         = "gramps-ha-v1-" // Salt for deterministic UID generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%d@%s"
)

// -----------------------------------------------------------------------------
// Gramps Web API
// -----------------------------------------------------------------------------

const (
	APITokenPath   = "/api/token/"
	APIPeoplePath  = "/api/people/"
	APIEventsPath  = "/api/events/"
	HeaderAuth     = "Authorization"
	BearerPrefix   = "Bearer "
	TokenFieldName = "access_token"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar
// -----------------------------------------------------------------------------

const (
	ICalVersion   = "2.0"
	ICalProdid    = "-//Gramps HA//Feed//EN"
	ICalCalName   = "Birthdays"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "grampsha"

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

	DefaultICalRefresh = 6 * time.Hour
)

// -----------------------------------------------------------------------------
// vCard Fields (local source mode)
// -----------------------------------------------------------------------------

const (
	VCardBDAY = "BDAY"
	VCardFN   = "FN"
	VCardN    = "N"

	// Date layouts accepted for vCard BDAY fields.
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"

	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"
)

// -----------------------------------------------------------------------------
// Sensor Presentation
// -----------------------------------------------------------------------------

const (
	SensorIDNextFormat = "next_birthday_%d"
	SensorIDAll        = "all_upcoming_birthdays"

	SensorStateUnknown = "unknown"

	// SensorStateFormat renders "Name - DD.MM.YYYY (rank)".
	SensorStateFormat = "%s - %s (%d)"
	SensorDateFormat  = "02.01.2006"

	DateFormatISO = "2006-01-02"

	IconCake     = "mdi:cake-variant"
	IconCalendar = "mdi:calendar-multiple"

	AttrPersonName   = "person_name"
	AttrBirthDate    = "birth_date"
	AttrAge          = "age"
	AttrDaysUntil    = "days_until"
	AttrNextBirthday = "next_birthday"
	AttrBirthdays    = "birthdays"

	FallbackSensorNext = "Next Birthday %d"
	FallbackSensorAll  = "All Upcoming Birthdays"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	AuthTimeout         = 10 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 64 * 1024 * 1024 // 64MB; people payloads stay well below this
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	AddrSeparator       = ":"

	MinPort = 1
	MaxPort = 65535

	RouteSensors  = "/api/sensors"
	RouteCalendar = "/calendar.ics"
	RouteHealth   = "/healthz"
	RouteMetrics  = "/metrics"
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

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrURLEmpty        = "configuration error: gramps web URL is empty"
	ErrLocalPathEmpty  = "configuration error: local path is empty"
	ErrModeUnsupport   = "configuration error: unsupported source mode"
	ErrPortRequired    = "server port is required"
	ErrPortNumber      = "server port must be a number"
	ErrPortRange       = "server port must be between 1 and 65535"
	ErrLimitInvalid    = "result limit must be positive"
	ErrIntervalInvalid = "refresh interval must be positive"
	ErrServerStartup   = "server startup failed"
	ErrServerShutdown  = "server shutdown failed"
	ErrInvalidURL      = "invalid URL structure"
	ErrProtocol        = "unsupported protocol scheme (http/https only)"
	ErrAuthFailed      = "authentication against gramps web failed"
	ErrTokenMissing    = "token response carried no access token"
	ErrPeopleFetch     = "failed to fetch people"
	ErrEventFetch      = "failed to fetch event"
	ErrEventNotFound   = "event not found"
	ErrDecodeBody      = "failed to decode response body"
	ErrUnexpectedCode  = "server returned unexpected status"
	ErrVCardParse      = "failed to parse vCard stream"
	ErrICalEncode      = "failed to encode iCalendar data"
	ErrSensorEncode    = "failed to encode sensor states"
	ErrLogFile         = "failed to open log file"
	ErrCacheDir        = "could not determine user cache dir"
	ErrCreateDir       = "could not create app cache dir"
	ErrAppFailed       = "application failed unexpectedly"
	ErrWriteResp       = "failed to write response body"
	ErrLocalesAccess   = "failed to access embedded locales"
	ErrLocaleLoad      = "failed to load locale file"
	ErrSettingsFile    = "failed to load settings file"
	ErrSettingsEnv     = "failed to load settings from environment"
	ErrSettingsParse   = "failed to unmarshal settings"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "First refresh pending, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgOK           = "ok"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackSummary    = "Birthday: %s"
	FallbackSummaryAge = "Birthday: %s (%d)"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgCycleStarted  = "Refresh cycle started"
	MsgCycleSuccess  = "Refresh cycle completed"
	MsgCycleFailed   = "Refresh cycle failed, publishing empty snapshot"
	MsgWorkerStart   = "Background worker started"
	MsgWorkerStop    = "Worker stopping due to context cancellation"
	MsgAppStop       = "Application stopped gracefully"
	MsgAppStarting   = "Starting application"
	MsgConfigLoaded  = "Configuration loaded"
	MsgServerListen  = "HTTP server listening"
	MsgServerStop    = "Shutting down HTTP server..."
	MsgCacheUpdated  = "Snapshot cache updated"
	MsgSkippedCard   = "Skipping malformed vCard"
	MsgSkippedDate   = "Skipping invalid date format"
	MsgSkippedEvent  = "Skipping unreadable event"
	MsgDeceasedSkip  = "Skipping deceased person"
	MsgPipelineStats = "Birthday pipeline finished"
	MsgAuthOK        = "Authenticated against gramps web"
	MsgLocaleSkip    = "Skipping non-locale file"
	MsgLocaleBadName = "Skipping malformed locale filename"
	MsgLocaleLoaded  = "Locale loaded successfully"
	MsgTransMissing  = "Missing translation key"
	MsgPassKeyring   = "Password retrieval from keyring failed (might be empty)"
	MsgFilterActive  = "Surname filter active"
	MsgLogWarning    = "Warning: %s at %s: %v\n"
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
	LogKeyHandle    = "handle"
	LogKeyName      = "name"
	LogKeyFilter    = "filter"
	LogKeyLimit     = "limit"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyPeople    = "people_listed"
	LogKeyWithBirth = "with_birth_date"
	LogKeyLiving    = "living"
	LogKeyDeceased  = "deceased"
	LogKeyResults   = "results"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyCount     = "count"
	LogKeyDuration  = "duration_ms"

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
	CompEngine = "engine"
	CompClient = "client"
	CompServer = "server"
	CompWorker = "worker"
	CompSensor = "sensor"
	CompFeed   = "feed"
	CompVCF    = "vcf"
	CompMain   = "main"
	CompI18n   = "i18n"
	CompConfig = "config"
)
