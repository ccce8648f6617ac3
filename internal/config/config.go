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

// UserAgent identifies the HTTP client used for remote health maps.
var UserAgent = "Go-Pantry/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName        = "Go Pantry"
	AppID          = "com.github.tartampluch.go-pantry"
	KeyringService = "com.github.tartampluch.go-pantry"
	LogFileName    = "app.log"
	EnvPrefix      = "PANTRY"
	EnvFile        = ".env"
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
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion       = "version"
	FlagDebug         = "debug"
	FlagConfig        = "config"
	FlagStorePassword = "store-password"
	FlagDescVersion   = "Show application version and exit"
	FlagDescDebug     = "Enable debug logging to stdout"
	FlagDescConfig    = "Path to an optional YAML settings file"
	FlagDescStorePass = "Read the health source password from stdin, save it in the system keyring and exit"
	MsgVersionOutput  = "%s version %s (%s/%s)\n"
	MsgPasswordStored = "Password stored in the system keyring for %s\n"
)

// -----------------------------------------------------------------------------
// Business Rules
// -----------------------------------------------------------------------------

const (
	// RestockThreshold is the fraction of shelf life after which a restock is suggested.
	RestockThreshold = 0.8

	// CriticalWindowDays is the largest number of days left that still raises a Critical alert.
	CriticalWindowDays = 2

	// FuzzyMatchThreshold must be strictly exceeded by the similarity ratio.
	FuzzyMatchThreshold = 0.80

	// DefaultCategory and DefaultShelfLifeDays are the values the client sends
	// when the user did not pick anything. They are replaced from history.
	DefaultCategory      = "General"
	DefaultShelfLifeDays = 7
)

// Urgency tiers and alert statuses as they appear in JSON.
const (
	UrgencyMedium  = "Medium"
	UrgencyHigh    = "High"
	StatusCritical = "Critical"
	StatusExpired  = "Expired"

	APIStatusSuggestion = "suggestion"
	APIStatusSuccess    = "success"
)

// -----------------------------------------------------------------------------
// Settings Keys & Defaults
// -----------------------------------------------------------------------------

const (
	KeyServerAddr      = "server.addr"
	KeyServerPort      = "server.port"
	KeyStorageDriver   = "storage.driver"
	KeyStoragePath     = "storage.path"
	KeyRefreshInterval = "refresh_interval"
	KeyLanguage        = "language"
	KeyReminderTrigger = "reminder_trigger"
	KeyHealthURL       = "health_source.url"
	KeyHealthUser      = "health_source.user"
	KeyHealthPass      = "health_source.password"

	StorageDriverJSON   = "json"
	StorageDriverBadger = "badger"

	DefaultBindAddr        = "127.0.0.1"
	DefaultPort            = 18081
	DefaultStorageDriver   = StorageDriverJSON
	DefaultJSONPath        = "db.json"
	DefaultBadgerPath      = "data"
	DefaultRefreshInterval = 30 * time.Minute
	DefaultLanguage        = "en"
	DefaultReminderTrigger = "-P1D"
	BadgerGCInterval       = 10 * time.Minute
	BadgerGCDiscardRatio   = 0.5
)

// SupportedLanguages defines the list of available languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyReasonMedium   = "reason_medium"   // Requires Days, ShelfLife
	TKeyReasonHigh     = "reason_high"     // Requires Days, ShelfLife
	TKeyHealthPrompt   = "health_prompt"   // Requires Name, Alternative
	TKeyItemSaved      = "item_saved"      // Requires Name, Category
	TKeyExpirySummary  = "expiry_summary"  // Requires Name
	TKeyExpiryAlarm    = "expiry_alarm"    // Requires Name
	TKeyNoAlternative  = "no_alternative"  // Requires Name
	TKeyCalendarName   = "calendar_name"
	TKeyErrNameMissing = "err_name_required"
	TKeyErrShelfLife   = "err_shelf_life"
	TKeyErrDate        = "err_last_bought"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar
// -----------------------------------------------------------------------------

const (
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Pantry//Engine//EN"
	ICalCalName   = "Pantry Expiry"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "gopantry"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropCategories  = "CATEGORIES"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats & Limits
// -----------------------------------------------------------------------------

const (
	// DateLayout is the ISO 8601 calendar date used for last_bought.
	DateLayout = "2006-01-02"

	// Limits
	MinPort          = 1
	MaxPort          = 65535
	MaxRequestBytes  = 1 << 20
	MaxNameLength    = 200
	MinRefreshPeriod = time.Minute

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s@%s"
	UIDSalt         = "go-pantry-v1-"

	// BadgerDocumentKey is the single key holding the pantry document.
	BadgerDocumentKey = "pantry:document"
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
	MaxHTTPResponseSize = 8 * 1024 * 1024 // 8MB, a health map is tiny
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	AddrSeparator       = ":"
)

// -----------------------------------------------------------------------------
// HTTP Routes, Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	RouteInventory   = "GET /api/inventory"
	RoutePredictions = "GET /api/predictions"
	RouteAlerts      = "GET /api/alerts"
	RouteHealthAlt   = "GET /api/health-alternative"
	RouteAddItem     = "POST /api/add-item"
	RouteForceAdd    = "POST /api/force-add-item"
	RouteCalendar    = "/calendar.ics"

	QueryName = "name"
	QueryLang = "lang"

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
	HeaderRequestID       = "X-Request-ID"
	HeaderAcceptLanguage  = "Accept-Language"
	HeaderAccept          = "Accept"

	MimeJSON            = "application/json; charset=utf-8"
	MimeAcceptJSON      = "application/json"
	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrServerStartup   = "server startup failed"
	ErrServerShutdown  = "server shutdown failed"
	ErrPortRange       = "server port must be between 1 and 65535"
	ErrStorageDriver   = "unsupported storage driver"
	ErrStoragePath     = "storage path is required"
	ErrRefreshInterval = "refresh interval must be at least one minute"
	ErrLanguage        = "unsupported language"
	ErrSettingsRead    = "failed to read settings file"
	ErrSettingsDecode  = "failed to decode settings"
	ErrInvalidURL      = "invalid URL structure"
	ErrProtocol        = "unsupported protocol scheme (http/https only)"
	ErrFetcherMissing  = "internal error: network fetcher is not initialized"
	ErrHealthDecode    = "failed to decode health map"
	ErrHealthFetch     = "failed to fetch remote health map"
	ErrICalEncode      = "failed to encode iCalendar data"
	ErrDateParse       = "unable to parse date"
	ErrStoreOpen       = "failed to open store"
	ErrStoreClose      = "failed to close store"
	ErrStoreLoad       = "failed to load pantry document"
	ErrStoreSave       = "failed to save pantry document"
	ErrStoreDecode     = "failed to decode pantry document"
	ErrStoreEncode     = "failed to encode pantry document"
	ErrLogFile         = "failed to open log file"
	ErrCacheDir        = "could not determine user cache dir"
	ErrCreateDir       = "could not create app cache dir"
	ErrAppFailed       = "application failed unexpectedly"
	ErrWriteResp       = "failed to write response body"
	ErrLocalesAccess   = "failed to access embedded locales"
	ErrLocaleLoad      = "failed to load locale file"
	ErrRequestDecode   = "request body is not a valid item"
	ErrNameRequired    = "name is required"
	ErrNameTooLong     = "name is too long"
	ErrShelfLife       = "shelf_life_days must be positive"
	ErrLastBought      = "last_bought must be a YYYY-MM-DD date"
	ErrQueryName       = "query parameter 'name' is required"
	ErrHealthUser      = "health_source.user is required to store a password"
	ErrKeyringSave     = "failed to save password to keyring"
	ErrPasswordRead    = "failed to read password from stdin"
	ErrRequestBuild    = "failed to create request"
	ErrNetwork         = "network error during fetch"
	ErrHTTPStatus      = "server returned unexpected status"
	ErrAbsPath         = "failed to get absolute path"
	ErrBadgerOpen      = "failed to open BadgerDB"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgInternalErr  = "Internal Server Error"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackReason        = "Bought %d days ago (Shelf life: %d days) - Urgency: %s"
	FallbackHealthPrompt  = "Wait! '%s' might be unhealthy. Try '%s' instead?"
	FallbackSaved         = "%s saved under %s."
	FallbackExpirySummary = "Expires: %s"
	FallbackExpiryAlarm   = "%s expires soon"
	FallbackNoAlternative = "No healthier alternative found for '%s'."

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgRefreshStarted = "Pantry refresh started"
	MsgRefreshDone    = "Pantry refresh finished"
	MsgRefreshFailed  = "Pantry refresh failed"
	MsgWorkerStart    = "Background worker started"
	MsgWorkerStop     = "Worker stopping due to context cancellation"
	MsgAppStop        = "Application stopped gracefully"
	MsgAppStarting    = "Starting application"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgCacheUpdated   = "Calendar cache updated"
	MsgSkippedDate    = "Skipping item with invalid last_bought"
	MsgCalendarBuilt  = "Expiry calendar generated"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleBadName  = "Skipping malformed locale filename"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgPassFail       = "Password retrieval failed (might be empty)"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
	MsgEnvFileMissing = "No .env file loaded"
	MsgSettingsLoaded = "Settings loaded"
	MsgHealthMerged   = "Remote health map merged"
	MsgHealthSkipped  = "Remote health map unavailable, keeping the local map"
	MsgStoreOpened    = "Store opened"
	MsgBadgerGC       = "BadgerDB GC error"
	MsgBadgerGCStart  = "Started BadgerDB GC routine"
	MsgRequest        = "HTTP request"
	MsgItemSaved      = "Inventory item saved"
	MsgItemSuggested  = "Healthier alternative suggested"
	MsgAutoFill       = "Item auto-filled from history"
	MsgFuzzyMatch     = "Fuzzy health match"
	MsgFetchStart     = "Initiating health map download"
	MsgFetchStatus    = "Server returned error status"
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
	LogKeyAddr      = "addr"
	LogKeyDriver    = "driver"
	LogKeyPath      = "path"
	LogKeyInterval  = "interval"
	LogKeyUser      = "user"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyValue     = "value"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyCategory  = "category"
	LogKeyUpdated   = "updated"
	LogKeyRatio     = "ratio"
	LogKeyMatch     = "match"
	LogKeyMethod    = "method"
	LogKeyRoute     = "route"
	LogKeyRequestID = "request_id"
	LogKeyDuration  = "duration_ms"
	LogKeyItems     = "items"
	LogKeyPredicted = "predictions"
	LogKeyAlerts    = "alerts"
	LogKeyEvents    = "events"
	LogKeyAdded     = "added"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyDate    = "date"
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
	CompEngine  = "engine"
	CompServer  = "server"
	CompFetcher = "fetcher"
	CompWorker  = "worker"
	CompStore   = "store"
	CompMain    = "main"
	CompI18n    = "i18n"
	CompConfig  = "config"
)
