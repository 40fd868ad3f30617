package common

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// Global variable to control debug output
var VerboseMode bool = false

// LogLevelEnv overrides the default log level (trace, debug, info, warn, error).
const LogLevelEnv = "PSUTOOLS_LOG_LEVEL"

var (
	loggerMu sync.Mutex
	logger   = newLogger(os.Stderr)
)

func newLogger(output io.Writer) hclog.Logger {
	level := hclog.Info
	if env := os.Getenv(LogLevelEnv); env != "" {
		if parsed := hclog.LevelFromString(env); parsed != hclog.NoLevel {
			level = parsed
		}
	}
	if VerboseMode {
		level = hclog.Debug
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       "psutools",
		Level:      level,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z07:00",
	})
}

// SetVerboseMode enables or disables verbose/debug output
func SetVerboseMode(verbose bool) {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	VerboseMode = verbose
	if verbose {
		logger.SetLevel(hclog.Debug)
	} else {
		logger.SetLevel(hclog.Info)
	}
}

// SetLogOutput redirects all log output to w (os.Stderr when nil)
func SetLogOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}

	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = newLogger(w)
}

// Logger returns the shared hclog logger
func Logger() hclog.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	return logger
}

// Error messages
const (
	ErrFailedToReadConfig      = "failed to read config file"
	ErrFailedToParseTOML       = "failed to parse TOML config"
	ErrFailedToParseYAML       = "failed to parse YAML config"
	ErrFailedToEncodeConfig    = "failed to encode config file"
	ErrFailedToListSource      = "failed to list source directory"
	ErrFailedToReadSourceFile  = "failed to read source file"
	ErrFailedToResolveFiles    = "failed to resolve archive files"
	ErrFailedToEncodeIconSys   = "failed to encode icon.sys"
	ErrFailedToDecodeIconSys   = "failed to decode icon.sys"
	ErrFailedToSerializePSU    = "failed to serialize PSU archive"
	ErrFailedToDeserializePSU  = "failed to deserialize PSU archive"
	ErrFailedToWriteOutputFile = "failed to write output file"
	ErrFailedToCreateOutputDir = "failed to create output directory"
	ErrNoConfigFound           = "no psu.toml or psu.yaml found in folder"
)

// Info messages
const (
	InfoResolvedTimestamp = "Resolved archive timestamp: %s"
	InfoAddingFile        = "+ Adding %s (%d bytes)"
	InfoIconSysGenerated  = "Generated icon.sys (%d bytes, flags %s)"
	InfoPSUPacked         = "PSU archive packed: %s -> %s (%d bytes)"
	InfoPSUUnpacked       = "PSU archive unpacked: %s -> %s (%d files)"
	InfoConfigLoaded      = "Loaded config %s for save %q"
	InfoIconSysWritten    = "icon.sys written: %s"
)

// Debug messages
const (
	DebugSelectedFile    = "Selected file %d: %s"
	DebugSkippedEntry    = "Skipping %s: %s"
	DebugEntryWritten    = "Entry %q: mode=0x%04X size=%d offset=0x%X"
	DebugEntryRead       = "Entry %q: mode=0x%04X size=%d offset=0x%X"
	DebugIconSysTitle    = "icon.sys title %q, linebreak at character %d (byte %d)"
	DebugIconSysOverride = "icon.sys field %s overridden from config"
)

// Warning messages
const (
	WarnExcludeNotFound   = "Excluded file %s does not exist in source, ignoring"
	WarnExcludeSubfolder  = "Excluded file %s is in a subfolder, ignoring"
	WarnConfigFileSkipped = "Config file %s is never packed, skipping"
	WarnIconSysReplaced   = "icon.sys in source folder is replaced by generated metadata"
	WarnNonZeroPadding    = "Entry %q has non-zero padding bytes"
	WarnUnknownConfigKey  = "Unknown config key %s, ignoring"
	WarnTimesNotKept      = "Could not set modification time of %s: %v"
)

// LogInfo logs an informational message
func LogInfo(message string, args ...interface{}) {
	Logger().Info(format(message, args...))
}

// LogWarn logs a warning message
func LogWarn(message string, args ...interface{}) {
	Logger().Warn(format(message, args...))
}

// LogError logs an error message
func LogError(message string, args ...interface{}) {
	Logger().Error(format(message, args...))
}

// LogDebug logs a debug message (only if VerboseMode is enabled)
func LogDebug(message string, args ...interface{}) {
	l := Logger()
	if !l.IsDebug() {
		return
	}
	l.Debug(format(message, args...))
}

func format(message string, args ...interface{}) string {
	if len(args) > 0 {
		return fmt.Sprintf(message, args...)
	}
	return message
}

// FormatError creates a formatted error with additional context
func FormatError(baseMessage string, details interface{}) error {
	if err, ok := details.(error); ok {
		return fmt.Errorf("%s: %w", baseMessage, err)
	}
	return fmt.Errorf("%s: %v", baseMessage, details)
}
