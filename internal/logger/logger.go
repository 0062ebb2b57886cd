package logger

import (
	"io"
	"log"
	"os"
	"sync"
)

var (
	Info    = log.New(io.Discard, "", 0)
	Warn    = log.New(io.Discard, "", 0)
	Debug   = log.New(io.Discard, "", 0)
	Verbose = log.New(io.Discard, "", 0)
	Error   = log.New(os.Stderr, "❌ ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	Always  = log.New(io.Discard, "", 0) // Always logs regardless of log level

	// Current log level for filtering
	currentLogLevel = "info"

	logFile *os.File
	mu      sync.Mutex
)

func Init() error {
	return InitWithLevel("info")
}

func InitWithLevel(logLevel string) error {
	return InitWithConfig(logLevel, "optionroi.log")
}

// InitWithConfig points every level at logFilePath, filtered by logLevel.
// An empty path logs to stderr instead of a file.
func InitWithConfig(logLevel, logFilePath string) error {
	mu.Lock()
	defer mu.Unlock()

	var out io.Writer = os.Stderr
	var errOut io.Writer = os.Stderr
	if logFilePath != "" {
		f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		if logFile != nil {
			logFile.Close()
		}
		logFile = f
		out = f
		errOut = io.MultiWriter(os.Stderr, f)
	}

	currentLogLevel = logLevel
	nullWriter := io.Discard

	Info.SetOutput(getWriter("info", out, nullWriter))
	Info.SetPrefix("ℹ️  INFO: ")
	Info.SetFlags(log.Ldate | log.Ltime)

	Warn.SetOutput(getWriter("warn", out, nullWriter))
	Warn.SetPrefix("⚠️  WARN: ")
	Warn.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	Debug.SetOutput(getWriter("debug", out, nullWriter))
	Debug.SetPrefix("🐛 DEBUG: ")
	Debug.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	Verbose.SetOutput(getWriter("verbose", out, nullWriter))
	Verbose.SetPrefix("🔍 VERBOSE: ")
	Verbose.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	Error.SetOutput(errOut)

	Always.SetOutput(out)
	Always.SetPrefix("📝 ALWAYS: ")
	Always.SetFlags(log.Ldate | log.Ltime)

	return nil
}

// Level reports the active log level.
func Level() string {
	mu.Lock()
	defer mu.Unlock()
	return currentLogLevel
}

// getWriter returns the appropriate writer based on log level
func getWriter(level string, activeWriter, disabledWriter io.Writer) io.Writer {
	if shouldLog(level) {
		return activeWriter
	}
	return disabledWriter
}

// shouldLog determines if a log level should be active
func shouldLog(level string) bool {
	levels := map[string]int{
		"error":   0,
		"warn":    1,
		"info":    2,
		"debug":   3,
		"verbose": 4,
	}

	currentLevel, exists := levels[currentLogLevel]
	if !exists {
		currentLevel = 2 // default to info
	}

	requiredLevel, exists := levels[level]
	if !exists {
		return false
	}

	return currentLevel >= requiredLevel
}
