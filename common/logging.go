package common

import (
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var loggerOnce sync.Once

var logger *log.Logger

func getLogger() *log.Logger {
	loggerOnce.Do(func() {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "songdo",
		})
		logger.SetLevel(log.InfoLevel)
	})
	return logger
}

// SetLogLevel adjusts the verbosity of the shared logger.
//
// Parameters:
//   - level: the minimum level to emit
func SetLogLevel(level log.Level) {
	getLogger().SetLevel(level)
}

func LogDebug(msg string, args ...any) {
	getLogger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...any) {
	getLogger().Infof(msg, args...)
}

func LogWarn(msg string, args ...any) {
	getLogger().Warnf(msg, args...)
}

func LogError(msg string, args ...any) {
	getLogger().Errorf(msg, args...)
}

// throttleInterval is the minimum spacing between repeated warnings that
// share a key. Data-integrity warnings fire once per offending instance per
// frame otherwise, which would flood the log at city scale.
const throttleInterval = 5 * time.Second

var throttleMu sync.Mutex
var throttleLast = map[string]time.Time{}

// LogWarnThrottled emits a warning at most once per throttle interval for a
// given key. Used for per-frame data-integrity warnings (malformed bounding
// volumes, out-of-range indices) that repeat until the asset is fixed.
//
// Parameters:
//   - key: deduplication key identifying the warning source
//   - msg: printf-style message
//   - args: message arguments
func LogWarnThrottled(key string, msg string, args ...any) {
	throttleMu.Lock()
	last, ok := throttleLast[key]
	now := time.Now()
	if ok && now.Sub(last) < throttleInterval {
		throttleMu.Unlock()
		return
	}
	throttleLast[key] = now
	throttleMu.Unlock()

	getLogger().Warnf(msg, args...)
}
