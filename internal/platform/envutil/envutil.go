package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/practicecoach-backend/internal/platform/logger"
)

func String(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func Int(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func Bool(name string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

// Duration accepts Go duration strings ("90s", "2h") or a bare number of seconds.
func Duration(name string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

// Logged variants report which source won, the way startup config is traced.

func StringLogged(name, def string, log *logger.Logger) string {
	v := String(name, def)
	if log != nil {
		if _, ok := os.LookupEnv(name); ok {
			log.Debug("Environment variable found, using environment", "env_var", name)
		} else {
			log.Debug("Environment variable not found, using default", "env_var", name, "default", def)
		}
	}
	return v
}

func IntLogged(name string, def int, log *logger.Logger) int {
	v := Int(name, def)
	if log != nil {
		log.Debug("Environment variable resolved", "env_var", name, "value", v)
	}
	return v
}
