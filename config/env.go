package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// getEnvAs returns parse(value) of key, or defaultVal when key is unset or does not parse.
func getEnvAs[T any](key string, defaultVal T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	value, err := parse(strings.TrimSpace(raw))
	if err != nil {
		return defaultVal
	}
	return value
}

func getEnvAsString(key string, defaultVal string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	return getEnvAs(key, defaultVal, strconv.Atoi)
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	return getEnvAs(key, defaultVal, func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	})
}

func getEnvAsBool(key string, defaultVal bool) bool {
	return getEnvAs(key, defaultVal, strconv.ParseBool)
}

// getEnvAsTimeDuration accepts Go durations ("500ms", "15s") or a bare number of seconds.
func getEnvAsTimeDuration(key string, defaultVal time.Duration) time.Duration {
	return getEnvAs(key, defaultVal, parseDuration)
}

func parseDuration(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	secs, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs) * time.Second, nil
}

// getEnvAsSlice splits a comma separated list, dropping blank entries.
func getEnvAsSlice(key string, defaultVal []string) []string {
	return getEnvAs(key, defaultVal, func(s string) ([]string, error) {
		out := []string{}
		for part := range strings.SplitSeq(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	})
}
