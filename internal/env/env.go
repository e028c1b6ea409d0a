package env

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Environment string

const (
	Local      Environment = "local"
	Production Environment = "production"

	Key string = "ENV"
)

func (e Environment) Valid() bool {
	switch e {
	case Local, Production:
		return true
	}
	return false
}

func (e Environment) IsProduction() bool { return e == Production }

var Current Environment = Local

func init() {
	Current = Parse(os.Getenv(Key))
}

// Parse falls back to Local for unknown values.
func Parse(v string) Environment {
	e := Environment(strings.ToLower(strings.TrimSpace(v)))
	if !e.Valid() {
		return Local
	}
	return e
}

func String(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func Duration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func Int(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// List splits a comma separated value, dropping blanks.
func List(key string) []string {
	raw := os.Getenv(key)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
