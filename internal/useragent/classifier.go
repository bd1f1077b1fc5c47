// Package useragent derives operating system and browser families from
// raw User-Agent strings.
package useragent

import (
	"strings"

	"github.com/mssola/useragent"
)

// Labels used when a family cannot be determined
const (
	UnknownOS      = "Unknown OS"
	UnknownBrowser = "Unknown Browser"
)

// Separator joins the OS and browser labels in a classification
const Separator = "-"

// Classifier maps a raw User-Agent string to "os-browser". Implementations
// must be pure and must not panic.
type Classifier func(raw string) string

// Classify is the default Classifier
func Classify(raw string) string {
	os, browser := ClassifyUserAgent(raw)
	return os + Separator + browser
}

// ClassifyUserAgent returns the OS and browser family names of raw.
// Undeterminable families fall back to UnknownOS and UnknownBrowser. Labels
// never contain Separator, so the combined value always splits in two.
func ClassifyUserAgent(raw string) (os, browser string) {
	os, browser = UnknownOS, UnknownBrowser

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return os, browser
	}

	defer func() {
		if recover() != nil {
			os, browser = UnknownOS, UnknownBrowser
		}
	}()

	ua := useragent.New(raw)
	if ua.Bot() {
		if name, _ := ua.Browser(); name != "" {
			return os, label(name, UnknownBrowser)
		}
		return os, browser
	}

	os = label(ua.OSInfo().Name, UnknownOS)
	name, _ := ua.Browser()
	browser = label(name, UnknownBrowser)
	return os, browser
}

func label(name, fallback string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, Separator, " "))
	if name == "" {
		return fallback
	}
	return name
}
