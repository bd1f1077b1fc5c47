// Package geo resolves IP addresses to a combined "country-city" label.
//
// Lookups never fail loudly: an address that cannot be parsed or located
// yields Sentinel, which the transform stage turns into a null country and
// city.
package geo

import (
	"io"
	"strings"
)

// Sentinel is returned when an address cannot be resolved
const Sentinel = ""

// Separator joins country and city in a label
const Separator = "-"

// Locator resolves an IP address to "country-city", "country" when the city
// is unknown, or Sentinel. Implementations must be pure and safe for
// concurrent use.
type Locator interface {
	Lookup(ip string) string
}

// LocatorFunc adapts a function to Locator
type LocatorFunc func(ip string) string

// Lookup calls f(ip)
func (f LocatorFunc) Lookup(ip string) string {
	return f(ip)
}

// Source is a Locator that holds resources released by Close
type Source interface {
	Locator
	io.Closer
}

// Encode builds a label from country and city names. Separators inside a
// name become spaces so the label always splits back into two parts.
func Encode(country, city string) string {
	country = clean(country)
	if country == "" {
		return Sentinel
	}
	city = clean(city)
	if city == "" {
		return country
	}
	return country + Separator + city
}

func clean(name string) string {
	return strings.TrimSpace(strings.ReplaceAll(name, Separator, " "))
}

type nopCloser struct {
	Locator
}

func (nopCloser) Close() error { return nil }

// WithoutClose wraps a Locator that holds no resources as a Source
func WithoutClose(l Locator) Source {
	if s, ok := l.(Source); ok {
		return s
	}
	return nopCloser{Locator: l}
}
