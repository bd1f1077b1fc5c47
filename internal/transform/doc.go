// Package transform turns raw event rows into enriched, geolocated events.
//
// Row-level problems never fail the stage: an unparseable timestamp becomes
// null, an unknown client becomes "Unknown OS"/"Unknown Browser", and an
// address without a location drops the row in the final completeness filter.
package transform
