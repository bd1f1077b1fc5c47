package geo

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"

	apperrors "eventetl/internal/errors"
)

// MMDB resolves addresses against a MaxMind GeoIP2/GeoLite2 City database
type MMDB struct {
	reader   *geoip2.Reader
	language string
}

// OpenMMDB opens the database at path. language selects the localized
// names, falling back to English and then to the ISO country code.
func OpenMMDB(path, language string) (*MMDB, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewNotFoundError(path, err)
		}
		return nil, apperrors.NewLookupError(fmt.Sprintf("failed to open geo database %s", path), err)
	}
	if language == "" {
		language = "en"
	}
	return &MMDB{reader: reader, language: language}, nil
}

// Lookup implements Locator
func (m *MMDB) Lookup(ip string) string {
	addr := net.ParseIP(strings.TrimSpace(ip))
	if addr == nil {
		return Sentinel
	}

	record, err := m.reader.City(addr)
	if err != nil {
		return Sentinel
	}

	country := localized(record.Country.Names, m.language)
	if country == "" {
		country = record.Country.IsoCode
	}
	return Encode(country, localized(record.City.Names, m.language))
}

// Close releases the database
func (m *MMDB) Close() error {
	return m.reader.Close()
}

func localized(names map[string]string, language string) string {
	if name := names[language]; name != "" {
		return name
	}
	return names["en"]
}
