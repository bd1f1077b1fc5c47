package geo

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventetl/internal/config"
	apperrors "eventetl/internal/errors"
)

const tableYAML = `
- cidr: 10.0.0.0/8
  country: Testland
- cidr: 10.1.0.0/16
  country: Testland
  city: Capital
- cidr: 192.168.1.0/24
  country: Guinea-Bissau
  city: Bissau
- cidr: 2001:db8::/32
  country: Sixland
  city: Hextown
`

func writeTable(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "geo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(tableYAML), 0644))
	return path
}

func TestEncode(t *testing.T) {
	tests := []struct {
		country, city, want string
	}{
		{"Germany", "Berlin", "Germany-Berlin"},
		{"Germany", "", "Germany"},
		{"", "Berlin", Sentinel},
		{"Timor-Leste", "Dili", "Timor Leste-Dili"},
		{"France", "Aix-en-Provence", "France-Aix en Provence"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Encode(tt.country, tt.city))
	}
}

func TestTable_Lookup(t *testing.T) {
	table, err := LoadTable(writeTable(t, t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, 4, table.Len())

	tests := []struct {
		ip   string
		want string
	}{
		{"10.2.3.4", "Testland"},
		{"10.1.2.3", "Testland-Capital"},
		{" 10.1.2.3 ", "Testland-Capital"},
		{"192.168.1.77", "Guinea Bissau-Bissau"},
		{"::ffff:10.1.0.1", "Testland-Capital"},
		{"2001:db8::1", "Sixland-Hextown"},
		{"8.8.8.8", Sentinel},
		{"not-an-ip", Sentinel},
		{"", Sentinel},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Lookup(tt.ip))
		})
	}
}

func TestLoadTable_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadTable(filepath.Join(dir, "missing.yaml"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("- cidr: 10.0.0.0/99\n  country: X\n"), 0644))
	_, err = LoadTable(bad)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))

	garbage := filepath.Join(dir, "garbage.yaml")
	require.NoError(t, os.WriteFile(garbage, []byte("{not: [a list"), 0644))
	_, err = LoadTable(garbage)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
}

func TestCached(t *testing.T) {
	var calls atomic.Int32
	inner := LocatorFunc(func(ip string) string {
		calls.Add(1)
		if ip == "1.1.1.1" {
			return "Australia-Sydney"
		}
		return Sentinel
	})

	cached, err := NewCached(inner, 2)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "Australia-Sydney", cached.Lookup("1.1.1.1"))
		}()
	}
	wg.Wait()

	assert.Equal(t, Sentinel, cached.Lookup("2.2.2.2"))
	assert.Equal(t, Sentinel, cached.Lookup("2.2.2.2"))
	assert.LessOrEqual(t, cached.Len(), 2)
	assert.Less(t, calls.Load(), int32(52))
	require.NoError(t, cached.Close())
}

func TestNewCached_InvalidSize(t *testing.T) {
	_, err := NewCached(LocatorFunc(func(string) string { return "" }), 0)
	require.Error(t, err)
}

func TestOpenMMDB_Missing(t *testing.T) {
	_, err := OpenMMDB(filepath.Join(t.TempDir(), "GeoLite2-City.mmdb"), "en")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestOpenMMDB_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.mmdb")
	require.NoError(t, os.WriteFile(path, []byte("not a database"), 0644))

	_, err := OpenMMDB(path, "en")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeLookup))
}

func TestLocalized(t *testing.T) {
	names := map[string]string{"en": "Germany", "de": "Deutschland"}
	assert.Equal(t, "Deutschland", localized(names, "de"))
	assert.Equal(t, "Germany", localized(names, "fr"))
	assert.Equal(t, "", localized(nil, "en"))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir)

	cfg := config.Default().Geo
	cfg.Provider = ProviderTable
	cfg.TablePath = "geo.yaml"

	source, err := Open(cfg, dir, nil)
	require.NoError(t, err)
	defer source.Close()

	_, isCached := source.(*Cached)
	assert.True(t, isCached)
	assert.Equal(t, "Testland-Capital", source.Lookup("10.1.9.9"))

	cfg.CacheSize = 0
	plain, err := Open(cfg, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, "Testland", plain.Lookup("10.9.9.9"))
	require.NoError(t, plain.Close())
}

func TestOpen_Errors(t *testing.T) {
	cfg := config.Default().Geo
	cfg.Provider = "ouija"
	_, err := Open(cfg, t.TempDir(), nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))

	cfg = config.Default().Geo
	_, err = Open(cfg, t.TempDir(), nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}
