package config

const (
	// EnvPrefix namespaces every environment override, e.g. ETL_REPORT_TOP_N
	EnvPrefix = "ETL"

	// DefaultAppName names the engine session, the telemetry service and the push job
	DefaultAppName = "CitiesCountriesTest"

	// DefaultInputPath is the event log location relative to the working directory
	DefaultInputPath = "src/data/input_data"

	// DefaultGeoDatabase is the MaxMind City database relative to the working directory
	DefaultGeoDatabase = "src/data/GeoLite2-City.mmdb"

	DefaultPartitionRows = 4096
	DefaultGeoCacheSize  = 65536
	DefaultTopN          = 5
)
