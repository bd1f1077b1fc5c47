// Package config provides configuration management for the event ETL job.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources in increasing order
// of precedence:
//
//  1. Default values (Default)
//  2. A YAML file (explicit path, or eventetl.yaml / configs/eventetl.yaml)
//  3. Environment variables
//
// # Environment Variables
//
// All environment variables use the ETL_ prefix followed by the section and
// the field:
//
//	ETL_INPUT_PATH=src/data/input_data
//	ETL_ENGINE_PARALLELISM=8
//	ETL_GEO_PROVIDER=table
//	ETL_GEO_TABLE_PATH=geo.yaml
//	ETL_REPORT_TOP_N=5
//	ETL_LOGGING_LEVEL=debug
//	ETL_TELEMETRY_PUSHGATEWAY_URL=http://pushgateway:9091
//
// # Validation
//
// Load validates the merged result with struct tags; an invalid value yields
// a VALIDATION error carrying the offending field names.
package config
