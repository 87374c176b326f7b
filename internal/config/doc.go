// Package config provides centralized configuration for the sustainers CLI
// and upload server.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values from the struct tags (lowest priority)
//
// The cmd binaries also load a .env file from the working directory before
// calling Load.
//
// # Environment Variables
//
// All environment variables follow the pattern SUSTAINERS_<SECTION>_<FIELD>:
//
//	SUSTAINERS_SERVER_PORT=8080
//	SUSTAINERS_PATHS_OUTPUT_DIR=/srv/exports
//	SUSTAINERS_IMPORT_ENCODING=windows-1252
//	SUSTAINERS_EXPORT_BOM=true
//	SUSTAINERS_LOGGING_LEVEL=debug
//
// SUSTAINERS_CONFIG_FILE points at an explicit YAML file; otherwise
// config.yaml and configs/config.yaml are tried.
//
// # Paths
//
// GetPaths resolves the output and log directories against the working
// directory.
package config
