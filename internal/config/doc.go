// Package config loads the service configuration.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources, later ones
// overriding earlier ones:
//
//  1. Default values (Default)
//  2. A YAML file: $CHP_CONFIG_FILE, or config.yaml / configs/config.yaml
//  3. Environment variables
//
// # Environment Variables
//
// Variables are prefixed with CHP and follow the struct nesting:
//
//	CHP_SERVER_PORT=8080
//	CHP_DATASET_PATH=/srv/data/youtube_channel_data.csv
//	CHP_ANALYTICS_DEFAULT_WINDOW_DAYS=365
//	CHP_LOGGING_LEVEL=debug
//	CHP_SECURITY_ALLOWED_ORIGINS=http://localhost:3000,https://example.com
//
// # Example File
//
//	server:
//	  port: 9090
//	dataset:
//	  path: data/channel.xlsx
//	analytics:
//	  histogram_bins: 40
//	  timezone: Asia/Baghdad
package config
