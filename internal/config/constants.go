package config

import "jitu/pkg/contracts"

// Application constants
const (
	AppName    = "jitu"
	AppVersion = contracts.Version

	DefaultPort           = 8080
	DefaultLogFile        = "logs/jitu.log"
	DefaultMaxUploadBytes = 20 << 20 // 20 MiB
	DefaultSampleRows     = 20

	// requests per second per client
	DefaultRateLimitRPS   = 10
	DefaultRateLimitBurst = 20
)
