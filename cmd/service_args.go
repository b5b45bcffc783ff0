package cmd

import (
	"time"
)

var svcEnvMapString = map[*string]boundEnvVar[string]{
	&cfg.Service.Addr: {
		Name:        "service-host-addr",
		Description: "The address to serve the service on (default all interfaces in dual-stack mode)",
		Short:       ptr("H"),
	},
	&cfg.Service.Port: {
		Name:        "port",
		Description: "The port to serve the service on. Unset or non-numeric values fall back to 3000",
		Short:       ptr("p"),
	},
}

var svcEnvMapDuration = map[*time.Duration]boundEnvVar[time.Duration]{
	&cfg.Service.Timeout: {
		Name:        "service-io-timeout",
		Description: "The timeout for I/O operations and graceful shutdown",
		Short:       ptr("t"),
	},
}
