package config

import (
	"net"
	"strings"
)

// applyEnv honours HOST and PORT. Either may be set alone; the missing part
// is kept from the current bind address.
func applyEnv(config *Config, getenv func(string) string) {
	if getenv == nil {
		return
	}
	host := strings.TrimSpace(getenv("HOST"))
	port := strings.TrimSpace(getenv("PORT"))
	if host == "" && port == "" {
		return
	}

	curHost, curPort, err := net.SplitHostPort(config.EndpointAddrHTTP)
	if err != nil {
		curHost, curPort = "", ""
	}
	if host == "" {
		host = curHost
	}
	if port == "" {
		port = curPort
	}
	config.EndpointAddrHTTP = net.JoinHostPort(host, port)
}
