package config

import "strings"

// ListenAddress accepts a bare port like "5000" as well as a full address like "0.0.0.0:5000"
func ListenAddress(port string) string {
	if port == "" || strings.Contains(port, ":") {
		return port
	}

	return ":" + port
}
