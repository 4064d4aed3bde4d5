package utils

import (
	"fmt"
	"net"
	"net/url"
	"time"
)

// PingService checks a TCP connection can be opened to the host of serviceURL
func PingService(serviceURL string, timeout time.Duration) error {
	parsedURL, err := url.Parse(serviceURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		return fmt.Errorf("URL %q has no host", serviceURL)
	}
	port := parsedURL.Port()

	// Default ports if not specified
	if port == "" {
		switch parsedURL.Scheme {
		case "https":
			port = "443"
		default:
			port = "80"
		}
	}

	address := net.JoinHostPort(host, port)

	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	defer conn.Close()

	return nil
}

// PingSite checks if the public site host accepts connections
func PingSite(siteURL string) error {
	return PingService(siteURL, 1500*time.Millisecond)
}
