package github

import "time"

// Config holds configuration for GitHub operations
type Config struct {
	PerPage         int
	IncludeForks    bool
	ScanOrgs        bool
	BlacklistedOrgs []string

	// RetryAttempts bounds retries of transient failures. Rate limiting is
	// waited out regardless.
	RetryAttempts uint
	RetryDelay    time.Duration
}

// DefaultConfig returns a default configuration
func DefaultConfig() Config {
	return Config{
		PerPage:       100,
		IncludeForks:  false,
		ScanOrgs:      true,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

func (c Config) blacklisted(org string) bool {
	for _, b := range c.BlacklistedOrgs {
		if b == org {
			return true
		}
	}
	return false
}
