package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CacheConfig represents cache control configuration
type CacheConfig struct {
	MaxAge          int
	Private         bool
	NoStore         bool
	NoCache         bool
	MustRevalidate  bool
	ProxyRevalidate bool
	Vary            []string
}

// NoStoreCacheConfig is for responses that must never be kept by a browser
// or proxy, such as the patient page behind a public token.
func NoStoreCacheConfig() CacheConfig {
	return CacheConfig{
		Private:        true,
		NoStore:        true,
		MustRevalidate: true,
	}
}

// Cache adds cache control headers to responses
func Cache(config CacheConfig) gin.HandlerFunc {
	value := config.directives()

	return func(c *gin.Context) {
		// Skip cache headers for non-GET requests
		if c.Request.Method != "GET" {
			c.Header("Cache-Control", "no-store")
			c.Next()
			return
		}

		if value != "" {
			c.Header("Cache-Control", value)
		}
		if config.NoStore {
			c.Header("Pragma", "no-cache")
		}
		if len(config.Vary) > 0 {
			c.Header("Vary", strings.Join(config.Vary, ", "))
		}

		c.Next()
	}
}

func (config CacheConfig) directives() string {
	directives := make([]string, 0, 6)

	if config.Private {
		directives = append(directives, "private")
	} else {
		directives = append(directives, "public")
	}
	if config.NoStore {
		directives = append(directives, "no-store")
	}
	if config.NoCache {
		directives = append(directives, "no-cache")
	}
	if config.MaxAge > 0 && !config.NoStore {
		directives = append(directives, "max-age="+strconv.Itoa(config.MaxAge))
	}
	if config.MustRevalidate {
		directives = append(directives, "must-revalidate")
	}
	if config.ProxyRevalidate {
		directives = append(directives, "proxy-revalidate")
	}

	return strings.Join(directives, ", ")
}
