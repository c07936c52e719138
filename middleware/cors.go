package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig defines the config for CORS middleware
type CORSConfig struct {
	// AllowedOrigins is the whitelist of origins a cross-domain request can be executed from
	AllowedOrigins []string

	// AllowNoOrigin admits requests without an Origin header (API clients, curl)
	AllowNoOrigin bool

	AllowCredentials bool
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string

	// MaxAge is how long, in seconds, a preflight result may be cached
	MaxAge int
}

// DefaultCORSConfig returns a default CORS config
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length", "X-Request-ID"},
		MaxAge:           3600,
	}
}

// CORS rejects origins outside the whitelist and answers preflight requests.
func CORS(config ...CORSConfig) fiber.Handler {
	cfg := DefaultCORSConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	allowedOrigins := make(map[string]struct{})
	for _, origin := range cfg.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	allowedMethods := strings.Join(cfg.AllowedMethods, ",")
	allowedHeaders := strings.Join(cfg.AllowedHeaders, ",")
	exposedHeaders := strings.Join(cfg.ExposedHeaders, ",")

	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)

		if origin == "" {
			if !cfg.AllowNoOrigin {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": "Not allowed by CORS",
				})
			}
		} else {
			if _, ok := allowedOrigins[origin]; !ok {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": "Not allowed by CORS",
				})
			}
			c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
			c.Vary(fiber.HeaderOrigin)
		}

		if cfg.AllowCredentials {
			c.Set(fiber.HeaderAccessControlAllowCredentials, "true")
		}
		c.Set(fiber.HeaderAccessControlExposeHeaders, exposedHeaders)

		if c.Method() == fiber.MethodOptions {
			c.Set(fiber.HeaderAccessControlAllowMethods, allowedMethods)
			c.Set(fiber.HeaderAccessControlAllowHeaders, allowedHeaders)
			c.Set(fiber.HeaderAccessControlMaxAge, strconv.Itoa(cfg.MaxAge))
			return c.SendStatus(fiber.StatusNoContent)
		}

		return c.Next()
	}
}
