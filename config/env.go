package config

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/logger"
)

// Environment is the deployment the service runs in. It decides where
// secrets come from and how strict validation is.
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

var environmentAliases = map[string]Environment{
	"":            Development,
	"dev":         Development,
	"development": Development,
	"local":       Development,
	"test":        Test,
	"testing":     Test,
	"ci":          CI,
	"prod":        Production,
	"production":  Production,
}

// ParseEnvironment reads an ENV value. Unknown values count as development.
func ParseEnvironment(value string) Environment {
	if env, ok := environmentAliases[strings.ToLower(strings.TrimSpace(value))]; ok {
		return env
	}
	return Development
}

// GetEnvironment determines the current environment. CI=true wins over ENV.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}
	return ParseEnvironment(os.Getenv("ENV"))
}

func (e Environment) String() string {
	return string(e)
}

// GinMode is the gin mode the HTTP server should run in.
func (e Environment) GinMode() string {
	switch e {
	case Production:
		return gin.ReleaseMode
	case Test, CI:
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}

// SQLLogLevel logs every statement in development and only slow queries
// and errors elsewhere.
func (e Environment) SQLLogLevel() logger.LogLevel {
	if e == Development {
		return logger.Info
	}
	return logger.Warn
}

// RequiresDBPassword is false only for local test runs against a throwaway database.
func (e Environment) RequiresDBPassword() bool {
	return e != Test
}

func (e Environment) IsProduction() bool {
	return e == Production
}
