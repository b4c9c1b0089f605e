package config

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// for root
var (
	Debug = false
)

// for pkg filter
var (
	// capacity of the per-callsite interest cache
	MaxNumCallsite = 1024

	// level applied when no directive matches and none was configured
	DefaultDirectives = "info"

	// environment variable carrying the directive string
	EnvDirectives = "SEETRACE_DIRECTIVES"
)

// for pkg registry
var (
	// initial capacity of the span slot table
	InitNumSlot = 64

	// shard count of the per-goroutine stack table
	NumStackShard = 32
)

// for pkg layer
var (
	// test account
	SEETRACE_DEFAULT_DSN = "root:@tcp(127.0.0.1:9030)/seetrace"

	// length of DATE6 = "2006-01-02 15:04:05.000000"
	L_DATE6 = 26
)

// for pkg bgtask
var (
	// archive layer flush interval
	FlushSchedule = "@every 1s"
)

// initializes logrus
func initLogrus(_ *viper.Viper) {
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		TimestampFormat: time.DateTime,
	})
	if Debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// NewViper creates a new viper instance configured.
func NewViper() *viper.Viper {
	vp := viper.New()

	// read config from a file
	vp.SetConfigName("config") // name of config file (without extension)
	vp.SetConfigType("yaml")   // useful if the given config file does not have the extension in the name
	vp.AddConfigPath(".")      // look for a config in the working directory first

	// read config from environment variables
	vp.SetEnvPrefix("seetrace") // env var must start with SEETRACE_
	// replace - by _ for environment variable names
	vp.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vp.AutomaticEnv() // read in environment variables that match
	return vp
}

// Directives resolves the active directive string: config first, then the
// raw environment variable, then the default.
func Directives(vp *viper.Viper) string {
	if vp != nil {
		if s := vp.GetString("directives"); s != "" {
			return s
		}
	}
	if s := os.Getenv(EnvDirectives); s != "" {
		return s
	}
	return DefaultDirectives
}

func init() {
	initLogrus(nil)
}
