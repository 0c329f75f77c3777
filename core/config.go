package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string // DEV (default), TEST, QA, PROD
	Debug    bool
	TestMode bool
	AppName  string
	Build    string

	// hosted backend
	FirestoreProject string
	StorageBucket    string

	// DefaultTenant is the school a fresh install belongs to until one is cached.
	DefaultTenant string

	// DataDir holds the local sqlite preference store.
	DataDir string

	PushEndpoint string
	PushTimeout  time.Duration

	RollbarToken string
}

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Darasa")
	conf.SetDefault("build", "dev")
	conf.SetDefault("firestoreProject", "")
	conf.SetDefault("storageBucket", "")
	conf.SetDefault("defaultTenant", "")
	conf.SetDefault("dataDir", filepath.Join(".", "data"))
	conf.SetDefault("pushEndpoint", "https://exp.host/--/api/v2/push/send")
	conf.SetDefault("pushTimeout", 10*time.Second)
	conf.SetDefault("rollbarToken", "")

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Env:              env,
		Debug:            conf.GetBool("debug"),
		TestMode:         env == "TEST",
		AppName:          conf.GetString("appName"),
		Build:            conf.GetString("build"),
		FirestoreProject: conf.GetString("firestoreProject"),
		StorageBucket:    conf.GetString("storageBucket"),
		DefaultTenant:    conf.GetString("defaultTenant"),
		DataDir:          conf.GetString("dataDir"),
		PushEndpoint:     conf.GetString("pushEndpoint"),
		PushTimeout:      conf.GetDuration("pushTimeout"),
		RollbarToken:     conf.GetString("rollbarToken"),
	}
}
