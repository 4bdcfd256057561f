package config

import (
	"reflect"
	"strings"

	"modkit/core/backup"
	"modkit/core/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// GameConfig describes where the managed game data lives on disk.
// All paths are resolved relative to the working directory unless absolute.
type GameConfig struct {
	// XMLDir is the base directory holding the Units/ and Hardpoints/ trees.
	XMLDir string `mapstructure:"xml_dir" default:"XML"`
	// TextDir is the directory holding the tooltip .txt tables and the
	// DAT build script.
	TextDir string `mapstructure:"text_dir" default:"Text"`
	// ScriptsDir is the directory holding the ship market Lua libraries.
	ScriptsDir string `mapstructure:"scripts_dir" default:"Scripts/Library"`
}

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Game holds the game data directory layout.
	Game GameConfig `mapstructure:"game"`
	// Backup holds configuration for the pristine snapshot store.
	Backup backup.Config `mapstructure:"backup"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. GAME_XML_DIR -> game.xml_dir)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
