// Package config provides configuration management for the mod kit.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Game: location of the managed XML, Text, and Scripts directories
//   - Backup: pristine snapshot directory
//   - Log: logging level and format
//
// Note that the mod specification itself (units, squadrons, market) is not
// application configuration; it is a data document loaded separately by
// feature/units.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Game.XMLDir)
package config
