// Package config loads mining job settings from the environment with flag
// overrides applied by the scripts.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "rulemine"

const DEVELOPMENT = "development"

// Configuration is the full set of knobs for one mining job. Mining
// parameters are validated again by the core before any computation.
type Configuration struct {
	Env           string  `envconfig:"ENV" default:"development"`
	MinSupport    float64 `envconfig:"MIN_SUPPORT" default:"0.01"`
	MinConfidence float64 `envconfig:"MIN_CONFIDENCE" default:"0.5"`
	MaxLen        int     `envconfig:"MAX_LEN" default:"8"`
	NumRoutines   int     `envconfig:"NUM_ROUTINES" default:"3"`
	InputFile     string  `envconfig:"INPUT_FILE"`
	ItemsetsFile  string  `envconfig:"ITEMSETS_FILE"`
	RulesFile     string  `envconfig:"RULES_FILE"`
	DBPath        string  `envconfig:"DB_PATH"`
	TopK          int     `envconfig:"TOP_K" default:"-1"`
	SortMeasure   string  `envconfig:"SORT_MEASURE" default:"confidence"`
}

// Load reads RULEMINE_* variables over the defaults.
func Load() (*Configuration, error) {
	var c Configuration
	if err := envconfig.Process(envPrefix, &c); err != nil {
		return nil, fmt.Errorf("unable to process env config: %w", err)
	}
	return &c, nil
}

// InitLogging sets the log level from the environment name.
func InitLogging(env string) {
	if env == DEVELOPMENT {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}
