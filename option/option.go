package option

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/scopenco/netblock-tools/lib/tools"
	"github.com/scopenco/netblock-tools/lib/types"

	"gopkg.in/yaml.v3"
)

var ErrConfig = errors.New("invalid config")

// ConfigError is a problem with the rules config. It is fatal at startup.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config: %s", e.Err)
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

type Option struct {
	File          string                 `config:"file"`
	Follow        bool                   `config:"follow"`
	Show          bool                   `config:"show"`
	Debug         bool                   `config:"debug"`
	Pattern       string                 `config:"pattern"`
	Command       string                 `config:"command"`
	MaxBlocked    int                    `config:"max-blocked"`
	Safelist      types.Listable[string] `config:"safelist"`
	LogOptions    LogOptions             `config:"log"`
	APIOptions    APIOptions             `config:"api"`
	ActionOptions ActionOptions          `config:"action"`
	DropRules     []DropRuleOptions      `config:"drop-rules"`
}

type configType string

const (
	JSON configType = "json"
	YAML configType = "yaml"
)

func ReadFile(file string) (*Option, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	switch filepath.Ext(file) {
	case ".json", ".jsonc":
		return ReadContent(content, JSON)
	case ".yaml", ".yml":
		return ReadContent(content, YAML)
	default:
		return ReadContent(content, "")
	}
}

func ReadContent(content []byte, configType configType) (*Option, error) {
	var optionMap map[string]any
	var err error
	switch configType {
	case JSON:
		err = json.Unmarshal(content, &optionMap)
	case YAML:
		err = yaml.Unmarshal(content, &optionMap)
	default:
		err = yaml.Unmarshal(content, &optionMap)
		if err != nil {
			err = json.Unmarshal(content, &optionMap)
		}
	}
	if err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("parse fail: %s", err)}
	}
	var option Option
	err = tools.NewMapStructureDecoderWithResult(&option).Decode(optionMap)
	if err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("decode fail: %s", err)}
	}
	return &option, nil
}
