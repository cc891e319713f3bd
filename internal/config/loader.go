package config

import (
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Loader reads a yaml config file, expands ${ENV} references and
// validates the result.
type Loader struct {
	filePath string
}

func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

func (l *Loader) Load(cfg any) error {
	yamlData, err := os.ReadFile(l.filePath)
	if err != nil {
		return err
	}

	yamlString := os.ExpandEnv(string(yamlData))

	decoder := yaml.NewDecoder(strings.NewReader(yamlString))
	decoder.KnownFields(true)

	if err := decoder.Decode(cfg); err != nil {
		return err
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	return validate.Struct(cfg)
}
