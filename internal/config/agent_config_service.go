package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"synthetic-persona/backend/internal/features/agent/domain"
)

// AgentConfigService defines the interface for persona agent configuration.
type AgentConfigService interface {
	LoadAgentConfig() (*domain.AgentConfig, error)
}

// agentConfigService is the implementation of AgentConfigService.
type agentConfigService struct {
	configPath string
}

// NewAgentConfigService creates a new instance of agentConfigService. An empty
// configPath, or a path that does not exist, yields the built-in defaults.
func NewAgentConfigService(configPath string) AgentConfigService {
	return &agentConfigService{configPath: configPath}
}

// LoadAgentConfig loads the agent configuration from the configured JSON file,
// filling anything the file leaves out from the defaults.
func (s *agentConfigService) LoadAgentConfig() (*domain.AgentConfig, error) {
	cfg := domain.DefaultAgentConfig()
	if s.configPath == "" {
		return &cfg, nil
	}

	absPath, err := filepath.Abs(s.configPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get absolute path for %s", s.configPath)
	}

	data, err := os.ReadFile(absPath)
	if os.IsNotExist(err) {
		log.WithField("path", absPath).Debug("agent config file not found, using defaults")
		return &cfg, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read agent config file %s", absPath)
	}

	var fileCfg domain.AgentConfig
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal agent config from %s", absPath)
	}

	if strings.TrimSpace(fileCfg.PromptTemplate) != "" {
		if _, err := template.New("prompt").Parse(fileCfg.PromptTemplate); err != nil {
			return nil, errors.Wrapf(err, "invalid prompt_template in %s", absPath)
		}
		cfg.PromptTemplate = fileCfg.PromptTemplate
	}
	if fileCfg.ModelParams.Model != "" {
		cfg.ModelParams.Model = fileCfg.ModelParams.Model
	}
	if fileCfg.ModelParams.Temperature != 0 {
		cfg.ModelParams.Temperature = fileCfg.ModelParams.Temperature
	}
	if fileCfg.ModelParams.MaxTokens != 0 {
		cfg.ModelParams.MaxTokens = fileCfg.ModelParams.MaxTokens
	}

	log.WithField("path", absPath).Debug("agent config loaded")
	return &cfg, nil
}
