package flags

import (
	"github.com/spf13/pflag"

	"synthetic-persona/backend/internal/config"
	"synthetic-persona/backend/internal/features/agent/domain"
)

// AIFlags contains flags for the reference persona agent's model.
type AIFlags struct {
	ConfigPath   string
	Model        string
	MaxBodyBytes int64
}

func NewAIFlags() *AIFlags {
	return &AIFlags{
		ConfigPath:   "agent_config.json",
		MaxBodyBytes: config.DefaultMaxBodyBytes,
	}
}

func (f *AIFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.ConfigPath, "config", f.ConfigPath, "Path to the agent config JSON file; missing files use built-in defaults")
	fs.StringVar(&f.Model, "model", "", "Model override. Set OPENAI_API_KEY (and optionally OPENAI_BASE_URL) for the endpoint.")
	fs.Int64Var(&f.MaxBodyBytes, "max-body-bytes", f.MaxBodyBytes, "Maximum multimodal request size in bytes")
}

// GetAgentConfig loads the agent config file and applies the model override.
func (f *AIFlags) GetAgentConfig() (*domain.AgentConfig, error) {
	cfg, err := config.NewAgentConfigService(f.ConfigPath).LoadAgentConfig()
	if err != nil {
		return nil, err
	}
	if f.Model != "" {
		cfg.ModelParams.Model = f.Model
	}
	return cfg, nil
}
