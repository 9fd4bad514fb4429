package main

import (
	"net/http"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"synthetic-persona/backend/internal/features/agent/application"
	"synthetic-persona/backend/internal/features/agent/infrastructure"
	"synthetic-persona/backend/internal/flags"
	"synthetic-persona/backend/internal/metrics"
	"synthetic-persona/backend/internal/server"
)

type AgentFlags struct {
	APIFlags *flags.APIFlags
	AIFlags  *flags.AIFlags
}

func NewAgentFlags() *AgentFlags {
	return &AgentFlags{
		APIFlags: flags.NewAPIFlags(":8081"),
		AIFlags:  flags.NewAIFlags(),
	}
}

func (f *AgentFlags) BindFlags(flagSet *pflag.FlagSet) {
	f.APIFlags.BindFlags(flagSet)
	f.AIFlags.BindFlags(flagSet)
}

func NewAgentCommand() *cobra.Command {
	f := NewAgentFlags()

	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Run the reference persona agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.AIFlags.GetAgentConfig()
			if err != nil {
				return errors.WithMessage(err, "error loading agent config")
			}

			client, err := infrastructure.NewOpenAIClient(cfg.ModelParams.Model)
			if err != nil {
				// Keep serving so /health can report the missing model.
				log.WithError(err).Warn("model not configured, chat requests will fail")
			}

			agentService, err := application.NewPersonaAgentService(client, *cfg)
			if err != nil {
				return errors.WithMessage(err, "error creating persona agent")
			}

			router := server.NewAgentRouter(agentService, f.AIFlags.MaxBodyBytes, metrics.NewGinMiddleware("agent"))

			log.WithFields(log.Fields{
				"listen": f.APIFlags.ListenAddr,
				"model":  cfg.ModelParams.Model,
			}).Info("starting persona agent")

			return runHTTPServer(&http.Server{
				Addr:              f.APIFlags.ListenAddr,
				Handler:           router,
				ReadHeaderTimeout: readHeaderTimeout,
			}, f.APIFlags.MetricsAddr)
		},
	}

	f.BindFlags(cmd.Flags())
	return cmd
}
