package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"synthetic-persona/backend/internal/features/persona/application"
	"synthetic-persona/backend/internal/flags"
)

func NewPersonasCommand() *cobra.Command {
	f := flags.NewPostgresDatabaseFlags()

	cmd := &cobra.Command{
		Use:   "personas",
		Short: "List the personas in the persona directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.DSN == "" {
				return errors.New("no persona database configured, set --database-dsn or " + flags.EnvPersonaDSN)
			}

			repo, closeDB, err := f.GetPersonaRepository()
			if err != nil {
				return errors.WithMessage(err, "couldn't get persona directory")
			}
			defer func() {
				if err := closeDB(); err != nil {
					log.WithError(err).Warn("error closing persona database")
				}
			}()

			personas, err := application.NewPersonaService(repo).ListPersonas(context.Background())
			if err != nil {
				return errors.WithMessage(err, "error listing personas")
			}
			for _, p := range personas {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", p.ID, p.AudienceName)
			}
			return nil
		},
	}

	f.BindFlags(cmd.Flags())
	return cmd
}
