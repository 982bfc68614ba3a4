package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/ytshuffle/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file from the template when missing, then initializes the
// history database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		r.writePlain("✓ Created %s\n", configPath)
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidConfig, err)
	}
	if err := config.Validate(); err != nil {
		return err
	}

	r.logger.Info("initializing database", "path", config.Database.Path)
	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	version, _, err := shared.CurrentMigration(db)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	r.writePlain("✓ Database ready at %s (schema version %d)\n", config.Database.Path, version)
	r.writePlain("\nNext steps:\n")
	r.writePlain("1. Save OAuth2 tokens to the token_file paths in %s\n", configPath)
	r.writePlain("2. Run 'ytshuffle shuffle --source <playlist id> --dry-run' to preview a shuffle\n")
	return nil
}
