// Command seed loads the sample catalog and grants the admin role.
//
//	seed --services configs/services.yaml
//	seed --admin owner@thehairbar.in
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/config"
	"github.com/iliyamo/salon-booking/internal/database"
	"github.com/iliyamo/salon-booking/internal/logging"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/repository"
	"github.com/iliyamo/salon-booking/internal/seed"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		servicesFile string
		adminEmail   string
		migrate      bool
	)
	flags := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flags.StringVar(&servicesFile, "services", "", "YAML file with services to insert")
	flags.StringVar(&adminEmail, "admin", "", "email of an existing user to grant the admin role")
	flags.BoolVar(&migrate, "migrate", false, "create missing tables first")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}
	if servicesFile == "" && adminEmail == "" && !migrate {
		flags.Usage()
		return errors.New("nothing to do")
	}

	cfg := config.Load()
	logger, err := logging.New(cfg.Env)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if migrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		logger.Info("schema ready")
	}

	if servicesFile != "" {
		if _, err := os.Stat(servicesFile); err != nil {
			return err
		}
		svcs, err := seed.Load(servicesFile)
		if err != nil {
			return err
		}
		n, err := repository.NewServiceRepo(db).CreateMany(ctx, svcs)
		if err != nil {
			return fmt.Errorf("insert services: %w", err)
		}
		logger.Info("services inserted", zap.Int("count", n), zap.String("file", servicesFile))
	}

	if adminEmail != "" {
		users := repository.NewUserRepo(db)
		u, err := users.GetByEmail(ctx, adminEmail)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("no user with email %s; register first", adminEmail)
			}
			return err
		}
		if err := users.GrantRole(ctx, u.ID, model.RoleAdmin); err != nil {
			return fmt.Errorf("grant admin: %w", err)
		}
		logger.Info("admin role granted", zap.String("user_id", u.ID), zap.String("email", u.Email))
	}
	return nil
}
