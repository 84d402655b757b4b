package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wadjakorntonsri/go-linkbio/pkg/adapters/client"
	"github.com/wadjakorntonsri/go-linkbio/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-linkbio/pkg/app"
	"github.com/wadjakorntonsri/go-linkbio/pkg/config"
	"github.com/wadjakorntonsri/go-linkbio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-linkbio/pkg/core/reorder"
	"github.com/wadjakorntonsri/go-linkbio/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "linkbio",
		Short:         "Maintenance tasks for the link-in-bio database",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newExportCmd(), newImportCmd(), newDiagnoseCmd(), newRepairCmd(), newMoveCmd())
	return root
}

func openRepo() (*config.Config, *sqlite.SQLiteRepository, error) {
	cfg := config.Load()
	if err := logger.Init(cfg.LogLevel, true); err != nil {
		return nil, nil, err
	}
	repo, err := app.OpenRepository(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	return cfg, repo, nil
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Dump every link as JSON to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, repo, err := openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			links, err := repo.Dump(cmd.Context())
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), links)
		},
	}
}

func newImportCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Restore links from an export file, order values included",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, repo, err := openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open file: %w", err)
			}
			defer f.Close()

			imported, err := importLinks(cmd.Context(), repo, f)
			logger.Get().Info("import finished", zap.Int("imported", imported))
			return err
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "JSON file to import")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// importLinks skips links whose id already exists.
func importLinks(ctx context.Context, repo *sqlite.SQLiteRepository, r io.Reader) (int, error) {
	var links []domain.Link
	if err := json.NewDecoder(r).Decode(&links); err != nil {
		return 0, fmt.Errorf("decode failed: %w", err)
	}

	log := logger.Get()
	count := 0
	for i := range links {
		l := &links[i]
		if l.ID != 0 {
			existing, err := repo.GetByID(ctx, l.ID)
			if err != nil {
				return count, err
			}
			if existing != nil {
				log.Info("skipping existing link", zap.Int64("link_id", l.ID))
				continue
			}
		}
		if err := repo.Import(ctx, l); err != nil {
			log.Warn("failed to import link", zap.Int64("link_id", l.ID), zap.Error(err))
			continue
		}
		count++
	}
	return count, nil
}

func newDiagnoseCmd() *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Report ordering anomalies for one owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, repo, err := openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			report, err := app.NewOrdering(cfg, repo, logger.Get()).Diagnose(cmd.Context(), owner)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner id (account email)")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newRepairCmd() *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Renumber one owner's links to 0..N-1 keeping their relative order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, repo, err := openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			result, err := app.NewOrdering(cfg, repo, logger.Get()).Repair(cmd.Context(), owner)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner id (account email)")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newMoveCmd() *cobra.Command {
	var (
		linkID   int64
		from, to int
		token    string
	)
	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move one link through the running server's API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if err := logger.Init(cfg.LogLevel, true); err != nil {
				return err
			}
			if token == "" {
				token = os.Getenv("AUTH_TOKEN")
			}
			api := client.New(cfg.BaseURL, token, nil)
			return dragAndDrop(cmd.Context(), api, cfg.ReorderDebounce, linkID, from, to)
		},
	}
	cmd.Flags().Int64Var(&linkID, "id", 0, "link id")
	cmd.Flags().IntVar(&from, "from", 0, "current index")
	cmd.Flags().IntVar(&to, "to", 0, "target index")
	cmd.Flags().StringVar(&token, "token", "", "auth_token cookie value (defaults to $AUTH_TOKEN)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// dragAndDrop runs a single gesture through a reorder session and waits
// for the debounced commit.
func dragAndDrop(ctx context.Context, mover reorder.Mover, window time.Duration, linkID int64, from, to int) error {
	done := make(chan error, 1)
	commit := func(d reorder.Drop) {
		if !d.NeedsMove() {
			done <- nil
			return
		}
		done <- mover.MoveLink(ctx, d.LinkID, *d.Destination)
	}

	session := reorder.NewSession(window, commit)
	defer session.Cleanup()

	session.Start()
	session.End(reorder.Drop{LinkID: linkID, Source: from, Destination: &to})

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("move failed: %w", err)
		}
		logger.Get().Info("link moved", zap.Int64("link_id", linkID), zap.Int("index", to))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
