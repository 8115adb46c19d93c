package cmd

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"go.dot.industries/bootvault/internal/config"
	"go.dot.industries/bootvault/internal/directory"
	"go.dot.industries/bootvault/internal/reconciler"
	"go.dot.industries/bootvault/internal/ui"
	"go.dot.industries/bootvault/internal/vault"
	"go.dot.industries/bootvault/internal/vaultspec"
)

var (
	flagVaultJSON string
	flagVaultFile string
	flagParallel  int
)

func init() {
	reconcileCmd.Flags().StringVar(&flagVaultJSON, "vault-json", "", "JSON vault specification, e.g. '{\"vault1\": [\"itemA\"]}'")
	reconcileCmd.Flags().StringVar(&flagVaultFile, "vault-file", "", "path to a JSON vault specification file")
	reconcileCmd.Flags().IntVar(&flagParallel, "parallel", 4, "maximum nodes reconciled concurrently")

	rootCmd.AddCommand(reconcileCmd)
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile NODE...",
	Short: "Authorize nodes on their vault items once they are discoverable",
	Long: `reconcile waits for each node's client identity to appear in the
central directory, then adds the node to the authorized-clients filter of
every vault item in the bootstrap specification.

The specification comes from the first of: the [bootstrap.items] table in
bootvault.toml, --vault-json, or --vault-file. Lower-priority inputs that
are also set are ignored with a warning.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReconcile,
}

func runReconcile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	items, err := vaultspec.Normalize(cfg.Bootstrap.Items)
	if err != nil {
		return fmt.Errorf("config bootstrap.items: %w", err)
	}

	opts := config.Options{
		VaultItems: items,
		VaultJSON:  flagVaultJSON,
		VaultFile:  flagVaultFile,
	}

	interval, err := pollInterval(cfg)
	if err != nil {
		return err
	}

	vaultAddr, mount, vaultToken := vaultSettings(cfg)
	store, err := vault.NewClient(vaultAddr, mount, vaultToken)
	if err != nil {
		return err
	}

	dirAddr, dirToken := directorySettings(cfg)
	searcher, err := directory.NewClient(dirAddr, directory.WithToken(dirToken))
	if err != nil {
		return err
	}

	u := ui.NewLogger(log.Logger)

	// Runs are independent per node; fan out with bounded parallelism.
	g := new(errgroup.Group)
	g.SetLimit(flagParallel)

	for _, node := range args {
		node := node
		r := reconciler.New(
			config.NewResolver(opts),
			u,
			store,
			searcher,
			reconciler.WithPollInterval(interval),
		)

		g.Go(func() error {
			if err := r.Run(cmd.Context(), node); err != nil {
				return fmt.Errorf("reconciling node %q: %w", node, err)
			}
			return nil
		})
	}

	return g.Wait()
}

// pollInterval parses the configured directory poll interval; zero means
// the poller's default.
func pollInterval(cfg *config.Config) (time.Duration, error) {
	if cfg.Bootstrap.PollInterval == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(cfg.Bootstrap.PollInterval)
	if err != nil {
		return 0, fmt.Errorf("config bootstrap.poll_interval: %w", err)
	}

	return d, nil
}
