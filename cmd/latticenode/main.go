package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erigontech/erigon-lib/log/v3"
	"github.com/spf13/cobra"

	"github.com/blocklattice/ledger/bootstrap"
	"github.com/blocklattice/ledger/store"
	"github.com/blocklattice/ledger/validator"
)

var (
	dataDir    string
	listenAddr string
	blockCount int
	ioTimeout  time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "latticenode",
	Short: "Run a block-lattice ledger node's bootstrap subsystem",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Bind the bootstrap listener and serve inbound sessions until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context(), log.Root())
	},
}

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap <addr>",
	Short: "Run one outbound bootstrap session against a peer and exit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBootstrap(cmd.Context(), log.Root(), args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "datadir", "./latticenode-data", "directory for the MDBX block store")
	rootCmd.PersistentFlags().IntVar(&blockCount, "bootstrap.blockcount", bootstrap.DefaultConfig().BlockCount, "pull flush buffer size, in blocks")
	rootCmd.PersistentFlags().DurationVar(&ioTimeout, "bootstrap.iotimeout", bootstrap.DefaultConfig().IOTimeout, "per-operation socket deadline")
	serveCmd.Flags().StringVar(&listenAddr, "bootstrap.listen", bootstrap.DefaultConfig().ListenAddr, "address the bootstrap listener binds")

	rootCmd.AddCommand(serveCmd, bootstrapCmd)
}

func config() bootstrap.Config {
	return bootstrap.Config{
		ListenAddr: listenAddr,
		BlockCount: blockCount,
		IOTimeout:  ioTimeout,
	}
}

func runServe(ctx context.Context, logger log.Logger) error {
	db, err := store.Open(dataDir, logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	v := validator.NewReference()
	listener, err := bootstrap.NewListener(db, v, config(), logger)
	if err != nil {
		return fmt.Errorf("starting listener: %w", err)
	}
	defer listener.Close()
	logger.Info("bootstrap listener bound", "addr", listener.Addr().String())

	return listener.Serve(ctx)
}

func runBootstrap(ctx context.Context, logger log.Logger, addr string) error {
	db, err := store.Open(dataDir, logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	v := validator.NewReference()
	done := make(chan struct{})
	initiator := bootstrap.NewInitiator(db, v, config(), logger)
	initiator.OnCompletion(func(inProgressNow bool) { close(done) })
	initiator.Bootstrap(ctx, addr)

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
