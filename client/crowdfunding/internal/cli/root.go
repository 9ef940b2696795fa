package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
	"github.com/lmittmann/tint"
	"github.com/malbeclabs/crowdfunding/config"
	"github.com/malbeclabs/crowdfunding/pkg/rpc"
	"github.com/malbeclabs/crowdfunding/smartcontract/sdk/go/crowdfunding"
	"github.com/spf13/cobra"
)

type ExitCode int

const (
	exitCodeSuccess = 0
	exitCodeError   = 1
)

// ClientFactory builds an SDK client for the resolved network. A nil signer means the command
// only reads.
type ClientFactory func(log *slog.Logger, network *config.NetworkConfig, signer *solana.PrivateKey) *crowdfunding.Client

type App struct {
	Out       io.Writer
	Err       io.Writer
	Clock     clockwork.Clock
	NewClient ClientFactory
}

func defaultClientFactory(log *slog.Logger, network *config.NetworkConfig, signer *solana.PrivateKey) *crowdfunding.Client {
	return crowdfunding.New(log, rpc.NewWithRetries(network.RPCURL, &rpc.RetryOptions{Logger: log}), signer, network.ProgramID)
}

func Run() ExitCode {
	app := &App{
		Out:       os.Stdout,
		Err:       os.Stderr,
		Clock:     clockwork.NewRealClock(),
		NewClient: defaultClientFactory,
	}
	if err := app.RootCommand().Execute(); err != nil {
		return exitCodeError
	}
	return exitCodeSuccess
}

type rootFlags struct {
	verbose     bool
	env         string
	rpcURL      string
	programID   string
	keypairPath string
	envFile     string
}

func (a *App) RootCommand() *cobra.Command {
	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:           "crowdfunding",
		Short:         "Create, fund and withdraw crowdfunding campaigns.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Help(); err != nil {
				return fmt.Errorf("failed to show help: %w", err)
			}
			return nil
		},
	}
	rootCmd.SetOut(a.Out)
	rootCmd.SetErr(a.Err)

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "set debug logging level")
	rootCmd.PersistentFlags().StringVarP(&flags.env, "env", "e", "", "the network environment (localnet, devnet, testnet, mainnet-beta); defaults to CROWDFUNDING_ENV or devnet")
	rootCmd.PersistentFlags().StringVar(&flags.rpcURL, "rpc-url", "", "override the rpc url of the environment")
	rootCmd.PersistentFlags().StringVar(&flags.programID, "program-id", "", "override the program id of the environment")
	rootCmd.PersistentFlags().StringVarP(&flags.keypairPath, "keypair", "k", "", "path to the signer keypair; defaults to CROWDFUNDING_KEYPAIR or ~/.config/solana/id.json")
	rootCmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "optional dotenv file to load defaults from")

	rootCmd.AddCommand(
		a.initCommand(flags),
		a.createCommand(flags),
		a.contributeCommand(flags),
		a.withdrawCommand(flags),
		a.getCommand(flags),
		a.listCommand(flags),
	)
	return rootCmd
}

// session is what a subcommand needs once the root flags are resolved.
type session struct {
	log    *slog.Logger
	client *crowdfunding.Client
	ctx    context.Context
	cancel context.CancelFunc
}

func (s *session) Close() {
	s.client.Close()
	s.cancel()
}

func (a *App) newSession(cmd *cobra.Command, flags *rootFlags, withSigner bool) (*session, error) {
	log := newLogger(a.Err, flags.verbose)

	serviceEnv, err := config.LoadServiceEnv(flags.envFile)
	if err != nil {
		return nil, err
	}
	env := flags.env
	if env == "" {
		env = serviceEnv.Env
	}
	if env == "" {
		env = config.EnvDevnet
	}
	network, err := config.NetworkConfigForEnv(env)
	if err != nil {
		return nil, err
	}
	if flags.rpcURL != "" {
		network.RPCURL = flags.rpcURL
	}
	if flags.programID != "" {
		network.ProgramID, err = solana.PublicKeyFromBase58(flags.programID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse program id: %w", err)
		}
	}

	var signer *solana.PrivateKey
	if withSigner {
		path := flags.keypairPath
		if path == "" {
			path = serviceEnv.KeypairPath
		}
		if path == "" && serviceEnv.PrivateKey == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to resolve home directory: %w", err)
			}
			path = filepath.Join(home, ".config", "solana", "id.json")
		}
		key, err := config.LoadSigner(serviceEnv.PrivateKey, path)
		if err != nil {
			return nil, err
		}
		signer = &key
	}

	log.Debug("Resolved network", "env", network.Moniker, "rpcURL", network.RPCURL, "programID", network.ProgramID)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)

	return &session{log: log, client: a.NewClient(log, network, signer), ctx: ctx, cancel: cancel}, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}
