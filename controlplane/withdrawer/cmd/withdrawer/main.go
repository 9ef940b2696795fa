package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/crowdfunding/config"
	"github.com/malbeclabs/crowdfunding/controlplane/withdrawer/internal/metrics"
	"github.com/malbeclabs/crowdfunding/controlplane/withdrawer/internal/withdrawer"
	"github.com/malbeclabs/crowdfunding/pkg/rpc"
	"github.com/malbeclabs/crowdfunding/smartcontract/sdk/go/crowdfunding"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultInterval           = 1 * time.Minute
	defaultMinBalanceLamports = 100_000
)

var (
	env                = flag.String("env", "", "the environment to run the withdrawer in (localnet, devnet, testnet, mainnet-beta)")
	rpcURL             = flag.String("rpc-url", "", "the url of the solana rpc, overrides the environment default")
	programID          = flag.String("program-id", "", "the id of the crowdfunding program, overrides the environment default")
	keypairPath        = flag.String("keypair", "", "the path to the campaign owner keypair")
	interval           = flag.Duration("interval", defaultInterval, "the interval to check for expired campaigns")
	minBalanceLamports = flag.Uint64("min-balance-lamports", defaultMinBalanceLamports, "owner balance below which withdrawals are skipped")
	dotenvFile         = flag.String("env-file", ".env", "optional dotenv file to load settings from")
	verbose            = flag.Bool("verbose", false, "enable verbose logging")
	showVersion        = flag.Bool("version", false, "Print the version of the withdrawer and exit")
	metricsEnable      = flag.Bool("metrics-enable", false, "Enable prometheus metrics")
	metricsAddr        = flag.String("metrics-addr", ":8080", "Address to listen on for prometheus metrics")

	// Set by LDFLAGS
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("version: %s, commit: %s, date: %s\n", version, commit, date)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: true,
	}))

	serviceEnv, err := config.LoadServiceEnv(*dotenvFile)
	if err != nil {
		log.Error("Failed to load service environment", "error", err)
		os.Exit(1)
	}
	if *env == "" {
		*env = serviceEnv.Env
	}
	if *keypairPath == "" {
		*keypairPath = serviceEnv.KeypairPath
	}

	// Validate required flags.
	if *env == "" {
		log.Error("Missing required flag", "flag", "env")
		flag.Usage()
		os.Exit(1)
	}
	if *keypairPath == "" && serviceEnv.PrivateKey == "" {
		log.Error("Missing required flag", "flag", "keypair")
		flag.Usage()
		os.Exit(1)
	}

	networkConfig, err := config.NetworkConfigForEnv(*env)
	if err != nil {
		log.Error("Failed to get network config", "error", err)
		flag.Usage()
		os.Exit(1)
	}
	if *rpcURL != "" {
		networkConfig.RPCURL = *rpcURL
	}
	if *programID != "" {
		networkConfig.ProgramID, err = solana.PublicKeyFromBase58(*programID)
		if err != nil {
			log.Error("Failed to parse program ID", "error", err)
			os.Exit(1)
		}
	}

	keypair, err := config.LoadSigner(serviceEnv.PrivateKey, *keypairPath)
	if err != nil {
		log.Error("Failed to load owner keypair", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	m.Register(prometheus.DefaultRegisterer)

	// Set up prometheus metrics server if enabled.
	if *metricsEnable {
		metrics.BuildInfo.WithLabelValues(version, commit, date).Set(1)
		go func() {
			listener, err := net.Listen("tcp", *metricsAddr)
			if err != nil {
				log.Error("Failed to start prometheus metrics server listener", "error", err)
				return
			}
			log.Info("Prometheus metrics server listening", "address", listener.Addr().String())
			http.Handle("/metrics", promhttp.Handler())
			if err := http.Serve(listener, nil); err != nil {
				log.Error("Failed to start prometheus metrics server", "error", err)
			}
		}()
	}

	log.Info("Starting withdrawer",
		"version", version,
		"env", networkConfig.Moniker,
		"rpcURL", networkConfig.RPCURL,
		"programID", networkConfig.ProgramID,
		"owner", keypair.PublicKey(),
		"interval", *interval,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rpcClient := rpc.NewWithRetries(networkConfig.RPCURL, &rpc.RetryOptions{Logger: log})
	client := crowdfunding.New(log, rpcClient, &keypair, networkConfig.ProgramID)
	defer client.Close()

	w, err := withdrawer.New(withdrawer.Config{
		Logger:             log,
		Client:             client,
		Metrics:            m,
		Owner:              keypair.PublicKey(),
		Interval:           *interval,
		MinBalanceLamports: *minBalanceLamports,
	})
	if err != nil {
		log.Error("failed to create withdrawer", "error", err)
		os.Exit(1)
	}

	if err := w.Run(ctx); err != nil {
		log.Error("withdrawer exited with error", "error", err)
		os.Exit(1)
	}
}
