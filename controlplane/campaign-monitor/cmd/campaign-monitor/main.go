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
	"strings"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/malbeclabs/crowdfunding/config"
	"github.com/malbeclabs/crowdfunding/controlplane/campaign-monitor/internal/campaigns"
	"github.com/malbeclabs/crowdfunding/controlplane/campaign-monitor/internal/worker"
	"github.com/malbeclabs/crowdfunding/pkg/rpc"
	"github.com/malbeclabs/crowdfunding/smartcontract/sdk/go/crowdfunding"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultInterval        = 1 * time.Minute
	defaultBalanceInterval = 5 * time.Minute
)

var (
	env              = flag.String("env", "", "the environment to run the component in (localnet, devnet, testnet, mainnet-beta)")
	rpcURL           = flag.String("rpc-url", "", "the url of the solana rpc, overrides the environment default")
	programID        = flag.String("program-id", "", "the id of the crowdfunding program, overrides the environment default")
	interval         = flag.Duration("interval", defaultInterval, "interval to execute campaign watcher ticks")
	balanceAccounts  = flag.String("balance-accounts", "", "comma separated label=pubkey pairs of wallets to track balances for")
	balanceInterval  = flag.Duration("balance-interval", defaultBalanceInterval, "interval to execute balance watcher ticks")
	balanceThreshold = flag.Float64("balance-threshold", 0.1, "balance in SOL below which a warning is logged")
	dotenvFile       = flag.String("env-file", ".env", "optional dotenv file to load influx credentials from")
	verbose          = flag.Bool("verbose", false, "enable verbose logging")
	showVersion      = flag.Bool("version", false, "Print the version of the campaign-monitor and exit")
	metricsAddr      = flag.String("metrics-addr", ":8080", "Address to listen on for prometheus metrics")

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

	// Initialize logger.
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	serviceEnv, err := config.LoadServiceEnv(*dotenvFile)
	if err != nil {
		log.Error("Failed to load service environment", "error", err)
		os.Exit(1)
	}
	if *env == "" {
		*env = serviceEnv.Env
	}
	if *env == "" {
		log.Error("Missing required flag", "flag", "env")
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
			log.Error("Failed to parse program id", "error", err)
			flag.Usage()
			os.Exit(1)
		}
	}

	accounts, err := parseBalanceAccounts(*balanceAccounts)
	if err != nil {
		log.Error("Failed to parse balance accounts", "error", err)
		flag.Usage()
		os.Exit(1)
	}

	// Initialize crowdfunding client. The monitor only reads, so it has no signer.
	rpcClient := rpc.NewWithRetries(networkConfig.RPCURL, &rpc.RetryOptions{Logger: log})
	client := crowdfunding.New(log, rpcClient, nil, networkConfig.ProgramID)
	defer client.Close()

	// Initialize prometheus metrics server.
	worker.MetricBuildInfo.WithLabelValues(version, commit, date).Set(1)
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

	// Initialize InfluxDB writer.
	var influxWriter campaigns.InfluxWriter
	if serviceEnv.InfluxEnabled() {
		bucket := serviceEnv.InfluxBucket
		if bucket == "" {
			bucket = "crowdfunding-" + networkConfig.Moniker
		}
		influxClient := influxdb2.NewClient(serviceEnv.InfluxURL, serviceEnv.InfluxToken)
		defer influxClient.Close()
		influxWriter = influxClient.WriteAPI(serviceEnv.InfluxOrg, bucket)
		log.Info("Writing campaign snapshots to InfluxDB", "url", serviceEnv.InfluxURL, "bucket", bucket)
	} else {
		log.Info("INFLUX_URL or INFLUX_TOKEN not set, not enabling writes to InfluxDB")
	}

	// Initialize worker.
	w, err := worker.New(&worker.Config{
		Logger:           log,
		Crowdfunding:     client,
		Interval:         *interval,
		InfluxWriter:     influxWriter,
		Env:              networkConfig.Moniker,
		BalanceAccounts:  accounts,
		BalanceThreshold: *balanceThreshold,
		BalanceInterval:  *balanceInterval,
	})
	if err != nil {
		log.Error("Failed to create worker", "error", err)
		os.Exit(1)
	}

	// Start the worker.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := w.Run(ctx); err != nil {
		log.Error("Failed to run worker", "error", err)
		os.Exit(1)
	}
}

func parseBalanceAccounts(s string) (map[string]solana.PublicKey, error) {
	accounts := make(map[string]solana.PublicKey)
	if s == "" {
		return accounts, nil
	}
	for _, pair := range strings.Split(s, ",") {
		label, key, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || label == "" {
			return nil, fmt.Errorf("invalid balance account %q, expected label=pubkey", pair)
		}
		pk, err := solana.PublicKeyFromBase58(key)
		if err != nil {
			return nil, fmt.Errorf("invalid pubkey for %s: %w", label, err)
		}
		accounts[label] = pk
	}
	return accounts, nil
}
