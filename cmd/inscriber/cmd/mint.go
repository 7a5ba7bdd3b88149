package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	nlogger "github.com/neutron-org/neutron-logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ethinscribe/inscriber/internal/app"
	"github.com/ethinscribe/inscriber/internal/config"
	"github.com/ethinscribe/inscriber/internal/inscribe"
	"github.com/ethinscribe/inscriber/internal/protocol"
	"github.com/ethinscribe/inscriber/internal/webserver"
)

const (
	mainContext = "main"

	TransactionsFlagName = "transactions"
	ConcurrencyFlagName  = "concurrency"
	PrivateKeyFlagName   = "private-key"
	RPCURLFlagName       = "rpc-url"
	YesFlagName          = "yes"

	mainnetChainID = 1
)

// MintCmd represents the mint command
var MintCmd = &cobra.Command{
	Use:   "mint <message>",
	Args:  cobra.ExactArgs(1),
	Short: "Send mint inscriptions until the target transaction count confirms",
	Long: `Send mint inscriptions until the target transaction count confirms.

The message must be a valid JSON mint operation, for example:
  {"p":"fair-20","op":"mint","tick":"brr","amt":"1000"}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var msg protocol.Mint
		if err := protocol.DecodePayload(args[0], &msg); err != nil {
			return fmt.Errorf("invalid mint message: %w", err)
		}

		calldata, err := msg.Calldata()
		if err != nil {
			return fmt.Errorf("failed to encode mint message: %w", err)
		}

		runInscriber(cmd, calldata)
		return nil
	},
}

func init() {
	MintCmd.Flags().Uint64(TransactionsFlagName, 0, "number of transactions to send (overrides INSCRIBER_TRANSACTIONS)")
	MintCmd.Flags().Uint64(ConcurrencyFlagName, 0, "number of transactions in flight at once (overrides INSCRIBER_CONCURRENCY)")
	MintCmd.Flags().String(PrivateKeyFlagName, "", "hex private key to sign with (overrides INSCRIBER_PRIVATE_KEY)")
	MintCmd.Flags().String(RPCURLFlagName, "", "JSON-RPC endpoint (overrides INSCRIBER_CHAIN_RPC_ADDRESS)")
	MintCmd.Flags().Bool(YesFlagName, false, "skip the mainnet acknowledgement prompt")
	rootCmd.AddCommand(MintCmd)
}

// runInscriber wires storage, chain client and engine together and drives a
// full inscription run for the given calldata.
func runInscriber(cobraCmd *cobra.Command, calldata []byte) {
	logRegistry, err := nlogger.NewRegistry(
		mainContext,
		app.AppContext,
		app.EngineContext,
		app.ChainClientContext,
		app.StorageContext,
		webserver.ServerContext,
		webserver.MonitoringLoggerContext,
	)
	if err != nil {
		log.Fatalf("couldn't initialize loggers registry: %s", err)
	}
	logger := logRegistry.Get(mainContext)
	logger.Info("inscriber starts...")

	cfg, err := config.NewInscriberConfig()
	if err != nil {
		logger.Fatal("cannot initialize inscriber config", zap.Error(err))
	}
	applyFlagOverrides(cobraCmd, &cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid inscriber config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wg := &sync.WaitGroup{}

	broadcaster, err := app.NewDefaultBroadcaster(ctx, cfg, logRegistry)
	if err != nil {
		logger.Fatal("failed to create NewDefaultBroadcaster", zap.Error(err))
	}

	if broadcaster.ChainID() == mainnetChainID && !skipMainnetPrompt(cobraCmd) {
		if !confirmMainnet() {
			logger.Info("mainnet run not acknowledged, exiting")
			return
		}
	}

	// The storage has to be shared because of the LevelDB single process restriction.
	store, err := app.NewDefaultStorage(cfg, logRegistry.Get(app.StorageContext))
	if err != nil {
		logger.Fatal("failed to create NewDefaultStorage", zap.Error(err))
	}
	defer func(store inscribe.Storage) {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", zap.Error(err))
		}
	}(store)

	engine, err := app.NewDefaultEngine(ctx, cfg, broadcaster, calldata, logRegistry)
	if err != nil {
		logger.Fatal("failed to create NewDefaultEngine", zap.Error(err))
	}

	http.Handle("/metrics", webserver.NewPromWrapper(logRegistry, store))
	go func() {
		err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.PrometheusPort), nil)
		if err != nil {
			logger.Fatal("failed to serve metrics", zap.Error(err))
		}
	}()
	logger.Info("metrics handler set up")

	wg.Add(1)
	go func() {
		defer wg.Done()

		if err := webserver.Run(ctx, logRegistry, store, int(cfg.WebserverPort)); err != nil {
			logger.Error("WebServer exited with an error", zap.Error(err))
			cancel()
		}
	}()

	events := make(chan inscribe.Inscription)

	wg.Add(1)
	go func() {
		defer wg.Done()

		// The engine closes the events channel once the run drains.
		if err := engine.Run(ctx, events); err != nil {
			if ctx.Err() == nil {
				logger.Error("Engine exited with an error", zap.Error(err))
			}
			cancel()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()

		for {
			select {
			case event, ok := <-events:
				// the engine closes events only after a full drain; on
				// failure it cancels ctx instead
				if !ok {
					return
				}
				consumeEvent(cfg, store, logger, event)
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

		s := <-sigs
		logger.Info("Received termination signal, gracefully shutting down...",
			zap.String("signal", s.String()))
		cancel()
	}()

	wg.Wait()
}

// consumeEvent logs and persists one confirmed inscription.
func consumeEvent(cfg config.InscriberConfig, store inscribe.Storage, logger *zap.Logger, event inscribe.Inscription) {
	fields := []zap.Field{
		zap.Uint64("nonce", event.Nonce),
		zap.String("tx_hash", event.TxHash.Hex()),
	}
	if cfg.ExplorerURL != "" {
		txURL := fmt.Sprintf("%s/tx/%s", strings.TrimSuffix(cfg.ExplorerURL, "/"), event.TxHash.Hex())
		fields = append(fields, zap.String("tx_url", txURL))
	}
	logger.Info("inscribed", fields...)

	if err := store.InsertInscription(inscribe.NewRecord(event)); err != nil {
		logger.Error("failed to store inscription", zap.Error(err), zap.String("tx_hash", event.TxHash.Hex()))
	}
}

func applyFlagOverrides(cobraCmd *cobra.Command, cfg *config.InscriberConfig) {
	flags := cobraCmd.Flags()
	if v, err := flags.GetUint64(TransactionsFlagName); err == nil && v > 0 {
		cfg.Transactions = v
	}
	if v, err := flags.GetUint64(ConcurrencyFlagName); err == nil && v > 0 {
		cfg.Concurrency = v
	}
	if v, err := flags.GetString(PrivateKeyFlagName); err == nil && v != "" {
		cfg.PrivateKey = v
	}
	if v, err := flags.GetString(RPCURLFlagName); err == nil && v != "" {
		cfg.Chain.RPCAddress = v
	}
}

func skipMainnetPrompt(cobraCmd *cobra.Command) bool {
	yes, err := cobraCmd.Flags().GetBool(YesFlagName)
	return err == nil && yes
}

func confirmMainnet() bool {
	fmt.Println("you are targeting ethereum mainnet and this run will spend real ether. To proceed, type [y/n]:")

	input, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}

	answer := strings.ToLower(strings.TrimSpace(input))
	return answer == "y" || answer == "yes"
}
