// Command fee-router operates the fee distribution engine: one-time setup,
// fee claims, and the daily start / process / complete cycle.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"

	"github.com/ANAVHEOBA/meteora-fee-router/distribution"
	"github.com/ANAVHEOBA/meteora-fee-router/router"
	solanago "github.com/ANAVHEOBA/meteora-fee-router/solana"
)

const usage = `usage: fee-router [flags] <action>

actions:
  init-policy     persist the distribution policy
  init-global     create the lifetime totals record
  init-treasury   create and record the treasury token account
  init-position   create the honorary quote-only fee position
  claim           claim position fees into the treasury
  start           open today's distribution day
  process         process one page of investor streams
  complete        close the day, paying the creator remainder
  abort           force-close a stuck day (policy authority only)
  run             start, page through all investors, complete
  status          print policy, global and treasury state
`

func main() {
	_ = godotenv.Load()

	var (
		rpcURL      = pflag.String("rpc-url", rpc.MainNetBeta_RPC, "solana rpc endpoint")
		wsURL       = pflag.String("ws-url", rpc.MainNetBeta_WS, "solana websocket endpoint")
		dbPath      = pflag.String("db", "fee-router.db", "state database path")
		quoteMint   = pflag.String("quote-mint", "", "quote token mint")
		vestingMint = pflag.String("vesting-mint", "", "mint vested by investor streams")
		pool        = pflag.String("pool", "", "damm v2 pool address")
		creator     = pflag.String("creator", "", "creator wallet (init-policy)")
		shareBps    = pflag.Uint64("share-bps", 0, "max investor fee share in bps (init-policy)")
		dailyCap    = pflag.Uint64("daily-cap", 0, "daily payout cap, 0 = unlimited (init-policy)")
		minPayout   = pflag.Uint64("min-payout", 0, "minimum investor payout (init-policy)")
		y0          = pflag.Uint64("y0", 0, "initial total allocation (init-policy)")
		day         = pflag.Int64("day", 0, "distribution day unix timestamp, 0 = today")
		pageSize    = pflag.Int("page-size", distribution.DefaultMaxPageSize, "maximum investors per page")
		cooldown    = pflag.Duration("claim-cooldown", distribution.DefaultClaimCooldown, "minimum interval between claims")
		simulate    = pflag.Bool("simulate", false, "simulate transactions instead of sending")
		verbose     = pflag.Bool("verbose", false, "debug logging")
	)
	pflag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))
	slog.SetDefault(log)

	if pflag.NArg() != 1 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	action := pflag.Arg(0)

	if err := run(action, log, config{
		rpcURL:      *rpcURL,
		wsURL:       *wsURL,
		dbPath:      *dbPath,
		quoteMint:   *quoteMint,
		vestingMint: *vestingMint,
		pool:        *pool,
		creator:     *creator,
		shareBps:    *shareBps,
		dailyCap:    *dailyCap,
		minPayout:   *minPayout,
		y0:          *y0,
		day:         *day,
		pageSize:    *pageSize,
		cooldown:    *cooldown,
		simulate:    *simulate,
	}); err != nil {
		log.Error("action failed", "action", action, "err", err)
		os.Exit(1)
	}
}

type config struct {
	rpcURL      string
	wsURL       string
	dbPath      string
	quoteMint   string
	vestingMint string
	pool        string
	creator     string
	shareBps    uint64
	dailyCap    uint64
	minPayout   uint64
	y0          uint64
	day         int64
	pageSize    int
	cooldown    time.Duration
	simulate    bool
}

func walletFromEnv(name string) (*solana.Wallet, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return nil, fmt.Errorf("environment variable %s is not set", name)
	}
	key, err := solana.PrivateKeyFromBase58(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return &solana.Wallet{PrivateKey: key}, nil
}

func run(action string, log *slog.Logger, cfg config) error {
	ctx := context.Background()

	payer, err := walletFromEnv("FEE_ROUTER_PAYER_KEY")
	if err != nil {
		return err
	}
	authority, err := walletFromEnv("FEE_ROUTER_AUTHORITY_KEY")
	if err != nil {
		return err
	}

	quoteMint, err := solana.PublicKeyFromBase58(cfg.quoteMint)
	if err != nil {
		return fmt.Errorf("parse quote mint: %w", err)
	}
	poolKey, err := solana.PublicKeyFromBase58(cfg.pool)
	if err != nil {
		return fmt.Errorf("parse pool: %w", err)
	}

	store, err := distribution.OpenStore(cfg.dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	rpcClient := rpc.New(cfg.rpcURL)
	wsClient, err := ws.Connect(ctx, cfg.wsURL)
	if err != nil {
		return fmt.Errorf("connect websocket: %w", err)
	}
	defer wsClient.Close()

	opts := []router.Option{
		router.WithLogger(log),
		router.WithSimulate(cfg.simulate),
		router.WithMaxPageSize(cfg.pageSize),
		router.WithClaimCooldown(cfg.cooldown),
	}
	if cfg.vestingMint != "" {
		vestingMint, err := solana.PublicKeyFromBase58(cfg.vestingMint)
		if err != nil {
			return fmt.Errorf("parse vesting mint: %w", err)
		}
		opts = append(opts, router.WithVestingMint(vestingMint))
	}

	feeRouter, err := router.NewFeeRouter(ctx, rpcClient, wsClient, store,
		payer, authority, quoteMint, poolKey, opts...)
	if err != nil {
		return err
	}

	day := cfg.day
	if day == 0 {
		day = time.Now().Unix()
	}

	switch action {
	case "init-policy":
		creator, err := solana.PublicKeyFromBase58(cfg.creator)
		if err != nil {
			return fmt.Errorf("parse creator: %w", err)
		}
		return feeRouter.InitializePolicy(ctx, creator, cfg.shareBps, cfg.dailyCap, cfg.minPayout, cfg.y0)
	case "init-global":
		return feeRouter.InitializeGlobal(ctx)
	case "init-treasury":
		return feeRouter.InitializeTreasury(ctx)
	case "init-position":
		_, err := feeRouter.InitializeHonoraryPosition(ctx)
		return err
	case "claim":
		claimed, err := feeRouter.ClaimFees(ctx)
		if err != nil {
			return err
		}
		log.Info("claim succeeded",
			"quote_claimed", claimed,
			"quote_claimed_ui", solanago.AmountToUI(claimed, feeRouter.QuoteDecimals()),
		)
		return nil
	case "start":
		daily, err := feeRouter.StartDay(ctx)
		if err != nil {
			return err
		}
		log.Info("day started", "day", daily.DistributionDay, "amount", daily.TotalAmountToDistribute, "investors", daily.TotalInvestors)
		return nil
	case "process":
		daily, err := feeRouter.Engine().Daily(ctx, day)
		if err != nil {
			return err
		}
		// page from the stream set frozen at day start, never from a fresh
		// enumeration
		streams := daily.NextPage(cfg.pageSize)
		if len(streams) == 0 {
			return fmt.Errorf("no unprocessed investors (%d of %d)", daily.InvestorsProcessed, daily.TotalInvestors)
		}
		result, err := feeRouter.ProcessPage(ctx, day, streams)
		if err != nil {
			return err
		}
		log.Info("page processed",
			"investors", len(streams),
			"paid", result.Calculation.TotalDistributed,
			"paid_ui", solanago.AmountToUI(result.Calculation.TotalDistributed, feeRouter.QuoteDecimals()),
			"dust", result.Calculation.DustAmount,
			"snapshot_errors", len(result.SnapshotErrors),
		)
		return nil
	case "complete":
		return feeRouter.CompleteDay(ctx, day)
	case "abort":
		return feeRouter.AbortDay(ctx, day)
	case "run":
		return feeRouter.DistributeDay(ctx)
	case "status":
		return printStatus(ctx, log, feeRouter, rpcClient)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown action %q", action)
	}
}

func printStatus(ctx context.Context, log *slog.Logger, feeRouter *router.FeeRouter, rpcClient *rpc.Client) error {
	engine := feeRouter.Engine()

	if policy, err := engine.Policy(ctx); err == nil {
		log.Info("policy",
			"quote_mint", policy.QuoteMint,
			"creator", policy.CreatorAccount,
			"share_bps", policy.InvestorFeeShareBps,
			"daily_cap", policy.DailyCapAmount,
			"min_payout", policy.MinPayoutAmount,
			"y0", policy.InitialTotalAllocation,
		)
	} else {
		log.Warn("no policy", "err", err)
	}

	if global, err := engine.Global(ctx); err == nil {
		log.Info("global",
			"last_day", global.LastDistributionDay,
			"distributions", global.TotalDistributionsCompleted,
			"lifetime_distributed", global.LifetimeAmountDistributed,
		)
	}

	if treasury, err := engine.TreasuryInfo(ctx); err == nil {
		log.Info("treasury",
			"account", treasury.TreasuryAccount,
			"total_claimed", treasury.TotalFeesClaimed,
			"claims", treasury.ClaimCount,
			"last_claim", treasury.LastClaimTimestamp,
		)
		if balance, err := solanago.GetTokenBalance(ctx, rpcClient, treasury.TreasuryAccount); err == nil {
			log.Info("treasury balance",
				"amount", balance.Amount,
				"ui_amount", solanago.AmountToUI(balance.Amount, balance.Decimals),
			)
		}
	}
	return nil
}
