package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/jetton-radar/pkg/config"
	"github.com/jetton-radar/pkg/gateway"
	"github.com/jetton-radar/pkg/ledger"
	"github.com/jetton-radar/pkg/monitor"
	"github.com/jetton-radar/pkg/recon"
	"github.com/jetton-radar/pkg/report"
	"github.com/jetton-radar/pkg/telegram"
)

// TON user-friendly addresses: bounceable EQ.. or non-bounceable UQ..
var addressRe = regexp.MustCompile(`[EU]Q[A-Za-z0-9_-]{46}`)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()

	info := flag.String("info", "", "print a full report for one jetton master address")
	newPools := flag.Bool("new", false, "scan newly created liquidity pools")
	pages := flag.Int("pages", 10, "pool pages to fetch per scan")
	schedule := flag.Int("schedule", 0, "repeat the scan every N minutes and keep the bot polling")
	flag.Parse()

	if (*info != "") == *newPools {
		fmt.Fprintln(os.Stderr, "exactly one of --info or --new is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil { log.Fatal().Err(err).Msg("config load failed") }
	if err := cfg.Validate(); err != nil { log.Fatal().Err(err).Msg("config invalid") }

	ton := gateway.NewTonAPI(cfg.TonAPIURL, cfg.TonAPIKey, cfg.TonAPIPause)
	gecko := gateway.NewGecko(cfg.GeckoURL, cfg.GeckoPause)
	engine := recon.New(ton, gecko, recon.Options{
		LockShareThreshold:  cfg.LockShareThreshold,
		CreatorShareLimit:   cfg.CreatorShareLimit,
		AirdropPercentLimit: cfg.AirdropPercentLimit,
		MinFDVUSD:           cfg.MinFDVUSD,
		MinReserveRatio:     cfg.MinReserveRatio,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() { <-sigCh; log.Info().Msg("shutting down..."); cancel() }()

	if *info != "" {
		lookup, err := engine.LookupJetton(ctx, *info)
		if err != nil { log.Fatal().Err(err).Msg("lookup failed") }
		fmt.Print(report.Console(lookup))
		return
	}

	log.Info().Msg("📡 jetton radar starting...")
	led, err := ledger.Open(cfg.LedgerPath, cfg.RescanWindow)
	if err != nil { log.Fatal().Err(err).Msg("ledger open failed") }

	bot := telegram.New(cfg.TelegramBotToken, cfg.TelegramChatID)
	mon := monitor.New(engine, led, bot, cfg.PassRating)

	if *schedule <= 0 {
		if err := mon.ScanNewPools(ctx, *pages); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatal().Err(err).Msg("scan failed")
		}
		log.Info().Msg("goodbye 👋")
		return
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return runSchedule(ctx, mon, *pages, *schedule) })
	if bot.Enabled() {
		g.Go(func() error { return bot.Poll(ctx, answer(engine, bot)) })
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("error")
	}
	log.Info().Msg("goodbye 👋")
}

// runSchedule scans once immediately, then on a fixed interval.
func runSchedule(ctx context.Context, mon *monitor.Monitor, pages, minutes int) error {
	scan := func() {
		if err := mon.ScanNewPools(ctx, pages); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("scheduled scan failed")
		}
	}
	scan()

	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %dm", minutes), scan); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	c.Start()
	log.Info().Int("minutes", minutes).Msg("⏰ scan scheduled")
	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}

// answer builds the chat handler: any message carrying a jetton master
// address gets a report for its best pool.
func answer(engine *recon.Engine, bot *telegram.Bot) telegram.Handler {
	return func(ctx context.Context, chatID int64, text string) {
		chat := strconv.FormatInt(chatID, 10)
		if text == "/start" {
			if err := bot.SendTo(ctx, chat, "Hello, add me to your chat!"); err != nil {
				log.Error().Err(err).Msg("reply failed")
			}
			return
		}
		for _, addr := range addressRe.FindAllString(text, -1) {
			if err := bot.SendTo(ctx, chat, lookupMessage(ctx, engine, addr)); err != nil {
				log.Error().Err(err).Str("addr", addr).Msg("reply failed")
			}
		}
	}
}

func lookupMessage(ctx context.Context, engine *recon.Engine, addr string) string {
	lookup, err := engine.LookupJetton(ctx, addr)
	if err != nil {
		log.Error().Err(err).Str("addr", addr).Msg("lookup failed")
		return fmt.Sprintf("Could not inspect token %s: %v", addr, err)
	}
	if len(lookup.Pools) == 0 {
		return "No liquidity pools found for token " + addr
	}
	pool := lookup.Pools[0]
	state := engine.ClassifyLiquidity(pool)
	return report.TelegramMessage(lookup.Master, state, pool.Account.AddressB64, lookup.Airdrop, lookup.AirdropPercent)
}
