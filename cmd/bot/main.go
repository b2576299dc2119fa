// cmd/bot/main.go runs the game as a Discord bot played in direct messages.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/jason-s-yu/truthorlie/internal/cache"
	"github.com/jason-s-yu/truthorlie/internal/config"
	"github.com/jason-s-yu/truthorlie/internal/discord"
	"github.com/jason-s-yu/truthorlie/internal/lobby"
	"github.com/jason-s-yu/truthorlie/internal/notify"
	"github.com/jason-s-yu/truthorlie/internal/session"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := cfg.NewLogger()
	if cfg.DiscordToken == "" {
		logger.Fatal("DISCORD_TOKEN is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		logger.Fatalf("discord session: %v", err)
	}

	dispatcher := notify.NewDispatcher(discord.NewTransport(dg), logger.WithField("component", "dispatcher"), cfg.DeliveryTimeout)
	registry := lobby.NewRegistry(lobby.WithLogger(logger.WithField("component", "registry")))

	opts := []session.ControllerOption{
		session.WithLogger(logger.WithField("component", "controller")),
		session.WithFailureCounter(dispatcher),
	}
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		opts = append(opts, session.WithRecorder(cache.NewPublisher(rdb, cfg.QueueName)))
	}
	controller := session.NewController(registry, opts...)

	bot := discord.NewBot(dg, controller, dispatcher, logger.WithField("component", "discord"), cfg.DiscordGuildID)
	if err := bot.Open(); err != nil {
		logger.Fatalf("%v", err)
	}
	defer bot.Close()

	<-ctx.Done()
	logger.Info("shutting down")
}
