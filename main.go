package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/intakeflow/server/internal/agent/model"
	"github.com/intakeflow/server/internal/agent/nodes"
	"github.com/intakeflow/server/internal/agent/repo"
	"github.com/intakeflow/server/internal/agent/session"
	"github.com/intakeflow/server/internal/collab/address"
	"github.com/intakeflow/server/internal/collab/dates"
	"github.com/intakeflow/server/internal/collab/notify"
	"github.com/intakeflow/server/internal/core"
	"github.com/intakeflow/server/internal/telephony"
	logx "github.com/intakeflow/server/pkg/logger"
	pkgredis "github.com/intakeflow/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the intake agent,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Model        model.ChatModelConfig
	Conversation model.ConversationConfig

	// Collaborators
	Maps   model.MapsConfig
	SES    model.SESConfig
	Twilio model.TwilioConfig
}

func main() {
	// Per-call arguments, mirroring what the dial-in webhook hands over.
	callSID := flag.String("call", "", "inbound call SID to forward (optional)")
	sipURI := flag.String("sip", "", "SIP endpoint to forward the call to (optional)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load structured config from env
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	rdb, err := cfg.Redis.New()
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
	}
	defer rdb.Close()

	ttl, err := time.ParseDuration(cfg.Conversation.TTL)
	if err != nil {
		logx.Fatal().Err(err).Str("ttl", cfg.Conversation.TTL).Msg("Invalid CONVERSATION_TTL")
	}

	// Collaborators
	validator, err := address.NewGoogleValidator(cfg.Maps.APIKey)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise address validator")
	}
	notifier, err := notify.NewSESSender(ctx, cfg.SES)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise email sender")
	}
	converter := dates.NewRelativeConverter()

	chatModel, err := session.NewChatModel(ctx, session.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise chat model")
	}

	// The telephony bridge supplies the stable session identifier. Without
	// call control arguments this is a local run against stdin.
	sessionID := uuid.NewString()
	if *callSID != "" && *sipURI != "" {
		bridge := telephony.NewTwilioBridge(cfg.Twilio, *callSID, *sipURI)
		sessionID = bridge.SessionID()
		if err := bridge.Forward(ctx); err != nil {
			logx.Fatal().Err(err).Msg("Failed to forward inbound call")
		}
	}

	sess := session.New(session.Config{
		SessionID:     sessionID,
		ChatModel:     chatModel,
		ModelName:     cfg.Model.Model,
		Nodes:         nodes.NewBuilder(validator, converter, notifier),
		Transcripts:   repo.NewRedisTranscriptRepository(rdb, ttl),
		MaxToolRounds: cfg.Conversation.Tools.MaxRounds,
	})

	greeting, err := sess.Start(ctx)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to start session")
	}
	fmt.Printf("agent> %s\n", greeting)

	// Local harness: each stdin line stands in for one transcribed caller
	// utterance.
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			// Participant left or process interrupted: discard state, do not
			// try to reach the end node.
			logx.Info().Str("session_id", sessionID).Msg("Session cancelled")
			return
		case <-sess.Done():
			logx.Info().Str("session_id", sessionID).Msg("Conversation completed")
			return
		case text, ok := <-lines:
			if !ok {
				return
			}
			if text == "" {
				continue
			}
			reply, err := sess.ProcessUtterance(ctx, text)
			if err != nil {
				logx.Error().Err(err).Msg("Failed to process utterance")
				continue
			}
			fmt.Printf("agent> %s\n", reply)
		}
	}
}
