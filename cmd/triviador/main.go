package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iamstoobit/Triviador/internal/bot"
	"github.com/iamstoobit/Triviador/internal/config"
	"github.com/iamstoobit/Triviador/internal/engine"
	"github.com/iamstoobit/Triviador/internal/logger"
	"github.com/iamstoobit/Triviador/internal/repository/postgres"
	redisrepo "github.com/iamstoobit/Triviador/internal/repository/redis"
	"github.com/iamstoobit/Triviador/internal/server"
	"github.com/iamstoobit/Triviador/internal/trivia"
)

func main() {
	logger.Init()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Config load failed")
	}

	gameID := fmt.Sprintf("game-%d", time.Now().UnixNano())
	opts := engine.Options{
		GameID:             gameID,
		HumanName:          cfg.HumanName,
		AICount:            cfg.AICount,
		Difficulty:         bot.ParseDifficulty(cfg.Difficulty),
		TurnsPerPlayer:     cfg.TurnsPerPlayer,
		RegionCount:        cfg.RegionCount,
		DefenseBonus:       cfg.DefenseBonus,
		SpecialRoundChance: cfg.SpecialRoundChance,
		MinCapitalDistance: cfg.MinCapitalDistance,
		SelectionTimeout:   cfg.SelectionTimeout,
		AnswerTimeout:      cfg.AnswerTimeout,
		Categories:         cfg.Categories,
		MapFile:            cfg.MapFile,
	}

	// Question source: Postgres when configured, otherwise a JSON pack.
	var source trivia.Source
	var eng *engine.Engine

	if cfg.DatabaseURL != "" {
		db, err := postgres.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Database connection failed")
		}
		defer db.Close()

		questionRepo := postgres.NewQuestionRepo(db)
		if err := questionRepo.ResetUsage(context.Background()); err != nil {
			log.Warn().Err(err).Msg("Failed to reset question usage")
		}
		source = questionRepo

		eng = engine.NewEngine(opts, source)
		eng.SetLeaderboard(postgres.NewLeaderboardRepo(db))
	} else {
		if cfg.QuestionFile == "" {
			log.Fatal().Msg("Either DATABASE_URL or QUESTION_FILE must be set")
		}
		questions, err := trivia.LoadJSON(cfg.QuestionFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.QuestionFile).Msg("Loading question pack failed")
		}
		log.Info().Int("questions", len(questions)).Str("file", cfg.QuestionFile).Msg("Question pack loaded")
		source = trivia.NewBank(questions, nil)
		eng = engine.NewEngine(opts, source)
	}

	if cfg.RedisURL != "" {
		redisClient, err := redisrepo.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		defer redisClient.Close()
		eng.SetCache(redisClient)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Optional WebSocket gateway for a browser client.
	var srv *http.Server
	if cfg.ServeWS {
		hub := server.NewHub(gameID)
		eng.SetBroadcaster(hub)
		wsHandler := server.NewWSHandler(hub, eng.Gate())

		mux := http.NewServeMux()
		mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
		mux.HandleFunc("GET /ws", wsHandler.ServeWS)

		srv = &http.Server{
			Addr:         cfg.ListenAddr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			log.Info().Str("addr", cfg.ListenAddr).Msg("WebSocket gateway listening")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal().Err(err).Msg("Server error")
			}
		}()
	}

	winner, err := eng.Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Game aborted")
		shutdown(srv)
		os.Exit(1)
	}

	if winner != nil {
		log.Info().
			Str("winner", winner.Name).
			Int("score", winner.Score).
			Msg("Game finished")
	} else {
		log.Info().Msg("Game finished with no survivor")
	}
	shutdown(srv)
}

func shutdown(srv *http.Server) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
}
