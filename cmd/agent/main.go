package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/pflag"

	"github.com/petasbytes/go-agent-context/contextmgr"
	"github.com/petasbytes/go-agent-context/internal/config"
	"github.com/petasbytes/go-agent-context/internal/embed"
	"github.com/petasbytes/go-agent-context/internal/provider"
	"github.com/petasbytes/go-agent-context/internal/runner"
	"github.com/petasbytes/go-agent-context/internal/store"
	"github.com/petasbytes/go-agent-context/internal/summarize"
	"github.com/petasbytes/go-agent-context/internal/telemetry"
	"github.com/petasbytes/go-agent-context/memory"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := pflag.NewFlagSet("agent", pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", os.Getenv("AGT_CONFIG"), "YAML configuration file")
	printSchema := fs.Bool("print-config-schema", false, "print the configuration file JSON Schema and exit")
	listSessions := fs.Bool("list-sessions", false, "list sessions stored in --db and exit")
	flags := config.AddFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if *printSchema {
		b, err := config.SchemaJSON()
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}
	flags.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Set up graceful shutdown on Ctrl-C (SIGINT) / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *store.SQLite
	if cfg.DatabasePath != "" {
		db, err = store.Open(ctx, cfg.DatabasePath, logger)
		if err != nil {
			return err
		}
		defer db.Close()
	}
	if *listSessions {
		if db == nil {
			return errors.New("--list-sessions needs --db")
		}
		return printSessions(ctx, db)
	}

	// Basic env check (SDK also reads API key)
	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		return errors.New("missing ANTHROPIC_API_KEY; export it before running")
	}
	client := provider.NewAnthropicClient()

	engineCfg, err := cfg.Engine(logger)
	if err != nil {
		return err
	}
	strategy, err := contextmgr.New(engineCfg, newEmbedder(cfg), newSummarizer(cfg, client))
	if err != nil {
		return err
	}

	s, err := restore(ctx, cfg, engineCfg.Mode, db, strategy, logger)
	if err != nil {
		return err
	}

	r := runner.New(client, anthropic.Model(cfg.Model), cfg.TokenBudget)
	r.MaxTokens = cfg.MaxTokens
	r.Mode = engineCfg.Mode
	r.Logger = logger

	return chat(ctx, r, strategy, engineCfg.Mode, s)
}

func newEmbedder(cfg config.Config) contextmgr.Embedder {
	var e contextmgr.Embedder
	switch cfg.Embedder.Kind {
	case config.EmbedderOpenAI:
		e = embed.NewOpenAI(embed.OpenAIConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: cfg.Embedder.BaseURL,
			Model:   cfg.Embedder.Model,
		})
	default:
		e = embed.NewHashing(cfg.Embedder.Dim)
	}
	return telemetry.TraceEmbedder(e, nil)
}

func newSummarizer(cfg config.Config, client *anthropic.Client) contextmgr.Summarizer {
	var s contextmgr.Summarizer = summarize.Extractive{}
	if cfg.Summarizer == config.SummarizerAnthropic {
		s = summarize.NewAnthropic(client, anthropic.Model(cfg.Model))
	}
	return telemetry.TraceSummarizer(s, nil)
}

// session persists each answered prompt to the transcript file, the database,
// or both.
type session struct {
	transcript string
	records    []memory.Record
	db         *store.SQLite
	id         string
}

func (s *session) save(ctx context.Context, recs []memory.Record) {
	if len(recs) == 0 {
		return
	}
	if s.transcript != "" {
		s.records = append(s.records, recs...)
		if err := memory.SaveTranscript(s.transcript, s.records); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to save transcript: %v\n", err)
		}
	}
	if s.db != nil {
		if err := s.db.Append(ctx, s.id, recs...); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to store turns: %v\n", err)
		}
	}
}

// restore replays the resumed database session, or else the transcript file,
// into strategy.
func restore(ctx context.Context, cfg config.Config, mode contextmgr.Mode, db *store.SQLite, strategy contextmgr.Strategy, logger *slog.Logger) (*session, error) {
	s := &session{transcript: cfg.TranscriptPath, db: db}

	var recs []memory.Record
	if cfg.TranscriptPath != "" {
		loaded, err := memory.LoadTranscript(cfg.TranscriptPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to load transcript: %v\n", err)
		}
		s.records = loaded
		recs = loaded
	}

	if db != nil {
		if cfg.Session != "" {
			sess, err := db.Session(ctx, cfg.Session)
			if err != nil {
				return nil, err
			}
			if sess.Mode != string(mode) {
				logger.Warn("resuming session recorded in another mode", "session", sess.ID, "recorded", sess.Mode, "mode", mode)
			}
			if recs, err = db.Turns(ctx, sess.ID); err != nil {
				return nil, err
			}
			s.id = sess.ID
		} else {
			sess, err := db.CreateSession(ctx, string(mode))
			if err != nil {
				return nil, err
			}
			s.id = sess.ID
			// A new database session starts from the transcript, if any.
			if err := db.Append(ctx, s.id, recs...); err != nil {
				return nil, err
			}
		}
		fmt.Printf("Session %s\n", s.id)
	}

	if len(recs) > 0 {
		n, err := contextmgr.Replay(ctx, strategy, recs)
		if err != nil {
			// Keep what replayed; the session is still usable.
			fmt.Fprintf(os.Stderr, "warning: replayed %d of %d turns: %v\n", n, len(recs), err)
		} else {
			logger.Info("conversation restored", "turns", n)
		}
	}
	return s, nil
}

func chat(ctx context.Context, r *runner.Runner, strategy contextmgr.Strategy, mode contextmgr.Mode, s *session) error {
	brancher, _ := strategy.(contextmgr.Brancher)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Printf("Chat with Claude using %s context (/help for commands, Ctrl-C to quit)\n", mode)

	// stdin reader goroutine -> lines into channel
	inputCh := make(chan string)
	go func() {
		for scanner.Scan() {
			inputCh <- scanner.Text()
		}
		close(inputCh)
	}()

	var parent contextmgr.NodeID
outer:
	for {
		if parent != 0 {
			fmt.Printf("\u001b[94mYou\u001b[0m (under %d): ", parent)
		} else {
			fmt.Print("\u001b[94mYou\u001b[0m: ")
		}
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Println("\nExiting...")
			break outer
		case line, ok = <-inputCh:
			if !ok {
				break outer
			}
		}

		if cmd, isCmd := parseCommand(line); isCmd {
			switch cmd.name {
			case "quit", "exit":
				break outer
			case "help":
				fmt.Println(helpText)
			case "nodes":
				if brancher == nil {
					fmt.Printf("%s mode keeps no tree\n", mode)
					continue
				}
				fmt.Print(formatNodes(brancher.Nodes()))
			case "parent":
				if brancher == nil {
					fmt.Printf("%s mode keeps no tree\n", mode)
					continue
				}
				if cmd.arg == "" {
					parent = 0
					continue
				}
				id, err := parseParent(cmd.arg, brancher)
				if err != nil {
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
					continue
				}
				parent = id
			case "context":
				turns, err := strategy.Context(ctx)
				if err != nil {
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
					continue
				}
				fmt.Print(formatTurns(turns))
			default:
				fmt.Fprintf(os.Stderr, "unknown command /%s; try /help\n", cmd.name)
			}
			continue
		}
		if line == "" {
			continue
		}

		var opts []contextmgr.Option
		if parent != 0 {
			opts = append(opts, contextmgr.WithParent(parent))
		}
		res, err := r.Respond(ctx, strategy, line, opts...)
		if res != nil {
			s.save(ctx, res.Records)
			if res.Reply != "" {
				fmt.Printf("\u001b[93mClaude\u001b[0m: %s\n", res.Reply)
			}
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		parent = 0
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: stdin read error: %v\n", err)
	}
	return nil
}

func printSessions(ctx context.Context, db *store.SQLite) error {
	sessions, err := db.Sessions(ctx)
	if err != nil {
		return err
	}
	for _, s := range sessions {
		fmt.Printf("%s  %-11s  %3d turns  %s\n", s.ID, s.Mode, s.Turns, s.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
