// Command symbagent is the terminal entrypoint: it loads configuration,
// wires the transport client, tool catalog, project index, and agent
// controller together, then drives a line-oriented read-eval-print loop
// against the controlling terminal. Grounded on the teacher's
// cmd/symb/main.go bootstrap sequence, restructured from a bubbletea
// program into a direct synchronous loop since this driver owns its own
// terminal (internal/termio) instead of delegating to a TUI framework.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/xonecas/symbagent/internal/agent"
	"github.com/xonecas/symbagent/internal/config"
	"github.com/xonecas/symbagent/internal/conversation"
	"github.com/xonecas/symbagent/internal/index"
	"github.com/xonecas/symbagent/internal/shell"
	"github.com/xonecas/symbagent/internal/store"
	"github.com/xonecas/symbagent/internal/termio"
	"github.com/xonecas/symbagent/internal/tools"
	"github.com/xonecas/symbagent/internal/transport"
)

// baseSystemPrompt is the model-agnostic instruction template the
// controller layers AGENTS.md content and the project index onto every
// turn (agent.BuildSystemPrompt).
const baseSystemPrompt = `You are symbagent, a terminal-resident coding assistant with direct
access to the project's files and shell. Use the Read tool before Edit or
Write on any file. Prefer small, verifiable steps; run Shell commands to
check your work. Use TodoWrite to track multi-step plans on long tasks.
Destructive shell commands require explicit user approval — expect that
and proceed once approved.`

func main() {
	if err := setupFileLogging(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to set up logging: %v\n", err)
	}

	flagSave := flag.String("save", "", "conversation name to persist to on exit")
	flagLoad := flag.String("load", "", "conversation name to resume from")
	flagClearCache := flag.Bool("clear-cache", false, "clear the WebFetch/WebSearch result cache and exit")
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to get working directory: %v\n", err)
		cwd = "."
	}

	cache := openCache(cfg)
	if cache != nil {
		defer cache.Close()
	}

	if *flagClearCache {
		if err := cache.Clear(); err != nil {
			fmt.Fprintf(os.Stderr, "error clearing cache: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("cache cleared")
		return
	}

	catalog, pad := buildCatalog(cwd, cache)

	idx := index.New(cwd)
	if err := idx.Build(); err != nil {
		log.Warn().Err(err).Msg("project index build failed")
	}

	convDir, convDirErr := config.ConversationsDir()
	conv := loadOrNewConversation(*flagLoad, convDir, convDirErr)

	endpoint := transport.EndpointChat
	if cfg.Transport.Dialect == "responses" {
		endpoint = transport.EndpointResponses
	}
	client := transport.NewHTTPClient(
		cfg.Transport.Endpoint,
		cfg.Transport.APIKey,
		time.Duration(cfg.Transport.TimeoutOrDefault())*time.Second,
	)

	stdin := bufio.NewReader(os.Stdin)
	approver := agent.NewApprover(stdin, os.Stdout, cwd, cfg.Tools.AutoApprove)
	approver.Theme = cfg.UI.SyntaxThemeOrDefault()

	a := agent.New(agent.Options{
		Conversation:    conv,
		Client:          client,
		Model:           cfg.Transport.Model,
		Sampler:         transport.Sampler{Temperature: &cfg.Transport.Temperature},
		Endpoint:        endpoint,
		ContextWindow:   cfg.Transport.ContextWindow,
		PromptPrice:     cfg.Transport.PromptPrice,
		CompletionPrice: cfg.Transport.CompletionPrice,
		MaxSteps:        60,
		BasePrompt:      baseSystemPrompt,
		Catalog:         catalog,
		Scratchpad:      pad,
		Index:           idx,
		Approver:        approver,
		Out:             os.Stdout,
		Width:           terminalWidth(),
		SyntaxTheme:     cfg.UI.SyntaxThemeOrDefault(),
		Root:            cwd,
	})

	fmt.Printf("symbagent ready (model: %s). /save <name>, /load <name>, /cost, /quit.\n", cfg.Transport.Model)
	runLoop(a, conv, stdin, convDir, convDirErr)

	if *flagSave != "" {
		if convDirErr != nil {
			fmt.Fprintf(os.Stderr, "error: conversations directory unavailable: %v\n", convDirErr)
			return
		}
		if err := conv.Save(convDir, *flagSave); err != nil {
			fmt.Fprintf(os.Stderr, "error saving conversation: %v\n", err)
		}
	}
}

// runLoop drives the read-eval-print cycle: blank lines are ignored,
// lines beginning with "/" are handled as local commands, everything
// else is one user turn handed to the agent controller.
func runLoop(a *agent.Agent, conv *conversation.Conversation, stdin *bufio.Reader, convDir string, convDirErr error) {
	ctx := context.Background()
	for {
		fmt.Print("\n> ")
		line, err := stdin.ReadString('\n')
		if err != nil {
			return
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if quit := handleCommand(input, conv, convDir, convDirErr); quit {
				return
			}
			continue
		}

		if err := a.ProcessResponse(ctx, input); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

// handleCommand implements the minimal slash-command subset this
// terminal driver owns directly (persistence and cost introspection);
// the broader slash-command surface named in spec.md §6 is consumed,
// not specified, by the core this command wires together. Returns true
// when the REPL should exit.
func handleCommand(input string, conv *conversation.Conversation, convDir string, convDirErr error) bool {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/cost", "/tokens":
		cost := conv.Cost()
		fmt.Printf("input=%d output=%d ctx_pct=%.1f%% peak_ctx_pct=%.1f%% cost=$%.4f\n",
			cost.InputTokens, cost.OutputTokens, cost.LastCtxPct, cost.PeakCtxPct, cost.TotalCost)
	case "/save":
		if len(fields) < 2 {
			fmt.Println("usage: /save <name>")
			return false
		}
		if convDirErr != nil {
			fmt.Printf("error: conversations directory unavailable: %v\n", convDirErr)
			return false
		}
		if err := conv.Save(convDir, fields[1]); err != nil {
			fmt.Printf("error saving: %v\n", err)
		}
	case "/load":
		if len(fields) < 2 {
			fmt.Println("usage: /load <name>")
			return false
		}
		if convDirErr != nil {
			fmt.Printf("error: conversations directory unavailable: %v\n", convDirErr)
			return false
		}
		loaded, err := conversation.Load(convDir, fields[1])
		if err != nil {
			fmt.Printf("error loading: %v\n", err)
			return false
		}
		*conv = *loaded
	default:
		fmt.Printf("unknown command: %s\n", fields[0])
	}
	return false
}

func loadConfig() (*config.Config, error) {
	configPath := filepath.Join(".", "config.toml")
	if dataDir, err := config.DataDir(); err == nil {
		if candidate := filepath.Join(dataDir, "config.toml"); fileExists(candidate) {
			configPath = candidate
		}
	}
	return config.Load(configPath)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func loadOrNewConversation(loadName, convDir string, convDirErr error) *conversation.Conversation {
	if loadName == "" {
		return conversation.New(baseSystemPrompt)
	}
	if convDirErr != nil {
		fmt.Fprintf(os.Stderr, "error: conversations directory unavailable: %v\n", convDirErr)
		os.Exit(1)
	}
	conv, err := conversation.Load(convDir, loadName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading conversation %q: %v\n", loadName, err)
		os.Exit(1)
	}
	return conv
}

func openCache(cfg *config.Config) *store.Cache {
	cacheDir, err := config.EnsureDataDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cache directory unavailable: %v\n", err)
		return nil
	}
	ttl := time.Duration(cfg.Cache.CacheTTLOrDefault()) * time.Hour
	cache, err := store.Open(filepath.Join(cacheDir, "cache.db"), ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cache open failed: %v\n", err)
		return nil
	}
	return cache
}

// buildCatalog registers every tool named in spec.md §4.2 plus the
// additive tools SPEC_FULL.md §5.2 names, grounded on the teacher's
// cmd/symb/main.go setupServices.
func buildCatalog(root string, cache *store.Cache) (*tools.Catalog, *tools.Scratchpad) {
	catalog := tools.NewCatalog()
	tracker := tools.NewReadTracker()

	catalog.Register(tools.NewReadTool(root, tracker))
	catalog.Register(tools.NewWriteTool(root, tracker))
	catalog.Register(tools.NewEditTool(root, tracker))
	catalog.Register(tools.NewGrepTool(root))
	catalog.Register(tools.NewFileSearchTool(root))

	sh := shell.New(root, shell.DefaultBlockFuncs())
	catalog.Register(tools.NewShellTool(sh))

	pad := &tools.Scratchpad{}
	catalog.Register(tools.NewTodoWriteTool(pad))

	catalog.Register(tools.NewWebFetchTool(cache))
	catalog.Register(tools.NewWebSearchTool(cache, config.ExaAPIKey(), ""))

	return catalog, pad
}

func terminalWidth() int {
	term := termio.New()
	if !term.IsTerminal() {
		return 80
	}
	width, _, err := term.Size()
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

func setupFileLogging() error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logDir, err := config.EnsureDataDir()
	if err != nil {
		return err
	}
	logDir = filepath.Join(logDir, "logs")
	if err := os.MkdirAll(logDir, 0750); err != nil {
		return err
	}

	logFile := filepath.Join(logDir, "symbagent.log")
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return err
	}

	log.Logger = log.Output(file)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	return nil
}
