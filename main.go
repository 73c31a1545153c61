package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/RKBobe/Ripple/auth"
	"github.com/RKBobe/Ripple/config"
	"github.com/RKBobe/Ripple/generator"
	"github.com/RKBobe/Ripple/server"
	"github.com/RKBobe/Ripple/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	configPath := flag.String("config", "", "path to config.json (optional; defaults need GOOGLE_API_KEY and SECRET_KEY)")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config.server_addr)")
	filePath := flag.String("file", "", "path to an article text file; generate once and print JSON")
	mock := flag.Bool("mock", false, "with --file, use the mock model (no config or API key needed)")
	flag.Parse()

	// One-shot mode with --mock needs no config at all.
	if *filePath != "" && *mock {
		runOnce(generator.MockLLM{}, *filePath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	llm, err := buildLLM(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *filePath != "" {
		runOnce(llm, *filePath)
		return
	}
	if !*serve {
		fmt.Fprintln(os.Stderr, "nothing to do: pass --serve or --file")
		os.Exit(1)
	}

	agent, err := generator.NewAgent(llm)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	users, err := store.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer users.Close()
	tokens, err := auth.NewManager(cfg.SecretKey, time.Duration(cfg.TokenTTLMinutes)*time.Minute)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	srv, err := server.New(agent, users, tokens)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	listen := cfg.ServerAddr
	if *addr != "" {
		listen = *addr
	}
	log.Printf("Starting web server on %s", listen)
	if err := http.ListenAndServe(listen, srv.Routes()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runOnce generates posts for one article file and prints them as JSON.
func runOnce(llm generator.LLMClient, path string) {
	text, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	agent, err := generator.NewAgent(llm)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	result, err := agent.Generate(ctx, string(text))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result.PlatformPosts()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildLLM(cfg config.Config) (generator.LLMClient, error) {
	if cfg.LLM.Provider == "mock" {
		return generator.MockLLM{}, nil
	}
	settings := &generator.LLMSettings{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
	}
	switch cfg.LLM.Provider {
	case "gemini":
		return generator.NewGeminiLLMFromConfig(settings)
	case "openai", "deepseek":
		// DeepSeek exposes an OpenAI-compatible API; base_url is validated at config load.
		return generator.NewOpenAILLMFromConfig(settings)
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}
