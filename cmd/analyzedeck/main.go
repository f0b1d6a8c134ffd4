package main

// Analyze a local deck without the server:
//   go run ./cmd/analyzedeck -deck ./deck.pdf
//   go run ./cmd/analyzedeck -deck ./deck.pptx -prompt-only

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pitchdeck-backend/internal/analyses"
	"pitchdeck-backend/internal/bootstrap"
	"pitchdeck-backend/internal/extract"
	"pitchdeck-backend/internal/shared/config"
)

func main() {
	cfg := config.Load()

	deckPath := flag.String("deck", "", "Path to pitch deck (pdf or pptx)")
	schemaVersion := flag.String("schema-version", cfg.Analysis.SchemaVersion, "Analysis schema version")
	provider := flag.String("provider", cfg.LLM.Provider, "LLM provider (gemini or openai)")
	model := flag.String("model", cfg.LLM.Model, "LLM model")
	outPath := flag.String("out", "", "Path to write the normalized JSON (optional)")
	promptOnly := flag.Bool("prompt-only", false, "Print the prompt and exit")
	flag.Parse()

	if strings.TrimSpace(*deckPath) == "" {
		exitErr("deck path is required")
	}
	schema, ok := analyses.SchemaFor(*schemaVersion)
	if !ok {
		exitErr(fmt.Sprintf("unknown schema version %q (known: %s)", *schemaVersion, strings.Join(analyses.Versions(), ", ")))
	}

	format, err := extract.DetectFormat(filepath.Base(*deckPath))
	if err != nil {
		exitErr(err.Error())
	}
	data, err := os.ReadFile(*deckPath)
	if err != nil {
		exitErr(fmt.Sprintf("read deck: %v", err))
	}
	ctx := context.Background()
	text, err := extract.Extract(ctx, data, format)
	if err != nil {
		exitErr(fmt.Sprintf("extract deck text: %v", err))
	}

	prompt := analyses.BuildPrompt(text, schema, cfg.Analysis.PromptMaxChars)
	if *promptOnly {
		fmt.Println(prompt)
		return
	}

	llmCfg := cfg.LLM
	llmCfg.Provider = *provider
	llmCfg.Model = *model
	client, err := bootstrap.BuildLLM(llmCfg)
	if err != nil {
		exitErr(err.Error())
	}

	callCtx := ctx
	if llmCfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, llmCfg.Timeout)
		defer cancel()
	}
	raw, err := client.Complete(callCtx, prompt)
	if err != nil {
		exitErr(fmt.Sprintf("llm complete: %v", err))
	}

	result, err := analyses.Normalize(raw, schema)
	if err != nil {
		var outErr *analyses.OutputError
		if errors.As(err, &outErr) {
			fmt.Fprintln(os.Stderr, "raw model output:")
			fmt.Fprintln(os.Stderr, outErr.Raw)
		}
		exitErr(fmt.Sprintf("normalize: %v", err))
	}
	if err := schema.Validate(result); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	var pretty bytes.Buffer
	enc := json.NewEncoder(&pretty)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		exitErr(fmt.Sprintf("encode result: %v", err))
	}

	if strings.TrimSpace(*outPath) != "" {
		if err := os.WriteFile(*outPath, pretty.Bytes(), 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}
	fmt.Print(pretty.String())
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
