package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ZaguanLabs/culturo"
)

type translateOptions struct {
	from       string
	to         string
	context    string
	jsonOutput bool
	quiet      bool
}

// translateOutput is the --json format.
type translateOutput struct {
	culturo.TranslationResult
	SourceLang      string `json:"source_lang"`
	TargetLang      string `json:"target_lang"`
	CulturalContext string `json:"cultural_context"`
	ElapsedMs       int64  `json:"elapsed_ms"`
}

func newTranslateCmd(flags *globalFlags) *cobra.Command {
	opts := &translateOptions{}

	cmd := &cobra.Command{
		Use:   "translate TEXT",
		Short: "Translate a text once and print the result",
		Long: `Translate TEXT with cultural adaptation. When TEXT is "-" or omitted
the text is read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			return runTranslate(cmd, flags, opts, text)
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", "en", "Source language code")
	cmd.Flags().StringVar(&opts.to, "to", "pt", "Target language code")
	cmd.Flags().StringVar(&opts.context, "context", string(culturo.ContextGeneral), "Cultural context (general, formal, casual, academic, creative, technical)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output result as JSON")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress progress output")
	return cmd
}

func readText(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

func runTranslate(cmd *cobra.Command, flags *globalFlags, opts *translateOptions, text string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	if strings.TrimSpace(text) == "" {
		return errors.New("text is required")
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	model, modelName := buildModel(cfg, zap.NewNop())
	if model == nil {
		return errors.New("API key required (DEEPSEEK_API_KEY or provider.api_key)")
	}

	if !opts.quiet {
		if !culturo.IsKnownContext(culturo.CulturalContext(opts.context)) {
			fmt.Fprintf(stderr, "warning: unknown context %q, using the general instructions\n", opts.context)
		}
		for _, code := range []string{opts.from, opts.to} {
			if !culturo.IsSupportedLanguage(code) {
				fmt.Fprintf(stderr, "warning: language %q is not in the supported list\n", code)
			}
		}
	}

	translator := culturo.NewTranslator(model, culturo.WithCacheNamespace(modelName))
	req := culturo.TranslationRequest{
		Text:            text,
		SourceLang:      opts.from,
		TargetLang:      opts.to,
		CulturalContext: culturo.CulturalContext(opts.context),
	}

	if !opts.quiet && !opts.jsonOutput {
		fmt.Fprintf(stderr, "Translating %s -> %s (%s)...\n",
			culturo.GetLanguageName(opts.from), culturo.GetLanguageName(opts.to), opts.context)
	}

	start := time.Now()
	result, err := translator.Translate(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}
	elapsed := time.Since(start)

	if opts.jsonOutput {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(translateOutput{
			TranslationResult: *result,
			SourceLang:        req.SourceLang,
			TargetLang:        req.TargetLang,
			CulturalContext:   string(req.WithDefaults().CulturalContext),
			ElapsedMs:         elapsed.Milliseconds(),
		})
	}

	fmt.Fprintln(stdout, result.CulturalTranslation)
	if result.LiteralTranslation != "" && result.LiteralTranslation != result.CulturalTranslation {
		fmt.Fprintf(stdout, "\nLiteral: %s\n", result.LiteralTranslation)
	}
	if result.CulturalNotes != "" {
		fmt.Fprintf(stdout, "\nNotes: %s\n", result.CulturalNotes)
	}
	if !opts.quiet {
		fmt.Fprintf(stderr, "\nDone in %v\n", elapsed.Round(time.Millisecond))
	}
	return nil
}
