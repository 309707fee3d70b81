package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/z-dungeon/backend/internal/app"
	"github.com/zhouzirui/z-dungeon/backend/internal/config"
	"github.com/zhouzirui/z-dungeon/backend/internal/service/ai"
	"github.com/zhouzirui/z-dungeon/backend/internal/service/session"
)

type playOptions struct {
	name    string
	concept string
	voice   bool
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &playOptions{}

	cmd := &cobra.Command{
		Use:           "play",
		Short:         "Play an AI Dungeon Master adventure in the terminal",
		Long:          "play generates a fantasy world with the configured language model and narrates your adventure turn by turn.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlay(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "character name (default \"Adventurer\")")
	cmd.Flags().StringVarP(&opts.concept, "concept", "c", "", "character concept, e.g. \"dwarf fighter\"")
	cmd.Flags().BoolVar(&opts.voice, "voice", false, "narrate replies with text-to-speech")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "keep service logs on stderr")

	return cmd
}

func runPlay(ctx context.Context, opts *playOptions, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !opts.verbose {
		log.SetOutput(io.Discard)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.AI.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	deps, err := app.BuildDeps(ctx, cfg, func(n ai.RetryNotice) {
		fmt.Fprintln(out, noticeStyle.Render(n.String()))
	})
	if err != nil {
		return err
	}

	return play(ctx, deps, session.SetupRequest{Name: opts.name, Concept: opts.concept, Voice: opts.voice}, in, out)
}

// play sets up one session and hands the terminal to it.
func play(ctx context.Context, deps session.Deps, req session.SetupRequest, in io.Reader, out io.Writer) error {
	o, err := session.New(deps)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, titleStyle.Render("AI Dungeon Master"))
	fmt.Fprintln(out, noticeStyle.Render("Generating your world..."))

	snap, err := o.Setup(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, renderIntro(snap))

	return o.Run(ctx, in, out,
		session.WithPrompt(promptStyle.Render("\nYour action: ")),
		session.WithFormatter(renderReply),
	)
}
