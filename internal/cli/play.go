package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"creed-trivia/internal/app"
	"creed-trivia/internal/transport/terminal"
	"github.com/spf13/cobra"
)

// NewPlayCmd plays one session in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var (
		name  string
		count int
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a solo session in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := loadServices(ctx, *configPath)
			if err != nil {
				return err
			}
			defer svc.Close()
			return playSession(ctx, svc.engine, app.NewRunner(), name, count, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "player name (up to 20 characters)")
	cmd.Flags().IntVar(&count, "count", 0, "number of questions")
	return cmd
}

func playSession(ctx context.Context, engine *app.Engine, runner *app.Runner, name string, count int, in io.Reader, out io.Writer) error {
	session := engine.NewSession(name, count)
	fmt.Fprintf(out, "Welcome, %s. Answer with a letter or number.\n", session.Name())

	presenter := terminal.NewPresenter(out)
	_, err := runner.Run(ctx, session, presenter, presenter.ReadSelections(ctx, in))
	if err != nil {
		return err
	}
	if d := session.Diagnostics(); d.Fallback {
		fmt.Fprintln(out, "(no packs could be loaded; played the built-in questions)")
	}
	return nil
}
