package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/0xcro3dile/intentbot-go/internal/domain/entities"
)

var (
	youStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	botStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	timeStyle = lipgloss.NewStyle().Faint(true)
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

var chatSession string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the bot in the terminal",
	Long: `Starts an interactive session. Commands:
  /history   show this session's turns, newest first
  /quit      leave`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatSession, "session", "", "Session id (default: random)")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	sys, err := loadSystem(ctx)
	if err != nil {
		return err
	}
	defer sys.Close()

	go func() {
		if err := sys.WatchCorpus(ctx); err != nil {
			fmt.Fprintln(os.Stderr, errStyle.Render(err.Error()))
		}
	}()

	session := chatSession
	if session == "" {
		session = uuid.NewString()
	}
	return chatLoop(ctx, sys.Conversation, session, cmd.InOrStdin(), cmd.OutOrStdout())
}

// chatter is the part of the conversation usecase the REPL drives.
type chatter interface {
	Respond(ctx context.Context, sessionID, text string) (string, error)
	History(ctx context.Context, sessionID string, order entities.Order) ([]entities.ChatTurn, error)
}

// chatLoop reads lines from in until EOF, /quit or ctx is done.
func chatLoop(ctx context.Context, bot chatter, session string, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Session %s. Type /history to review, /quit to leave.\n", session)

	done := make(chan struct{})
	defer close(done)
	lines, scanErr := readLines(in, done)

	for {
		fmt.Fprint(out, youStyle.Render("You: "))

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return <-scanErr
			}
			line = strings.TrimSpace(l)
		}

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/history":
			turns, err := bot.History(ctx, session, entities.ReverseChronological)
			if err != nil {
				return err
			}
			printHistory(out, turns)
			continue
		}

		reply, err := bot.Respond(ctx, session, line)
		if errors.Is(err, entities.ErrEmptyInput) {
			continue
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(out, botStyle.Render("Bot:"), reply)
	}
}

// readLines scans in on its own goroutine so a blocked read never holds up
// cancellation. The line channel closes at EOF, after which scanErr yields
// the scanner error.
func readLines(in io.Reader, done <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		scanErr <- scanner.Err()
	}()
	return lines, scanErr
}

func printHistory(out io.Writer, turns []entities.ChatTurn) {
	if len(turns) == 0 {
		fmt.Fprintln(out, timeStyle.Render("(no history yet)"))
		return
	}
	for _, t := range turns {
		fmt.Fprintln(out, timeStyle.Render(t.DisplayTime()))
		fmt.Fprintln(out, "  "+youStyle.Render("You:"), t.UserText)
		fmt.Fprintln(out, "  "+botStyle.Render("Bot:"), t.BotText)
	}
}
