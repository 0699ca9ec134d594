package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/rocketscienceinc/hangman-backend/internal/entity"
)

const (
	commandNew  = ":new"
	commandSave = ":save"
	commandLoad = ":load"
	commandQuit = ":quit"
)

var errQuit = errors.New("quit requested")

type uGame interface {
	StartSession(ctx context.Context) (string, *entity.Session)
	Guess(ctx context.Context, id string, c rune) (entity.GuessOutcome, error)
	Session(ctx context.Context, id string) (*entity.Session, error)
	Unsaved(ctx context.Context, id string) (bool, error)
	Save(ctx context.Context, id string) error
	Load(ctx context.Context, id string) (*entity.Session, error)
	Abandon(ctx context.Context, id string) error
}

// Server is a line-oriented terminal front end. Every input line is one
// event: a command starting with ':' or a single letter guess.
type Server struct {
	logger *slog.Logger
	uGame  uGame
	out    io.Writer

	sessionID   string
	quitWarning bool

	handlers map[string]func(ctx context.Context, arg string) error
}

func New(logger *slog.Logger, uGame uGame, out io.Writer) *Server {
	server := &Server{
		logger: logger.With("component", "console"),
		uGame:  uGame,
		out:    out,

		handlers: make(map[string]func(context.Context, string) error),
	}

	server.handlers[commandNew] = server.handleNew
	server.handlers[commandSave] = server.handleSave
	server.handlers[commandLoad] = server.handleLoad
	server.handlers[commandQuit] = server.handleQuit

	return server
}

// Start reads events from in until it is exhausted, the player quits or ctx is done.
func (that *Server) Start(ctx context.Context, in io.Reader) error {
	if err := that.handleNew(ctx, ""); err != nil {
		return err
	}

	lines := make(chan string)
	readErr := make(chan error, 1)

	// The reader stays blocked in Scan after ctx is done until in yields a
	// line or EOF; on stdin that means it lives until the process exits.
	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}

		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("failed to read input: %w", err)
					}
				default:
				}

				return nil
			}

			err := that.handleLine(ctx, line)
			if errors.Is(err, errQuit) {
				return nil
			}

			if err != nil {
				return err
			}
		}
	}
}

func (that *Server) handleLine(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	if !strings.HasPrefix(line, ":") {
		that.quitWarning = false

		letter, _ := utf8.DecodeRuneInString(line)

		return that.handleGuess(ctx, letter)
	}

	command, arg, _ := strings.Cut(line, " ")

	handler, ok := that.handlers[command]
	if !ok {
		that.printf("unknown command %q (try %s, %s, %s <id>, %s)\n", command, commandNew, commandSave, commandLoad, commandQuit)
		return nil
	}

	if command != commandQuit {
		that.quitWarning = false
	}

	return handler(ctx, strings.TrimSpace(arg))
}

func (that *Server) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(that.out, format, args...); err != nil {
		that.logger.Error("failed to write output", "error", err)
	}
}
