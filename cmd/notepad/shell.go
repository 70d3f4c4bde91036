package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"notedash/internal/ipc"
	"notedash/internal/services/records"
	"notedash/internal/services/session"
)

const helpText = `commands:
  list                 reload and show every note
  new [title]          start a note, saving the current one first
  todo                 start a to-do list
  open <id>            edit a stored note, saving the current one first
  new! / todo! / open! same, but drop unsaved changes
  title <text>         set the title
  body <text>          set the content
  color <name>         set the color and save
  save                 save now
  delete               delete the current note
  status               show the session state
  quit`

var errQuit = errors.New("quit")

// shell reads one command per line and drives the client's edit session
type shell struct {
	client *ipc.Client

	mu  sync.Mutex
	out io.Writer
}

func newShell(out io.Writer) *shell {
	return &shell{out: out}
}

func (sh *shell) printf(format string, args ...any) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	fmt.Fprintf(sh.out, format, args...)
}

// autosaved reports autosave outcomes; it runs on the debouncer goroutine
func (sh *shell) autosaved(n *records.Note, err error) {
	switch {
	case err != nil:
		sh.printf("autosave failed: %v\n", err)
	case n != nil:
		sh.printf("autosaved %s\n", n.ID)
	}
}

// run executes commands until quit or end of input
func (sh *shell) run(ctx context.Context, in io.Reader) error {
	if _, err := sh.client.Load(ctx); err != nil {
		return fmt.Errorf("initial load: %w", err)
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		err := sh.exec(ctx, scanner.Text())
		if errors.Is(err, errQuit) {
			break
		}
		if err != nil {
			sh.printf("error: %v\n", err)
		}
	}

	// leave nothing unsaved behind
	if sh.client.Session().Dirty() {
		if _, err := sh.client.Session().Save(ctx); err != nil {
			return fmt.Errorf("final save: %w", err)
		}
	}
	return scanner.Err()
}

func (sh *shell) exec(ctx context.Context, line string) error {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	policy := session.SwitchSave
	if trimmed, ok := strings.CutSuffix(name, "!"); ok {
		name, policy = trimmed, session.SwitchDiscard
	}

	s := sh.client.Session()
	switch name {
	case "":
		return nil
	case "help":
		sh.printf("%s\n", helpText)
		return nil
	case "quit", "exit":
		return errQuit
	case "list":
		notes, err := sh.client.Load(ctx)
		if err != nil {
			return err
		}
		sh.list(notes, s.Current())
		return nil
	case "new":
		return s.StartNew(ctx, records.NoteInput{Title: arg}, policy)
	case "todo":
		return s.StartNewTodo(ctx, "", policy)
	case "open":
		n := sh.find(arg)
		if n == nil {
			return fmt.Errorf("no note %q", arg)
		}
		return s.Select(ctx, n, policy)
	case "title":
		return s.Edit(session.FieldTitle, arg)
	case "body":
		return s.Edit(session.FieldContent, arg)
	case "color":
		n, err := s.SetColor(ctx, records.Color(arg))
		if err != nil {
			return err
		}
		sh.saved(n)
		return nil
	case "save":
		n, err := s.Save(ctx)
		if err != nil {
			return err
		}
		sh.saved(n)
		return nil
	case "delete":
		if _, err := s.Delete(ctx); err != nil {
			return err
		}
		sh.printf("deleted\n")
		return nil
	case "status":
		sh.status(s)
		return nil
	default:
		return fmt.Errorf("unknown command %q, try help", name)
	}
}

func (sh *shell) find(id string) *records.Note {
	for _, n := range sh.client.Notes() {
		if n.ID == id {
			return n
		}
	}
	return nil
}

func (sh *shell) saved(n *records.Note) {
	if n == nil {
		sh.printf("saved\n")
		return
	}
	sh.printf("saved %s\n", n.ID)
}

func (sh *shell) list(notes []*records.Note, current *records.Note) {
	if len(notes) == 0 {
		sh.printf("no notes\n")
		return
	}
	for _, n := range notes {
		mark := " "
		if current != nil && current.ID == n.ID {
			mark = "*"
		}
		sh.printf("%s %s  %-6s  %s\n", mark, n.ID, n.Color, n.Title)
	}
}

func (sh *shell) status(s *session.Session) {
	n := s.Current()
	if n == nil {
		sh.printf("%s\n", s.State())
		return
	}
	sh.printf("%s id=%q title=%q dirty=%t autosave_pending=%t\n",
		s.State(), n.ID, n.Title, s.Dirty(), s.AutosavePending())
}
