package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MKhiriev/go-zk-vault/internal/workers"
	"github.com/MKhiriev/go-zk-vault/models"
)

const shellHelp = `commands:
  list               list documents
  get DOC [VERSION]  print DOC
  put DOC TEXT...    store TEXT as the next version of DOC
  rm DOC             delete DOC
  lock               forget the key now
  unlock             enter the master password again
  exit               leave the shell
`

var errShellExit = errors.New("exit")

type scanResult struct {
	line string
	ok   bool
	err  error
}

// lineReader owns one goroutine that reads a line only when asked, so a
// password prompt can use the terminal between commands. The goroutine
// exits on EOF or when ctx is cancelled while it is idle; a read already
// blocked on the terminal ends with the next line or the process.
type lineReader struct {
	requests chan struct{}
	results  chan scanResult
	done     chan struct{}
}

func startLineReader(ctx context.Context, in io.Reader) *lineReader {
	r := &lineReader{
		requests: make(chan struct{}),
		results:  make(chan scanResult, 1),
		done:     make(chan struct{}),
	}

	go func() {
		defer close(r.done)
		scanner := bufio.NewScanner(in)
		for {
			select {
			case <-ctx.Done():
				return
			case <-r.requests:
			}

			ok := scanner.Scan()
			r.results <- scanResult{line: scanner.Text(), ok: ok, err: scanner.Err()}
			if !ok {
				return
			}
		}
	}()

	return r
}

func (r *lineReader) next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-r.done:
		return "", io.EOF
	case r.requests <- struct{}{}:
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-r.results:
		if !res.ok {
			if res.err != nil {
				return "", res.err
			}
			return "", io.EOF
		}
		return res.line, nil
	}
}

// shellWorker runs the read-eval loop and cancels the shared context when
// the user leaves.
type shellWorker struct {
	app    *App
	userID string
	cancel context.CancelFunc
}

func (w *shellWorker) Run(ctx context.Context) error {
	defer w.cancel()

	lines := startLineReader(ctx, w.app.in)
	for {
		fmt.Fprintf(w.app.out, "%s> ", w.userID)
		line, err := lines.next(ctx)
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			fmt.Fprintln(w.app.out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("error reading command: %w", err)
		}

		err = w.exec(ctx, strings.Fields(line))
		if errors.Is(err, errShellExit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(w.app.out, "error: %s\n", Describe(err))
		}
	}
}

func (w *shellWorker) exec(ctx context.Context, fields []string) error {
	if len(fields) == 0 {
		return nil
	}
	a := w.app
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "exit", "quit":
		return errShellExit
	case "help", "?":
		fmt.Fprint(a.out, shellHelp)
		return nil
	case "lock":
		return a.keys.EndSession(ctx)
	case "unlock":
		return a.unlock(ctx, w.userID)
	case "list", "ls":
		return a.cmdList(ctx, []string{"-u", w.userID})
	case "rm":
		if len(args) != 1 {
			return fmt.Errorf("%w: rm DOC", ErrUsage)
		}
		return a.documents.Delete(ctx, w.userID, args[0])
	case "get":
		if len(args) < 1 || len(args) > 2 {
			return fmt.Errorf("%w: get DOC [VERSION]", ErrUsage)
		}
		var (
			doc models.Document
			err error
		)
		if len(args) == 2 {
			version, parseErr := strconv.ParseInt(args[1], 10, 64)
			if parseErr != nil {
				return fmt.Errorf("%w: version must be an integer", ErrUsage)
			}
			doc, err = a.documents.LoadVersion(ctx, w.userID, args[0], version)
		} else {
			doc, err = a.documents.Load(ctx, w.userID, args[0])
		}
		if err != nil {
			return err
		}
		defer clear(doc.Content)
		fmt.Fprintf(a.out, "%s\n", doc.Content)
		return nil
	case "put":
		if len(args) < 2 {
			return fmt.Errorf("%w: put DOC TEXT...", ErrUsage)
		}
		content := []byte(strings.Join(args[1:], " "))
		defer clear(content)
		info, err := a.documents.Save(ctx, w.userID, args[0], content)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s v%d\n", info.DocID, info.Version)
		return nil
	default:
		return fmt.Errorf("%w: %q (try help)", ErrUnknownCommand, cmd)
	}
}

// cmdShell unlocks once and then serves commands until exit or EOF. The key
// is cleared after cfg.IdleTimeout without a vault operation.
func (a *App) cmdShell(ctx context.Context, args []string) error {
	fs, user := a.commandFlags("shell")
	if err := parse(fs, user, args, 0); err != nil {
		return err
	}

	if err := a.unlock(ctx, *user); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.cfg.IdleTimeout > 0 {
		fmt.Fprintf(a.out, "unlocked; auto-lock after %s idle. type help for commands\n", a.cfg.IdleTimeout)
	} else {
		fmt.Fprintln(a.out, "unlocked. type help for commands")
	}

	return workers.NewWorkers(
		&shellWorker{app: a, userID: *user, cancel: cancel},
		workers.NewIdleLockWorker(a.keys, a.cfg.IdleTimeout, 0, a.logger),
	).Run(ctx)
}
