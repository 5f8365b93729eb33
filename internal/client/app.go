package client

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/MKhiriev/go-zk-vault/internal/app"
	"github.com/MKhiriev/go-zk-vault/internal/config"
	"github.com/MKhiriev/go-zk-vault/internal/crypto"
	"github.com/MKhiriev/go-zk-vault/internal/logger"
	"github.com/MKhiriev/go-zk-vault/internal/service"
	"github.com/MKhiriev/go-zk-vault/internal/session"
	"github.com/MKhiriev/go-zk-vault/internal/store"
	"github.com/MKhiriev/go-zk-vault/models"
)

const usage = `usage: zkvault [global flags] <command> [flags] [args]

commands:
  enroll                     create the vault key setup and print the recovery key
  put [-id DOC] [-f FILE]    encrypt stdin (or FILE) as the next version of DOC
  get [-version N] [-clip] DOC
                             decrypt DOC to stdout (or the clipboard)
  list                       list documents without decrypting them
  rm DOC                     delete DOC
  passwd                     change the master password
  export [-o FILE] DOC       write DOC in encrypted JSON form
  import [-f FILE] DOC       store an exported document as DOC
  recovery verify|new        check or replace the recovery key
  shell                      interactive session with idle auto-lock
  version                    print build information

every command except version takes -u USER (default $ZKVAULT_USER)
`

// App is the zkvault command-line application.
type App struct {
	auth      service.AuthService
	documents service.DocumentService
	keys      *session.KeyManager

	cfg       config.App
	buildInfo models.AppBuildInfo

	prompt    SecretPrompt
	clipboard func(string) error
	in        io.Reader
	out       io.Writer

	logger *logger.Logger
}

var _ Client = (*App)(nil)

// NewApp wires the application to one session's services.
func NewApp(services *service.Services, keys *session.KeyManager, cfg config.App, buildInfo models.AppBuildInfo, logger *logger.Logger) *App {
	return &App{
		auth:      services.AuthService,
		documents: services.DocumentService,
		keys:      keys,
		cfg:       cfg,
		buildInfo: buildInfo,
		prompt:    newTerminalPrompt(),
		clipboard: clipboard.WriteAll,
		in:        os.Stdin,
		out:       os.Stdout,
		logger:    logger,
	}
}

// Run executes one sub-command. The session is locked when Run returns.
func (a *App) Run(ctx context.Context, args []string) error {
	ctx = a.logger.WithContext(ctx)
	defer a.keys.EndSession(ctx)

	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	a.logger.Debug().Str("func", "App.Run").Str("command", cmd).Msg("running command")

	switch cmd {
	case "enroll":
		return a.cmdEnroll(ctx, rest)
	case "put":
		return a.cmdPut(ctx, rest)
	case "get":
		return a.cmdGet(ctx, rest)
	case "list", "ls":
		return a.cmdList(ctx, rest)
	case "rm":
		return a.cmdRemove(ctx, rest)
	case "passwd":
		return a.cmdPasswd(ctx, rest)
	case "export":
		return a.cmdExport(ctx, rest)
	case "import":
		return a.cmdImport(ctx, rest)
	case "recovery":
		return a.cmdRecovery(ctx, rest)
	case "shell":
		return a.cmdShell(ctx, rest)
	case "version":
		return a.cmdVersion()
	case "help", "-h", "-help", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
}

// commandFlags returns a FlagSet for cmd with the common -u flag bound to
// the returned pointer.
func (a *App) commandFlags(cmd string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	user := fs.String("u", os.Getenv(EnvUser), "user id")
	return fs, user
}

// parse parses args and checks the user id and the number of positional
// arguments.
func parse(fs *flag.FlagSet, user *string, args []string, positional int) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUsage, fs.Name(), err)
	}
	if *user == "" {
		return ErrNoUser
	}
	if fs.NArg() != positional {
		return fmt.Errorf("%w: %s expects %d argument(s), got %d", ErrUsage, fs.Name(), positional, fs.NArg())
	}
	return nil
}

// unlock prompts for the master password and unlocks the session.
func (a *App) unlock(ctx context.Context, userID string) error {
	password, err := a.prompt.ReadSecret("Master password: ", EnvPassword)
	if err != nil {
		return err
	}
	return a.auth.Unlock(ctx, models.Credentials{UserID: userID, Password: password})
}

// readNewPassword prompts twice and checks both entries match.
func (a *App) readNewPassword(prompt, env string) (string, error) {
	first, err := a.prompt.ReadSecret(prompt, env)
	if err != nil {
		return "", err
	}
	if _, fromEnv := os.LookupEnv(env); fromEnv {
		return first, nil
	}
	second, err := a.prompt.ReadSecret("Repeat: ", env)
	if err != nil {
		return "", err
	}
	if first != second {
		return "", ErrPasswordMismatch
	}
	return first, nil
}

// Describe turns service and crypto errors into a short message for the
// terminal. It never includes document content or key material.
func Describe(err error) string {
	switch {
	case errors.Is(err, service.ErrWrongPassword):
		return app.MsgWrongPassword
	case errors.Is(err, service.ErrWrongRecoveryKey):
		return app.MsgWrongRecoveryKey
	case errors.Is(err, service.ErrNotEnrolled):
		return app.MsgNotEnrolled
	case errors.Is(err, service.ErrAlreadyEnrolled):
		return app.MsgAlreadyEnrolled
	case errors.Is(err, session.ErrNoKEK):
		return app.MsgSessionLocked
	case errors.Is(err, store.ErrDocumentNotFound):
		return app.MsgDocumentNotFound
	case errors.Is(err, store.ErrVersionConflict):
		return app.MsgVersionConflict
	case errors.Is(err, crypto.ErrAuthentication):
		return app.MsgAuthenticationFailed
	case errors.Is(err, service.ErrInvalidDataProvided), errors.Is(err, crypto.ErrValidation):
		return fmt.Sprintf("%s: %s", app.MsgInvalidDataProvided, strings.TrimSpace(err.Error()))
	}
	return strings.TrimSpace(err.Error())
}
