package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/MKhiriev/go-zk-vault/models"
)

func (a *App) cmdEnroll(ctx context.Context, args []string) error {
	fs, user := a.commandFlags("enroll")
	if err := parse(fs, user, args, 0); err != nil {
		return err
	}

	password, err := a.readNewPassword("New master password: ", EnvPassword)
	if err != nil {
		return err
	}

	res, err := a.auth.Enroll(ctx, models.Credentials{UserID: *user, Password: password})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "enrolled %s\n\nRecovery key (shown once, write it down):\n\n  %s\n\n", *user, res.RecoveryKey)
	return nil
}

func (a *App) cmdPut(ctx context.Context, args []string) error {
	fs, user := a.commandFlags("put")
	docID := fs.String("id", "", "document id (generated when empty)")
	file := fs.String("f", "", "read content from file instead of stdin")
	if err := parse(fs, user, args, 0); err != nil {
		return err
	}

	content, err := a.readInput(*file)
	if err != nil {
		return err
	}
	defer clear(content)

	if err = a.unlock(ctx, *user); err != nil {
		return err
	}

	info, err := a.documents.Save(ctx, *user, *docID, content)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s v%d\n", info.DocID, info.Version)
	return nil
}

func (a *App) cmdGet(ctx context.Context, args []string) error {
	fs, user := a.commandFlags("get")
	version := fs.Int64("version", 0, "expected version; a different stored version fails to decrypt")
	toClipboard := fs.Bool("clip", false, "copy to the clipboard instead of printing")
	if err := parse(fs, user, args, 1); err != nil {
		return err
	}
	docID := fs.Arg(0)

	if err := a.unlock(ctx, *user); err != nil {
		return err
	}

	var (
		doc models.Document
		err error
	)
	if *version > 0 {
		doc, err = a.documents.LoadVersion(ctx, *user, docID, *version)
	} else {
		doc, err = a.documents.Load(ctx, *user, docID)
	}
	if err != nil {
		return err
	}
	defer clear(doc.Content)

	if *toClipboard {
		if err = a.clipboard(string(doc.Content)); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		fmt.Fprintf(a.out, "%s v%d copied to clipboard\n", doc.DocID, doc.Version)
		return nil
	}

	_, err = a.out.Write(doc.Content)
	return err
}

func (a *App) cmdList(ctx context.Context, args []string) error {
	fs, user := a.commandFlags("list")
	if err := parse(fs, user, args, 0); err != nil {
		return err
	}

	infos, err := a.documents.List(ctx, *user)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVERSION\tSIZE\tUPDATED")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", info.DocID, info.Version, info.CiphertextSize, info.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func (a *App) cmdRemove(ctx context.Context, args []string) error {
	fs, user := a.commandFlags("rm")
	if err := parse(fs, user, args, 1); err != nil {
		return err
	}
	return a.documents.Delete(ctx, *user, fs.Arg(0))
}

func (a *App) cmdPasswd(ctx context.Context, args []string) error {
	fs, user := a.commandFlags("passwd")
	if err := parse(fs, user, args, 0); err != nil {
		return err
	}

	current, err := a.prompt.ReadSecret("Current master password: ", EnvPassword)
	if err != nil {
		return err
	}
	next, err := a.readNewPassword("New master password: ", EnvNewPassword)
	if err != nil {
		return err
	}

	if err = a.auth.ChangePassword(ctx, models.Credentials{UserID: *user, Password: current}, next); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "password changed")
	return nil
}

func (a *App) cmdExport(ctx context.Context, args []string) error {
	fs, user := a.commandFlags("export")
	output := fs.String("o", "", "write to file instead of stdout")
	if err := parse(fs, user, args, 1); err != nil {
		return err
	}

	data, err := a.documents.Export(ctx, *user, fs.Arg(0))
	if err != nil {
		return err
	}

	if *output != "" {
		return os.WriteFile(*output, data, 0o600)
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}

func (a *App) cmdImport(ctx context.Context, args []string) error {
	fs, user := a.commandFlags("import")
	file := fs.String("f", "", "read the exported document from file instead of stdin")
	if err := parse(fs, user, args, 1); err != nil {
		return err
	}

	data, err := a.readInput(*file)
	if err != nil {
		return err
	}

	if err = a.unlock(ctx, *user); err != nil {
		return err
	}

	info, err := a.documents.Import(ctx, *user, fs.Arg(0), data)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s v%d\n", info.DocID, info.Version)
	return nil
}

func (a *App) cmdRecovery(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: recovery expects verify or new", ErrUsage)
	}

	fs, user := a.commandFlags("recovery " + args[0])
	if err := parse(fs, user, args[1:], 0); err != nil {
		return err
	}

	switch args[0] {
	case "verify":
		key, err := a.prompt.ReadSecret("Recovery key: ", EnvRecoveryKey)
		if err != nil {
			return err
		}
		if err = a.auth.VerifyRecoveryKey(ctx, *user, key); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "recovery key is valid")
		return nil

	case "new":
		password, err := a.prompt.ReadSecret("Master password: ", EnvPassword)
		if err != nil {
			return err
		}
		key, err := a.auth.RegenerateRecoveryKey(ctx, models.Credentials{UserID: *user, Password: password})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "New recovery key (the old one no longer works):\n\n  %s\n\n", key)
		return nil

	default:
		return fmt.Errorf("%w: recovery %s", ErrUnknownCommand, strconv.Quote(args[0]))
	}
}

func (a *App) cmdVersion() error {
	_, err := fmt.Fprint(a.out, a.buildInfo.String())
	return err
}

func (a *App) readInput(file string) ([]byte, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", file, err)
		}
		return data, nil
	}

	data, err := io.ReadAll(a.in)
	if err != nil {
		return nil, fmt.Errorf("error reading stdin: %w", err)
	}
	return data, nil
}
