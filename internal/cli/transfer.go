package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/lifeauth/internal/credential"
	"github.com/dmitrijs2005/lifeauth/internal/filex"
	"github.com/dmitrijs2005/lifeauth/internal/store"
	"github.com/dmitrijs2005/lifeauth/internal/vault"
)

// Export writes a credential to <dir>/<userID>.cred. The file carries the
// sealed record, so it is as safe at rest as the store row; permissions are
// still restricted to the owner.
func (a *App) Export(ctx context.Context) error {
	userID, err := getSimpleText(a.reader, "Enter user id", os.Stdout)
	if err != nil {
		return err
	}

	cred, err := a.store.Get(ctx, userID)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return err
	}

	dirIn, err := getSimpleText(a.reader, `Enter output directory (empty for "export")`, os.Stdout)
	if err != nil {
		return err
	}
	if dirIn == "" {
		dirIn = "export"
	}

	dir, err := filex.EnsureDir(dirIn)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return err
	}

	data, err := cred.MarshalBinary()
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return err
	}

	outputFile := filepath.Join(dir, userID+".cred")
	if err := os.WriteFile(outputFile, data, 0o600); err != nil {
		fmt.Printf("error: %v\n", err)
		return err
	}

	fmt.Printf("Credential saved to: %s\n", outputFile)
	return nil
}

// Import loads a credential file and enrolls it into the store.
func (a *App) Import(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Enter credential file path", os.Stdout)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return err
	}

	cred, err := credential.Import(data)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return err
	}

	if err := a.store.Save(ctx, cred); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			fmt.Printf("User %q is already enrolled\n", cred.UserID)
		} else {
			fmt.Printf("error: %v\n", err)
		}
		return err
	}

	fmt.Printf("Imported credential for %q\n", cred.UserID)
	return nil
}

// Backup pushes the current credential record to the vault under a fresh
// timestamped key.
func (a *App) Backup(ctx context.Context) error {
	userID, err := getSimpleText(a.reader, "Enter user id", os.Stdout)
	if err != nil {
		return err
	}

	cred, err := a.store.Get(ctx, userID)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return err
	}

	data, err := cred.MarshalBinary()
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return err
	}

	key := vault.BackupKey(userID)
	if err := a.vault.Put(ctx, key, data); err != nil {
		fmt.Printf("error: %v\n", err)
		return err
	}

	fmt.Printf("Backup stored as %s\n", key)
	return nil
}

// Restore pulls the latest vault backup for a user and writes it into the
// store, replacing the current record or re-creating a deleted one.
func (a *App) Restore(ctx context.Context) error {
	userID, err := getSimpleText(a.reader, "Enter user id", os.Stdout)
	if err != nil {
		return err
	}

	keys, err := a.vault.List(ctx, vault.UserPrefix(userID))
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return err
	}
	if len(keys) == 0 {
		fmt.Printf("No backups for %q\n", userID)
		return vault.ErrNotFound
	}

	// keys sort lexically; the timestamp prefix keeps the latest one last
	key := keys[len(keys)-1]

	data, err := a.vault.Get(ctx, key)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return err
	}

	cred, err := credential.Import(data)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return err
	}

	err = a.store.Update(ctx, cred)
	if errors.Is(err, store.ErrNotFound) {
		err = a.store.Save(ctx, cred)
	}
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return err
	}

	fmt.Printf("Restored %q from %s\n", userID, key)
	return nil
}
