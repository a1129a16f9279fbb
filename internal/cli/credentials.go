package cli

import (
	"context"
	"fmt"
	"os"
	"time"
)

// List prints the user id of every enrolled credential.
func (a *App) List(ctx context.Context) error {
	ids, err := a.store.List(ctx)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return err
	}
	if len(ids) == 0 {
		fmt.Println("No enrolled credentials")
		return nil
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

// Info shows the bookkeeping fields of one credential. The biometric payload
// stays sealed; nothing here requires the password.
func (a *App) Info(ctx context.Context) error {
	userID, err := getSimpleText(a.reader, "Enter user id", os.Stdout)
	if err != nil {
		return err
	}

	cred, err := a.store.Get(ctx, userID)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return err
	}

	fmt.Printf("User: %s\n", cred.UserID)
	fmt.Printf("Enrolled: %s\n", formatMillis(cred.EnrolledTimestamp))
	fmt.Printf("Last auth: %s\n", formatMillis(cred.LastAuthTimestamp))
	fmt.Printf("Auth count: %d, failed: %d, locked: %v\n",
		cred.AuthCount, cred.FailedCount, cred.IsLocked)
	fmt.Printf("Baseline A/G ratio: %.2f\n", cred.BaselineAGRatio)
	fmt.Printf("Enrollment liveness: %.2f\n", cred.EnrollmentLiveness)
	return nil
}

// Delete removes a credential from the store.
func (a *App) Delete(ctx context.Context) error {
	userID, err := getSimpleText(a.reader, "Enter user id", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.store.Delete(ctx, userID); err != nil {
		fmt.Printf("error: %v\n", err)
		return err
	}

	fmt.Printf("Deleted %q\n", userID)
	return nil
}

func formatMillis(ms uint64) string {
	if ms == 0 {
		return "never"
	}
	return time.UnixMilli(int64(ms)).Format(time.RFC3339)
}
