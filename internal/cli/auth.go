package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/lifeauth/internal/engine"
	"github.com/dmitrijs2005/lifeauth/internal/shared"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Enroll prompts for a user id and password, captures a gated plasma sample
// and creates the credential. The store wired into the engine persists it.
//
// On success it prints "Success!" and returns nil. The password byte slice
// is securely wiped before returning.
func (a *App) Enroll(ctx context.Context) error {
	userID, err := getSimpleText(a.reader, "Enter user id", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	cred, err := a.engine.Enroll(ctx, a.provider, userID, string(password))
	if err != nil {
		fmt.Printf("Enrollment failed: %v\n", err)
		return err
	}

	fmt.Println("Success!")
	fmt.Printf("Enrolled %q, liveness %.2f\n", cred.UserID, cred.EnrollmentLiveness)
	return nil
}

// Verify prompts for credentials and runs one two-factor authentication
// attempt. Sub-scores are printed for both outcomes so a rejected user can
// see which marker family disagreed; counter updates are persisted by the
// engine.
func (a *App) Verify(ctx context.Context) error {
	userID, err := getSimpleText(a.reader, "Enter user id", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	cred, err := a.store.Get(ctx, userID)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return err
	}

	res, err := a.engine.Authenticate(ctx, a.provider, cred, string(password))
	if err != nil {
		fmt.Printf("Authentication failed: %v\n", err)
		if res != nil {
			printScores(res)
		}
		return err
	}

	fmt.Println("Authentication succeeded!")
	printScores(res)
	if res.Token != "" {
		fmt.Printf("Session token: %s\n", res.Token)
	}
	return nil
}

// Rebaseline prompts for credentials and refreshes the stored biometric
// baseline under the existing password.
func (a *App) Rebaseline(ctx context.Context) error {
	userID, err := getSimpleText(a.reader, "Enter user id", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	cred, err := a.store.Get(ctx, userID)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return err
	}

	if err := a.engine.Rebaseline(ctx, a.provider, cred, string(password)); err != nil {
		fmt.Printf("Rebaseline failed: %v\n", err)
		return err
	}

	fmt.Println("Baseline refreshed")
	return nil
}

// Reset clears the lockout on a credential and writes the unlocked record
// back to the store.
func (a *App) Reset(ctx context.Context) error {
	userID, err := getSimpleText(a.reader, "Enter user id", os.Stdout)
	if err != nil {
		return err
	}

	cred, err := a.store.Get(ctx, userID)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return err
	}

	a.engine.ResetLockout(cred)
	if err := a.store.Update(ctx, cred); err != nil {
		fmt.Printf("error: %v\n", err)
		return err
	}

	fmt.Printf("Lockout cleared for %q\n", userID)
	return nil
}

func printScores(res *engine.MatchResult) {
	fmt.Printf("Overall similarity: %.3f\n", res.OverallSimilarity)
	fmt.Printf("  proteins %.3f  antibodies %.3f  metabolites %.3f\n",
		res.ProteinSimilarity, res.AntibodySimilarity, res.MetaboliteSimilarity)
	fmt.Printf("  lipids %.3f  enzymes %.3f  electrolytes %.3f\n",
		res.LipidSimilarity, res.EnzymeSimilarity, res.ElectrolyteSimilarity)
	fmt.Printf("Liveness: %.2f  quality: %.2f\n", res.LivenessScore, res.QualityScore)
	if res.HealthAlert {
		fmt.Printf("Health alert: %s\n", res.HealthSummary)
	}
}
