package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vetintake/internal/auth"
)

// tokenValidity is the lifetime of tokens issued by the token command.
const tokenValidity = 12 * time.Hour

func (a *App) authenticate(token string) error {
	op, err := auth.ParseToken(token, []byte(a.config.SecretKey))
	if err != nil {
		return err
	}
	clinic := op.ClinicID
	if clinic == "" {
		clinic = a.config.ClinicID
	}
	if clinic == "" {
		return errors.New("token carries no clinic and no default clinic is configured")
	}
	a.operator = &op
	a.clinicID = clinic
	return nil
}

// Login accepts an operator token as the first argument, or prompts for it.
func (a *App) Login(ctx context.Context, args []string) error {
	var token string
	if len(args) > 0 {
		token = args[0]
	} else {
		t, err := GetSecret("Operator token", a.out)
		if err != nil {
			return err
		}
		token = t
	}

	if err := a.authenticate(token); err != nil {
		return fmt.Errorf("login unsuccessful: %w", err)
	}
	a.log.Info(ctx, "operator logged in", "user", a.operator.UserID, "clinic", a.clinicID)
	fmt.Fprintf(a.out, "Logged in as %s (clinic %s)\n", a.operator.UserID, a.clinicID)
	return nil
}

// Token issues an operator token signed with the configured secret.
func (a *App) Token(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: token <user-id> [clinic-id]")
	}
	op := auth.Operator{UserID: args[0], ClinicID: a.config.ClinicID}
	if len(args) > 1 {
		op.ClinicID = args[1]
	}
	token, err := auth.GenerateToken(op, []byte(a.config.SecretKey), tokenValidity)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, token)
	return nil
}
