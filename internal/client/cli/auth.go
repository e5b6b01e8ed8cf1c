package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/daybook/internal/client/legacy"
	"github.com/dmitrijs2005/daybook/internal/common"
)

// getSimpleText and getPassword are swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) credentials() (string, []byte, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

// Register creates an account. It does not log in.
func (a *App) Register(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.remote.Register(ctx, email, string(password)); err != nil {
		return a.report("Register", err)
	}
	fmt.Fprintln(a.out, "Account created, you can log in now.")
	return nil
}

// Login authenticates, imports the legacy local store once and opens the
// session.
func (a *App) Login(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	sess, err := a.remote.Login(ctx, email, string(password))
	if err != nil {
		return a.report("Login", err)
	}
	a.email, a.userID = email, sess.UserID

	if a.config.LegacyStorePath != "" {
		res, err := legacy.Migrate(ctx, a.config.LegacyStorePath, a.remote, a.userID, a.log)
		switch {
		case err != nil:
			fmt.Fprintf(a.out, "Legacy import did not finish (%s); it will be retried on next login.\n", describe(err))
		case res.Imported > 0 || res.Skipped > 0:
			fmt.Fprintf(a.out, "Imported %d moments from the local store (%d skipped).\n", res.Imported, res.Skipped)
		}
	}

	s, err := a.sessions.SwitchUser(ctx, a.userID)
	if err != nil {
		fmt.Fprintf(a.out, "Could not load moments: %s\n", describe(err))
	}

	nctx, cancel := context.WithCancel(context.Background())
	a.stopNotify = cancel
	go a.notifyRewards(nctx, s.Rewards())

	fmt.Fprintf(a.out, "Logged in as %s.\n", email)
	return nil
}

// Logout drops the session and the access token.
func (a *App) Logout(ctx context.Context) error {
	a.endSession()
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) endSession() {
	if a.stopNotify != nil {
		a.stopNotify()
		a.stopNotify = nil
	}
	a.sessions.Logout()
	a.remote.Logout()
	a.email, a.userID, a.listed = "", "", nil
}
