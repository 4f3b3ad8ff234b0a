package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smartgwiza/reports-cli/internal/config"
	"github.com/smartgwiza/reports-cli/internal/model"
	"github.com/smartgwiza/reports-cli/internal/normalize"
	"github.com/smartgwiza/reports-cli/internal/session"
	"github.com/smartgwiza/reports-cli/pkg/backend"
)

var (
	loginPhone    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate(config.ModeBackend); err != nil {
			return err
		}
		password := loginPassword
		if password == "" {
			password = os.Getenv("SMARTGWIZA_PASSWORD")
		}
		sess, err := login(cmd.Context(), newBackendClient(nil), sessionStore(), loginPhone, password)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", sess.Fullname, sess.Role)
		return nil
	},
}

// login validates the phone number, authenticates and saves the session.
func login(ctx context.Context, client backend.Client, ss *session.Store, phone, password string) (*model.Session, error) {
	if !normalize.ValidateRwandanPhone(phone) {
		return nil, eris.Errorf("invalid phone number %q: expected a Rwandan mobile number such as 0788123456", phone)
	}
	if password == "" {
		return nil, eris.New("password is required (--password or SMARTGWIZA_PASSWORD)")
	}

	sess, err := client.Login(ctx, normalize.FormatPhoneForBackend(phone), password)
	if err != nil {
		return nil, eris.Wrap(err, "login")
	}
	if err := ss.Set(*sess); err != nil {
		return nil, err
	}
	zap.L().Info("logged in", zap.String("role", sess.Role), zap.String("session", ss.Path()))
	return sess, nil
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := sessionStore().Clear(); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return whoami(cmd.OutOrStdout(), sessionStore())
	},
}

func whoami(out io.Writer, ss *session.Store) error {
	sess, err := ss.Get()
	if errors.Is(err, session.ErrNoSession) {
		_, _ = fmt.Fprintln(out, "Not signed in.")
		return nil
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Name:  %s\nPhone: %s\nRole:  %s\n", sess.Fullname, sess.Phone, sess.Role)
	return nil
}

func init() {
	loginCmd.Flags().StringVar(&loginPhone, "phone", "", "phone number (07XXXXXXXX or +2507XXXXXXXX)")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "password (default from SMARTGWIZA_PASSWORD)")
	_ = loginCmd.MarkFlagRequired("phone")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
