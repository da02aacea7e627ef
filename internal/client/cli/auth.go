package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/khoahotran/cvnova/internal/client/dashboard"
	"github.com/khoahotran/cvnova/internal/client/validate"
)

func printFieldErrors(env *Env, err error) error {
	var fe validate.FieldErrors
	if errors.As(err, &fe) {
		fields := make([]string, 0, len(fe))
		for field := range fe {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			fmt.Fprintf(env.Err, "  %s %s\n", field, fe[field])
		}
		return errors.New("invalid form")
	}
	return err
}

func newSignUpCmd(env *Env) *cobra.Command {
	var form validate.SignUpForm
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if form.Password, err = env.password("Password: "); err != nil {
				return err
			}
			if form.ConfirmPassword, err = env.password("Confirm password: "); err != nil {
				return err
			}
			if err := validate.Struct(form); err != nil {
				return printFieldErrors(env, err)
			}

			u, err := env.Session.SignUp(cmd.Context(), form.Email, form.Password, form.Name)
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Out, "Account created, signed in as %s\n", u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Email, "email", "", "account email")
	cmd.Flags().StringVar(&form.Name, "name", "", "display name")
	return cmd
}

func newLoginCmd(env *Env) *cobra.Command {
	var form validate.SignInForm
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if form.Password, err = env.password("Password: "); err != nil {
				return err
			}
			if err := validate.Struct(form); err != nil {
				return printFieldErrors(env, err)
			}

			u, err := env.Session.SignIn(cmd.Context(), form.Email, form.Password)
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Out, "Signed in as %s\n", u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Email, "email", "", "account email")
	return cmd
}

func newLogoutCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.Session.SignOut(); err != nil {
				return err
			}
			fmt.Fprintln(env.Out, "Signed out")
			return nil
		},
	}
}

func newWhoAmICmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.bootstrap(cmd.Context()); err != nil {
				return err
			}
			u := env.Store.State().User
			if u == nil {
				return errNotSignedIn
			}
			fmt.Fprintf(env.Out, "[%s] %s <%s>\n", dashboard.Initials(u.Name, u.Email), u.Name, u.Email)
			return nil
		},
	}
}

func newOAuthCmd(env *Env) *cobra.Command {
	var redirect string
	cmd := &cobra.Command{
		Use:       "oauth <google|github>",
		Short:     "Print the URL that starts a provider sign-in",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"google", "github"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(env.Out, env.API.OAuthURL(args[0], redirect))
			return nil
		},
	}
	cmd.Flags().StringVar(&redirect, "redirect", "", "where the provider sends the browser back")
	return cmd
}
