package cli

import (
	"github.com/spf13/cobra"
)

func NewRootCommand(env *Env) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "cvnova",
		Short:         "Build, share and track résumés from the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			env.init(verbose)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			env.close()
		},
	}
	root.SetIn(env.In)
	root.SetOut(env.Out)
	root.SetErr(env.Err)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newSignUpCmd(env),
		newLoginCmd(env),
		newLogoutCmd(env),
		newWhoAmICmd(env),
		newOAuthCmd(env),
		newTemplatesCmd(env),
		newListCmd(env),
		newNewCmd(env),
		newEditCmd(env),
		newShareCmd(env),
		newDeleteCmd(env),
		newSharedCmd(env),
		newPrefsCmd(env),
		newAnalyticsCmd(env),
		newHealthCmd(env),
	)
	return root
}
