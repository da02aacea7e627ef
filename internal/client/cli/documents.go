package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/khoahotran/cvnova/internal/client/app"
	"github.com/khoahotran/cvnova/internal/client/dashboard"
	"github.com/khoahotran/cvnova/internal/client/editor"
	"github.com/khoahotran/cvnova/internal/domain/cv"
)

func newTemplatesCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the available templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env.Store.Dispatch(app.Navigate{Page: app.PageTemplates})
			w := tabwriter.NewWriter(env.Out, 0, 4, 2, ' ', 0)
			for _, t := range cv.Templates {
				fmt.Fprintf(w, "%s\t%s\t%s\n", t.Name, t.Category, t.Description)
			}
			return w.Flush()
		},
	}
}

func newListCmd(env *Env) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your CVs, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.enter(cmd.Context(), app.PageDashboard); err != nil {
				return err
			}
			docs, err := env.API.ListCVs(cmd.Context())
			if err != nil {
				return err
			}

			stats := dashboard.Summarize(docs)
			shown := dashboard.Filter(docs, search)
			fmt.Fprintf(env.Out, "My CVs (%d)  published %d, drafts %d, archived %d, shared %d\n",
				len(shown), stats.Published, stats.Drafts, stats.Archived, stats.Shared)
			if len(shown) == 0 {
				return nil
			}

			now := env.Now()
			w := tabwriter.NewWriter(env.Out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSTATUS\tTEMPLATE\tUPDATED")
			for _, d := range shown {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.Name, d.Status, d.Template, dashboard.FormatRelative(d.UpdatedAt, now))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by CV or person name")
	return cmd
}

func newNewCmd(env *Env) *cobra.Command {
	var name, template string
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new CV in the interactive editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := cv.FindTemplate(template); !ok {
				return fmt.Errorf("unknown template %q, see `cvnova templates`", template)
			}
			if err := env.enter(cmd.Context(), app.PageEditor); err != nil {
				return err
			}
			env.Store.Dispatch(app.EditCV{})

			doc := cv.Document{Name: name, Template: template, Status: cv.StatusDraft}
			return runEditor(cmd.Context(), env, doc, name != "")
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "document name")
	cmd.Flags().StringVar(&template, "template", cv.DefaultTemplate, "template name")
	return cmd
}

func newEditCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <cv-id>",
		Short: "Open a CV in the interactive editor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.enter(cmd.Context(), app.PageEditor); err != nil {
				return err
			}
			doc, err := findCV(cmd.Context(), env, args[0])
			if err != nil {
				return err
			}
			env.Store.Dispatch(app.EditCV{ID: doc.ID})
			return runEditor(cmd.Context(), env, *doc, false)
		},
	}
}

func findCV(ctx context.Context, env *Env, id string) (*cv.Document, error) {
	docs, err := env.API.ListCVs(ctx)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		if docs[i].ID == id {
			return &docs[i], nil
		}
	}
	return nil, fmt.Errorf("no CV with id %s", id)
}

// runEditor reads editor commands until quit or end of input, then saves what is pending.
func runEditor(ctx context.Context, env *Env, doc cv.Document, dirty bool) error {
	notifier := &editor.WriterNotifier{Out: env.Out, Err: env.Err}
	ed := editor.New(env.API, notifier, env.Logger, editor.WithDelay(env.Config.AutosaveDelay))
	ed.Load(doc)
	if dirty {
		ed.Edit(func(*cv.Document) {})
	}

	fmt.Fprintln(env.Out, "Editing, type help for commands.")
	for {
		fmt.Fprint(env.Out, "cvnova> ")
		line, err := env.readLine()
		if err != nil {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		cmd, err := editor.ParseCommand(line)
		if err != nil {
			fmt.Fprintln(env.Err, err)
			continue
		}
		if err := editor.Run(ctx, ed, cmd, env.Out); err != nil {
			if errors.Is(err, editor.ErrQuit) {
				break
			}
			if cmd.Name != "save" {
				fmt.Fprintln(env.Err, err)
			}
		}
	}
	fmt.Fprintln(env.Out)

	if err := ed.Flush(ctx); err != nil {
		return err
	}
	env.Store.Dispatch(app.Navigate{Page: app.PageDashboard})
	if id := ed.Document().ID; id != "" {
		fmt.Fprintf(env.Out, "Saved %s\n", id)
	}
	return nil
}

func newShareCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "share <cv-id>",
		Short: "Publish a CV and print its public link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.enter(cmd.Context(), app.PageDashboard); err != nil {
				return err
			}
			res, err := env.API.ShareCV(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Out, "%s\nshare id: %s\n", res.ShareURL, res.ShareID)
			return nil
		},
	}
}

func newDeleteCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <cv-id>",
		Short: "Delete a CV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.enter(cmd.Context(), app.PageDashboard); err != nil {
				return err
			}
			if err := env.API.DeleteCV(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(env.Out, "CV deleted")
			return nil
		},
	}
}

func newSharedCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "shared <share-id>",
		Short: "Show a publicly shared CV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shared, err := env.API.GetShared(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			editor.Print(env.Out, shared.CV)
			fmt.Fprintf(env.Out, "views: %d\n", shared.Views)
			return nil
		},
	}
}

func newPrefsCmd(env *Env) *cobra.Command {
	prefs := &cobra.Command{
		Use:   "prefs",
		Short: "Read or change your preferences",
	}
	prefs.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.enter(cmd.Context(), app.PageDashboard); err != nil {
				return err
			}
			current, err := env.API.GetPreferences(cmd.Context())
			if err != nil {
				return err
			}
			printPrefs(env, current)
			return nil
		},
	}, &cobra.Command{
		Use:   "set key=value...",
		Short: "Change preferences; values are JSON when they parse as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.enter(cmd.Context(), app.PageDashboard); err != nil {
				return err
			}
			current, err := env.API.GetPreferences(cmd.Context())
			if err != nil {
				return err
			}
			if current == nil {
				current = map[string]any{}
			}
			for _, arg := range args {
				key, raw, ok := strings.Cut(arg, "=")
				if !ok || key == "" {
					return fmt.Errorf("expected key=value, got %q", arg)
				}
				var value any
				if json.Unmarshal([]byte(raw), &value) != nil {
					value = raw
				}
				current[key] = value
			}
			updated, err := env.API.SetPreferences(cmd.Context(), current)
			if err != nil {
				return err
			}
			printPrefs(env, updated)
			return nil
		},
	})
	return prefs
}

func printPrefs(env *Env, prefs map[string]any) {
	keys := make([]string, 0, len(prefs))
	for k := range prefs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(env.Out, "%s=%v\n", k, prefs[k])
	}
}

func newAnalyticsCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "analytics <cv-id>",
		Short: "Show views and downloads of a CV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.enter(cmd.Context(), app.PageDashboard); err != nil {
				return err
			}
			a, err := env.API.Analytics(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			last := "never"
			if a.LastViewed != nil {
				last = a.LastViewed.Local().Format(time.RFC3339)
			}
			fmt.Fprintf(env.Out, "views: %d\ndownloads: %d\nlast viewed: %s\ncreated: %s\nupdated: %s\n",
				a.Views, a.Downloads, last,
				a.CreatedAt.Local().Format(time.RFC3339), a.UpdatedAt.Local().Format(time.RFC3339))
			return nil
		},
	}
}

func newHealthCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := env.API.Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Out, "%s %s\n", h.Status, h.Timestamp)
			return nil
		},
	}
}
