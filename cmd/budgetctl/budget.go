package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) budgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "budget",
		Short: "Check spending against the configured budget",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, user, err := a.open(cmd)
			if err != nil {
				return err
			}

			acct, err := engine.Account(cmd.Context(), user)
			if err != nil {
				return err
			}
			st, err := engine.Evaluate(cmd.Context(), user, acct.Budget, engine.Now())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if !st.Active {
				fmt.Fprintln(w, mutedStyle.Render("No budget is set for this account."))
				return nil
			}
			if st.Exceeded {
				fmt.Fprintln(w, negativeStyle.Render(st.Message()))
			} else {
				fmt.Fprintln(w, positiveStyle.Render(st.Message()))
			}
			fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("Window %s to %s", st.Window.Start.Format(), st.Window.End.Format())))
			if st.Skipped > 0 {
				fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d expense(s) with an unreadable date were not counted.", st.Skipped)))
			}
			return nil
		},
	}
}
