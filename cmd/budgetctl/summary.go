package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/report"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func (a *app) summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the balance and the per-category breakdown",
		RunE: func(cmd *cobra.Command, _ []string) error {
			typ, err := core.ParseTxType(a.v.GetString("type"))
			if err != nil {
				return err
			}
			engine, user, err := a.open(cmd)
			if err != nil {
				return err
			}

			acct, err := engine.Account(cmd.Context(), user)
			if err != nil {
				return err
			}
			loaded, err := engine.Load(cmd.Context(), user, typ)
			if err != nil {
				return err
			}
			sum, err := report.Aggregate(loaded.Transactions)
			if err != nil && !errors.Is(err, core.ErrEmptyDataset) {
				return err
			}

			w := cmd.OutOrStdout()
			renderBalance(w, report.NewBalanceCard(acct.Balance))
			if err != nil {
				fmt.Fprintln(w, warnStyle.Render("No transactions found. Add some to get started!"))
				return nil
			}
			renderSummary(w, typ, sum)
			if loaded.Malformed > 0 {
				fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d transaction(s) have an unreadable date.", loaded.Malformed)))
			}
			return nil
		},
	}
	cmd.Flags().String("type", string(core.Expense), "transaction type (Income or Expense)")
	_ = a.v.BindPFlag("type", cmd.Flags().Lookup("type"))
	return cmd
}

func renderBalance(w io.Writer, card report.BalanceCard) {
	style := lipgloss.NewStyle().Bold(true)
	switch card.Tone {
	case report.TonePositive:
		style = positiveStyle.Bold(true)
	case report.ToneNegative:
		style = negativeStyle.Bold(true)
	}
	fmt.Fprintf(w, "Balance: %s\n\n", style.Render(card.Display()))
}

func renderSummary(w io.Writer, typ core.TxType, sum report.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		headerStyle.Render("Category"),
		headerStyle.Render("Amount"),
		headerStyle.Render("Share"),
		headerStyle.Render("Count"))
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		strings.Repeat("-", 20),
		strings.Repeat("-", 12),
		strings.Repeat("-", 7),
		strings.Repeat("-", 5))

	points := sum.Points()
	for i, row := range sum.Rows() {
		fmt.Fprintf(tw, "%s\t%s\t%.1f%%\t%d\n", row.Name, row.Amount.Format(), points[i].Percent, row.Count)
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "\nTotal %ss: %s (%d transactions)\n", typ, headerStyle.Render(sum.Total.Format()), sum.Count)
}
