package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mmynk/clubhouse/internal/calculator"
	"github.com/mmynk/clubhouse/internal/models"
	"github.com/mmynk/clubhouse/internal/storage"
)

// SummaryOptions holds the summary command flags.
type SummaryOptions struct {
	From        string
	To          string
	AccountID   string
	Group       string
	Beneficiary string
}

// SummaryReport is the rendered ledger summary.
type SummaryReport struct {
	From           string `json:"from" yaml:"from"`
	To             string `json:"to,omitempty" yaml:"to,omitempty"`
	AccountID      string `json:"accountId,omitempty" yaml:"accountId,omitempty"`
	Group          string `json:"group,omitempty" yaml:"group,omitempty"`
	Beneficiary    string `json:"beneficiary,omitempty" yaml:"beneficiary,omitempty"`
	OpeningBalance string `json:"openingBalance" yaml:"openingBalance"`
	TotalRevenue   string `json:"totalRevenue" yaml:"totalRevenue"`
	TotalExpense   string `json:"totalExpense" yaml:"totalExpense"`
	ClosingBalance string `json:"closingBalance" yaml:"closingBalance"`
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SummaryOptions{}

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the ledger summary for a period",
		Long: `Print the opening balance, revenue, expense and closing balance for a period.

The opening balance always covers every posting before --from, regardless of
the account, group and beneficiary filters.`,
		Example: `  clubhouse summary --from 2024-03-01 --to 2024-03-31
  clubhouse summary --from 2024-01-01 --group revenue --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := opts.filter()
			if err != nil {
				return err
			}

			cfg, _, err := rootOpts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			report, err := buildSummary(cmd.Context(), store, cfg.Ledger.BaseInitialBalance, filter)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), rootOpts.Format, report, report.Text())
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "first day of the period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.To, "to", "", "last day of the period (YYYY-MM-DD), open-ended if empty")
	cmd.Flags().StringVar(&opts.AccountID, "account", "", "only postings of this account")
	cmd.Flags().StringVar(&opts.Group, "group", "", "only postings of this group (revenue|expense)")
	cmd.Flags().StringVar(&opts.Beneficiary, "beneficiary", "", "only postings with exactly this beneficiary")
	_ = cmd.MarkFlagRequired("from")

	return cmd
}

func (o *SummaryOptions) filter() (calculator.Filter, error) {
	var f calculator.Filter

	start, err := models.ParseDate(o.From)
	if err != nil {
		return f, fmt.Errorf("invalid --from: %w", err)
	}
	f.StartDate = start

	if o.To != "" {
		end, err := models.ParseDate(o.To)
		if err != nil {
			return f, fmt.Errorf("invalid --to: %w", err)
		}
		if end.Before(start) {
			return f, fmt.Errorf("--to %s is before --from %s", o.To, o.From)
		}
		f.EndDate = end
	}

	if o.Group != "" {
		f.Group = models.AccountGroup(o.Group)
		if !f.Group.Valid() {
			return f, fmt.Errorf("invalid --group %q: must be revenue or expense", o.Group)
		}
	}
	f.AccountID = o.AccountID
	f.Beneficiary = o.Beneficiary
	return f, nil
}

func buildSummary(ctx context.Context, store storage.PostingStore, base decimal.Decimal, f calculator.Filter) (*SummaryReport, error) {
	postings, err := store.ListPostings(ctx, storage.PostingQuery{})
	if err != nil {
		return nil, fmt.Errorf("failed to load postings: %w", err)
	}

	sum, _ := calculator.ComputeSummary(postings, base, f)

	report := &SummaryReport{
		From:           f.StartDate.Format(time.DateOnly),
		AccountID:      f.AccountID,
		Group:          string(f.Group),
		Beneficiary:    f.Beneficiary,
		OpeningBalance: sum.OpeningBalance.StringFixed(2),
		TotalRevenue:   sum.TotalRevenue.StringFixed(2),
		TotalExpense:   sum.TotalExpense.StringFixed(2),
		ClosingBalance: sum.ClosingBalance.StringFixed(2),
	}
	if !f.EndDate.IsZero() {
		report.To = f.EndDate.Format(time.DateOnly)
	}
	return report, nil
}

// Text renders the report for a terminal.
func (r *SummaryReport) Text() string {
	var b strings.Builder

	to := r.To
	if to == "" {
		to = "open"
	}
	fmt.Fprintf(&b, "%-17s%s .. %s\n", "Period:", r.From, to)

	var filters []string
	if r.AccountID != "" {
		filters = append(filters, "account="+r.AccountID)
	}
	if r.Group != "" {
		filters = append(filters, "group="+r.Group)
	}
	if r.Beneficiary != "" {
		filters = append(filters, "beneficiary="+r.Beneficiary)
	}
	if len(filters) > 0 {
		fmt.Fprintf(&b, "%-17s%s\n", "Filter:", strings.Join(filters, " "))
	}

	fmt.Fprintf(&b, "%-17s%s\n", "Opening balance:", r.OpeningBalance)
	fmt.Fprintf(&b, "%-17s%s\n", "Revenue:", r.TotalRevenue)
	fmt.Fprintf(&b, "%-17s%s\n", "Expense:", r.TotalExpense)
	fmt.Fprintf(&b, "%-17s%s\n", "Closing balance:", r.ClosingBalance)
	return b.String()
}
