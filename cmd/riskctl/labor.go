package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bibbank/riskcore/internal/application/dto"
	"github.com/bibbank/riskcore/internal/application/usecase"
)

func laborCmd() *cobra.Command {
	var (
		start, end, salary                 string
		noNotice, noSeverance, noChristmas bool
	)

	cmd := &cobra.Command{
		Use:   "labor",
		Short: "Compute Dominican labor benefits for an employment period",
		Example: `  riskctl labor --start 2020-01-15 --end 2025-06-15 --salary 45000
  riskctl labor --start 2024-03-01 --end 2025-06-15 --salary 30000 --no-severance`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			monthly, err := decimal.NewFromString(salary)
			if err != nil {
				return fmt.Errorf("invalid --salary %q: %w", salary, err)
			}
			req := dto.CalculateBenefitsRequest{
				StartDate:              start,
				EndDate:                end,
				MonthlySalary:          monthly,
				IncludeNotice:          boolPtr(!noNotice),
				IncludeSeverance:       boolPtr(!noSeverance),
				IncludeChristmasSalary: boolPtr(!noChristmas),
			}

			if server := viper.GetString("server.address"); server != "" {
				client, closeConn, err := dialRisk(server)
				if err != nil {
					return err
				}
				defer closeConn()
				ctx, cancel := authContext(cmd.Context())
				defer cancel()
				resp, err := client.CalculateBenefits(ctx, &req)
				if err != nil {
					return fmt.Errorf("calculate benefits: %w", err)
				}
				return printJSON(cmd.OutOrStdout(), resp)
			}

			resp, err := usecase.NewCalculateBenefitsUseCase().Execute(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("calculate benefits: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "employment start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "employment end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&salary, "salary", "", "monthly salary in DOP")
	cmd.Flags().BoolVar(&noNotice, "no-notice", false, "exclude notice pay")
	cmd.Flags().BoolVar(&noSeverance, "no-severance", false, "exclude severance")
	cmd.Flags().BoolVar(&noChristmas, "no-christmas", false, "exclude Christmas salary")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	_ = cmd.MarkFlagRequired("salary")
	return cmd
}

func boolPtr(b bool) *bool { return &b }
