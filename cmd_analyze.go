package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var summaryJSON bool

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the executive summary and derived insights",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ins := BuildInsights(dataset, settings)
		if summaryJSON {
			return writeJSON(cmd.OutOrStdout(), ins)
		}
		PrintSummary(cmd.OutOrStdout(), dataset, ins)
		return nil
	},
}

var roiOpts struct {
	scenario       string
	implementation float64
	maintenance    float64
	patients       float64
	revenue        float64
	years          int
	interactive    bool
}

var roiCmd = &cobra.Command{
	Use:   "roi",
	Short: "Evaluate the return on a language services investment",
	Long: `Evaluate the return on a language services investment.

Inputs default to the named dataset scenario (year-one unless --scenario is
given); any flag overrides the matching scenario value.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		sc, err := resolveROIScenario(cmd)
		if err != nil {
			return err
		}
		years := roiOpts.years

		if roiOpts.interactive {
			sc, years = NewROIPromptBuilder(cmd.InOrStdin(), cmd.OutOrStdout()).BuildROIScenario(sc, years)
		}
		if problems := validateROIInputs(sc, years); len(problems) > 0 {
			return &AnalyticsError{Code: ErrCodeInvalidInput, Message: "invalid ROI inputs", Details: problems}
		}

		logger.Debug("Calculating ROI",
			zap.Float64("implementation", sc.ImplementationCost),
			zap.Float64("maintenance", sc.MaintenanceCost),
			zap.Float64("patients", sc.AdditionalPatients),
			zap.Float64("revenue", sc.RevenuePerPatient),
			zap.Int("years", years))

		result := CalculateLanguageServicesROI(sc.ImplementationCost, sc.MaintenanceCost,
			sc.AdditionalPatients, sc.RevenuePerPatient, years)
		PrintROIResult(cmd.OutOrStdout(), sc, years, result)
		return nil
	},
}

// resolveROIScenario starts from the named dataset scenario and applies any
// explicitly set flags on top
func resolveROIScenario(cmd *cobra.Command) (ROIScenario, error) {
	var sc ROIScenario
	if base := dataset.FindROIScenario(roiOpts.scenario); base != nil {
		sc = *base
	} else if roiOpts.scenario != "" {
		return sc, NewAnalyticsError(ErrCodeInvalidInput,
			fmt.Sprintf("unknown ROI scenario %q", roiOpts.scenario), nil)
	}

	flags := cmd.Flags()
	if flags.Changed("implementation") {
		sc.ImplementationCost = roiOpts.implementation
	}
	if flags.Changed("maintenance") {
		sc.MaintenanceCost = roiOpts.maintenance
	}
	if flags.Changed("patients") {
		sc.AdditionalPatients = roiOpts.patients
	}
	if flags.Changed("revenue") {
		sc.RevenuePerPatient = roiOpts.revenue
	}
	return sc, nil
}

var simOpts struct {
	patients   float64
	conversion float64
	revenue    float64
	iterations int
	seed       int64
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a Monte Carlo revenue projection",
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		conversion := settings.Simulation.ConversionRate
		if flags.Changed("conversion") {
			conversion = simOpts.conversion
		}
		if err := validateRate(conversion, "conversion"); err != nil {
			return NewAnalyticsError(ErrCodeInvalidInput, err.Error(), nil)
		}
		iterations := settings.Simulation.Iterations
		if flags.Changed("iterations") {
			iterations = simOpts.iterations
		}
		if err := validateIterations(iterations, "iterations"); err != nil {
			return NewAnalyticsError(ErrCodeInvalidInput, err.Error(), nil)
		}
		seed := settings.Simulation.Seed
		if flags.Changed("seed") {
			seed = simOpts.seed
		}
		if seed == 0 {
			seed = time.Now().UnixNano()
		}

		patients := simOpts.patients
		if !flags.Changed("patients") {
			patients = dataset.Summary.MarketOpportunity
		}
		revenue := simOpts.revenue
		if !flags.Changed("revenue") {
			revenue = defaultRevenuePerPatient(dataset)
		}

		logger.Debug("Running simulation",
			zap.Float64("patients", patients),
			zap.Float64("conversion", conversion),
			zap.Float64("revenue", revenue),
			zap.Int("iterations", iterations),
			zap.Int64("seed", seed))

		rng := rand.New(rand.NewSource(seed))
		proj := SimulateRevenueProjection(rng, patients, conversion, revenue, iterations)
		PrintSimulation(cmd.OutOrStdout(), patients, conversion, revenue, proj)
		return nil
	},
}

// defaultRevenuePerPatient uses the first ROI scenario, falling back to the
// average segment revenue
func defaultRevenuePerPatient(ds *Dataset) float64 {
	if len(ds.ROIScenarios) > 0 {
		return ds.ROIScenarios[0].RevenuePerPatient
	}
	total, n := 0.0, 0
	for _, s := range ds.Segments {
		if s.RevenuePerPatient > 0 {
			total += s.RevenuePerPatient
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

var forecastOpts struct {
	periods int
	alpha   float64
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast the foreign-born population with exponential smoothing",
	RunE: func(cmd *cobra.Command, _ []string) error {
		periods := settings.Simulation.ForecastPeriod
		if cmd.Flags().Changed("periods") {
			periods = forecastOpts.periods
		}
		alpha := settings.Simulation.SmoothingAlpha
		if cmd.Flags().Changed("alpha") {
			alpha = forecastOpts.alpha
		}
		if alpha <= 0 || alpha > 1 {
			alpha = DefaultSmoothingAlpha
		}

		forecast := ForecastExponentialSmoothing(ForeignBornSeries(dataset.Historical), periods, alpha)
		PrintForecast(cmd.OutOrStdout(), dataset.Historical, forecast, alpha)
		return nil
	},
}

var sensOpts struct {
	scenario string
	years    int
	steps    int
	spread   float64
}

var sensitivityCmd = &cobra.Command{
	Use:   "sensitivity",
	Short: "Sweep ROI across patient volume and revenue per patient",
	RunE: func(cmd *cobra.Command, _ []string) error {
		base := dataset.FindROIScenario(sensOpts.scenario)
		if base == nil {
			return NewAnalyticsError(ErrCodeInvalidInput,
				fmt.Sprintf("unknown ROI scenario %q", sensOpts.scenario), nil)
		}
		if err := validateYears(sensOpts.years); err != nil {
			return NewAnalyticsError(ErrCodeInvalidInput, err.Error(), nil)
		}
		if sensOpts.spread <= 0 || sensOpts.spread >= 1 {
			return NewAnalyticsError(ErrCodeInvalidInput, "spread must be between 0 and 1", nil)
		}
		lo, hi := 1-sensOpts.spread, 1+sensOpts.spread
		patients := ScaledRange(base.AdditionalPatients, lo, hi, sensOpts.steps)
		revenue := ScaledRange(base.RevenuePerPatient, lo, hi, sensOpts.steps)
		for name, r := range map[string]Range{"patients": patients, "revenue": revenue} {
			if err := r.Validate(name); err != nil {
				return err
			}
		}

		analysis := RunROISensitivity(*base, sensOpts.years, patients, revenue)
		PrintSensitivity(cmd.OutOrStdout(), analysis)
		return nil
	},
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "Print insights as JSON")

	roiCmd.Flags().StringVar(&roiOpts.scenario, "scenario", "year-one", "Dataset ROI scenario to start from")
	roiCmd.Flags().Float64Var(&roiOpts.implementation, "implementation", 0, "One-off implementation cost ($)")
	roiCmd.Flags().Float64Var(&roiOpts.maintenance, "maintenance", 0, "Annual maintenance cost ($)")
	roiCmd.Flags().Float64Var(&roiOpts.patients, "patients", 0, "Additional patients per year")
	roiCmd.Flags().Float64Var(&roiOpts.revenue, "revenue", 0, "Revenue per patient ($)")
	roiCmd.Flags().IntVar(&roiOpts.years, "years", 1, "Years to evaluate")
	roiCmd.Flags().BoolVarP(&roiOpts.interactive, "interactive", "i", false, "Prompt for each input")

	simulateCmd.Flags().Float64Var(&simOpts.patients, "patients", 0, "Base patient pool (default: market opportunity)")
	simulateCmd.Flags().Float64Var(&simOpts.conversion, "conversion", 0.1, "Expected conversion rate (0-1)")
	simulateCmd.Flags().Float64Var(&simOpts.revenue, "revenue", 0, "Revenue per patient ($)")
	simulateCmd.Flags().IntVar(&simOpts.iterations, "iterations", DefaultIterations, "Number of Monte Carlo iterations")
	simulateCmd.Flags().Int64Var(&simOpts.seed, "seed", 0, "Random seed (0 = from clock)")

	forecastCmd.Flags().IntVar(&forecastOpts.periods, "periods", 5, "Number of periods to forecast")
	forecastCmd.Flags().Float64Var(&forecastOpts.alpha, "alpha", DefaultSmoothingAlpha, "Smoothing factor (0-1]")

	sensitivityCmd.Flags().StringVar(&sensOpts.scenario, "scenario", "year-one", "Dataset ROI scenario to vary")
	sensitivityCmd.Flags().IntVar(&sensOpts.years, "years", 1, "Years to evaluate")
	sensitivityCmd.Flags().IntVar(&sensOpts.steps, "steps", 4, "Steps across each axis")
	sensitivityCmd.Flags().Float64Var(&sensOpts.spread, "spread", 0.5, "Relative spread around the scenario values")

	rootCmd.AddCommand(summaryCmd, roiCmd, simulateCmd, forecastCmd, sensitivityCmd)
}
