package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khanglvm/geocalc/internal/calc"
	"github.com/khanglvm/geocalc/internal/render"
	"github.com/khanglvm/geocalc/internal/shapes"
)

type computeFlags struct {
	json  bool
	plot  bool
	noLog bool
}

// NewComputeCmd creates the 'compute' command with one subcommand per shape.
func NewComputeCmd(app *App) *cobra.Command {
	flags := &computeFlags{}

	cmd := &cobra.Command{
		Use:     "compute",
		Aliases: []string{"calc"},
		Short:   "Compute the metrics of a shape",
		Long: `Compute area and perimeter of a 2D shape, or volume and surface area of a 3D shape.

Every successful calculation is recorded in the history used by 'geocalc stats'.`,
		Example: `  geocalc compute rectangle 2 3
  geocalc compute triangle 3 4 5 --plot
  geocalc compute rectangular-prism 2 3 4 --json
  geocalc compute sphere 1.5 --no-log`,
	}

	cmd.PersistentFlags().BoolVarP(&flags.json, "json", "j", false, "Output as JSON")
	cmd.PersistentFlags().BoolVarP(&flags.plot, "plot", "p", false, "Include the figure description")
	cmd.PersistentFlags().BoolVar(&flags.noLog, "no-log", false, "Do not record the calculation")

	for _, kind := range shapes.Kinds() {
		cmd.AddCommand(newShapeCmd(app, kind, flags))
	}

	return cmd
}

func newShapeCmd(app *App, kind shapes.Kind, flags *computeFlags) *cobra.Command {
	params := kind.ParamNames()
	placeholders := make([]string, len(params))
	for i, p := range params {
		placeholders[i] = "<" + p + ">"
	}

	var aliases []string
	if dashed := strings.ReplaceAll(kind.String(), "_", "-"); dashed != kind.String() {
		aliases = append(aliases, dashed)
	}

	return &cobra.Command{
		Use:     kind.String() + " " + strings.Join(placeholders, " "),
		Aliases: aliases,
		Short:   fmt.Sprintf("Compute a %s (%s)", strings.ToLower(kind.Title()), kind.Dimension()),
		Args:    cobra.ExactArgs(len(params)),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseValues(params, args)
			if err != nil {
				return err
			}
			shape, err := shapes.New(kind, values...)
			if err != nil {
				return err
			}
			return runCompute(cmd, app, shape, flags)
		},
	}
}

// parseValues converts positional arguments to numbers.
func parseValues(names, args []string) ([]float64, error) {
	values := make([]float64, len(args))
	for i, arg := range args {
		v, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %q is not a number", names[i], arg)
		}
		values[i] = v
	}
	return values, nil
}

type computeOutput struct {
	Result   shapes.Result  `json:"result"`
	RecordID int64          `json:"record_id,omitempty"`
	LogError string         `json:"log_error,omitempty"`
	Figure   *render.Figure `json:"figure,omitempty"`
}

func runCompute(cmd *cobra.Command, app *App, shape shapes.Shape, flags *computeFlags) error {
	cfg, err := app.Config()
	if err != nil {
		return err
	}
	c, err := app.Calculator(nil, flags.noLog)
	if err != nil {
		return err
	}

	out, err := c.Calculate(cmd.Context(), shape)
	if err != nil {
		return err
	}

	var fig *render.Figure
	if flags.plot {
		f, err := render.Describe(out.Result)
		if err != nil {
			return err
		}
		fig = &f
	}

	w := cmd.OutOrStdout()
	if flags.json {
		payload := computeOutput{Result: out.Result, RecordID: out.Record.ID, Figure: fig}
		if out.LogErr != nil {
			payload.LogError = out.LogErr.Error()
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	f := formatter{precision: cfg.Display.Precision}
	fmt.Fprintln(w, f.resultBox(out.Result))
	if out.LogErr != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), styles.Warning.Render("Warning: calculation not recorded: "+out.LogErr.Error()))
	}
	if fig != nil {
		fmt.Fprintln(w, styles.Title.Render(fig.Title))
		if err := (render.JSONRenderer{W: w, Indent: true}).Render(cmd.Context(), *fig); err != nil {
			return err
		}
	}
	return nil
}

// describeRejection turns a compute error into a user-facing line.
func describeRejection(err error) string {
	if calc.IsRejection(err) {
		return "Cannot compute: " + err.Error()
	}
	return "Error: " + err.Error()
}
