package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/khanglvm/geocalc/internal/calc"
	"github.com/khanglvm/geocalc/internal/render"
	"github.com/khanglvm/geocalc/internal/shapes"
)

// NewMenuCmd creates the interactive 'menu' command.
func NewMenuCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Interactive numbered menu",
		Long: `Start the interactive calculator.

Pick a shape by number, enter its dimensions, and optionally print its
drawing. 3D shapes live in a submenu. Enter 0 or close stdin to quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config()
			if err != nil {
				return err
			}
			tracker, err := app.NewTracker()
			if err != nil {
				return err
			}
			defer tracker.Stop()

			c, err := app.Calculator(tracker, false)
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			m := &menu{
				in:     bufio.NewReader(cmd.InOrStdin()),
				out:    cmd.OutOrStdout(),
				calc:   c,
				flush:  tracker.Flush,
				format: formatter{precision: cfg.Display.Precision},
				loc:    loc,
			}
			return m.run(cmd.Context())
		},
	}
}

var (
	mainMenu = []shapes.Kind{shapes.KindRectangle, shapes.KindSquare, shapes.KindCircle, shapes.KindTriangle}
	solids   = []shapes.Kind{shapes.KindCube, shapes.KindRectangularPrism, shapes.KindSphere, shapes.KindTriangularPrism}
)

// errQuit ends the menu when input runs out.
var errQuit = errors.New("quit")

type menu struct {
	in     *bufio.Reader
	out    io.Writer
	calc   *calc.Calculator
	flush  func(context.Context) error
	format formatter
	loc    *time.Location
}

func (m *menu) run(ctx context.Context) error {
	for {
		fmt.Fprintln(m.out)
		fmt.Fprintln(m.out, styles.Title.Render("=== GEOMETRY CALCULATOR ==="))
		for i, k := range mainMenu {
			fmt.Fprintf(m.out, "%d. %s\n", i+1, k.Title())
		}
		fmt.Fprintln(m.out, "5. 3D shapes")
		fmt.Fprintln(m.out, "6. Statistics")
		fmt.Fprintln(m.out, "0. Exit")

		choice, err := m.prompt("\nChoose an option (0-6): ")
		if err != nil {
			return nil
		}

		switch choice {
		case "1", "2", "3", "4":
			n, _ := strconv.Atoi(choice)
			err = m.compute(ctx, mainMenu[n-1])
		case "5":
			err = m.solidsMenu(ctx)
		case "6":
			err = m.stats(ctx)
		case "0":
			fmt.Fprintln(m.out, "Goodbye!")
			return nil
		default:
			fmt.Fprintln(m.out, styles.Error.Render("Invalid option!"))
		}

		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (m *menu) solidsMenu(ctx context.Context) error {
	for {
		fmt.Fprintln(m.out)
		fmt.Fprintln(m.out, styles.Title.Render("--- 3D SHAPES ---"))
		for i, k := range solids {
			fmt.Fprintf(m.out, "%d. %s\n", i+1, k.Title())
		}
		fmt.Fprintln(m.out, "0. Back to main menu")

		choice, err := m.prompt("\nChoose an option (0-4): ")
		if err != nil {
			return errQuit
		}

		switch choice {
		case "1", "2", "3", "4":
			n, _ := strconv.Atoi(choice)
			if err := m.compute(ctx, solids[n-1]); err != nil {
				return err
			}
		case "0":
			return nil
		default:
			fmt.Fprintln(m.out, styles.Error.Render("Invalid option!"))
		}
	}
}

// compute asks for every parameter of kind, then prints the result.
func (m *menu) compute(ctx context.Context, kind shapes.Kind) error {
	names := kind.ParamNames()
	values := make([]float64, len(names))
	for i, name := range names {
		v, err := m.number(paramLabel(kind, name) + ": ")
		if err != nil {
			return err
		}
		values[i] = v
	}

	shape, err := shapes.New(kind, values...)
	if err != nil {
		return err
	}
	out, err := m.calc.Calculate(ctx, shape)
	if err != nil {
		fmt.Fprintln(m.out, styles.Error.Render(describeRejection(err)))
		return nil
	}

	for _, line := range m.format.resultLines(out.Result)[len(names):] {
		fmt.Fprintln(m.out, line)
	}
	if out.LogErr != nil {
		fmt.Fprintln(m.out, styles.Warning.Render("Warning: calculation not recorded"))
	}

	answer, err := m.prompt("Show drawing? (y/n): ")
	if err != nil {
		return errQuit
	}
	if a := strings.ToLower(answer); a == "y" || a == "yes" || a == "da" {
		fig, err := render.Describe(out.Result)
		if err != nil {
			return err
		}
		fmt.Fprintln(m.out, styles.Title.Render(fig.Title))
		return render.JSONRenderer{W: m.out, Indent: true}.Render(ctx, fig)
	}
	return nil
}

func (m *menu) stats(ctx context.Context) error {
	flushCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := m.flush(flushCtx); err != nil {
		fmt.Fprintln(m.out, styles.Warning.Render("Warning: recent calculations may be missing: "+err.Error()))
	}

	stats, err := m.calc.Stats(ctx, 0)
	if err != nil {
		fmt.Fprintln(m.out, styles.Error.Render("Error: "+err.Error()))
		return nil
	}
	fmt.Fprint(m.out, m.format.statsReport(stats, m.loc))
	return nil
}

// prompt prints label and returns the trimmed input line.
func (m *menu) prompt(label string) (string, error) {
	fmt.Fprint(m.out, label)
	line, err := m.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", errQuit
	}
	return strings.TrimSpace(line), nil
}

// number prompts until the input parses as a number.
func (m *menu) number(label string) (float64, error) {
	for {
		text, err := m.prompt(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
		if err == nil {
			return v, nil
		}
		fmt.Fprintln(m.out, styles.Error.Render("Please enter a valid number."))
	}
}

func paramLabel(kind shapes.Kind, name string) string {
	switch name {
	case "a", "b", "c":
		if kind == shapes.KindTriangularPrism {
			return "Base side " + name
		}
		return "Side " + name
	case "height":
		if kind == shapes.KindTriangularPrism {
			return "Prism height"
		}
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
