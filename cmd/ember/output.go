package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deepnoodle-ai/ember/codegen"
)

func colorEnabled() bool {
	if viper.GetBool("no-color") {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = zerolog.WarnLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: !colorEnabled()}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// printIR writes IR text to stdout, highlighting labels and symbol
// definitions when colors are enabled.
func printIR(text string) {
	if !colorEnabled() {
		fmt.Print(text)
		return
	}
	label := color.New(color.FgYellow)
	symbol := color.New(color.FgGreen)
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasSuffix(trimmed, ":"):
			label.Println(line)
		case strings.HasPrefix(trimmed, "define") || strings.HasPrefix(trimmed, "declare") || strings.HasPrefix(trimmed, "@"):
			symbol.Println(line)
		default:
			fmt.Println(line)
		}
	}
}

func lowerSample(name string) (*sample, *codegen.Codegen, error) {
	if name == "" {
		name = "catch"
	}
	s := findSample(name)
	if s == nil {
		return nil, nil, fmt.Errorf("unknown sample %q (try \"ember samples\")", name)
	}
	logger := newLogger()
	cg := codegen.New(&codegen.Config{
		ModuleName: s.Name,
		Logger:     &logger,
	})
	if _, err := cg.CompileProgram(s.Program); err != nil {
		return nil, nil, err
	}
	return s, cg, nil
}

func lowerHandler(cmd *cobra.Command, args []string) error {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	_, cg, err := lowerSample(name)
	if err != nil {
		return err
	}
	if fnName := viper.GetString("func"); fnName != "" {
		fn := cg.Module().Func(fnName)
		if fn == nil {
			return fmt.Errorf("no function %q in module", fnName)
		}
		printIR(fn.String())
		return nil
	}
	printIR(cg.Module().String())
	return nil
}

func samplesHandler(cmd *cobra.Command, args []string) error {
	bold := color.New(color.Bold)
	for _, s := range samples {
		if colorEnabled() {
			bold.Printf("%-12s", s.Name)
		} else {
			fmt.Printf("%-12s", s.Name)
		}
		fmt.Printf(" %s\n", s.Description)
	}
	return nil
}

func astHandler(cmd *cobra.Command, args []string) error {
	name := "catch"
	if len(args) > 0 {
		name = args[0]
	}
	s := findSample(name)
	if s == nil {
		return fmt.Errorf("unknown sample %q (try \"ember samples\")", name)
	}
	formatter := prettyjson.NewFormatter()
	formatter.DisabledColor = !colorEnabled()
	out, err := formatter.Marshal(s.Program)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
