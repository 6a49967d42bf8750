package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quill-lang/quill"
	"github.com/quill-lang/quill/compiler"
	"github.com/quill-lang/quill/diagnostic"
)

var (
	cfgFile     string
	colorFlag   string
	outDirFlag  string
	verboseFlag bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "quill",
	Short:   "A markup language that compiles to LaTeX",
	Version: quill.Version,
	Long: `quill compiles .qll markup documents into LaTeX.

Getting started:
  quill init               Create a starter document
  quill build doc.qll      Compile a document to doc.tex
  quill watch doc.qll      Recompile on every change

Documents can embed Risor script blocks that generate markup at compile
time:

  script
      for i := 0; i < 3; i++ {
          quill.sprintn("item ", i)
      }
  endscript

Inside a script, quill.sprint/sprintn/sprintln append text to the document
and quill.parse compiles a markup fragment and returns the LaTeX text.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.quill.yaml)")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto",
		`Control colored output: "auto", "always", or "never".`)
	rootCmd.PersistentFlags().StringVarP(&outDirFlag, "out", "o", "",
		"Directory for generated files (default: next to sources)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"Enable debug logging")

	must(viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color")))
	must(viper.BindPFlag("out", rootCmd.PersistentFlags().Lookup("out")))
	must(viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".quill")
	}

	viper.SetEnvPrefix("quill")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

// newSession builds a compiler session from the effective configuration.
func newSession() (*compiler.Compiler, error) {
	level := slog.LevelWarn
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})

	return compiler.New(
		compiler.WithLogHandler(handler),
		compiler.WithColorMode(diagnostic.ParseColorMode(viper.GetString("color"))),
		compiler.WithOutputDir(viper.GetString("out")),
	)
}
