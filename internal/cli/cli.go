package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/planflow/internal/app"
	"github.com/vk/planflow/internal/hcl"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

type globalFlags struct {
	configPath string
	workers    int
	logFormat  string
	logLevel   string
}

// NewRootCommand builds the planflow command tree. Programs and listings are
// written to out, logs to errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:   "planflow",
		Short: "Time-parameterize robot programs through configurable planning pipelines",
		Long: "planflow loads manipulators, task profiles and pipelines from HCL files,\n" +
			"runs a YAML planning request through a pipeline and prints the timed program.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	f := root.PersistentFlags()
	f.StringVarP(&flags.configPath, "config", "c", "", "Path to an HCL file or a directory of HCL files (required).")
	f.IntVar(&flags.workers, "workers", app.DefaultWorkers, "Number of concurrent workers for the planning server.")
	f.StringVar(&flags.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	f.StringVar(&flags.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	root.AddCommand(newRunCommand(&flags, out, errOut))
	root.AddCommand(newProfilesCommand(&flags, out, errOut))
	return root
}

func newRunCommand(flags *globalFlags, out, errOut io.Writer) *cobra.Command {
	var requestPath, pipeline string
	cmd := &cobra.Command{
		Use:   "run [REQUEST]",
		Short: "Plan a request and print the timed program as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if requestPath != "" {
					return usageError(errors.New("request given both as --request and as argument"))
				}
				requestPath = args[0]
			}
			if requestPath == "" {
				return usageError(errors.New("a planning request is required: pass --request or REQUEST"))
			}
			a, err := newApp(flags, app.Config{RequestPath: requestPath, Pipeline: pipeline}, out, errOut)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&requestPath, "request", "r", "", "Path to the YAML planning request.")
	cmd.Flags().StringVarP(&pipeline, "pipeline", "p", "", "Generator to run instead of the one the request names.")
	return cmd
}

func newProfilesCommand(flags *globalFlags, out, errOut io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the profiles every task knows after loading the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(flags, app.Config{}, out, errOut)
			if err != nil {
				return err
			}
			profiles := a.Profiles()
			for _, task := range slices.Sorted(maps.Keys(profiles)) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", task, strings.Join(profiles[task], ", "))
			}
			return nil
		},
	}
}

func newApp(flags *globalFlags, cfg app.Config, out, errOut io.Writer) (*app.App, error) {
	cfg.ConfigPath = flags.configPath
	cfg.Workers = flags.workers
	cfg.LogFormat = flags.logFormat
	cfg.LogLevel = flags.logLevel
	validated, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError(err)
	}
	return app.NewApp(out, errOut, validated, hcl.NewLoader())
}

// Execute runs the command line given by args.
func Execute(ctx context.Context, args []string, out, errOut io.Writer) error {
	root := NewRootCommand(out, errOut)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
