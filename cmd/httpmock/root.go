package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/getmockd/httpmock/pkg/config"
	"github.com/getmockd/httpmock/pkg/logging"
)

const envPrefix = "HTTPMOCK"

// cli carries the settings shared by every command. Flags and HTTPMOCK_*
// environment variables are resolved through its viper instance.
type cli struct {
	v *viper.Viper
}

func newRootCommand() *cobra.Command {
	c := &cli{v: viper.New()}

	cmd := &cobra.Command{
		Use:           "httpmock",
		Short:         "httpmock serves queued HTTP responses from fixture files",
		SilenceErrors: true,
		SilenceUsage:  true,
		Example: `
  # Check a fixture against the schema
  httpmock validate -f fixtures/users.yaml

  # Show which response each request would draw
  httpmock match -f fixtures/users.yaml https://api.example.com/v1/users https://api.example.com/v1/users

  # Serve fixtures and reload them on change
  HTTPMOCK_ADDR=:4280 httpmock serve -f 'fixtures/**/*.yaml'
  httpmock serve -f fixtures/users.yaml --watch --metrics-listen :9090
`,
	}

	persistent := cmd.PersistentFlags()
	persistent.StringP("config", "f", "", "fixture file or doublestar glob (env HTTPMOCK_CONFIG)")
	persistent.String("log-level", "info", "log level: debug, info, warn, error (env HTTPMOCK_LOG_LEVEL)")
	persistent.String("log-format", "text", "log format: text or json (env HTTPMOCK_LOG_FORMAT)")

	c.v.SetEnvPrefix(envPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()
	c.bindFlags(persistent, "config", "log-level", "log-format")

	cmd.AddCommand(
		newValidateCommand(c),
		newMatchCommand(c),
		newServeCommand(c),
		newVersionCommand(),
	)
	return cmd
}

func (c *cli) bindFlags(flags *pflag.FlagSet, names ...string) {
	for _, name := range names {
		flag := flags.Lookup(name)
		if flag == nil {
			panic(fmt.Sprintf("flag %q not found", name))
		}
		if err := c.v.BindPFlag(name, flag); err != nil {
			panic(err)
		}
	}
}

func (c *cli) logger(w io.Writer) *slog.Logger {
	return logging.New(logging.Config{
		Level:  logging.ParseLevel(c.v.GetString("log-level")),
		Format: logging.ParseFormat(c.v.GetString("log-format")),
		Output: w,
	})
}

func (c *cli) fixturePath() string {
	return strings.TrimSpace(c.v.GetString("config"))
}

// loadFixture loads the configured fixture. Paths containing glob
// metacharacters are expanded with LoadGlob.
func (c *cli) loadFixture() (*config.Fixture, error) {
	path := c.fixturePath()
	if path == "" {
		return nil, fmt.Errorf("no fixture given: use --config or %s_CONFIG", envPrefix)
	}
	if isGlob(path) {
		return config.LoadGlob(path)
	}
	return config.Load(path)
}

func isGlob(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}
