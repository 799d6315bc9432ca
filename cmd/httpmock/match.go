package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/getmockd/httpmock/pkg/config"
	"github.com/getmockd/httpmock/pkg/httpmock"
)

const maxBodyPreview = 72

func newMatchCommand(c *cli) *cobra.Command {
	var method string

	cmd := &cobra.Command{
		Use:   "match URL...",
		Short: "Show which queued response each request draws, in order",
		Long: `Applies the fixture to a fresh mock and sends each URL through it in
order, printing the response drawn. Requests consume the queue exactly as
they would against a running server.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fx, err := c.loadFixture()
			if err != nil {
				return err
			}

			m := httpmock.New(httpmock.WithLogger(c.logger(cmd.ErrOrStderr())))
			defer func() { _ = m.Close() }()
			if _, err := config.Apply(fx, m); err != nil {
				return err
			}

			client := m.Client()
			out := cmd.OutOrStdout()
			for _, target := range args {
				req, err := http.NewRequestWithContext(cmd.Context(), method, target, nil)
				if err != nil {
					return fmt.Errorf("invalid URL %q: %w", target, err)
				}
				line, err := drawResponse(client, req)
				if err != nil {
					line = "error: " + err.Error()
				}
				if _, err := fmt.Fprintf(out, "%s %s -> %s\n", method, target, line); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&method, "request", "X", http.MethodGet, "HTTP method to send")
	return cmd
}

func drawResponse(client *http.Client, req *http.Request) (string, error) {
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %s", resp.StatusCode, previewBody(body)), nil
}

func previewBody(body []byte) string {
	s := strings.Join(strings.Fields(string(body)), " ")
	if s == "" {
		return "(empty)"
	}
	if len(s) > maxBodyPreview {
		return s[:maxBodyPreview-3] + "..."
	}
	return s
}
