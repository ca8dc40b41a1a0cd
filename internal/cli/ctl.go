package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rennerdo30/sysproxy/internal/sysproxy"
	"github.com/rennerdo30/sysproxy/internal/version"
)

// APIClient is a client for the sysproxy REST API.
type APIClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
	Out     io.Writer
}

// NewAPIClient creates a new API client writing its output to out.
func NewAPIClient(baseURL, token string, out io.Writer) *APIClient {
	return &APIClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client:  &http.Client{Timeout: 10 * time.Second},
		Out:     out,
	}
}

func newCtlCommand() *cobra.Command {
	var apiURL string
	var apiToken string

	root := &cobra.Command{
		Use:   "ctl",
		Short: "Control a running 'sysproxy serve' instance",
	}

	root.PersistentFlags().StringVar(&apiURL, "api", "http://127.0.0.1:7390", "API server URL")
	root.PersistentFlags().StringVar(&apiToken, "token", "", "API authentication token")

	client := func(cmd *cobra.Command) *APIClient {
		return NewAPIClient(apiURL, apiToken, cmd.OutOrStdout())
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the proxy settings seen by the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return client(cmd).ShowStatus()
		},
	}

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return client(cmd).CheckHealth()
		},
	}

	offCmd := &cobra.Command{
		Use:   "off",
		Short: "Disable the system proxy through the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return client(cmd).Disable()
		},
	}

	applyCmd := &cobra.Command{
		Use:   "apply [profile]",
		Short: "Apply a profile configured on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client(cmd).ApplyProfile(args[0])
		},
	}

	root.AddCommand(statusCmd, healthCmd, offCmd, applyCmd)
	return root
}

func (c *APIClient) doRequest(method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}

	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	return c.Client.Do(req)
}

// call performs the request and decodes a JSON response into v when v is
// not nil.
func (c *APIClient) call(method, path string, v any) error {
	resp, err := c.doRequest(method, path, nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		body, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("API error: %s - %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("API error: %s - %s", resp.Status, strings.TrimSpace(string(body)))
	}

	if v == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// ShowStatus prints the current proxy settings.
func (c *APIClient) ShowStatus() error {
	var status struct {
		Mode   string               `json:"mode"`
		Manual sysproxy.ManualProxy `json:"manual"`
		Auto   sysproxy.AutoProxy   `json:"auto"`
	}
	if err := c.call(http.MethodGet, "/api/v1/proxy", &status); err != nil {
		return err
	}

	fmt.Fprintf(c.Out, "Mode: %s\n", status.Mode)
	if status.Manual.Host != "" {
		fmt.Fprintf(c.Out, "Server: %s (%s)\n", status.Manual.Server(), enabledString(status.Manual.Enable))
	}
	if status.Manual.Bypass != "" {
		fmt.Fprintf(c.Out, "Bypass: %s\n", status.Manual.Bypass)
	}
	if status.Auto.Enable {
		fmt.Fprintf(c.Out, "Auto-config URL: %s\n", status.Auto.URL)
	}
	return nil
}

// CheckHealth prints the server health.
func (c *APIClient) CheckHealth() error {
	var health map[string]any
	if err := c.call(http.MethodGet, "/api/v1/health", &health); err != nil {
		return err
	}

	fmt.Fprintf(c.Out, "Health: %v\n", health["status"])
	fmt.Fprintf(c.Out, "Supported: %v\n", health["supported"])
	return nil
}

// Disable turns the system proxy off.
func (c *APIClient) Disable() error {
	if err := c.call(http.MethodDelete, "/api/v1/proxy", nil); err != nil {
		return err
	}
	fmt.Fprintln(c.Out, "System proxy disabled")
	return nil
}

// ApplyProfile applies the named server-side profile.
func (c *APIClient) ApplyProfile(name string) error {
	var applied struct {
		Mode string `json:"mode"`
	}
	path := "/api/v1/profiles/" + url.PathEscape(name) + "/apply"
	if err := c.call(http.MethodPost, path, &applied); err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "Applied profile %s (%s)\n", name, applied.Mode)
	return nil
}
