// Package main implements flowctl, a developer CLI for working with workflow
// payloads offline: inspect the template catalog, run planner payloads
// through the mapper, and mint development tokens for the local API.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"flowbuilder/application/mapper"
	domainconfig "flowbuilder/domain/config"
	"flowbuilder/domain/core/aggregates"

	"github.com/BurntSushi/toml"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// cliConfig is read from ~/.flowctl.toml
type cliConfig struct {
	JWTSecret string `toml:"jwt_secret"`
	JWTIssuer string `toml:"jwt_issuer"`
}

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:   "flowctl",
		Short: "Workflow builder developer tools",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.flowctl.toml)")

	root.AddCommand(templatesCmd())
	root.AddCommand(mapCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(parseCmd())
	root.AddCommand(tokenCmd())

	if err := root.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func loadCLIConfig() (cliConfig, error) {
	var cfg cliConfig

	path := cfgFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, ".flowctl.toml")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

func templatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the report template catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			heading := color.New(color.FgCyan, color.Bold)
			for _, key := range mapper.TemplateKeys() {
				steps, _ := mapper.Template(key)
				heading.Println(key)
				for i, step := range steps {
					fmt.Printf("  %d. %s (%s)\n", i+1, step.Title, step.Kind)
				}
				fmt.Println()
			}
			return nil
		},
	}
}

func readRawWorkflow(path string) (*mapper.RawWorkflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var raw mapper.RawWorkflow
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &raw, nil
}

func mapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "map <payload.json>",
		Short: "Run a planner payload through the mapper and print the graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readRawWorkflow(args[0])
			if err != nil {
				return err
			}

			m := mapper.NewMapper()
			nodes, edges := m.MapWorkflow(*raw)

			color.New(color.FgGreen, color.Bold).Printf("%d nodes, %d edges\n\n", len(nodes), len(edges))
			for _, n := range nodes {
				pos := n.Position()
				fmt.Printf("  %-12s %-12s %-30s (%.0f, %.0f)\n",
					n.ID(), n.Kind(), n.Label(), pos.X, pos.Y)
			}
			fmt.Println()
			for _, e := range edges {
				handle := ""
				if e.SourceHandle != "" {
					handle = " [" + e.SourceHandle + "]"
				}
				fmt.Printf("  %s -> %s%s\n", e.SourceID, e.TargetID, handle)
			}
			return nil
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <payload.json>",
		Short: "Map a payload and report referential problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readRawWorkflow(args[0])
			if err != nil {
				return err
			}

			m := mapper.NewMapper()
			nodes, edges := m.MapWorkflow(*raw)

			workflow := aggregates.NewWorkflowWithConfig(raw.Name, domainconfig.DefaultDomainConfig())
			if _, err := workflow.ReplaceAll(raw.Name, nodes, edges, "cli"); err != nil {
				return err
			}

			dangling := workflow.DanglingEdges()
			if len(dangling) == 0 {
				color.Green("OK: %d nodes, %d edges, no dangling references", len(nodes), len(edges))
				return nil
			}

			color.Yellow("%d dangling edge(s):", len(dangling))
			for _, e := range dangling {
				fmt.Printf("  %s (%s -> %s)\n", e.ID, e.SourceID, e.TargetID)
			}
			return nil
		},
	}
}

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <text-file>",
		Short: "Parse a plain-text workflow description into a graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			nodes, edges := mapper.ParseWorkflowText(string(data))
			color.New(color.FgGreen, color.Bold).Printf("%d nodes, %d edges\n\n", len(nodes), len(edges))
			for _, n := range nodes {
				fmt.Printf("  %-12s %-12s %s\n", n.ID(), n.Kind(), n.Label())
			}
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	var (
		userID string
		email  string
		expiry time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development token for the local API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCLIConfig()
			if err != nil {
				return err
			}
			secret := cfg.JWTSecret
			if secret == "" {
				secret = "development-secret"
			}
			issuer := cfg.JWTIssuer
			if issuer == "" {
				issuer = "flowbuilder"
			}

			generator, err := newTokenGenerator(secret, issuer, expiry)
			if err != nil {
				return err
			}
			token, err := generator(userID, email)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "dev-user", "user id claim")
	cmd.Flags().StringVar(&email, "email", "dev@localhost", "email claim")
	cmd.Flags().DurationVar(&expiry, "expiry", 24*time.Hour, "token lifetime")
	return cmd
}
