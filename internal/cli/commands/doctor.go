package commands

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/internal/cli/config"
	"github.com/quarrylabs/quarry/internal/cli/output"
	"github.com/quarrylabs/quarry/pkg/storage"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Format string // Output format: text, json
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run a configuration health check",
		Long: `Analyze the Quarry configuration for problems before they surface at
query time.

The doctor command checks:
- Configuration file presence, unknown keys, gateway URL
- Every connection entry (driver/provider, DSN, duplicate ids)
- Storage params (region, account_name) for object storage connections
- Unresolved ${VAR} references that would ship literally to the gateway
- Local state (history database path)

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Run health check
  quarry doctor

  # Output as JSON
  quarry doctor --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json")

	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Summary         ConfigSummary `json:"summary"`
	HealthChecks    []HealthCheck `json:"health_checks"`
	Score           int           `json:"score"`
	Recommendations []string      `json:"recommendations"`
	IssueCount      int           `json:"issue_count"`
}

// ConfigSummary contains configuration-level statistics.
type ConfigSummary struct {
	ConfigFile         string `json:"config_file,omitempty"`
	GatewayURL         string `json:"gateway_url"`
	Connections        int    `json:"connections"`
	SQLConnections     int    `json:"sql_connections"`
	StorageConnections int    `json:"storage_connections"`
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	Name       string   `json:"name"`
	Group      string   `json:"group"`
	Status     string   `json:"status"` // "pass", "warn", "error"
	IssueCount int      `json:"issue_count"`
	Details    []string `json:"details,omitempty"`
}

func runDoctor(cmd *cobra.Command, opts *DoctorOptions) error {
	ctx := NewCommandContext(cmd)
	r := ctx.Renderer

	// Override renderer if format flag is set
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	doctorOutput := buildDoctorOutput(ctx.Cfg, config.GetConfigFileUsed())

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(doctorOutput)
	case output.ModeMarkdown:
		return renderDoctorMarkdown(r, doctorOutput)
	default:
		return renderDoctorText(r, doctorOutput)
	}
}

func buildDoctorOutput(cfg *config.Config, cfgFile string) *DoctorOutput {
	summary := buildConfigSummary(cfg, cfgFile)

	checks := []HealthCheck{
		checkConfigFile(cfgFile),
		checkConfigKeys(cfgFile),
		checkGatewayURL(cfg.GatewayURL),
		checkConnectionIDs(cfg),
	}
	for _, cc := range cfg.Connections {
		checks = append(checks, checkConnection(cc))
	}
	for _, cc := range cfg.Connections {
		if cc.Provider != "" {
			checks = append(checks, checkStorageParams(cc))
		}
	}
	checks = append(checks, checkHistoryPath(cfg.HistoryPath))

	issueCount := 0
	for _, check := range checks {
		issueCount += check.IssueCount
	}

	return &DoctorOutput{
		Summary:         summary,
		HealthChecks:    checks,
		Score:           calculateHealthScore(checks),
		Recommendations: generateRecommendations(checks),
		IssueCount:      issueCount,
	}
}

func buildConfigSummary(cfg *config.Config, cfgFile string) ConfigSummary {
	summary := ConfigSummary{
		ConfigFile:  cfgFile,
		GatewayURL:  cfg.GatewayURL,
		Connections: len(cfg.Connections),
	}
	for _, cc := range cfg.Connections {
		if cc.Provider != "" {
			summary.StorageConnections++
		} else {
			summary.SQLConnections++
		}
	}
	return summary
}

func checkConfigFile(cfgFile string) HealthCheck {
	check := HealthCheck{Name: "config file", Group: "configuration", Status: "pass"}

	if cfgFile == "" {
		check.Status = "warn"
		check.Details = append(check.Details, "no quarry.yaml found; running on defaults and environment variables")
		check.IssueCount = 1
		return check
	}

	// A quarry.yml sitting next to the loaded quarry.yaml is silently ignored.
	shadowed := filepath.Join(filepath.Dir(cfgFile), "quarry.yml")
	if filepath.Base(cfgFile) == "quarry.yaml" {
		if _, err := os.Stat(shadowed); err == nil {
			check.Status = "warn"
			check.Details = append(check.Details, "quarry.yml is shadowed by quarry.yaml and never loaded")
			check.IssueCount = 1
		}
	}
	return check
}

// knownConfigKeys are the top-level keys the loader understands. Anything
// else in the file is almost always a typo that koanf would swallow silently.
var knownConfigKeys = map[string]bool{
	"gateway_url":  true,
	"connection":   true,
	"connections":  true,
	"output":       true,
	"verbose":      true,
	"history_path": true,
}

func checkConfigKeys(cfgFile string) HealthCheck {
	check := HealthCheck{Name: "config keys", Group: "configuration", Status: "pass"}
	if cfgFile == "" {
		return check
	}

	raw, err := os.ReadFile(cfgFile)
	if err != nil {
		check.Status = "error"
		check.Details = append(check.Details, fmt.Sprintf("cannot read %s: %v", cfgFile, err))
		check.IssueCount = 1
		return check
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		check.Status = "error"
		check.Details = append(check.Details, fmt.Sprintf("invalid yaml: %v", err))
		check.IssueCount = 1
		return check
	}

	for key := range doc {
		if !knownConfigKeys[key] {
			check.Status = "warn"
			check.Details = append(check.Details, fmt.Sprintf("unknown key %q (typo?)", key))
		}
	}
	check.IssueCount = len(check.Details)
	return check
}

func checkGatewayURL(gatewayURL string) HealthCheck {
	check := HealthCheck{Name: "gateway url", Group: "configuration", Status: "pass"}

	u, err := url.Parse(gatewayURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		check.Status = "error"
		check.Details = append(check.Details, fmt.Sprintf("%q is not a valid URL", gatewayURL))
		check.IssueCount = 1
		return check
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		check.Status = "warn"
		check.Details = append(check.Details, fmt.Sprintf("unusual scheme %q; the gateway speaks http(s)", u.Scheme))
		check.IssueCount = 1
	}
	return check
}

func checkConnectionIDs(cfg *config.Config) HealthCheck {
	check := HealthCheck{Name: "connection ids", Group: "connections", Status: "pass"}

	if len(cfg.Connections) == 0 {
		check.Status = "warn"
		check.Details = append(check.Details, "no connections configured")
		check.IssueCount = 1
		return check
	}

	seen := make(map[string]bool, len(cfg.Connections))
	for _, cc := range cfg.Connections {
		if seen[cc.ID] {
			check.Status = "error"
			check.Details = append(check.Details, fmt.Sprintf("duplicate connection id %q", cc.ID))
		}
		seen[cc.ID] = true
	}

	if cfg.Connection != "" && !seen[cfg.Connection] {
		check.Status = "error"
		check.Details = append(check.Details, fmt.Sprintf("default connection %q is not defined", cfg.Connection))
	}
	check.IssueCount = len(check.Details)
	return check
}

func checkConnection(cc config.ConnectionConfig) HealthCheck {
	name := fmt.Sprintf("connection %q", cc.ID)
	if cc.ID == "" {
		name = "connection (no id)"
	}
	check := HealthCheck{Name: name, Group: "connections", Status: "pass"}

	if err := cc.ToConnection().Validate(); err != nil {
		check.Status = "error"
		check.Details = append(check.Details, err.Error())
	}

	if vars := unresolvedVars(cc); len(vars) > 0 {
		if check.Status == "pass" {
			check.Status = "warn"
		}
		check.Details = append(check.Details,
			fmt.Sprintf("unresolved environment variables: %s", strings.Join(vars, ", ")))
	}

	check.IssueCount = len(check.Details)
	return check
}

func checkStorageParams(cc config.ConnectionConfig) HealthCheck {
	check := HealthCheck{
		Name:   fmt.Sprintf("storage params %q", cc.ID),
		Group:  "storage",
		Status: "pass",
	}

	var err error
	switch cc.Provider {
	case "s3":
		var p *storage.S3Params
		if p, err = storage.ParseS3Params(cc.Params); err == nil {
			err = p.Validate()
		}
	case "azure":
		var p *storage.AzureParams
		if p, err = storage.ParseAzureParams(cc.Params); err == nil {
			err = p.Validate()
		}
	default:
		err = fmt.Errorf("unknown provider %q", cc.Provider)
	}

	if err != nil {
		check.Status = "error"
		check.Details = append(check.Details, err.Error())
		check.IssueCount = 1
	}
	return check
}

func checkHistoryPath(path string) HealthCheck {
	check := HealthCheck{Name: "history database", Group: "state", Status: "pass"}

	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		check.Status = "error"
		check.Details = append(check.Details, fmt.Sprintf("history_path %q is a directory", path))
		check.IssueCount = 1
	}
	return check
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// unresolvedVars lists ${VAR} references in the connection's DSN and string
// params whose variables are not set. They would travel to the gateway as
// literal text.
func unresolvedVars(cc config.ConnectionConfig) []string {
	var vars []string
	seen := make(map[string]bool)

	collect := func(s string) {
		for _, m := range envVarPattern.FindAllStringSubmatch(s, -1) {
			name := m[1]
			if _, ok := os.LookupEnv(name); !ok && !seen[name] {
				seen[name] = true
				vars = append(vars, name)
			}
		}
	}

	collect(cc.DSN)
	for _, v := range cc.Params {
		if s, ok := v.(string); ok {
			collect(s)
		}
	}
	return vars
}

// calculateHealthScore computes a health score from 0-100.
// Errors weigh double what warnings do.
func calculateHealthScore(checks []HealthCheck) int {
	score := 100.0

	for _, check := range checks {
		switch check.Status {
		case "error":
			score -= float64(check.IssueCount) * 20
		case "warn":
			score -= float64(check.IssueCount) * 10
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(score)
}

// generateRecommendations creates actionable recommendations based on findings.
func generateRecommendations(checks []HealthCheck) []string {
	var recommendations []string
	seen := make(map[string]bool)

	for _, check := range checks {
		if check.Status == "pass" {
			continue
		}

		rec := getRecommendation(check)
		if rec != "" && !seen[rec] {
			recommendations = append(recommendations, rec)
			seen[rec] = true
		}
	}

	if len(recommendations) > 5 {
		recommendations = recommendations[:5]
	}
	return recommendations
}

// getRecommendation returns a recommendation for a failed check.
func getRecommendation(check HealthCheck) string {
	switch {
	case check.Name == "config file":
		return "Run 'quarry init' to scaffold quarry.yaml"
	case check.Name == "config keys":
		return "Fix or remove the unknown keys in quarry.yaml"
	case check.Name == "gateway url":
		return "Point gateway_url at the gateway's base URL (http://host:port)"
	case check.Name == "history database":
		return "Point history_path at a file path, not a directory"
	case check.Group == "storage":
		return "Complete the storage params for the flagged connections (s3 needs region or endpoint, azure needs account_name)"
	case check.Group == "connections":
		return "Fix the flagged connection entries in quarry.yaml and export any missing environment variables"
	default:
		return ""
	}
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) error {
	styles := r.Styles()

	// Header
	r.Println("")
	r.Println(styles.Header1.Render("Quarry Configuration Health Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Println("")

	// Summary
	r.Println(styles.Header2.Render("Summary"))
	configFile := out.Summary.ConfigFile
	if configFile == "" {
		configFile = "(none)"
	}
	r.Printf("   Config: %s | Gateway: %s\n", configFile, out.Summary.GatewayURL)
	r.Printf("   Connections: %d (%d sql, %d storage)\n",
		out.Summary.Connections, out.Summary.SQLConnections, out.Summary.StorageConnections)
	r.Println("")

	// Health checks grouped by category
	r.Println(styles.Header2.Render("Health Checks"))
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(styles.Bold.Render("   " + titleCaser.String(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		}

		icon := styles.StatusSuccess.String()
		switch check.Status {
		case "warn":
			icon = styles.Warning.Render("!")
		case "error":
			icon = styles.StatusFailed.String()
		}

		status := fmt.Sprintf("%s %s", icon, check.Name)
		if check.IssueCount > 0 {
			status += fmt.Sprintf(" (%d issues)", check.IssueCount)
		}
		r.Println("   " + status)

		// Show first 3 details for issues
		for i, detail := range check.Details {
			if i >= 3 {
				r.Println(styles.Muted.Render(fmt.Sprintf("       ... and %d more", len(check.Details)-3)))
				break
			}
			r.Println(styles.Muted.Render("       - " + detail))
		}
	}
	r.Println("")

	// Health score
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	scoreStyle := styles.Success
	if out.Score < 70 {
		scoreStyle = styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = styles.Error
	}
	r.Printf("   Health Score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)))
	r.Println("")

	// Recommendations
	if len(out.Recommendations) > 0 {
		r.Println(styles.Header2.Render("Recommendations"))
		for i, rec := range out.Recommendations {
			r.Printf("   %d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) error {
	r.Println("# Quarry Configuration Health Report")
	r.Println("")

	// Summary
	r.Println("## Summary")
	r.Println("")
	if out.Summary.ConfigFile != "" {
		r.Printf("- **Config File**: %s\n", out.Summary.ConfigFile)
	}
	r.Printf("- **Gateway**: %s\n", out.Summary.GatewayURL)
	r.Printf("- **Connections**: %d (%d sql, %d storage)\n",
		out.Summary.Connections, out.Summary.SQLConnections, out.Summary.StorageConnections)
	r.Println("")

	// Health checks
	r.Println("## Health Checks")
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println("### " + titleCaser.String(currentGroup))
			r.Println("")
		}

		status := "PASS"
		switch check.Status {
		case "warn":
			status = "WARN"
		case "error":
			status = "ERROR"
		}

		r.Printf("- **[%s]** %s", status, check.Name)
		if check.IssueCount > 0 {
			r.Printf(" (%d issues)", check.IssueCount)
		}
		r.Println("")

		for _, detail := range check.Details {
			r.Printf("  - %s\n", detail)
		}
	}
	r.Println("")

	// Health score
	r.Println("## Health Score")
	r.Println("")
	r.Printf("**%d/100**\n", out.Score)
	r.Println("")

	// Recommendations
	if len(out.Recommendations) > 0 {
		r.Println("## Recommendations")
		r.Println("")
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}
