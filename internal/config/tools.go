// This file implements the preflight check for the external utilities
// wipecert shells out to.

package config

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/wipecert/internal/constants"
)

//nolint:gochecknoglobals // compiled once
var (
	utilLinuxVersionRe = regexp.MustCompile(`util-linux (\d+\.\d+(?:\.\d+)?)`)
	hdparmVersionRe    = regexp.MustCompile(`v?(\d+\.\d+(?:\.\d+)?)`)
)

// ToolStatus represents the installation status of an external tool.
//
//nolint:recvcheck // UnmarshalText requires a pointer receiver
type ToolStatus int

const (
	// ToolStatusMissing indicates the tool is not installed.
	ToolStatusMissing ToolStatus = iota

	// ToolStatusInstalled indicates the tool is installed and meets version requirements.
	ToolStatusInstalled

	// ToolStatusOutdated indicates the tool is installed but below the minimum version.
	ToolStatusOutdated
)

// maxVersionSegments is the number of segments in a version (major.minor.patch).
const maxVersionSegments = 3

// String returns a human-readable representation of the tool status.
func (s ToolStatus) String() string {
	switch s {
	case ToolStatusInstalled:
		return "installed"
	case ToolStatusMissing:
		return "missing"
	case ToolStatusOutdated:
		return "outdated"
	default:
		return "unknown"
	}
}

// MarshalText serializes the status as its name.
func (s ToolStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name. Unknown names become missing.
func (s *ToolStatus) UnmarshalText(data []byte) error {
	switch string(data) {
	case "installed":
		*s = ToolStatusInstalled
	case "outdated":
		*s = ToolStatusOutdated
	default:
		*s = ToolStatusMissing
	}
	return nil
}

// Tool represents an external tool wipecert depends on.
type Tool struct {
	// Name is the tool identifier (e.g., "lsblk").
	Name string `json:"name"`

	// Command is the configured command or path.
	Command string `json:"command"`

	// Required indicates the tool is needed for every wipe.
	// hdparm is only needed for the purge method.
	Required bool `json:"required"`

	// UsedFor describes what wipecert uses the tool for.
	UsedFor string `json:"used_for"`

	// MinVersion is the minimum required version.
	MinVersion string `json:"min_version"`

	// CurrentVersion is the detected installed version.
	CurrentVersion string `json:"current_version"`

	// Status is the current installation status.
	Status ToolStatus `json:"status"`

	// InstallHint provides installation instructions for missing tools.
	InstallHint string `json:"install_hint"`
}

// ToolDetectionResult holds the results of detecting all tools.
type ToolDetectionResult struct {
	// Tools contains the detection result for each tool, in a fixed order.
	Tools []Tool `json:"tools"`

	// HasMissingRequired indicates if any required tools are missing or outdated.
	HasMissingRequired bool `json:"has_missing_required"`
}

// MissingRequiredTools returns the required tools that are missing or outdated.
func (r *ToolDetectionResult) MissingRequiredTools() []Tool {
	var missing []Tool
	for _, tool := range r.Tools {
		if tool.Required && tool.Status != ToolStatusInstalled {
			missing = append(missing, tool)
		}
	}
	return missing
}

// CommandExecutor abstracts command execution for testability.
type CommandExecutor interface {
	// LookPath searches for an executable named file in the PATH.
	LookPath(file string) (string, error)

	// Run executes a command and returns its combined output.
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// DefaultCommandExecutor implements CommandExecutor using os/exec.
type DefaultCommandExecutor struct{}

// LookPath searches for an executable in the PATH.
func (e *DefaultCommandExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Run executes a command and returns its output.
func (e *DefaultCommandExecutor) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...) //#nosec G204 -- tool names come from configuration
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// ToolDetector detects the installation status of external tools.
type ToolDetector interface {
	// Detect checks all configured tools and returns their status.
	Detect(ctx context.Context) (*ToolDetectionResult, error)
}

// DefaultToolDetector implements ToolDetector.
type DefaultToolDetector struct {
	executor CommandExecutor
	tools    ToolsConfig
}

// NewToolDetector creates a detector for the configured tools.
func NewToolDetector(tools ToolsConfig) *DefaultToolDetector {
	return NewToolDetectorWithExecutor(tools, &DefaultCommandExecutor{})
}

// NewToolDetectorWithExecutor creates a detector with a custom executor.
func NewToolDetectorWithExecutor(tools ToolsConfig, executor CommandExecutor) *DefaultToolDetector {
	return &DefaultToolDetector{
		executor: executor,
		tools:    tools,
	}
}

// toolConfig holds the configuration for detecting a specific tool.
type toolConfig struct {
	name        string
	command     string
	versionFlag string
	minVersion  string
	required    bool
	usedFor     string
	installHint string
	parseFunc   func(output string) string
}

func (d *DefaultToolDetector) toolConfigs() []toolConfig {
	return []toolConfig{
		{
			name:        constants.ToolLsblk,
			command:     orDefault(d.tools.Lsblk, constants.ToolLsblk),
			versionFlag: "--version",
			minVersion:  constants.MinVersionUtilLinux,
			required:    true,
			usedFor:     "drive enumeration and partition discovery",
			installHint: "Install util-linux (apt install util-linux)",
			parseFunc:   parseUtilLinuxVersion,
		},
		{
			name:        constants.ToolUmount,
			command:     orDefault(d.tools.Umount, constants.ToolUmount),
			versionFlag: "--version",
			required:    true,
			usedFor:     "unmounting the target before overwrite",
			installHint: "Install util-linux (apt install util-linux)",
			parseFunc:   parseUtilLinuxVersion,
		},
		{
			name:        constants.ToolHdparm,
			command:     orDefault(d.tools.Hdparm, constants.ToolHdparm),
			versionFlag: "-V",
			minVersion:  constants.MinVersionHdparm,
			required:    false,
			usedFor:     "ATA secure erase (--method purge)",
			installHint: "Install hdparm (apt install hdparm)",
			parseFunc:   parseHdparmVersion,
		},
	}
}

// Detect checks all configured tools concurrently and returns their status
// in a fixed order.
func (d *DefaultToolDetector) Detect(ctx context.Context) (*ToolDetectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	detectCtx, cancel := context.WithTimeout(ctx, constants.ToolDetectionTimeout)
	defer cancel()

	configs := d.toolConfigs()
	tools := make([]Tool, len(configs))

	// Each probe owns one slot of tools.
	g, gCtx := errgroup.WithContext(detectCtx)
	for i, cfg := range configs {
		g.Go(func() error {
			tools[i] = d.detectTool(gCtx, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to detect tools: %w", err)
	}

	result := &ToolDetectionResult{Tools: tools}
	result.HasMissingRequired = len(result.MissingRequiredTools()) > 0
	return result, nil
}

// detectTool detects a single tool's status.
func (d *DefaultToolDetector) detectTool(ctx context.Context, cfg toolConfig) Tool {
	tool := Tool{
		Name:        cfg.name,
		Command:     cfg.command,
		Required:    cfg.required,
		UsedFor:     cfg.usedFor,
		MinVersion:  cfg.minVersion,
		InstallHint: cfg.installHint,
		Status:      ToolStatusMissing,
	}

	if _, err := d.executor.LookPath(cfg.command); err != nil {
		return tool
	}

	tool.Status = ToolStatusInstalled
	tool.CurrentVersion = "unknown"

	output, err := d.executor.Run(ctx, cfg.command, cfg.versionFlag)
	if err != nil {
		// Present but the version query failed; treat as installed.
		return tool
	}

	version := cfg.parseFunc(output)
	if version == "" {
		return tool
	}
	tool.CurrentVersion = version

	if cfg.minVersion != "" && CompareVersions(version, cfg.minVersion) < 0 {
		tool.Status = ToolStatusOutdated
	}
	return tool
}

func parseUtilLinuxVersion(output string) string {
	if matches := utilLinuxVersionRe.FindStringSubmatch(output); len(matches) > 1 {
		return matches[1]
	}
	return ""
}

func parseHdparmVersion(output string) string {
	if matches := hdparmVersionRe.FindStringSubmatch(output); len(matches) > 1 {
		return matches[1]
	}
	return ""
}

// CompareVersions orders two dotted versions by their first three numeric
// segments and returns -1, 0 or 1. A leading "v" and any non-numeric suffix
// on a segment ("40-rc1") are ignored; missing segments count as zero.
func CompareVersions(current, required string) int {
	a, b := versionSegments(current), versionSegments(required)
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func versionSegments(version string) [maxVersionSegments]int {
	var out [maxVersionSegments]int
	fields := strings.SplitN(strings.TrimPrefix(version, "v"), ".", maxVersionSegments+1)
	for i := 0; i < len(fields) && i < maxVersionSegments; i++ {
		digits := strings.IndexFunc(fields[i], func(r rune) bool { return r < '0' || r > '9' })
		if digits < 0 {
			digits = len(fields[i])
		}
		out[i], _ = strconv.Atoi(fields[i][:digits])
	}
	return out
}

// FormatMissingToolsError creates a formatted message for missing tools.
func FormatMissingToolsError(missing []Tool) string {
	if len(missing) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Missing required tools:\n\n")
	for _, tool := range missing {
		state := "not found in PATH"
		if tool.Status == ToolStatusOutdated {
			state = fmt.Sprintf("version %s is older than %s", tool.CurrentVersion, tool.MinVersion)
		}
		fmt.Fprintf(&sb, "  • %s (%s): %s\n    %s\n\n", tool.Name, tool.Command, state, tool.InstallHint)
	}
	return sb.String()
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
