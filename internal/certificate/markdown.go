package certificate

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mrz1836/wipecert/internal/domain"
)

// Markdown renders a human-readable summary of r. verdict is shown when
// non-empty, e.g. the Status of a verification that was just run.
func Markdown(r Record, verdict string) string {
	caser := cases.Title(language.English)

	var sb strings.Builder
	sb.WriteString("# Certificate of Data Sanitization\n\n")
	fmt.Fprintf(&sb, "**Report ID:** `%s`  \n", r.ReportID)
	fmt.Fprintf(&sb, "**Completed (UTC):** %s\n\n", r.Timestamp)

	sb.WriteString("## Device\n\n")
	sb.WriteString("| Field | Value |\n|---|---|\n")
	writeRow(&sb, "Model", r.DriveInfo.Model)
	writeRow(&sb, "Serial", r.DriveInfo.Serial)
	writeRow(&sb, "Size", r.DriveInfo.Size)
	writeRow(&sb, "Path", r.DriveInfo.Path)

	method := domain.WipeMethod(r.WipeDetails.Method)
	sb.WriteString("\n## Sanitization\n\n")
	sb.WriteString("| Field | Value |\n|---|---|\n")
	writeRow(&sb, "Method", fmt.Sprintf("%s (%s)", caser.String(method.String()), method.Tier()))
	writeRow(&sb, "Standard", r.WipeDetails.Standard)
	writeRow(&sb, "Status", r.WipeDetails.Status)

	sb.WriteString("\n### Details\n\n")
	sb.WriteString("```\n")
	sb.WriteString(strings.TrimRight(r.WipeDetails.Details, "\n"))
	sb.WriteString("\n```\n")

	sb.WriteString("\n## Signature\n\n")
	if r.Signed() {
		fmt.Fprintf(&sb, "RSA-PSS / SHA-256: `%s`\n", abbreviate(r.Signature, 48))
	} else {
		sb.WriteString("_unsigned_\n")
	}
	if verdict != "" {
		fmt.Fprintf(&sb, "\n**Verification:** %s\n", verdict)
	}

	return sb.String()
}

func writeRow(sb *strings.Builder, field, value string) {
	value = strings.ReplaceAll(value, "|", `\|`)
	value = strings.ReplaceAll(value, "\n", " ")
	fmt.Fprintf(sb, "| %s | %s |\n", field, value)
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
