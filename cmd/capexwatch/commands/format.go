package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/wonny/capexwatch/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintHeader prints a titled block header
func PrintHeader(title string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)
	PrintSeparator()
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Printf("⚠️  %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Printf("   • %s\n", item)
	}
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)
	total := 0
	for i, w := range widths {
		total += w
		if i < len(widths)-1 {
			total += 2 // spacing
		}
	}
	fmt.Println(strings.Repeat("─", total))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintJSON writes v as indented JSON to stdout
func PrintJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// SeverityIcon renders a severity for terminal output
func SeverityIcon(s contracts.Severity) string {
	switch s {
	case contracts.SeverityRed:
		return "🔴 RED"
	case contracts.SeverityOrange:
		return "🟠 ORANGE"
	case contracts.SeverityYellow:
		return "🟡 YELLOW"
	default:
		return "🟢 GREEN"
	}
}

// PrintDashboard renders the warning dashboard
func PrintDashboard(runID string, d *contracts.WarningDashboard) {
	PrintHeader("Early Warning Dashboard")
	PrintKeyValue("Run", runID, 12)
	PrintKeyValue("As of", d.AsOf, 12)
	PrintKeyValue("Status", SeverityIcon(d.OverallStatus), 12)
	PrintKeyValue("Health", fmt.Sprintf("%.2f", d.HealthScore), 12)
	PrintKeyValue("Stress", fmt.Sprintf("%.2f", d.StressScore), 12)
	fmt.Printf("\n   %s\n\n", d.StatusMessage)

	widths := []int{22, 10, 12, 10}
	PrintTableHeader([]string{"Signal", "Value", "Severity", "Estimated"}, widths)
	for _, s := range d.Signals {
		est := ""
		if s.Estimated {
			est = "yes"
		}
		PrintTableRow([]string{s.ID, fmt.Sprintf("%.2f", s.Value), string(s.Severity), est}, widths)
	}

	if len(d.ActiveWarnings) > 0 {
		fmt.Println()
		PrintWarning("Active warnings")
		PrintList(d.ActiveWarnings)
	}
	if len(d.Recommendations) > 0 {
		fmt.Println("\n   Recommendations:")
		PrintList(d.Recommendations)
	}
	PrintDoubleSeparator()
}

// PrintProjection renders one scenario projection
func PrintProjection(r *contracts.ScenarioResult) {
	PrintHeader("Scenario: " + r.Name)
	p := r.Parameters
	PrintKeyValue("Capex growth", fmt.Sprintf("%.1f%%", p.CapexGrowthRate*100), 14)
	PrintKeyValue("Revenue growth", fmt.Sprintf("%.1f%%", p.RevenueGrowthRate*100), 14)
	PrintKeyValue("Debt growth", fmt.Sprintf("%.1f%%", p.DebtGrowthRate*100), 14)
	PrintKeyValue("Interest rate", fmt.Sprintf("%.2f%%", p.InterestRate*100), 14)
	fmt.Println()

	widths := []int{6, 10, 10, 10, 10, 10}
	PrintTableHeader([]string{"Year", "Capex", "Revenue", "Debt", "Interest", "Gap"}, widths)
	for _, y := range r.Projections {
		year := fmt.Sprintf("+%d", y.Year)
		if r.BaseYear > 0 {
			year = fmt.Sprintf("%d", r.BaseYear+y.Year)
		}
		PrintTableRow([]string{
			year,
			fmt.Sprintf("%.1f", y.Capex),
			fmt.Sprintf("%.1f", y.Revenue),
			fmt.Sprintf("%.1f", y.Debt),
			fmt.Sprintf("%.2f", y.InterestBurden),
			fmt.Sprintf("%.1f", y.Gap),
		}, widths)
	}
	fmt.Printf("\n   %s\n", r.Summary)
	for _, w := range r.Warnings {
		PrintWarning(w)
	}
}
