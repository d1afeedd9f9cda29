package presenters

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/vaultview/vaultview/pkg/portfolio"
)

var boxStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	PaddingLeft(1).
	PaddingRight(1)

var headerStyle = lipgloss.NewStyle().Bold(true)

func renderBold(str string) string {
	return lipgloss.NewStyle().Bold(true).Render(str)
}

func scoreColor(score float64) lipgloss.Style {
	style := lipgloss.NewStyle()
	switch {
	case score > 80:
		return style.Foreground(lipgloss.Color("2"))
	case score > 60:
		return style.Foreground(lipgloss.Color("3"))
	default:
		return style.Foreground(lipgloss.Color("1"))
	}
}

// PortfolioPresenter renders the portfolio overview for the terminal.
type PortfolioPresenter struct {
	writer io.Writer
	sort   portfolio.SortConfig
}

func NewPortfolioPresenter(writer io.Writer, sort portfolio.SortConfig) *PortfolioPresenter {
	if f, ok := writer.(*os.File); ok && !isatty.IsTerminal(f.Fd()) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return &PortfolioPresenter{writer: writer, sort: sort}
}

func (p *PortfolioPresenter) Render(records []portfolio.TenantRecord) error {
	summary := portfolio.Summarize(records)

	var out strings.Builder
	out.WriteString(renderBold("Portfolio Overview") + "\n")
	out.WriteString(fmt.Sprintf("Aggregated insights across %d organizations\n\n", summary.LoadedTenants))
	out.WriteString(p.renderSummary(summary))
	out.WriteString("\n")
	out.WriteString(p.renderTable(records))

	_, err := io.WriteString(p.writer, out.String())
	return err
}

func (p *PortfolioPresenter) renderSummary(summary portfolio.Summary) string {
	utilization := "N/A"
	if summary.UtilizationDefined {
		utilization = fmt.Sprintf("%.1f%%", summary.SeatUtilization)
	}

	cards := []string{
		boxStyle.Render(fmt.Sprintf("Total Active Seats\n%s\n%s usage", renderBold(strconv.Itoa(summary.TotalActiveSeats)), utilization)),
		boxStyle.Render(fmt.Sprintf("Avg. Health Score\n%s\nscore 0 excluded", scoreColor(summary.AverageHealthScore).Bold(true).Render(fmt.Sprintf("%.1f", summary.AverageHealthScore)))),
		boxStyle.Render(fmt.Sprintf("Pending Invites\n%s\nawaiting acceptance", renderBold(strconv.Itoa(summary.TotalPendingInvites)))),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...) + "\n"
}

func (p *PortfolioPresenter) renderTable(records []portfolio.TenantRecord) string {
	sorted := portfolio.SortTenants(records, p.sort)

	var out strings.Builder
	out.WriteString(headerStyle.Render(fmt.Sprintf("%-24s %8s %10s %8s %7s %6s %8s %12s",
		"Organization", "Active", "Available", "Pending", "Score", "Weak", "Reused", "Compromised")))
	out.WriteString("\n")

	for _, record := range sorted {
		switch record.Status {
		case portfolio.StatusLoading:
			out.WriteString(fmt.Sprintf("%-24s %s\n", record.Name, "loading..."))
		case portfolio.StatusError:
			out.WriteString(fmt.Sprintf("%-24s %s\n", record.Name, "error: "+record.Error))
		default:
			seats := record.Data.Team.Seats
			current := record.Data.CurrentScore()
			out.WriteString(fmt.Sprintf("%-24s %8d %10d %8d %7s %6d %8d %12d\n",
				record.Name, seats.Active, seats.Remaining, seats.Pending,
				scoreColor(current.Score).Render(fmt.Sprintf("%.0f", current.Score)),
				current.Weak, current.Reused, current.Compromised))
		}
	}
	return out.String()
}
