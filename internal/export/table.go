package export

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/solandes-viajes/cost-console/internal/model"
)

// RenderTable writes a human-readable summary table, thousands
// separated, one group per row followed by its alerts.
func RenderTable(w io.Writer, evals []model.Evaluation) {
	p := message.NewPrinter(language.Spanish)

	fmt.Fprintf(w, "%-12s %-20s %5s %6s %15s %15s %10s\n",
		"GROUP", "DESTINATION", "PAX", "NIGHTS", "BASE", "FINAL", "PER PAX")
	fmt.Fprintln(w, strings.Repeat("-", 90))

	for _, ev := range evals {
		s := ev.Summary
		marker := " "
		if s.Overridden {
			marker = "*"
		}
		fmt.Fprintf(w, "%-12s %-20s %5d %6d %15s %14s%s %10s\n",
			s.GroupID, s.Destination, s.Pax, s.Nights,
			p.Sprintf("%.0f", s.GrandTotalBase),
			p.Sprintf("%.0f", s.GrandTotalFinal), marker,
			p.Sprintf("%.0f", s.PerPax),
		)
		for _, alert := range s.Alerts {
			fmt.Fprintf(w, "    ! %s\n", alert)
		}
	}
}
