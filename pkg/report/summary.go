package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// topN bounds the ranked lists in a Summary.
const topN = 5

// ModuleCount pairs a module with a ranking value.
type ModuleCount struct {
	Module string
	Count  int
}

// Summary condenses a Report for terminal display.
type Summary struct {
	Root         string
	Mode         string
	Modules      int
	Edges        int
	FilesScanned int
	ImportsFound int
	Cycles       []string
	Dead         []string
	MostImported []ModuleCount
	Largest      []ModuleCount
	Unresolved   int
	Suggestions  []UnresolvedImport
}

// Summarize computes the figures shown by PrintSummary.
func Summarize(r *Report) Summary {
	s := Summary{
		Root:         r.Root,
		Mode:         r.Mode,
		Modules:      len(r.Graph),
		Edges:        r.Edges(),
		FilesScanned: r.FilesScanned,
		ImportsFound: r.ImportsFound,
		Dead:         r.DeadModules,
		Unresolved:   len(r.Unresolved),
	}

	for _, c := range r.Cycles {
		s.Cycles = append(s.Cycles, c.String())
	}

	imported := make([]ModuleCount, 0, len(r.Metrics))
	sized := make([]ModuleCount, 0, len(r.Metrics))
	for id, m := range r.Metrics {
		if m.InDegree > 0 {
			imported = append(imported, ModuleCount{Module: id, Count: m.InDegree})
		}
		if m.Lines != nil {
			sized = append(sized, ModuleCount{Module: id, Count: *m.Lines})
		}
	}
	s.MostImported = rank(imported)
	s.Largest = rank(sized)

	for _, u := range r.Unresolved {
		if u.Suggestion != "" {
			s.Suggestions = append(s.Suggestions, u)
		}
	}
	return s
}

// rank orders by descending count, then module, and keeps the top entries.
func rank(items []ModuleCount) []ModuleCount {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Module < items[j].Module
	})
	if len(items) > topN {
		items = items[:topN]
	}
	return items
}

var titler = cases.Title(language.English)

// PrintSummary writes s as plain text sections.
func PrintSummary(w io.Writer, s Summary) error {
	var b strings.Builder

	section := func(title string) {
		fmt.Fprintf(&b, "\n%s\n", titler.String(title))
	}

	fmt.Fprintf(&b, "Root:          %s\n", s.Root)
	if s.Mode != "" {
		fmt.Fprintf(&b, "Mode:          %s\n", s.Mode)
	}
	fmt.Fprintf(&b, "Files scanned: %d\n", s.FilesScanned)
	fmt.Fprintf(&b, "Imports found: %d\n", s.ImportsFound)
	fmt.Fprintf(&b, "Modules:       %d\n", s.Modules)
	fmt.Fprintf(&b, "Edges:         %d\n", s.Edges)
	fmt.Fprintf(&b, "Cycles:        %d\n", len(s.Cycles))
	fmt.Fprintf(&b, "Dead modules:  %d\n", len(s.Dead))
	fmt.Fprintf(&b, "Unresolved:    %d\n", s.Unresolved)

	if len(s.Cycles) > 0 {
		section("import cycles")
		for _, c := range s.Cycles {
			fmt.Fprintf(&b, "  %s\n", c)
		}
	}
	if len(s.Dead) > 0 {
		section("dead modules")
		for _, d := range s.Dead {
			fmt.Fprintf(&b, "  %s\n", d)
		}
	}
	if len(s.MostImported) > 0 {
		section("most imported")
		for _, m := range s.MostImported {
			fmt.Fprintf(&b, "  %-40s %d\n", m.Module, m.Count)
		}
	}
	if len(s.Largest) > 0 {
		section("largest modules")
		for _, m := range s.Largest {
			fmt.Fprintf(&b, "  %-40s %d lines\n", m.Module, m.Count)
		}
	}
	if len(s.Suggestions) > 0 {
		section("possible typos")
		for _, u := range s.Suggestions {
			fmt.Fprintf(&b, "  %s:%d %s (did you mean %s?)\n", u.File, u.Line, u.Import, u.Suggestion)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
