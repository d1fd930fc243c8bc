package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/flpkit/flp/codec"
	"github.com/flpkit/flp/dump"
	"github.com/flpkit/flp/version"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func main() {
	help := flag.Bool("h", false, "Show help.")
	raw := flag.Bool("r", false, "List the raw events instead of summarizing the decoded project. Works on files that do not decode.")
	yamlOut := flag.Bool("y", false, "Print the summary as YAML.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.String())
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	var lister *dump.Lister
	if *raw {
		var err error
		if lister, err = dump.New(); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}
	process := func(filename string) error {
		if lister != nil {
			b, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("could not read file %v: %v", filename, err)
			}
			return lister.Write(os.Stdout, b)
		}
		p, err := codec.DecodeFile(filename)
		if err != nil {
			return err
		}
		s := dump.Summarize(p)
		if *yamlOut {
			b, err := s.YAML()
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(b)
			return err
		}
		printSummary(os.Stdout, filename, s)
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		if err := process(param); err != nil {
			fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
			retval = 1
		}
	}
	os.Exit(retval)
}

func printSummary(w io.Writer, filename string, s dump.Summary) {
	field := func(key string, value any) {
		fmt.Fprintf(w, "  %s %v\n", keyStyle.Render(fmt.Sprintf("%-12s", key+":")), value)
	}
	fmt.Fprintln(w, titleStyle.Render(filename))
	field("version", s.Version)
	field("ppqn", s.PPQN)
	field("tempo", s.Tempo)
	field("time sig", s.TimeSig)
	if s.Info.Title != "" {
		field("title", s.Info.Title)
	}
	if s.Info.Author != "" {
		field("author", s.Info.Author)
	}
	if s.Created != "" {
		field("created", s.Created)
	}
	if len(s.Channels) > 0 {
		fmt.Fprintln(w, sectionStyle.Render(fmt.Sprintf("Channels (%d)", len(s.Channels))))
		for _, c := range s.Channels {
			line := fmt.Sprintf("%3d %-24s %-12s %s", c.Index, c.Name, c.Type, lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render("■"))
			if c.Automation != "" {
				line += fmt.Sprintf(" %s -> %s, %d points", c.Automation, strings.Join(c.Targets, ", "), c.Points)
			}
			fmt.Fprintln(w, "  "+line)
		}
	}
	if len(s.Patterns) > 0 {
		fmt.Fprintln(w, sectionStyle.Render(fmt.Sprintf("Patterns (%d)", len(s.Patterns))))
		for _, p := range s.Patterns {
			fmt.Fprintf(w, "  %3d %-24s %d notes, %d ticks\n", p.ID, p.Name, p.Notes, p.Length)
		}
	}
	for _, a := range s.Arrangements {
		fmt.Fprintln(w, sectionStyle.Render(fmt.Sprintf("Arrangement %d %s", a.Index, a.Name)))
		field("items", a.Items)
		field("length", a.Length)
		for _, m := range a.Markers {
			field("marker", m)
		}
		for _, t := range a.Tracks {
			field("track", t)
		}
	}
	for _, d := range s.Diagnostics {
		fmt.Fprintln(w, warnStyle.Render(d))
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Prints the contents of project files.\nUsage: %s [flags] [file ...]\n", os.Args[0])
	flag.PrintDefaults()
}
