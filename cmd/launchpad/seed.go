package main

import (
	"bufio"
	"fmt"
	"iter"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

var seedTitles = []string{
	"Calculator",
	"Calendar",
	"Terminal",
	"Text Editor",
	"Files",
	"Web Browser",
	"Mail",
	"Music Player",
	"Image Viewer",
	"System Monitor",
	"Settings",
	"Screenshot",
	"Archive Manager",
	"Disk Usage Analyzer",
	"Password Manager",
	"Video Player",
	"Document Scanner",
	"Clocks",
	"Weather",
	"Maps",
}

var seedCategories = []string{"apps", "system", "office", "media", "web"}

// seedEntry is the on-disk shape of one generated item.
type seedEntry struct {
	ID       string   `yaml:"id"`
	Title    string   `yaml:"title"`
	Subtitle string   `yaml:"subtitle,omitempty"`
	Category string   `yaml:"category"`
	Tags     []string `yaml:"tags,omitempty"`
	Priority int      `yaml:"priority,omitempty"`
	Enabled  *bool    `yaml:"enabled,omitempty"`
	Action   string   `yaml:"action"`
}

// linesFromFile returns an iterator over non-empty lines in a file.
func linesFromFile(filename string) (iter.Seq[string], func() error, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, err
	}
	scanner := bufio.NewScanner(f)
	seq := func(yield func(string) bool) {
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}
	done := func() error {
		err := scanner.Err()
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		return err
	}
	return seq, done, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// cycle repeats titles until count entries were produced, numbering repeats so
// every title stays distinct.
func cycle(titles []string, count int) iter.Seq[string] {
	return func(yield func(string) bool) {
		if len(titles) == 0 {
			return
		}
		for i := 0; i < count; i++ {
			title := titles[i%len(titles)]
			if round := i / len(titles); round > 0 {
				title += " " + strconv.Itoa(round+1)
			}
			if !yield(title) {
				return
			}
		}
	}
}

// generateEntries builds synthetic items; every seventh one is disabled.
func generateEntries(titles iter.Seq[string]) []seedEntry {
	var out []seedEntry
	disabled := false
	for title := range titles {
		i := len(out)
		e := seedEntry{
			ID:       fmt.Sprintf("seed-%05d", i),
			Title:    title,
			Category: seedCategories[i%len(seedCategories)],
			Action:   strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		}
		if i%3 == 0 {
			e.Subtitle = "Generated entry " + strconv.Itoa(i)
		}
		if i%5 == 0 {
			e.Tags = []string{"seed", "favourite"}
		}
		if i%11 == 0 {
			e.Priority = 1
		}
		if i%7 == 6 {
			e.Enabled = &disabled
		}
		out = append(out, e)
	}
	return out
}

func seedCommand(c *cli.Context) error {
	out := c.String("out")
	if out == "" {
		return fmt.Errorf("output path is required")
	}
	count := c.Int("count")
	if count <= 0 {
		return fmt.Errorf("count must be greater than 0")
	}

	var titles []string
	if from := c.String("from"); from != "" {
		lines, done, err := linesFromFile(from)
		if err != nil {
			return fmt.Errorf("failed to open title list: %w", err)
		}
		for line := range lines {
			titles = append(titles, line)
		}
		if err := done(); err != nil {
			return fmt.Errorf("failed to read title list: %w", err)
		}
	} else {
		for title := range linesFromSlice(seedTitles) {
			titles = append(titles, title)
		}
	}

	entries := generateEntries(cycle(titles, count))
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any{"entries": entries}); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode entries: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "wrote %d entries to %s\n", len(entries), out)
	return nil
}
