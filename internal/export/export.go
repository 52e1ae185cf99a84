// Package export writes tasks as markdown documents with YAML frontmatter
// and reads them back.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gerrardelliot83-create/floe/internal/model"
)

const frontmatterDelimiter = "---"

type frontmatter struct {
	ID          string            `yaml:"id,omitempty"`
	Title       string            `yaml:"title"`
	Priority    model.Priority    `yaml:"priority,omitempty"`
	Due         *time.Time        `yaml:"due,omitempty"`
	HasTime     bool              `yaml:"has_time,omitempty"`
	Tags        []string          `yaml:"tags,omitempty"`
	Recurring   *model.Recurrence `yaml:"recurring,omitempty"`
	Completed   bool              `yaml:"completed"`
	CompletedAt *time.Time        `yaml:"completed_at,omitempty"`
	ParentID    string            `yaml:"parent_id,omitempty"`
	Created     time.Time         `yaml:"created"`
	Updated     time.Time         `yaml:"updated"`
}

// Export writes one frontmatter document per task. The body is a markdown
// checkbox line so the file reads well on its own.
func Export(w io.Writer, tasks []model.Task) error {
	for i, t := range tasks {
		doc, err := serialize(t)
		if err != nil {
			return err
		}
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, doc); err != nil {
			return err
		}
	}
	return nil
}

func serialize(t model.Task) (string, error) {
	fm := frontmatter{
		ID:          t.ID,
		Title:       t.Title,
		Priority:    t.Priority,
		Due:         t.Due,
		HasTime:     t.HasTime,
		Tags:        t.Tags,
		Recurring:   t.Recurring,
		Completed:   t.Completed,
		CompletedAt: t.CompletedAt,
		ParentID:    t.ParentID,
		Created:     t.CreatedAt,
		Updated:     t.UpdatedAt,
	}
	yamlBytes, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("serializing frontmatter YAML: %w", err)
	}

	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}
	var b strings.Builder
	b.WriteString(frontmatterDelimiter)
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(string(yamlBytes), "\n"))
	b.WriteString("\n")
	b.WriteString(frontmatterDelimiter)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "- %s %s\n", box, t.Title)
	return b.String(), nil
}

// Import parses documents written by Export. Tasks without an id in their
// frontmatter come back with an empty ID; a missing title falls back to the
// body's checkbox line.
func Import(r io.Reader) ([]model.Task, error) {
	var (
		tasks   []model.Task
		inFront bool
		yamlBuf strings.Builder
		body    []string
		started bool
		lineNo  int
	)
	flush := func() error {
		if !started {
			return nil
		}
		task, err := parseDocument(yamlBuf.String(), body)
		if err != nil {
			return err
		}
		tasks = append(tasks, task)
		yamlBuf.Reset()
		body = nil
		return nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimRight(line, " \t") == frontmatterDelimiter {
			if inFront {
				inFront = false
				continue
			}
			if err := flush(); err != nil {
				return nil, err
			}
			inFront = true
			started = true
			continue
		}
		switch {
		case inFront:
			yamlBuf.WriteString(line)
			yamlBuf.WriteString("\n")
		case started:
			body = append(body, line)
		case strings.TrimSpace(line) != "":
			return nil, fmt.Errorf("line %d: expected frontmatter delimiter", lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if inFront {
		return nil, fmt.Errorf("unclosed frontmatter delimiter")
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func parseDocument(yamlContent string, body []string) (model.Task, error) {
	var fm frontmatter
	if err := yaml.Unmarshal([]byte(yamlContent), &fm); err != nil {
		return model.Task{}, fmt.Errorf("parsing frontmatter YAML: %w", err)
	}
	title := strings.TrimSpace(fm.Title)
	if title == "" {
		title = titleFromBody(body)
	}
	if title == "" {
		return model.Task{}, fmt.Errorf("task %q has no title", fm.ID)
	}
	tags := fm.Tags
	if tags == nil {
		tags = []string{}
	}
	return model.Task{
		ID:          fm.ID,
		Title:       title,
		Priority:    fm.Priority,
		Due:         fm.Due,
		HasTime:     fm.HasTime,
		Tags:        tags,
		Recurring:   fm.Recurring,
		Completed:   fm.Completed,
		CompletedAt: fm.CompletedAt,
		ParentID:    fm.ParentID,
		CreatedAt:   fm.Created,
		UpdatedAt:   fm.Updated,
	}, nil
}

func titleFromBody(body []string) string {
	for _, line := range body {
		line = strings.TrimSpace(line)
		for _, prefix := range []string{"- [ ] ", "- [x] ", "- [X] ", "# "} {
			if strings.HasPrefix(line, prefix) {
				return strings.TrimSpace(strings.TrimPrefix(line, prefix))
			}
		}
	}
	return ""
}
