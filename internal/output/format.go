// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"todolists/internal/service"
)

const (
	// ListSeparator is the separator line for list sections.
	ListSeparator = "------------"
)

// FormatListHeader formats a list section header.
// Format: separator, "{letter}  {NAME}", optional indented description, separator.
func FormatListHeader(w io.Writer, letter rune, list service.List) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintf(w, "%c  %s\n", letter, normalizeTitle(list.Name))
	if desc := strings.TrimSpace(list.Description); desc != "" {
		fmt.Fprintf(w, "   %s\n", oneLine(desc))
	}
	fmt.Fprintln(w, ListSeparator)
}

// FormatTask formats a task line inside a list section.
// Format: "{N:>4}  [x] {NAME}" plus "  ({ASSIGNEE} <{EMAIL}>)" when assigned.
func FormatTask(w io.Writer, num int, task service.Task) {
	mark := " "
	if task.IsCompleted {
		mark = "x"
	}
	fmt.Fprintf(w, "%4d  [%s] %s%s\n", num, mark, normalizeTitle(task.Name), formatAssignee(task.AssignedTo))
}

// FormatListName formats a list name for the lists command.
// Format: "{NAME} ({open}/{total} open)".
func FormatListName(w io.Writer, list service.List) {
	fmt.Fprintf(w, "%s (%d/%d open)\n", normalizeTitle(list.Name), list.OpenTasks(), len(list.Tasks))
}

func formatAssignee(a service.Assignee) string {
	name := strings.TrimSpace(a.Name)
	email := strings.TrimSpace(a.Email)
	switch {
	case name != "" && email != "":
		return fmt.Sprintf("  (%s <%s>)", name, email)
	case name != "":
		return fmt.Sprintf("  (%s)", name)
	case email != "":
		return fmt.Sprintf("  (<%s>)", email)
	}
	return ""
}

// normalizeTitle normalizes a name for display.
// - Empty or whitespace-only names become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = oneLine(title)
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
