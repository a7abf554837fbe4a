package commands

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"todolists/internal/service"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Letter  rune // 'a'-'z'
	TaskNum int  // 1-based task number
}

func (r TaskRef) String() string {
	return fmt.Sprintf("%c%d", r.Letter, r.TaskNum)
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a task reference from args.
// Accepted forms are <letter><digits> ("a1", "b12") and <letter> <digits>
// ("a 1"). It returns the reference and the number of args consumed.
func ParseTaskRef(args []string) (TaskRef, int, error) {
	if len(args) == 0 {
		return TaskRef{}, 0, ErrTaskRefRequired
	}

	first := args[0]
	if first == "" || !isLetter(rune(first[0])) {
		return TaskRef{}, 0, fmt.Errorf("invalid task reference: %s", first)
	}
	letter := rune(first[0])

	if len(first) > 1 {
		num, ok := parseTaskNum(first[1:])
		if !ok {
			return TaskRef{}, 0, fmt.Errorf("invalid task reference: %s", first)
		}
		return TaskRef{Letter: letter, TaskNum: num}, 1, nil
	}

	if len(args) < 2 {
		return TaskRef{}, 0, ErrTaskRefRequired
	}
	num, ok := parseTaskNum(args[1])
	if !ok {
		return TaskRef{}, 0, fmt.Errorf("invalid task reference: %s %s", first, args[1])
	}
	return TaskRef{Letter: letter, TaskNum: num}, 2, nil
}

func parseTaskNum(s string) (int, bool) {
	if !isAllDigits(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// isLetter returns true if r is a lowercase letter a-z.
func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z'
}

// listLetter returns the display letter for the list at index i, or 0 when
// the index is past 'z'.
func listLetter(i int) rune {
	if i < 0 || i >= 26 {
		return 0
	}
	return 'a' + rune(i)
}

// ResolveTaskRef maps a reference to the task it names in the service's
// current lists. Letters follow display order; numbers are 1-based
// positions within the list.
func ResolveTaskRef(svc service.Service, ref TaskRef) (service.List, service.Task, error) {
	lists := svc.Lists()
	idx := int(ref.Letter - 'a')
	if idx < 0 || idx >= len(lists) {
		return service.List{}, service.Task{}, fmt.Errorf("%w: no list with letter %c", service.ErrListNotFound, ref.Letter)
	}

	list := lists[idx]
	if ref.TaskNum < 1 || ref.TaskNum > len(list.Tasks) {
		return service.List{}, service.Task{}, fmt.Errorf("%w: %s", service.ErrTaskNotFound, ref)
	}
	return list, list.Tasks[ref.TaskNum-1], nil
}
