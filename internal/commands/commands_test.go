package commands_test

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todolists/internal/backend/fluree"
	"todolists/internal/backend/googletasks"
	"todolists/internal/commands"
	"todolists/internal/config"
	"todolists/internal/exitcode"
	"todolists/internal/service"
	"todolists/internal/testutil"
)

// runCommand parses argv with the command's own flags and runs it against
// the fake service.
func runCommand(t *testing.T, cmd commands.Command, svc service.Service, argv []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	require.NoError(t, fs.Parse(argv))

	var outBuf, errBuf bytes.Buffer
	cfg := &config.Config{Dir: t.TempDir(), Quiet: quiet}

	code = cmd.Run(context.Background(), cfg, svc, fs.Args(), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func unavailable() error {
	return fmt.Errorf("transact: %w: connection refused", fluree.ErrRemoteUnavailable)
}

func groceries(svc *testutil.FakeService) service.List {
	return svc.Seed("Groceries",
		service.Task{Name: "Milk", AssignedTo: service.Assignee{Name: "Al", Email: "al@x.com"}},
		service.Task{Name: "Eggs", IsCompleted: true},
		service.Task{Name: "Bread"},
	)
}

func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, nil, nil, false)

	assert.Equal(t, exitcode.Success, code)
	assert.Empty(t, stderr)
	assert.Equal(t, "todolists 0.1.0\n", stdout)
}

func TestHelpCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.HelpCmd{}, nil, nil, false)

	assert.Equal(t, exitcode.Success, code)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "Usage:")
	for _, name := range []string{"show", "lists", "addlist", "add", "edit", "done", "undone", "rm", "rmlist", "import", "login", "logout", "devstore"} {
		cmd, ok := commands.DefaultRegistry.Find(name)
		require.True(t, ok, name)
		assert.Contains(t, stdout, cmd.Usage())
	}
	assert.Contains(t, stdout, "--config <dir>")
}

func TestHelpCommand_SingleCommand(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.HelpCmd{}, nil, []string{"rm"}, false)

	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "Usage:\n  todolists rm <ref>\n\nDelete a task\n\nAliases: delete\n", stdout)

	_, stderr, code := runCommand(t, &commands.HelpCmd{}, nil, []string{"nope"}, false)
	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: unknown command: nope\n", stderr)
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	r := commands.NewRegistry()
	require.NoError(t, r.Register(&commands.RmCmd{}))

	assert.Error(t, r.Register(&commands.RmCmd{}))

	cmd, ok := r.Find("delete")
	require.True(t, ok)
	assert.Equal(t, "rm", cmd.Name())
	assert.Len(t, r.All(), 1)
}

func TestListsCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	groceries(svc)
	svc.Seed("Chores")

	stdout, _, code := runCommand(t, &commands.ListsCmd{}, svc, nil, false)

	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "Groceries (2/3 open)\nChores (0/0 open)\n", stdout)
}

func TestListsCommand_Empty(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.ListsCmd{}, testutil.NewFakeService(), nil, false)
	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "no lists found\n", stdout)

	stdout, _, _ = runCommand(t, &commands.ListsCmd{}, testutil.NewFakeService(), nil, true)
	assert.Empty(t, stdout)
}

func TestShowCommand_AllLists(t *testing.T) {
	svc := testutil.NewFakeService()
	groceries(svc)
	svc.Seed("Chores", service.Task{Name: "Dishes"})

	stdout, stderr, code := runCommand(t, &commands.ShowCmd{}, svc, nil, false)

	assert.Equal(t, exitcode.Success, code)
	assert.Empty(t, stderr)
	want := "------------\n" +
		"a  Groceries\n" +
		"------------\n" +
		"   1  [ ] Milk  (Al <al@x.com>)\n" +
		"   2  [x] Eggs\n" +
		"   3  [ ] Bread\n" +
		"------------\n" +
		"b  Chores\n" +
		"------------\n" +
		"   1  [ ] Dishes\n"
	assert.Equal(t, want, stdout)
}

func TestShowCommand_OneListKeepsLetter(t *testing.T) {
	svc := testutil.NewFakeService()
	groceries(svc)
	svc.Seed("Chores", service.Task{Name: "Dishes"})

	stdout, _, code := runCommand(t, &commands.ShowCmd{}, svc, []string{"chores"}, false)

	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "------------\nb  Chores\n------------\n   1  [ ] Dishes\n", stdout)
}

func TestShowCommand_OpenOnlyKeepsNumbers(t *testing.T) {
	svc := testutil.NewFakeService()
	groceries(svc)

	stdout, _, code := runCommand(t, &commands.ShowCmd{}, svc, []string{"--open"}, false)

	assert.Equal(t, exitcode.Success, code)
	assert.Contains(t, stdout, "   1  [ ] Milk")
	assert.NotContains(t, stdout, "Eggs")
	assert.Contains(t, stdout, "   3  [ ] Bread")
}

func TestShowCommand_Errors(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.Seed("Chores")
	svc.Seed("chores ")

	_, stderr, code := runCommand(t, &commands.ShowCmd{}, svc, []string{"Chores"}, false)
	assert.Equal(t, exitcode.UserError, code)
	assert.Contains(t, stderr, "ambiguous list name")

	_, stderr, code = runCommand(t, &commands.ShowCmd{}, svc, []string{"Garden"}, false)
	assert.Equal(t, exitcode.UserError, code)
	assert.Contains(t, stderr, "list not found")
}

func TestShowCommand_Empty(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.ShowCmd{}, testutil.NewFakeService(), nil, false)
	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "no lists found\n", stdout)
}

func TestAddListCommand_WithTasks(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, stderr, code := runCommand(t, &commands.AddListCmd{}, svc, []string{
		"-d", "weekly",
		"--task", "Milk|Al|al@x.com",
		"-t", "Eggs",
		"Groceries",
	}, false)

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Equal(t, "ok\n", stdout)

	lists := svc.Lists()
	require.Len(t, lists, 1)
	assert.Equal(t, "Groceries", lists[0].Name)
	assert.Equal(t, "weekly", lists[0].Description)
	require.Len(t, lists[0].Tasks, 2)
	assert.Equal(t, "Milk", lists[0].Tasks[0].Name)
	assert.Equal(t, "Al", lists[0].Tasks[0].AssignedTo.Name)
	assert.Equal(t, "al@x.com", lists[0].Tasks[0].AssignedTo.Email)
	assert.Equal(t, "Eggs", lists[0].Tasks[1].Name)
	assert.Empty(t, lists[0].Tasks[1].AssignedTo.ID)
}

func TestAddListCommand_Errors(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.AddListCmd{}, svc, nil, false)
	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: list name required\n", stderr)

	svc.AddListErr = unavailable()
	_, stderr, code = runCommand(t, &commands.AddListCmd{}, svc, []string{"Groceries"}, false)
	assert.Equal(t, exitcode.BackendError, code)
	assert.Contains(t, stderr, "error: backend error:")
	assert.Empty(t, svc.Lists())
}

func TestAddListCommand_EmptyTaskFlag(t *testing.T) {
	fs := flag.NewFlagSet("addlist", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	(&commands.AddListCmd{}).RegisterFlags(fs)

	assert.Error(t, fs.Parse([]string{"--task", " |Al", "Groceries"}))
}

func TestAddCommand_SingleListFallback(t *testing.T) {
	svc := testutil.NewFakeService()
	groceries(svc)

	stdout, _, code := runCommand(t, &commands.AddCmd{}, svc, []string{"--assignee", "Bo", "Oat", "milk"}, false)

	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "ok\n", stdout)
	tasks := svc.Lists()[0].Tasks
	require.Len(t, tasks, 4)
	assert.Equal(t, "Oat milk", tasks[3].Name)
	assert.Equal(t, "Bo", tasks[3].AssignedTo.Name)
}

func TestAddCommand_ListRequired(t *testing.T) {
	svc := testutil.NewFakeService()
	groceries(svc)
	svc.Seed("Chores")

	_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"Sweep"}, false)
	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: --list required when more than one list exists\n", stderr)

	_, _, code = runCommand(t, &commands.AddCmd{}, svc, []string{"-l", "chores", "Sweep"}, true)
	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "Sweep", svc.Lists()[1].Tasks[0].Name)
}

func TestAddCommand_Errors(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, nil, false)
	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: title required\n", stderr)

	_, stderr, code = runCommand(t, &commands.AddCmd{}, svc, []string{"Milk"}, false)
	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: no lists exist, create one with addlist\n", stderr)

	groceries(svc)
	svc.AddTaskErr = unavailable()
	_, _, code = runCommand(t, &commands.AddCmd{}, svc, []string{"Butter"}, false)
	assert.Equal(t, exitcode.BackendError, code)
	assert.Len(t, svc.Lists()[0].Tasks, 3)
}

func TestEditCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	groceries(svc)

	stdout, stderr, code := runCommand(t, &commands.EditCmd{}, svc, []string{"--name", "Whole milk", "--email", "", "a1"}, false)

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Equal(t, "ok\n", stdout)
	task := svc.Lists()[0].Tasks[0]
	assert.Equal(t, "Whole milk", task.Name)
	assert.Equal(t, "Al", task.AssignedTo.Name)
	assert.Empty(t, task.AssignedTo.Email)
}

func TestEditCommand_NewAssignee(t *testing.T) {
	svc := testutil.NewFakeService()
	groceries(svc)

	_, _, code := runCommand(t, &commands.EditCmd{}, svc, []string{"--assignee", "Cy", "a", "3"}, true)

	assert.Equal(t, exitcode.Success, code)
	task := svc.Lists()[0].Tasks[2]
	assert.Equal(t, "Cy", task.AssignedTo.Name)
	assert.NotEmpty(t, task.AssignedTo.ID)
}

func TestEditCommand_Errors(t *testing.T) {
	svc := testutil.NewFakeService()
	groceries(svc)

	tests := []struct {
		name   string
		argv   []string
		code   int
		stderr string
	}{
		{"no ref", []string{"--name", "x"}, exitcode.UserError, "error: task reference required"},
		{"nothing to change", []string{"a1"}, exitcode.UserError, "error: nothing to change"},
		{"empty name", []string{"--name", " ", "a1"}, exitcode.UserError, "error: title required"},
		{"extra argument", []string{"--name", "x", "a1", "b"}, exitcode.UserError, "error: unexpected argument: b"},
		{"missing task", []string{"--name", "x", "a9"}, exitcode.UserError, "task not found"},
		{"missing list", []string{"--name", "x", "c1"}, exitcode.UserError, "list not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, code := runCommand(t, &commands.EditCmd{}, svc, tt.argv, false)
			assert.Equal(t, tt.code, code)
			assert.Contains(t, stderr, tt.stderr)
		})
	}
	assert.Equal(t, "Milk", svc.Lists()[0].Tasks[0].Name)
}

func TestDoneAndUndoneCommands(t *testing.T) {
	svc := testutil.NewFakeService()
	groceries(svc)

	_, _, code := runCommand(t, &commands.DoneCmd{}, svc, []string{"a1"}, false)
	assert.Equal(t, exitcode.Success, code)
	assert.True(t, svc.Lists()[0].Tasks[0].IsCompleted)

	_, _, code = runCommand(t, &commands.UndoneCmd{}, svc, []string{"a", "2"}, false)
	assert.Equal(t, exitcode.Success, code)
	assert.False(t, svc.Lists()[0].Tasks[1].IsCompleted)
}

func TestDoneCommand_AlreadyDoneSendsNothing(t *testing.T) {
	svc := testutil.NewFakeService()
	groceries(svc)
	svc.EditTaskErr = unavailable()

	stdout, _, code := runCommand(t, &commands.DoneCmd{}, svc, []string{"a2"}, false)

	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "ok\n", stdout)
}

func TestDoneCommand_BackendFailureLeavesTask(t *testing.T) {
	svc := testutil.NewFakeService()
	groceries(svc)
	svc.EditTaskErr = unavailable()

	_, stderr, code := runCommand(t, &commands.DoneCmd{}, svc, []string{"a1"}, false)

	assert.Equal(t, exitcode.BackendError, code)
	assert.Contains(t, stderr, "remote store unavailable")
	assert.False(t, svc.Lists()[0].Tasks[0].IsCompleted)
}

func TestRmCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	groceries(svc)

	stdout, _, code := runCommand(t, &commands.RmCmd{}, svc, []string{"a2"}, false)

	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "ok\n", stdout)
	tasks := svc.Lists()[0].Tasks
	require.Len(t, tasks, 2)
	assert.Equal(t, "Milk", tasks[0].Name)
	assert.Equal(t, "Bread", tasks[1].Name)
}

func TestRmCommand_Errors(t *testing.T) {
	svc := testutil.NewFakeService()
	groceries(svc)

	_, stderr, code := runCommand(t, &commands.RmCmd{}, svc, []string{"x"}, false)
	assert.Equal(t, exitcode.UserError, code)
	assert.Contains(t, stderr, "invalid task reference")

	svc.DeleteTaskErr = fmt.Errorf("transact: %w", fluree.ErrTransactionRejected)
	_, stderr, code = runCommand(t, &commands.RmCmd{}, svc, []string{"a1"}, false)
	assert.Equal(t, exitcode.BackendError, code)
	assert.Contains(t, stderr, "transaction rejected")
	assert.Len(t, svc.Lists()[0].Tasks, 3)
}

func TestTaskRefCommands_RejectExtraArguments(t *testing.T) {
	tests := []struct {
		name string
		cmd  commands.Command
		argv []string
	}{
		{"rm", &commands.RmCmd{}, []string{"a1", "a2"}},
		{"rm separated ref", &commands.RmCmd{}, []string{"a", "1", "a2"}},
		{"done", &commands.DoneCmd{}, []string{"a1", "a3"}},
		{"undone", &commands.UndoneCmd{}, []string{"a2", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := testutil.NewFakeService()
			before := groceries(svc)

			_, stderr, code := runCommand(t, tt.cmd, svc, tt.argv, false)

			assert.Equal(t, exitcode.UserError, code)
			assert.Equal(t, "error: unexpected argument: "+tt.argv[len(tt.argv)-1]+"\n", stderr)
			assert.Equal(t, before.Tasks, svc.Lists()[0].Tasks)
		})
	}
}

func TestRmListCommand_OpenTasksNeedForce(t *testing.T) {
	svc := testutil.NewFakeService()
	groceries(svc)

	_, stderr, code := runCommand(t, &commands.RmListCmd{}, svc, []string{"Groceries"}, false)
	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: list \"Groceries\" has 2 open tasks, use --force to delete\n", stderr)
	assert.Len(t, svc.Lists(), 1)

	stdout, _, code := runCommand(t, &commands.RmListCmd{}, svc, []string{"-f", "Groceries"}, false)
	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "ok\n", stdout)
	assert.Empty(t, svc.Lists())
}

func TestRmListCommand_NoOpenTasks(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.Seed("Done", service.Task{Name: "Old", IsCompleted: true})

	_, _, code := runCommand(t, &commands.RmListCmd{}, svc, []string{"done"}, true)

	assert.Equal(t, exitcode.Success, code)
	assert.Empty(t, svc.Lists())
}

func TestRmListCommand_Unauthorized(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.Seed("Chores")
	svc.DeleteListErr = &fluree.StatusError{Op: "transact", StatusCode: 401, Kind: fluree.ErrTransactionRejected}

	_, _, code := runCommand(t, &commands.RmListCmd{}, svc, []string{"Chores"}, false)

	assert.Equal(t, exitcode.AuthError, code)
}

type fakeSource struct {
	lists []service.NewList
	err   error
}

func (f fakeSource) Lists(ctx context.Context) ([]service.NewList, error) {
	return f.lists, f.err
}

func sourceOf(src fakeSource) commands.TaskSourceFactory {
	return func(ctx context.Context, cfg *config.Config) (commands.TaskSource, error) {
		return src, nil
	}
}

func TestImportCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	cmd := &commands.ImportCmd{Source: sourceOf(fakeSource{lists: []service.NewList{
		{Name: "Work", Tasks: []service.NewTask{{Name: "Report"}, {Name: "Mail", Completed: true}}},
		{Name: "Home"},
	}})}

	stdout, stderr, code := runCommand(t, cmd, svc, []string{"--assignee", "Me", "--email", "me@x.com"}, false)

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Equal(t, "imported 2 lists\n", stdout)
	lists := svc.Lists()
	require.Len(t, lists, 2)
	require.Len(t, lists[0].Tasks, 2)
	assert.True(t, lists[0].Tasks[1].IsCompleted)
	assert.Equal(t, "Me", lists[0].Tasks[0].AssignedTo.Name)
	assert.Equal(t, "me@x.com", lists[0].Tasks[1].AssignedTo.Email)
	assert.Empty(t, lists[1].Tasks)
}

func TestImportCommand_PartialFailure(t *testing.T) {
	svc := testutil.NewFakeService()
	cmd := &commands.ImportCmd{Source: sourceOf(fakeSource{lists: []service.NewList{
		{Name: "Work"}, {Name: " "},
	}})}

	_, stderr, code := runCommand(t, cmd, svc, nil, false)

	assert.Equal(t, exitcode.UserError, code)
	assert.Contains(t, stderr, "error: imported 1 of 2 lists\n")
	assert.Len(t, svc.Lists(), 1)
}

func TestImportCommand_SourceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"auth", fmt.Errorf("list task lists: %w", googletasks.ErrAuth), exitcode.AuthError},
		{"unavailable", fmt.Errorf("list task lists: %w", googletasks.ErrUnavailable), exitcode.BackendError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := testutil.NewFakeService()
			cmd := &commands.ImportCmd{Source: sourceOf(fakeSource{err: tt.err})}

			_, stderr, code := runCommand(t, cmd, svc, nil, false)

			assert.Equal(t, tt.code, code)
			assert.Contains(t, stderr, tt.err.Error())
			assert.Empty(t, svc.Lists())
		})
	}
}

func TestImportCommand_FactoryError(t *testing.T) {
	cmd := &commands.ImportCmd{Source: func(ctx context.Context, cfg *config.Config) (commands.TaskSource, error) {
		return nil, fmt.Errorf("read token: %w", googletasks.ErrAuth)
	}}

	_, _, code := runCommand(t, cmd, testutil.NewFakeService(), nil, false)

	assert.Equal(t, exitcode.AuthError, code)
}

func TestImportCommand_NotLoggedIn(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.ImportCmd{}, testutil.NewFakeService(), nil, false)

	assert.Equal(t, exitcode.AuthError, code)
	assert.Equal(t, "error: not logged in to Google Tasks (run: todolists login)\n", stderr)
}

func TestRmListCommand_Timeout(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.Seed("Chores")
	svc.DeleteListErr = fmt.Errorf("transact: %w: %w", fluree.ErrRemoteUnavailable, fluree.ErrTimeout)

	_, stderr, code := runCommand(t, &commands.RmListCmd{}, svc, []string{"Chores"}, false)

	assert.Equal(t, exitcode.BackendError, code)
	assert.Equal(t, "error: backend error: transact: remote store unavailable: request timed out\n", stderr)
	assert.Len(t, svc.Lists(), 1)
}
