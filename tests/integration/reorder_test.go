// Reorder and resequence scenarios driven through the CLI.
package integration

import (
	"strings"
	"testing"
)

func TestReorderAppliesNewOrder(t *testing.T) {
	env := NewTestEnv(t)

	a := addTodo(t, env, "A")
	b := addTodo(t, env, "B")
	c := addTodo(t, env, "C")

	result := env.MustRunLadder("reorder", c.TodoID, a.TodoID, b.TodoID)
	if !strings.Contains(result.Stdout, "Reordered 3") {
		t.Errorf("unexpected reorder output: %q", result.Stdout)
	}

	active := listTodos(t, env, "--status", "active")
	wantOrder := []string{"C", "A", "B"}
	for i, want := range wantOrder {
		if active[i].Title != want {
			t.Errorf("position %d = %q, want %q", i+1, active[i].Title, want)
		}
		if active[i].Placement.Rank != i+1 {
			t.Errorf("position %d rank = %d, want %d", i, active[i].Placement.Rank, i+1)
		}
	}
}

func TestReorderRejectsPartialList(t *testing.T) {
	env := NewTestEnv(t)

	a := addTodo(t, env, "A")
	addTodo(t, env, "B")
	addTodo(t, env, "C")

	result := env.RunLadder("reorder", a.TodoID)
	if result.ExitCode != 1 {
		t.Errorf("exit code = %d, want 1", result.ExitCode)
	}

	// Nothing moved.
	active := listTodos(t, env, "--status", "active")
	wantOrder := []string{"A", "B", "C"}
	for i, want := range wantOrder {
		if active[i].Title != want {
			t.Errorf("position %d = %q, want %q after failed reorder", i+1, active[i].Title, want)
		}
	}
}

func TestReorderRejectsUnknownID(t *testing.T) {
	env := NewTestEnv(t)

	a := addTodo(t, env, "A")
	b := addTodo(t, env, "B")

	result := env.RunLadder("reorder", a.TodoID, "not-a-real-id")
	if result.ExitCode != 1 {
		t.Errorf("exit code = %d, want 1", result.ExitCode)
	}

	result = env.RunLadder("reorder", a.TodoID, b.TodoID, a.TodoID)
	if result.ExitCode != 1 {
		t.Errorf("duplicated ID: exit code = %d, want 1", result.ExitCode)
	}
}

func TestReorderIgnoresNonActive(t *testing.T) {
	env := NewTestEnv(t)

	a := addTodo(t, env, "A")
	b := addTodo(t, env, "B")
	done := addTodo(t, env, "Done task")
	env.MustRunLadder("done", done.TodoID)

	// The completed todo must not appear in the assignment.
	result := env.RunLadder("reorder", b.TodoID, a.TodoID, done.TodoID)
	if result.ExitCode != 1 {
		t.Errorf("assignment with non-active ID: exit code = %d, want 1", result.ExitCode)
	}

	env.MustRunLadder("reorder", b.TodoID, a.TodoID)
	active := listTodos(t, env, "--status", "active")
	if active[0].Title != "B" || active[1].Title != "A" {
		t.Errorf("unexpected order after reorder: %+v", active)
	}
}

func TestResequenceOnHealthyStore(t *testing.T) {
	env := NewTestEnv(t)

	addTodo(t, env, "A")
	addTodo(t, env, "B")

	result := env.MustRunLadder("resequence")
	if !strings.Contains(result.Stdout, "nothing to repair") {
		t.Errorf("unexpected resequence output: %q", result.Stdout)
	}

	report := ParseJSON[RepairReport](t, env.MustRunLadder("resequence", "--json").Stdout)
	if report.Repaired || report.GapsFound != 0 {
		t.Errorf("healthy store report = %+v, want no repairs", report)
	}
}
