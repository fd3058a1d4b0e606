package jobtable

import (
	"os/exec"
	"syscall"
	"testing"
	"time"
)

func TestAddJobListRemove(t *testing.T) {
	tbl := New()
	job := tbl.AddJob(1234, "echo hi", []int{1234})
	if job.ID != 1 {
		t.Fatalf("first job id = %d, want 1", job.ID)
	}
	if _, ok := tbl.Get(1); !ok {
		t.Fatal("Get(1) should find the job")
	}
	if len(tbl.List()) != 1 {
		t.Fatalf("List() len = %d, want 1", len(tbl.List()))
	}
	tbl.Remove(1)
	if _, ok := tbl.Get(1); ok {
		t.Fatal("job should be gone after Remove")
	}
}

func TestJobIDsMonotonic(t *testing.T) {
	tbl := New()
	j1 := tbl.AddJob(1, "a", []int{1})
	j2 := tbl.AddJob(2, "b", []int{2})
	if j2.ID <= j1.ID {
		t.Fatalf("job ids not monotonic: %d then %d", j1.ID, j2.ID)
	}
}

func TestStatusLineFormat(t *testing.T) {
	tbl := New()
	job := tbl.AddJob(99, "sleep 1", []int{99})
	line := job.StatusLine()
	if line != "[1] Running\tsleep 1" {
		t.Fatalf("StatusLine = %q", line)
	}
	_ = tbl
}

func spawnChild(t *testing.T, args ...string) *exec.Cmd {
	t.Helper()
	cmd := exec.Command(args[0], args[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		t.Skipf("cannot spawn %v: %v", args, err)
	}
	return cmd
}

func TestReapRemovesFinishedJob(t *testing.T) {
	cmd := spawnChild(t, "true")
	pid := cmd.Process.Pid
	tbl := New()
	job := tbl.AddJob(pid, "true", []int{pid})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		finished := tbl.Reap()
		if len(finished) == 1 && finished[0].ID == job.ID {
			if _, ok := tbl.Get(job.ID); ok {
				t.Fatal("job should be removed once reaped")
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job never reaped as Done")
}

func TestWaitForegroundReturnsExitCode(t *testing.T) {
	cmd := spawnChild(t, "sh", "-c", "exit 3")
	pid := cmd.Process.Pid
	tbl := New()
	job := tbl.AddJob(pid, "sh -c 'exit 3'", []int{pid})

	code, stopped := tbl.WaitForeground(job)
	if stopped {
		t.Fatal("should not report stopped")
	}
	if code != 3 {
		t.Fatalf("exit code = %d, want 3", code)
	}
}
