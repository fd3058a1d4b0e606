// Package jobtable implements the shell's job table: job id assignment,
// pgid/pid tracking, status transitions, and reaping, built on the stdlib
// syscall primitives (Wait4/WaitStatus).
package jobtable

import (
	"fmt"
	"sort"
	"sync"
	"syscall"
)

// Status is a job's lifecycle state.
type Status int

const (
	Running Status = iota
	Stopped
	Done
)

func (s Status) String() string {
	switch s {
	case Running:
		return "Running"
	case Stopped:
		return "Stopped"
	case Done:
		return "Done"
	default:
		return "Unknown"
	}
}

// Job is a tracked pipeline: id, process group, pid set, display command
// string, and status. DoneCode is meaningful only once Status == Done.
type Job struct {
	ID       int
	Pgid     int
	Pids     []int
	Command  string
	Status   Status
	DoneCode int

	// pending tracks, per-pid, whether that pid has been reaped Done yet.
	pending map[int]bool
}

// Table owns every live job for one shell session. Not safe for concurrent
// use from multiple goroutines without external synchronization, matching
// the shell's single-threaded cooperative scheduling model.
type Table struct {
	mu     sync.Mutex
	jobs   map[int]*Job
	nextID int
}

// New returns an empty Table.
func New() *Table {
	return &Table{jobs: make(map[int]*Job), nextID: 1}
}

// AddJob registers a newly-forked pipeline and returns the new Job, whose
// ID is the next session-local job id.
func (t *Table) AddJob(pgid int, command string, pids []int) *Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	pending := make(map[int]bool, len(pids))
	for _, p := range pids {
		pending[p] = true
	}
	job := &Job{ID: id, Pgid: pgid, Pids: append([]int{}, pids...), Command: command, Status: Running, pending: pending}
	t.jobs[id] = job
	return job
}

// Get returns the job with the given id, if any.
func (t *Table) Get(id int) (*Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	j, ok := t.jobs[id]
	return j, ok
}

// List returns every tracked job, ordered by id.
func (t *Table) List() []*Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]int, 0, len(t.jobs))
	for id := range t.jobs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*Job, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.jobs[id])
	}
	return out
}

// Remove deletes a job from the table (e.g. once fully reaped).
func (t *Table) Remove(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.jobs, id)
}

// LastID returns the highest job id currently tracked, used by fg/bg with
// no argument ("the current job").
func (t *Table) LastID() (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	best := -1
	for id := range t.jobs {
		if id > best {
			best = id
		}
	}
	return best, best != -1
}

// Reap performs a nonblocking wait on every tracked pid, updates statuses,
// and removes jobs whose entire pid set has completed. It returns the jobs
// that transitioned to Done during this pass (for REPL notification).
func (t *Table) Reap() []*Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	var finished []*Job
	for id, job := range t.jobs {
		changed := false
		for _, pid := range job.Pids {
			if !job.pending[pid] {
				continue
			}
			var ws syscall.WaitStatus
			wpid, err := syscall.Wait4(pid, &ws, syscall.WNOHANG, nil)
			if err != nil || wpid == 0 {
				continue
			}
			changed = true
			applyWaitStatus(job, ws, pid == job.Pids[len(job.Pids)-1])
			if ws.Exited() || ws.Signaled() {
				job.pending[pid] = false
			}
		}
		if changed && allDone(job) {
			job.Status = Done
			finished = append(finished, job)
			delete(t.jobs, id)
		}
	}
	sort.Slice(finished, func(i, j int) bool { return finished[i].ID < finished[j].ID })
	return finished
}

func allDone(job *Job) bool {
	for _, pending := range job.pending {
		if pending {
			return false
		}
	}
	return true
}

// applyWaitStatus updates job.DoneCode/Status from one pid's wait result:
// exit code is the last stage's; signal termination maps to 128+signo;
// a Stopped status halts the job as a whole.
func applyWaitStatus(job *Job, ws syscall.WaitStatus, lastStage bool) {
	switch {
	case ws.Exited():
		if lastStage {
			job.DoneCode = ws.ExitStatus()
		}
	case ws.Signaled():
		if lastStage {
			job.DoneCode = 128 + int(ws.Signal())
		}
	case ws.Stopped():
		job.Status = Stopped
	}
}

// WaitForeground blocks on every pid in the job (in pipeline order),
// reporting the last stage's exit code as the pipeline result, and stops
// waiting (marking the job Stopped) the first time any stage reports
// Stopped: stop the entire job if any stage stops, and only remove it
// once every stage is later observed Done.
func (t *Table) WaitForeground(job *Job) (exitCode int, stopped bool) {
	lastCode := 0
	for _, pid := range job.Pids {
		var ws syscall.WaitStatus
		_, err := syscall.Wait4(pid, &ws, syscall.WUNTRACED, nil)
		if err != nil {
			continue
		}
		switch {
		case ws.Exited():
			lastCode = ws.ExitStatus()
			t.mu.Lock()
			job.pending[pid] = false
			t.mu.Unlock()
		case ws.Signaled():
			lastCode = 128 + int(ws.Signal())
			t.mu.Lock()
			job.pending[pid] = false
			t.mu.Unlock()
		case ws.Stopped():
			t.mu.Lock()
			job.Status = Stopped
			t.mu.Unlock()
			return 128 + int(syscall.SIGTSTP), true
		}
	}
	t.mu.Lock()
	if allDone(job) {
		job.Status = Done
		job.DoneCode = lastCode
		delete(t.jobs, job.ID)
	}
	t.mu.Unlock()
	return lastCode, false
}

// StatusLine renders a job the way `jobs` prints it: "[id] status command".
func (j *Job) StatusLine() string {
	status := j.Status.String()
	if j.Status == Done {
		status = fmt.Sprintf("Done(%d)", j.DoneCode)
	}
	return fmt.Sprintf("[%d] %s\t%s", j.ID, status, j.Command)
}
