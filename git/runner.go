package git

import (
	"context"
	"os/exec"
	"strings"
	"sync"
)

// CommandRunner executes external commands. The real implementation shells
// out; tests inject a mock.
type CommandRunner interface {
	// Run executes the command in workDir and returns trimmed stdout.
	// A non-empty workDir sets the command's working directory.
	Run(ctx context.Context, workDir, command string, args ...string) (string, error)
}

// CommandError wraps a failed command with its output for diagnostics.
type CommandError struct {
	Command string   // Command that was run (e.g., "git")
	Args    []string // Arguments passed to the command
	Output  string   // Combined stdout/stderr output
	Err     error    // Underlying error (usually *exec.ExitError)
}

func (e *CommandError) Error() string {
	if e.Output != "" {
		return e.Output
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "command failed"
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExecRunner runs commands via os/exec.
type ExecRunner struct{}

// NewExecRunner creates a runner that executes real commands.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run implements CommandRunner.
func (r *ExecRunner) Run(ctx context.Context, workDir, command string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	if workDir != "" {
		cmd.Dir = workDir
	}

	output, err := cmd.CombinedOutput()
	trimmed := strings.TrimSpace(string(output))
	if err != nil {
		return trimmed, &CommandError{
			Command: command,
			Args:    args,
			Output:  trimmed,
			Err:     err,
		}
	}
	return trimmed, nil
}

// =============================================================================
// Mock Runners (for testing)
// =============================================================================

// Call records a single command invocation on a mock runner.
type Call struct {
	WorkDir string
	Command string
	Args    []string
}

// MockResponse is a canned response for a mock runner.
type MockResponse struct {
	Stdout string
	Err    error
}

// MockRunner matches commands to canned responses.
// Match priority: exact command+args, then command only, then wildcard ("*"),
// then DefaultResponse.
type MockRunner struct {
	mu              sync.Mutex
	Responses       map[string]MockResponse
	DefaultResponse MockResponse
	Calls           []Call
}

// NewMockRunner creates a mock runner with no responses configured.
func NewMockRunner() *MockRunner {
	return &MockRunner{
		Responses: make(map[string]MockResponse),
	}
}

// mockCall configures the response for a matched command.
type mockCall struct {
	runner *MockRunner
	key    string
}

// Return sets the response for the matched command.
func (c *mockCall) Return(stdout string, err error) {
	c.runner.Responses[c.key] = MockResponse{Stdout: stdout, Err: err}
}

// OnCommand registers a response for an exact command and argument list.
func (m *MockRunner) OnCommand(command string, args ...string) *mockCall {
	return &mockCall{runner: m, key: mockKey(command, args)}
}

// OnAnyCommand registers a response matching every command.
func (m *MockRunner) OnAnyCommand() *mockCall {
	return &mockCall{runner: m, key: "*"}
}

// Run implements CommandRunner.
func (m *MockRunner) Run(ctx context.Context, workDir, command string, args ...string) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, Call{WorkDir: workDir, Command: command, Args: args})

	resp, ok := m.Responses[mockKey(command, args)]
	if !ok {
		resp, ok = m.Responses[command]
	}
	if !ok {
		resp, ok = m.Responses["*"]
	}
	if !ok {
		resp = m.DefaultResponse
	}
	m.mu.Unlock()

	return resp.Stdout, resp.Err
}

// WasCalled reports whether a command with the given prefix was run.
// With no args it matches any invocation of the command.
func (m *MockRunner) WasCalled(command string, args ...string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, call := range m.Calls {
		if call.Command != command {
			continue
		}
		if len(args) == 0 {
			return true
		}
		if len(args) <= len(call.Args) && argsMatch(call.Args[:len(args)], args) {
			return true
		}
	}
	return false
}

// CallCount returns how many times a command was run.
func (m *MockRunner) CallCount(command string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, call := range m.Calls {
		if call.Command == command {
			count++
		}
	}
	return count
}

func mockKey(command string, args []string) string {
	if len(args) == 0 {
		return command
	}
	return command + " " + strings.Join(args, " ")
}

func argsMatch(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i := range actual {
		if actual[i] != expected[i] {
			return false
		}
	}
	return true
}

// SequentialMockRunner returns responses in the order they were added,
// regardless of the command. Useful when a single operation issues a known
// sequence of git commands.
type SequentialMockRunner struct {
	mu        sync.Mutex
	responses []MockResponse
	next      int
	Calls     []Call
}

// NewSequentialMockRunner creates an empty sequential mock runner.
func NewSequentialMockRunner() *SequentialMockRunner {
	return &SequentialMockRunner{}
}

// AddOutput appends a response to the sequence.
func (m *SequentialMockRunner) AddOutput(stdout string, err error) {
	m.responses = append(m.responses, MockResponse{Stdout: stdout, Err: err})
}

// AddOutputError appends a failing response. The returned error is a
// *CommandError carrying errOutput even when err is nil, mirroring how a
// failed subprocess surfaces.
func (m *SequentialMockRunner) AddOutputError(stdout, errOutput string, err error) {
	m.responses = append(m.responses, MockResponse{
		Stdout: stdout,
		Err:    &CommandError{Output: errOutput, Err: err},
	})
}

// Run implements CommandRunner.
func (m *SequentialMockRunner) Run(ctx context.Context, workDir, command string, args ...string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, Call{WorkDir: workDir, Command: command, Args: args})

	if m.next >= len(m.responses) {
		return "", &CommandError{Command: command, Args: args, Output: "no more mock responses"}
	}
	resp := m.responses[m.next]
	m.next++
	return resp.Stdout, resp.Err
}
