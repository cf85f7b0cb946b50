package tmux

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"

	gotmux "github.com/atomicstack/gotmuxcc/gotmuxcc"
)

// ErrNoSessionName is returned when an attach target is blank.
var ErrNoSessionName = errors.New("tmux session name required")

// ResolveSocketPath picks the tmux server socket: the flag, then
// TABTERM_TMUX_SOCKET, then the socket of the enclosing tmux, then the
// per-user default.
func ResolveSocketPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if envSocket := os.Getenv("TABTERM_TMUX_SOCKET"); envSocket != "" {
		return envSocket, nil
	}
	if tmuxEnv := os.Getenv("TMUX"); tmuxEnv != "" {
		parts := strings.Split(tmuxEnv, ",")
		if len(parts) > 0 && parts[0] != "" {
			return parts[0], nil
		}
	}
	baseDir := os.Getenv("TMUX_TMPDIR")
	if baseDir == "" {
		baseDir = "/tmp"
	}
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return filepath.Join(baseDir, fmt.Sprintf("tmux-%s", u.Uid), "default"), nil
}

// ListSessions returns the sessions on the server at socketPath. A session
// only counts as attached when a non-control-mode client is on it.
func ListSessions(socketPath string) ([]Session, error) {
	client, err := newTmux(socketPath)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	raw, err := client.ListSessions()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		if fallback, ferr := fetchSessionsFallback(socketPath); ferr == nil {
			raw = fallback
		}
	}
	attached := realAttachedClients(client)
	sessions := make([]Session, 0, len(raw))
	for _, s := range raw {
		if s == nil || s.Name == "" {
			continue
		}
		sessions = append(sessions, Session{
			Name:     s.Name,
			Windows:  s.Windows,
			Attached: len(attached[s.Name]) > 0,
		})
	}
	return sessions, nil
}

// EnsureSession creates name on the server unless it already exists.
func EnsureSession(socketPath, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNoSessionName
	}
	client, err := newTmux(socketPath)
	if err != nil {
		return err
	}
	defer client.Close()

	existing, err := client.GetSessionByName(name)
	if err == nil && existing != nil {
		return nil
	}
	if _, err := client.NewSession(&gotmux.SessionOptions{Name: name}); err != nil {
		return fmt.Errorf("create tmux session %s: %w", name, err)
	}
	return nil
}

// AttachCommand returns the shell command a tab runs to attach to name.
func AttachCommand(socketPath, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNoSessionName
	}
	args := append([]string{"tmux"}, socketArgs(socketPath)...)
	args = append(args, "attach-session", "-t", name)
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = shellQuote(a)
	}
	return strings.Join(quoted, " "), nil
}

// socketArgs selects the server for a tmux invocation; none means tmux's own
// default.
func socketArgs(socketPath string) []string {
	if strings.TrimSpace(socketPath) == "" {
		return nil
	}
	return []string{"-S", socketPath}
}

func shellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, needsQuote) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func needsQuote(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	case strings.ContainsRune("-_./:=,+@%", r):
		return false
	}
	return true
}

// fetchSessionsFallback asks the tmux binary directly. It only runs when
// control mode reports no sessions, which happens while the server starts.
func fetchSessionsFallback(socketPath string) ([]*gotmux.Session, error) {
	format := "#{session_name}\t#{session_windows}\t#{session_attached}"
	args := append(socketArgs(socketPath), "list-sessions", "-F", format)
	output, err := runTmuxOutput(args...)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(string(output))
	if text == "" {
		return []*gotmux.Session{}, nil
	}
	lines := strings.Split(text, "\n")
	sessions := make([]*gotmux.Session, 0, len(lines))
	for _, line := range lines {
		parts := strings.SplitN(strings.TrimSpace(line), "\t", 3)
		if len(parts) < 3 {
			continue
		}
		windows, _ := strconv.Atoi(strings.TrimSpace(parts[1]))
		attached, _ := strconv.Atoi(strings.TrimSpace(parts[2]))
		sessions = append(sessions, &gotmux.Session{
			Name:     strings.TrimSpace(parts[0]),
			Windows:  windows,
			Attached: attached,
		})
	}
	return sessions, nil
}

// realAttachedClients maps session names to their attached clients,
// excluding the control-mode connection this package opens itself.
func realAttachedClients(client tmuxClient) map[string][]string {
	clients, err := client.ListClients()
	if err != nil {
		return nil
	}
	result := make(map[string][]string)
	for _, c := range clients {
		if c == nil || c.ControlMode || c.Session == "" {
			continue
		}
		result[c.Session] = append(result[c.Session], c.Name)
	}
	return result
}
