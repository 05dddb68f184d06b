package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// editorCommand builds the command that opens path at line and col. The
// second result reports whether the command runs in this terminal and so
// must take over the screen while it runs.
func editorCommand(path string, line int, col int, editorCmd string) (*exec.Cmd, bool, error) {
	target := fmt.Sprintf("%s:%d:%d", path, line, col)

	if strings.TrimSpace(editorCmd) != "" {
		name, args, err := buildEditorCommand(editorCmd, path, line, col, target)
		if err != nil {
			return nil, false, err
		}
		if _, err := exec.LookPath(name); err != nil {
			return nil, false, fmt.Errorf("editor command not found: %s", name)
		}
		return exec.Command(name, args...), isTerminalEditor(name), nil
	}

	for _, env := range []string{"VISUAL", "EDITOR"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			name, args, err := buildEditorCommand(v+" +{line} {file}", path, line, col, target)
			if err != nil {
				return nil, false, fmt.Errorf("$%s: %w", env, err)
			}
			if _, err := exec.LookPath(name); err == nil {
				return exec.Command(name, args...), true, nil
			}
		}
	}

	commands, unavailable := openFileCommands(path)
	if cmd, ok := firstAvailableCommand(commands); ok {
		return cmd, false, nil
	}
	return nil, false, unavailable
}

func isTerminalEditor(name string) bool {
	base := name
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	switch strings.TrimSuffix(base, ".exe") {
	case "vi", "vim", "nvim", "nano", "emacs", "hx", "helix", "micro", "kak", "joe", "ne":
		return true
	}
	return false
}

func buildEditorCommand(template string, file string, line int, col int, target string) (string, []string, error) {
	parts, err := splitCommandLine(strings.TrimSpace(template))
	if err != nil {
		return "", nil, err
	}
	if len(parts) == 0 {
		return "", nil, fmt.Errorf("editor command is empty")
	}

	repl := strings.NewReplacer(
		"{file}", file,
		"{line}", fmt.Sprintf("%d", line),
		"{col}", fmt.Sprintf("%d", col),
		"{target}", target,
	)
	for i := range parts {
		parts[i] = repl.Replace(parts[i])
	}

	return parts[0], parts[1:], nil
}

func splitCommandLine(input string) ([]string, error) {
	var parts []string
	var current strings.Builder

	tokenActive := false
	inSingle := false
	inDouble := false

	flush := func() {
		if !tokenActive {
			return
		}
		parts = append(parts, current.String())
		current.Reset()
		tokenActive = false
	}

	for _, r := range input {
		switch {
		case r == '\'' && !inDouble:
			inSingle = !inSingle
			tokenActive = true
		case r == '"' && !inSingle:
			inDouble = !inDouble
			tokenActive = true
		case (r == ' ' || r == '\t' || r == '\n' || r == '\r') && !inSingle && !inDouble:
			flush()
		default:
			current.WriteRune(r)
			tokenActive = true
		}
	}

	if inSingle || inDouble {
		return nil, fmt.Errorf("editor command has unclosed quote")
	}

	flush()
	return parts, nil
}

func openFileCommands(path string) ([][]string, error) {
	switch runtime.GOOS {
	case "darwin":
		return [][]string{{"open", path}}, fmt.Errorf("no $EDITOR and open is unavailable")
	case "linux":
		return [][]string{{"xdg-open", path}}, fmt.Errorf("no $EDITOR and xdg-open is unavailable")
	case "windows":
		return [][]string{{"explorer.exe", path}, {"cmd", "/C", "start", "", path}}, fmt.Errorf("no $EDITOR and explorer is unavailable")
	default:
		return nil, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

func firstAvailableCommand(candidates [][]string) (*exec.Cmd, bool) {
	for _, candidate := range candidates {
		if len(candidate) == 0 {
			continue
		}
		if _, err := exec.LookPath(candidate[0]); err != nil {
			continue
		}
		return exec.Command(candidate[0], candidate[1:]...), true
	}
	return nil, false
}
