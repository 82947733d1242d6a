package console

import (
	"fmt"
	"strconv"
	"strings"

	"page-marker/internal/entity"
	"page-marker/internal/usecase"
)

type command struct {
	name      string
	index     int
	direction entity.ScrollDirection
	arg       string
}

func parseCommand(input string) (command, error) {
	name, rest, _ := strings.Cut(strings.TrimSpace(input), " ")
	name = strings.ToLower(name)
	rest = strings.TrimSpace(rest)

	cmd := command{name: name, index: usecase.NoElement}

	switch name {
	case "help", "h", "exit", "quit", "q", "mark", "unmark", "list", "ls", "wait", "back", "restart":
		if rest != "" {
			return cmd, fmt.Errorf("%s takes no arguments", name)
		}
	case "open":
		if rest == "" {
			return cmd, fmt.Errorf("usage: open <url>")
		}
		cmd.arg = rest
	case "annotate", "shot":
		cmd.arg = rest
	case "click":
		index, err := parseIndex(rest)
		if err != nil {
			return cmd, fmt.Errorf("usage: click <i>: %w", err)
		}
		cmd.index = index
	case "type":
		raw, text, ok := strings.Cut(rest, " ")
		if !ok || strings.TrimSpace(text) == "" {
			return cmd, fmt.Errorf("usage: type <i> <text>")
		}
		index, err := parseIndex(raw)
		if err != nil {
			return cmd, fmt.Errorf("usage: type <i> <text>: %w", err)
		}
		cmd.index = index
		cmd.arg = strings.TrimSpace(text)
	case "scroll":
		fields := strings.Fields(rest)
		if len(fields) == 0 || len(fields) > 2 {
			return cmd, fmt.Errorf("usage: scroll up|down [i]")
		}
		cmd.direction = entity.ScrollDirection(strings.ToLower(fields[0]))
		if cmd.direction != entity.ScrollUp && cmd.direction != entity.ScrollDown {
			return cmd, fmt.Errorf("usage: scroll up|down [i]")
		}
		if len(fields) == 2 {
			index, err := parseIndex(fields[1])
			if err != nil {
				return cmd, fmt.Errorf("usage: scroll up|down [i]: %w", err)
			}
			cmd.index = index
		}
	default:
		return cmd, fmt.Errorf("unknown command %q, type help", name)
	}

	return cmd, nil
}

func parseIndex(raw string) (int, error) {
	index, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid element number %q", raw)
	}

	if index < 0 {
		return 0, fmt.Errorf("element number must not be negative")
	}

	return index, nil
}
