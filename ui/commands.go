package ui

import (
	"fmt"
	"strconv"
	"strings"

	"genchat/chat"
)

// Action is a UI-local command that does not go through the router.
type Action int

const (
	ActionNone Action = iota
	ActionNewSession
	ActionListSessions
	ActionOpenSession
	ActionRenameSession
	ActionExport
	ActionSearch
	ActionCopy
	ActionDelete
	ActionCancel
	ActionHelp
	ActionQuit
)

// Command is one parsed line of input. Exactly one of Intent and Action is
// set.
type Command struct {
	Intent chat.Intent
	Action Action
	Arg    string
	Index  int
}

// ParseInput turns a line typed in the input box into a command.
//
// Plain text sends the draft as a text message. A line starting with "//"
// is sent as text with one slash removed.
func ParseInput(line string) (Command, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Command{}, nil
	}
	if strings.HasPrefix(trimmed, "//") {
		return Command{Intent: chat.SendText{Text: trimmed[1:]}}, nil
	}
	if !strings.HasPrefix(trimmed, "/") {
		return Command{Intent: chat.SendText{}}, nil
	}

	name, rest, _ := strings.Cut(trimmed, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(name) {
	case "/image", "/img":
		if rest == "" {
			return Command{}, fmt.Errorf("usage: /image <prompt>")
		}
		return Command{Intent: chat.GenerateImage{Prompt: rest}}, nil

	case "/video", "/vid":
		ref, prompt, err := parseVideoArgs(rest)
		if err != nil {
			return Command{}, err
		}
		return Command{Intent: chat.GenerateVideo{Prompt: prompt, ReferenceImage: ref}}, nil

	case "/retry":
		return Command{Intent: chat.RetryLastFailure{}}, nil
	case "/clear":
		return Command{Intent: chat.ClearSession{}}, nil

	case "/delete", "/del":
		n, err := parseIndex(rest, "/delete <n>")
		if err != nil {
			return Command{}, err
		}
		return Command{Action: ActionDelete, Index: n}, nil

	case "/open":
		n, err := parseIndex(rest, "/open <n>")
		if err != nil {
			return Command{}, err
		}
		return Command{Action: ActionOpenSession, Index: n}, nil

	case "/rename":
		if rest == "" {
			return Command{}, fmt.Errorf("usage: /rename <title>")
		}
		return Command{Action: ActionRenameSession, Arg: rest}, nil

	case "/search":
		if rest == "" {
			return Command{}, fmt.Errorf("usage: /search <query>")
		}
		return Command{Action: ActionSearch, Arg: rest}, nil

	case "/new":
		return Command{Action: ActionNewSession}, nil
	case "/sessions":
		return Command{Action: ActionListSessions}, nil
	case "/export":
		return Command{Action: ActionExport, Arg: rest}, nil
	case "/copy":
		return Command{Action: ActionCopy}, nil
	case "/cancel":
		return Command{Action: ActionCancel}, nil
	case "/help", "/?":
		return Command{Action: ActionHelp}, nil
	case "/quit", "/exit":
		return Command{Action: ActionQuit}, nil
	}
	return Command{}, fmt.Errorf("unknown command %s (try /help)", name)
}

// parseVideoArgs splits "[--ref path] prompt". The path may be quoted.
func parseVideoArgs(args string) (ref, prompt string, err error) {
	switch {
	case strings.HasPrefix(args, "--ref="):
		args = strings.TrimPrefix(args, "--ref=")
	case strings.HasPrefix(args, "--ref "):
		args = strings.TrimSpace(strings.TrimPrefix(args, "--ref "))
	default:
		if args == "" {
			return "", "", fmt.Errorf("usage: /video [--ref image] <prompt>")
		}
		return "", args, nil
	}

	if q, ok := strings.CutPrefix(args, `"`); ok {
		var found bool
		ref, prompt, found = strings.Cut(q, `"`)
		if !found {
			return "", "", fmt.Errorf("unterminated quote in --ref")
		}
	} else {
		ref, prompt, _ = strings.Cut(args, " ")
	}
	ref, prompt = strings.TrimSpace(ref), strings.TrimSpace(prompt)
	if ref == "" || prompt == "" {
		return "", "", fmt.Errorf("usage: /video [--ref image] <prompt>")
	}
	return ref, prompt, nil
}

func parseIndex(arg, usage string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("usage: %s", usage)
	}
	return n, nil
}
