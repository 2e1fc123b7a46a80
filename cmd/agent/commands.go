package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/petasbytes/go-agent-context/contextmgr"
	"github.com/petasbytes/go-agent-context/memory"
)

const helpText = `Commands:
  /nodes        list tree nodes (tree and hybrid modes)
  /parent <id>  answer the next prompt under node <id>; /parent alone clears it
  /context      show the turns the engine would select now
  /help         show this help
  /quit         exit`

// previewRunes is how much of a message /nodes shows.
const previewRunes = 40

type command struct {
	name string
	arg  string
}

// parseCommand splits a slash command. ok is false for ordinary prompts.
func parseCommand(line string) (command, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return command{}, false
	}
	name, arg, _ := strings.Cut(line[1:], " ")
	return command{name: strings.ToLower(name), arg: strings.TrimSpace(arg)}, true
}

// parseParent reads a node id for /parent. Only existing nodes are accepted.
func parseParent(arg string, b contextmgr.Brancher) (contextmgr.NodeID, error) {
	n, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("parent must be a node id ≥ 1, got %q", arg)
	}
	id := contextmgr.NodeID(n)
	if _, ok := b.Node(id); !ok {
		return 0, fmt.Errorf("no node %d; see /nodes", id)
	}
	return id, nil
}

// formatNodes renders one "id: role: preview" line per node.
func formatNodes(nodes []contextmgr.MessageNode) string {
	var b strings.Builder
	for _, n := range nodes {
		fmt.Fprintf(&b, "%d: %s: %s\n", n.ID, n.Role, preview(n.Content, previewRunes))
	}
	return b.String()
}

// formatTurns renders a context selection, one turn per line.
func formatTurns(turns []memory.Turn) string {
	if len(turns) == 0 {
		return "(empty)\n"
	}
	var b strings.Builder
	for _, t := range turns {
		b.WriteString(t.Line())
		b.WriteByte('\n')
	}
	return b.String()
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
