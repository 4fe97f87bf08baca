package workflow

import (
	"fmt"
	"strings"
)

// Mermaid renders the graph as a left-to-right mermaid flowchart. Animated
// edges are drawn as thick links.
func Mermaid(g Graph) string {
	var b strings.Builder
	b.WriteString("graph LR\n")

	for _, blk := range g.Blocks {
		label := escapeMermaid(blk.Name)
		if blk.Type != "" {
			label += "<br/>" + escapeMermaid(blk.Type)
		}
		if blk.ID == g.EntryPoint {
			fmt.Fprintf(&b, "    %s([\"%s\"])\n", nodeID(blk.ID), label)
			continue
		}
		fmt.Fprintf(&b, "    %s[\"%s\"]\n", nodeID(blk.ID), label)
	}

	for _, e := range g.Edges {
		arrow := "-->"
		if e.Animated {
			arrow = "==>"
		}
		fmt.Fprintf(&b, "    %s %s %s\n", nodeID(e.Source), arrow, nodeID(e.Target))
	}

	return b.String()
}

// nodeID converts a block ID into a safe mermaid node ID. Generated IDs may
// start with a digit, so every ID gets a letter prefix.
func nodeID(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		".", "_",
		"-", "_",
		" ", "_",
		"(", "_",
		")", "_",
		"[", "_",
		"]", "_",
		"{", "_",
		"}", "_",
		":", "_",
	)
	return "n_" + replacer.Replace(s)
}

// escapeMermaid escapes characters that have special meaning in mermaid labels.
func escapeMermaid(s string) string {
	s = strings.ReplaceAll(s, "\"", "#quot;")
	s = strings.ReplaceAll(s, "(", "#lpar;")
	s = strings.ReplaceAll(s, ")", "#rpar;")
	s = strings.ReplaceAll(s, "[", "#lsqb;")
	s = strings.ReplaceAll(s, "]", "#rsqb;")
	s = strings.ReplaceAll(s, "{", "#lbrace;")
	s = strings.ReplaceAll(s, "}", "#rbrace;")
	s = strings.ReplaceAll(s, "<", "#lt;")
	s = strings.ReplaceAll(s, ">", "#gt;")
	return s
}
