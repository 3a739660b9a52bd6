package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
)

// LocationCount is the number of findings recorded against one file.
type LocationCount struct {
	Path     string
	Security int
	Debt     int
}

type treeNode struct {
	name     string
	isFile   bool
	count    *LocationCount
	children map[string]*treeNode
}

// PrintFindingsTree renders locations as a directory tree with their
// security and technical finding counts.
func PrintFindingsTree(w io.Writer, header string, locations []LocationCount) {
	if len(locations) == 0 {
		return
	}

	_, _ = fmt.Fprintf(w, "\n%s %s\n", StatsEmoji, header)
	printTree(w, buildTree(locations), "", true)
}

func buildTree(locations []LocationCount) *treeNode {
	root := &treeNode{children: make(map[string]*treeNode)}

	for i := range locations {
		loc := &locations[i]
		parts := strings.Split(loc.Path, "/")
		current := root

		for j, part := range parts {
			isFile := j == len(parts)-1
			child, ok := current.children[part]
			if !ok {
				child = &treeNode{
					name:     part,
					isFile:   isFile,
					children: make(map[string]*treeNode),
				}
				current.children[part] = child
			}
			if isFile {
				child.isFile = true
				child.count = loc
			}
			current = child
		}
	}
	return root
}

func printTree(w io.Writer, node *treeNode, prefix string, isLast bool) {
	if node.name != "" {
		connector := "├── "
		if isLast {
			connector = "└── "
		}

		name := node.name
		if !node.isFile {
			name = Info.Sprint(name + "/")
		}

		stats := ""
		if node.count != nil {
			statsColor := color.New(color.FgGreen)
			if node.count.Security > 0 {
				statsColor = color.New(color.FgRed)
			}
			stats = statsColor.Sprintf(" (sec %d, tech %d)", node.count.Security, node.count.Debt)
		}

		_, _ = fmt.Fprintf(w, "%s%s%s%s\n", prefix, connector, name, stats)
	}

	childPrefix := prefix
	if node.name != "" {
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}
	}

	keys := make([]string, 0, len(node.children))
	for key := range node.children {
		keys = append(keys, key)
	}

	// directories first, then files, each alphabetically
	sort.Slice(keys, func(i, j int) bool {
		a, b := node.children[keys[i]], node.children[keys[j]]
		if a.isFile != b.isFile {
			return !a.isFile
		}
		return keys[i] < keys[j]
	})

	for i, key := range keys {
		printTree(w, node.children[key], childPrefix, i == len(keys)-1)
	}
}
