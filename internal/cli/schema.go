package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/semmy-space/wdc/internal/output"
)

// SchemaCmd outputs the command tree as JSON for scripts and agents
type SchemaCmd struct {
	Command string `arg:"" optional:"" help:"Command path to show schema for (e.g., 'messages search')"`
	Hidden  bool   `help:"Include hidden commands and flags"`
}

// SchemaNode is one command of the tree
type SchemaNode struct {
	Name     string        `json:"name"`
	Path     string        `json:"path,omitempty"`
	Type     string        `json:"type"`
	Help     string        `json:"help,omitempty"`
	Aliases  []string      `json:"aliases,omitempty"`
	Hidden   bool          `json:"hidden,omitempty"`
	Flags    []*SchemaFlag `json:"flags,omitempty"`
	Args     []*SchemaArg  `json:"args,omitempty"`
	Children []*SchemaNode `json:"commands,omitempty"`
}

// SchemaFlag describes a flag of a command
type SchemaFlag struct {
	Name     string   `json:"name"`
	Short    string   `json:"short,omitempty"`
	Help     string   `json:"help,omitempty"`
	Type     string   `json:"type"`
	Required bool     `json:"required,omitempty"`
	Default  string   `json:"default,omitempty"`
	Enum     []string `json:"enum,omitempty"`
	Env      []string `json:"env,omitempty"`
}

// SchemaArg describes a positional argument
type SchemaArg struct {
	Name     string `json:"name"`
	Help     string `json:"help,omitempty"`
	Type     string `json:"type"`
	Required bool   `json:"required,omitempty"`
}

// Run executes the schema command
func (cmd *SchemaCmd) Run(kctx *kong.Context, fp *FormatterProvider) error {
	node := kctx.Model.Node
	if cmd.Command != "" {
		var err error
		if node, err = findNodeByPath(node, cmd.Command); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(fp.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(cmd.build(node))
}

func (cmd *SchemaCmd) build(node *kong.Node) *SchemaNode {
	s := &SchemaNode{
		Name:    node.Name,
		Type:    nodeTypeString(node.Type),
		Help:    node.Help,
		Aliases: node.Aliases,
		Hidden:  node.Hidden,
	}
	if node.Type != kong.ApplicationNode {
		s.Path = node.FullPath()
	}

	for _, flag := range node.Flags {
		if flag.Name == "help" || (flag.Hidden && !cmd.Hidden) {
			continue
		}
		s.Flags = append(s.Flags, schemaFlag(flag))
	}

	for _, arg := range node.Positional {
		s.Args = append(s.Args, &SchemaArg{
			Name:     arg.Name,
			Help:     arg.Help,
			Type:     valueType(arg),
			Required: arg.Required,
		})
	}

	for _, child := range node.Children {
		if child.Hidden && !cmd.Hidden {
			continue
		}
		s.Children = append(s.Children, cmd.build(child))
	}

	return s
}

func schemaFlag(flag *kong.Flag) *SchemaFlag {
	f := &SchemaFlag{
		Name:     flag.Name,
		Help:     flag.Help,
		Type:     valueType(flag.Value),
		Required: flag.Required,
		Default:  flag.Default,
		Env:      flag.Envs,
	}
	if flag.Short != 0 {
		f.Short = string(flag.Short)
	}
	if flag.Enum != "" {
		for _, v := range strings.Split(flag.Enum, ",") {
			if v = strings.TrimSpace(v); v != "" {
				f.Enum = append(f.Enum, v)
			}
		}
	}
	return f
}

// valueType names the Go type behind a flag or argument
func valueType(v *kong.Value) string {
	if v == nil || !v.Target.IsValid() {
		return "string"
	}
	return v.Target.Type().String()
}

// findNodeByPath walks the tree along space separated command names or aliases
func findNodeByPath(root *kong.Node, path string) (*kong.Node, error) {
	current := root
	for _, part := range strings.Fields(path) {
		next := childNamed(current, part)
		if next == nil {
			return nil, output.NewCLIError(output.ExitNotFound, fmt.Sprintf("command not found: %s", path)).
				WithHint("Run: wdc schema to list every command")
		}
		current = next
	}
	return current, nil
}

func childNamed(node *kong.Node, name string) *kong.Node {
	for _, child := range node.Children {
		if child.Name == name {
			return child
		}
		for _, alias := range child.Aliases {
			if alias == name {
				return child
			}
		}
	}
	return nil
}

func nodeTypeString(t kong.NodeType) string {
	switch t {
	case kong.ApplicationNode:
		return "application"
	case kong.CommandNode:
		return "command"
	case kong.ArgumentNode:
		return "argument"
	default:
		return "unknown"
	}
}
