package syntax

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/roach88/symm/internal/ir"
)

// ParseError reports input the front end could not turn into records.
type ParseError struct {
	Path    string
	Message string
	Pos     ir.Pos
}

func (e *ParseError) Error() string {
	loc := e.Pos.String()
	if e.Path != "" {
		loc = e.Path + ":" + loc
	}
	return fmt.Sprintf("%s: %s", loc, e.Message)
}

// WithPath returns err annotated with the file path when it is a
// *ParseError, and err unchanged otherwise.
func WithPath(err error, path string) error {
	var parseErr *ParseError
	if errors.As(err, &parseErr) && parseErr.Path == "" {
		c := *parseErr
		c.Path = path
		return &c
	}
	return err
}

func syntaxError(root *sitter.Node) *ParseError {
	missing := findFirst(root, func(n *sitter.Node) bool { return n.IsMissing() })
	errorNode := missing
	if errorNode == nil {
		errorNode = findFirst(root, func(n *sitter.Node) bool { return n.IsError() })
	}
	if errorNode == nil {
		errorNode = root
	}
	message := "syntax error"
	if missing != nil {
		message = fmt.Sprintf("syntax error: expected %s", formatExpectedKind(missing.Kind()))
	}
	return &ParseError{
		Message: message,
		Pos:     spanOf(errorNode).Start,
	}
}

// findFirst returns the matching node with the smallest start byte.
func findFirst(root *sitter.Node, match func(*sitter.Node) bool) *sitter.Node {
	var best *sitter.Node
	walkNodes(root, func(node *sitter.Node) {
		if !match(node) {
			return
		}
		if best == nil || node.StartByte() < best.StartByte() {
			best = node
		}
	})
	return best
}

func walkNodes(root *sitter.Node, visit func(node *sitter.Node)) {
	if root == nil {
		return
	}
	visit(root)
	for i := uint(0); i < root.ChildCount(); i++ {
		walkNodes(root.Child(i), visit)
	}
}

// formatExpectedKind renders grammar symbols as words and punctuation as
// quoted tokens: "type_identifier" -> type identifier, ";" -> ";".
func formatExpectedKind(kind string) string {
	if kind == "" {
		return "token"
	}
	if strings.IndexFunc(kind, unicode.IsLetter) < 0 {
		return fmt.Sprintf("%q", kind)
	}
	return strings.ReplaceAll(kind, "_", " ")
}
