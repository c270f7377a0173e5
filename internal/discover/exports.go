package discover

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Export is a named preview exported by a source file. Lines are 1-indexed
// and cover the whole export statement.
type Export struct {
	Name    string `json:"name"`
	Line    int    `json:"line"`
	EndLine int    `json:"end_line"`
}

var extensionToLanguage = map[string]string{
	".js":  "javascript",
	".jsx": "javascript",
	".mjs": "javascript",
	".cjs": "javascript",
	".ts":  "typescript",
	".mts": "typescript",
	".cts": "typescript",
	".tsx": "tsx",
	".go":  "go",
}

// DetectLanguage returns the grammar name for filename, or "" when previews
// in that language are not supported.
func DetectLanguage(filename string) string {
	return extensionToLanguage[strings.ToLower(filepath.Ext(filename))]
}

// SupportedLanguages returns the grammars export discovery understands.
func SupportedLanguages() []string {
	return []string{"javascript", "typescript", "tsx", "go"}
}

func getLanguage(lang string) (*sitter.Language, error) {
	switch lang {
	case "javascript":
		return javascript.GetLanguage(), nil
	case "typescript":
		return typescript.GetLanguage(), nil
	case "tsx":
		return tsx.GetLanguage(), nil
	case "go":
		return golang.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// ExtractExports parses source and returns its preview exports in source
// order. Each name is reported once.
//
// JavaScript and TypeScript previews are named function, generator and
// variable exports. Default exports and export clauses are not previews.
// Go previews are exported top-level functions.
func ExtractExports(ctx context.Context, source []byte, lang string) ([]Export, error) {
	tsLang, err := getLanguage(lang)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(tsLang)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	exports := []Export{}
	seen := make(map[string]bool)

	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)

		var names []string
		if lang == "go" {
			names = goExportNames(node, source)
		} else {
			names = jsExportNames(node, source)
		}

		for _, name := range names {
			if seen[name] {
				continue
			}
			seen[name] = true
			exports = append(exports, Export{
				Name:    name,
				Line:    int(node.StartPoint().Row) + 1,
				EndLine: int(node.EndPoint().Row) + 1,
			})
		}
	}

	return exports, nil
}

func jsExportNames(node *sitter.Node, source []byte) []string {
	if node.Type() != "export_statement" {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "default" {
			return nil
		}
	}

	decl := node.ChildByFieldName("declaration")
	if decl == nil {
		return nil
	}

	switch decl.Type() {
	case "function_declaration", "generator_function_declaration":
		if name := decl.ChildByFieldName("name"); name != nil {
			return []string{name.Content(source)}
		}
	case "lexical_declaration", "variable_declaration":
		var names []string
		for i := 0; i < int(decl.NamedChildCount()); i++ {
			declarator := decl.NamedChild(i)
			if declarator.Type() != "variable_declarator" {
				continue
			}
			// destructuring patterns have no single name
			name := declarator.ChildByFieldName("name")
			if name != nil && name.Type() == "identifier" {
				names = append(names, name.Content(source))
			}
		}
		return names
	}
	return nil
}

func goExportNames(node *sitter.Node, source []byte) []string {
	if node.Type() != "function_declaration" {
		return nil
	}
	name := node.ChildByFieldName("name")
	if name == nil {
		return nil
	}
	ident := name.Content(source)
	if r, _ := utf8.DecodeRuneInString(ident); !unicode.IsUpper(r) {
		return nil
	}
	return []string{ident}
}
