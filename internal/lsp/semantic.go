package lsp

import (
	"github.com/alecthomas/participle/v2/lexer"

	"frost/grammar"
)

// SemanticToken is a single token entry before wire encoding. Line and
// StartChar are 0-based; TokenType indexes SemanticTokenTypes and
// TokenModifiers is a bitmask over SemanticTokenModifiers.
type SemanticToken struct {
	Line           uint32
	StartChar      uint32
	Length         uint32
	TokenType      int
	TokenModifiers int
}

// collectSemanticTokens walks a parsed file in source order, emitting
// tokens for everything the grammar carries an exact position and
// length for: declaration keywords and names, parameter lists,
// statement keywords and the first assignment target. Operand
// references inside instructions carry no positions of their own and
// are left to the client's fallback highlighting.
func collectSemanticTokens(file *grammar.File) []SemanticToken {
	var tokens []SemanticToken
	for _, m := range file.Modules {
		tokens = append(tokens, walkModule(m)...)
	}
	return tokens
}

func walkModule(m *grammar.ModuleDecl) []SemanticToken {
	tokens := []SemanticToken{
		makeToken(m.Pos, len("module"), "keyword", false),
		makeToken(m.Name.Pos, len(m.Name.Value), "type", true),
	}
	for _, d := range m.Decls {
		switch {
		case d.Attr != nil:
			tokens = append(tokens, walkAttr(d.Attr)...)
		case d.Module != nil:
			tokens = append(tokens, walkModule(d.Module)...)
		case d.Method != nil:
			tokens = append(tokens, walkMethod(d.Method)...)
		}
	}
	return tokens
}

func walkAttr(a *grammar.AttrDecl) []SemanticToken {
	return []SemanticToken{
		makeToken(a.Pos, len("attr"), "keyword", false),
		makeToken(a.Name.Pos, len(a.Name.Value), "property", true),
		makeToken(a.Type.Pos, len(a.Type.Value), "type", false),
	}
}

func walkMethod(m *grammar.MethodDecl) []SemanticToken {
	tokens := []SemanticToken{
		makeToken(m.Pos, len("method"), "keyword", false),
		makeToken(m.Name.Pos, len(m.Name.Value), "function", true),
	}
	for _, p := range m.Params {
		tokens = append(tokens,
			makeToken(p.Pos, len(p.Name), "parameter", true),
			makeToken(p.Type.Pos, len(p.Type.Value), "type", false),
		)
	}
	for _, s := range m.Body {
		tokens = append(tokens, walkStmt(s)...)
	}
	return tokens
}

func walkStmt(s *grammar.Stmt) []SemanticToken {
	switch {
	case s.Return != nil:
		return []SemanticToken{makeToken(s.Return.Pos, len("return"), "keyword", false)}
	case s.Yield != nil:
		return []SemanticToken{makeToken(s.Yield.Pos, len("yield"), "keyword", false)}
	case s.SetAttr != nil:
		return []SemanticToken{makeToken(s.SetAttr.Pos, len("setattr"), "keyword", false)}
	case s.If != nil:
		return walkIf(s.If)
	case s.Assign != nil:
		return walkAssign(s.Assign)
	}
	return nil
}

func walkAssign(a *grammar.AssignStmt) []SemanticToken {
	var tokens []SemanticToken
	if len(a.Targets) > 0 {
		tokens = append(tokens, makeToken(a.Pos, len(a.Targets[0]), "variable", true))
	}
	tokens = append(tokens, walkInstr(a.Instr)...)
	return tokens
}

func walkInstr(in *grammar.Instr) []SemanticToken {
	switch {
	case in.Const != nil:
		return []SemanticToken{makeToken(in.Pos, len("const"), "keyword", false)}
	case in.GetAttr != nil:
		return []SemanticToken{makeToken(in.Pos, len("getattr"), "keyword", false)}
	case in.Tuple != nil:
		return []SemanticToken{makeToken(in.Pos, len("tuple"), "keyword", false)}
	case in.Unpack != nil:
		return []SemanticToken{makeToken(in.Pos, len("unpack"), "keyword", false)}
	case in.Call != nil:
		return []SemanticToken{makeToken(in.Pos, len("call"), "keyword", false)}
	case in.If != nil:
		return walkIf(in.If)
	case in.Binary != nil:
		return []SemanticToken{makeToken(in.Pos, len(in.Binary.Op), "operator", false)}
	}
	return nil
}

func walkIf(in *grammar.IfInstr) []SemanticToken {
	tokens := []SemanticToken{makeToken(in.Pos, len("if"), "keyword", false)}
	for _, s := range in.Then {
		tokens = append(tokens, walkStmt(s)...)
	}
	for _, s := range in.Else {
		tokens = append(tokens, walkStmt(s)...)
	}
	return tokens
}

// makeToken builds one entry at a lexer position, translating to the
// 0-based LSP coordinates.
func makeToken(pos lexer.Position, length int, tokenType string, declaration bool) SemanticToken {
	modifiers := 0
	if declaration {
		modifiers = 1 << indexOf("declaration", SemanticTokenModifiers)
	}
	return SemanticToken{
		Line:           uint32(pos.Line - 1),
		StartChar:      uint32(pos.Column - 1),
		Length:         uint32(length),
		TokenType:      indexOf(tokenType, SemanticTokenTypes),
		TokenModifiers: modifiers,
	}
}

// indexOf returns the index of target in list, 0 when absent.
func indexOf(target string, list []string) int {
	for i, v := range list {
		if v == target {
			return i
		}
	}
	return 0
}
