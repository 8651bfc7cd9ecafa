package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// File is the root of a parsed .fst source. Comments and whitespace are
// elided by the parser. The grammar admits any number of top-level
// modules so that "one root module per file" can be reported as a build
// diagnostic rather than a parse failure.
type File struct {
	Modules []*ModuleDecl `parser:"@@*"`
}

type PosIdent struct {
	Pos   lexer.Position
	Value string `parser:"@Ident"`
}

type ModuleDecl struct {
	Pos   lexer.Position
	Name  PosIdent `parser:"\"module\" @@ \"{\""`
	Decls []*Decl  `parser:"@@* \"}\""`
}

type Decl struct {
	Attr   *AttrDecl   `parser:"  @@"`
	Module *ModuleDecl `parser:"| @@"`
	Method *MethodDecl `parser:"| @@"`
}

type AttrDecl struct {
	Pos   lexer.Position
	Name  PosIdent `parser:"\"attr\" @@ \":\""`
	Type  PosIdent `parser:"@@ \"=\""`
	Value *Literal `parser:"@@"`
}

type MethodDecl struct {
	Pos    lexer.Position
	Name   PosIdent `parser:"\"method\" @@ \"(\""`
	Params []*Param `parser:"[ @@ { \",\" @@ } ] \")\""`
	Body   []*Stmt  `parser:"\"{\" @@* \"}\""`
}

type Param struct {
	Pos  lexer.Position
	Name string   `parser:"@Value \":\""`
	Type PosIdent `parser:"@@"`
}

type Stmt struct {
	Return  *ReturnStmt  `parser:"  @@"`
	Yield   *YieldStmt   `parser:"| @@"`
	SetAttr *SetAttrStmt `parser:"| @@"`
	If      *IfInstr     `parser:"| @@"`
	Assign  *AssignStmt  `parser:"| @@"`
}

type ReturnStmt struct {
	Pos    lexer.Position
	Values []string `parser:"\"return\" [ @Value { \",\" @Value } ]"`
}

type YieldStmt struct {
	Pos    lexer.Position
	Values []string `parser:"\"yield\" [ @Value { \",\" @Value } ]"`
}

type SetAttrStmt struct {
	Pos  lexer.Position
	Recv string `parser:"\"setattr\" @Value"`
	Attr string `parser:"@String"`
	Val  string `parser:"@Value"`
}

type AssignStmt struct {
	Pos     lexer.Position
	Targets []string `parser:"@Value { \",\" @Value } \"=\""`
	Instr   *Instr   `parser:"@@"`
}

type Instr struct {
	Pos     lexer.Position
	Const   *ConstInstr   `parser:"  @@"`
	GetAttr *GetAttrInstr `parser:"| @@"`
	Tuple   *TupleInstr   `parser:"| @@"`
	Unpack  *UnpackInstr  `parser:"| @@"`
	Call    *CallInstr    `parser:"| @@"`
	If      *IfInstr      `parser:"| @@"`
	Binary  *BinaryInstr  `parser:"| @@"`
}

type ConstInstr struct {
	Value *Literal `parser:"\"const\" @@"`
}

type GetAttrInstr struct {
	Recv string `parser:"\"getattr\" @Value"`
	Attr string `parser:"@String"`
}

type TupleInstr struct {
	Elems []string `parser:"\"tuple\" @Value { \",\" @Value }"`
}

type UnpackInstr struct {
	Tuple string `parser:"\"unpack\" @Value"`
}

type CallInstr struct {
	Recv   string   `parser:"\"call\" @Value"`
	Method string   `parser:"@String"`
	Args   []string `parser:"\"(\" [ @Value { \",\" @Value } ] \")\""`
}

type IfInstr struct {
	Pos  lexer.Position
	Cond string  `parser:"\"if\" @Value \"{\""`
	Then []*Stmt `parser:"@@* \"}\""`
	Else []*Stmt `parser:"[ \"else\" \"{\" @@* \"}\" ]"`
}

type BinaryInstr struct {
	Pos lexer.Position
	Op  string `parser:"@(\"add\" | \"sub\" | \"mul\" | \"div\" | \"eq\" | \"ne\" | \"lt\" | \"le\" | \"gt\" | \"ge\")"`
	LHS string `parser:"@Value"`
	RHS string `parser:"@Value"`
}

type Literal struct {
	Pos    lexer.Position
	Tensor *TensorLit `parser:"  @@"`
	Float  *float64   `parser:"| @Float"`
	Int    *int64     `parser:"| @Int"`
	Str    *string    `parser:"| @String"`
	True   bool       `parser:"| @\"true\""`
	False  bool       `parser:"| @\"false\""`
	None   bool       `parser:"| @\"none\""`
}

type TensorLit struct {
	Pos   lexer.Position
	Elems []float64 `parser:"\"tensor\" \"(\" \"[\" [ @(Float | Int) { \",\" @(Float | Int) } ] \"]\""`
	Grad  *string   `parser:"[ \",\" \"grad\" \"=\" @(\"true\" | \"false\") ] \")\""`
}
