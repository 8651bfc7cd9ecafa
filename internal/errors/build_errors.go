package errors

import (
	"fmt"
	"strings"
)

// BuildErrorBuilder provides a fluent interface for creating build
// diagnostics with suggestions
type BuildErrorBuilder struct {
	err CompilerError
}

// NewBuildError creates a new build error builder
func NewBuildError(code, message string, pos Position) *BuildErrorBuilder {
	return &BuildErrorBuilder{
		err: CompilerError{
			Level:    Error,
			Code:     code,
			Message:  message,
			Position: pos,
			Length:   1,
		},
	}
}

// NewBuildWarning creates a new build warning builder
func NewBuildWarning(code, message string, pos Position) *BuildErrorBuilder {
	return &BuildErrorBuilder{
		err: CompilerError{
			Level:    Warning,
			Code:     code,
			Message:  message,
			Position: pos,
			Length:   1,
		},
	}
}

// WithLength sets the length of the error span
func (b *BuildErrorBuilder) WithLength(length int) *BuildErrorBuilder {
	b.err.Length = length
	return b
}

// WithSuggestion adds a suggestion to the error
func (b *BuildErrorBuilder) WithSuggestion(message string) *BuildErrorBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{Message: message})
	return b
}

// WithNote adds a note to the error
func (b *BuildErrorBuilder) WithNote(note string) *BuildErrorBuilder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

// WithHelp adds help text to the error
func (b *BuildErrorBuilder) WithHelp(help string) *BuildErrorBuilder {
	b.err.HelpText = help
	return b
}

// Build returns the completed compiler error
func (b *BuildErrorBuilder) Build() CompilerError {
	return b.err
}

// Common build error constructors

// UnknownType reports a type annotation that names no known type.
func UnknownType(name string, pos Position) CompilerError {
	return NewBuildError(ErrorUnknownType, fmt.Sprintf("unknown type '%s'", name), pos).
		WithLength(len(name)).
		WithHelp("valid types are int, float, bool, string, tensor and none").
		Build()
}

// DuplicateAttribute reports an attribute or submodule name declared twice.
func DuplicateAttribute(moduleName, name string, pos Position) CompilerError {
	return NewBuildError(ErrorDuplicateAttribute,
		fmt.Sprintf("module '%s' already declares '%s'", moduleName, name), pos).
		WithLength(len(name)).
		WithNote("attributes and submodules share one namespace").
		Build()
}

// DuplicateMethod reports a method name declared twice on one module.
func DuplicateMethod(moduleName, name string, pos Position) CompilerError {
	return NewBuildError(ErrorDuplicateMethod,
		fmt.Sprintf("module '%s' already defines method '%s'", moduleName, name), pos).
		WithLength(len(name)).
		Build()
}

// UndefinedValue reports a use of a value that was never assigned, with
// suggestions drawn from names in scope.
func UndefinedValue(name string, pos Position, similarNames []string) CompilerError {
	builder := NewBuildError(ErrorUndefinedValue, fmt.Sprintf("undefined value '%s'", name), pos).
		WithLength(len(name))

	if len(similarNames) > 0 {
		if len(similarNames) == 1 {
			builder = builder.WithSuggestion(fmt.Sprintf("did you mean '%s'?", similarNames[0]))
		} else {
			builder = builder.WithSuggestion(fmt.Sprintf("did you mean one of: '%s'?", strings.Join(similarNames, "', '")))
		}
	} else {
		builder = builder.WithSuggestion("make sure the value is assigned before use").
			WithNote("values are in scope from their assignment to the end of the method")
	}

	return builder.Build()
}

// RedefinedValue reports a value name assigned more than once.
func RedefinedValue(name string, pos Position) CompilerError {
	return NewBuildError(ErrorRedefinedValue, fmt.Sprintf("value '%s' is assigned more than once", name), pos).
		WithLength(len(name)).
		WithNote("every value is assigned exactly once").
		Build()
}

// UnknownAttribute reports an attribute access that names nothing on the
// receiver's module type.
func UnknownAttribute(moduleName, name string, pos Position, similarNames []string) CompilerError {
	builder := NewBuildError(ErrorUnknownAttribute,
		fmt.Sprintf("module '%s' has no attribute '%s'", moduleName, name), pos).
		WithLength(len(name) + 2)

	if len(similarNames) > 0 {
		if len(similarNames) == 1 {
			builder = builder.WithSuggestion(fmt.Sprintf("did you mean '%s'?", similarNames[0]))
		} else {
			builder = builder.WithSuggestion(fmt.Sprintf("did you mean one of: '%s'?", strings.Join(similarNames, "', '")))
		}
	}

	return builder.Build()
}

// NonModuleReceiver reports an attribute access or call on a value that
// is not a module.
func NonModuleReceiver(name, typeName string, pos Position) CompilerError {
	return NewBuildError(ErrorNonModuleReceiver,
		fmt.Sprintf("receiver '%s' has type %s, not a module", name, typeName), pos).
		WithLength(len(name)).
		Build()
}

// UndefinedMethod reports a call to a method the receiver does not define.
func UndefinedMethod(moduleName, name string, pos Position) CompilerError {
	return NewBuildError(ErrorUndefinedMethod,
		fmt.Sprintf("module '%s' has no method '%s'", moduleName, name), pos).
		WithLength(len(name) + 2).
		Build()
}

// RecursiveMethod reports a method call cycle.
func RecursiveMethod(cycle []string, pos Position) CompilerError {
	return NewBuildError(ErrorRecursiveMethod,
		fmt.Sprintf("method calls form a cycle: %s", strings.Join(cycle, " -> ")), pos).
		WithNote("method graphs must be expandable inline, so calls cannot recurse").
		Build()
}

// TypeMismatch reports an expression whose type differs from what its
// context requires.
func TypeMismatch(expected, actual string, pos Position) CompilerError {
	return NewBuildError(ErrorTypeMismatch,
		fmt.Sprintf("type mismatch: expected %s, found %s", expected, actual), pos).
		Build()
}

// InvalidOperation reports an operation unsupported for its operand types.
func InvalidOperation(op, typeName string, pos Position) CompilerError {
	return NewBuildError(ErrorInvalidOperation,
		fmt.Sprintf("operation '%s' is not supported for %s operands", op, typeName), pos).
		WithLength(len(op)).
		Build()
}

// ArityMismatch reports a count disagreement between assigned names and
// produced values, or between declared and passed arguments.
func ArityMismatch(what string, want, got int, pos Position) CompilerError {
	return NewBuildError(ErrorArityMismatch,
		fmt.Sprintf("%s expects %d values, got %d", what, want, got), pos).
		Build()
}

// ReturnPlacement reports a return that is missing or not the final
// statement.
func ReturnPlacement(message string, pos Position) CompilerError {
	return NewBuildError(ErrorReturnPlacement, message, pos).
		WithHelp("end every method body with a single return statement").
		Build()
}

// BranchMismatch reports if branches that yield different value counts.
func BranchMismatch(thenCount, elseCount int, pos Position) CompilerError {
	return NewBuildError(ErrorBranchMismatch,
		fmt.Sprintf("branches yield different value counts: %d and %d", thenCount, elseCount), pos).
		Build()
}

// MultipleModules reports a file with more than one top-level module.
func MultipleModules(name string, pos Position) CompilerError {
	return NewBuildError(ErrorMultipleModules,
		fmt.Sprintf("unexpected second root module '%s'", name), pos).
		WithLength(len(name)).
		WithHelp("declare nested modules inside the root module instead").
		Build()
}

// InvalidLiteral reports an attribute initializer that does not match
// the declared type.
func InvalidLiteral(typeName string, pos Position) CompilerError {
	return NewBuildError(ErrorInvalidLiteral,
		fmt.Sprintf("literal does not match declared type %s", typeName), pos).
		Build()
}

// UnusedValue warns about a value that is assigned but never consumed.
func UnusedValue(name string, pos Position) CompilerError {
	return NewBuildWarning(WarningUnusedValue,
		fmt.Sprintf("value '%s' is assigned but never used", name), pos).
		WithLength(len(name)).
		Build()
}
