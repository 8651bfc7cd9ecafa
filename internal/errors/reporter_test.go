package errors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorReporter(t *testing.T) {
	source := `module Test {
    method forward(%x: int) {
        %y = add %x %missing
        return %y
    }
}`

	reporter := NewErrorReporter("test.fst", source)

	err := UndefinedValue("%missing", Position{Line: 3, Column: 22}, []string{"%x"})
	formatted := reporter.FormatError(err)

	// Should contain error level and code
	assert.Contains(t, formatted, "error["+ErrorUndefinedValue+"]")
	assert.Contains(t, formatted, "undefined value")
	assert.Contains(t, formatted, "%missing")

	// Should contain location
	assert.Contains(t, formatted, "test.fst:3:22")

	// Should contain suggestions
	assert.Contains(t, formatted, "did you mean")
	assert.Contains(t, formatted, "%x")
}

func TestUndefinedValueError(t *testing.T) {
	pos := Position{Line: 1, Column: 5}

	// With similar names
	err := UndefinedValue("%biass", pos, []string{"%bias"})
	assert.Equal(t, ErrorUndefinedValue, err.Code)
	assert.Contains(t, err.Message, "%biass")
	assert.Len(t, err.Suggestions, 1)
	assert.Contains(t, err.Suggestions[0].Message, "did you mean '%bias'")

	// Without similar names
	err = UndefinedValue("%xyz", pos, []string{})
	assert.Len(t, err.Suggestions, 1)
	assert.Contains(t, err.Suggestions[0].Message, "make sure the value is assigned")
}

func TestUnknownAttributeError(t *testing.T) {
	pos := Position{Line: 2, Column: 9}

	err := UnknownAttribute("Linear", "weigth", pos, []string{"weight"})
	assert.Equal(t, ErrorUnknownAttribute, err.Code)
	assert.Contains(t, err.Message, "module 'Linear' has no attribute 'weigth'")
	assert.Len(t, err.Suggestions, 1)
	assert.Contains(t, err.Suggestions[0].Message, "did you mean 'weight'")
}

func TestRecursiveMethodError(t *testing.T) {
	pos := Position{Line: 4, Column: 1}

	err := RecursiveMethod([]string{"forward", "helper", "forward"}, pos)
	assert.Equal(t, ErrorRecursiveMethod, err.Code)
	assert.Contains(t, err.Message, "forward -> helper -> forward")
	assert.NotEmpty(t, err.Notes)
}

func TestArityMismatchError(t *testing.T) {
	pos := Position{Line: 1, Column: 1}

	err := ArityMismatch("unpack", 2, 3, pos)
	assert.Equal(t, ErrorArityMismatch, err.Code)
	assert.Contains(t, err.Message, "expects 2 values, got 3")
}

func TestWarningLevel(t *testing.T) {
	source := "module M {\n}"
	reporter := NewErrorReporter("warn.fst", source)

	warn := NewBuildWarning(WarningUnusedValue, "value '%t' is assigned but never used", Position{Line: 1, Column: 1}).
		WithLength(2).
		Build()
	formatted := reporter.FormatError(warn)

	assert.Contains(t, formatted, "warning["+WarningUnusedValue+"]")
	assert.True(t, IsWarning(warn.Code))
}

func TestErrorCodeHelpers(t *testing.T) {
	assert.Equal(t, "Module Building", GetErrorCategory(ErrorUnknownType))
	assert.Equal(t, "Warning", GetErrorCategory(WarningUnusedValue))
	assert.False(t, IsWarning(ErrorTypeMismatch))

	for _, code := range []string{
		ErrorUnknownType, ErrorDuplicateAttribute, ErrorDuplicateMethod,
		ErrorUndefinedValue, ErrorRedefinedValue, ErrorUnknownAttribute,
		ErrorNonModuleReceiver, ErrorUndefinedMethod, ErrorRecursiveMethod,
		ErrorTypeMismatch, ErrorInvalidOperation, ErrorArityMismatch,
		ErrorReturnPlacement, ErrorBranchMismatch, ErrorMultipleModules,
		ErrorInvalidLiteral,
	} {
		desc := GetErrorDescription(code)
		assert.NotEqual(t, "Unknown error code", desc)
		assert.False(t, strings.Contains(desc, "TODO"))
	}
}

func TestMarkerPlacement(t *testing.T) {
	source := "module M {\n    attr x: int = 1\n}"
	reporter := NewErrorReporter("m.fst", source)

	err := NewBuildError(ErrorDuplicateAttribute, "module 'M' already declares 'x'", Position{Line: 2, Column: 10}).
		WithLength(1).
		Build()
	formatted := reporter.FormatError(err)

	// The marker line sits under the source line.
	lines := strings.Split(formatted, "\n")
	var sourceLine, markerLine string
	for i, line := range lines {
		if strings.Contains(line, "attr x: int") && i+1 < len(lines) {
			sourceLine = line
			markerLine = lines[i+1]
		}
	}
	assert.NotEmpty(t, sourceLine)
	assert.Contains(t, markerLine, "^")
}
