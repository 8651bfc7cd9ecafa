package errors

// Error codes for the frost compiler
// These codes are used in error messages and documentation
// to provide consistent error identification across the toolchain.
//
// Error code ranges:
// E0001-E0099: Module building errors
// E0100-E0199: Parser errors
// E0200-E0299: Reserved for future use
// E0800-E0899: Reserved for future use
// E0900-E0999: Reserved for tooling errors

const (
	// Currently used module building errors (E0001-E0016)

	// E0001: Type name resolution errors
	ErrorUnknownType = "E0001"

	// E0002: Duplicate attribute or submodule declarations
	ErrorDuplicateAttribute = "E0002"

	// E0003: Duplicate method declarations
	ErrorDuplicateMethod = "E0003"

	// E0004: Value resolution errors
	ErrorUndefinedValue = "E0004"

	// E0005: Value reassignment errors
	ErrorRedefinedValue = "E0005"

	// E0006: Attribute resolution errors
	ErrorUnknownAttribute = "E0006"

	// E0007: Non-module receiver errors
	ErrorNonModuleReceiver = "E0007"

	// E0008: Method resolution errors
	ErrorUndefinedMethod = "E0008"

	// E0009: Recursive method call errors
	ErrorRecursiveMethod = "E0009"

	// E0010: Type compatibility errors
	ErrorTypeMismatch = "E0010"

	// E0011: Unsupported operation errors
	ErrorInvalidOperation = "E0011"

	// E0012: Argument and result arity errors
	ErrorArityMismatch = "E0012"

	// E0013: Return statement placement errors
	ErrorReturnPlacement = "E0013"

	// E0014: Branch yield disagreement errors
	ErrorBranchMismatch = "E0014"

	// E0015: Root module count errors
	ErrorMultipleModules = "E0015"

	// E0016: Attribute literal errors
	ErrorInvalidLiteral = "E0016"

	// Parser errors (reserved range: E0100-E0199)
	// E0100-E0105 available for immediate use when needed

	// Warning codes

	// W0001: Unused value warning
	WarningUnusedValue = "W0001"
)

// GetErrorDescription returns a human-readable description of the error code
func GetErrorDescription(code string) string {
	switch code {
	case ErrorUnknownType:
		return "Type name is not a known attribute or parameter type"
	case ErrorDuplicateAttribute:
		return "Attribute or submodule name is declared more than once"
	case ErrorDuplicateMethod:
		return "Method name is declared more than once"
	case ErrorUndefinedValue:
		return "Value is used but never assigned in the current method"
	case ErrorRedefinedValue:
		return "Value name is assigned more than once"
	case ErrorUnknownAttribute:
		return "Attribute does not exist on the receiver module"
	case ErrorNonModuleReceiver:
		return "Receiver of an attribute access or call is not a module"
	case ErrorUndefinedMethod:
		return "Method does not exist on the receiver module"
	case ErrorRecursiveMethod:
		return "Method calls form a cycle"
	case ErrorTypeMismatch:
		return "Expression type does not match expected type"
	case ErrorInvalidOperation:
		return "Operation not supported for these operand types"
	case ErrorArityMismatch:
		return "Number of values does not match what the instruction produces"
	case ErrorReturnPlacement:
		return "Return must be the final statement of a method body"
	case ErrorBranchMismatch:
		return "Branches of an if yield different numbers of values"
	case ErrorMultipleModules:
		return "A source file must declare exactly one root module"
	case ErrorInvalidLiteral:
		return "Literal does not match the declared attribute type"
	case WarningUnusedValue:
		return "Value is assigned but never used"
	default:
		return "Unknown error code"
	}
}

// IsWarning returns true if the error code represents a warning rather than an error
func IsWarning(code string) bool {
	return len(code) > 0 && code[0] == 'W'
}

// GetErrorCategory returns the category of the error based on its code
func GetErrorCategory(code string) string {
	switch {
	case code >= "E0001" && code < "E0100":
		return "Module Building"
	case code >= "E0100" && code < "E0200":
		return "Parser"
	case len(code) > 0 && code[0] == 'W':
		return "Warning"
	default:
		return "Unknown"
	}
}
