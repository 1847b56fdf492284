package syntax

// Tree-sitter node types used while walking component scripts.
//
// The javascript, typescript and tsx grammars share these names. TypeScript
// only nodes are grouped at the end.
const (
	KindProgram             = "program"
	KindComment             = "comment"
	KindError               = "ERROR"
	KindExpressionStatement = "expression_statement"
	KindStatementBlock      = "statement_block"
	KindReturnStatement     = "return_statement"

	// Declarations
	KindLexicalDeclaration   = "lexical_declaration"
	KindVariableDeclaration  = "variable_declaration"
	KindVariableDeclarator   = "variable_declarator"
	KindFunctionDeclaration  = "function_declaration"
	KindGeneratorDeclaration = "generator_function_declaration"
	KindClassDeclaration     = "class_declaration"

	// Modules
	KindImportStatement = "import_statement"
	KindImportClause    = "import_clause"
	KindNamespaceImport = "namespace_import"
	KindNamedImports    = "named_imports"
	KindImportSpecifier = "import_specifier"
	KindExportStatement = "export_statement"
	KindExportClause    = "export_clause"
	KindExportSpecifier = "export_specifier"

	// Literals
	KindNumber          = "number"
	KindString          = "string"
	KindStringFragment  = "string_fragment"
	KindEscapeSequence  = "escape_sequence"
	KindTemplateString  = "template_string"
	KindTemplateSubst   = "template_substitution"
	KindTrue            = "true"
	KindFalse           = "false"
	KindNull            = "null"
	KindUndefined       = "undefined"
	KindRegex           = "regex"
	KindArray           = "array"
	KindObject          = "object"
	KindPair            = "pair"
	KindShorthandProp   = "shorthand_property_identifier"
	KindSpreadElement   = "spread_element"
	KindComputedPropKey = "computed_property_name"
	KindPropertyIdent   = "property_identifier"
	KindPrivateIdent    = "private_property_identifier"

	// Expressions
	KindIdentifier         = "identifier"
	KindThis               = "this"
	KindMemberExpression   = "member_expression"
	KindSubscriptExpr      = "subscript_expression"
	KindCallExpression     = "call_expression"
	KindNewExpression      = "new_expression"
	KindArguments          = "arguments"
	KindBinaryExpression   = "binary_expression"
	KindUnaryExpression    = "unary_expression"
	KindUpdateExpression   = "update_expression"
	KindAssignment         = "assignment_expression"
	KindAugmentedAssign    = "augmented_assignment_expression"
	KindTernaryExpression  = "ternary_expression"
	KindParenthesized      = "parenthesized_expression"
	KindAwaitExpression    = "await_expression"
	KindSequenceExpression = "sequence_expression"
	KindArrowFunction      = "arrow_function"
	KindFunction           = "function"
	KindFunctionExpression = "function_expression"
	KindGeneratorFunction  = "generator_function"
	KindMethodDefinition   = "method_definition"
	KindClass              = "class"
	KindClassBody          = "class_body"

	// Patterns
	KindObjectPattern        = "object_pattern"
	KindArrayPattern         = "array_pattern"
	KindPairPattern          = "pair_pattern"
	KindShorthandPattern     = "shorthand_property_identifier_pattern"
	KindObjectAssignPattern  = "object_assignment_pattern"
	KindAssignmentPattern    = "assignment_pattern"
	KindRestPattern          = "rest_pattern"
	KindFormalParameters     = "formal_parameters"
	KindRequiredParameter    = "required_parameter"
	KindOptionalParameter    = "optional_parameter"
	KindAsync                = "async"
	KindGeneratorStar        = "*"
	KindOptionalMarker       = "?"
	KindTypeKeyword          = "type"
	KindDefaultKeyword       = "default"
	KindAmbientDeclaration   = "ambient_declaration"
	KindFunctionSignature    = "function_signature"
	KindTypeAliasDeclaration = "type_alias_declaration"
	KindInterfaceDeclaration = "interface_declaration"
	KindEnumDeclaration      = "enum_declaration"
	KindExtendsTypeClause    = "extends_type_clause"

	// TypeScript types
	KindTypeAnnotation    = "type_annotation"
	KindTypeArguments     = "type_arguments"
	KindPredefinedType    = "predefined_type"
	KindTypeIdentifier    = "type_identifier"
	KindNestedTypeIdent   = "nested_type_identifier"
	KindGenericType       = "generic_type"
	KindUnionType         = "union_type"
	KindIntersectionType  = "intersection_type"
	KindLiteralType       = "literal_type"
	KindParenthesizedType = "parenthesized_type"
	KindObjectType        = "object_type"
	KindInterfaceBody     = "interface_body"
	KindPropertySignature = "property_signature"
	KindMethodSignature   = "method_signature"
	KindCallSignature     = "call_signature"
	KindAsExpression      = "as_expression"
	KindSatisfiesExpr     = "satisfies_expression"
	KindNonNullExpression = "non_null_expression"
	KindThisType          = "this_type"
)

// IsFunction reports whether kind is a function-like node.
func IsFunction(kind string) bool {
	switch kind {
	case KindArrowFunction, KindFunction, KindFunctionExpression, KindGeneratorFunction,
		KindFunctionDeclaration, KindGeneratorDeclaration, KindMethodDefinition:
		return true
	}
	return false
}

// IsPattern reports whether kind is a destructuring pattern.
func IsPattern(kind string) bool {
	switch kind {
	case KindObjectPattern, KindArrayPattern:
		return true
	}
	return false
}
