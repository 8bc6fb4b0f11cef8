package ast

import "klox/interpreter-go/pkg/types"

type NodeType string

const (
	NodeLiteral         NodeType = "Literal"
	NodeVariable        NodeType = "Variable"
	NodeAssign          NodeType = "Assign"
	NodeUnary           NodeType = "Unary"
	NodeBinary          NodeType = "Binary"
	NodeLogical         NodeType = "Logical"
	NodeTernary         NodeType = "Ternary"
	NodeGrouping        NodeType = "Grouping"
	NodeCall            NodeType = "Call"
	NodeEmptyExpression NodeType = "EmptyExpression"

	NodeExpressionStatement NodeType = "ExpressionStatement"
	NodeBlock               NodeType = "Block"
	NodeIf                  NodeType = "If"
	NodeWhile               NodeType = "While"
	NodeBreak               NodeType = "Break"
	NodeContinue            NodeType = "Continue"
	NodeVar                 NodeType = "Var"
	NodeConst               NodeType = "Const"
	NodeFunction            NodeType = "Function"
	NodeReturn              NodeType = "Return"
	NodeDebug               NodeType = "Debug"
	NodeEmptyStatement      NodeType = "EmptyStatement"
)

// NoSlot marks a declaration the resolver has not visited yet.
const NoSlot = -1

type Node interface {
	NodeType() NodeType
	Line() int
	isNode()
}

type nodeImpl struct {
	Kind NodeType `json:"type"`
	Pos  int      `json:"line"`
}

func newNodeImpl(kind NodeType, line int) nodeImpl {
	return nodeImpl{Kind: kind, Pos: line}
}

func (n nodeImpl) NodeType() NodeType { return n.Kind }
func (n nodeImpl) Line() int          { return n.Pos }
func (nodeImpl) isNode()              {}

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
	Type() types.Type
	SetType(types.Type)
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

// typed holds the type stamped by the checker; nil until it runs.
type typed struct {
	Inferred types.Type `json:"inferred,omitempty"`
}

func (t *typed) Type() types.Type     { return t.Inferred }
func (t *typed) SetType(v types.Type) { t.Inferred = v }

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// Address is a lexical address: how many environments to walk up, and the
// slot to read there.
type Address struct {
	Distance int `json:"distance"`
	Slot     int `json:"slot"`
}

//-----------------------------------------------------------------------------
// Expressions
//-----------------------------------------------------------------------------

// Literal holds a float64, string, bool or nil.
type Literal struct {
	nodeImpl
	expressionMarker
	typed

	Value any `json:"value"`
}

func NewLiteral(value any, line int) *Literal {
	return &Literal{nodeImpl: newNodeImpl(NodeLiteral, line), Value: value}
}

type Variable struct {
	nodeImpl
	expressionMarker
	typed

	Name    string   `json:"name"`
	Address *Address `json:"address,omitempty"`
}

func NewVariable(name string, line int) *Variable {
	return &Variable{nodeImpl: newNodeImpl(NodeVariable, line), Name: name}
}

type Assign struct {
	nodeImpl
	expressionMarker
	typed

	Name    string     `json:"name"`
	Value   Expression `json:"value"`
	Address *Address   `json:"address,omitempty"`
}

func NewAssign(name string, value Expression, line int) *Assign {
	return &Assign{nodeImpl: newNodeImpl(NodeAssign, line), Name: name, Value: value}
}

type Unary struct {
	nodeImpl
	expressionMarker
	typed

	Operator string     `json:"operator"`
	Operand  Expression `json:"operand"`
}

func NewUnary(op string, operand Expression, line int) *Unary {
	return &Unary{nodeImpl: newNodeImpl(NodeUnary, line), Operator: op, Operand: operand}
}

type Binary struct {
	nodeImpl
	expressionMarker
	typed

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinary(op string, left, right Expression, line int) *Binary {
	return &Binary{nodeImpl: newNodeImpl(NodeBinary, line), Operator: op, Left: left, Right: right}
}

// Logical covers the short-circuit operators &&, || and ??.
type Logical struct {
	nodeImpl
	expressionMarker
	typed

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewLogical(op string, left, right Expression, line int) *Logical {
	return &Logical{nodeImpl: newNodeImpl(NodeLogical, line), Operator: op, Left: left, Right: right}
}

// Ternary is either `left ? middle : right` or `left between middle and right`.
type Ternary struct {
	nodeImpl
	expressionMarker
	typed

	FirstOperator  string     `json:"firstOperator"`
	SecondOperator string     `json:"secondOperator"`
	Left           Expression `json:"left"`
	Middle         Expression `json:"middle"`
	Right          Expression `json:"right"`
}

func NewConditional(cond, then, otherwise Expression, line int) *Ternary {
	return &Ternary{
		nodeImpl:       newNodeImpl(NodeTernary, line),
		FirstOperator:  "?",
		SecondOperator: ":",
		Left:           cond,
		Middle:         then,
		Right:          otherwise,
	}
}

func NewBetween(value, lower, upper Expression, line int) *Ternary {
	return &Ternary{
		nodeImpl:       newNodeImpl(NodeTernary, line),
		FirstOperator:  "between",
		SecondOperator: "and",
		Left:           value,
		Middle:         lower,
		Right:          upper,
	}
}

// IsBetween reports whether the node is a range test rather than a conditional.
func (t *Ternary) IsBetween() bool { return t.FirstOperator == "between" }

type Grouping struct {
	nodeImpl
	expressionMarker
	typed

	Inner Expression `json:"inner"`
}

func NewGrouping(inner Expression, line int) *Grouping {
	return &Grouping{nodeImpl: newNodeImpl(NodeGrouping, line), Inner: inner}
}

type Call struct {
	nodeImpl
	expressionMarker
	typed

	Callee    Expression   `json:"callee"`
	Arguments []Expression `json:"arguments"`
}

func NewCall(callee Expression, args []Expression, line int) *Call {
	return &Call{nodeImpl: newNodeImpl(NodeCall, line), Callee: callee, Arguments: args}
}

// EmptyExpression stands in for an expression that failed to parse or resolve.
type EmptyExpression struct {
	nodeImpl
	expressionMarker
	typed
}

func NewEmptyExpression(line int) *EmptyExpression {
	return &EmptyExpression{nodeImpl: newNodeImpl(NodeEmptyExpression, line)}
}

//-----------------------------------------------------------------------------
// Statements
//-----------------------------------------------------------------------------

type ExpressionStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
}

func NewExpressionStatement(expr Expression, line int) *ExpressionStatement {
	return &ExpressionStatement{nodeImpl: newNodeImpl(NodeExpressionStatement, line), Expression: expr}
}

type Block struct {
	nodeImpl
	statementMarker

	Statements []Statement `json:"statements"`
}

func NewBlock(stmts []Statement, line int) *Block {
	return &Block{nodeImpl: newNodeImpl(NodeBlock, line), Statements: stmts}
}

type If struct {
	nodeImpl
	statementMarker

	Condition Expression `json:"condition"`
	Then      Statement  `json:"then"`
	Else      Statement  `json:"else,omitempty"`
}

func NewIf(cond Expression, then, otherwise Statement, line int) *If {
	return &If{nodeImpl: newNodeImpl(NodeIf, line), Condition: cond, Then: then, Else: otherwise}
}

// While is also the desugared form of `for` and `loop`. Increment, when
// present, runs after every iteration including ones ended by continue.
type While struct {
	nodeImpl
	statementMarker

	Condition Expression `json:"condition"`
	Body      Statement  `json:"body"`
	Increment Expression `json:"increment,omitempty"`
}

func NewWhile(cond Expression, body Statement, increment Expression, line int) *While {
	return &While{nodeImpl: newNodeImpl(NodeWhile, line), Condition: cond, Body: body, Increment: increment}
}

type Break struct {
	nodeImpl
	statementMarker
}

func NewBreak(line int) *Break { return &Break{nodeImpl: newNodeImpl(NodeBreak, line)} }

type Continue struct {
	nodeImpl
	statementMarker
}

func NewContinue(line int) *Continue { return &Continue{nodeImpl: newNodeImpl(NodeContinue, line)} }

type Var struct {
	nodeImpl
	statementMarker

	Name        string     `json:"name"`
	Slot        int        `json:"slot"`
	Initializer Expression `json:"initializer,omitempty"`
	Annotation  types.Type `json:"annotation,omitempty"`
	Inferred    types.Type `json:"inferred,omitempty"`
}

func NewVar(name string, init Expression, annotation types.Type, line int) *Var {
	return &Var{nodeImpl: newNodeImpl(NodeVar, line), Name: name, Slot: NoSlot, Initializer: init, Annotation: annotation}
}

type Const struct {
	nodeImpl
	statementMarker

	Name        string     `json:"name"`
	Slot        int        `json:"slot"`
	Initializer Expression `json:"initializer"`
	Annotation  types.Type `json:"annotation,omitempty"`
	Inferred    types.Type `json:"inferred,omitempty"`
}

func NewConst(name string, init Expression, annotation types.Type, line int) *Const {
	return &Const{nodeImpl: newNodeImpl(NodeConst, line), Name: name, Slot: NoSlot, Initializer: init, Annotation: annotation}
}

type Parameter struct {
	Name       string     `json:"name"`
	Line       int        `json:"line"`
	Slot       int        `json:"slot"`
	Annotation types.Type `json:"annotation,omitempty"`
}

func NewParameter(name string, annotation types.Type, line int) *Parameter {
	return &Parameter{Name: name, Line: line, Slot: NoSlot, Annotation: annotation}
}

type Function struct {
	nodeImpl
	statementMarker

	Name             string       `json:"name"`
	Slot             int          `json:"slot"`
	Params           []*Parameter `json:"params"`
	Body             []Statement  `json:"body"`
	Pure             bool         `json:"pure,omitempty"`
	ReturnAnnotation types.Type   `json:"returnAnnotation,omitempty"`
	ParamTypes       []types.Type `json:"paramTypes,omitempty"`
	ReturnType       types.Type   `json:"returnType,omitempty"`
	Inferred         types.Type   `json:"inferred,omitempty"`
}

func NewFunction(name string, params []*Parameter, body []Statement, pure bool, line int) *Function {
	return &Function{
		nodeImpl: newNodeImpl(NodeFunction, line),
		Name:     name,
		Slot:     NoSlot,
		Params:   params,
		Body:     body,
		Pure:     pure,
	}
}

// ParamSlots lists the slots assigned to the parameters, in order.
func (f *Function) ParamSlots() []int {
	out := make([]int, len(f.Params))
	for i, p := range f.Params {
		out[i] = p.Slot
	}
	return out
}

type Return struct {
	nodeImpl
	statementMarker

	Value Expression `json:"value"`
}

func NewReturn(value Expression, line int) *Return {
	return &Return{nodeImpl: newNodeImpl(NodeReturn, line), Value: value}
}

type Debug struct {
	nodeImpl
	statementMarker
}

func NewDebug(line int) *Debug { return &Debug{nodeImpl: newNodeImpl(NodeDebug, line)} }

type EmptyStatement struct {
	nodeImpl
	statementMarker
}

func NewEmptyStatement(line int) *EmptyStatement {
	return &EmptyStatement{nodeImpl: newNodeImpl(NodeEmptyStatement, line)}
}
