package smc

import (
	"math/big"

	"github.com/google/uuid"
)

// NodeKind distinguishes the five expression tree node shapes.
type NodeKind int

const (
	KindScalar NodeKind = iota
	KindSecret
	KindAdd
	KindSub
	KindMul
)

// Expression is one node of an arithmetic expression tree: a public
// scalar, an as-yet-unshared secret input, or a binary operator over two
// sub-expressions. Node identity is a random uuid assigned at
// construction time and is stable across parties: all parties in a
// protocol run evaluate the same *Expression tree, so their node ids
// agree without further coordination.
type Expression struct {
	id       uuid.UUID
	kind     NodeKind
	value    *big.Int // for KindScalar
	left     *Expression
	right    *Expression
}

// NewScalar wraps a public integer constant as a leaf expression.
func NewScalar(v int64) *Expression {
	return &Expression{id: uuid.New(), kind: KindScalar, value: big.NewInt(v)}
}

// NewSecret declares a new secret input. Which party owns and shares it
// is set by the ProtocolSpec's Owners map, not by who calls NewSecret.
func NewSecret() *Expression {
	return &Expression{id: uuid.New(), kind: KindSecret}
}

// Add returns a new expression node computing e + other.
func (e *Expression) Add(other *Expression) *Expression {
	return &Expression{id: uuid.New(), kind: KindAdd, left: e, right: other}
}

// Sub returns a new expression node computing e - other.
func (e *Expression) Sub(other *Expression) *Expression {
	return &Expression{id: uuid.New(), kind: KindSub, left: e, right: other}
}

// Mul returns a new expression node computing e * other.
func (e *Expression) Mul(other *Expression) *Expression {
	return &Expression{id: uuid.New(), kind: KindMul, left: e, right: other}
}

// ID returns the node's stable identity, used to key triplets, shares in
// flight, and per-node transport channels.
func (e *Expression) ID() uuid.UUID {
	return e.id
}

// Kind reports which of the five node shapes e is.
func (e *Expression) Kind() NodeKind {
	return e.kind
}

// ScalarValue returns the constant value of a KindScalar node. Callers
// must check Kind() first; it panics on any other node kind.
func (e *Expression) ScalarValue() *big.Int {
	if e.kind != KindScalar {
		panic("smc: ScalarValue called on non-scalar expression")
	}
	return new(big.Int).Set(e.value)
}

// Operands returns the left and right sub-expressions of a binary node.
// Callers must check Kind() first; it panics on a leaf node.
func (e *Expression) Operands() (*Expression, *Expression) {
	if e.kind != KindAdd && e.kind != KindSub && e.kind != KindMul {
		panic("smc: Operands called on a leaf expression")
	}
	return e.left, e.right
}
