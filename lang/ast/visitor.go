package ast

// VisitDirection indicates whether a call to Visit enters or exits a node.
type VisitDirection int

// List of visit directions.
const (
	VisitEnter VisitDirection = iota
	VisitExit
)

// Visitor defines the method to implement to walk the tree. A node's
// children can be skipped by returning a nil visitor from Visit.
type Visitor interface {
	Visit(n Node, dir VisitDirection) (w Visitor)
}

// VisitorFunc is a function that implements the Visitor interface, called
// only on VisitEnter (it cannot skip children).
type VisitorFunc func(n Node)

// Visit implements the Visitor interface for VisitorFunc.
func (f VisitorFunc) Visit(n Node, dir VisitDirection) Visitor {
	if dir == VisitEnter {
		f(n)
	}
	return f
}

// Walk visits each node with Visitor v starting with node. It calls Visit
// with VisitEnter, and if that returns a non-nil Visitor, recursively walks
// node's children and then calls Visit again with VisitExit.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node, VisitEnter); v == nil {
		return
	}
	node.Walk(v)
	v.Visit(node, VisitExit)
}
