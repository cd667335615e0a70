// Package proj maps points between coordinate spaces. Projections are partial:
// Project reports false when the input lies outside the valid domain.
package proj

// Projection maps a point of type In to a point of type Out.
type Projection[In, Out any] interface {
	Project(p In) (Out, bool)
}

// Invertible is a projection that can also be run backwards.
type Invertible[In, Out any] interface {
	Projection[In, Out]
	Unproject(p Out) (In, bool)
}

// Func adapts a plain function to Projection.
type Func[In, Out any] func(In) (Out, bool)

func (f Func[In, Out]) Project(p In) (Out, bool) { return f(p) }

// InvertibleFunc pairs a forward and an inverse function.
type InvertibleFunc[In, Out any] struct {
	Forward func(In) (Out, bool)
	Inverse func(Out) (In, bool)
}

func (f InvertibleFunc[In, Out]) Project(p In) (Out, bool)   { return f.Forward(p) }
func (f InvertibleFunc[In, Out]) Unproject(p Out) (In, bool) { return f.Inverse(p) }

type identity[P any] struct{}

func (identity[P]) Project(p P) (P, bool)   { return p, true }
func (identity[P]) Unproject(p P) (P, bool) { return p, true }

// Identity returns a projection that passes points through unchanged.
func Identity[P any]() Invertible[P, P] { return identity[P]{} }

type chain[A, B, C any] struct {
	first  Projection[A, B]
	second Projection[B, C]
}

func (c chain[A, B, C]) Project(p A) (C, bool) {
	mid, ok := c.first.Project(p)
	if !ok {
		var zero C
		return zero, false
	}
	return c.second.Project(mid)
}

// Chain composes first (A -> B) with second (B -> C). Evaluation stops at the
// first stage that fails.
func Chain[A, B, C any](first Projection[A, B], second Projection[B, C]) Projection[A, C] {
	return chain[A, B, C]{first: first, second: second}
}

type invertibleChain[A, B, C any] struct {
	chain[A, B, C]
	firstInv  Invertible[A, B]
	secondInv Invertible[B, C]
}

func (c invertibleChain[A, B, C]) Unproject(p C) (A, bool) {
	mid, ok := c.secondInv.Unproject(p)
	if !ok {
		var zero A
		return zero, false
	}
	return c.firstInv.Unproject(mid)
}

// ChainInvertible is Chain for two invertible stages; the result can be
// unprojected by running the stages backwards in reverse order.
func ChainInvertible[A, B, C any](first Invertible[A, B], second Invertible[B, C]) Invertible[A, C] {
	return invertibleChain[A, B, C]{
		chain:     chain[A, B, C]{first: first, second: second},
		firstInv:  first,
		secondInv: second,
	}
}

type inverted[A, B any] struct {
	inner Invertible[A, B]
}

func (i inverted[A, B]) Project(p B) (A, bool)   { return i.inner.Unproject(p) }
func (i inverted[A, B]) Unproject(p A) (B, bool) { return i.inner.Project(p) }

// Invert swaps the direction of p.
func Invert[A, B any](p Invertible[A, B]) Invertible[B, A] {
	if i, ok := p.(inverted[B, A]); ok {
		return i.inner
	}
	return inverted[A, B]{inner: p}
}
