package vec

// Builder accumulates transform steps into a single matrix.
//
// Builder is a value type: every method returns a new Builder and the
// receiver is left untouched, so partially built chains can be shared.
// Steps apply in the order they are added: the first step is the one
// closest to the point. The zero Builder is ready to use.
type Builder struct {
	m   Matrix
	set bool
}

// NewBuilder starts a chain at the identity.
func NewBuilder() Builder {
	return Builder{}
}

// BuilderFrom starts a chain from an existing matrix.
func BuilderFrom(m Matrix) Builder {
	return Builder{m: m, set: true}
}

// Mult appends an explicit matrix step.
func (b Builder) Mult(m Matrix) Builder {
	return Builder{m: Mult(m, b.Build()), set: true}
}

// Translate appends a translation.
func (b Builder) Translate(x, y float64) Builder {
	return b.Mult(Translate(x, y))
}

// Scale appends a scale about the origin.
func (b Builder) Scale(sx, sy float64) Builder {
	return b.Mult(ScaleMatrix(sx, sy))
}

// Rotate appends a rotation in radians.
func (b Builder) Rotate(angle float64) Builder {
	return b.Mult(RotateMatrix(angle))
}

// Shear appends a shear.
func (b Builder) Shear(x, y float64) Builder {
	return b.Mult(Shear(x, y))
}

// Build returns the composed matrix.
func (b Builder) Build() Matrix {
	if !b.set {
		return Identity()
	}
	return b.m
}
