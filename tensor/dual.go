package tensor

import "math"

// Dual is a forward-mode dual scalar: a value plus a vector of partial
// derivatives. Arithmetic propagates the derivatives by the chain rule,
// so evaluating a function on seeded Duals yields its value and its
// gradient with respect to the seeded inputs in one pass.
type Dual struct {
	Val  float64
	Grad []float64
}

// Constant returns a dual with value v and k zero partials.
func Constant(v float64, k int) Dual {
	return Dual{Val: v, Grad: make([]float64, k)}
}

// Variable returns a dual seeded as the i-th of k independent
// variables: value v, d/dx_i = 1.
func Variable(v float64, k, i int) Dual {
	d := Dual{Val: v, Grad: make([]float64, k)}
	d.Grad[i] = 1
	return d
}

func (a Dual) Add(b Dual) Dual {
	out := Dual{Val: a.Val + b.Val, Grad: make([]float64, len(a.Grad))}
	for i := range out.Grad {
		out.Grad[i] = a.Grad[i] + b.Grad[i]
	}
	return out
}

func (a Dual) Sub(b Dual) Dual {
	out := Dual{Val: a.Val - b.Val, Grad: make([]float64, len(a.Grad))}
	for i := range out.Grad {
		out.Grad[i] = a.Grad[i] - b.Grad[i]
	}
	return out
}

func (a Dual) Mul(b Dual) Dual {
	out := Dual{Val: a.Val * b.Val, Grad: make([]float64, len(a.Grad))}
	for i := range out.Grad {
		out.Grad[i] = a.Grad[i]*b.Val + a.Val*b.Grad[i]
	}
	return out
}

func (a Dual) Div(b Dual) Dual {
	out := Dual{Val: a.Val / b.Val, Grad: make([]float64, len(a.Grad))}
	inv := 1.0 / (b.Val * b.Val)
	for i := range out.Grad {
		out.Grad[i] = (a.Grad[i]*b.Val - a.Val*b.Grad[i]) * inv
	}
	return out
}

func (a Dual) Scale(s float64) Dual {
	out := Dual{Val: s * a.Val, Grad: make([]float64, len(a.Grad))}
	for i := range out.Grad {
		out.Grad[i] = s * a.Grad[i]
	}
	return out
}

func (a Dual) Neg() Dual { return a.Scale(-1) }

func (a Dual) Sqrt() Dual {
	r := math.Sqrt(a.Val)
	out := Dual{Val: r, Grad: make([]float64, len(a.Grad))}
	d := 0.5 / r
	for i := range out.Grad {
		out.Grad[i] = d * a.Grad[i]
	}
	return out
}

func (a Dual) Exp() Dual {
	e := math.Exp(a.Val)
	out := Dual{Val: e, Grad: make([]float64, len(a.Grad))}
	for i := range out.Grad {
		out.Grad[i] = e * a.Grad[i]
	}
	return out
}

func (a Dual) Log() Dual {
	out := Dual{Val: math.Log(a.Val), Grad: make([]float64, len(a.Grad))}
	inv := 1.0 / a.Val
	for i := range out.Grad {
		out.Grad[i] = inv * a.Grad[i]
	}
	return out
}
