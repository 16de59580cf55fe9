// Package matutils implements utility function for working with mat.Matrix
// structs
package matutils

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// Format formats a matrix for printing
func Format(X mat.Matrix) string {
	fa := mat.Formatted(X, mat.Prefix(""), mat.Squeeze())
	return fmt.Sprintf("%v", fa)
}

// MaxVec finds and returns the index of the maximum value in a vector.
// If multiple equal max values exist, only the first one is returned.
func MaxVec(values mat.Vector) int {
	max, idx := values.AtVec(0), 0

	for i := 0; i < values.Len(); i++ {
		if values.AtVec(i) > max {
			max = values.AtVec(i)
			idx = i
		}
	}
	return idx
}

// VecClip performs an element-wise clipping of a vector's values such
// that each value is at least min and at most max
func VecClip(a *mat.VecDense, min, max float64) {
	for i := 0; i < a.Len(); i++ {
		value := a.AtVec(i)

		if value < min {
			a.SetVec(i, min)
		} else if value > max {
			a.SetVec(i, max)
		}
	}
}

// VecClipIntervals clips each element of a vector to its own interval.
// The vector and interval slice must have equal lengths.
func VecClipIntervals(a *mat.VecDense, bounds []r1.Interval) {
	if a.Len() != len(bounds) {
		panic(fmt.Sprintf("vecclipintervals: dimension mismatch \n\twant(%d)"+
			"\n\thave(%d)", len(bounds), a.Len()))
	}
	for i := 0; i < a.Len(); i++ {
		value := a.AtVec(i)

		if value < bounds[i].Min {
			a.SetVec(i, bounds[i].Min)
		} else if value > bounds[i].Max {
			a.SetVec(i, bounds[i].Max)
		}
	}
}

// VecOnes returns a vector of 1.0's
func VecOnes(length int) *mat.VecDense {
	oneSlice := make([]float64, length)
	for i := 0; i < length; i++ {
		oneSlice[i] = 1.0
	}
	return mat.NewVecDense(length, oneSlice)
}

// VecConcat concatenates vectors into a single new vector, in argument
// order.
func VecConcat(vecs ...mat.Vector) *mat.VecDense {
	length := 0
	for _, v := range vecs {
		length += v.Len()
	}

	data := make([]float64, 0, length)
	for _, v := range vecs {
		for i := 0; i < v.Len(); i++ {
			data = append(data, v.AtVec(i))
		}
	}
	return mat.NewVecDense(length, data)
}
