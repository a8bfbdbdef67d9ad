// Package stats computes numeric summaries of container tensors.
package stats

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/born-ml/peek/internal/logger"
	"github.com/born-ml/peek/internal/metrics"
	"github.com/born-ml/peek/internal/tensor"
)

// Summary describes the values of one tensor. Min, Max, Mean and Std skip
// NaN and infinities; they are NaN when no finite value exists.
type Summary struct {
	Name  string
	DType tensor.DataType
	Shape tensor.Shape
	Count int
	Min   float64
	Max   float64
	Mean  float64
	Std   float64
	Zeros int
	NaNs  int
	Infs  int
}

// Finite returns the number of finite elements.
func (s Summary) Finite() int {
	return s.Count - s.NaNs - s.Infs
}

// Reader is the part of a container Summarize needs.
type Reader interface {
	Tensor(name string) (*tensor.RawTensor, error)
}

// Compute summarizes a decoded tensor. Mean and variance use Welford's
// running update so large tensors do not lose precision.
func Compute(raw *tensor.RawTensor) Summary {
	s := Summary{
		Name:  raw.Name(),
		DType: raw.DType(),
		Shape: raw.Shape(),
		Count: raw.NumElements(),
		Min:   math.NaN(),
		Max:   math.NaN(),
		Mean:  math.NaN(),
		Std:   math.NaN(),
	}

	var n int
	var mean, m2 float64
	for i := 0; i < s.Count; i++ {
		v := raw.At(i)
		switch {
		case v.IsNaN():
			s.NaNs++
			continue
		case v.IsInf():
			s.Infs++
			continue
		}

		x := v.Float64()
		if x == 0 {
			s.Zeros++
		}
		if n == 0 {
			s.Min, s.Max = x, x
		} else {
			s.Min = math.Min(s.Min, x)
			s.Max = math.Max(s.Max, x)
		}
		n++
		delta := x - mean
		mean += delta / float64(n)
		m2 += delta * (x - mean)
	}

	if n > 0 {
		s.Mean = mean
		s.Std = math.Sqrt(m2 / float64(n))
	}
	return s
}

// Summarize reads and summarizes the named tensors with at most workers
// running at once. Results keep the order of names. The first error
// cancels the remaining work.
func Summarize(ctx context.Context, r Reader, names []string, workers int) ([]Summary, error) {
	if workers <= 0 {
		workers = 1
	}

	out := make([]Summary, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			raw, err := r.Tensor(name)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", name, err)
			}
			s := Compute(raw)
			if s.NaNs > 0 || s.Infs > 0 {
				metrics.RecordNumericalInstability(name, s.NaNs, s.Infs)
				logger.Log.Warn("non-finite values", "tensor", name, "nan", s.NaNs, "inf", s.Infs)
			}
			out[i] = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
