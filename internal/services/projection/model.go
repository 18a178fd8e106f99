// Package projection fits a polynomial ridge regression to a price series and
// extrapolates it day by day.
package projection

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"IndexScope/internal/domain/models"
	"IndexScope/internal/services/series"
	"IndexScope/pkg/util"
)

const (
	DefaultDegree = 3
	DefaultAlpha  = 1.0
	// DefaultMaxDays caps a projection at roughly a century of daily points.
	DefaultMaxDays = 36500
)

var (
	// ErrInvalidRange is returned when the target is not after the last observed day.
	ErrInvalidRange = errors.New("invalid projection range")
	// ErrNoObservations is returned for an empty series.
	ErrNoObservations = errors.New("projection: series has no observations")
	// ErrRangeTooLong is returned when the target lies more than MaxDays past the
	// last observed day. It also matches ErrInvalidRange.
	ErrRangeTooLong = fmt.Errorf("%w: too many days", ErrInvalidRange)
)

// Option customizes a Model.
type Option func(*Model)

// WithDegree sets the polynomial degree. Values below 1 are ignored.
func WithDegree(d int) Option {
	return func(m *Model) {
		if d >= 1 {
			m.degree = d
		}
	}
}

// WithAlpha sets the ridge penalty. Negative values are ignored.
func WithAlpha(a float64) Option {
	return func(m *Model) {
		if a >= 0 {
			m.alpha = a
		}
	}
}

// WithMaxDays limits how many days past the last observation a projection may
// reach. Zero or less removes the limit.
func WithMaxDays(n int) Option {
	return func(m *Model) {
		m.maxDays = n
	}
}

// Model projects prices with ridge regression on polynomial features of the day ordinal.
// It holds no per-request state and is safe for concurrent use.
type Model struct {
	degree  int
	alpha   float64
	maxDays int
}

// NewModel returns a Model with degree 3, alpha 1 and a DefaultMaxDays limit unless overridden.
func NewModel(opts ...Option) *Model {
	m := &Model{degree: DefaultDegree, alpha: DefaultAlpha, maxDays: DefaultMaxDays}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Model) Degree() int { return m.degree }
func (m *Model) Alpha() float64 { return m.alpha }
func (m *Model) MaxDays() int    { return m.maxDays }

// Project fits the series and predicts every calendar day from the day after the
// last observation through target, inclusive.
func (m *Model) Project(s models.Series, target time.Time) (models.Projection, error) {
	last, ok := s.Last()
	if !ok {
		return models.Projection{}, ErrNoObservations
	}
	target = util.TruncateDay(target)
	if !target.After(last.Time) {
		return models.Projection{}, fmt.Errorf("%w: %s is not after %s", ErrInvalidRange, util.FormatDay(target), last.Date)
	}

	days := util.DaysBetween(last.Time, target)
	if m.maxDays > 0 && days > m.maxDays {
		return models.Projection{}, fmt.Errorf("%w: %d days past %s, limit %d", ErrRangeTooLong, days, last.Date, m.maxDays)
	}

	fit, err := m.Fit(s.Ordinals(), s.Averages())
	if err != nil {
		return models.Projection{}, err
	}

	out := models.Projection{
		Symbol: s.Symbol,
		Target: target,
		Points: make([]models.ProjectedPoint, 0, days),
	}
	for d := util.AddDays(last.Time, 1); !d.After(target); d = util.AddDays(d, 1) {
		ord := series.Ordinal(s.Start, d)
		out.Points = append(out.Points, models.ProjectedPoint{
			Date:    util.FormatDay(d),
			Price:   fit.Predict(float64(ord)),
			Ordinal: ord,
			Time:    d,
		})
	}
	return out, nil
}

// Fit is a fitted polynomial: Intercept + sum(Weights[k] * x^(k+1)).
type Fit struct {
	Intercept float64
	Weights   []float64
}

// Predict evaluates the polynomial at x.
func (f Fit) Predict(x float64) float64 {
	y := f.Intercept
	p := 1.0
	for _, w := range f.Weights {
		p *= x
		y += w * p
	}
	return y
}

// Fit solves the ridge problem for xs/ys. Features and target are centred so the
// intercept is not penalised.
func (m *Model) Fit(xs, ys []float64) (Fit, error) {
	n := len(xs)
	if n == 0 || n != len(ys) {
		return Fit{}, ErrNoObservations
	}
	d := m.degree

	// feature matrix x, x^2, ... x^d and column means
	raw := make([]float64, n*d)
	means := make([]float64, d)
	for i, x := range xs {
		p := 1.0
		for k := 0; k < d; k++ {
			p *= x
			raw[i*d+k] = p
			means[k] += p
		}
	}
	for k := range means {
		means[k] /= float64(n)
	}
	var yMean float64
	for _, y := range ys {
		yMean += y
	}
	yMean /= float64(n)

	for i := 0; i < n; i++ {
		for k := 0; k < d; k++ {
			raw[i*d+k] -= means[k]
		}
	}
	yc := make([]float64, n)
	for i, y := range ys {
		yc[i] = y - yMean
	}

	X := mat.NewDense(n, d, raw)
	A := mat.NewSymDense(d, nil)
	A.SymOuterK(1, X.T())
	for k := 0; k < d; k++ {
		A.SetSym(k, k, A.At(k, k)+m.alpha)
	}
	b := mat.NewVecDense(d, nil)
	b.MulVec(X.T(), mat.NewVecDense(n, yc))

	w, err := solve(A, b)
	if err != nil {
		return Fit{}, fmt.Errorf("projection: solve normal equations: %w", err)
	}

	fit := Fit{Intercept: yMean, Weights: make([]float64, d)}
	for k := 0; k < d; k++ {
		fit.Weights[k] = w.AtVec(k)
		fit.Intercept -= means[k] * fit.Weights[k]
	}
	return fit, nil
}

// solve tries Cholesky first and falls back to a general LU/QR solve.
// Ill-conditioning is reported by gonum as mat.Condition; the result is still usable.
func solve(A *mat.SymDense, b *mat.VecDense) (*mat.VecDense, error) {
	var cond mat.Condition
	var chol mat.Cholesky
	if chol.Factorize(A) {
		w := mat.NewVecDense(b.Len(), nil)
		err := chol.SolveVecTo(w, b)
		if err == nil || errors.As(err, &cond) {
			return w, nil
		}
	}
	w := mat.NewVecDense(b.Len(), nil)
	if err := w.SolveVec(A, b); err != nil && !errors.As(err, &cond) {
		return nil, err
	}
	return w, nil
}
