package app

import (
	"math/rand"
	"testing"

	"fraction-tug-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource replays queued draws and falls back to a seeded source.
type scriptedSource struct {
	ints     []int
	floats   []float64
	fallback *rand.Rand
}

func (s *scriptedSource) Intn(n int) int {
	if len(s.ints) > 0 {
		v := s.ints[0]
		s.ints = s.ints[1:]
		return v
	}
	return s.fallback.Intn(n)
}

func (s *scriptedSource) Float64() float64 {
	if len(s.floats) > 0 {
		v := s.floats[0]
		s.floats = s.floats[1:]
		return v
	}
	return s.fallback.Float64()
}

func (s *scriptedSource) Shuffle(n int, swap func(i, j int)) {
	s.fallback.Shuffle(n, swap)
}

// zeroSource always draws the lowest value and never reorders.
type zeroSource struct{}

func (zeroSource) Intn(int) int                { return 0 }
func (zeroSource) Float64() float64            { return 0 }
func (zeroSource) Shuffle(int, func(i, j int)) {}

func TestGeneratedProblemsHoldInvariants(t *testing.T) {
	gen := NewGeneratorWithSource(rand.New(rand.NewSource(42)))
	ids := make(map[string]struct{})

	for i := 0; i < 5000; i++ {
		p := gen.Generate()
		require.Truef(t, p.Valid(), "invalid problem %+v", p)

		den := p.Denominator()
		n1, n2 := p.Operands[0].Numerator, p.Operands[1].Numerator
		switch p.Operator {
		case domain.OperatorAdd:
			assert.LessOrEqual(t, n1+n2, den)
		case domain.OperatorSubtract:
			assert.GreaterOrEqual(t, n1-n2, 1)
			assert.LessOrEqual(t, n1, den-1)
		default:
			t.Fatalf("unexpected operator %q", p.Operator)
		}

		_, dup := ids[p.ID]
		require.False(t, dup, "problem id reused: %s", p.ID)
		ids[p.ID] = struct{}{}
	}
}

func TestGeneratorCoversDenominatorsAndOperators(t *testing.T) {
	gen := NewGeneratorWithSource(rand.New(rand.NewSource(7)))
	dens := make(map[int]bool)
	ops := make(map[domain.Operator]bool)

	for i := 0; i < 2000; i++ {
		p := gen.Generate()
		dens[p.Denominator()] = true
		ops[p.Operator] = true
	}

	for d := domain.MinDenominator; d <= domain.MaxDenominator; d++ {
		assert.Truef(t, dens[d], "denominator %d never drawn", d)
	}
	assert.True(t, ops[domain.OperatorAdd])
	assert.True(t, ops[domain.OperatorSubtract])
}

func TestGenerateScriptedAddition(t *testing.T) {
	src := &scriptedSource{
		// denominator 3+2, addition, n1 1+1, n2 1+1
		ints:     []int{2, 0, 1, 1},
		fallback: rand.New(rand.NewSource(1)),
	}
	p := NewGeneratorWithSource(src).Generate()

	require.Equal(t, domain.OperatorAdd, p.Operator)
	require.Equal(t, domain.Fraction{Numerator: 2, Denominator: 5}, p.Operands[0])
	require.Equal(t, domain.Fraction{Numerator: 2, Denominator: 5}, p.Operands[1])
	assert.Equal(t, 4, p.Result())
	assert.Equal(t, 4, p.Options[p.CorrectIndex].Numerator)
	for _, opt := range p.Options {
		assert.Equal(t, 5, opt.Denominator)
	}
	assert.True(t, p.Valid())
}

func TestGenerateFallsBackWhenDrawsRepeat(t *testing.T) {
	p := NewGeneratorWithSource(zeroSource{}).Generate()

	// 1/3 + 1/3: the only distinct draw is 3, the rest come from the fallback.
	require.Equal(t, domain.OperatorAdd, p.Operator)
	assert.Equal(t, 2, p.Result())
	assert.Equal(t, [domain.OptionCount]domain.Fraction{
		{Numerator: 2, Denominator: 3},
		{Numerator: 3, Denominator: 3},
		{Numerator: 0, Denominator: 3},
		{Numerator: 1, Denominator: 3},
	}, p.Options)
	assert.Equal(t, 0, p.CorrectIndex)
	assert.True(t, p.Valid())
}

func TestSubtractionOperandHintCanAppear(t *testing.T) {
	src := &scriptedSource{
		// denominator 10, subtraction, n1 2+5, n2 1+2, then hint draw, +1 draw, hint dup, uniform 0
		ints:     []int{7, 1, 5, 2, 0, 0},
		floats:   []float64{0.5, 0.1, 0.6, 0.9},
		fallback: rand.New(rand.NewSource(3)),
	}
	p := NewGeneratorWithSource(src).Generate()

	require.Equal(t, domain.OperatorSubtract, p.Operator)
	require.Equal(t, 7, p.Operands[0].Numerator)
	require.Equal(t, 3, p.Operands[1].Numerator)
	assert.Equal(t, 4, p.Result())

	got := make(map[int]bool)
	for _, opt := range p.Options {
		got[opt.Numerator] = true
	}
	assert.Equal(t, map[int]bool{4: true, 10: true, 5: true, 0: true}, got)
	assert.True(t, p.Valid())
}
