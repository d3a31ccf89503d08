package app

import (
	"math/rand"
	"sync"
	"time"

	"fraction-tug-service/internal/domain"
	"github.com/google/uuid"
)

// maxDistractorDraws bounds the distractor loop before falling back to the
// smallest unused numerator.
const maxDistractorDraws = 1000

// RandSource is the randomness a Generator consumes. *rand.Rand satisfies it.
type RandSource interface {
	Intn(n int) int
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

// Generator produces same-denominator fraction problems with four options.
type Generator struct {
	mu  sync.Mutex
	rnd RandSource
	ids func() string
}

func NewGenerator() *Generator {
	return NewGeneratorWithSource(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewGeneratorWithSource is used by tests to script the random draws.
func NewGeneratorWithSource(rnd RandSource) *Generator {
	return &Generator{rnd: rnd, ids: uuid.NewString}
}

// Generate always succeeds.
func (g *Generator) Generate() domain.Problem {
	g.mu.Lock()
	defer g.mu.Unlock()

	den := g.between(domain.MinDenominator, domain.MaxDenominator)

	op := domain.OperatorAdd
	if g.rnd.Intn(2) == 1 {
		op = domain.OperatorSubtract
	}

	var n1, n2, correct, operandHint int
	if op == domain.OperatorAdd {
		n1 = g.between(1, den-1)
		n2 = g.between(1, den-n1)
		correct = n1 + n2
		operandHint = n1
	} else {
		n1 = g.between(2, den-1)
		n2 = g.between(1, n1-1)
		correct = n1 - n2
		operandHint = n1 + n2
	}

	numerators := g.options(den, correct, operandHint)
	g.rnd.Shuffle(len(numerators), func(i, j int) {
		numerators[i], numerators[j] = numerators[j], numerators[i]
	})

	p := domain.Problem{
		ID: g.ids(),
		Operands: [2]domain.Fraction{
			{Numerator: n1, Denominator: den},
			{Numerator: n2, Denominator: den},
		},
		Operator: op,
	}
	for i, n := range numerators {
		p.Options[i] = domain.Fraction{Numerator: n, Denominator: den}
		if n == correct {
			p.CorrectIndex = i
		}
	}
	return p
}

// options collects the correct numerator plus three distinct non-negative
// distractors. Draw weights: 40% correct+-1, 30% the operand hint, 30%
// uniform in [0, den+1].
func (g *Generator) options(den, correct, operandHint int) []int {
	picked := make([]int, 0, domain.OptionCount)
	picked = append(picked, correct)
	seen := map[int]bool{correct: true}

	for draws := 0; len(picked) < domain.OptionCount && draws < maxDistractorDraws; draws++ {
		var d int
		switch roll := g.rnd.Float64(); {
		case roll < 0.4:
			if g.rnd.Intn(2) == 0 {
				d = correct + 1
			} else {
				d = correct - 1
			}
		case roll < 0.7:
			d = operandHint
		default:
			d = g.rnd.Intn(den + 2)
		}
		if d < 0 || seen[d] {
			continue
		}
		seen[d] = true
		picked = append(picked, d)
	}

	for n := 0; len(picked) < domain.OptionCount; n++ {
		if !seen[n] {
			seen[n] = true
			picked = append(picked, n)
		}
	}
	return picked
}

// between draws uniformly from [lo, hi].
func (g *Generator) between(lo, hi int) int {
	return lo + g.rnd.Intn(hi-lo+1)
}
