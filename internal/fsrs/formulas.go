package fsrs

import "math"

const (
	minStability  = 0.001
	minDifficulty = 1.0
	maxDifficulty = 10.0
)

// model evaluates the FSRS v6 equations against a fixed weight vector.
// decay and factor are derived once: decay = -w[20],
// factor = 0.9^(1/decay) - 1, so that R(S, S) = 0.9 by construction.
type model struct {
	w      Weights
	decay  float64
	factor float64
}

func newModel(w Weights) model {
	decay := -w[20]
	return model{
		w:      w,
		decay:  decay,
		factor: math.Pow(0.9, 1.0/decay) - 1.0,
	}
}

// retrievability is R(t, S) = (1 + factor * t/S) ^ decay.
func (m *model) retrievability(elapsedDays, stability float64) float64 {
	return math.Pow(1+m.factor*elapsedDays/stability, m.decay)
}

// initialStability is S0(G) = w[G-1], floored at the global minimum.
func (m *model) initialStability(r Rating) float64 {
	return math.Max(m.w[r-1], minStability)
}

// initialDifficulty is D0(G) = w[4] - e^(w[5]*(G-1)) + 1. The unclamped
// value is needed as the mean-reversion target in nextDifficulty.
func (m *model) initialDifficulty(r Rating, clamp bool) float64 {
	d := m.w[4] - math.Exp(m.w[5]*float64(r-1)) + 1
	if clamp {
		return clampDifficulty(d)
	}
	return d
}

// intervalDays converts stability into a whole-day interval:
// I = round((S/factor) * (retention^(1/decay) - 1)), clamped to [1, maxIvl].
func (m *model) intervalDays(stability, desiredRetention float64, maxIvl int) int {
	raw := stability / m.factor * (math.Pow(desiredRetention, 1.0/m.decay) - 1)
	days := int(math.Round(raw))
	if days < 1 {
		days = 1
	}
	if days > maxIvl {
		days = maxIvl
	}
	return days
}

// sameDayStability handles reviews less than a day after the previous one.
// SInc = e^(w[17]*(G-3+w[18])) * S^(-w[19]); successful grades never shrink S.
func (m *model) sameDayStability(stability float64, r Rating) float64 {
	sInc := math.Exp(m.w[17]*(float64(r)-3+m.w[18])) * math.Pow(stability, -m.w[19])
	if r == Good || r == Easy {
		sInc = math.Max(sInc, 1.0)
	}
	return math.Max(stability*sInc, minStability)
}

// nextDifficulty applies linear damping then mean reversion toward D0(Easy).
func (m *model) nextDifficulty(difficulty float64, r Rating) float64 {
	deltaD := -m.w[6] * (float64(r) - 3)
	damped := difficulty + (10-difficulty)*deltaD/9
	target := m.initialDifficulty(Easy, false)
	return clampDifficulty(m.w[7]*target + (1-m.w[7])*damped)
}

// nextStability picks the recall or forget branch by grade.
func (m *model) nextStability(difficulty, stability, retr float64, r Rating) float64 {
	if r == Again {
		return m.forgetStability(difficulty, stability, retr)
	}
	return m.recallStability(difficulty, stability, retr, r)
}

// recallStability grows S after a successful review:
// S' = S * (1 + e^w[8] * (11-D) * S^(-w[9]) * (e^((1-R)*w[10]) - 1) * penalty * bonus).
func (m *model) recallStability(difficulty, stability, retr float64, r Rating) float64 {
	hardPenalty := 1.0
	if r == Hard {
		hardPenalty = m.w[15]
	}
	easyBonus := 1.0
	if r == Easy {
		easyBonus = m.w[16]
	}
	return stability * (1 + math.Exp(m.w[8])*
		(11-difficulty)*
		math.Pow(stability, -m.w[9])*
		(math.Exp((1-retr)*m.w[10])-1)*
		hardPenalty*easyBonus)
}

// forgetStability shrinks S after a lapse, bounded by the same-day term:
// S' = min(w[11] * D^(-w[12]) * ((S+1)^w[13] - 1) * e^((1-R)*w[14]), S / e^(w[17]*w[18])).
func (m *model) forgetStability(difficulty, stability, retr float64) float64 {
	long := m.w[11] *
		math.Pow(difficulty, -m.w[12]) *
		(math.Pow(stability+1, m.w[13]) - 1) *
		math.Exp((1-retr)*m.w[14])
	short := stability / math.Exp(m.w[17]*m.w[18])
	return math.Min(long, short)
}

func clampDifficulty(d float64) float64 {
	return math.Min(math.Max(d, minDifficulty), maxDifficulty)
}
