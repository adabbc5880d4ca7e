package backtest

import "math"

// probabilities are clipped away from 0 and 1 before taking logs
const logLossEpsilon = 1e-15

// Metrics summarizes how well probabilities matched outcomes
type Metrics struct {
	Examples    int                 `json:"examples"`
	Accuracy    float64             `json:"accuracy"`
	BrierScore  float64             `json:"brier_score"`
	LogLoss     float64             `json:"log_loss"`
	BaseRate    float64             `json:"base_rate"`
	MeanProb    float64             `json:"mean_probability"`
	Calibration []CalibrationBucket `json:"calibration"`
}

// CalibrationBucket compares predicted and observed win rates within a probability band
type CalibrationBucket struct {
	Lower         float64 `json:"lower"`
	Upper         float64 `json:"upper"`
	Count         int     `json:"count"`
	MeanPredicted float64 `json:"mean_predicted"`
	ObservedRate  float64 `json:"observed_rate"`
}

// CalculateMetrics scores probabilities against 0/1 labels. A probability of exactly 0.5 counts
// as a predicted win.
func CalculateMetrics(probs, labels []float64, buckets int) Metrics {
	n := len(probs)
	if n == 0 || n != len(labels) {
		return Metrics{}
	}
	if buckets <= 0 {
		buckets = 10
	}

	m := Metrics{Examples: n}
	correct := 0
	for i, p := range probs {
		y := labels[i]
		if (p >= 0.5) == (y == 1) {
			correct++
		}
		m.BrierScore += (p - y) * (p - y)
		m.LogLoss += logLoss(p, y)
		m.BaseRate += y
		m.MeanProb += p
	}

	total := float64(n)
	m.Accuracy = float64(correct) / total
	m.BrierScore /= total
	m.LogLoss /= total
	m.BaseRate /= total
	m.MeanProb /= total
	m.Calibration = calibrate(probs, labels, buckets)
	return m
}

// ExpectedCalibrationError is the count-weighted mean gap between predicted and observed rates
func (m Metrics) ExpectedCalibrationError() float64 {
	if m.Examples == 0 {
		return 0
	}
	ece := 0.0
	for _, b := range m.Calibration {
		ece += float64(b.Count) * math.Abs(b.MeanPredicted-b.ObservedRate)
	}
	return ece / float64(m.Examples)
}

// BrierSkill compares the Brier score with that of always predicting the base rate
func (m Metrics) BrierSkill() float64 {
	reference := m.BaseRate * (1 - m.BaseRate)
	if reference == 0 {
		return 0
	}
	return 1 - m.BrierScore/reference
}

func logLoss(p, y float64) float64 {
	p = math.Min(1-logLossEpsilon, math.Max(logLossEpsilon, p))
	return -(y*math.Log(p) + (1-y)*math.Log(1-p))
}

func calibrate(probs, labels []float64, buckets int) []CalibrationBucket {
	out := make([]CalibrationBucket, buckets)
	sums := make([]float64, buckets)
	wins := make([]float64, buckets)
	width := 1.0 / float64(buckets)

	for i := range out {
		out[i].Lower = float64(i) * width
		out[i].Upper = float64(i+1) * width
	}
	for i, p := range probs {
		idx := int(p / width)
		if idx >= buckets {
			idx = buckets - 1
		}
		if idx < 0 {
			idx = 0
		}
		out[idx].Count++
		sums[idx] += p
		wins[idx] += labels[i]
	}
	for i := range out {
		if out[i].Count > 0 {
			out[i].MeanPredicted = sums[i] / float64(out[i].Count)
			out[i].ObservedRate = wins[i] / float64(out[i].Count)
		}
	}
	return out
}
