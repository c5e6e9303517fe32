package forest

import (
	"errors"
	"math"
)

// Metrics is the hold-out evaluation of a regressor, in target units.
type Metrics struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	R2   float64 `json:"r2"`
}

var errLengthMismatch = errors.New("forest: yTrue and yPred length mismatch")

// MAE is the mean absolute error.
func MAE(yTrue, yPred []float64) (float64, error) {
	if len(yTrue) != len(yPred) || len(yTrue) == 0 {
		return 0, errLengthMismatch
	}
	var sum float64
	for i := range yTrue {
		sum += math.Abs(yTrue[i] - yPred[i])
	}
	return sum / float64(len(yTrue)), nil
}

// MSE is the mean squared error.
func MSE(yTrue, yPred []float64) (float64, error) {
	if len(yTrue) != len(yPred) || len(yTrue) == 0 {
		return 0, errLengthMismatch
	}
	var sum float64
	for i := range yTrue {
		d := yTrue[i] - yPred[i]
		sum += d * d
	}
	return sum / float64(len(yTrue)), nil
}

// RMSE is the square root of MSE.
func RMSE(yTrue, yPred []float64) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// R2 is the coefficient of determination. A constant yTrue yields 0.
func R2(yTrue, yPred []float64) (float64, error) {
	if len(yTrue) != len(yPred) || len(yTrue) == 0 {
		return 0, errLengthMismatch
	}
	var mean float64
	for _, v := range yTrue {
		mean += v
	}
	mean /= float64(len(yTrue))

	var ssRes, ssTot float64
	for i := range yTrue {
		d := yTrue[i] - yPred[i]
		ssRes += d * d
		m := yTrue[i] - mean
		ssTot += m * m
	}
	if ssTot == 0 {
		return 0, nil
	}
	return 1 - ssRes/ssTot, nil
}

// Evaluate computes MAE, RMSE and R2 together.
func Evaluate(yTrue, yPred []float64) (Metrics, error) {
	mae, err := MAE(yTrue, yPred)
	if err != nil {
		return Metrics{}, err
	}
	rmse, err := RMSE(yTrue, yPred)
	if err != nil {
		return Metrics{}, err
	}
	r2, err := R2(yTrue, yPred)
	if err != nil {
		return Metrics{}, err
	}
	return Metrics{MAE: mae, RMSE: rmse, R2: r2}, nil
}
