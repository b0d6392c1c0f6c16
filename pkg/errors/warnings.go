package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/rs/zerolog"
)

// 警告は処理を止めずに呼び出し側へ通知するためのもの。
// 既定では標準ロガーへ出力し、pkg/log が設定されると zerolog 経由になる。
var (
	warnMu      sync.Mutex
	warnHandler = func(w error) { log.Printf("pumpit-Warning: %v\n", w) }
	warnSink    func(w error)
)

// SetWarningHandler replaces the fallback warning handler. Tests use it to
// collect warnings.
func SetWarningHandler(handler func(w error)) {
	warnMu.Lock()
	defer warnMu.Unlock()
	warnHandler = handler
}

// SetZerologWarnFunc installs the structured sink used by pkg/log.
// nil restores the fallback handler.
func SetZerologWarnFunc(sink func(w error)) {
	warnMu.Lock()
	defer warnMu.Unlock()
	warnSink = sink
}

// Warn emits w through the structured sink if one is installed,
// otherwise through the fallback handler.
func Warn(w error) {
	warnMu.Lock()
	defer warnMu.Unlock()
	switch {
	case warnSink != nil:
		warnSink(w)
	case warnHandler != nil:
		warnHandler(w)
	}
}

// ConvergenceWarning は反復ソルバーが max_iter 以内に収束しなかったことを示す。
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	msg := w.Message
	if msg == "" {
		msg = "increase max_iter or scale the inputs"
	}
	return fmt.Sprintf("%s failed to converge after %d iterations: %s", w.Algorithm, w.Iterations, msg)
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("type", "ConvergenceWarning").
		Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations)
}

// NewConvergenceWarning creates a ConvergenceWarning.
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// UndefinedMetricWarning は分母が0で指標が定義できず、Result で代用したことを示す。
// 例: 最終foldに「要対応」の予測が一つもない場合の precision。
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("'%s' is ill-defined and being set to %g due to %s", w.Metric, w.Result, w.Condition)
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (w *UndefinedMetricWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("type", "UndefinedMetricWarning").
		Str("metric", w.Metric).
		Str("condition", w.Condition).
		Float64("result", w.Result)
}

// NewUndefinedMetricWarning creates an UndefinedMetricWarning.
func NewUndefinedMetricWarning(metric, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Result: result}
}
