package boost

// RoundRecord captures one boosting round's metrics. Rounds are 1-based;
// records are immutable once appended.
type RoundRecord struct {
	// Round is the 1-based round index.
	Round int
	// TrainMetric is the mean RMSE over the folds' training partitions.
	TrainMetric float64
	// ValidationMetric is the mean RMSE over the folds' held-out
	// partitions.
	ValidationMetric float64
}

// Gap is the validation-train metric difference for this round.
func (r RoundRecord) Gap() float64 {
	return r.ValidationMetric - r.TrainMetric
}

// EvaluationLog records the per-round metrics of a cross-validated
// training run.
type EvaluationLog struct {
	records []RoundRecord
}

// NewEvaluationLog builds a log from existing round records, for
// example one reloaded from a previous run. Records are copied.
func NewEvaluationLog(records []RoundRecord) *EvaluationLog {
	out := make([]RoundRecord, len(records))
	copy(out, records)
	return &EvaluationLog{records: out}
}

func (l *EvaluationLog) append(rec RoundRecord) {
	l.records = append(l.records, rec)
}

// Len returns the number of rounds recorded.
func (l *EvaluationLog) Len() int {
	return len(l.records)
}

// Round returns the record for 1-based round r.
func (l *EvaluationLog) Round(r int) RoundRecord {
	return l.records[r-1]
}

// Records returns a copy of all round records in order.
func (l *EvaluationLog) Records() []RoundRecord {
	out := make([]RoundRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Best returns the record of the round with the lowest validation
// metric. Ties resolve to the earliest such round. The second return is
// false when the log is empty.
func (l *EvaluationLog) Best() (RoundRecord, bool) {
	if len(l.records) == 0 {
		return RoundRecord{}, false
	}
	best := l.records[0]
	for _, rec := range l.records[1:] {
		if rec.ValidationMetric < best.ValidationMetric {
			best = rec
		}
	}
	return best, true
}
