package assess

// --- History snapshots ---

// Record is a minimal snapshot of an assessment kept for history.
// It drops feedback and guidance so persisted history stays small.
// JSON field names are the on-disk history layout; changing them breaks
// existing history files.
type Record struct {
	ID              string            `json:"id"`
	NotePath        string            `json:"notePath"`
	TotalScore      int               `json:"totalScore"`
	DimensionScores map[Dimension]int `json:"dimensionScores"`
	MaturityLevel   Stage             `json:"maturityLevel"`
	AssessedAt      int64             `json:"assessedAt"` // epoch milliseconds
}

// NewRecord projects an assessment down to its history snapshot.
// MaturityLevel captures the stage the note held at evaluation time, not
// the recommendation.
func NewRecord(a *Assessment) Record {
	scores := make(map[Dimension]int, len(dimensionOrder))
	for _, d := range dimensionOrder {
		scores[d] = a.Quality.Score(d)
	}
	return Record{
		ID:              a.ID,
		NotePath:        a.NotePath,
		TotalScore:      a.Quality.Total,
		DimensionScores: scores,
		MaturityLevel:   a.CurrentMaturity,
		AssessedAt:      a.CreatedAt.UnixMilli(),
	}
}

// Delta is the score movement between one record and the record before it.
// Computed on demand, never persisted.
type Delta struct {
	TotalDelta         int               `json:"totalDelta"`
	DimensionDeltas    map[Dimension]int `json:"dimensionDeltas"`
	PreviousAssessedAt int64             `json:"previousAssessedAt"`
}

// DeltaBetween compares current against previous. Dimension deltas cover
// only dimensions present in both records; a dimension absent from either
// side is skipped, not treated as zero.
func DeltaBetween(current, previous Record) Delta {
	dims := make(map[Dimension]int)
	for d, score := range current.DimensionScores {
		prev, ok := previous.DimensionScores[d]
		if !ok {
			continue
		}
		dims[d] = score - prev
	}
	return Delta{
		TotalDelta:         current.TotalScore - previous.TotalScore,
		DimensionDeltas:    dims,
		PreviousAssessedAt: previous.AssessedAt,
	}
}
