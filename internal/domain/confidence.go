package domain

// ConfidenceLevel is the ordinal trust tier derived from a slot's raw
// confidence score.
type ConfidenceLevel int

const (
	ConfidenceNone ConfidenceLevel = iota
	ConfidenceMedium
	ConfidenceHigh
	ConfidenceFull
)

// Threshold boundaries. A score exactly on a boundary counts as the
// higher tier.
const (
	MediumConfidence = 0.55
	HighConfidence   = 0.65
	FullConfidence   = 0.80
)

func (l ConfidenceLevel) String() string {
	switch l {
	case ConfidenceMedium:
		return "medium"
	case ConfidenceHigh:
		return "high"
	case ConfidenceFull:
		return "full"
	default:
		return "none"
	}
}

// Classify maps a raw confidence score to its tier.
func Classify(confidence float64) ConfidenceLevel {
	switch {
	case confidence >= FullConfidence:
		return ConfidenceFull
	case confidence >= HighConfidence:
		return ConfidenceHigh
	case confidence >= MediumConfidence:
		return ConfidenceMedium
	default:
		return ConfidenceNone
	}
}

// AtLeastMedium reports whether the score clears the medium threshold.
func AtLeastMedium(confidence float64) bool {
	return confidence >= MediumConfidence
}

// AtLeastHigh reports whether the score clears the high threshold.
func AtLeastHigh(confidence float64) bool {
	return confidence >= HighConfidence
}

// AtLeastFull reports whether the score clears the full threshold.
func AtLeastFull(confidence float64) bool {
	return confidence >= FullConfidence
}

// AllSlotsAtLeast reports whether every slot of the event clears the
// given tier. Used when an entire utterance, not just one slot, must be
// trustworthy enough to skip clarification.
func AllSlotsAtLeast(e *RecognitionEvent, level ConfidenceLevel) bool {
	for i := range e.Slots {
		if Classify(e.Slots[i].Confidence) < level {
			return false
		}
	}
	return true
}
