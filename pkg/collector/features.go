package collector

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"
)

// Owner type categories encoded as a one-hot block.
const (
	OwnerSelf       = "self"
	OwnerConnection = "connection"
	OwnerSpace      = "space"
	OwnerOther      = "other"
)

// Fixed category vocabularies for the one-hot blocks. Values outside a
// vocabulary fall into its trailing "other"/"unknown" column, so the
// column count never depends on the data.
var (
	activityTypeColumns = []string{"post", "document", "discussion", "poll", "event"}
	ownerTypeColumns    = []string{OwnerSelf, OwnerConnection, OwnerSpace}
	genderColumns       = []string{"male", "female"}
	jobFocusColumns     = []string{"engineering", "sales", "marketing", "operations", "hr", "finance"}
)

// ParticipantFeature is one participant's repeated feature block. A
// zero value (sentinel or unresolved identity) encodes as all zeros.
type ParticipantFeature struct {
	ID        string
	Known     bool
	Weight    float64
	Conversed bool
	Favored   bool
	Gender    string
	JobFocus  string
}

// FeatureRow is one (user, activity) training/serving example.
type FeatureRow struct {
	UserID         string
	ActivityID     string
	ActivityType   string
	OwnerType      string
	StreamWeight   float64
	StreamFavorite bool
	Participants   []ParticipantFeature
	Label          float64
	HasLabel       bool
}

// FeatureWriter serializes rows into the fixed CSV schema. Safe for
// concurrent Append from parallel user passes.
type FeatureWriter struct {
	mu           sync.Mutex
	w            *csv.Writer
	participants int
	training     bool
	wroteHeader  bool
}

func NewFeatureWriter(out io.Writer, participants int, training bool) *FeatureWriter {
	return &FeatureWriter{
		w:            csv.NewWriter(out),
		participants: participants,
		training:     training,
	}
}

// Append writes one row, emitting the header first if needed. Rows must
// carry exactly the configured participant cardinality, and a label in
// training mode; violations are programming errors upstream.
func (f *FeatureWriter) Append(row *FeatureRow) error {
	if len(row.Participants) != f.participants {
		return fmt.Errorf("row for activity %s has %d participants, writer expects %d",
			row.ActivityID, len(row.Participants), f.participants)
	}
	if f.training && !row.HasLabel {
		return fmt.Errorf("row for activity %s is missing its training label", row.ActivityID)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.wroteHeader {
		if err := f.w.Write(f.header()); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		f.wroteHeader = true
	}

	if err := f.w.Write(f.encode(row)); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	return nil
}

// Flush flushes buffered rows to the underlying writer.
func (f *FeatureWriter) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.w.Flush()
	return f.w.Error()
}

func (f *FeatureWriter) header() []string {
	cols := []string{"user_id", "activity_id"}
	for _, t := range activityTypeColumns {
		cols = append(cols, "type_"+t)
	}
	cols = append(cols, "type_other")
	for _, t := range ownerTypeColumns {
		cols = append(cols, "owner_"+t)
	}
	cols = append(cols, "owner_other", "stream_weight", "stream_favorite")

	for i := 1; i <= f.participants; i++ {
		prefix := fmt.Sprintf("p%d_", i)
		cols = append(cols, prefix+"weight", prefix+"conversed", prefix+"favored", prefix+"viewed")
		for _, g := range genderColumns {
			cols = append(cols, prefix+"gender_"+g)
		}
		cols = append(cols, prefix+"gender_unknown")
		for _, jf := range jobFocusColumns {
			cols = append(cols, prefix+"focus_"+jf)
		}
		cols = append(cols, prefix+"focus_other")
	}

	if f.training {
		cols = append(cols, "label")
	}
	return cols
}

func (f *FeatureWriter) encode(row *FeatureRow) []string {
	out := []string{row.UserID, row.ActivityID}
	out = append(out, oneHot(row.ActivityType, activityTypeColumns)...)
	out = append(out, oneHot(row.OwnerType, ownerTypeColumns)...)
	out = append(out, formatFloat(row.StreamWeight), formatBool(row.StreamFavorite))

	for _, p := range row.Participants {
		out = append(out,
			formatFloat(p.Weight),
			formatBool(p.Known && p.Conversed),
			formatBool(p.Known && p.Favored),
			formatBool(p.Known && !p.Conversed && !p.Favored),
		)
		if p.Known {
			out = append(out, oneHot(p.Gender, genderColumns)...)
			out = append(out, oneHot(p.JobFocus, jobFocusColumns)...)
		} else {
			// Sentinel/unresolved: zeroed demographic blocks, including
			// the trailing unknown column.
			out = append(out, zeros(len(genderColumns)+1)...)
			out = append(out, zeros(len(jobFocusColumns)+1)...)
		}
	}

	if f.training {
		out = append(out, formatFloat(row.Label))
	}
	return out
}

// oneHot encodes value against the vocabulary plus a trailing
// catch-all column for out-of-vocabulary values.
func oneHot(value string, vocabulary []string) []string {
	out := make([]string, len(vocabulary)+1)
	matched := false
	for i, v := range vocabulary {
		if value == v {
			out[i] = "1"
			matched = true
		} else {
			out[i] = "0"
		}
	}
	if matched {
		out[len(vocabulary)] = "0"
	} else {
		out[len(vocabulary)] = "1"
	}
	return out
}

func zeros(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "0"
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
