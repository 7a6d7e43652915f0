package va

import (
	"fmt"
	"strconv"
	"strings"
)

// Analysis regimes
const (
	AnalysisNoTrain  = "no-train"
	AnalysisInSample = "in-sample"
	AnalysisValidate = "validate"
)

// RunTags are opaque labels a caller attaches to a run so outputs can be
// partitioned and recombined. The validation core never interprets them.
type RunTags struct {
	Analysis   string
	Classifier string
	Module     string
	HCE        bool
	CauseList  string
	Symptoms   string
	Subset     *Subset
	NSplits    int
}

// HCETag returns "w_hce" or "no_hce"
func (t RunTags) HCETag() string {
	if t.HCE {
		return "w_hce"
	}
	return "no_hce"
}

// SubsetTag returns "start-stop" for partial runs and "0-nSplits" otherwise
func (t RunTags) SubsetTag() string {
	if t.Subset != nil {
		return fmt.Sprintf("%d-%d", t.Subset.Start, t.Subset.Stop)
	}
	return fmt.Sprintf("0-%d", t.NSplits)
}

// Stem builds the filename stem shared by the four output tables
func (t RunTags) Stem() (string, error) {
	base, err := t.BaseStem()
	if err != nil {
		return "", err
	}
	return base + "_" + t.SubsetTag(), nil
}

// BaseStem is the stem without the split range. Shards of one run share it,
// and their combined output is written under it.
func (t RunTags) BaseStem() (string, error) {
	var parts []string
	switch t.Analysis {
	case AnalysisNoTrain:
		parts = []string{"default", t.Classifier, t.Module, t.HCETag()}
	case AnalysisInSample:
		parts = []string{"in_sample", t.Classifier, t.Module, t.HCETag(), t.CauseList, t.Symptoms}
	case AnalysisValidate:
		parts = []string{"validate", t.Classifier, t.Module, t.HCETag(), t.CauseList, t.Symptoms}
	default:
		return "", fmt.Errorf("unknown analysis: %q", t.Analysis)
	}
	return strings.Join(parts, "_"), nil
}

// OutputSubdir returns the default output directory name for the analysis
func (t RunTags) OutputSubdir() string {
	switch t.Analysis {
	case AnalysisNoTrain:
		return "default"
	case AnalysisInSample:
		return "in_sample"
	default:
		return "validate"
	}
}

// SubsetOf parses the trailing "start-stop" tag of a stem
func SubsetOf(stem string) (Subset, bool) {
	tag := stem[strings.LastIndex(stem, "_")+1:]
	a, b, ok := strings.Cut(tag, "-")
	if !ok {
		return Subset{}, false
	}
	start, err := strconv.Atoi(a)
	if err != nil {
		return Subset{}, false
	}
	stop, err := strconv.Atoi(b)
	if err != nil {
		return Subset{}, false
	}
	return Subset{Start: start, Stop: stop}, true
}

// ParseStem recovers the tags encoded in a stem. The trailing range is
// returned as Subset and NSplits is left zero, since "0-n" cannot be told
// apart from a subset ending at n.
func ParseStem(stem string) (RunTags, error) {
	var t RunTags
	rest := stem
	switch {
	case strings.HasPrefix(rest, "default_"):
		t.Analysis, rest = AnalysisNoTrain, strings.TrimPrefix(rest, "default_")
	case strings.HasPrefix(rest, "in_sample_"):
		t.Analysis, rest = AnalysisInSample, strings.TrimPrefix(rest, "in_sample_")
	case strings.HasPrefix(rest, "validate_"):
		t.Analysis, rest = AnalysisValidate, strings.TrimPrefix(rest, "validate_")
	default:
		return RunTags{}, fmt.Errorf("stem %q has no analysis prefix", stem)
	}

	subset, ok := SubsetOf(rest)
	if !ok {
		return RunTags{}, fmt.Errorf("stem %q has no split range", stem)
	}
	t.Subset = &subset
	rest = rest[:strings.LastIndex(rest, "_")]

	head, tail, found := strings.Cut(rest, "_w_hce")
	t.HCE = found
	if !found {
		head, tail, found = strings.Cut(rest, "_no_hce")
	}
	if !found {
		return RunTags{}, fmt.Errorf("stem %q has no hce tag", stem)
	}
	i := strings.LastIndex(head, "_")
	if i < 1 {
		return RunTags{}, fmt.Errorf("stem %q has no module tag", stem)
	}
	t.Classifier, t.Module = head[:i], head[i+1:]

	if t.Analysis == AnalysisNoTrain {
		if tail != "" {
			return RunTags{}, fmt.Errorf("stem %q has unexpected tags %q", stem, tail)
		}
		return t, nil
	}
	tail = strings.TrimPrefix(tail, "_")
	j := strings.LastIndex(tail, "_")
	if j < 1 {
		return RunTags{}, fmt.Errorf("stem %q has no cause list or symptom tag", stem)
	}
	t.CauseList, t.Symptoms = tail[:j], tail[j+1:]
	return t, nil
}
