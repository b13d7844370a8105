package watcher

// ChangeAnalysis describes what changed and what work a consumer has to redo
type ChangeAnalysis struct {
	NeedRescan     bool // Directory layout changed; rediscover files first
	NeedReanalysis bool // Graph contents are stale; rebuild and re-analyze
	ChangedFiles   []string
}

// AnalyzeChanges maps a change event onto the work it invalidates
func AnalyzeChanges(event ChangeEvent) *ChangeAnalysis {
	analysis := &ChangeAnalysis{
		ChangedFiles: event.Paths,
	}

	switch event.Type {
	case ChangeTypeTree:
		// Directories came or went: the file set itself is stale
		analysis.NeedRescan = true
		analysis.NeedReanalysis = true

	case ChangeTypeSource:
		// Contents changed; the discovered file set still stands
		analysis.NeedReanalysis = true
	}

	return analysis
}
