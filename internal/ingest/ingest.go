package ingest

// IngestionResult summarizes one ingested purchase-order document.
type IngestionResult struct {
	SourcePath   string
	POID         int64
	Deduplicated bool
	HashHex      string
	Language     string
	Err          string
}

// DirStats aggregates a directory scan.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}
