package offline

// All record families share the same conventions: id is a caller-supplied
// unique string (generated when blank), timestamps are Unix milliseconds,
// and size_bytes is the encoded length of the payload measured once at
// write time.

// CachedResponse is a memoized answer to a previously asked question,
// scoped to a logical category and language.
type CachedResponse struct {
	ID           string `gorm:"primaryKey;size:128" json:"id"`
	Category     string `gorm:"index" json:"category"`
	Query        string `json:"query"`
	Response     string `json:"response"`
	Language     string `gorm:"index" json:"language"`
	CachedAt     int64  `json:"cached_at"`
	AccessCount  int64  `gorm:"index" json:"access_count"`
	LastAccessed int64  `gorm:"index" json:"last_accessed"`
	SizeBytes    int64  `json:"size_bytes"`
}

// TableName specifies the table name.
func (CachedResponse) TableName() string { return "cached_responses" }

// CachedContent is arbitrary user-authored content awaiting or already
// reflected on the server.
type CachedContent struct {
	ID          string  `gorm:"primaryKey;size:128" json:"id"`
	ContentType string  `gorm:"index" json:"content_type"`
	Title       string  `json:"title"`
	Payload     string  `json:"payload"`
	Metadata    *string `json:"metadata,omitempty"`
	CreatedAt   int64   `json:"created_at"`
	UpdatedAt   int64   `gorm:"index" json:"updated_at"`
	SizeBytes   int64   `json:"size_bytes"`
	Synced      bool    `gorm:"index" json:"synced"`
}

// TableName specifies the table name.
func (CachedContent) TableName() string { return "cached_content" }

// CachedPlan is a denormalized snapshot of a structured weekly plan, kept
// for offline viewing. Objectives and materials are flattened to text so
// the plan list renders without decoding the full payload.
type CachedPlan struct {
	ID               string `gorm:"primaryKey;size:128" json:"id"`
	Title            string `json:"title"`
	Subject          string `gorm:"index" json:"subject"`
	Grade            string `gorm:"index" json:"grade"`
	Payload          string `json:"payload"`
	Objectives       string `json:"objectives"`
	Materials        string `json:"materials"`
	TotalDurationMin int    `json:"total_duration_min"`
	CreatedAt        int64  `json:"created_at"`
	UpdatedAt        int64  `gorm:"index" json:"updated_at"`
	SizeBytes        int64  `json:"size_bytes"`
	Synced           bool   `gorm:"index" json:"synced"`
}

// TableName specifies the table name.
func (CachedPlan) TableName() string { return "cached_plans" }

// CachedFAQ is a cached frequently-asked question with its answer.
type CachedFAQ struct {
	ID           string `gorm:"primaryKey;size:128" json:"id"`
	Question     string `json:"question"`
	Answer       string `json:"answer"`
	Category     string `gorm:"index" json:"category"`
	Language     string `gorm:"index" json:"language"`
	CreatedAt    int64  `json:"created_at"`
	AccessCount  int64  `gorm:"index" json:"access_count"`
	LastAccessed int64  `gorm:"index" json:"last_accessed"`
	SizeBytes    int64  `json:"size_bytes"`
}

// TableName specifies the table name.
func (CachedFAQ) TableName() string { return "cached_faqs" }

// QueueItem is one durable pending mutation awaiting delivery to the
// server. Items are only ever removed by explicit acknowledgement.
type QueueItem struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ActionType string `gorm:"index" json:"action_type"`
	Payload    string `json:"payload"`
	CreatedAt  int64  `gorm:"index:idx_queue_order,priority:2" json:"created_at"`
	RetryCount int    `json:"retry_count"`
	Priority   int    `gorm:"index:idx_queue_order,priority:1" json:"priority"`
}

// TableName specifies the table name.
func (QueueItem) TableName() string { return "sync_queue" }

// CacheMetadata is per-family bookkeeping, recomputed after every mutating
// write to that family.
type CacheMetadata struct {
	TableName_     string `gorm:"column:table_name;primaryKey;size:64" json:"table_name"`
	TotalSizeBytes int64  `json:"total_size_bytes"`
	ItemCount      int64  `json:"item_count"`
	LastCleanup    int64  `json:"last_cleanup"`
}

// TableName specifies the table name.
func (CacheMetadata) TableName() string { return "cache_metadata" }

// SyncStatus is the singleton bookkeeping row read by the UI for
// offline/sync indicators.
type SyncStatus struct {
	ID                 int64 `gorm:"primaryKey" json:"-"`
	LastSyncTimestamp  int64 `json:"last_sync_timestamp"`
	LastSuccessfulSync int64 `json:"last_successful_sync"`
	PendingSyncCount   int64 `json:"pending_sync_count"`
	SyncInProgress     bool  `json:"sync_in_progress"`
}

// TableName specifies the table name.
func (SyncStatus) TableName() string { return "sync_status" }

// syncStatusID is the fixed primary key of the singleton row.
const syncStatusID = 1

// family describes one record family to the generic eviction and
// bookkeeping paths, so those stay free of per-family switches.
type family struct {
	table string
	model any

	// scopeColumn bounds the eviction count to a category partition.
	// Empty means the whole family is one partition.
	scopeColumn string

	// evictOrder ranks rows lowest-value first; rows past the limit in
	// this order are deleted. Empty means the family is never evicted.
	evictOrder string

	// limit returns the configured maximum live rows per partition.
	limit func(*Options) int
}

var (
	responseFamily = family{
		table:       "cached_responses",
		model:       &CachedResponse{},
		scopeColumn: "category",
		evictOrder:  "access_count ASC, last_accessed ASC",
		limit:       func(o *Options) int { return o.MaxResponsesPerCategory },
	}

	contentFamily = family{
		table:      "cached_content",
		model:      &CachedContent{},
		evictOrder: "updated_at ASC",
		limit:      func(o *Options) int { return o.MaxContentItems },
	}

	planFamily = family{
		table:      "cached_plans",
		model:      &CachedPlan{},
		evictOrder: "updated_at ASC",
		limit:      func(o *Options) int { return o.MaxPlans },
	}

	faqFamily = family{
		table:      "cached_faqs",
		model:      &CachedFAQ{},
		evictOrder: "access_count ASC, last_accessed ASC",
		limit:      func(o *Options) int { return o.MaxFaqs },
	}

	// Queue items are exempt from eviction and cleanup; losing one is a
	// correctness bug, not a capacity event.
	queueFamily = family{
		table: "sync_queue",
		model: &QueueItem{},
	}
)

// families is the closed set of record families tracked by metadata.
func families() []family {
	return []family{responseFamily, contentFamily, planFamily, faqFamily, queueFamily}
}
