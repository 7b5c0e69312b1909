package domain

type JobType string

const (
	JobIncremental JobType = "incremental"
	JobFull        JobType = "full"
	JobSpecific    JobType = "specific"
	JobTrending    JobType = "trending"
	JobTierSync    JobType = "tier-sync"
)

// JobTypes lists every job type the queue knows how to route.
var JobTypes = []JobType{JobIncremental, JobFull, JobSpecific, JobTrending, JobTierSync}

// JobPayload is the target of a job. Fields that do not apply to a job type
// are left empty.
type JobPayload struct {
	Platform    Platform `json:"platform,omitempty"`
	Identifiers []string `json:"identifiers,omitempty"`
	Category    string   `json:"category,omitempty"`
	Keyword     string   `json:"keyword,omitempty"`
	Tier        SyncTier `json:"tier,omitempty"`
	Limit       int      `json:"limit,omitempty"`
}
