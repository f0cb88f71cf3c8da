package constants

// Redis key prefixes and formats.
// Naming scheme: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix is shared by every Redis key the service writes.
	AppPrefix = "app"

	// Module prefixes.
	ProctoringModulePrefix = "proctoring"
	JobModulePrefix        = "job"
	ProfileModulePrefix    = "profile"

	// Entities.
	EntityLock    = "lock"
	EntityText    = "text"
	EntityVector  = "vector"
	EntityStats   = "stats"
	EntityRecs    = "recommendations"
	EntityProfile = "data"

	// KeyProctoringSessionLock guards per-session aggregation (STRING).
	// Format: app:proctoring:lock:{sessionID}:{mockID}
	KeyProctoringSessionLock = AppPrefix + ":" + ProctoringModulePrefix + ":" + EntityLock + ":%s:%s"

	// KeyProctoringDailyStats holds per-day completed-session counters (HASH).
	// Format: app:proctoring:stats:{YYYY-MM-DD}
	KeyProctoringDailyStats = AppPrefix + ":" + ProctoringModulePrefix + ":" + EntityStats + ":%s"

	// KeyJobText caches the matcher's job text blob (STRING).
	// Format: app:job:text:{jobID}
	KeyJobText = AppPrefix + ":" + JobModulePrefix + ":" + EntityText + ":%s"

	// KeyJobVector caches a job posting's embedding (STRING, JSON array).
	// Format: app:job:vector:{jobID}
	KeyJobVector = AppPrefix + ":" + JobModulePrefix + ":" + EntityVector + ":%s"

	// KeyUserRecommendations caches a user's recommendation payload (STRING).
	// Format: app:profile:recommendations:{userID}
	KeyUserRecommendations = AppPrefix + ":" + ProfileModulePrefix + ":" + EntityRecs + ":%s"
)
